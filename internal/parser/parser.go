package parser

import (
	"regexp"

	"github.com/maltedev/storefront-feed/internal/models"
)

const maxImages = 12

// Parser represents the extraction steps run over one product page.
// Implementations must not fail; missing data yields zero values.
type Parser interface {
	ExtractBasic(html string, pageURL string) Basic
	ExtractVariants(html string) VariantSet
	ExtractPrice(html string) *float64
	ExtractSizeChart(html string) *string
}

// Basic holds the page title and the gallery image URLs.
type Basic struct {
	Title  string
	Images []string
}

// VariantSet represents the colour/style variants and the size labels of a product.
type VariantSet struct {
	Variants []models.Variant
	Sizes    []string
}

// MarketplaceParser scans 1688 and Weidian product markup with plain text patterns.
// It never fails: anything it cannot read degrades to an empty result.
type MarketplaceParser struct {
	ogTitlePattern *regexp.Regexp
	titlePattern   *regexp.Regexp
	ogImagePattern *regexp.Regexp
	imagePattern   *regexp.Regexp

	scriptPattern     *regexp.Regexp
	skuPattern        *regexp.Regexp
	variantsPattern   *regexp.Regexp
	sizesPattern      *regexp.Regexp
	skuMapSizePattern *regexp.Regexp

	pricePatterns []*regexp.Regexp

	imageURLPattern  *regexp.Regexp
	sizeChartPattern *regexp.Regexp
}

// NewMarketplaceParser compiles the page patterns once; the parser is safe for concurrent use.
func NewMarketplaceParser() *MarketplaceParser {
	return &MarketplaceParser{
		ogTitlePattern: regexp.MustCompile(`(?i)<meta[^>]+property=["']og:title["'][^>]*content=["']([^"']+)["']`),
		titlePattern:   regexp.MustCompile(`(?i)<title[^>]*>([^<]+)</title>`),
		ogImagePattern: regexp.MustCompile(`(?i)<meta[^>]+property=["']og:image["'][^>]*content=["']([^"']+)["']`),
		imagePattern:   regexp.MustCompile(`(?i)<img[^>]+(?:data-src|src)=["']([^"']+)["']`),

		scriptPattern:     regexp.MustCompile(`(?is)<script[^>]*>(.*?)</script>`),
		skuPattern:        regexp.MustCompile(`(?i)skuProps|skuMap|skuList|skuModel`),
		variantsPattern:   regexp.MustCompile(`(?i)variants`),
		sizesPattern:      regexp.MustCompile(`(?i)sizes?`),
		skuMapSizePattern: regexp.MustCompile(`(?i)S|M|L|XL|XXL|尺|码|碼`),

		pricePatterns: []*regexp.Regexp{
			regexp.MustCompile(`[¥￥]\s?(\d+(?:\.\d+)?)`),
			regexp.MustCompile(`(?i)"price"\s*:\s*"?(\d+(?:\.\d+)?)"?`),
		},

		imageURLPattern:  regexp.MustCompile(`(?i)https?:[^"'<>]+?\.(?:png|jpe?g|webp)`),
		sizeChartPattern: regexp.MustCompile(`(?i)size.?chart|size-?table|velikost`),
	}
}
