package models

import "strings"

// ProductRecord is one bookmarked item from a Raindrop collection.
type ProductRecord struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Brand      string   `json:"brand"`
	PriceCZK   *int     `json:"priceCZK"`
	Image      string   `json:"image"`
	Tags       []string `json:"tags"`
	URL        string   `json:"url"`
	Collection *int64   `json:"_collection"`
}

// Variant represents one purchasable option of a scraped product.
type Variant struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Available bool   `json:"available"`
}

// ScrapeResult is the merged output of a single product page scrape.
type ScrapeResult struct {
	Title          string    `json:"title"`
	Images         []string  `json:"images"`
	Variants       []Variant `json:"variants"`
	Sizes          []string  `json:"sizes"`
	SizeChartImage *string   `json:"sizeChartImage"`
	BuyPriceCNY    *float64  `json:"buyPriceCNY"`
	PriceCZK       *int      `json:"priceCZK"`
}

// ProductList represents the bookmark endpoint response body.
type ProductList struct {
	Products []ProductRecord `json:"products"`
}

// DedupVariants keeps the first variant for every case-insensitive name.
func DedupVariants(variants []Variant) []Variant {
	seen := make(map[string]bool, len(variants))
	out := make([]Variant, 0, len(variants))
	for _, v := range variants {
		key := strings.ToLower(v.Name)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, v)
	}
	return out
}

// DedupStrings drops empty strings and repeats, keeping first-seen order.
func DedupStrings(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
