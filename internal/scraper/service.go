package scraper

import (
	"context"
	"log/slog"
	"sync"

	"github.com/maltedev/storefront-feed/internal/metrics"
	"github.com/maltedev/storefront-feed/internal/models"
	"github.com/maltedev/storefront-feed/internal/parser"
	"github.com/maltedev/storefront-feed/internal/pricing"
)

// Service scrapes one product page and prices it for the storefront.
type Service struct {
	fetcher   Fetcher
	parser    parser.Parser
	converter *pricing.Converter
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// NewService creates a scrape service.
func NewService(fetcher Fetcher, p parser.Parser, converter *pricing.Converter, m *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{
		fetcher:   fetcher,
		parser:    p,
		converter: converter,
		metrics:   m,
		logger:    logger.With("component", "scraper"),
	}
}

// Scrape fetches pageURL once and runs the extractors over the same markup.
func (s *Service) Scrape(ctx context.Context, pageURL string) (*models.ScrapeResult, error) {
	html, err := s.fetcher.FetchHTML(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	var (
		basic     parser.Basic
		set       parser.VariantSet
		buyPrice  *float64
		sizeChart *string
		wg        sync.WaitGroup
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		basic = s.parser.ExtractBasic(html, pageURL)
	}()
	go func() {
		defer wg.Done()
		set = s.parser.ExtractVariants(html)
	}()
	go func() {
		defer wg.Done()
		buyPrice = s.parser.ExtractPrice(html)
		sizeChart = s.parser.ExtractSizeChart(html)
	}()
	wg.Wait()

	result := &models.ScrapeResult{
		Title:          basic.Title,
		Images:         basic.Images,
		Variants:       set.Variants,
		Sizes:          set.Sizes,
		SizeChartImage: sizeChart,
		BuyPriceCNY:    buyPrice,
	}
	if result.Images == nil {
		result.Images = []string{}
	}
	if result.Variants == nil {
		result.Variants = []models.Variant{}
	}
	if result.Sizes == nil {
		result.Sizes = []string{}
	}

	if buyPrice != nil && *buyPrice > 0 {
		retail := s.converter.Convert(*buyPrice)
		result.PriceCZK = &retail
	}

	s.recordMisses(result)
	s.logger.Info("product scraped",
		"url", pageURL,
		"images", len(result.Images),
		"variants", len(result.Variants),
		"sizes", len(result.Sizes),
		"price_found", buyPrice != nil,
	)

	return result, nil
}

func (s *Service) recordMisses(r *models.ScrapeResult) {
	if r.Title == "" {
		s.metrics.IncExtractionMiss("title")
	}
	if len(r.Images) == 0 {
		s.metrics.IncExtractionMiss("images")
	}
	if len(r.Variants) == 0 {
		s.metrics.IncExtractionMiss("variants")
	}
	if len(r.Sizes) == 0 {
		s.metrics.IncExtractionMiss("sizes")
	}
	if r.BuyPriceCNY == nil {
		s.metrics.IncExtractionMiss("price")
	}
}
