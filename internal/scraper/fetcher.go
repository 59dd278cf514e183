package scraper

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"time"

	"github.com/maltedev/storefront-feed/internal/apperr"
	"github.com/maltedev/storefront-feed/internal/metrics"
	"golang.org/x/net/html/charset"
)

const (
	upstreamMarketplace = "marketplace"

	// sniffLen matches the window charset.DetermineEncoding inspects.
	sniffLen = 1024
)

var metaCharsetPattern = regexp.MustCompile(`(?i)<meta[^>]*charset`)

// Fetcher returns the markup of a product page as UTF-8 text.
type Fetcher interface {
	FetchHTML(ctx context.Context, pageURL string) (string, error)
}

// HTTPFetcher downloads product pages with a browser-like User-Agent.
// Pages that declare a charset (1688 still serves GBK) are transcoded to UTF-8;
// undeclared pages are read as UTF-8.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// NewHTTPFetcher creates a fetcher sharing the given client.
func NewHTTPFetcher(client *http.Client, userAgent string, m *metrics.Metrics, logger *slog.Logger) *HTTPFetcher {
	return &HTTPFetcher{
		client:    client,
		userAgent: userAgent,
		metrics:   m,
		logger:    logger.With("component", "fetcher"),
	}
}

// FetchHTML GETs pageURL and returns its markup. Non-2xx answers are upstream errors.
func (f *HTTPFetcher) FetchHTML(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", apperr.Internal(err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	start := time.Now()
	resp, err := f.client.Do(req)
	f.metrics.ObserveUpstream(upstreamMarketplace, time.Since(start))
	if err != nil {
		f.metrics.IncUpstreamError(upstreamMarketplace, string(apperr.KindInternal))
		return "", apperr.Internal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		f.metrics.IncUpstreamError(upstreamMarketplace, string(apperr.KindUpstream))
		return "", apperr.Upstream(fmt.Sprintf("Fetch failed %d", resp.StatusCode))
	}

	body := f.decodedBody(resp, pageURL)
	data, err := io.ReadAll(body)
	if err != nil {
		return "", apperr.Internal(fmt.Errorf("read page body: %w", err))
	}

	f.logger.Debug("page fetched", "url", pageURL, "bytes", len(data))
	return string(data), nil
}

// decodedBody transcodes only when the encoding is declared by a BOM, the
// Content-Type header or a <meta> tag. The sniffing fallback (windows-1252
// for an ASCII head) would garble UTF-8 text further down the page.
func (f *HTTPFetcher) decodedBody(resp *http.Response, pageURL string) io.Reader {
	br := bufio.NewReaderSize(resp.Body, sniffLen)
	head, _ := br.Peek(sniffLen)

	enc, name, certain := charset.DetermineEncoding(head, resp.Header.Get("Content-Type"))
	if !certain && !metaCharsetPattern.Match(head) {
		return br
	}

	f.logger.Debug("transcoding page", "url", pageURL, "charset", name)
	return enc.NewDecoder().Reader(br)
}
