package raindrop

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/maltedev/storefront-feed/internal/apperr"
	"github.com/maltedev/storefront-feed/internal/metrics"
	"github.com/maltedev/storefront-feed/internal/models"
	"golang.org/x/sync/errgroup"
)

const (
	upstreamRaindrop = "raindrop"
	idPrefix         = "rd-"
	defaultName      = "Produkt"
)

// Options configures a Client. PerPage defaults to 200.
type Options struct {
	BaseURL string
	Token   string
	PerPage int
}

// Client lists bookmarked products from Raindrop.io collections.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	perPage    int
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

// NewClient creates a Raindrop client on top of a shared HTTP client.
func NewClient(httpClient *http.Client, opts Options, m *metrics.Metrics, logger *slog.Logger) *Client {
	if opts.PerPage <= 0 {
		opts.PerPage = 200
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		token:      opts.Token,
		perPage:    opts.PerPage,
		metrics:    m,
		logger:     logger.With("component", "raindrop"),
	}
}

// Configured reports whether an API token is available.
func (c *Client) Configured() bool {
	return c.token != ""
}

type collectionResponse struct {
	Items []item `json:"items"`
}

type item struct {
	ID    json.Number `json:"_id"`
	Title string      `json:"title"`
	Cover string      `json:"cover"`
	Media []struct {
		Link string `json:"link"`
	} `json:"media"`
	Tags []string `json:"tags"`
	Link string   `json:"link"`
}

// ParseCollectionIDs splits a comma separated list, trimming and dropping blanks.
func ParseCollectionIDs(raw string) []string {
	var ids []string
	for _, part := range strings.Split(raw, ",") {
		if id := strings.TrimSpace(part); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// ListProducts fetches every collection concurrently and returns the products
// in collection order. Any failed collection fails the whole call.
func (c *Client) ListProducts(ctx context.Context, ids []string) ([]models.ProductRecord, error) {
	if !c.Configured() {
		return nil, apperr.Configuration("Missing RAINDROP_TOKEN")
	}
	if len(ids) == 0 {
		return nil, apperr.InvalidRequest("Provide ?collections=<id>[,<id>...]")
	}

	reqID := requestID(ctx)
	results := make([][]models.ProductRecord, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			items, err := c.fetchCollection(gctx, id, reqID)
			if err != nil {
				return err
			}
			results[i] = toProducts(id, items)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	products := make([]models.ProductRecord, 0)
	for _, r := range results {
		products = append(products, r...)
	}

	c.logger.Info("collections listed", "request_id", reqID, "collections", len(ids), "products", len(products))
	return products, nil
}

func (c *Client) fetchCollection(ctx context.Context, id, reqID string) ([]item, error) {
	endpoint := fmt.Sprintf("%s/raindrops/%s?perpage=%d", c.baseURL, url.PathEscape(id), c.perPage)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.ObserveUpstream(upstreamRaindrop, time.Since(start))
	if err != nil {
		c.metrics.IncUpstreamError(upstreamRaindrop, string(apperr.KindInternal))
		return nil, apperr.Internal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.metrics.IncUpstreamError(upstreamRaindrop, string(apperr.KindUpstream))
		c.logger.Warn("collection fetch failed", "collection", id, "status", resp.StatusCode)
		return nil, apperr.Upstream(fmt.Sprintf("Raindrop fetch %s failed: %d", id, resp.StatusCode))
	}

	var data collectionResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, apperr.Internal(fmt.Errorf("decode collection %s: %w", id, err))
	}
	return data.Items, nil
}

func toProducts(collectionID string, items []item) []models.ProductRecord {
	var collection *int64
	if n, err := strconv.ParseInt(collectionID, 10, 64); err == nil {
		collection = &n
	}

	products := make([]models.ProductRecord, 0, len(items))
	for _, it := range items {
		name := it.Title
		if name == "" {
			name = defaultName
		}
		tags := it.Tags
		if tags == nil {
			tags = []string{}
		}

		products = append(products, models.ProductRecord{
			ID:         idPrefix + it.ID.String(),
			Name:       name,
			Brand:      GuessBrand(it.Title, tags),
			Image:      coverImage(it),
			Tags:       tags,
			URL:        it.Link,
			Collection: collection,
		})
	}
	return products
}

func coverImage(it item) string {
	if it.Cover != "" {
		return it.Cover
	}
	if len(it.Media) > 0 {
		return it.Media[0].Link
	}
	return ""
}

// requestID returns the id chi assigned to the inbound request. Callers outside
// an HTTP request (batch jobs, tests) get a fresh id, shared by every
// collection fetched in one listing.
func requestID(ctx context.Context) string {
	if id := middleware.GetReqID(ctx); id != "" {
		return id
	}
	return uuid.NewString()
}
