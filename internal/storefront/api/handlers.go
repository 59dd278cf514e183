package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/maltedev/storefront-feed/internal/apperr"
	"github.com/maltedev/storefront-feed/internal/cache"
	"github.com/maltedev/storefront-feed/internal/metrics"
	"github.com/maltedev/storefront-feed/internal/models"
	"github.com/maltedev/storefront-feed/internal/raindrop"
)

const (
	endpointRaindrop = "raindrop"
	endpointScrape   = "scrape"

	listTTL   = 900 * time.Second
	scrapeTTL = 86400 * time.Second

	listCacheControl   = "s-maxage=900, stale-while-revalidate"
	scrapeCacheControl = "s-maxage=86400, stale-while-revalidate"
)

// ProductLister represents the bookmark source behind /api/raindrop.
type ProductLister interface {
	Configured() bool
	ListProducts(ctx context.Context, ids []string) ([]models.ProductRecord, error)
}

// ProductScraper represents the page scraper behind /api/scrape.
type ProductScraper interface {
	Scrape(ctx context.Context, pageURL string) (*models.ScrapeResult, error)
}

// Handlers represents the HTTP handlers of the storefront API.
type Handlers struct {
	lister      ProductLister
	scraper     ProductScraper
	cache       cache.Cache
	accessToken string
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

// NewHandlers creates handlers. A nil cache disables response caching.
func NewHandlers(lister ProductLister, scraper ProductScraper, c cache.Cache, accessToken string, m *metrics.Metrics, logger *slog.Logger) *Handlers {
	if c == nil {
		c = cache.Noop{}
	}
	return &Handlers{
		lister:      lister,
		scraper:     scraper,
		cache:       c,
		accessToken: accessToken,
		metrics:     m,
		logger:      logger.With("component", "api"),
	}
}

// ListBookmarks handles GET /api/raindrop?collections=<id>[,<id>...]&token=...
func (h *Handlers) ListBookmarks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if !h.authorized(q.Get("token")) {
		h.fail(w, endpointRaindrop, apperr.Unauthorized())
		return
	}

	if !h.lister.Configured() {
		h.fail(w, endpointRaindrop, apperr.Configuration("Missing RAINDROP_TOKEN"))
		return
	}

	ids := raindrop.ParseCollectionIDs(q.Get("collections"))
	if len(ids) == 0 {
		h.fail(w, endpointRaindrop, apperr.InvalidRequest("Provide ?collections=<id>[,<id>...]"))
		return
	}

	key := "raindrop:" + strings.Join(ids, ",")
	if h.serveCached(w, r, endpointRaindrop, key, listCacheControl) {
		return
	}

	products, err := h.lister.ListProducts(r.Context(), ids)
	if err != nil {
		h.logger.Error("failed to list bookmarks", "error", err, "collections", ids)
		h.fail(w, endpointRaindrop, err)
		return
	}

	h.respondCacheable(w, r, endpointRaindrop, key, listTTL, listCacheControl, models.ProductList{Products: products})
}

// ScrapeProduct handles GET /api/scrape?url=...&token=...
func (h *Handlers) ScrapeProduct(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	pageURL := q.Get("url")
	if pageURL == "" {
		h.fail(w, endpointScrape, apperr.InvalidRequest("Missing url"))
		return
	}

	if !h.authorized(q.Get("token")) {
		h.fail(w, endpointScrape, apperr.Unauthorized())
		return
	}

	key := "scrape:" + pageURL
	if h.serveCached(w, r, endpointScrape, key, scrapeCacheControl) {
		return
	}

	result, err := h.scraper.Scrape(r.Context(), pageURL)
	if err != nil {
		h.logger.Error("failed to scrape product", "error", err, "url", pageURL)
		h.fail(w, endpointScrape, err)
		return
	}

	h.respondCacheable(w, r, endpointScrape, key, scrapeTTL, scrapeCacheControl, result)
}

// Health reports liveness.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) authorized(token string) bool {
	return h.accessToken == "" || token == h.accessToken
}

func (h *Handlers) serveCached(w http.ResponseWriter, r *http.Request, endpoint, key, cacheControl string) bool {
	body, ok, err := h.cache.Get(r.Context(), key)
	if err != nil {
		h.logger.Warn("cache lookup failed", "error", err, "key", key)
		return false
	}
	if !ok {
		h.metrics.IncCacheLookup("miss")
		return false
	}

	h.metrics.IncCacheLookup("hit")
	w.Header().Set("Cache-Control", cacheControl)
	h.writeBody(w, endpoint, http.StatusOK, body)
	return true
}

func (h *Handlers) respondCacheable(w http.ResponseWriter, r *http.Request, endpoint, key string, ttl time.Duration, cacheControl string, data interface{}) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
		h.fail(w, endpoint, apperr.Internal(err))
		return
	}

	if err := h.cache.Set(r.Context(), key, buf.Bytes(), ttl); err != nil {
		h.logger.Warn("cache store failed", "error", err, "key", key)
	}

	w.Header().Set("Cache-Control", cacheControl)
	h.writeBody(w, endpoint, http.StatusOK, buf.Bytes())
}

func (h *Handlers) fail(w http.ResponseWriter, endpoint string, err error) {
	status := apperr.StatusCode(err)
	h.metrics.IncRequest(endpoint, strconv.Itoa(status))
	h.respondError(w, status, err.Error())
}

func (h *Handlers) writeBody(w http.ResponseWriter, endpoint string, status int, body []byte) {
	h.metrics.IncRequest(endpoint, strconv.Itoa(status))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

// Recover turns a panic in a handler into the usual JSON error body.
func (h *Handlers) Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				h.logger.Error("handler panicked", "panic", rec, "path", r.URL.Path)
				h.respondError(w, http.StatusInternalServerError, fmt.Sprint(rec))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// Helper methods
func (h *Handlers) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handlers) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
