package config

import (
	"testing"
	"time"

	"github.com/maltedev/storefront-feed/internal/pricing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "https://api.raindrop.io/rest/v1", cfg.Raindrop.BaseURL)
	assert.Equal(t, 200, cfg.Raindrop.PerPage)
	assert.Equal(t, "Mozilla/5.0", cfg.Fetch.UserAgent)
	assert.Equal(t, 30*time.Second, cfg.Fetch.Timeout)
	assert.Equal(t, "none", cfg.Cache.Backend)
	assert.Equal(t, 512, cfg.Cache.Size)
	assert.Equal(t, pricing.DefaultConfig(), cfg.Pricing)
}

func TestLoadPricingOverrides(t *testing.T) {
	t.Setenv("FX_RATE_CNY", "3.2")
	t.Setenv("MULTIPLIER", " 2 ")
	t.Setenv("SHIPPING_FEE", "not-a-number")
	t.Setenv("HANDLING_FEE", "NaN")
	t.Setenv("MIN_PRICE", "+Inf")
	t.Setenv("ROUND_TO", "50")
	t.Setenv("PRICE_CAP", "1500")

	cfg, err := Load()
	require.NoError(t, err)

	p := cfg.Pricing
	assert.Equal(t, 3.2, p.ExchangeRate)
	assert.Equal(t, 2.0, p.Multiplier)
	assert.Equal(t, 89.0, p.ShippingFee)
	assert.Equal(t, 0.0, p.HandlingFee)
	assert.Equal(t, 249.0, p.MinPrice)
	assert.Equal(t, 50.0, p.RoundTo)
	assert.Equal(t, 1500.0, p.PriceCap)
}

func TestLoadTokensAndOrigins(t *testing.T) {
	t.Setenv("ACCESS_TOKEN", "letmein")
	t.Setenv("RAINDROP_TOKEN", "rd-token")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://shop.example.cz, https://admin.example.cz")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "letmein", cfg.Auth.AccessToken)
	assert.Equal(t, "rd-token", cfg.Raindrop.Token)
	assert.Equal(t, []string{"https://shop.example.cz", "https://admin.example.cz"}, cfg.Server.AllowedOrigins)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		setenv  map[string]string
		wantErr bool
	}{
		{"Bad port", map[string]string{"PORT": "70000"}, true},
		{"Unknown cache backend", map[string]string{"CACHE_BACKEND": "memcached"}, true},
		{"Memory cache without size", map[string]string{"CACHE_BACKEND": "memory", "CACHE_SIZE": "0"}, true},
		{"Redis cache", map[string]string{"CACHE_BACKEND": "redis"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.setenv {
				t.Setenv(k, v)
			}
			_, err := Load()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
