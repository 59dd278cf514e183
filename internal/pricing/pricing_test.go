package pricing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConvertDefaults(t *testing.T) {
	c := NewConverter(DefaultConfig())

	tests := []struct {
		name      string
		wholesale float64
		expected  int
	}{
		// 100 * 3.5 * 1.8 + 89 = 719 -> 720
		{"Regular price", 100, 720},
		// 10 * 6.3 + 89 = 152 -> floor 249 -> 250
		{"Below floor", 10, 250},
		{"Zero", 0, 250},
		// 149 * 6.3 + 89 = 1027.7 -> 1030
		{"Fractional", 149, 1030},
		// 50 * 6.3 + 89 = 404 -> 410
		{"Just above floor", 50, 410},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, c.Convert(tt.wholesale))
		})
	}
}

func TestConvertDeterministic(t *testing.T) {
	c := NewConverter(DefaultConfig())
	for _, p := range []float64{0, 1.5, 37.25, 199, 4999.99} {
		assert.Equal(t, c.Convert(p), c.Convert(p))
	}
}

func TestConvertMonotonicAndFloored(t *testing.T) {
	cfg := DefaultConfig()
	c := NewConverter(cfg)

	prev := 0
	for p := 0.0; p <= 2000; p += 0.75 {
		got := c.Convert(p)
		assert.GreaterOrEqual(t, got, int(cfg.MinPrice), "price %v", p)
		assert.GreaterOrEqual(t, got, prev, "price %v", p)
		assert.Zero(t, got%10, "price %v should be a multiple of 10", p)
		prev = got
	}
}

func TestConvertCapBeforeFloor(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PriceCap = 300
	c := NewConverter(cfg)

	// raw retail far above the cap
	assert.Equal(t, 300, c.Convert(1000))

	// cap below the floor: floor wins because it is applied after the cap
	cfg.PriceCap = 200
	c = NewConverter(cfg)
	assert.Equal(t, 250, c.Convert(1000))
}

func TestConvertWithoutRounding(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RoundTo = 0
	c := NewConverter(cfg)

	// 149 * 6.3 + 89 = 1027.7
	assert.Equal(t, 1028, c.Convert(149))
	// floor itself is not step aligned
	assert.Equal(t, 249, c.Convert(1))
}

func TestConvertHandlingFee(t *testing.T) {
	cfg := DefaultConfig()
	cfg.HandlingFee = 25
	c := NewConverter(cfg)

	// 100 * 6.3 + 89 + 25 = 744 -> 750
	assert.Equal(t, 750, c.Convert(100))
}

func TestConvertClampsHugePrices(t *testing.T) {
	c := NewConverter(DefaultConfig())

	assert.Equal(t, MaxRetail, c.Convert(1e300))
	assert.Equal(t, MaxRetail, c.Convert(math.Inf(1)))
	assert.Equal(t, MaxRetail, c.Convert(math.MaxFloat64))
	assert.Positive(t, c.Convert(9.9e18))
}
