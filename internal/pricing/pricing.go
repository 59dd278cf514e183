package pricing

import "math"

// MaxRetail bounds Convert so the result always fits an int.
const MaxRetail = 1 << 53

// Config holds the resale formula parameters. Zero PriceCap or RoundTo disables the step.
type Config struct {
	ExchangeRate float64
	Multiplier   float64
	ShippingFee  float64
	HandlingFee  float64
	MinPrice     float64
	RoundTo      float64
	PriceCap     float64
}

// DefaultConfig returns the formula the storefront launched with.
func DefaultConfig() Config {
	return Config{
		ExchangeRate: 3.5,
		Multiplier:   1.8,
		ShippingFee:  89,
		HandlingFee:  0,
		MinPrice:     249,
		RoundTo:      10,
		PriceCap:     0,
	}
}

// Converter applies a fixed Config to wholesale prices.
type Converter struct {
	cfg Config
}

// NewConverter creates a converter for cfg.
func NewConverter(cfg Config) *Converter {
	return &Converter{cfg: cfg}
}

// Convert turns a wholesale CNY price into a retail CZK price.
// Steps run in a fixed order: fx and markup plus fees, cap, floor, step rounding, integer rounding.
// Results above MaxRetail are clamped to it.
func (c *Converter) Convert(wholesale float64) int {
	retail := wholesale*c.cfg.ExchangeRate*c.cfg.Multiplier + c.cfg.ShippingFee + c.cfg.HandlingFee

	if c.cfg.PriceCap > 0 {
		retail = math.Min(retail, c.cfg.PriceCap)
	}
	if retail < c.cfg.MinPrice {
		retail = c.cfg.MinPrice
	}
	if c.cfg.RoundTo > 0 {
		retail = math.Ceil(retail/c.cfg.RoundTo) * c.cfg.RoundTo
	}

	// half rounds up, also for negative results
	rounded := math.Floor(retail + 0.5)
	if math.IsNaN(rounded) || rounded > MaxRetail {
		return MaxRetail
	}
	if rounded < -MaxRetail {
		return -MaxRetail
	}
	return int(rounded)
}
