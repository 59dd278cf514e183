package parser

import "strconv"

// ExtractPrice returns the lowest price-like number in the markup, or nil.
// Both ¥-prefixed amounts and "price": fields count, wherever they appear.
func (p *MarketplaceParser) ExtractPrice(html string) *float64 {
	var lowest *float64

	for _, pattern := range p.pricePatterns {
		for _, m := range pattern.FindAllStringSubmatch(html, -1) {
			value, err := strconv.ParseFloat(m[1], 64)
			if err != nil {
				continue
			}
			if lowest == nil || value < *lowest {
				v := value
				lowest = &v
			}
		}
	}

	return lowest
}
