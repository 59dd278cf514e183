package parser

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/maltedev/storefront-feed/internal/models"
)

const defaultVariantName = "Variant"

// Key fragments that mark a skuList property as a size.
var sizeKeyTokens = []string{"size", "Size", "尺码", "サイズ"}

// ExtractVariants looks through embedded <script> blocks for SKU data.
// A field filled by an earlier block is never overwritten by a later one.
func (p *MarketplaceParser) ExtractVariants(html string) VariantSet {
	var variants []models.Variant
	var sizes []string

	for _, m := range p.scriptPattern.FindAllStringSubmatch(html, -1) {
		script := m[1]

		var parsed jsonObject
		object := func() jsonObject {
			if parsed == nil {
				parsed = firstJSONObject(script)
			}
			return parsed
		}

		if p.skuPattern.MatchString(script) {
			obj := object()
			if len(variants) == 0 {
				variants = skuPropVariants(obj)
			}
			if len(sizes) == 0 {
				sizes = skuListSizes(obj)
			}
			if len(sizes) == 0 {
				sizes = p.skuMapSizes(obj)
			}
		}

		if len(variants) == 0 && p.variantsPattern.MatchString(script) {
			variants = listedVariants(object())
		}

		if len(sizes) == 0 && p.sizesPattern.MatchString(script) {
			sizes = listedSizes(object())
		}
	}

	if variants == nil {
		variants = []models.Variant{}
	}
	if sizes == nil {
		sizes = []string{}
	}

	return VariantSet{
		Variants: models.DedupVariants(variants),
		Sizes:    sizes,
	}
}

// skuPropVariants flattens skuProps[].value (or .values) into variants.
func skuPropVariants(obj jsonObject) []models.Variant {
	props, ok := obj.array("skuProps")
	if !ok {
		return nil
	}

	var variants []models.Variant
	for _, rawProp := range props {
		var prop jsonObject
		if err := json.Unmarshal(rawProp, &prop); err != nil {
			continue
		}
		values, ok := prop.array("value")
		if !ok {
			values, _ = prop.array("values")
		}

		for _, rawValue := range values {
			var v map[string]any
			if err := decodeValue(rawValue, &v); err != nil || v == nil {
				continue
			}

			name := stringify(pick(v, "valueName", "name"))
			if name == "" {
				name = defaultVariantName
			}
			id := stringify(pick(v, "skuId", "valueId", "id"))
			if id == "" {
				id = name
			}

			variants = append(variants, models.Variant{ID: id, Name: name, Available: true})
		}
	}
	return variants
}

// skuListSizes collects values of size-like keys from every skuList entry.
func skuListSizes(obj jsonObject) []string {
	entries, ok := obj.array("skuList")
	if !ok {
		return nil
	}

	var found []string
	for _, entry := range entries {
		for _, field := range orderedFields(entry) {
			if isSizeKey(field.Key) {
				found = append(found, rawString(field.Value))
			}
		}
	}
	return models.DedupStrings(found)
}

// skuMapSizes reads sizes out of skuMap keys such as ";1627207:28320;20509:28315;".
func (p *MarketplaceParser) skuMapSizes(obj jsonObject) []string {
	raw, ok := obj["skuMap"]
	if !ok {
		return nil
	}

	var found []string
	for _, field := range orderedFields(raw) {
		for _, fragment := range strings.Split(field.Key, ";") {
			if !p.skuMapSizePattern.MatchString(fragment) {
				continue
			}
			found = append(found, strings.TrimSpace(stripQuotesAndBraces(fragment)))
		}
	}
	return models.DedupStrings(found)
}

// listedVariants maps a generic "variants" array.
func listedVariants(obj jsonObject) []models.Variant {
	entries, ok := obj.array("variants")
	if !ok {
		return nil
	}

	variants := make([]models.Variant, 0, len(entries))
	for _, raw := range entries {
		var v map[string]any
		if err := decodeValue(raw, &v); err != nil || v == nil {
			continue
		}
		flag, hasFlag := v["available"].(bool)
		soldOut := hasFlag && !flag
		available := stockPositive(v["stock"]) || !soldOut
		variants = append(variants, models.Variant{
			ID:        stringify(pick(v, "id", "value", "name")),
			Name:      stringify(pick(v, "name", "value")),
			Available: available,
		})
	}
	return variants
}

func listedSizes(obj jsonObject) []string {
	entries, ok := obj.array("sizes")
	if !ok {
		return nil
	}

	found := make([]string, 0, len(entries))
	for _, raw := range entries {
		found = append(found, rawString(raw))
	}
	return models.DedupStrings(found)
}

func isSizeKey(key string) bool {
	for _, token := range sizeKeyTokens {
		if strings.Contains(key, token) {
			return true
		}
	}
	return false
}

func stockPositive(v any) bool {
	switch t := v.(type) {
	case json.Number:
		f, err := t.Float64()
		return err == nil && f > 0
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return err == nil && f > 0
	case bool:
		return t
	default:
		return false
	}
}

func stripQuotesAndBraces(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '{', '}', '"', '\'':
			return -1
		}
		return r
	}, s)
}
