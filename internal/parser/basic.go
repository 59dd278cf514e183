package parser

import (
	"net/url"
	"strings"
)

// ExtractBasic reads the title and up to maxImages unique absolute image URLs.
// The og:image comes first, followed by <img> tags in document order.
func (p *MarketplaceParser) ExtractBasic(html string, pageURL string) Basic {
	title := ""
	if m := p.ogTitlePattern.FindStringSubmatch(html); m != nil {
		title = m[1]
	} else if m := p.titlePattern.FindStringSubmatch(html); m != nil {
		title = m[1]
	}

	base := parseBase(pageURL)
	images := newImageSet(maxImages)

	if m := p.ogImagePattern.FindStringSubmatch(html); m != nil {
		images.add(resolveURL(base, m[1]))
	}

	for _, m := range p.imagePattern.FindAllStringSubmatch(html, -1) {
		if images.full() {
			break
		}
		src := m[1]
		if strings.HasPrefix(src, "data:") {
			continue
		}
		images.add(resolveURL(base, src))
	}

	return Basic{
		Title:  strings.TrimSpace(title),
		Images: images.list,
	}
}

// ExtractSizeChart returns the first image URL whose name hints at a size chart.
func (p *MarketplaceParser) ExtractSizeChart(html string) *string {
	for _, u := range p.imageURLPattern.FindAllString(html, -1) {
		if p.sizeChartPattern.MatchString(u) {
			found := u
			return &found
		}
	}
	return nil
}

type imageSet struct {
	limit int
	seen  map[string]bool
	list  []string
}

func newImageSet(limit int) *imageSet {
	return &imageSet{
		limit: limit,
		seen:  make(map[string]bool),
		list:  make([]string, 0, limit),
	}
}

func (s *imageSet) add(u string) {
	if u == "" || s.seen[u] || s.full() {
		return
	}
	s.seen[u] = true
	s.list = append(s.list, u)
}

func (s *imageSet) full() bool {
	return len(s.list) >= s.limit
}

func parseBase(pageURL string) *url.URL {
	base, err := url.Parse(strings.TrimSpace(pageURL))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil
	}
	return base
}

// resolveURL makes ref absolute against base. Unresolvable references are returned as given.
func resolveURL(base *url.URL, ref string) string {
	ref = strings.TrimSpace(ref)
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	if base == nil {
		return ref
	}
	return base.ResolveReference(u).String()
}
