package raindrop

import "strings"

// Brands is searched in order; the first one found in a title wins.
var Brands = []string{
	"Calvin Klein", "CK", "Guess", "Armani", "Emporio Armani", "EA",
	"Michael Kors", "MK", "Versace", "Nike", "Adidas", "Puma", "Levi's",
}

// GuessBrand matches the title case-insensitively against Brands, then falls
// back to tags that equal a brand exactly.
func GuessBrand(title string, tags []string) string {
	t := strings.ToLower(title)
	for _, b := range Brands {
		if strings.Contains(t, strings.ToLower(b)) {
			return b
		}
	}
	for _, tag := range tags {
		for _, b := range Brands {
			if tag == b {
				return tag
			}
		}
	}
	return ""
}
