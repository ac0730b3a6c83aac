package googleshopping

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Shopping snippets carry prices as free text. Patterns are tried in
// order; the first numeric hit wins.
var pricePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\$([\d,]+\.?\d*)`),
	regexp.MustCompile(`(?i)([\d,]+\.?\d*)\s*(?:USD|dollars?)`),
	regexp.MustCompile(`(?i)Price[:\s]+\$?([\d,]+\.?\d*)`),
}

var titleCaser = cases.Title(language.English)

// ExtractPrice pulls the first recognizable price out of snippet text.
// Returns 0 when no price is found.
func ExtractPrice(text string) float64 {
	for _, pattern := range pricePatterns {
		m := pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		raw := strings.ReplaceAll(m[1], ",", "")
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			continue
		}
		return v
	}
	return 0
}

// ExtractRetailer derives a retailer name from the result's display link,
// falling back to the link's host.
func ExtractRetailer(link, displayLink string) string {
	if displayLink != "" {
		return titleCaser.String(domainName(displayLink))
	}
	parsed, err := url.Parse(link)
	if err != nil || parsed.Host == "" {
		return "Google Shopping"
	}
	return titleCaser.String(domainName(parsed.Host))
}

func domainName(host string) string {
	host = strings.TrimPrefix(host, "www.")
	if idx := strings.IndexByte(host, '.'); idx > 0 {
		host = host[:idx]
	}
	return host
}
