// Package marketplace parses listing URLs from supported marketplaces
// into a source identifier and listing id, used to key sale records
// for ingestion idempotency.
package marketplace

import "regexp"

// Marketplace source constants
const (
	SourceTCGPlayer  = "tcgplayer"
	SourceEBay       = "ebay"
	SourceCardTrader = "cardtrader"
)

// Link identifies a listing on a supported marketplace.
type Link struct {
	Source    string `json:"source"`
	ProductID string `json:"product_id"`
	Slug      string `json:"slug,omitempty"`
}

// linkPattern pairs a marketplace with its URL shape. Patterns are
// tried in slice order and the first match wins.
type linkPattern struct {
	source string
	re     *regexp.Regexp
}

var linkPatterns = []linkPattern{
	{SourceTCGPlayer, regexp.MustCompile(`(?i)tcgplayer\.com/product/(\d+)(?:/([a-z0-9-]+))?`)},
	{SourceEBay, regexp.MustCompile(`(?i)ebay\.com/itm/(?:[a-z0-9-]+/)?(\d+)`)},
	{SourceCardTrader, regexp.MustCompile(`(?i)cardtrader\.com/(?:[a-z]{2}/)?cards/(\d+)(?:-([a-z0-9-]+))?`)},
}

// Parse extracts the marketplace and listing id from a URL. It returns
// false for URLs that match no supported marketplace.
func Parse(url string) (Link, bool) {
	for _, p := range linkPatterns {
		m := p.re.FindStringSubmatch(url)
		if m == nil {
			continue
		}
		link := Link{Source: p.source, ProductID: m[1]}
		if len(m) > 2 {
			link.Slug = m[2]
		}
		return link, true
	}
	return Link{}, false
}
