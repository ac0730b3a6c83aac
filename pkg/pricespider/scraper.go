// Package pricespider scrapes retailer price tables from PriceSpider
// comparison pages.
package pricespider

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"

	"github.com/dealscope/dealscope/internal/resilience"
)

const defaultBaseURL = "https://www.pricespider.com"

// Listing is one scraped retailer row.
type Listing struct {
	Retailer     string
	Price        float64
	ShippingCost float64
	Availability string
	URL          string
}

// Scraper fetches and parses a comparison page for a search term.
type Scraper interface {
	Scrape(ctx context.Context, term string) ([]Listing, error)
}

// Option configures the scraper.
type Option func(*htmlScraper)

// WithBaseURL overrides the default site base URL.
func WithBaseURL(url string) Option {
	return func(s *htmlScraper) {
		s.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(s *htmlScraper) {
		s.http = hc
	}
}

type htmlScraper struct {
	baseURL string
	http    *http.Client
}

// NewScraper creates a comparison-page scraper.
func NewScraper(opts ...Option) Scraper {
	s := &htmlScraper{
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *htmlScraper) Scrape(ctx context.Context, term string) ([]Listing, error) {
	endpoint := s.baseURL + "/search?q=" + url.QueryEscape(term)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, eris.Wrap(err, "pricespider: create request")
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "pricespider: fetch page")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		err := eris.Errorf("pricespider: unexpected status %d", resp.StatusCode)
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(err, resp.StatusCode)
		}
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "pricespider: parse page")
	}
	return parseListings(doc), nil
}

// parseListings walks the price table rows. Rows without a retailer name
// or a parsable price are skipped.
func parseListings(doc *goquery.Document) []Listing {
	var listings []Listing

	doc.Find("table.price-table tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 2 {
			return
		}

		listing := Listing{
			Retailer:     strings.TrimSpace(cells.Eq(0).Text()),
			Price:        parseMoney(cells.Eq(1).Text()),
			Availability: "In Stock",
		}
		if cells.Length() > 2 {
			listing.ShippingCost = parseMoney(cells.Eq(2).Text())
		}
		if cells.Length() > 3 {
			if avail := strings.TrimSpace(cells.Eq(3).Text()); avail != "" {
				listing.Availability = avail
			}
		}
		if href, ok := row.Find("a").First().Attr("href"); ok {
			listing.URL = href
		}

		if listing.Retailer == "" || listing.Price <= 0 {
			return
		}
		listings = append(listings, listing)
	})

	return listings
}

func parseMoney(text string) float64 {
	cleaned := strings.NewReplacer("$", "", ",", "", " ", "").Replace(strings.TrimSpace(text))
	if cleaned == "" || strings.EqualFold(cleaned, "free") {
		return 0
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return v
}
