package scraper

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/brotli"

	"github.com/pokebrief/gradewatch/internal/ebay"
	"github.com/pokebrief/gradewatch/internal/model"
	"github.com/pokebrief/gradewatch/internal/ratelimit"
)

const (
	soldSearchURL = "https://www.ebay.com/sch/i.html"
	userAgent     = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	maxRetries    = 2
)

// SoldScraper reads the public sold-listings search page and stands in for
// the Browse API when application credentials are not configured. Sold
// prices are closer to realized value than asking prices, so graded
// averages from this source skew less optimistic.
type SoldScraper struct {
	client     *http.Client
	limiter    *ratelimit.Limiter
	baseURL    string
	retryPause time.Duration
}

func NewSoldScraper() *SoldScraper {
	return &SoldScraper{
		client:     &http.Client{Timeout: 20 * time.Second},
		limiter:    ratelimit.NewScrapeLimiter(),
		baseURL:    soldSearchURL,
		retryPause: time.Second,
	}
}

func (s *SoldScraper) Available() bool {
	return true
}

// Search fetches sold listings for the query, newest first. Transient
// failures retry with quadratic backoff before giving up for the cycle;
// terminal failures surface as *ebay.FetchError like the API fetcher's.
func (s *SoldScraper) Search(ctx context.Context, query string, limit int) ([]model.Listing, error) {
	s.limiter.Wait()

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(time.Duration(attempt*attempt) * s.retryPause):
			case <-ctx.Done():
				return nil, &ebay.FetchError{Query: query, Err: ctx.Err()}
			}
		}

		listings, err := s.fetch(ctx, query, limit)
		if err == nil {
			return listings, nil
		}
		lastErr = err
	}

	return nil, &ebay.FetchError{
		Query: query,
		Err:   fmt.Errorf("sold search failed after %d attempts: %w", maxRetries+1, lastErr),
	}
}

func (s *SoldScraper) fetch(ctx context.Context, query string, limit int) ([]model.Listing, error) {
	params := url.Values{}
	params.Set("_nkw", query)
	params.Set("LH_Sold", "1")
	params.Set("LH_Complete", "1")
	params.Set("_sop", "13") // ended recently
	if limit > 0 {
		params.Set("_ipg", strconv.Itoa(limit))
	}

	req, err := http.NewRequestWithContext(ctx, "GET", s.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	setBrowserHeaders(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	reader, err := decodeBody(resp)
	if err != nil {
		return nil, fmt.Errorf("create reader: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(reader)
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}

	return parseResults(doc, limit), nil
}

func setBrowserHeaders(req *http.Request) {
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")
	req.Header.Set("Connection", "keep-alive")
	req.Header.Set("Upgrade-Insecure-Requests", "1")
}

// decodeBody picks a reader for the response's Content-Encoding.
func decodeBody(resp *http.Response) (io.Reader, error) {
	switch resp.Header.Get("Content-Encoding") {
	case "gzip":
		return gzip.NewReader(resp.Body)
	case "br":
		return brotli.NewReader(resp.Body), nil
	default:
		return resp.Body, nil
	}
}

// parseResults extracts listings from the sold-search result grid. Result
// cells without a parseable price are dropped, matching the API fetcher's
// malformed-record policy.
func parseResults(doc *goquery.Document, limit int) []model.Listing {
	var listings []model.Listing

	doc.Find("li.s-item, div.s-item").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		title := strings.TrimSpace(sel.Find(".s-item__title").First().Text())
		if title == "" || strings.EqualFold(title, "Shop on eBay") {
			return true // placeholder cell
		}

		price, ok := parsePrice(sel.Find(".s-item__price").First().Text())
		if !ok {
			return true
		}

		listing := model.Listing{Title: title, Price: price}
		if href, exists := sel.Find("a.s-item__link").First().Attr("href"); exists {
			listing.URL = href
		}
		if src, exists := sel.Find(".s-item__image img").First().Attr("src"); exists {
			listing.ImageURL = src
		}
		if shipping, ok := parsePrice(sel.Find(".s-item__shipping").First().Text()); ok {
			listing.ShippingCost = shipping
		}

		listings = append(listings, listing)
		return limit <= 0 || len(listings) < limit
	})

	return listings
}

var priceRe = regexp.MustCompile(`\$([\d,]+(?:\.\d+)?)`)

// parsePrice pulls the first dollar amount out of text like "$1,234.56",
// "$12.34 to $56.78" or "+$4.99 shipping". "Free shipping" parses as 0.
func parsePrice(text string) (float64, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, false
	}
	if strings.Contains(strings.ToLower(text), "free") {
		return 0, true
	}

	m := priceRe.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
