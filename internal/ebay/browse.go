package ebay

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pokebrief/gradewatch/internal/model"
	"github.com/pokebrief/gradewatch/internal/ratelimit"
)

const (
	prodBrowseURL    = "https://api.ebay.com/buy/browse/v1/item_summary/search"
	sandboxBrowseURL = "https://api.sandbox.ebay.com/buy/browse/v1/item_summary/search"

	tradingCardsCategory = "183454" // Trading Card Games
)

// Browse API item summary search payload, reduced to the fields we adapt.
type browseResponse struct {
	ItemSummaries []browseItem `json:"itemSummaries"`
	Total         int          `json:"total"`
}

type browseItem struct {
	Title      string `json:"title"`
	ItemWebURL string `json:"itemWebUrl"`
	Image      struct {
		ImageURL string `json:"imageUrl"`
	} `json:"image"`
	Price struct {
		Value    string `json:"value"`
		Currency string `json:"currency"`
	} `json:"price"`
	ShippingOptions []struct {
		ShippingCost struct {
			Value string `json:"value"`
		} `json:"shippingCost"`
	} `json:"shippingOptions"`
}

// Client searches the eBay Browse API and adapts item summaries into typed
// listings. It never mutates shared state beyond its own rate limiter.
type Client struct {
	tokens     *TokenSource
	httpClient *http.Client
	limiter    *ratelimit.Limiter
	baseURL    string
}

func NewClient(tokens *TokenSource, sandbox bool) *Client {
	baseURL := prodBrowseURL
	if sandbox {
		baseURL = sandboxBrowseURL
	}
	return &Client{
		tokens:     tokens,
		httpClient: &http.Client{Timeout: 20 * time.Second},
		limiter:    ratelimit.NewBrowseLimiter(),
		baseURL:    baseURL,
	}
}

func (c *Client) Available() bool {
	return c.tokens != nil
}

// Search returns up to limit listings for the query, newest first as the
// API orders them. Zero matches is an empty slice, not an error; items
// without a parseable price are dropped; transport and status failures
// surface as *FetchError.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]model.Listing, error) {
	if !c.Available() {
		return nil, &FetchError{Query: query, Err: fmt.Errorf("client credentials not configured")}
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	c.limiter.Wait()

	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("category_ids", tradingCardsCategory)
	params.Set("sort", "newlyListed")

	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, &FetchError{Query: query, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-EBAY-C-MARKETPLACE-ID", "EBAY_US")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{Query: query, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{Query: query, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{Query: query, Err: fmt.Errorf("status %d: %s", resp.StatusCode, truncateBody(body))}
	}

	var payload browseResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &FetchError{Query: query, Err: fmt.Errorf("parse response: %w", err)}
	}

	listings := make([]model.Listing, 0, len(payload.ItemSummaries))
	for _, item := range payload.ItemSummaries {
		listing, ok := adaptItem(item)
		if !ok {
			continue // skip malformed items
		}
		listings = append(listings, listing)
		if limit > 0 && len(listings) == limit {
			break
		}
	}

	return listings, nil
}

// adaptItem validates a raw summary into a Listing or rejects it outright.
// Nothing partially parsed crosses this boundary.
func adaptItem(item browseItem) (model.Listing, bool) {
	if item.Title == "" {
		return model.Listing{}, false
	}
	price, err := strconv.ParseFloat(item.Price.Value, 64)
	if err != nil || price < 0 {
		return model.Listing{}, false
	}

	listing := model.Listing{
		Title:    item.Title,
		Price:    price,
		URL:      item.ItemWebURL,
		ImageURL: item.Image.ImageURL,
	}
	if len(item.ShippingOptions) > 0 {
		if cost, err := strconv.ParseFloat(item.ShippingOptions[0].ShippingCost.Value, 64); err == nil && cost >= 0 {
			listing.ShippingCost = cost
		}
	}
	return listing, true
}

func truncateBody(body []byte) string {
	const max = 200
	s := strings.TrimSpace(string(body))
	if len(s) > max {
		s = s[:max] + "..."
	}
	return s
}
