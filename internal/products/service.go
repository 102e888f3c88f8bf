// Package products searches Amazon listings through ScraperAPI so
// planners can add registry gifts without typing details by hand.
package products

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const maxResults = 6

// Product is a single search hit.
type Product struct {
	Title    string  `json:"title"`
	URL      string  `json:"url"`
	ImageURL string  `json:"imageUrl"`
	Price    float64 `json:"price"`
}

// Service proxies product searches to ScraperAPI.
type Service struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// New creates a product search service. apiKey may be empty; Search then
// reports the service as unconfigured.
func New(apiKey, baseURL string) *Service {
	if baseURL == "" {
		baseURL = "http://api.scraperapi.com"
	}
	return &Service{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// IsConfigured reports whether an API key is present.
func (s *Service) IsConfigured() bool {
	return s.apiKey != ""
}

type scraperItem struct {
	Name     string          `json:"name"`
	Title    string          `json:"title"`
	URL      string          `json:"url"`
	Image    string          `json:"image"`
	ImageURL string          `json:"image_url"`
	Price    json.RawMessage `json:"price"`
}

type scraperResponse struct {
	Results []scraperItem `json:"results"`
}

// Search returns up to six products matching the query.
func (s *Service) Search(ctx context.Context, query string) ([]Product, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("query is required")
	}
	if !s.IsConfigured() {
		return nil, fmt.Errorf("product search not configured")
	}

	amazonURL := "https://www.amazon.com/s?k=" + url.QueryEscape(query)
	reqURL := fmt.Sprintf("%s?api_key=%s&url=%s&autoparse=true&country_code=us",
		s.baseURL, url.QueryEscape(s.apiKey), url.QueryEscape(amazonURL))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch products: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("scraper api status %d", resp.StatusCode)
	}

	var payload scraperResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}

	products := make([]Product, 0, maxResults)
	for _, item := range payload.Results {
		if len(products) >= maxResults {
			break
		}
		products = append(products, toProduct(item))
	}
	return products, nil
}

func toProduct(item scraperItem) Product {
	title := item.Name
	if title == "" {
		title = item.Title
	}
	if title == "" {
		title = "Unknown Item"
	}

	link := item.URL
	if link != "" && !strings.HasPrefix(link, "http") {
		link = "https://www.amazon.com" + link
	}

	image := item.Image
	if image == "" {
		image = item.ImageURL
	}

	return Product{
		Title:    title,
		URL:      link,
		ImageURL: image,
		Price:    parsePrice(item.Price),
	}
}

var nonPriceChars = regexp.MustCompile(`[^0-9.]`)

// parsePrice accepts prices as JSON numbers or strings like "$1,299.00".
func parsePrice(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return 0
	}

	var num float64
	if err := json.Unmarshal(raw, &num); err == nil {
		return num
	}

	var str string
	if err := json.Unmarshal(raw, &str); err != nil {
		return 0
	}
	cleaned := nonPriceChars.ReplaceAllString(str, "")
	parsed, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return parsed
}
