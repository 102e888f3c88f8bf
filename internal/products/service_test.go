package products

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSearchReturnsTopSix(t *testing.T) {
	items := make([]map[string]any, 10)
	for i := range items {
		items[i] = map[string]any{
			"name":  "Stand Mixer",
			"url":   "/dp/B000",
			"image": "https://img.example.com/mixer.jpg",
			"price": "$299.99",
		}
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("api_key") != "key-123" {
			t.Errorf("missing api key in request: %s", r.URL.RawQuery)
		}
		json.NewEncoder(w).Encode(map[string]any{"results": items})
	}))
	defer srv.Close()

	svc := New("key-123", srv.URL)
	products, err := svc.Search(context.Background(), "stand mixer")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(products) != 6 {
		t.Fatalf("got %d products, want 6", len(products))
	}
	p := products[0]
	if p.Title != "Stand Mixer" {
		t.Errorf("title = %q", p.Title)
	}
	if p.URL != "https://www.amazon.com/dp/B000" {
		t.Errorf("url = %q, want absolute amazon url", p.URL)
	}
	if p.Price != 299.99 {
		t.Errorf("price = %v, want 299.99", p.Price)
	}
}

func TestSearchUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	svc := New("key-123", srv.URL)
	if _, err := svc.Search(context.Background(), "toaster"); err == nil {
		t.Fatal("expected error on upstream failure")
	}
}

func TestSearchRequiresQueryAndKey(t *testing.T) {
	svc := New("", "")
	if _, err := svc.Search(context.Background(), ""); err == nil {
		t.Error("expected error for empty query")
	}
	if _, err := svc.Search(context.Background(), "toaster"); err == nil {
		t.Error("expected error when unconfigured")
	}
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{`"$1,299.00"`, 1299},
		{`"49.95"`, 49.95},
		{`12.5`, 12.5},
		{`"free"`, 0},
		{`null`, 0},
	}
	for _, tt := range tests {
		if got := parsePrice(json.RawMessage(tt.raw)); got != tt.want {
			t.Errorf("parsePrice(%s) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}
