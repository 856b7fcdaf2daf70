package lookup_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/food-assistant/pkg/lookup"
)

type offServer struct {
	search  string
	product string
	status  int
	delay   time.Duration
	calls   atomic.Int32
	paths   chan string
}

func (s *offServer) start(t *testing.T) *httptest.Server {
	t.Helper()

	s.paths = make(chan string, 10)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.calls.Add(1)
		s.paths <- r.URL.Path
		if s.delay > 0 {
			select {
			case <-time.After(s.delay):
			case <-r.Context().Done():
				return
			}
		}
		if s.status != 0 {
			w.WriteHeader(s.status)

			return
		}
		switch r.URL.Path {
		case "/cgi/search.pl":
			assert.Equal(t, "1", r.URL.Query().Get("search_simple"))
			assert.Equal(t, "1", r.URL.Query().Get("json"))
			_, _ = w.Write([]byte(s.search))
		default:
			_, _ = w.Write([]byte(s.product))
		}
	}))
	t.Cleanup(srv.Close)

	return srv
}

func (s *offServer) visited() []string {
	close(s.paths)
	var out []string
	for p := range s.paths {
		out = append(out, p)
	}

	return out
}

func TestNutritionLookup(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		server   *offServer
		query    string
		timeout  time.Duration
		expected lookup.Result[lookup.Nutrition]
		paths    []string
	}{
		"search hit": {
			server: &offServer{search: `{"products": [
				{"product_name": "Oat milk", "nutriments": {"energy-kcal_100g": 46}, "categories": "Plant milks", "ingredients_text": "water, oats"},
				{"product_name": "Other"}
			]}`},
			query: "oat milk",
			expected: lookup.Ok(lookup.Nutrition{
				ProductName:     "Oat milk",
				Nutriments:      map[string]any{"energy-kcal_100g": float64(46)},
				Categories:      "Plant milks",
				IngredientsText: "water, oats",
			}),
			paths: []string{"/cgi/search.pl"},
		},
		"missing fields": {
			server: &offServer{search: `{"products": [{"product_name": "Flour", "categories": null}]}`},
			query:  "flour",
			expected: lookup.Ok(lookup.Nutrition{
				ProductName:     "Flour",
				Nutriments:      map[string]any{},
				Categories:      "N/A",
				IngredientsText: "N/A",
			}),
			paths: []string{"/cgi/search.pl"},
		},
		"barcode fallback": {
			server: &offServer{
				search:  `{"products": []}`,
				product: `{"status": 1, "product": {"product_name": "Nutella", "nutriments": {"sugars_100g": 56.3}}}`,
			},
			query: "3017620422003",
			expected: lookup.Ok(lookup.Nutrition{
				ProductName:     "Nutella",
				Nutriments:      map[string]any{"sugars_100g": 56.3},
				Categories:      "N/A",
				IngredientsText: "N/A",
			}),
			paths: []string{"/cgi/search.pl", "/api/v2/product/3017620422003.json"},
		},
		"broken search falls back": {
			server: &offServer{
				search:  `not json`,
				product: `{"status": 1, "product": {"product_name": "Butter"}}`,
			},
			query: "butter",
			expected: lookup.Ok(lookup.Nutrition{
				ProductName:     "Butter",
				Nutriments:      map[string]any{},
				Categories:      "N/A",
				IngredientsText: "N/A",
			}),
			paths: []string{"/cgi/search.pl", "/api/v2/product/butter.json"},
		},
		"both fail": {
			server:   &offServer{search: `{"products": []}`, product: `{"status": 0, "status_verbose": "product not found"}`},
			query:    "unobtainium",
			expected: lookup.Fail[lookup.Nutrition](lookup.NotFound, "Could not retrieve nutritional data from the API."),
			paths:    []string{"/cgi/search.pl", "/api/v2/product/unobtainium.json"},
		},
		"server down": {
			server:   &offServer{status: http.StatusServiceUnavailable},
			query:    "rice",
			expected: lookup.Fail[lookup.Nutrition](lookup.Transport, "Could not retrieve nutritional data from the API."),
			paths:    []string{"/cgi/search.pl", "/api/v2/product/rice.json"},
		},
		"empty search and broken product": {
			server:   &offServer{search: `{"products": []}`, product: `<html>`},
			query:    "rice",
			expected: lookup.Fail[lookup.Nutrition](lookup.Parse, "Could not retrieve nutritional data from the API."),
			paths:    []string{"/cgi/search.pl", "/api/v2/product/rice.json"},
		},
		"timeout": {
			server:   &offServer{search: `{"products": [{"product_name": "Rice"}]}`, delay: time.Second},
			query:    "rice",
			timeout:  50 * time.Millisecond,
			expected: lookup.Fail[lookup.Nutrition](lookup.Transport, "Could not retrieve nutritional data from the API."),
			paths:    []string{"/cgi/search.pl", "/api/v2/product/rice.json"},
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			srv := tc.server.start(t)
			client := lookup.NewNutritionClient(lookup.NutritionConfig{BaseURL: srv.URL, Timeout: tc.timeout}, nil)

			got := client.Lookup(context.Background(), tc.query)
			assert.Equal(t, tc.expected, got)
			assert.Equal(t, tc.paths, tc.server.visited())
		})
	}
}

func TestNutritionLookupCache(t *testing.T) {
	t.Parallel()

	server := &offServer{search: `{"products": [{"product_name": "Rice"}]}`}
	srv := server.start(t)

	cache, err := lookup.NewCache(time.Minute)
	require.NoError(t, err)
	t.Cleanup(cache.Close)

	client := lookup.NewNutritionClient(lookup.NutritionConfig{BaseURL: srv.URL, Cache: cache}, nil)
	first := client.Lookup(context.Background(), "rice")
	second := client.Lookup(context.Background(), "rice")

	require.True(t, first.OK())
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), server.calls.Load())
}

func TestNutritionLookupRateLimit(t *testing.T) {
	t.Parallel()

	server := &offServer{search: `{"products": []}`, product: `{"status": 0}`}
	srv := server.start(t)

	client := lookup.NewNutritionClient(lookup.NutritionConfig{BaseURL: srv.URL, RequestsPerMinute: 1}, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	got := client.Lookup(ctx, "rice")
	assert.False(t, got.OK())
	assert.Equal(t, int32(1), server.calls.Load())
}

func TestNutritionTool(t *testing.T) {
	t.Parallel()

	server := &offServer{search: `{"products": [{"product_name": "Rice"}]}`}
	srv := server.start(t)

	tool := lookup.NutritionTool(lookup.NewNutritionClient(lookup.NutritionConfig{BaseURL: srv.URL}, nil))
	assert.Equal(t, "get_nutrition_data", tool.Spec().Name)

	got := tool.Invoke(context.Background(), "rice")
	assert.Equal(t, "success", got["status"])
	assert.Equal(t, "Rice", got["result"].(lookup.Nutrition).ProductName)
}
