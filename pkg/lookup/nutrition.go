package lookup

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

const (
	DefaultNutritionURL = "https://world.openfoodfacts.org"
	notAvailable        = "N/A"
	nutritionFailed     = "Could not retrieve nutritional data from the API."
)

// Nutrition is the nutritional data of a product.
type Nutrition struct {
	ProductName     string         `json:"product_name"`
	Nutriments      map[string]any `json:"nutriments"`
	Categories      string         `json:"categories"`
	IngredientsText string         `json:"ingredients_text"`
}

type product struct {
	ProductName     *string        `json:"product_name"`
	Nutriments      map[string]any `json:"nutriments"`
	Categories      *string        `json:"categories"`
	IngredientsText *string        `json:"ingredients_text"`
}

func (p product) nutrition() Nutrition {
	out := Nutrition{
		ProductName:     orNotAvailable(p.ProductName),
		Nutriments:      p.Nutriments,
		Categories:      orNotAvailable(p.Categories),
		IngredientsText: orNotAvailable(p.IngredientsText),
	}
	if out.Nutriments == nil {
		out.Nutriments = map[string]any{}
	}

	return out
}

func orNotAvailable(s *string) string {
	if s == nil {
		return notAvailable
	}

	return *s
}

type NutritionConfig struct {
	BaseURL string
	Timeout time.Duration
	// RequestsPerMinute bounds the calls sent to the API, zero means unlimited.
	RequestsPerMinute int
	Cache             *Cache
	HTTPClient        *http.Client
}

// NutritionClient queries Open Food Facts.
type NutritionClient struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	cache   *Cache
	log     *slog.Logger
}

func NewNutritionClient(cfg NutritionConfig, log *slog.Logger) *NutritionClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultNutritionURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultNutritionTimeout
	}
	if log == nil {
		log = slog.Default()
	}

	limit := rate.Inf
	if cfg.RequestsPerMinute > 0 {
		limit = rate.Limit(float64(cfg.RequestsPerMinute) / 60.0)
	}

	return &NutritionClient{
		baseURL: cfg.BaseURL,
		client:  newHTTPClient(cfg.HTTPClient, cfg.Timeout),
		limiter: rate.NewLimiter(limit, 1),
		cache:   cfg.Cache,
		log:     log,
	}
}

// Lookup searches products matching query, then falls back to reading query as a barcode.
func (nc *NutritionClient) Lookup(ctx context.Context, query string) Result[Nutrition] {
	key := "nutrition:" + query
	if cached, ok := nc.cache.get(key); ok {
		if n, ok := cached.(Nutrition); ok {
			return Ok(n)
		}
	}

	n, ok, searchErr := nc.search(ctx, query)
	if !ok {
		var productErr error
		n, ok, productErr = nc.product(ctx, query)
		if !ok {
			return Fail[Nutrition](failureKind(productErr, searchErr), nutritionFailed)
		}
	}

	nc.cache.set(key, n)

	return Ok(n)
}

// failureKind is NotFound when every stage answered without a match, otherwise the kind of the last fetch error.
func failureKind(errs ...error) Kind {
	for _, err := range errs {
		if err != nil {
			return kindOf(err)
		}
	}

	return NotFound
}

func (nc *NutritionClient) get(ctx context.Context, path string, params url.Values, out any) error {
	err := nc.limiter.Wait(ctx)
	if err != nil {
		return &fetchError{kind: Transport, err: err}
	}

	return getJSON(ctx, nc.client, nc.baseURL, path, params, out)
}

func (nc *NutritionClient) search(ctx context.Context, query string) (Nutrition, bool, error) {
	var resp struct {
		Products []product `json:"products"`
	}
	err := nc.get(ctx, "/cgi/search.pl", url.Values{
		"search_terms":  {query},
		"search_simple": {"1"},
		"json":          {"1"},
	}, &resp)
	if err != nil {
		nc.log.Debug("nutrition search failed", "query", query, "kind", kindOf(err), "error", err)

		return Nutrition{}, false, err
	}
	if len(resp.Products) == 0 {
		return Nutrition{}, false, nil
	}

	return resp.Products[0].nutrition(), true, nil
}

func (nc *NutritionClient) product(ctx context.Context, code string) (Nutrition, bool, error) {
	var resp struct {
		Status  int      `json:"status"`
		Product *product `json:"product"`
	}
	err := nc.get(ctx, "/api/v2/product/"+url.PathEscape(code)+".json", nil, &resp)
	if err != nil {
		nc.log.Debug("nutrition product lookup failed", "code", code, "kind", kindOf(err), "error", err)

		return Nutrition{}, false, err
	}
	if resp.Status != 1 || resp.Product == nil {
		return Nutrition{}, false, nil
	}

	return resp.Product.nutrition(), true, nil
}
