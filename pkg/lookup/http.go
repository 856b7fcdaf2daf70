package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"
)

const (
	DefaultTimeout          = 5 * time.Second
	DefaultNutritionTimeout = 10 * time.Second
	maxBodySize             = 4 << 20
)

var errNoBaseURL = errors.New("base url must be set")

type fetchError struct {
	kind Kind
	err  error
}

func (e *fetchError) Error() string {
	return e.err.Error()
}

func (e *fetchError) Unwrap() error {
	return e.err
}

func kindOf(err error) Kind {
	var fe *fetchError
	if errors.As(err, &fe) {
		return fe.kind
	}

	return Transport
}

func newHTTPClient(client *http.Client, timeout time.Duration) *http.Client {
	if client != nil {
		return client
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &http.Client{Timeout: timeout}
}

// getJSON fetches base+path with params and decodes the JSON body into out.
func getJSON(ctx context.Context, client *http.Client, base, path string, params url.Values, out any) error {
	if base == "" {
		return &fetchError{kind: Transport, err: errNoBaseURL}
	}

	target := base + path
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return &fetchError{kind: Transport, err: errors.Wrap(err, "unable to create request")}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "food-assistant/1.0")

	resp, err := client.Do(req)
	if err != nil {
		return &fetchError{kind: Transport, err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &fetchError{kind: Transport, err: fmt.Errorf("%d %s for url: %s", resp.StatusCode, http.StatusText(resp.StatusCode), target)}
	}

	err = json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(out)
	if err != nil {
		return &fetchError{kind: Parse, err: errors.Wrap(err, "unable to decode response")}
	}

	return nil
}
