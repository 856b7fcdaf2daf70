package lookup_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/food-assistant/pkg/lookup"
)

const parisGeocode = `{"results": [{"name": "Paris", "latitude": 48.85341, "longitude": 2.3488, "timezone": "Europe/Paris"}]}`

type openMeteo struct {
	geocode  string
	forecast string
	clock    string
	status   map[string]int
	delay    map[string]time.Duration
	timeout  time.Duration
}

func (om *openMeteo) start(t *testing.T) lookup.WeatherConfig {
	t.Helper()

	handler := func(body string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if delay, ok := om.delay[r.URL.Path]; ok {
				select {
				case <-time.After(delay):
				case <-r.Context().Done():
					return
				}
			}
			if status, ok := om.status[r.URL.Path]; ok {
				w.WriteHeader(status)

				return
			}
			_, _ = w.Write([]byte(body))
		}
	}

	geo := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/search", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("count"))
		assert.Equal(t, "en", r.URL.Query().Get("language"))
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		handler(om.geocode)(w, r)
	}))
	forecast := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/forecast", r.URL.Path)
		assert.Equal(t, "48.85341", r.URL.Query().Get("latitude"))
		assert.Equal(t, "true", r.URL.Query().Get("current_weather"))
		assert.Equal(t, "relativehumidity_2m", r.URL.Query().Get("hourly"))
		assert.Equal(t, "auto", r.URL.Query().Get("timezone"))
		handler(om.forecast)(w, r)
	}))
	clock := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/Time/current/zone", r.URL.Path)
		assert.Equal(t, "Europe/Paris", r.URL.Query().Get("timeZone"))
		handler(om.clock)(w, r)
	}))
	t.Cleanup(func() {
		geo.Close()
		forecast.Close()
		clock.Close()
	})

	timeout := om.timeout
	if timeout == 0 {
		timeout = time.Second
	}

	return lookup.WeatherConfig{GeocodeURL: geo.URL, ForecastURL: forecast.URL, TimeURL: clock.URL, Timeout: timeout}
}

func TestWeatherDescription(t *testing.T) {
	t.Parallel()

	tcs := map[int]string{
		0:   "Clear sky",
		3:   "Overcast",
		45:  "Fog",
		63:  "Moderate rain",
		95:  "Thunderstorm",
		4:   "Unknown",
		99:  "Unknown",
		-1:  "Unknown",
		100: "Unknown",
	}
	for code, expected := range tcs {
		assert.Equal(t, expected, lookup.WeatherDescription(code), code)
	}
}

func TestFahrenheit(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 32.0, lookup.Fahrenheit(0), 1e-9)
	assert.InDelta(t, 212.0, lookup.Fahrenheit(100), 1e-9)
	assert.InDelta(t, -40.0, lookup.Fahrenheit(-40), 1e-9)
}

func TestHumidity(t *testing.T) {
	t.Parallel()

	times := []string{"2026-10-14T00:00", "2026-10-14T01:00", "2026-10-14T02:00"}
	values := []float64{80, 75, 71}

	tcs := map[string]struct {
		now      string
		times    []string
		values   []float64
		expected string
	}{
		"matching timestamp": {now: "2026-10-14T02:00", times: times, values: values, expected: "71"},
		"absent timestamp":   {now: "2026-10-14T09:00", times: times, values: values, expected: "80"},
		"empty series":       {now: "2026-10-14T02:00", expected: "unknown"},
		"short values":       {now: "2026-10-14T02:00", times: times, values: []float64{62.5}, expected: "62.5"},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.expected, lookup.Humidity(tc.now, tc.times, tc.values))
		})
	}
}

func TestGeocode(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		meteo    *openMeteo
		city     string
		expected lookup.Result[lookup.Place]
	}{
		"found": {
			meteo:    &openMeteo{geocode: parisGeocode},
			city:     "Paris",
			expected: lookup.Ok(lookup.Place{Name: "Paris", Latitude: 48.85341, Longitude: 2.3488, Timezone: "Europe/Paris"}),
		},
		"empty results": {
			meteo:    &openMeteo{geocode: `{"results": []}`},
			city:     "Nonexistent City XYZ",
			expected: lookup.Fail[lookup.Place](lookup.NotFound, "City 'Nonexistent City XYZ' not found."),
		},
		"no results key": {
			meteo:    &openMeteo{geocode: `{"generationtime_ms": 0.5}`},
			city:     "Nowhere",
			expected: lookup.Fail[lookup.Place](lookup.NotFound, "City 'Nowhere' not found."),
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			client := lookup.NewWeatherClient(tc.meteo.start(t), nil)
			assert.Equal(t, tc.expected, client.Geocode(context.Background(), tc.city))
		})
	}
}

func TestGeocodeTransport(t *testing.T) {
	t.Parallel()

	meteo := &openMeteo{status: map[string]int{"/v1/search": http.StatusInternalServerError}}
	got := lookup.NewWeatherClient(meteo.start(t), nil).Geocode(context.Background(), "Paris")
	require.False(t, got.OK())
	assert.Equal(t, lookup.Transport, got.Failure().Kind)
	assert.Contains(t, got.Failure().Message, "Geocoding error: 500 Internal Server Error")

	meteo = &openMeteo{geocode: "<html>"}
	got = lookup.NewWeatherClient(meteo.start(t), nil).Geocode(context.Background(), "Paris")
	require.False(t, got.OK())
	assert.Equal(t, lookup.Parse, got.Failure().Kind)
}

func TestWeather(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		meteo    *openMeteo
		city     string
		expected lookup.Result[string]
	}{
		"report": {
			meteo: &openMeteo{
				geocode: parisGeocode,
				forecast: `{
					"current_weather": {"time": "2026-10-14T14:00", "temperature": 18.4, "weathercode": 2, "windspeed": 11.2},
					"hourly": {"time": ["2026-10-14T13:00", "2026-10-14T14:00"], "relativehumidity_2m": [70, 64]}
				}`,
			},
			city:     "Paris",
			expected: lookup.Ok("The weather in Paris is Partly cloudy with 18.4°C (65.1°F), humidity 64% and wind 11.2 km/h."),
		},
		"freezing unknown code": {
			meteo: &openMeteo{
				geocode:  parisGeocode,
				forecast: `{"current_weather": {"time": "2026-10-14T14:00", "temperature": 0, "weathercode": 7, "windspeed": 3}, "hourly": {}}`,
			},
			city:     "Paris",
			expected: lookup.Ok("The weather in Paris is Unknown with 0.0°C (32.0°F), humidity unknown% and wind 3 km/h."),
		},
		"city not found passes through": {
			meteo:    &openMeteo{geocode: `{"results": []}`},
			city:     "Nonexistent City XYZ",
			expected: lookup.Fail[string](lookup.NotFound, "City 'Nonexistent City XYZ' not found."),
		},
		"forecast down": {
			meteo: &openMeteo{
				geocode: parisGeocode,
				status:  map[string]int{"/v1/forecast": http.StatusBadGateway},
			},
			city: "Paris",
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			client := lookup.NewWeatherClient(tc.meteo.start(t), nil)
			got := client.Weather(context.Background(), tc.city)
			if name == "forecast down" {
				require.False(t, got.OK())
				assert.Equal(t, lookup.Transport, got.Failure().Kind)
				assert.Contains(t, got.Failure().Message, "Weather lookup failed: 502 Bad Gateway")

				return
			}
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestWeatherPassThroughIsUnchanged(t *testing.T) {
	t.Parallel()

	client := lookup.NewWeatherClient((&openMeteo{geocode: `{"results": []}`}).start(t), nil)

	geo := client.Geocode(context.Background(), "Nonexistent City XYZ")
	weather := client.Weather(context.Background(), "Nonexistent City XYZ")
	clock := client.CurrentTime(context.Background(), "Nonexistent City XYZ")

	require.False(t, geo.OK())
	assert.Contains(t, geo.Failure().Message, "Nonexistent City XYZ")
	assert.Equal(t, geo.Failure(), weather.Failure())
	assert.Equal(t, geo.Failure(), clock.Failure())
}

func TestCurrentTime(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		clock    string
		status   int
		expected string
		kind     lookup.Kind
		failed   string
	}{
		"date time":         {clock: `{"dateTime": "2026-10-14T16:05:09.1234567", "timeZone": "Europe/Paris"}`, expected: "2026-10-14 16:05:09 (Europe/Paris)"},
		"date and time":     {clock: `{"date": "2026-10-14", "time": "16:05"}`, expected: "2026-10-14 16:05:00 (Europe/Paris)"},
		"unparseable":       {clock: `{"date": "10/14/2026", "time": "16:05"}`, kind: lookup.Parse, failed: "Time parsing failed: "},
		"invalid json body": {clock: `{`, kind: lookup.Parse, failed: "Time parsing failed: "},
		"service down":      {status: http.StatusServiceUnavailable, kind: lookup.Transport, failed: "Time lookup failed: 503 Service Unavailable"},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			meteo := &openMeteo{geocode: parisGeocode, clock: tc.clock}
			if tc.status != 0 {
				meteo.status = map[string]int{"/api/Time/current/zone": tc.status}
			}
			got := lookup.NewWeatherClient(meteo.start(t), nil).CurrentTime(context.Background(), "Paris")
			if tc.failed != "" {
				require.False(t, got.OK())
				assert.Equal(t, tc.kind, got.Failure().Kind)
				assert.Contains(t, got.Failure().Message, tc.failed)

				return
			}
			require.True(t, got.OK(), got.Failure())
			assert.Equal(t, tc.expected, got.Value())
		})
	}
}

func TestLookupTimeout(t *testing.T) {
	t.Parallel()

	stalled := time.Second

	tcs := map[string]struct {
		path   string
		lookup func(ctx context.Context, client *lookup.WeatherClient) *lookup.Failure
		prefix string
	}{
		"geocode": {
			path: "/v1/search",
			lookup: func(ctx context.Context, client *lookup.WeatherClient) *lookup.Failure {
				return client.Geocode(ctx, "Paris").Failure()
			},
			prefix: "Geocoding error: ",
		},
		"weather": {
			path: "/v1/forecast",
			lookup: func(ctx context.Context, client *lookup.WeatherClient) *lookup.Failure {
				return client.Weather(ctx, "Paris").Failure()
			},
			prefix: "Weather lookup failed: ",
		},
		"current time": {
			path: "/api/Time/current/zone",
			lookup: func(ctx context.Context, client *lookup.WeatherClient) *lookup.Failure {
				return client.CurrentTime(ctx, "Paris").Failure()
			},
			prefix: "Time lookup failed: ",
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			meteo := &openMeteo{
				geocode:  parisGeocode,
				forecast: `{"current_weather": {"temperature": 20}}`,
				clock:    `{"dateTime": "2026-10-14T16:05:09"}`,
				delay:    map[string]time.Duration{tc.path: stalled},
				timeout:  50 * time.Millisecond,
			}
			client := lookup.NewWeatherClient(meteo.start(t), nil)

			start := time.Now()
			failure := tc.lookup(context.Background(), client)
			require.NotNil(t, failure)
			assert.Less(t, time.Since(start), stalled)
			assert.Equal(t, lookup.Transport, failure.Kind)
			assert.True(t, strings.HasPrefix(failure.Message, tc.prefix), failure.Message)
		})
	}
}

func TestWeatherTools(t *testing.T) {
	t.Parallel()

	client := lookup.NewWeatherClient((&openMeteo{geocode: `{"results": []}`}).start(t), nil)

	weather := lookup.WeatherTool(client)
	assert.Equal(t, "get_weather", weather.Spec().Name)
	assert.Equal(t, "city", weather.Spec().Param)
	assert.Equal(t, map[string]any{"status": "error", "error_message": "City 'Atlantis' not found."}, weather.Invoke(context.Background(), "Atlantis"))

	clock := lookup.TimeTool(client)
	assert.Equal(t, "get_current_time", clock.Spec().Name)
	assert.Equal(t, "error", clock.Invoke(context.Background(), "Atlantis")["status"])
}

func TestWeatherToolReport(t *testing.T) {
	t.Parallel()

	meteo := &openMeteo{
		geocode:  parisGeocode,
		forecast: `{"current_weather": {"time": "t", "temperature": 100, "weathercode": 95, "windspeed": 40.5}, "hourly": {"time": ["x"], "relativehumidity_2m": [90]}}`,
	}
	got := lookup.WeatherTool(lookup.NewWeatherClient(meteo.start(t), nil)).Invoke(context.Background(), "Paris")
	assert.Equal(t, map[string]any{
		"status": "success",
		"report": "The weather in Paris is Thunderstorm with 100.0°C (212.0°F), humidity 90% and wind 40.5 km/h.",
	}, got)
}
