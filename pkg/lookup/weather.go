package lookup

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	DefaultGeocodeURL  = "https://geocoding-api.open-meteo.com"
	DefaultForecastURL = "https://api.open-meteo.com"
	DefaultTimeURL     = "https://www.timeapi.io"
)

// Place is a geocoded city.
type Place struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timezone  string  `json:"timezone"`
}

var weatherCodes = map[int]string{
	0:  "Clear sky",
	1:  "Mainly clear",
	2:  "Partly cloudy",
	3:  "Overcast",
	45: "Fog",
	48: "Depositing rime fog",
	51: "Light drizzle",
	61: "Slight rain",
	63: "Moderate rain",
	65: "Heavy rain",
	71: "Slight snow",
	73: "Moderate snow",
	75: "Heavy snow",
	95: "Thunderstorm",
}

// WeatherDescription maps a WMO weather code to text.
func WeatherDescription(code int) string {
	desc, ok := weatherCodes[code]
	if !ok {
		return "Unknown"
	}

	return desc
}

func Fahrenheit(celsius float64) float64 {
	return celsius*9/5 + 32
}

// Humidity picks the hourly humidity matching the current timestamp.
func Humidity(now string, times []string, values []float64) string {
	for i, t := range times {
		if t == now && i < len(values) {
			return strconv.FormatFloat(values[i], 'f', -1, 64)
		}
	}
	if len(values) > 0 {
		return strconv.FormatFloat(values[0], 'f', -1, 64)
	}

	return "unknown"
}

type WeatherConfig struct {
	GeocodeURL  string
	ForecastURL string
	TimeURL     string
	Timeout     time.Duration
	HTTPClient  *http.Client
}

// WeatherClient queries Open-Meteo and TimeAPI.io.
type WeatherClient struct {
	geocodeURL  string
	forecastURL string
	timeURL     string
	client      *http.Client
	log         *slog.Logger
}

func NewWeatherClient(cfg WeatherConfig, log *slog.Logger) *WeatherClient {
	if cfg.GeocodeURL == "" {
		cfg.GeocodeURL = DefaultGeocodeURL
	}
	if cfg.ForecastURL == "" {
		cfg.ForecastURL = DefaultForecastURL
	}
	if cfg.TimeURL == "" {
		cfg.TimeURL = DefaultTimeURL
	}
	if log == nil {
		log = slog.Default()
	}

	return &WeatherClient{
		geocodeURL:  cfg.GeocodeURL,
		forecastURL: cfg.ForecastURL,
		timeURL:     cfg.TimeURL,
		client:      newHTTPClient(cfg.HTTPClient, cfg.Timeout),
		log:         log,
	}
}

func (wc *WeatherClient) Geocode(ctx context.Context, name string) Result[Place] {
	var resp struct {
		Results []Place `json:"results"`
	}
	err := getJSON(ctx, wc.client, wc.geocodeURL, "/v1/search", url.Values{
		"name":     {name},
		"count":    {"1"},
		"language": {"en"},
		"format":   {"json"},
	}, &resp)
	if err != nil {
		wc.log.Debug("geocoding failed", "city", name, "error", err)

		return Fail[Place](kindOf(err), "Geocoding error: %v", err)
	}
	if len(resp.Results) == 0 {
		return Fail[Place](NotFound, "City '%s' not found.", name)
	}

	return Ok(resp.Results[0])
}

type forecast struct {
	CurrentWeather struct {
		Time        string   `json:"time"`
		Temperature *float64 `json:"temperature"`
		WeatherCode int      `json:"weathercode"`
		WindSpeed   *float64 `json:"windspeed"`
	} `json:"current_weather"`
	Hourly struct {
		Time             []string  `json:"time"`
		RelativeHumidity []float64 `json:"relativehumidity_2m"`
	} `json:"hourly"`
}

// Weather returns a sentence describing the current weather of city.
func (wc *WeatherClient) Weather(ctx context.Context, city string) Result[string] {
	geo := wc.Geocode(ctx, city)
	if !geo.OK() {
		return FailWith[string](geo.Failure())
	}
	place := geo.Value()

	var resp forecast
	err := getJSON(ctx, wc.client, wc.forecastURL, "/v1/forecast", url.Values{
		"latitude":        {strconv.FormatFloat(place.Latitude, 'f', -1, 64)},
		"longitude":       {strconv.FormatFloat(place.Longitude, 'f', -1, 64)},
		"current_weather": {"true"},
		"hourly":          {"relativehumidity_2m"},
		"timezone":        {"auto"},
	}, &resp)
	if err != nil {
		wc.log.Debug("weather lookup failed", "city", city, "error", err)

		return Fail[string](kindOf(err), "Weather lookup failed: %v", err)
	}

	current := resp.CurrentWeather
	if current.Temperature == nil {
		return Fail[string](Parse, "Weather lookup failed: no temperature for %s", place.Name)
	}
	wind := notAvailable
	if current.WindSpeed != nil {
		wind = strconv.FormatFloat(*current.WindSpeed, 'f', -1, 64)
	}

	return Ok(fmt.Sprintf("The weather in %s is %s with %.1f°C (%.1f°F), humidity %s%% and wind %s km/h.",
		place.Name,
		WeatherDescription(current.WeatherCode),
		*current.Temperature,
		Fahrenheit(*current.Temperature),
		Humidity(current.Time, resp.Hourly.Time, resp.Hourly.RelativeHumidity),
		wind,
	))
}

var timeLayouts = []string{
	"2006-01-02T15:04:05.999999999Z07:00",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
}

// ParseLocalTime parses the timestamps returned by the time service.
func ParseLocalTime(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range timeLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}

	return time.Time{}, lastErr
}

// CurrentTime returns the local time of city.
func (wc *WeatherClient) CurrentTime(ctx context.Context, city string) Result[string] {
	geo := wc.Geocode(ctx, city)
	if !geo.OK() {
		return FailWith[string](geo.Failure())
	}
	tz := geo.Value().Timezone

	var resp struct {
		DateTime string `json:"dateTime"`
		Date     string `json:"date"`
		Time     string `json:"time"`
	}
	err := getJSON(ctx, wc.client, wc.timeURL, "/api/Time/current/zone", url.Values{"timeZone": {tz}}, &resp)
	if err != nil {
		wc.log.Debug("time lookup failed", "city", city, "error", err)
		if kindOf(err) == Parse {
			return Fail[string](Parse, "Time parsing failed: %v", err)
		}

		return Fail[string](Transport, "Time lookup failed: %v", err)
	}

	raw := resp.DateTime
	if raw == "" {
		raw = resp.Date + "T" + resp.Time
	}
	t, err := ParseLocalTime(raw)
	if err != nil {
		return Fail[string](Parse, "Time parsing failed: %v", err)
	}

	return Ok(t.Format("2006-01-02 15:04:05") + " (" + tz + ")")
}
