package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-dashboard/internal/metrics"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

const defaultOpenWeatherBaseURL = "https://api.openweathermap.org/data/2.5"

// OpenWeatherOptions configures the OpenWeatherMap client.
type OpenWeatherOptions struct {
	APIKey  string
	BaseURL string
	// ForecastTTL caches forecast documents per city and unit (0 = disabled).
	ForecastTTL time.Duration
	Backoff     *BackoffConfig
	Metrics     *metrics.Metrics
}

// OpenWeatherProvider implements the weather.Provider interface for OpenWeatherMap.
type OpenWeatherProvider struct {
	name      string
	apiKey    string
	baseURL   string
	httpCfg   HTTPClientConfig
	circuit   *gobreaker.CircuitBreaker
	forecasts *gocache.Cache
	metrics   *metrics.Metrics
}

// NewOpenWeatherProvider creates the provider. client must carry a timeout;
// it bounds every outbound call.
func NewOpenWeatherProvider(client *http.Client, opts OpenWeatherOptions) *OpenWeatherProvider {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultOpenWeatherBaseURL
	}
	backoff := BackoffConfig{
		MaxRetries:      3,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     5 * time.Second,
	}
	if opts.Backoff != nil {
		backoff = *opts.Backoff
	}

	p := &OpenWeatherProvider{
		name:    "openweathermap",
		apiKey:  opts.APIKey,
		baseURL: baseURL,
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: backoff,
		},
		circuit: newCircuitBreaker("openweather"),
		metrics: opts.Metrics,
	}
	if opts.ForecastTTL > 0 {
		p.forecasts = gocache.New(opts.ForecastTTL, 2*opts.ForecastTTL)
	}
	return p
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

// Current fetches "current weather for city in units".
func (p *OpenWeatherProvider) Current(ctx context.Context, city string, units weather.Unit) (*weather.CurrentWeather, error) {
	var payload weather.CurrentWeather
	if err := p.get(ctx, "current", "/weather", city, units, &payload); err != nil {
		return nil, err
	}
	payload.Units = units
	return &payload, nil
}

// Forecast fetches the 5-day/3-hour forecast. A document without a "list"
// field is returned as-is with a nil List.
func (p *OpenWeatherProvider) Forecast(ctx context.Context, city string, units weather.Unit) (*weather.ForecastResponse, error) {
	key := strings.ToLower(city) + "|" + string(units)
	if p.forecasts != nil {
		if v, ok := p.forecasts.Get(key); ok {
			if cached, ok := v.(*weather.ForecastResponse); ok {
				return cached, nil
			}
		}
	}

	var payload weather.ForecastResponse
	if err := p.get(ctx, "forecast", "/forecast", city, units, &payload); err != nil {
		return nil, err
	}
	payload.Units = units

	if p.forecasts != nil && payload.List != nil {
		p.forecasts.SetDefault(key, &payload)
	}
	return &payload, nil
}

func (p *OpenWeatherProvider) get(ctx context.Context, op, path, city string, units weather.Unit, out any) (err error) {
	start := time.Now()
	defer func() {
		status := "success"
		if err != nil {
			status = "error"
		}
		p.metrics.RecordProviderRequest(p.name, op, status, time.Since(start).Seconds())
	}()

	if p.apiKey == "" {
		return fmt.Errorf("%w: openweather api key is not configured", weather.ErrUpstream)
	}
	city = strings.TrimSpace(city)
	if city == "" {
		return weather.ErrEmptyCity
	}

	buildRequest := func(ctx context.Context) (*http.Request, error) {
		values := url.Values{}
		values.Set("q", city)
		values.Set("appid", p.apiKey)
		values.Set("units", units.ProviderUnits())

		u := fmt.Sprintf("%s%s?%s", p.baseURL, path, values.Encode())
		return http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return classify(fmt.Errorf("decode %s response: %w", op, err))
	}
	return nil
}
