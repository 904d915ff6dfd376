package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/techagentng/thermotrack/config"
	errs "github.com/techagentng/thermotrack/errors"
)

const defaultOpenWeatherBaseUrl = "https://api.openweathermap.org/data/2.5/weather"

// WeatherService resolves a free-text location to the current ambient
// temperature in °C. Any failure blocks dependent flows.
type WeatherService interface {
	CurrentTemperature(ctx context.Context, location string) (float64, error)
}

type openWeatherClient struct {
	apiKey  string
	baseUrl string
	client  *http.Client
}

func NewWeatherService(conf *config.Config) WeatherService {
	baseUrl := conf.OpenWeatherBaseUrl
	if baseUrl == "" {
		baseUrl = defaultOpenWeatherBaseUrl
	}
	return &openWeatherClient{
		apiKey:  conf.OpenWeatherApiKey,
		baseUrl: baseUrl,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (w *openWeatherClient) CurrentTemperature(ctx context.Context, location string) (float64, error) {
	params := url.Values{}
	params.Set("q", location)
	params.Set("units", "metric")
	params.Set("appid", w.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.baseUrl+"?"+params.Encode(), nil)
	if err != nil {
		return 0, err
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", errs.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("%w: weather lookup returned %d", errs.ErrGatewayUnavailable, resp.StatusCode)
	}

	var payload struct {
		Main struct {
			Temp *float64 `json:"temp"`
		} `json:"main"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, fmt.Errorf("%w: %v", errs.ErrGatewayUnavailable, err)
	}
	if payload.Main.Temp == nil {
		return 0, fmt.Errorf("%w: no temperature in weather response", errs.ErrGatewayUnavailable)
	}

	return *payload.Main.Temp, nil
}
