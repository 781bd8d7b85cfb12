package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/mkarlsven/weather-console/internal/models"
	"github.com/mkarlsven/weather-console/internal/observability"
)

// Service fetches one complete weather snapshot for a city name or a
// coordinate pair.
type Service interface {
	FetchByCity(ctx context.Context, name string) (models.Snapshot, error)
	FetchByCoords(ctx context.Context, lat, lon float64) (models.Snapshot, error)
}

// Client talks to a wttr.in-compatible endpoint: GET {base}/{location}?format=j1.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient returns a Client for the given base URL. timeout bounds each
// request; zero disables the client-side timeout and defers to the transport.
func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid weather API URL: %w", err)
	}
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

// FetchByCity fetches current conditions for a city name.
func (c *Client) FetchByCity(ctx context.Context, name string) (models.Snapshot, error) {
	return c.fetch(ctx, name)
}

// FetchByCoords fetches current conditions for a coordinate pair, sent as
// "lat,lon" in the request path.
func (c *Client) FetchByCoords(ctx context.Context, lat, lon float64) (models.Snapshot, error) {
	loc := strconv.FormatFloat(lat, 'f', -1, 64) + "," + strconv.FormatFloat(lon, 'f', -1, 64)
	return c.fetch(ctx, loc)
}

// j1Response mirrors the subset of the wttr.in ?format=j1 payload this client
// reads. Every numeric field arrives as a string; both unit systems are
// independently sourced, so rendering never converts.
type j1Response struct {
	CurrentCondition []struct {
		TempC          string `json:"temp_C"`
		TempF          string `json:"temp_F"`
		FeelsLikeC     string `json:"FeelsLikeC"`
		FeelsLikeF     string `json:"FeelsLikeF"`
		Humidity       string `json:"humidity"`
		Visibility     string `json:"visibility"`
		WindspeedKmph  string `json:"windspeedKmph"`
		WindspeedMiles string `json:"windspeedMiles"`
		Pressure       string `json:"pressure"`
		WeatherDesc    []struct {
			Value string `json:"value"`
		} `json:"weatherDesc"`
	} `json:"current_condition"`
	NearestArea []struct {
		AreaName []struct {
			Value string `json:"value"`
		} `json:"areaName"`
		Country []struct {
			Value string `json:"value"`
		} `json:"country"`
	} `json:"nearest_area"`
}

func (c *Client) fetch(ctx context.Context, location string) (models.Snapshot, error) {
	start := time.Now()

	req, err := c.buildRequest(ctx, location)
	if err != nil {
		observability.WeatherFetchesTotal.WithLabelValues("error").Inc()
		return models.Snapshot{}, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		duration := time.Since(start).Seconds()
		observability.WeatherFetchesTotal.WithLabelValues("error").Inc()
		observability.WeatherFetchDuration.WithLabelValues("error").Observe(duration)
		return models.Snapshot{}, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	duration := time.Since(start).Seconds()
	status := observability.StatusLabel(resp.StatusCode)
	observability.WeatherFetchesTotal.WithLabelValues(status).Inc()
	observability.WeatherFetchDuration.WithLabelValues(status).Observe(duration)

	if err := c.handleErrorResponse(resp); err != nil {
		return models.Snapshot{}, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("read response body: %w", err)
	}

	var apiResp j1Response
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return models.Snapshot{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return mapResponse(apiResp)
}

func (c *Client) buildRequest(ctx context.Context, location string) (*http.Request, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid weather API URL: %w", err)
	}
	u = u.JoinPath(location)
	u.RawQuery = url.Values{"format": []string{"j1"}}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if corrID := observability.CorrelationIDFromContext(ctx); corrID != "" {
		req.Header.Set("X-Correlation-ID", corrID)
	}
	return req, nil
}

// handleErrorResponse maps non-2xx statuses to sentinel errors. Only 500, 502
// and 503 count as "temporarily unavailable"; every other failure status falls
// through to the generic message via UserMessage.
func (c *Client) handleErrorResponse(resp *http.Response) error {
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: HTTP 401", ErrInvalidAPIKey)
	case http.StatusNotFound:
		return fmt.Errorf("%w", ErrCityNotFound)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w", ErrRateLimited)
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable:
		return fmt.Errorf("%w: HTTP %d", ErrUnavailable, resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status: HTTP %d", resp.StatusCode)
	}
	return nil
}

func mapResponse(apiResp j1Response) (models.Snapshot, error) {
	if len(apiResp.CurrentCondition) == 0 || len(apiResp.NearestArea) == 0 {
		return models.Snapshot{}, fmt.Errorf("%w: missing current_condition or nearest_area", ErrMalformedResponse)
	}
	cond := apiResp.CurrentCondition[0]
	area := apiResp.NearestArea[0]

	snap := models.Snapshot{
		TempC:        atoi(cond.TempC),
		TempF:        atoi(cond.TempF),
		FeelsLikeC:   atoi(cond.FeelsLikeC),
		FeelsLikeF:   atoi(cond.FeelsLikeF),
		HumidityPct:  atoi(cond.Humidity),
		VisibilityKm: atoi(cond.Visibility),
		WindKmph:     atoi(cond.WindspeedKmph),
		WindMph:      atoi(cond.WindspeedMiles),
		PressureMb:   atoi(cond.Pressure),
	}
	if len(cond.WeatherDesc) > 0 {
		snap.Condition = cond.WeatherDesc[0].Value
	}
	if len(area.AreaName) > 0 {
		snap.CityName = area.AreaName[0].Value
	}
	if len(area.Country) > 0 {
		snap.CountryName = area.Country[0].Value
	}
	return snap, nil
}

// atoi parses the integer-as-string fields of the j1 payload. Absent or
// garbage values render as 0 rather than failing the whole snapshot.
func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
