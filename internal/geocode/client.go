package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/mkarlsven/weather-console/internal/cache"
	"github.com/mkarlsven/weather-console/internal/circuitbreaker"
	"github.com/mkarlsven/weather-console/internal/models"
	"github.com/mkarlsven/weather-console/internal/observability"
)

// Service resolves a partial city name to autocomplete suggestions.
// Failures here are non-essential: callers hide the dropdown and move on,
// never surfacing an error panel.
type Service interface {
	Suggest(ctx context.Context, query string) ([]models.Suggestion, error)
}

// Client talks to an open-meteo-compatible geocoding endpoint:
// GET {base}?name={query}&count={limit}&language=en&format=json.
type Client struct {
	baseURL  string
	limit    int
	client   *http.Client
	cache    cache.Cache
	cacheTTL time.Duration
	limiter  *rate.Limiter
	breaker  *circuitbreaker.Breaker
	logger   *zap.Logger
}

// NewClient returns a suggestion client. limit caps the requested result
// count (default 5). c and limiter are optional: nil cache disables caching,
// nil limiter disables outbound rate limiting. A circuit breaker with default
// thresholds always guards the upstream; skipped fetches look like empty
// results, same as a limiter denial.
func NewClient(baseURL string, limit int, timeout time.Duration, c cache.Cache, cacheTTL time.Duration, limiter *rate.Limiter, logger *zap.Logger) (*Client, error) {
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid geocoding API URL: %w", err)
	}
	if limit <= 0 {
		limit = 5
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	breaker := circuitbreaker.New(circuitbreaker.Options{
		OnChange: func(from, to circuitbreaker.State) {
			observability.SuggestionBreakerTransitionsTotal.WithLabelValues(to.String()).Inc()
			logger.Info("geocoding circuit state change",
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
	return &Client{
		baseURL:  baseURL,
		limit:    limit,
		client:   &http.Client{Timeout: timeout},
		cache:    c,
		cacheTTL: cacheTTL,
		limiter:  limiter,
		breaker:  breaker,
		logger:   logger,
	}, nil
}

type geoResponse struct {
	Results []struct {
		Name      string  `json:"name"`
		Country   string  `json:"country"`
		Admin1    string  `json:"admin1"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"results"`
}

// Suggest fetches up to limit suggestions for query, in API response order.
// An empty list means "hide the dropdown". A limiter denial is not an error;
// it returns an empty list so the burst stays invisible to the user.
func (c *Client) Suggest(ctx context.Context, query string) ([]models.Suggestion, error) {
	key := strings.ToLower(strings.TrimSpace(query))

	if c.cache != nil {
		cached, ok, err := c.cache.Get(ctx, key)
		if err != nil {
			c.logger.Warn("suggestion cache get failed", zap.String("query", key), zap.Error(err))
		} else if ok {
			observability.SuggestionCacheHitsTotal.Inc()
			return cached, nil
		}
	}

	if c.limiter != nil && !c.limiter.Allow() {
		observability.SuggestionRateLimitedTotal.Inc()
		c.logger.Debug("suggestion fetch rate limited", zap.String("query", key))
		return nil, nil
	}

	var list []models.Suggestion
	err := c.breaker.Do(func() error {
		var fetchErr error
		list, fetchErr = c.fetch(ctx, query)
		return fetchErr
	})
	if errors.Is(err, circuitbreaker.ErrOpen) {
		// Same treatment as a limiter denial: no dropdown, no error panel.
		observability.SuggestionBreakerSkippedTotal.Inc()
		c.logger.Debug("suggestion fetch skipped, circuit open", zap.String("query", key))
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, key, list, c.cacheTTL); err != nil {
			c.logger.Warn("suggestion cache set failed", zap.String("query", key), zap.Error(err))
		}
	}
	return list, nil
}

func (c *Client) fetch(ctx context.Context, query string) ([]models.Suggestion, error) {
	start := time.Now()

	req, err := c.buildRequest(ctx, query)
	if err != nil {
		observability.SuggestionFetchesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		duration := time.Since(start).Seconds()
		observability.SuggestionFetchesTotal.WithLabelValues("error").Inc()
		observability.SuggestionFetchDuration.WithLabelValues("error").Observe(duration)
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	duration := time.Since(start).Seconds()
	status := observability.StatusLabel(resp.StatusCode)
	observability.SuggestionFetchesTotal.WithLabelValues(status).Inc()
	observability.SuggestionFetchDuration.WithLabelValues(status).Observe(duration)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("geocoding status: HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	var apiResp geoResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	list := make([]models.Suggestion, 0, len(apiResp.Results))
	for _, r := range apiResp.Results {
		list = append(list, models.Suggestion{
			DisplayName: r.Name,
			RegionLabel: regionLabel(r.Admin1, r.Country),
			Latitude:    r.Latitude,
			Longitude:   r.Longitude,
		})
	}
	return list, nil
}

func (c *Client) buildRequest(ctx context.Context, query string) (*http.Request, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid geocoding API URL: %w", err)
	}
	params := url.Values{}
	params.Set("name", query)
	params.Set("count", strconv.Itoa(c.limit))
	params.Set("language", "en")
	params.Set("format", "json")
	u.RawQuery = params.Encode()

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

// regionLabel renders "admin1, country", whichever part is present, or "".
func regionLabel(admin1, country string) string {
	switch {
	case admin1 != "" && country != "":
		return admin1 + ", " + country
	case admin1 != "":
		return admin1
	default:
		return country
	}
}
