// Package geo provides distance provider adapters for the pricing engine.
// The RoutingClient asks an external routing service for road distance; the
// pricing engine falls back to straight-line distance when the call fails.
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

const defaultRequestTimeout = 3 * time.Second

// RoutingClient resolves road distances through an HTTP routing service.
// The service is expected to answer GET /route with from/to coordinates and
// return a JSON body carrying the distance in kilometers.
type RoutingClient struct {
	baseURL string
	client  *http.Client
}

// NewRoutingClient creates a routing client for the given base URL.
// A zero timeout falls back to the default request timeout; routing latency
// sits on the delivery creation path, so the bound must stay tight.
func NewRoutingClient(baseURL string, timeout time.Duration) (*RoutingClient, error) {
	if baseURL == "" {
		return nil, errs.NewValueIsRequiredError("baseURL")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, errs.NewValueIsInvalidErrorWithCause("baseURL", err)
	}
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	return &RoutingClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

type routeResponse struct {
	DistanceKm float64 `json:"distance_km"`
}

// DistanceKm asks the routing service for the road distance between two points.
// Returns an error on transport failures, non-200 responses, and nonsensical
// distances; the caller treats any error as "use the straight-line fallback".
func (c *RoutingClient) DistanceKm(ctx context.Context, from, to kernel.GeoPoint) (decimal.Decimal, error) {
	if err := from.Validate(); err != nil {
		return decimal.Zero, err
	}
	if err := to.Validate(); err != nil {
		return decimal.Zero, err
	}

	endpoint := fmt.Sprintf("%s/route?from_lat=%f&from_lon=%f&to_lat=%f&to_lon=%f",
		c.baseURL,
		from.Latitude(), from.Longitude(),
		to.Latitude(), to.Longitude(),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("build routing request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("call routing service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("routing service returned status %d", resp.StatusCode)
	}

	var route routeResponse
	if err := json.NewDecoder(resp.Body).Decode(&route); err != nil {
		return decimal.Zero, fmt.Errorf("decode routing response: %w", err)
	}

	if route.DistanceKm < 0 {
		return decimal.Zero, fmt.Errorf("routing service returned negative distance %f", route.DistanceKm)
	}

	return decimal.NewFromFloat(route.DistanceKm), nil
}
