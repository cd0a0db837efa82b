// Package geocode resolves coordinates to human-readable addresses and
// builds map preview URLs against the Google Maps web APIs.
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

	"placebook/internal/logging"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// DefaultBaseURL is the Google Maps API host.
const DefaultBaseURL = "https://maps.googleapis.com"

// ErrNoResults is returned when the API answers but has no address for the
// coordinates.
var ErrNoResults = errors.New("no address found for location")

// Resolver turns a coordinate pair into a formatted address.
type Resolver interface {
	ReverseGeocode(ctx context.Context, lat, lng float64) (string, error)
}

// StatusError reports a non-2xx HTTP response from the geocoding API.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("geocoding API returned status %d: %s", e.StatusCode, e.Body)
}

// Client calls the Google Geocoding API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a geocoding client. An empty baseURL selects
// DefaultBaseURL; a zero timeout selects 10 seconds.
func NewClient(baseURL, apiKey string, timeout time.Duration) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("geocoding API key required")
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport,
				otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
					return r.Method + " " + r.URL.Path
				}),
			),
		},
	}, nil
}

type geocodeResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		FormattedAddress string `json:"formatted_address"`
	} `json:"results"`
}

// ReverseGeocode returns the formatted address of the first result.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lng float64) (string, error) {
	q := url.Values{}
	q.Set("latlng", formatCoord(lat)+","+formatCoord(lng))
	q.Set("key", c.apiKey)
	endpoint := c.baseURL + "/maps/api/geocode/json?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	timer := logging.StartTimer(logging.CategoryGeocode, "ReverseGeocode")
	resp, err := c.httpClient.Do(req)
	timer.Stop()
	if err != nil {
		logging.GeocodeError("Reverse geocode request failed: %v", err)
		return "", fmt.Errorf("geocoding request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		logging.GeocodeError("Geocoding API returned status %d", resp.StatusCode)
		return "", &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var result geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if result.Status != "OK" || len(result.Results) == 0 {
		logging.GeocodeDebug("No address for %s,%s (status=%s %s)", formatCoord(lat), formatCoord(lng), result.Status, result.ErrorMessage)
		if result.ErrorMessage != "" {
			return "", fmt.Errorf("%w: %s: %s", ErrNoResults, result.Status, result.ErrorMessage)
		}
		return "", fmt.Errorf("%w: %s", ErrNoResults, result.Status)
	}

	address := result.Results[0].FormattedAddress
	logging.Geocode("Resolved %s,%s to %q", formatCoord(lat), formatCoord(lng), address)
	return address, nil
}

// MapPreviewURL returns the static map image URL for the coordinates using
// the client's host and key.
func (c *Client) MapPreviewURL(lat, lng float64) string {
	return MapPreviewURL(c.baseURL, c.apiKey, lat, lng)
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
