package geocoding

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"spot_picker/internal/adapters/remote"
	"spot_picker/internal/domain"
)

const DefaultBase = "https://maps.googleapis.com/maps/api/geocode"

// Client reverse-geocodes coordinates. It never retries: callers get one attempt.
type Client struct {
	base string
	key  string
	rc   *remote.Client
}

func New(base, key string, rps int) (*Client, error) {
	if key == "" {
		return nil, fmt.Errorf("geocoding: API key is required")
	}
	if base == "" {
		base = DefaultBase
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		key:  key,
		rc:   remote.New(remote.Options{Service: "geocoding", RPS: rps}),
	}, nil
}

type reverseResponse struct {
	Results []struct {
		FormattedAddress string `json:"formatted_address"`
	} `json:"results"`
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// ReverseGeocode returns the first formatted address for lat,lng.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lng float64) (string, error) {
	q := url.Values{}
	q.Set("latlng", strconv.FormatFloat(lat, 'f', -1, 64)+","+strconv.FormatFloat(lng, 'f', -1, 64))
	q.Set("key", c.key)

	var out reverseResponse
	if err := c.rc.GetJSON(ctx, "reverse", c.base+"/json?"+q.Encode(), &out); err != nil {
		return "", fmt.Errorf("geocoding reverse: %w", err)
	}
	if out.Status != "OK" || len(out.Results) == 0 {
		return "", fmt.Errorf("%w: geocoding status %s %s", domain.ErrLookupFailed, out.Status, out.ErrorMessage)
	}
	return out.Results[0].FormattedAddress, nil
}
