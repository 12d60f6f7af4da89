// internal/adapters/places/client.go
package places

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"spot_picker/internal/adapters/remote"
	"spot_picker/internal/domain"
)

const DefaultBase = "https://maps.googleapis.com/maps/api/place"

// DetailFields are the fields the resolver needs from a details lookup.
var DetailFields = []string{"place_id", "name", "formatted_address", "geometry", "rating", "photos"}

// Client talks to the Places web service.
type Client struct {
	base string
	key  string
	rc   *remote.Client
}

func New(base, key string, rps int) (*Client, error) {
	if key == "" {
		return nil, fmt.Errorf("places: API key is required")
	}
	if base == "" {
		base = DefaultBase
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		key:  key,
		rc:   remote.New(remote.Options{Service: "places", RPS: rps, Retries: 3}),
	}, nil
}

// ---- wire shapes ----

type location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type geometry struct {
	Location location `json:"location"`
}

type photo struct {
	PhotoReference string `json:"photo_reference"`
	Width          int    `json:"width"`
	Height         int    `json:"height"`
}

type placeResult struct {
	PlaceID          string   `json:"place_id"`
	Name             string   `json:"name"`
	FormattedAddress string   `json:"formatted_address"`
	Geometry         geometry `json:"geometry"`
	Rating           *float64 `json:"rating,omitempty"`
	Photos           []photo  `json:"photos,omitempty"`
}

type detailsResponse struct {
	Result       placeResult `json:"result"`
	Status       string      `json:"status"`
	ErrorMessage string      `json:"error_message,omitempty"`
}

type searchResponse struct {
	Results      []placeResult `json:"results"`
	Status       string        `json:"status"`
	ErrorMessage string        `json:"error_message,omitempty"`
}

// ---- Public API ----

func (c *Client) Details(ctx context.Context, placeID string, fields []string) (domain.PlaceDetails, error) {
	if len(fields) == 0 {
		fields = DetailFields
	}
	q := url.Values{}
	q.Set("place_id", placeID)
	q.Set("fields", strings.Join(fields, ","))
	q.Set("key", c.key)

	var out detailsResponse
	if err := c.rc.GetJSON(ctx, "details", c.base+"/details/json?"+q.Encode(), &out); err != nil {
		return domain.PlaceDetails{}, fmt.Errorf("places details %s: %w", placeID, err)
	}
	if out.Status != "OK" {
		return domain.PlaceDetails{}, statusErr("details", out.Status, out.ErrorMessage)
	}

	r := out.Result
	d := domain.PlaceDetails{
		PlaceID:          r.PlaceID,
		Name:             r.Name,
		FormattedAddress: r.FormattedAddress,
		Lat:              r.Geometry.Location.Lat,
		Lng:              r.Geometry.Location.Lng,
		Rating:           r.Rating,
	}
	if d.PlaceID == "" {
		d.PlaceID = placeID
	}
	for _, p := range r.Photos {
		d.Photos = append(d.Photos, domain.PlacePhoto{Reference: p.PhotoReference, Width: p.Width, Height: p.Height})
	}
	return d, nil
}

func (c *Client) TextSearch(ctx context.Context, query string) ([]domain.PlaceCandidate, error) {
	q := url.Values{}
	q.Set("query", query)
	q.Set("key", c.key)

	var out searchResponse
	if err := c.rc.GetJSON(ctx, "textsearch", c.base+"/textsearch/json?"+q.Encode(), &out); err != nil {
		return nil, fmt.Errorf("places textsearch: %w", err)
	}
	switch out.Status {
	case "OK":
	case "ZERO_RESULTS":
		return []domain.PlaceCandidate{}, nil
	default:
		return nil, statusErr("textsearch", out.Status, out.ErrorMessage)
	}

	cands := make([]domain.PlaceCandidate, 0, len(out.Results))
	for _, r := range out.Results {
		cands = append(cands, domain.PlaceCandidate{
			PlaceID: r.PlaceID,
			Name:    r.Name,
			Address: r.FormattedAddress,
			Lat:     r.Geometry.Location.Lat,
			Lng:     r.Geometry.Location.Lng,
			Rating:  r.Rating,
		})
	}
	return cands, nil
}

// PhotoURL returns p.URL when the photo already carries one, otherwise the photo
// endpoint URL for its reference. Empty when neither is known.
func (c *Client) PhotoURL(p domain.PlacePhoto, maxWidth int) string {
	if p.URL != "" {
		return p.URL
	}
	if p.Reference == "" {
		return ""
	}
	if maxWidth <= 0 {
		maxWidth = 400
	}
	q := url.Values{}
	q.Set("maxwidth", strconv.Itoa(maxWidth))
	q.Set("photo_reference", p.Reference)
	q.Set("key", c.key)
	return c.base + "/photo?" + q.Encode()
}

func statusErr(op, status, msg string) error {
	if msg != "" {
		return fmt.Errorf("%w: places %s status %s: %s", domain.ErrLookupFailed, op, status, msg)
	}
	return fmt.Errorf("%w: places %s status %s", domain.ErrLookupFailed, op, status)
}
