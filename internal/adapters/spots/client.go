// internal/adapters/spots/client.go
package spots

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"spot_picker/internal/adapters/remote"
	"spot_picker/internal/domain"
)

// Client is the spots backend. Reads retry on transient failures; creates never do.
type Client struct {
	base   string
	reads  *remote.Client
	writes *remote.Client
}

func New(base string, rps int) (*Client, error) {
	if base == "" {
		return nil, fmt.Errorf("spots: base URL is required")
	}
	return &Client{
		base:   strings.TrimRight(base, "/"),
		reads:  remote.New(remote.Options{Service: "spots", RPS: rps, Retries: 2}),
		writes: remote.New(remote.Options{Service: "spots", RPS: rps}),
	}, nil
}

// CreateSpot sends one multipart POST /spots/create. Part "spot" carries the JSON
// payload, each attachment goes in its own "files" part.
func (c *Client) CreateSpot(ctx context.Context, auth domain.AuthContext, spot domain.SpotPayload, files []domain.Attachment) (domain.SubmitResult, error) {
	body, contentType, err := encodeCreate(spot, files)
	if err != nil {
		return domain.SubmitResult{}, fmt.Errorf("spots: encode create: %w", err)
	}

	resp, err := c.writes.Do(ctx, "create", func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/spots/create", bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Authorization", "Bearer "+auth.Token)
		return req, nil
	})
	if err != nil {
		return domain.SubmitResult{}, &domain.RemoteError{Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := remote.ReadErrorBody(resp)
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return domain.SubmitResult{}, &domain.RemoteError{Status: resp.StatusCode, Message: msg}
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.SubmitResult{}, &domain.RemoteError{Status: resp.StatusCode, Message: err.Error()}
	}
	raw := strings.TrimSpace(string(b))
	out := domain.SubmitResult{Status: resp.StatusCode}
	if err := json.Unmarshal([]byte(raw), &out.Body); err != nil {
		// some deployments answer with a bare text confirmation
		out.Message = raw
		return out, nil
	}
	if m, ok := out.Body["message"].(string); ok {
		out.Message = m
	}
	return out, nil
}

func (c *Client) SearchSpots(ctx context.Context, q domain.SearchRequest) (domain.SearchResult, error) {
	var out json.RawMessage
	if err := c.reads.PostJSON(ctx, "search", c.base+"/spots/search", q, &out); err != nil {
		return nil, readErr("spots search", err)
	}
	return out, nil
}

func (c *Client) SearchHikingSpots(ctx context.Context, q domain.SearchRequest) (domain.SearchResult, error) {
	var out json.RawMessage
	if err := c.reads.PostJSON(ctx, "hiking_search", c.base+"/hikingspot/search", q, &out); err != nil {
		return nil, readErr("hiking spots search", err)
	}
	return out, nil
}

func (c *Client) ListSpots(ctx context.Context) (domain.SearchResult, error) {
	var out json.RawMessage
	if err := c.reads.GetJSON(ctx, "list", c.base+"/spots/get/all", &out); err != nil {
		return nil, readErr("spots list", err)
	}
	return out, nil
}

// readErr lifts the transport's auth and not-found sentinels into their domain
// counterparts so callers can map them without knowing the transport.
func readErr(op string, err error) error {
	switch {
	case errors.Is(err, remote.ErrUnauthorized), errors.Is(err, remote.ErrForbidden):
		return fmt.Errorf("%s: %w: %w", op, domain.ErrUnauthenticated, err)
	case errors.Is(err, remote.ErrNotFound):
		return fmt.Errorf("%s: %w: %w", op, domain.ErrNotFound, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func encodeCreate(spot domain.SpotPayload, files []domain.Attachment) ([]byte, string, error) {
	if spot.ImageURLs == nil {
		spot.ImageURLs = []string{}
	}
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", `form-data; name="spot"`)
	h.Set("Content-Type", "application/json")
	pw, err := mw.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if err := json.NewEncoder(pw).Encode(spot); err != nil {
		return nil, "", err
	}

	for _, f := range files {
		ct := f.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h := textproto.MIMEHeader{}
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files"; filename=%q`, f.Name))
		h.Set("Content-Type", ct)
		fw, err := mw.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := fw.Write(f.Data); err != nil {
			return nil, "", err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), mw.FormDataContentType(), nil
}
