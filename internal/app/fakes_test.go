package app_test

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"

	"github.com/stretchr/testify/mock"

	"spot_picker/internal/domain"
)

// ---- places ----

type fakePlaces struct {
	mu      sync.Mutex
	details map[string]domain.PlaceDetails
	// gates, when set for an id, block Details until closed.
	gates   map[string]chan struct{}
	calls   int32
	fields  [][]string
	results []domain.PlaceCandidate
}

func newFakePlaces() *fakePlaces {
	return &fakePlaces{details: map[string]domain.PlaceDetails{}, gates: map[string]chan struct{}{}}
}

func (f *fakePlaces) Details(ctx context.Context, id string, fields []string) (domain.PlaceDetails, error) {
	atomic.AddInt32(&f.calls, 1)
	f.mu.Lock()
	f.fields = append(f.fields, fields)
	gate := f.gates[id]
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.details[id]
	if !ok {
		return domain.PlaceDetails{}, domain.ErrLookupFailed
	}
	return d, nil
}

func (f *fakePlaces) TextSearch(ctx context.Context, q string) ([]domain.PlaceCandidate, error) {
	return f.results, nil
}

func (f *fakePlaces) PhotoURL(p domain.PlacePhoto, maxWidth int) string {
	if p.URL != "" {
		return p.URL
	}
	if p.Reference == "" {
		return ""
	}
	return "https://photos.test/" + p.Reference
}

func (f *fakePlaces) Calls() int { return int(atomic.LoadInt32(&f.calls)) }

// ---- geocoder ----

type mockGeocoder struct{ mock.Mock }

func (m *mockGeocoder) ReverseGeocode(ctx context.Context, lat, lng float64) (string, error) {
	args := m.Called(ctx, lat, lng)
	return args.String(0), args.Error(1)
}

// ---- spots backend ----

type fakeSpots struct {
	calls  int32
	create func(auth domain.AuthContext, spot domain.SpotPayload, files []domain.Attachment) (domain.SubmitResult, error)
	last   domain.SpotPayload
	files  []domain.Attachment
	mu     sync.Mutex
}

func (f *fakeSpots) CreateSpot(ctx context.Context, auth domain.AuthContext, spot domain.SpotPayload, files []domain.Attachment) (domain.SubmitResult, error) {
	atomic.AddInt32(&f.calls, 1)
	f.mu.Lock()
	f.last, f.files = spot, files
	f.mu.Unlock()
	if f.create == nil {
		return domain.SubmitResult{Message: "ok"}, nil
	}
	return f.create(auth, spot, files)
}

func (f *fakeSpots) SearchSpots(ctx context.Context, q domain.SearchRequest) (domain.SearchResult, error) {
	return json.RawMessage(`[]`), nil
}

func (f *fakeSpots) SearchHikingSpots(ctx context.Context, q domain.SearchRequest) (domain.SearchResult, error) {
	return json.RawMessage(`[]`), nil
}

func (f *fakeSpots) ListSpots(ctx context.Context) (domain.SearchResult, error) {
	return json.RawMessage(`[]`), nil
}

func (f *fakeSpots) Calls() int { return int(atomic.LoadInt32(&f.calls)) }

// ---- cache ----

type fakeCache struct {
	mu    sync.Mutex
	store map[string][]byte
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store == nil {
		c.store = map[string][]byte{}
	}
	c.store[key] = b
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, key)
	return nil
}

// ---- journal ----

type memJournal struct {
	mu      sync.Mutex
	entries []domain.JournalEntry
}

func (j *memJournal) Record(ctx context.Context, e domain.JournalEntry) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, e)
	return nil
}

func (j *memJournal) Recent(ctx context.Context, limit int) ([]domain.JournalEntry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]domain.JournalEntry(nil), j.entries...), nil
}

func ptr[T any](v T) *T { return &v }
