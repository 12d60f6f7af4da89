package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"spot_picker/internal/adapters/observability"
	"spot_picker/internal/domain"
)

// PlaceResolver turns place ids into normalized records.
type PlaceResolver struct {
	places   domain.PlacesClient
	cache    domain.Cache
	cacheTTL time.Duration
	maxWidth int
}

func NewPlaceResolver(p domain.PlacesClient, c domain.Cache, ttl time.Duration, photoMaxWidth int) *PlaceResolver {
	if photoMaxWidth <= 0 {
		photoMaxWidth = 400
	}
	return &PlaceResolver{places: p, cache: c, cacheTTL: ttl, maxWidth: photoMaxWidth}
}

// ResolveByPlaceID returns the record for id, or false when the lookup fails for any
// reason. Failures are logged, never returned: the caller keeps its current selection.
func (r *PlaceResolver) ResolveByPlaceID(ctx context.Context, id string) (*domain.PlaceRecord, bool) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, false
	}

	key := "place:" + id
	var cached domain.PlaceRecord
	if r.cache != nil {
		if ok, err := r.cache.Get(ctx, key, &cached); ok && err == nil {
			observability.ObserveResolution("place", "ok")
			return &cached, true
		} else if err != nil {
			log.Warn().Err(err).Str("place_id", id).Msg("place cache read failed")
		}
	}

	// nil fields: the client asks for its own default set
	d, err := r.places.Details(ctx, id, nil)
	if err != nil {
		log.Warn().Err(err).Str("place_id", id).Msg("place lookup failed")
		observability.ObserveResolution("place", "miss")
		return nil, false
	}

	rec := r.normalize(d)
	if rec.PlaceID == "" {
		rec.PlaceID = id
	}
	if r.cache != nil {
		if err := r.cache.Set(ctx, key, rec, int(r.cacheTTL.Seconds())); err != nil {
			log.Warn().Err(err).Str("place_id", id).Msg("place cache write failed")
		}
	}
	observability.ObserveResolution("place", "ok")
	return &rec, true
}

// normalize builds the record. References stay index-aligned with the head of
// PhotoURLs; photos without a derivable reference are appended after that prefix.
func (r *PlaceResolver) normalize(d domain.PlaceDetails) domain.PlaceRecord {
	rec := domain.PlaceRecord{
		PlaceID:         d.PlaceID,
		Name:            d.Name,
		Address:         d.FormattedAddress,
		Lat:             d.Lat,
		Lng:             d.Lng,
		Rating:          d.Rating,
		PhotoReferences: []string{},
		PhotoURLs:       []string{},
	}

	var urlOnly []string
	for _, p := range d.Photos {
		u := r.places.PhotoURL(p, r.maxWidth)
		if u == "" {
			continue
		}
		ref := p.Reference
		if ref == "" {
			ref = ExtractPhotoReference(u)
		}
		if ref == "" {
			log.Debug().Str("place_id", d.PlaceID).Str("url", u).Msg("photo reference not derivable")
			urlOnly = append(urlOnly, u)
			continue
		}
		rec.PhotoReferences = append(rec.PhotoReferences, ref)
		rec.PhotoURLs = append(rec.PhotoURLs, u)
	}
	rec.PhotoURLs = append(rec.PhotoURLs, urlOnly...)
	return rec
}

// Search returns place candidates for a free-text query.
func (r *PlaceResolver) Search(ctx context.Context, query string) ([]domain.PlaceCandidate, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.ErrEmptyQuery
	}
	cands, err := r.places.TextSearch(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	return cands, nil
}

// Prefetch resolves ids concurrently so later selections are served from cache.
// It returns how many ids resolved.
func (r *PlaceResolver) Prefetch(ctx context.Context, ids []string, workers int) (int, error) {
	if r.cache == nil {
		return 0, errors.New("prefetch needs a cache")
	}
	if workers <= 0 {
		workers = 4
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	ok := make([]bool, len(ids))
	for i, id := range ids {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			_, ok[i] = r.ResolveByPlaceID(gctx, id)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	n := 0
	for _, v := range ok {
		if v {
			n++
		}
	}
	return n, nil
}
