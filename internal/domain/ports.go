package domain

import "context"

// PlacesClient is the place search and lookup collaborator.
type PlacesClient interface {
	Details(ctx context.Context, placeID string, fields []string) (PlaceDetails, error)
	TextSearch(ctx context.Context, query string) ([]PlaceCandidate, error)
	// PhotoURL returns a directly renderable URL for p no wider than maxWidth.
	PhotoURL(p PlacePhoto, maxWidth int) string
}

type Geocoder interface {
	ReverseGeocode(ctx context.Context, lat, lng float64) (string, error)
}

// SpotsAPI is the remote spots backend.
type SpotsAPI interface {
	CreateSpot(ctx context.Context, auth AuthContext, spot SpotPayload, files []Attachment) (SubmitResult, error)
	SearchSpots(ctx context.Context, q SearchRequest) (SearchResult, error)
	SearchHikingSpots(ctx context.Context, q SearchRequest) (SearchResult, error)
	ListSpots(ctx context.Context) (SearchResult, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// SubmissionJournal keeps a log of submission attempts.
type SubmissionJournal interface {
	Record(ctx context.Context, e JournalEntry) error
	Recent(ctx context.Context, limit int) ([]JournalEntry, error)
}

// ImageShrinker may downscale an attachment before upload.
type ImageShrinker interface {
	Shrink(a Attachment) (Attachment, error)
}
