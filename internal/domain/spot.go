package domain

import (
	"encoding/json"
	"time"
)

// AuthContext carries the caller's bearer token into authenticated calls.
type AuthContext struct {
	Token string
}

// SpotPayload is the JSON part named "spot" of a create request.
type SpotPayload struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Latitude    float64  `json:"latitude"`
	Longitude   float64  `json:"longitude"`
	ImagePath   string   `json:"imagePath"`
	ImageURLs   []string `json:"imageUrls"`
	Creator     *string  `json:"creator"`
}

// SubmitResult is a successful create. Status is the backend's HTTP status.
type SubmitResult struct {
	Status  int            `json:"status"`
	Message string         `json:"message"`
	Body    map[string]any `json:"body,omitempty"`
}

// SearchRequest is shared by spot and hiking spot search. Unset fields are omitted.
type SearchRequest struct {
	Query        *string  `json:"query,omitempty"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
	Radius       *float64 `json:"radius,omitempty"`
	Region       *string  `json:"region,omitempty"`
	MinRating    *float64 `json:"minRating,omitempty"`
	CreatorEmail *string  `json:"creatorEmail,omitempty"`
	Difficulty   *string  `json:"difficulty,omitempty"`
	MinDistance  *float64 `json:"minDistance,omitempty"`
	MaxDistance  *float64 `json:"maxDistance,omitempty"`
	Page         *int     `json:"page,omitempty"`
	Size         *int     `json:"size,omitempty"`
	SortBy       *string  `json:"sortBy,omitempty"`
	SortOrder    *string  `json:"sortOrder,omitempty"`
}

// SearchResult is passed through from the backend untouched.
type SearchResult = json.RawMessage

type Outcome string

const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeFailed    Outcome = "failed"
)

// JournalEntry records one submission attempt that reached the network.
type JournalEntry struct {
	ID         string    `json:"id"`
	PlaceID    string    `json:"placeId,omitempty"`
	PlaceName  string    `json:"placeName"`
	Lat        float64   `json:"latitude"`
	Lng        float64   `json:"longitude"`
	Files      int       `json:"files"`
	Outcome    Outcome   `json:"outcome"`
	HTTPStatus int       `json:"httpStatus"`
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"createdAt"`
}
