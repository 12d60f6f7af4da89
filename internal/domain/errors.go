package domain

import (
	"errors"
	"fmt"
)

// Validation errors: caught before any network call.
var (
	ErrNoPlaceSelected    = errors.New("no place selected")
	ErrEmptyDescription   = errors.New("description is required")
	ErrEmptyQuery         = errors.New("search query is empty")
	ErrSubmissionInFlight = errors.New("a submission is already in flight")
	ErrNoPhotos           = errors.New("selected place has no photos")
	ErrPhotoIndex         = errors.New("photo index out of range")
	ErrPhotoClosed        = errors.New("photo viewer is closed")
	ErrFileIndex          = errors.New("attachment index out of range")
	ErrInvalidCoordinates = errors.New("coordinates out of range")
)

var (
	ErrUnauthenticated = errors.New("not authenticated")
	ErrLookupFailed    = errors.New("lookup failed")
	ErrNotFound        = errors.New("not found")
)

// RemoteError is a failed call to the spots backend. Status is 0 for transport failures.
type RemoteError struct {
	Status  int
	Message string
}

func (e *RemoteError) Error() string {
	if e.Status == 0 {
		return "remote: " + e.Message
	}
	return fmt.Sprintf("remote %d: %s", e.Status, e.Message)
}

// IsValidation reports whether err blocks an action before it reaches the network.
func IsValidation(err error) bool {
	for _, v := range []error{
		ErrNoPlaceSelected, ErrEmptyDescription, ErrEmptyQuery,
		ErrNoPhotos, ErrPhotoIndex, ErrPhotoClosed, ErrFileIndex, ErrInvalidCoordinates,
	} {
		if errors.Is(err, v) {
			return true
		}
	}
	return false
}
