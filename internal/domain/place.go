package domain

// ManualPlaceName is the display name of a record built from a raw map click.
const ManualPlaceName = "manually chosen location"

// UnknownAddress is returned by address resolution when no address could be found.
const UnknownAddress = "unknown address"

type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// PlaceRecord is a normalized point of interest.
//
// PhotoReferences[i] belongs to PhotoURLs[i] for every i < len(PhotoReferences).
// Photos whose reference could not be derived sit after that prefix in PhotoURLs only.
type PlaceRecord struct {
	PlaceID         string   `json:"placeId,omitempty"`
	Name            string   `json:"name"`
	Address         string   `json:"address"`
	Lat             float64  `json:"latitude"`
	Lng             float64  `json:"longitude"`
	Rating          *float64 `json:"rating,omitempty"`
	PhotoReferences []string `json:"photoReferences"`
	PhotoURLs       []string `json:"photoUrls"`
}

func (p PlaceRecord) Position() LatLng { return LatLng{Lat: p.Lat, Lng: p.Lng} }

// Clone returns a copy that shares no slices with p.
func (p PlaceRecord) Clone() PlaceRecord {
	out := p
	out.PhotoReferences = append([]string(nil), p.PhotoReferences...)
	out.PhotoURLs = append([]string(nil), p.PhotoURLs...)
	if p.Rating != nil {
		r := *p.Rating
		out.Rating = &r
	}
	return out
}

// ManualPlace builds the synthetic record for a click outside any point of interest.
func ManualPlace(pos LatLng, address string) PlaceRecord {
	return PlaceRecord{
		Name:            ManualPlaceName,
		Address:         address,
		Lat:             pos.Lat,
		Lng:             pos.Lng,
		PhotoReferences: []string{},
		PhotoURLs:       []string{},
	}
}

// PlaceDetails is what the places collaborator returns for a single id.
type PlaceDetails struct {
	PlaceID          string
	Name             string
	FormattedAddress string
	Lat, Lng         float64
	Rating           *float64
	Photos           []PlacePhoto
}

// PlacePhoto describes one remotely hosted photo. Reference is empty when the
// collaborator only hands out a rendered URL.
type PlacePhoto struct {
	Reference string
	URL       string
	Width     int
	Height    int
}

type PlaceCandidate struct {
	PlaceID string   `json:"placeId"`
	Name    string   `json:"name"`
	Address string   `json:"address"`
	Lat     float64  `json:"latitude"`
	Lng     float64  `json:"longitude"`
	Rating  *float64 `json:"rating,omitempty"`
}

// MapClick is a click on the map. PlaceID is set when a native point of interest was hit.
type MapClick struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	PlaceID string  `json:"placeId,omitempty"`
}
