package domain

// SelectionState is the currently selected place, its marker and the open photo.
// The zero value is the empty selection.
type SelectionState struct {
	Place     *PlaceRecord `json:"place,omitempty"`
	Marker    *LatLng      `json:"marker,omitempty"`
	OpenPhoto *int         `json:"openPhoto,omitempty"`
}

func (s SelectionState) Empty() bool { return s.Place == nil }

// Select replaces the selection wholesale. Place and marker always move together
// and the photo viewer is closed.
func (s SelectionState) Select(p PlaceRecord, marker LatLng) SelectionState {
	rec := p.Clone()
	return SelectionState{Place: &rec, Marker: &marker}
}

// Clear returns the empty selection.
func (s SelectionState) Clear() SelectionState { return SelectionState{} }

func (s SelectionState) photoCount() int {
	if s.Place == nil {
		return 0
	}
	return len(s.Place.PhotoURLs)
}

// OpenPhotoAt opens the viewer on index i.
func (s SelectionState) OpenPhotoAt(i int) (SelectionState, error) {
	n := s.photoCount()
	if n == 0 {
		return s, ErrNoPhotos
	}
	if i < 0 || i >= n {
		return s, ErrPhotoIndex
	}
	return s.withPhoto(i), nil
}

// NextPhoto moves the viewer forward, wrapping to the first photo.
func (s SelectionState) NextPhoto() (SelectionState, error) { return s.stepPhoto(1) }

// PrevPhoto moves the viewer backward, wrapping to the last photo.
func (s SelectionState) PrevPhoto() (SelectionState, error) { return s.stepPhoto(-1) }

func (s SelectionState) ClosePhoto() SelectionState {
	s.OpenPhoto = nil
	return s
}

func (s SelectionState) stepPhoto(d int) (SelectionState, error) {
	if s.OpenPhoto == nil {
		return s, ErrPhotoClosed
	}
	n := s.photoCount()
	if n == 0 {
		return s.ClosePhoto(), ErrNoPhotos
	}
	return s.withPhoto(Mod(*s.OpenPhoto+d, n)), nil
}

func (s SelectionState) withPhoto(i int) SelectionState {
	s.OpenPhoto = &i
	return s
}

// Clone deep-copies the state so callers can hand it off without aliasing.
func (s SelectionState) Clone() SelectionState {
	var out SelectionState
	if s.Place != nil {
		p := s.Place.Clone()
		out.Place = &p
	}
	if s.Marker != nil {
		m := *s.Marker
		out.Marker = &m
	}
	if s.OpenPhoto != nil {
		i := *s.OpenPhoto
		out.OpenPhoto = &i
	}
	return out
}

// Mod is the true modulo: the result has the sign of n, so Mod(-1, 3) == 2.
func Mod(i, n int) int {
	return ((i % n) + n) % n
}
