package domain

// PhotoView is everything a client needs to draw the photo overlay.
type PhotoView struct {
	Visible bool   `json:"visible"`
	Index   int    `json:"index"`
	Total   int    `json:"total"`
	URL     string `json:"url,omitempty"`
}

// ViewPhoto renders the overlay for s. It is invisible when no photo is open
// or the open index no longer points into the photo list.
func ViewPhoto(s SelectionState) PhotoView {
	if s.OpenPhoto == nil || s.Place == nil {
		return PhotoView{}
	}
	i, n := *s.OpenPhoto, len(s.Place.PhotoURLs)
	if i < 0 || i >= n {
		return PhotoView{}
	}
	return PhotoView{Visible: true, Index: i, Total: n, URL: s.Place.PhotoURLs[i]}
}
