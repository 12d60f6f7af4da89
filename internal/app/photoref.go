package app

import "regexp"

// photoRefPattern pulls a photo reference out of a rendered photo URL: either the
// photo_reference/photoreference query parameter of the photo endpoint, or the
// "1s<token>" segment the JavaScript SDK emits. The URL shape is not a documented
// contract, so the stable reference is always preferred when the lookup returns one.
var photoRefPattern = regexp.MustCompile(`(?:[?&](?:photo_?reference|photoreference)=|[?&/]1s)([A-Za-z0-9_-]+)`)

// ExtractPhotoReference returns "" when u does not look like a known photo URL.
func ExtractPhotoReference(u string) string {
	m := photoRefPattern.FindStringSubmatch(u)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}
