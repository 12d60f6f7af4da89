// Package imaging downsizes attached photos before they are uploaded.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	"github.com/nfnt/resize"

	"spot_picker/internal/domain"
)

// Shrinker scales JPEG and PNG attachments down to MaxWidth, keeping the aspect ratio.
// Other content types and images already narrow enough pass through untouched.
type Shrinker struct {
	MaxWidth uint
	Quality  int
}

func NewShrinker(maxWidth int) *Shrinker {
	if maxWidth <= 0 {
		return nil
	}
	return &Shrinker{MaxWidth: uint(maxWidth), Quality: 85}
}

func (s *Shrinker) Shrink(a domain.Attachment) (domain.Attachment, error) {
	if s == nil || s.MaxWidth == 0 {
		return a, nil
	}
	if a.ContentType != "image/jpeg" && a.ContentType != "image/png" {
		return a, nil
	}

	img, format, err := image.Decode(bytes.NewReader(a.Data))
	if err != nil {
		return a, fmt.Errorf("imaging: decode %s: %w", a.Name, err)
	}
	if uint(img.Bounds().Dx()) <= s.MaxWidth {
		return a, nil
	}

	small := resize.Resize(s.MaxWidth, 0, img, resize.Lanczos3)
	var buf bytes.Buffer
	switch format {
	case "png":
		err = png.Encode(&buf, small)
	default:
		err = jpeg.Encode(&buf, small, &jpeg.Options{Quality: s.Quality})
	}
	if err != nil {
		return a, fmt.Errorf("imaging: encode %s: %w", a.Name, err)
	}

	out := a
	out.Data = buf.Bytes()
	return out, nil
}
