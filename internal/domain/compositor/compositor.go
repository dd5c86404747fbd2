// Package compositor cuts an image out along a segmentation mask by using the
// mask as the alpha channel.
package compositor

import (
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"github.com/forPelevin/mediashop/internal/types"
)

var ErrMalformedMask = errors.New("malformed mask")

// ApplyMask redraws img at the mask's dimensions and sets every pixel's alpha
// to the mask's first channel. Colour channels are left as they are.
func ApplyMask(img image.Image, m types.Mask) (*image.NRGBA, error) {
	if err := validate(m); err != nil {
		return nil, err
	}

	var dst *image.NRGBA
	b := img.Bounds()
	if b.Dx() == m.Width && b.Dy() == m.Height {
		dst = imaging.Clone(img)
	} else {
		dst = imaging.Resize(img, m.Width, m.Height, imaging.Linear)
	}

	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			off := dst.PixOffset(x, y)
			dst.Pix[off+3] = m.Data[(y*m.Width+x)*m.Channels]
		}
	}
	return dst, nil
}

func validate(m types.Mask) error {
	if m.Width <= 0 || m.Height <= 0 {
		return fmt.Errorf("%w: dimensions %dx%d", ErrMalformedMask, m.Width, m.Height)
	}
	if m.Channels <= 0 {
		return fmt.Errorf("%w: %d channels", ErrMalformedMask, m.Channels)
	}
	if want := m.Width * m.Height * m.Channels; len(m.Data) < want {
		return fmt.Errorf("%w: have %d bytes, want %d", ErrMalformedMask, len(m.Data), want)
	}
	return nil
}
