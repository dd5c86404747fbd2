// Package photo applies photo adjustments to pixels and encodes the result
// for download.
package photo

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"

	"github.com/forPelevin/mediashop/internal/types"
)

// Adjust bakes brightness, contrast and grayscale into a copy of img, in the
// same order and with the same math as the preview filter expression.
func Adjust(img image.Image, a types.PhotoAdjustments) *image.NRGBA {
	dst := imaging.Clone(img)
	if a.Brightness != 100 {
		k := math.Max(a.Brightness, 0) / 100
		dst = imaging.AdjustFunc(dst, func(c color.NRGBA) color.NRGBA {
			return color.NRGBA{R: scale(c.R, k), G: scale(c.G, k), B: scale(c.B, k), A: c.A}
		})
	}
	if a.Contrast != 100 {
		k := math.Max(a.Contrast, 0) / 100
		dst = imaging.AdjustFunc(dst, func(c color.NRGBA) color.NRGBA {
			return color.NRGBA{R: contrast(c.R, k), G: contrast(c.G, k), B: contrast(c.B, k), A: c.A}
		})
	}
	if a.Grayscale > 0 {
		dst = imaging.AdjustFunc(dst, grayscale(math.Min(a.Grayscale, 100)/100))
	}
	return dst
}

// grayscale returns the CSS grayscale(amount) colour matrix as a pixel func.
func grayscale(amount float64) func(color.NRGBA) color.NRGBA {
	g := 1 - amount
	m := [3][3]float64{
		{0.2126 + 0.7874*g, 0.7152 - 0.7152*g, 0.0722 - 0.0722*g},
		{0.2126 - 0.2126*g, 0.7152 + 0.2848*g, 0.0722 - 0.0722*g},
		{0.2126 - 0.2126*g, 0.7152 - 0.7152*g, 0.0722 + 0.9278*g},
	}
	return func(c color.NRGBA) color.NRGBA {
		r, gg, b := float64(c.R), float64(c.G), float64(c.B)
		return color.NRGBA{
			R: clamp8(m[0][0]*r + m[0][1]*gg + m[0][2]*b),
			G: clamp8(m[1][0]*r + m[1][1]*gg + m[1][2]*b),
			B: clamp8(m[2][0]*r + m[2][1]*gg + m[2][2]*b),
			A: c.A,
		}
	}
}

func scale(v uint8, k float64) uint8 { return clamp8(float64(v) * k) }

// contrast is the CSS linear contrast (v-0.5)*k+0.5 on the 0-255 scale.
func contrast(v uint8, k float64) uint8 { return clamp8((float64(v)-127.5)*k + 127.5) }

func clamp8(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}
