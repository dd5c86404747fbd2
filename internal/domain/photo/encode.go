package photo

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

type Format string

const (
	PNG  Format = "image/png"
	JPEG Format = "image/jpeg"
	WebP Format = "image/webp"
)

const lossyQuality = 90

// ParseFormat accepts a MIME type or a bare extension.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "png", "image/png":
		return PNG, nil
	case "jpg", "jpeg", "image/jpeg":
		return JPEG, nil
	case "webp", "image/webp":
		return WebP, nil
	default:
		return "", fmt.Errorf("unsupported image format %q", s)
	}
}

func (f Format) Extension() string {
	ext := strings.TrimPrefix(string(f), "image/")
	return strings.Replace(ext, "jpeg", "jpg", 1)
}

// Quality is the encoder quality on a 0-100 scale; PNG is always lossless.
func (f Format) Quality() int {
	if f == PNG {
		return 100
	}
	return lossyQuality
}

func (f Format) FileName() string {
	return "edited-image." + f.Extension()
}

func Encode(img image.Image, f Format) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch f {
	case PNG:
		err = png.Encode(&buf, img)
	case JPEG:
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: f.Quality()})
	case WebP:
		err = webp.Encode(&buf, img, &webp.Options{Quality: float32(f.Quality())})
	default:
		return nil, fmt.Errorf("unsupported image format %q", f)
	}
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", f.Extension(), err)
	}
	return buf.Bytes(), nil
}

// Decode reads any format registered with the image package, honouring EXIF
// orientation.
func Decode(data []byte) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}
