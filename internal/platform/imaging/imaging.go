// Copyright (c) 2026 StudentHub. All rights reserved.
// Author: StudentHub maintainers

// Package imaging normalizes uploaded profile pictures.
//
// Every accepted image (JPEG, PNG, GIF, WebP) is center-cropped to a square,
// scaled to [ProfileSize] pixels, and re-encoded as JPEG.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"

	// Decoders registered for image.Decode.
	_ "image/gif"
	_ "image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	// ProfileSize is the edge length of a normalized profile picture.
	ProfileSize = 400
	// JPEGQuality is the encoder quality for normalized pictures.
	JPEGQuality = 90
	// ContentType is the MIME type of every normalized picture.
	ContentType = "image/jpeg"
)

// ErrUnsupportedImage is returned when the bytes are not a decodable image.
var ErrUnsupportedImage = errors.New("imaging: unsupported or corrupt image")

// Normalizer turns raw uploads into stored pictures.
type Normalizer interface {
	Normalize(raw []byte) ([]byte, error)
}

// Resizer implements [Normalizer] with a cover crop and Catmull-Rom scaling.
type Resizer struct {
	Size    int
	Quality int
}

// NewResizer returns a [Resizer] with the profile defaults.
func NewResizer() *Resizer {
	return &Resizer{Size: ProfileSize, Quality: JPEGQuality}
}

// Normalize implements [Normalizer].
func (resizer *Resizer) Normalize(raw []byte) ([]byte, error) {
	source, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}

	crop := coverRect(source.Bounds())
	target := image.NewRGBA(image.Rect(0, 0, resizer.Size, resizer.Size))
	draw.CatmullRom.Scale(target, target.Bounds(), source, crop, draw.Src, nil)

	var out bytes.Buffer
	if err := jpeg.Encode(&out, target, &jpeg.Options{Quality: resizer.Quality}); err != nil {
		return nil, fmt.Errorf("imaging_encode_failed: %w", err)
	}

	return out.Bytes(), nil
}

// coverRect returns the centered square inside bounds.
func coverRect(bounds image.Rectangle) image.Rectangle {
	width, height := bounds.Dx(), bounds.Dy()
	side := min(width, height)

	x0 := bounds.Min.X + (width-side)/2
	y0 := bounds.Min.Y + (height-side)/2

	return image.Rect(x0, y0, x0+side, y0+side)
}

// Passthrough is a no-op [Normalizer].
type Passthrough struct{}

// Normalize returns raw unchanged.
func (Passthrough) Normalize(raw []byte) ([]byte, error) {
	return raw, nil
}
