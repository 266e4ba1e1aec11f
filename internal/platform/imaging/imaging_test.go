// Copyright (c) 2026 StudentHub. All rights reserved.
// Author: StudentHub maintainers

package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestResizer_Normalize(t *testing.T) {
	out, err := NewResizer().Normalize(encodePNG(t, 640, 480))
	require.NoError(t, err)

	decoded, err := jpeg.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, ProfileSize, decoded.Bounds().Dx())
	assert.Equal(t, ProfileSize, decoded.Bounds().Dy())
}

func TestResizer_Rejects(t *testing.T) {
	_, err := NewResizer().Normalize([]byte("definitely not an image"))
	assert.ErrorIs(t, err, ErrUnsupportedImage)
}

func TestCoverRect(t *testing.T) {
	assert.Equal(t, image.Rect(80, 0, 560, 480), coverRect(image.Rect(0, 0, 640, 480)))
	assert.Equal(t, image.Rect(0, 50, 100, 150), coverRect(image.Rect(0, 0, 100, 200)))
}
