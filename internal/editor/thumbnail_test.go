package editor

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"
)

func TestThumbnailCropsToSquare(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 64, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 64; x++ {
			src.Set(x, y, color.NRGBA{R: uint8(x * 4), G: 80, B: 160, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, src, imaging.PNG))

	out, err := Thumbnail(buf.Bytes(), 16)
	require.NoError(t, err)

	decoded, format, err := image.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	require.Equal(t, "png", format)
	require.Equal(t, 16, decoded.Bounds().Dx())
	require.Equal(t, 16, decoded.Bounds().Dy())
}

func TestThumbnailRejectsGarbage(t *testing.T) {
	_, err := Thumbnail(nil, 16)
	require.Error(t, err)

	_, err = Thumbnail([]byte("not an image"), 16)
	require.Error(t, err)
}
