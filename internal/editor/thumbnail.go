package editor

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

// DefaultThumbnailSize is the edge length of gallery tiles.
const DefaultThumbnailSize = 256

// Thumbnail decodes a cover (png, jpeg, gif or webp) and returns a square PNG
// tile cropped around the centre.
func Thumbnail(data []byte, size int) ([]byte, error) {
	if len(data) == 0 {
		return nil, errors.New("editor: thumbnail: empty image")
	}
	if size <= 0 {
		size = DefaultThumbnailSize
	}
	src, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("editor: thumbnail: decode: %w", err)
	}
	tile := imaging.Fill(src, size, size, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, tile, imaging.PNG); err != nil {
		return nil, fmt.Errorf("editor: thumbnail: encode: %w", err)
	}
	return buf.Bytes(), nil
}
