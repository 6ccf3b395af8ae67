package chromecapture

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	"golang.org/x/image/draw"

	"github.com/user/timecut/pkg/ports"
)

// defaultJPEGQuality is used when re-encoding a JPEG frame without an
// explicit quality.
const defaultJPEGQuality = 90

// EvenCrop trims one pixel column and/or row so encoders that need even
// dimensions (yuv420p) accept the frame. Frames that already fit are
// returned untouched.
func EvenCrop(data []byte, typ ports.ImageType, quality int, evenWidth, evenHeight bool) ([]byte, error) {
	if !evenWidth && !evenHeight {
		return data, nil
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode frame header: %w", err)
	}
	width, height := cfg.Width, cfg.Height
	if evenWidth && width%2 == 1 {
		width--
	}
	if evenHeight && height%2 == 1 {
		height--
	}
	if width == cfg.Width && height == cfg.Height {
		return data, nil
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("frame too small to crop: %dx%d", cfg.Width, cfg.Height)
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Copy(dst, image.Point{}, src, image.Rect(src.Bounds().Min.X, src.Bounds().Min.Y, src.Bounds().Min.X+width, src.Bounds().Min.Y+height), draw.Src, nil)

	var buf bytes.Buffer
	if typ.IsJPEG() {
		if quality <= 0 {
			quality = defaultJPEGQuality
		}
		err = jpeg.Encode(&buf, dst, &jpeg.Options{Quality: quality})
	} else {
		err = png.Encode(&buf, dst)
	}
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	return buf.Bytes(), nil
}
