package chromecapture

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/user/timecut/pkg/ports"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func size(t *testing.T, data []byte) (int, int) {
	t.Helper()
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	return cfg.Width, cfg.Height
}

func TestEvenCrop(t *testing.T) {
	tests := []struct {
		name          string
		w, h          int
		evenW, evenH  bool
		wantW, wantH  int
		wantUnchanged bool
	}{
		{"odd both", 101, 51, true, true, 100, 50, false},
		{"odd width only rounded", 101, 51, true, false, 100, 51, false},
		{"already even", 100, 50, true, true, 100, 50, true},
		{"rounding disabled", 101, 51, false, false, 101, 51, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := encodePNG(t, tt.w, tt.h)
			got, err := EvenCrop(data, ports.ImagePNG, 0, tt.evenW, tt.evenH)
			if err != nil {
				t.Fatalf("EvenCrop failed: %v", err)
			}
			if w, h := size(t, got); w != tt.wantW || h != tt.wantH {
				t.Errorf("expected %dx%d, got %dx%d", tt.wantW, tt.wantH, w, h)
			}
			if tt.wantUnchanged && !bytes.Equal(got, data) {
				t.Error("expected frame to be returned untouched")
			}
		})
	}
}

func TestEvenCrop_JPEG(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 33, 17))
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatal(err)
	}

	got, err := EvenCrop(buf.Bytes(), ports.ImageJPEG, 80, true, true)
	if err != nil {
		t.Fatalf("EvenCrop failed: %v", err)
	}
	if !bytes.HasPrefix(got, []byte{0xff, 0xd8}) {
		t.Error("expected JPEG output")
	}
	if w, h := size(t, got); w != 32 || h != 16 {
		t.Errorf("expected 32x16, got %dx%d", w, h)
	}
}

func TestEvenCrop_TooSmall(t *testing.T) {
	if _, err := EvenCrop(encodePNG(t, 1, 1), ports.ImagePNG, 0, true, true); err == nil {
		t.Error("expected error for 1x1 frame")
	}
}

func TestEvenCrop_Garbage(t *testing.T) {
	if _, err := EvenCrop([]byte("not an image"), ports.ImagePNG, 0, true, true); err == nil {
		t.Error("expected decode error")
	}
}
