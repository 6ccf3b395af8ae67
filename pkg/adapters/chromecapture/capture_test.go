package chromecapture

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chromedp/cdproto/page"

	"github.com/user/timecut/pkg/adapters/logger"
	"github.com/user/timecut/pkg/adapters/osfilesystem"
	"github.com/user/timecut/pkg/ports"
)

func TestFrameTime(t *testing.T) {
	tests := []struct {
		start float64
		fps   float64
		index int
		want  float64
	}{
		{0, 60, 0, 0},
		{0, 50, 3, 60},
		{1.5, 10, 2, 1700},
		{0, 0, 6, 100},
	}
	for _, tt := range tests {
		if got := FrameTime(tt.start, tt.fps, tt.index); got != tt.want {
			t.Errorf("FrameTime(%v, %v, %d) = %v, want %v", tt.start, tt.fps, tt.index, got, tt.want)
		}
	}
}

func TestViewportSize(t *testing.T) {
	w, h := viewportSize(ports.CaptureOptions{Width: 801, Height: 601, RoundToEvenWidth: true, RoundToEvenHeight: true})
	if w != 802 || h != 602 {
		t.Errorf("expected 802x602, got %dx%d", w, h)
	}
	w, h = viewportSize(ports.CaptureOptions{Width: 801, Height: 601})
	if w != 801 || h != 601 {
		t.Errorf("expected 801x601 without rounding, got %dx%d", w, h)
	}
}

func TestScreenshotParams(t *testing.T) {
	p := screenshotParams(ports.CaptureOptions{ScreenshotType: ports.ImagePNG, ScreenshotQuality: 50}, nil)
	if p.Format != page.CaptureScreenshotFormatPng || p.Quality != 0 {
		t.Errorf("png must ignore quality: %+v", p)
	}

	clip := &page.Viewport{Width: 10, Height: 10, Scale: 1}
	p = screenshotParams(ports.CaptureOptions{ScreenshotType: ports.ImageJPEG, ScreenshotQuality: 75}, clip)
	if p.Format != page.CaptureScreenshotFormatJpeg || p.Quality != 75 || p.Clip != clip {
		t.Errorf("unexpected jpeg params: %+v", p)
	}
}

func TestTimeShim(t *testing.T) {
	for _, name := range []string{"__timecut", "goTo", "performance.now", "requestAnimationFrame", "getAnimations"} {
		if !strings.Contains(timeShim, name) {
			t.Errorf("time shim does not mention %s", name)
		}
	}
}

func TestCapture_NoTarget(t *testing.T) {
	c := New(osfilesystem.New(), logger.NewNoop())
	err := c.Capture(context.Background(), ports.CaptureOptions{Frames: 1}, nil)
	if err == nil {
		t.Error("expected error without pattern or processor")
	}
}

func TestCapture_Browser(t *testing.T) {
	chromePath := ResolveChromePath("")
	if chromePath == "" {
		t.Skip("Chrome not installed, skipping capture test")
	}

	dir := t.TempDir()
	pagePath := filepath.Join(dir, "index.html")
	html := `<html><body style="margin:0"><div id="box" style="width:31px;height:21px;background:red"></div>
<script>setTimeout(() => { document.body.dataset.done = "1"; }, 50);</script></body></html>`
	if err := os.WriteFile(pagePath, []byte(html), 0644); err != nil {
		t.Fatal(err)
	}

	c := New(osfilesystem.New(), logger.NewNoop())
	var frames [][]byte
	err := c.Capture(context.Background(), ports.CaptureOptions{
		URL:               pagePath,
		Width:             64,
		Height:            48,
		RoundToEvenWidth:  true,
		RoundToEvenHeight: true,
		FPS:               10,
		Frames:            3,
		Selector:          "#box",
		ScreenshotType:    ports.ImagePNG,
		Quiet:             true,
		Browser:           ports.BrowserOptions{Headless: true, ChromePath: chromePath},
	}, func(frame []byte) error {
		frames = append(frames, frame)
		return nil
	})
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}
	if len(frames) != 3 {
		t.Fatalf("expected 3 frames, got %d", len(frames))
	}
	if w, h := size(t, frames[0]); w%2 != 0 || h%2 != 0 {
		t.Errorf("expected even frame size, got %dx%d", w, h)
	}
}
