// Package ports defines interfaces for external dependencies.
package ports

import (
	"context"
	"fmt"
	"strings"
)

// FrameProcessor receives one encoded frame image per captured frame, in
// capture order. Returning an error aborts the capture.
type FrameProcessor func(frame []byte) error

// FrameCapturer abstracts the component that renders frames.
type FrameCapturer interface {
	// Capture renders opts.Frames frames. When process is nil every frame is
	// written to opts.OutputPattern; otherwise every frame is handed to
	// process and nothing is written to disk.
	Capture(ctx context.Context, opts CaptureOptions, process FrameProcessor) error
}

// CaptureOptions configures a single capture run.
type CaptureOptions struct {
	URL string

	// Viewport in CSS pixels.
	Width             int
	Height            int
	DeviceScaleFactor float64
	RoundToEvenWidth  bool
	RoundToEvenHeight bool

	FPS        float64
	Frames     int
	Start      float64 // Virtual seconds skipped before the first frame
	StartDelay float64 // Real seconds to wait after the page loads

	Selector              string // Clip frames to this element, if set
	TransparentBackground bool

	ScreenshotType    ImageType
	ScreenshotQuality int // JPEG quality (1-100)

	// OutputPattern is a printf-style path with one integer verb, for
	// example /tmp/frames/image-%09d.png. Frame numbers start at 1.
	OutputPattern string

	// Quiet suppresses per-frame logging.
	Quiet bool

	Browser BrowserOptions
}

// BrowserOptions configures browser launch settings.
type BrowserOptions struct {
	Headless          bool
	ChromePath        string
	UserAgent         string
	IgnoreHTTPSErrors bool   // Ignore HTTPS certificate errors
	ProxyServer       string // HTTP proxy server (e.g., "http://proxy:8080")
	AutoInstall       bool   // Download Chromium when no browser is found
	ExtraArgs         []string
}

// ImageType is the encoding used for captured frames.
type ImageType string

const (
	ImagePNG  ImageType = "png"
	ImageJPEG ImageType = "jpeg"
)

// ParseImageType accepts png, jpg and jpeg (case-insensitive).
func ParseImageType(s string) (ImageType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "png":
		return ImagePNG, nil
	case "jpg", "jpeg":
		return ImageJPEG, nil
	default:
		return "", fmt.Errorf("unsupported screenshot type %q", s)
	}
}

// IsJPEG reports whether frames are JPEG encoded.
func (t ImageType) IsJPEG() bool {
	return t == ImageJPEG
}
