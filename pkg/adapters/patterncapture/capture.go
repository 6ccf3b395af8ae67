// Package patterncapture renders synthetic test-pattern frames. It needs no
// browser, which makes it useful for checking an ffmpeg setup.
package patterncapture

import (
	"bytes"
	"context"
	"fmt"
	"image/color"
	"image/jpeg"
	"math"

	"github.com/fogleman/gg"

	"github.com/user/timecut/pkg/adapters/framesink"
	"github.com/user/timecut/pkg/ports"
)

const defaultFPS = 60.0

var (
	backgroundColor = color.RGBA{R: 0x1a, G: 0x1a, B: 0x2e, A: 0xff}
	barColor        = color.RGBA{R: 0x4a, G: 0xde, B: 0x80, A: 0xff}
	textColor       = color.White
)

// Capturer implements ports.FrameCapturer with gg-drawn frames.
type Capturer struct {
	fs  ports.FileSystem
	log ports.Logger
}

// New creates a new Capturer.
func New(fs ports.FileSystem, log ports.Logger) *Capturer {
	return &Capturer{
		fs:  fs,
		log: log.WithComponent("pattern"),
	}
}

// Capture renders opts.Frames frames: a bar sweeping across the canvas once
// per second of virtual time and a frame/time caption.
func (c *Capturer) Capture(ctx context.Context, opts ports.CaptureOptions, process ports.FrameProcessor) error {
	sink, err := framesink.New(opts.OutputPattern, process, c.fs)
	if err != nil {
		return err
	}

	width, height := FrameSize(opts)
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid frame size %dx%d", width, height)
	}

	fps := opts.FPS
	if fps <= 0 {
		fps = defaultFPS
	}

	for i := 0; i < opts.Frames; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		seconds := opts.Start + float64(i)/fps
		data, err := render(width, height, i+1, seconds, opts)
		if err != nil {
			return fmt.Errorf("render frame %d: %w", i+1, err)
		}
		if err := sink.Put(data); err != nil {
			return err
		}

		if !opts.Quiet {
			c.log.Info("Captured frame %d/%d", i+1, opts.Frames)
		}
	}

	c.log.Debug("Rendered %d pattern frames at %dx%d", sink.Count(), width, height)
	return nil
}

// FrameSize returns the output size in device pixels, trimmed to even
// values when rounding is requested.
func FrameSize(opts ports.CaptureOptions) (int, int) {
	scale := opts.DeviceScaleFactor
	if scale <= 0 {
		scale = 1
	}
	width := int(math.Round(float64(opts.Width) * scale))
	height := int(math.Round(float64(opts.Height) * scale))
	if opts.RoundToEvenWidth && width%2 == 1 {
		width++
	}
	if opts.RoundToEvenHeight && height%2 == 1 {
		height++
	}
	return width, height
}

func render(width, height, frame int, seconds float64, opts ports.CaptureOptions) ([]byte, error) {
	dc := gg.NewContext(width, height)
	if !opts.TransparentBackground {
		dc.SetColor(backgroundColor)
		dc.Clear()
	}

	_, frac := math.Modf(seconds)
	barWidth := math.Max(2, float64(width)/20)
	dc.SetColor(barColor)
	dc.DrawRectangle(frac*(float64(width)-barWidth), 0, barWidth, float64(height))
	dc.Fill()

	dc.SetColor(textColor)
	dc.DrawStringAnchored(fmt.Sprintf("frame %d  t=%.3fs", frame, seconds), float64(width)/2, float64(height)/2, 0.5, 0.5)

	var buf bytes.Buffer
	if opts.ScreenshotType.IsJPEG() {
		quality := opts.ScreenshotQuality
		if quality <= 0 {
			quality = 90
		}
		if err := jpeg.Encode(&buf, dc.Image(), &jpeg.Options{Quality: quality}); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var _ ports.FrameCapturer = (*Capturer)(nil)
