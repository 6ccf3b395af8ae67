// Package chromecapture captures page frames with headless Chrome, driving
// page time from the capture clock so every frame lands on an exact
// timestamp.
package chromecapture

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"

	"github.com/user/timecut/pkg/adapters/framesink"
	"github.com/user/timecut/pkg/ports"
)

// defaultFPS applies when the options carry no frame rate.
const defaultFPS = 60.0

// Capturer implements ports.FrameCapturer using chromedp.
type Capturer struct {
	fs  ports.FileSystem
	log ports.Logger
}

// New creates a new Capturer. Frames written to disk go through fs.
func New(fs ports.FileSystem, log ports.Logger) *Capturer {
	return &Capturer{
		fs:  fs,
		log: log.WithComponent("capture"),
	}
}

// Capture loads opts.URL and captures opts.Frames screenshots.
func (c *Capturer) Capture(ctx context.Context, opts ports.CaptureOptions, process ports.FrameProcessor) error {
	sink, err := framesink.New(opts.OutputPattern, process, c.fs)
	if err != nil {
		return err
	}

	chromePath, err := c.chromePath(opts.Browser)
	if err != nil {
		return err
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocatorOptions(opts.Browser, chromePath)...)
	defer allocCancel()
	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	width, height := viewportSize(opts)
	scale := opts.DeviceScaleFactor
	if scale <= 0 {
		scale = 1
	}

	setup := chromedp.Tasks{
		emulation.SetDeviceMetricsOverride(int64(width), int64(height), scale, false),
		chromedp.ActionFunc(func(ctx context.Context) error {
			_, err := page.AddScriptToEvaluateOnNewDocument(timeShim).Do(ctx)
			return err
		}),
	}
	if opts.TransparentBackground {
		setup = append(setup, emulation.SetDefaultBackgroundColorOverride().
			WithColor(&cdp.RGBA{R: 0, G: 0, B: 0, A: 0}))
	}

	url, err := ResolveURL(opts.URL)
	if err != nil {
		return err
	}
	setup = append(setup, chromedp.Navigate(url))

	c.log.Debug("Loading %s (%dx%d @%vx)", url, width, height, scale)
	if err := chromedp.Run(browserCtx, setup); err != nil {
		return fmt.Errorf("load %s: %w", url, err)
	}

	if opts.StartDelay > 0 {
		select {
		case <-time.After(time.Duration(opts.StartDelay * float64(time.Second))):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	var clip *page.Viewport
	if opts.Selector != "" {
		clip, err = elementClip(browserCtx, opts.Selector)
		if err != nil {
			return err
		}
	}

	for i := 0; i < opts.Frames; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		at := FrameTime(opts.Start, opts.FPS, i)
		shot, err := captureFrame(browserCtx, at, opts, clip)
		if err != nil {
			return fmt.Errorf("capture frame %d: %w", i+1, err)
		}

		shot, err = EvenCrop(shot, opts.ScreenshotType, opts.ScreenshotQuality, opts.RoundToEvenWidth, opts.RoundToEvenHeight)
		if err != nil {
			return fmt.Errorf("crop frame %d: %w", i+1, err)
		}

		if err := sink.Put(shot); err != nil {
			return err
		}

		if !opts.Quiet {
			c.log.Info("Captured frame %d/%d", i+1, opts.Frames)
		}
	}

	c.log.Debug("Captured %d frames", sink.Count())
	return nil
}

func (c *Capturer) chromePath(opts ports.BrowserOptions) (string, error) {
	if path := ResolveChromePath(opts.ChromePath); path != "" {
		return path, nil
	}
	if !opts.AutoInstall {
		return "", ErrChromeNotFound
	}
	c.log.Info("Chrome not found, installing Chromium")
	return InstallChromium()
}

// FrameTime returns the virtual page time in milliseconds for the frame
// at zero-based index.
func FrameTime(start, fps float64, index int) float64 {
	if fps <= 0 {
		fps = defaultFPS
	}
	return start*1000 + float64(index)*1000/fps
}

// viewportSize rounds odd dimensions up when even rounding is requested.
func viewportSize(opts ports.CaptureOptions) (int, int) {
	width, height := opts.Width, opts.Height
	if opts.RoundToEvenWidth && width%2 == 1 {
		width++
	}
	if opts.RoundToEvenHeight && height%2 == 1 {
		height++
	}
	return width, height
}

func captureFrame(ctx context.Context, at float64, opts ports.CaptureOptions, clip *page.Viewport) ([]byte, error) {
	var now float64
	var shot []byte
	err := chromedp.Run(ctx,
		chromedp.Evaluate(fmt.Sprintf("window.__timecut.goTo(%f)", at), &now,
			func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
				return p.WithAwaitPromise(true)
			}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			shot, err = screenshotParams(opts, clip).Do(ctx)
			return err
		}),
	)
	return shot, err
}

func screenshotParams(opts ports.CaptureOptions, clip *page.Viewport) *page.CaptureScreenshotParams {
	params := page.CaptureScreenshot().WithFormat(page.CaptureScreenshotFormatPng)
	if opts.ScreenshotType.IsJPEG() {
		params = page.CaptureScreenshot().WithFormat(page.CaptureScreenshotFormatJpeg)
		if opts.ScreenshotQuality > 0 {
			params = params.WithQuality(int64(opts.ScreenshotQuality))
		}
	}
	if clip != nil {
		params = params.WithClip(clip)
	}
	return params
}

func elementClip(ctx context.Context, selector string) (*page.Viewport, error) {
	var rect struct {
		X      float64 `json:"x"`
		Y      float64 `json:"y"`
		Width  float64 `json:"width"`
		Height float64 `json:"height"`
		Found  bool    `json:"found"`
	}
	script := fmt.Sprintf(`(() => {
		const el = document.querySelector(%q);
		if (!el) return {found: false};
		const r = el.getBoundingClientRect();
		return {x: r.left + window.scrollX, y: r.top + window.scrollY, width: r.width, height: r.height, found: true};
	})()`, selector)

	if err := chromedp.Run(ctx, chromedp.Evaluate(script, &rect)); err != nil {
		return nil, fmt.Errorf("locate %s: %w", selector, err)
	}
	if !rect.Found || rect.Width <= 0 || rect.Height <= 0 {
		return nil, fmt.Errorf("selector %s matched no visible element", selector)
	}
	return &page.Viewport{X: rect.X, Y: rect.Y, Width: rect.Width, Height: rect.Height, Scale: 1}, nil
}

func allocatorOptions(opts ports.BrowserOptions, chromePath string) []chromedp.ExecAllocatorOption {
	chromedpOpts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.ExecPath(chromePath),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-background-timer-throttling", true),
		chromedp.Flag("disable-renderer-backgrounding", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("mute-audio", true),
		chromedp.Flag("hide-scrollbars", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-setuid-sandbox", true),
	}

	if opts.Headless {
		chromedpOpts = append(chromedpOpts, chromedp.Flag("headless", "new"))
	}
	if opts.UserAgent != "" {
		chromedpOpts = append(chromedpOpts, chromedp.UserAgent(opts.UserAgent))
	}
	if opts.IgnoreHTTPSErrors {
		chromedpOpts = append(chromedpOpts,
			chromedp.Flag("ignore-certificate-errors", true),
			chromedp.Flag("allow-insecure-localhost", true))
	}
	if opts.ProxyServer != "" {
		chromedpOpts = append(chromedpOpts, chromedp.Flag("proxy-server", opts.ProxyServer))
	}
	for _, arg := range opts.ExtraArgs {
		name, value, hasValue := strings.Cut(strings.TrimLeft(arg, "-"), "=")
		if hasValue {
			chromedpOpts = append(chromedpOpts, chromedp.Flag(name, value))
		} else {
			chromedpOpts = append(chromedpOpts, chromedp.Flag(name, true))
		}
	}

	return chromedpOpts
}

var _ ports.FrameCapturer = (*Capturer)(nil)
