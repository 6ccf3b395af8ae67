// Package timecut provides a high-level API for rendering web page
// animations to video.
package timecut

import (
	"context"
	"fmt"

	"github.com/user/timecut/pkg/adapters/chromecapture"
	"github.com/user/timecut/pkg/adapters/logger"
	"github.com/user/timecut/pkg/adapters/mp4probe"
	"github.com/user/timecut/pkg/adapters/osfilesystem"
	"github.com/user/timecut/pkg/adapters/patterncapture"
	"github.com/user/timecut/pkg/config"
	"github.com/user/timecut/pkg/orchestrator"
	"github.com/user/timecut/pkg/ports"
)

// Option customizes the collaborators used by Run.
type Option func(*deps)

type deps struct {
	logger   ports.Logger
	fs       ports.FileSystem
	capturer ports.FrameCapturer
	prober   ports.VideoProber
}

// WithLogger sets the logger. The default discards all output.
func WithLogger(log ports.Logger) Option {
	return func(d *deps) { d.logger = log }
}

// WithFileSystem replaces the operating system file system.
func WithFileSystem(fs ports.FileSystem) Option {
	return func(d *deps) { d.fs = fs }
}

// WithCapturer replaces the frame source selected by Config.Source.
func WithCapturer(c ports.FrameCapturer) Option {
	return func(d *deps) { d.capturer = c }
}

// WithProber replaces the mp4 inspector. Passing nil disables inspection.
func WithProber(p ports.VideoProber) Option {
	return func(d *deps) { d.prober = p }
}

// Render captures frames as configured and returns the absolute path of
// the video, or "" when the video was written to cfg.OutputStream.
func Render(ctx context.Context, cfg config.Config, opts ...Option) (string, error) {
	result, err := Run(ctx, cfg, opts...)
	if err != nil {
		return "", err
	}
	return result.OutputPath, nil
}

// Run is Render returning the full run result.
func Run(ctx context.Context, cfg config.Config, opts ...Option) (orchestrator.Result, error) {
	d := deps{prober: mp4probe.New()}
	for _, opt := range opts {
		opt(&d)
	}
	if d.logger == nil {
		d.logger = logger.NewNoop()
	}
	if d.fs == nil {
		d.fs = osfilesystem.New()
	}
	if d.capturer == nil {
		c, err := NewCapturer(cfg.Source, d.fs, d.logger)
		if err != nil {
			return orchestrator.Result{}, err
		}
		d.capturer = c
	}

	orch := orchestrator.New(d.capturer, d.fs, d.prober, d.logger)
	return orch.Run(ctx, cfg)
}

// NewCapturer returns the frame source named by source. An empty name
// selects the browser.
func NewCapturer(source string, fs ports.FileSystem, log ports.Logger) (ports.FrameCapturer, error) {
	switch source {
	case "", config.SourceBrowser:
		return chromecapture.New(fs, log), nil
	case config.SourcePattern:
		return patterncapture.New(fs, log), nil
	default:
		return nil, fmt.Errorf("unknown source %q", source)
	}
}
