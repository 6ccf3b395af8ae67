// Package config provides configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/user/timecut/pkg/ffmpeg"
	"github.com/user/timecut/pkg/ports"
)

// Frame sources.
const (
	SourceBrowser = "browser"
	SourcePattern = "pattern"
)

// DefaultDuration is the capture length in seconds used when neither a
// frame count nor a duration is configured.
const DefaultDuration = 5.0

// Config represents the full configuration for a render run.
type Config struct {
	// Input/Output
	Source string `yaml:"source" toml:"source"`
	URL    string `yaml:"url" toml:"url"`
	Output string `yaml:"output" toml:"output"`

	// Viewport
	Width             int     `yaml:"width" toml:"width"`
	Height            int     `yaml:"height" toml:"height"`
	DeviceScaleFactor float64 `yaml:"device_scale_factor" toml:"device_scale_factor"`
	RoundToEvenWidth  *bool   `yaml:"round_to_even_width" toml:"round_to_even_width"`
	RoundToEvenHeight *bool   `yaml:"round_to_even_height" toml:"round_to_even_height"`

	// Timing
	FPS        float64 `yaml:"fps" toml:"fps"`
	Frames     int     `yaml:"frames" toml:"frames"`
	Duration   float64 `yaml:"duration" toml:"duration"`
	Start      float64 `yaml:"start" toml:"start"`
	StartDelay float64 `yaml:"start_delay" toml:"start_delay"`

	// Capture
	Selector              string `yaml:"selector" toml:"selector"`
	TransparentBackground bool   `yaml:"transparent_background" toml:"transparent_background"`
	ScreenshotType        string `yaml:"screenshot_type" toml:"screenshot_type"`
	ScreenshotQuality     int    `yaml:"screenshot_quality" toml:"screenshot_quality"`

	// Encoding
	FFmpegPath    string   `yaml:"ffmpeg_path" toml:"ffmpeg_path"`
	InputOptions  []string `yaml:"input_options" toml:"input_options"`
	OutputOptions []string `yaml:"output_options" toml:"output_options"`
	PixFmt        string   `yaml:"pix_fmt" toml:"pix_fmt"`

	// Frame delivery
	PipeMode      bool   `yaml:"pipe_mode" toml:"pipe_mode"`
	FrameCache    bool   `yaml:"frame_cache" toml:"frame_cache"`
	FrameCacheDir string `yaml:"frame_cache_dir" toml:"frame_cache_dir"`
	TempDir       string `yaml:"temp_dir" toml:"temp_dir"`
	FrameDir      string `yaml:"frame_dir" toml:"frame_dir"`
	KeepFrames    bool   `yaml:"keep_frames" toml:"keep_frames"`

	// OutputStream receives the encoded video instead of a file. Only
	// settable from code.
	OutputStream        io.Writer     `yaml:"-" toml:"-"`
	OutputStreamOptions StreamOptions `yaml:"output_stream_options" toml:"output_stream_options"`

	// Quiet suppresses the capture collaborator's own output.
	Quiet *bool `yaml:"quiet" toml:"quiet"`

	// Browser
	Headful           bool   `yaml:"headful" toml:"headful"`
	ChromePath        string `yaml:"chrome_path" toml:"chrome_path"`
	UserAgent         string `yaml:"user_agent" toml:"user_agent"`
	IgnoreHTTPSErrors bool   `yaml:"ignore_https_errors" toml:"ignore_https_errors"`
	ProxyServer       string `yaml:"proxy_server" toml:"proxy_server"`
	AutoInstall       bool   `yaml:"auto_install" toml:"auto_install"`

	normalized bool
}

// StreamOptions tune the container written to OutputStream.
type StreamOptions struct {
	Format string `yaml:"format" toml:"format"`
	// Movflags nil means the default flags; an empty string disables them.
	Movflags *string `yaml:"movflags" toml:"movflags"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	return Config{
		Source: SourceBrowser,
		URL:    "index.html",
		Output: "video.mp4",

		Width:             800,
		Height:            600,
		DeviceScaleFactor: 1,
		RoundToEvenWidth:  boolPtr(true),
		RoundToEvenHeight: boolPtr(true),

		ScreenshotType: string(ports.ImagePNG),
		PixFmt:         "yuv420p",
		Quiet:          boolPtr(true),
	}
}

// LoadFromFile loads configuration from a YAML or TOML file on top of
// Defaults. The format is chosen by extension; anything other than .toml
// is read as YAML.
func LoadFromFile(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, &cfg)
	default:
		err = yaml.Unmarshal(data, &cfg)
	}
	if err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	return cfg, nil
}

// Normalize fills unset fields with defaults. Later calls are no-ops so
// defaulting happens exactly once per run.
func (c *Config) Normalize() {
	if c.normalized {
		return
	}
	c.normalized = true

	d := Defaults()
	if c.Source == "" {
		c.Source = d.Source
	}
	if c.URL == "" {
		c.URL = d.URL
	}
	if c.Output == "" {
		c.Output = d.Output
	}
	if c.Width == 0 {
		c.Width = d.Width
	}
	if c.Height == 0 {
		c.Height = d.Height
	}
	if c.DeviceScaleFactor == 0 {
		c.DeviceScaleFactor = d.DeviceScaleFactor
	}
	if c.RoundToEvenWidth == nil {
		c.RoundToEvenWidth = d.RoundToEvenWidth
	}
	if c.RoundToEvenHeight == nil {
		c.RoundToEvenHeight = d.RoundToEvenHeight
	}
	if c.ScreenshotType == "" {
		c.ScreenshotType = d.ScreenshotType
	}
	if c.PixFmt == "" {
		c.PixFmt = d.PixFmt
	}
	if c.Quiet == nil {
		c.Quiet = d.Quiet
	}
	if c.Frames == 0 && c.Duration == 0 {
		c.Duration = DefaultDuration
	}
}

// Validate checks the configuration for values no run can use.
func (c Config) Validate() error {
	var errs []error

	if c.Source != SourceBrowser && c.Source != SourcePattern {
		errs = append(errs, fmt.Errorf("unknown source %q", c.Source))
	}
	if c.Width <= 0 || c.Height <= 0 {
		errs = append(errs, fmt.Errorf("invalid size %dx%d", c.Width, c.Height))
	}
	if c.DeviceScaleFactor < 0 {
		errs = append(errs, fmt.Errorf("invalid device scale factor %v", c.DeviceScaleFactor))
	}
	if c.FPS < 0 {
		errs = append(errs, fmt.Errorf("invalid fps %v", c.FPS))
	}
	if c.Frames < 0 {
		errs = append(errs, fmt.Errorf("invalid frame count %d", c.Frames))
	}
	if c.Duration < 0 || c.Start < 0 || c.StartDelay < 0 {
		errs = append(errs, errors.New("duration, start and start delay must not be negative"))
	}
	if _, err := ports.ParseImageType(c.ScreenshotType); err != nil {
		errs = append(errs, err)
	}
	if c.ScreenshotQuality < 0 || c.ScreenshotQuality > 100 {
		errs = append(errs, fmt.Errorf("invalid screenshot quality %d (0-100)", c.ScreenshotQuality))
	}

	return errors.Join(errs...)
}

// FrameRate returns the effective frames per second.
func (c Config) FrameRate() float64 {
	return ffmpeg.FrameRate(c.FPS, c.Frames, c.Duration)
}

// TotalFrames returns how many frames are captured: Frames when set,
// otherwise Duration at the effective frame rate.
func (c Config) TotalFrames() int {
	if c.Frames > 0 {
		return c.Frames
	}
	return int(math.Round(c.Duration * c.FrameRate()))
}

// ExpectedFrames is the total reported next to encoder progress.
func (c Config) ExpectedFrames() float64 {
	if c.Duration > 0 {
		return c.FrameRate() * c.Duration
	}
	return float64(c.TotalFrames())
}

// ImageType returns the parsed screenshot type.
func (c Config) ImageType() ports.ImageType {
	t, err := ports.ParseImageType(c.ScreenshotType)
	if err != nil {
		return ports.ImagePNG
	}
	return t
}

// UsePipe reports whether frames are streamed to the encoder's stdin.
// Pipe mode must be requested and frame caching must not be forced.
func (c Config) UsePipe() bool {
	return c.PipeMode && !c.FrameCache && c.FrameCacheDir == ""
}

func boolPtr(b bool) *bool {
	return &b
}

// Bool returns the value of p, or def when p is nil.
func Bool(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}
