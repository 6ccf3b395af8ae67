package timecut

import (
	"io"

	"github.com/user/timecut/pkg/config"
)

// ConfigBuilder provides a fluent interface for building config.Config.
type ConfigBuilder struct {
	config config.Config
}

// NewConfigBuilder creates a new ConfigBuilder starting from config.Defaults.
func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{config: config.Defaults()}
}

// FromConfig starts a builder from an existing configuration, for example
// one loaded with config.LoadFromFile.
func FromConfig(cfg config.Config) *ConfigBuilder {
	return &ConfigBuilder{config: cfg}
}

// Build returns the final Config with defaults applied.
func (b *ConfigBuilder) Build() config.Config {
	cfg := b.config
	cfg.Normalize()
	return cfg
}

// WithURL sets the page to capture. Bare paths are opened as files.
func (b *ConfigBuilder) WithURL(url string) *ConfigBuilder {
	b.config.URL = url
	return b
}

// WithOutput sets the video file path.
func (b *ConfigBuilder) WithOutput(path string) *ConfigBuilder {
	b.config.Output = path
	return b
}

// WithOutputStream writes the video to w instead of a file.
func (b *ConfigBuilder) WithOutputStream(w io.Writer) *ConfigBuilder {
	b.config.OutputStream = w
	return b
}

// WithSource selects the frame source (browser or pattern).
func (b *ConfigBuilder) WithSource(source string) *ConfigBuilder {
	b.config.Source = source
	return b
}

// WithViewport sets the viewport size in CSS pixels.
func (b *ConfigBuilder) WithViewport(width, height int) *ConfigBuilder {
	b.config.Width = width
	b.config.Height = height
	return b
}

// WithDeviceScaleFactor sets the device pixel ratio.
func (b *ConfigBuilder) WithDeviceScaleFactor(f float64) *ConfigBuilder {
	b.config.DeviceScaleFactor = f
	return b
}

// WithFPS sets the frame rate.
func (b *ConfigBuilder) WithFPS(fps float64) *ConfigBuilder {
	b.config.FPS = fps
	return b
}

// WithDuration sets the captured length in virtual seconds.
func (b *ConfigBuilder) WithDuration(seconds float64) *ConfigBuilder {
	b.config.Duration = seconds
	return b
}

// WithFrames sets an exact frame count. It wins over the duration.
func (b *ConfigBuilder) WithFrames(frames int) *ConfigBuilder {
	b.config.Frames = frames
	return b
}

// WithStart skips virtual seconds before the first frame.
func (b *ConfigBuilder) WithStart(seconds float64) *ConfigBuilder {
	b.config.Start = seconds
	return b
}

// WithSelector clips frames to the first element matching selector.
func (b *ConfigBuilder) WithSelector(selector string) *ConfigBuilder {
	b.config.Selector = selector
	return b
}

// WithScreenshotType sets the frame image type (png or jpeg).
func (b *ConfigBuilder) WithScreenshotType(t string) *ConfigBuilder {
	b.config.ScreenshotType = t
	return b
}

// WithPipeMode streams frames to ffmpeg instead of writing them to disk.
func (b *ConfigBuilder) WithPipeMode(pipe bool) *ConfigBuilder {
	b.config.PipeMode = pipe
	return b
}

// WithKeepFrames keeps the frame directory after a successful run.
func (b *ConfigBuilder) WithKeepFrames(keep bool) *ConfigBuilder {
	b.config.KeepFrames = keep
	return b
}

// WithFrameCacheDir stores frames below dir. It forces buffered mode.
func (b *ConfigBuilder) WithFrameCacheDir(dir string) *ConfigBuilder {
	b.config.FrameCacheDir = dir
	return b
}

// WithFFmpegPath sets the ffmpeg executable.
func (b *ConfigBuilder) WithFFmpegPath(path string) *ConfigBuilder {
	b.config.FFmpegPath = path
	return b
}

// WithInputOptions sets extra ffmpeg arguments placed before the input.
func (b *ConfigBuilder) WithInputOptions(args ...string) *ConfigBuilder {
	b.config.InputOptions = args
	return b
}

// WithOutputOptions sets extra ffmpeg arguments placed before the output.
func (b *ConfigBuilder) WithOutputOptions(args ...string) *ConfigBuilder {
	b.config.OutputOptions = args
	return b
}

// WithPixFmt sets the output pixel format.
func (b *ConfigBuilder) WithPixFmt(pixFmt string) *ConfigBuilder {
	b.config.PixFmt = pixFmt
	return b
}

// WithHeadful shows the browser window.
func (b *ConfigBuilder) WithHeadful(headful bool) *ConfigBuilder {
	b.config.Headful = headful
	return b
}

// WithChromePath sets the browser executable.
func (b *ConfigBuilder) WithChromePath(path string) *ConfigBuilder {
	b.config.ChromePath = path
	return b
}
