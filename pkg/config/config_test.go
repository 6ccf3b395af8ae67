package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/user/timecut/pkg/ports"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.Output != "video.mp4" {
		t.Errorf("expected output video.mp4, got %s", cfg.Output)
	}
	if cfg.URL != "index.html" {
		t.Errorf("expected url index.html, got %s", cfg.URL)
	}
	if cfg.PixFmt != "yuv420p" {
		t.Errorf("expected pix fmt yuv420p, got %s", cfg.PixFmt)
	}
	if cfg.ScreenshotType != "png" {
		t.Errorf("expected screenshot type png, got %s", cfg.ScreenshotType)
	}
	if !Bool(cfg.RoundToEvenWidth, false) || !Bool(cfg.RoundToEvenHeight, false) {
		t.Error("expected round-to-even enabled by default")
	}
	if !Bool(cfg.Quiet, false) {
		t.Error("expected quiet by default")
	}
	if cfg.PipeMode {
		t.Error("expected buffered mode by default")
	}
}

func TestNormalize(t *testing.T) {
	cfg := Config{Frames: 10, FPS: 10}
	cfg.Normalize()

	if cfg.Output != "video.mp4" || cfg.URL != "index.html" || cfg.PixFmt != "yuv420p" {
		t.Errorf("defaults not applied: %+v", cfg)
	}
	if cfg.Width != 800 || cfg.Height != 600 {
		t.Errorf("expected 800x600, got %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.Duration != 0 {
		t.Errorf("duration must stay unset when frames are given, got %v", cfg.Duration)
	}
	if cfg.Source != SourceBrowser {
		t.Errorf("expected browser source, got %s", cfg.Source)
	}
}

func TestNormalize_KeepsExplicitValues(t *testing.T) {
	off := false
	cfg := Config{
		Output:           "out.mp4",
		PixFmt:           "yuv444p",
		RoundToEvenWidth: &off,
		Quiet:            &off,
		Duration:         2,
	}
	cfg.Normalize()

	if cfg.Output != "out.mp4" || cfg.PixFmt != "yuv444p" {
		t.Errorf("explicit values overwritten: %+v", cfg)
	}
	if Bool(cfg.RoundToEvenWidth, true) {
		t.Error("explicit round-to-even false was overwritten")
	}
	if !Bool(cfg.RoundToEvenHeight, false) {
		t.Error("unset round-to-even height should default to true")
	}
	if Bool(cfg.Quiet, true) {
		t.Error("explicit quiet false was overwritten")
	}
}

func TestNormalize_DefaultDuration(t *testing.T) {
	cfg := Config{}
	cfg.Normalize()

	if cfg.Duration != DefaultDuration {
		t.Errorf("expected duration %v, got %v", DefaultDuration, cfg.Duration)
	}
	if got := cfg.TotalFrames(); got != 300 {
		t.Errorf("expected 300 frames at 60fps, got %d", got)
	}
}

func TestNormalize_Once(t *testing.T) {
	cfg := Config{}
	cfg.Normalize()
	cfg.Output = ""
	cfg.Normalize()

	if cfg.Output != "" {
		t.Error("second Normalize must not reapply defaults")
	}
}

func TestFrameMath(t *testing.T) {
	tests := []struct {
		name     string
		cfg      Config
		rate     float64
		total    int
		expected float64
	}{
		{"frames and duration", Config{Frames: 120, Duration: 2}, 60, 120, 120},
		{"fps and duration", Config{FPS: 30, Duration: 2}, 30, 60, 60},
		{"fps and frames", Config{FPS: 10, Frames: 10}, 10, 10, 10},
		{"duration only", Config{Duration: 1.5}, 60, 90, 90},
		{"frames win over duration", Config{FPS: 24, Frames: 5, Duration: 10}, 24, 5, 240},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.FrameRate(); got != tt.rate {
				t.Errorf("FrameRate() = %v, want %v", got, tt.rate)
			}
			if got := tt.cfg.TotalFrames(); got != tt.total {
				t.Errorf("TotalFrames() = %v, want %v", got, tt.total)
			}
			if got := tt.cfg.ExpectedFrames(); got != tt.expected {
				t.Errorf("ExpectedFrames() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestUsePipe(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want bool
	}{
		{"default", Config{}, false},
		{"pipe mode", Config{PipeMode: true}, true},
		{"frame cache forced", Config{PipeMode: true, FrameCache: true}, false},
		{"frame cache dir forced", Config{PipeMode: true, FrameCacheDir: "cache"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.UsePipe(); got != tt.want {
				t.Errorf("UsePipe() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestImageType(t *testing.T) {
	for in, want := range map[string]ports.ImageType{"png": ports.ImagePNG, "jpg": ports.ImageJPEG, "JPEG": ports.ImageJPEG, "bmp": ports.ImagePNG} {
		cfg := Config{ScreenshotType: in}
		if got := cfg.ImageType(); got != want {
			t.Errorf("ImageType(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestValidate(t *testing.T) {
	valid := Defaults()
	valid.Normalize()
	if err := valid.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}

	tests := []struct {
		name   string
		modify func(*Config)
		want   string
	}{
		{"source", func(c *Config) { c.Source = "camera" }, "unknown source"},
		{"size", func(c *Config) { c.Width = -1 }, "invalid size"},
		{"fps", func(c *Config) { c.FPS = -5 }, "invalid fps"},
		{"frames", func(c *Config) { c.Frames = -1 }, "invalid frame count"},
		{"duration", func(c *Config) { c.Duration = -1 }, "must not be negative"},
		{"screenshot type", func(c *Config) { c.ScreenshotType = "gif" }, "unsupported screenshot type"},
		{"quality", func(c *Config) { c.ScreenshotQuality = 101 }, "invalid screenshot quality"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.modify(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestLoadFromFile_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "timecut.yaml")
	content := `url: https://example.com/
output: out/clip.mp4
fps: 30
duration: 2
pipe_mode: true
screenshot_type: jpeg
output_options:
  - -c:v
  - libx264
output_stream_options:
  movflags: ""
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if cfg.URL != "https://example.com/" || cfg.Output != "out/clip.mp4" {
		t.Errorf("unexpected url/output: %s %s", cfg.URL, cfg.Output)
	}
	if cfg.FPS != 30 || cfg.Duration != 2 || !cfg.PipeMode {
		t.Errorf("unexpected timing/mode: %+v", cfg)
	}
	if len(cfg.OutputOptions) != 2 || cfg.OutputOptions[1] != "libx264" {
		t.Errorf("unexpected output options: %v", cfg.OutputOptions)
	}
	if cfg.OutputStreamOptions.Movflags == nil || *cfg.OutputStreamOptions.Movflags != "" {
		t.Errorf("expected explicitly disabled movflags, got %v", cfg.OutputStreamOptions.Movflags)
	}
	// Unset values keep their defaults.
	if cfg.PixFmt != "yuv420p" || cfg.Width != 800 {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestLoadFromFile_TOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "timecut.toml")
	content := `url = "page.html"
frames = 120
duration = 2
keep_frames = true
input_options = ["-thread_queue_size", "512"]

[output_stream_options]
format = "matroska"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if cfg.URL != "page.html" || cfg.Frames != 120 || !cfg.KeepFrames {
		t.Errorf("unexpected values: %+v", cfg)
	}
	if cfg.FrameRate() != 60 {
		t.Errorf("expected frame rate 60, got %v", cfg.FrameRate())
	}
	if len(cfg.InputOptions) != 2 {
		t.Errorf("unexpected input options: %v", cfg.InputOptions)
	}
	if cfg.OutputStreamOptions.Format != "matroska" || cfg.OutputStreamOptions.Movflags != nil {
		t.Errorf("unexpected stream options: %+v", cfg.OutputStreamOptions)
	}
}

func TestLoadFromFile_Errors(t *testing.T) {
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.toml")
	os.WriteFile(path, []byte("fps = = 3"), 0644)
	if _, err := LoadFromFile(path); err == nil {
		t.Error("expected parse error")
	}
}
