package timecut

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/user/timecut/pkg/adapters/chromecapture"
	"github.com/user/timecut/pkg/adapters/patterncapture"
	"github.com/user/timecut/pkg/config"
	"github.com/user/timecut/pkg/ffmpeg"
	"github.com/user/timecut/pkg/mocks"
	"github.com/user/timecut/pkg/orchestrator"
	"github.com/user/timecut/pkg/ports"
)

func TestMain(m *testing.M) {
	if mocks.IsFakeFFmpeg() {
		os.Exit(mocks.RunFakeFFmpeg(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
	}
	os.Exit(m.Run())
}

func useFakeFFmpeg(t *testing.T) {
	t.Helper()
	exe, err := os.Executable()
	if err != nil {
		t.Fatal(err)
	}
	t.Setenv(ffmpeg.PathEnv, exe)
	t.Setenv(mocks.FakeFFmpegEnv, "1")
	t.Setenv(mocks.FakeFFmpegModeEnv, "")
	t.Setenv(mocks.FakeFFmpegArgsEnv, "")
}

func patternConfig(dir string) *ConfigBuilder {
	return NewConfigBuilder().
		WithSource(config.SourcePattern).
		WithViewport(64, 48).
		WithFPS(10).
		WithFrames(4).
		WithOutput(filepath.Join(dir, "out.mp4"))
}

func TestRender_Pattern(t *testing.T) {
	useFakeFFmpeg(t)
	dir := t.TempDir()

	path, err := Render(context.Background(), patternConfig(dir).Build(), WithProber(nil))
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	if path != filepath.Join(dir, "out.mp4") {
		t.Errorf("unexpected path %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "fake-video frames=4" {
		t.Errorf("unexpected video %q", data)
	}
}

func TestRender_PatternPipeToStream(t *testing.T) {
	useFakeFFmpeg(t)
	var stream bytes.Buffer

	cfg := patternConfig(t.TempDir()).WithPipeMode(true).WithOutputStream(&stream).Build()
	path, err := Render(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	if path != "" {
		t.Errorf("streamed render should return empty path, got %s", path)
	}
	if stream.String() != "fake-video frames=4" {
		t.Errorf("unexpected stream %q", stream.String())
	}
}

func TestRun_WithCollaborators(t *testing.T) {
	useFakeFFmpeg(t)
	dir := t.TempDir()
	capturer := &mocks.FrameCapturer{}
	prober := &mocks.VideoProber{}
	log := mocks.NewLogger()

	result, err := Run(context.Background(), patternConfig(dir).WithFrames(2).Build(),
		WithCapturer(capturer), WithProber(prober), WithLogger(log))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(capturer.Calls) != 1 {
		t.Errorf("expected injected capturer to be used")
	}
	if result.Mode != orchestrator.ModeBuffered || result.Frames != 2 {
		t.Errorf("unexpected result %+v", result)
	}
	if result.Video == nil || len(prober.Paths) != 1 {
		t.Error("expected output to be inspected")
	}
	if !log.Contains(ports.LevelInfo, "Video saved to") {
		t.Errorf("expected completion log, got %+v", log.Entries())
	}
}

func TestNewCapturer(t *testing.T) {
	fs := mocks.NewFileSystem()
	log := mocks.NewLogger()

	c, err := NewCapturer("", fs, log)
	if _, ok := c.(*chromecapture.Capturer); err != nil || !ok {
		t.Errorf("expected browser capturer by default, got %T, %v", c, err)
	}
	c, err = NewCapturer(config.SourcePattern, fs, log)
	if _, ok := c.(*patterncapture.Capturer); err != nil || !ok {
		t.Errorf("expected pattern capturer, got %T, %v", c, err)
	}
	if _, err := NewCapturer("webcam", fs, log); err == nil {
		t.Error("expected error for unknown source")
	}
}

func TestConfigBuilder(t *testing.T) {
	cfg := NewConfigBuilder().
		WithURL("https://example.com").
		WithDuration(2).
		WithFPS(30).
		WithStart(1).
		WithSelector("#stage").
		WithScreenshotType("jpg").
		WithKeepFrames(true).
		WithInputOptions("-thread_queue_size", "512").
		WithOutputOptions("-c:v", "libx264").
		Build()

	if cfg.URL != "https://example.com" || cfg.Selector != "#stage" {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.TotalFrames() != 60 {
		t.Errorf("expected 60 frames, got %d", cfg.TotalFrames())
	}
	if cfg.ImageType() != ports.ImageJPEG || !cfg.KeepFrames {
		t.Errorf("unexpected capture settings %+v", cfg)
	}
	if len(cfg.InputOptions) != 2 || len(cfg.OutputOptions) != 2 {
		t.Errorf("unexpected options %v %v", cfg.InputOptions, cfg.OutputOptions)
	}
	if cfg.Width != 800 || cfg.Height != 600 || cfg.PixFmt != "yuv420p" {
		t.Errorf("expected defaults to survive, got %+v", cfg)
	}
}

func TestFromConfig(t *testing.T) {
	base := config.Defaults()
	base.Width = 320

	cfg := FromConfig(base).WithHeadful(true).Build()
	if cfg.Width != 320 || !cfg.Headful {
		t.Errorf("unexpected config %+v", cfg)
	}
}
