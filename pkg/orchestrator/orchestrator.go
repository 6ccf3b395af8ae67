// Package orchestrator runs a capture and compiles the frames into a video.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"github.com/user/timecut/pkg/config"
	"github.com/user/timecut/pkg/ffmpeg"
	"github.com/user/timecut/pkg/ports"
)

// ErrFrameDirLocked is returned when another run owns the frame directory.
var ErrFrameDirLocked = errors.New("frame directory is in use by another run")

// Mode is the frame-delivery mode of a run.
type Mode string

const (
	// ModeBuffered writes frames to a directory and encodes them afterwards.
	ModeBuffered Mode = "buffered"
	// ModePipe streams frames to the encoder's stdin while capturing.
	ModePipe Mode = "pipe"
)

// probeExtensions are the outputs mp4 inspection understands.
var probeExtensions = map[string]bool{".mp4": true, ".mov": true, ".m4v": true}

// Result describes a finished run.
type Result struct {
	Mode Mode
	// OutputPath is the absolute path of the video, empty when streamed.
	OutputPath string
	// FrameDir is the frame directory of a buffered run.
	FrameDir   string
	FramesKept bool

	Frames  int
	FPS     float64
	Elapsed time.Duration

	FileSize int64
	Video    *ports.VideoInfo
}

// Orchestrator coordinates the frame capturer and the ffmpeg encoder.
type Orchestrator struct {
	capturer ports.FrameCapturer
	fs       ports.FileSystem
	prober   ports.VideoProber
	logger   ports.Logger
	now      func() time.Time
}

// New creates a new Orchestrator. prober may be nil to skip output inspection.
func New(capturer ports.FrameCapturer, fs ports.FileSystem, prober ports.VideoProber, logger ports.Logger) *Orchestrator {
	return &Orchestrator{
		capturer: capturer,
		fs:       fs,
		prober:   prober,
		logger:   logger,
		now:      time.Now,
	}
}

// run holds the state of a single invocation.
type run struct {
	cfg     config.Config
	mode    Mode
	output  string
	stream  bool
	encoder string

	frameDir string
	pattern  string
	lock     *flock.Flock

	proc *ffmpeg.Process
}

// Run captures the configured frames and compiles them with ffmpeg. It
// returns once the encoder has exited and the output has been verified.
func (o *Orchestrator) Run(ctx context.Context, cfg config.Config) (Result, error) {
	started := o.now()

	r, err := o.prepare(cfg)
	if err != nil {
		return Result{}, err
	}
	defer o.release(r)

	o.logger.Info("Rendering %d frames at %s fps (%s mode)", r.cfg.TotalFrames(), ffmpeg.FormatRate(r.cfg.FrameRate()), r.mode)

	// Pipe mode: the encoder must be running before the first frame.
	var process ports.FrameProcessor
	if r.mode == ModePipe {
		if err := o.spawn(r); err != nil {
			return Result{}, err
		}
		process = r.proc.Write
	}

	o.logger.Info("Capturing frames from %s", r.cfg.URL)
	if err := o.capturer.Capture(ctx, captureOptions(r.cfg, r.pattern), process); err != nil {
		if r.proc != nil {
			r.proc.Abort()
		}
		o.logger.Error("Failed to capture frames: %s", err)
		return Result{}, fmt.Errorf("capture: %w", err)
	}

	if r.mode == ModeBuffered {
		if err := o.spawn(r); err != nil {
			return Result{}, err
		}
	} else {
		// A close error is stored on the process and returned by Wait.
		r.proc.CloseInput()
	}

	o.logger.Info("Compiling video")
	videoPath, err := r.proc.Wait()
	if err != nil {
		o.logger.Error("Failed to compile video: %s", err)
		return Result{}, err
	}
	o.logger.Info("FFmpeg compilation process has been completed")

	result := Result{
		Mode:       r.mode,
		OutputPath: videoPath,
		FrameDir:   r.frameDir,
		Frames:     r.cfg.TotalFrames(),
		FPS:        r.cfg.FrameRate(),
	}

	if r.mode == ModeBuffered {
		if r.cfg.KeepFrames {
			result.FramesKept = true
			o.logger.Info("Keeping frames in %s", r.frameDir)
		} else {
			if err := o.fs.RemoveDir(r.frameDir); err != nil {
				return Result{}, fmt.Errorf("remove frame directory: %w", err)
			}
			o.logger.Debug("Removed frame directory %s", r.frameDir)
		}
	}

	if videoPath != "" {
		if info, err := os.Stat(videoPath); err == nil {
			result.FileSize = info.Size()
		}
		result.Video = o.inspect(videoPath)
		o.logger.Info("Video saved to %s", videoPath)
	}

	result.Elapsed = o.now().Sub(started)
	return result, nil
}

// prepare applies defaults, selects the mode and claims the frame directory.
func (o *Orchestrator) prepare(cfg config.Config) (*run, error) {
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	output, err := filepath.Abs(cfg.Output)
	if err != nil {
		return nil, fmt.Errorf("resolve output: %w", err)
	}

	r := &run{
		cfg:     cfg,
		mode:    ModeBuffered,
		output:  output,
		stream:  cfg.OutputStream != nil,
		encoder: o.findEncoder(cfg.FFmpegPath),
	}
	if cfg.UsePipe() {
		r.mode = ModePipe
		return r, nil
	}

	r.frameDir = FrameDir(cfg, output, o.now())
	r.pattern = filepath.Join(r.frameDir, "image-%09d."+strings.ToLower(cfg.ScreenshotType))

	if err := o.fs.EnsureDir(r.pattern); err != nil {
		return nil, fmt.Errorf("create frame directory: %w", err)
	}

	r.lock = flock.New(r.frameDir + ".lock")
	ok, err := r.lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock frame directory: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrFrameDirLocked, r.frameDir)
	}

	o.logger.Debug("Frame directory: %s", r.frameDir)
	return r, nil
}

func (o *Orchestrator) release(r *run) {
	if r.lock == nil {
		return
	}
	if err := r.lock.Unlock(); err != nil {
		o.logger.Warn("Failed to release frame directory lock: %s", err)
		return
	}
	o.fs.Remove(r.lock.Path())
}

// findEncoder resolves the ffmpeg executable. When lookup fails the
// configured name is still used so the failure surfaces as a spawn error.
func (o *Orchestrator) findEncoder(explicit string) string {
	path, err := ffmpeg.Find(explicit)
	if err == nil {
		return path
	}
	if explicit == "" {
		explicit = "ffmpeg"
	}
	o.logger.Warn("%s, trying %s", err, explicit)
	return explicit
}

func (o *Orchestrator) spawn(r *run) error {
	if !r.stream {
		if err := o.fs.EnsureDir(r.output); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	req := ffmpeg.Request{
		InputOptions:  r.cfg.InputOptions,
		OutputOptions: r.cfg.OutputOptions,
		FPS:           r.cfg.FPS,
		Frames:        r.cfg.Frames,
		Duration:      r.cfg.Duration,
		PixFmt:        r.cfg.PixFmt,
		Source: ffmpeg.Source{
			Pattern: r.pattern,
			JPEG:    r.cfg.ImageType().IsJPEG(),
		},
		Output: ffmpeg.Output{
			Path:     r.output,
			Stream:   r.stream,
			Format:   r.cfg.OutputStreamOptions.Format,
			Movflags: r.cfg.OutputStreamOptions.Movflags,
		},
	}

	opts := ffmpeg.SpawnOptions{
		Path:        r.encoder,
		Args:        ffmpeg.BuildArgs(req),
		TotalFrames: r.cfg.ExpectedFrames(),
		Logger:      o.logger.WithComponent("ffmpeg"),
	}
	if r.stream {
		opts.Stream = r.cfg.OutputStream
	} else {
		opts.OutputPath = r.output
	}

	proc, err := ffmpeg.Spawn(opts)
	if err != nil {
		o.logger.Error("Failed to start ffmpeg: %s", err)
		return err
	}
	r.proc = proc
	return nil
}

// inspect reads codec details of container formats the prober knows.
// Failures only produce a warning.
func (o *Orchestrator) inspect(path string) *ports.VideoInfo {
	if o.prober == nil || !probeExtensions[strings.ToLower(filepath.Ext(path))] {
		return nil
	}
	info, err := o.prober.Probe(path)
	if err != nil {
		o.logger.Warn("Could not inspect %s: %s", path, err)
		return nil
	}
	o.logger.Debug("Output video: %s %dx%d, %d samples, %d ms", info.Codec, info.Width, info.Height, info.Samples, info.DurationMs)
	return info
}

// FrameDir resolves the frame directory of a buffered run. An explicit
// temp or frame directory wins over a generated timecut-temp-<ms> name
// (timecut-frames-<ms> when frames are kept). The name is placed under the
// frame cache directory if one is set and resolved against the directory
// of the output file.
func FrameDir(cfg config.Config, output string, now time.Time) string {
	dir := cfg.TempDir
	if dir == "" {
		dir = cfg.FrameDir
	}
	if dir == "" {
		kind := "temp-"
		if cfg.KeepFrames {
			kind = "frames-"
		}
		dir = "timecut-" + kind + strconv.FormatInt(now.UnixMilli(), 10)
	}
	if cfg.FrameCacheDir != "" {
		dir = filepath.Join(cfg.FrameCacheDir, dir)
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(filepath.Dir(output), dir)
	}
	return filepath.Clean(dir)
}

func captureOptions(cfg config.Config, pattern string) ports.CaptureOptions {
	return ports.CaptureOptions{
		URL:                   cfg.URL,
		Width:                 cfg.Width,
		Height:                cfg.Height,
		DeviceScaleFactor:     cfg.DeviceScaleFactor,
		RoundToEvenWidth:      config.Bool(cfg.RoundToEvenWidth, true),
		RoundToEvenHeight:     config.Bool(cfg.RoundToEvenHeight, true),
		FPS:                   cfg.FrameRate(),
		Frames:                cfg.TotalFrames(),
		Start:                 cfg.Start,
		StartDelay:            cfg.StartDelay,
		Selector:              cfg.Selector,
		TransparentBackground: cfg.TransparentBackground,
		ScreenshotType:        cfg.ImageType(),
		ScreenshotQuality:     cfg.ScreenshotQuality,
		OutputPattern:         pattern,
		Quiet:                 config.Bool(cfg.Quiet, true),
		Browser: ports.BrowserOptions{
			Headless:          !cfg.Headful,
			ChromePath:        cfg.ChromePath,
			UserAgent:         cfg.UserAgent,
			IgnoreHTTPSErrors: cfg.IgnoreHTTPSErrors,
			ProxyServer:       cfg.ProxyServer,
			AutoInstall:       cfg.AutoInstall,
		},
	}
}
