// Package main provides the CLI entry point for timecut.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/ideamans/go-l10n"

	"github.com/user/timecut/pkg/adapters/logger"
	"github.com/user/timecut/pkg/config"
	"github.com/user/timecut/pkg/ports"
	"github.com/user/timecut/pkg/summarizer"
	"github.com/user/timecut/pkg/timecut"
)

// stdoutOutput as --output streams the video to standard output.
const stdoutOutput = "-"

// CLI defines the command-line interface with subcommands.
type CLI struct {
	Render  RenderCmd  `cmd:"" default:"withargs" help:"Render a web page animation to video."`
	Version VersionCmd `cmd:"" help:"Show version information."`
}

// RenderCmd defines the render subcommand. Pointer fields override values
// from the config file only when given.
type RenderCmd struct {
	URL    string  `arg:"" optional:"" help:"Page URL or HTML file to capture (default: index.html)."`
	Config string  `short:"C" type:"existingfile" help:"YAML or TOML config file."`
	Output *string `short:"o" help:"Output video path, or - for standard output (default: video.mp4)."`
	Source *string `help:"Frame source (browser or pattern)."`

	// Viewport
	Width             *int     `short:"W" help:"Viewport width in CSS pixels (default: 800)."`
	Height            *int     `short:"H" help:"Viewport height in CSS pixels (default: 600)."`
	DeviceScaleFactor *float64 `help:"Device scale factor (default: 1)."`
	NoRoundToEven     bool     `help:"Keep odd frame dimensions instead of rounding up to even."`

	// Timing
	FPS        *float64 `short:"R" name:"fps" help:"Frames per second (default: 60)."`
	Frames     *int     `short:"F" help:"Number of frames to capture."`
	Duration   *float64 `short:"d" help:"Seconds of animation to capture (default: 5)."`
	Start      *float64 `short:"s" help:"Virtual seconds to skip before the first frame."`
	StartDelay *float64 `help:"Real seconds to wait after the page loads."`

	// Capture
	Selector              *string `short:"S" help:"CSS selector of the element to capture."`
	TransparentBackground bool    `help:"Clear the default page background."`
	ScreenshotType        *string `short:"T" help:"Frame image type (png or jpeg)."`
	ScreenshotQuality     *int    `help:"JPEG quality (1-100)."`

	// Encoding
	FFmpegPath    *string `name:"ffmpeg" help:"Path to ffmpeg (falls back to FFMPEG_PATH env, then PATH)."`
	InputOptions  *string `help:"Extra ffmpeg input options, space separated."`
	OutputOptions *string `help:"Extra ffmpeg output options, space separated."`
	PixFmt        *string `help:"Output pixel format (default: yuv420p)."`
	StreamFormat  *string `help:"Container format when writing to standard output (default: mp4)."`
	Movflags      *string `help:"movflags when writing to standard output; empty disables them."`

	// Frame delivery
	PipeMode      bool    `help:"Stream frames to ffmpeg instead of writing them to disk."`
	FrameCache    bool    `help:"Write frames to disk even in pipe mode."`
	FrameCacheDir *string `help:"Directory holding frame directories; implies --frame-cache."`
	FrameDir      *string `help:"Frame directory name or path."`
	KeepFrames    bool    `help:"Keep captured frames after the video is compiled."`

	// Browser
	Headful           bool    `help:"Show the browser window."`
	ChromePath        *string `help:"Path to Chrome executable (falls back to CHROME_PATH env, then system default)."`
	UserAgent         *string `help:"Browser user agent."`
	IgnoreHTTPSErrors bool    `help:"Ignore HTTPS certificate errors."`
	ProxyServer       *string `help:"HTTP proxy server (e.g., http://proxy:8080)."`
	AutoInstall       bool    `help:"Download Chromium when no browser is found."`
	ShowFrames        bool    `help:"Log every captured frame."`

	// Summary
	NoSummary   bool   `help:"Do not print the run summary."`
	SummaryFile string `help:"Write the run summary to a Markdown file."`

	// Logging options
	LogLevel string `short:"l" default:"info" enum:"debug,info,warn,error" help:"Log level (debug, info, warn, error)."`
	Quiet    bool   `short:"Q" help:"Suppress all log output."`
}

// VersionCmd shows version information.
type VersionCmd struct{}

var version = "dev"

func main() {
	cli := CLI{}

	ctx := kong.Parse(&cli,
		kong.Name("timecut"),
		kong.Description(l10n.T("Render web page animations to video at a fixed frame rate.")),
		kong.UsageOnError(),
	)

	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}

// Run executes the render command.
func (cmd *RenderCmd) Run() error {
	cfg, err := cmd.buildConfig()
	if err != nil {
		return err
	}

	// Video on stdout leaves stderr for everything else.
	stdout := io.Writer(os.Stdout)
	if cfg.OutputStream != nil {
		stdout = os.Stderr
	}

	var log ports.Logger
	switch {
	case cmd.Quiet:
		log = logger.NewNoop()
	case cfg.OutputStream != nil:
		log = logger.NewConsoleTo(os.Stderr, ports.ParseLogLevel(cmd.LogLevel))
	default:
		log = logger.NewConsole(ports.ParseLogLevel(cmd.LogLevel))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			log.Warn("Interrupted, shutting down...")
			cancel()
		case <-ctx.Done():
		}
	}()

	result, err := timecut.Run(ctx, cfg, timecut.WithLogger(log))
	if err != nil {
		return err
	}

	summary := summarizer.FromRun(cfg, result)
	if !cmd.NoSummary && !cmd.Quiet {
		fmt.Fprintln(stdout, summarizer.NewTableFormatter().Format(summary))
	}
	if cmd.SummaryFile != "" {
		w := summarizer.NewWriter(summarizer.NewMarkdownFormatter())
		if err := w.Write(cmd.SummaryFile, summary); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
		log.Info("Summary written to %s", cmd.SummaryFile)
	}
	return nil
}

// buildConfig loads the config file, if any, and applies CLI overrides.
func (cmd *RenderCmd) buildConfig() (config.Config, error) {
	cfg := config.Defaults()
	if cmd.Config != "" {
		loaded, err := config.LoadFromFile(cmd.Config)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	if cmd.URL != "" {
		cfg.URL = cmd.URL
	}
	setString(&cfg.Output, cmd.Output)
	setString(&cfg.Source, cmd.Source)

	setInt(&cfg.Width, cmd.Width)
	setInt(&cfg.Height, cmd.Height)
	setFloat(&cfg.DeviceScaleFactor, cmd.DeviceScaleFactor)
	if cmd.NoRoundToEven {
		off := false
		cfg.RoundToEvenWidth = &off
		cfg.RoundToEvenHeight = &off
	}

	setFloat(&cfg.FPS, cmd.FPS)
	setInt(&cfg.Frames, cmd.Frames)
	setFloat(&cfg.Duration, cmd.Duration)
	setFloat(&cfg.Start, cmd.Start)
	setFloat(&cfg.StartDelay, cmd.StartDelay)

	setString(&cfg.Selector, cmd.Selector)
	if cmd.TransparentBackground {
		cfg.TransparentBackground = true
	}
	setString(&cfg.ScreenshotType, cmd.ScreenshotType)
	setInt(&cfg.ScreenshotQuality, cmd.ScreenshotQuality)

	setString(&cfg.FFmpegPath, cmd.FFmpegPath)
	if cmd.InputOptions != nil {
		cfg.InputOptions = strings.Fields(*cmd.InputOptions)
	}
	if cmd.OutputOptions != nil {
		cfg.OutputOptions = strings.Fields(*cmd.OutputOptions)
	}
	setString(&cfg.PixFmt, cmd.PixFmt)
	setString(&cfg.OutputStreamOptions.Format, cmd.StreamFormat)
	if cmd.Movflags != nil {
		cfg.OutputStreamOptions.Movflags = cmd.Movflags
	}

	if cmd.PipeMode {
		cfg.PipeMode = true
	}
	if cmd.FrameCache {
		cfg.FrameCache = true
	}
	setString(&cfg.FrameCacheDir, cmd.FrameCacheDir)
	setString(&cfg.FrameDir, cmd.FrameDir)
	if cmd.KeepFrames {
		cfg.KeepFrames = true
	}

	if cmd.Headful {
		cfg.Headful = true
	}
	setString(&cfg.ChromePath, cmd.ChromePath)
	setString(&cfg.UserAgent, cmd.UserAgent)
	if cmd.IgnoreHTTPSErrors {
		cfg.IgnoreHTTPSErrors = true
	}
	setString(&cfg.ProxyServer, cmd.ProxyServer)
	if cmd.AutoInstall {
		cfg.AutoInstall = true
	}
	if cmd.ShowFrames {
		quiet := false
		cfg.Quiet = &quiet
	}

	if cfg.Output == stdoutOutput {
		cfg.Output = ""
		cfg.OutputStream = os.Stdout
	}

	return cfg, nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

// Run executes the version command.
func (cmd *VersionCmd) Run() error {
	fmt.Println(l10n.F("timecut (Go) version %s", version))
	return nil
}
