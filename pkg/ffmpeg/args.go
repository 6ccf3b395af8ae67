package ffmpeg

import (
	"strconv"
	"strings"
)

const (
	// StdinInput is the input token for frames arriving on stdin.
	StdinInput = "pipe:0"
	// StdoutOutput is the output token for video written to stdout.
	StdoutOutput = "pipe:1"

	// DefaultFrameRate applies when neither fps nor frames/duration are set.
	DefaultFrameRate = 60.0
	// DefaultStreamFormat is the container used when streaming to a sink.
	DefaultStreamFormat = "mp4"
	// DefaultMovflags make streamed mp4 output playable without seeking.
	DefaultMovflags = "frag_keyframe+empty_moov+faststart"
)

// Source describes where the encoder reads frames from.
type Source struct {
	// Pattern is an image sequence path such as frames/image-%09d.png.
	// Empty means frames arrive on stdin.
	Pattern string
	// JPEG marks JPEG encoded frames.
	JPEG bool
}

// Piped reports whether frames arrive on stdin.
func (s Source) Piped() bool {
	return s.Pattern == ""
}

// Output describes where the encoder writes the video.
type Output struct {
	// Path is the resolved output file. Ignored when Stream is set.
	Path string
	// Stream sends the video to stdout.
	Stream bool
	// Format is the container passed with -f when streaming.
	Format string
	// Movflags overrides DefaultMovflags when streaming. A pointer to an
	// empty string disables -movflags.
	Movflags *string
}

// Request holds everything needed to build an encoder argument list.
type Request struct {
	InputOptions  []string
	OutputOptions []string

	FPS      float64
	Frames   int
	Duration float64

	PixFmt string

	Source Source
	Output Output
}

// FrameRate returns fps when positive, frames/duration when both are
// positive, and DefaultFrameRate otherwise.
func FrameRate(fps float64, frames int, duration float64) float64 {
	if fps > 0 {
		return fps
	}
	if frames > 0 && duration > 0 {
		return float64(frames) / duration
	}
	return DefaultFrameRate
}

// BuildArgs constructs the ffmpeg argument list for req. The list is
// ordered: input options, frame rate, input, pixel format, output options,
// output target.
func BuildArgs(req Request) []string {
	args := make([]string, 0, len(req.InputOptions)+len(req.OutputOptions)+12)

	// --- Input side ---
	args = append(args, req.InputOptions...)
	if !ContainsOption(req.InputOptions, "-framerate") {
		args = append(args, "-framerate", FormatRate(FrameRate(req.FPS, req.Frames, req.Duration)))
	}

	switch {
	case req.Source.Piped() && req.Source.JPEG:
		// The generic image reader fails on back-to-back JPEGs from a pipe.
		args = append(args, "-f", "image2pipe", "-vcodec", "mjpeg", "-i", "-")
	case req.Source.Piped():
		args = append(args, "-i", StdinInput)
	default:
		args = append(args, "-i", req.Source.Pattern)
	}

	// --- Output side ---
	if !ContainsOption(req.OutputOptions, "-pix_fmt") && req.PixFmt != "" {
		args = append(args, "-pix_fmt", req.PixFmt)
	}
	args = append(args, req.OutputOptions...)

	if req.Output.Stream {
		format := req.Output.Format
		if format == "" {
			format = DefaultStreamFormat
		}
		args = append(args, "-f", format)

		movflags := DefaultMovflags
		if req.Output.Movflags != nil {
			movflags = *req.Output.Movflags
		}
		if movflags != "" {
			args = append(args, "-movflags", movflags)
		}
		return append(args, StdoutOutput)
	}

	return append(args, "-y", req.Output.Path)
}

// ContainsOption reports whether args holds name either as its own entry
// or in name=value form.
func ContainsOption(args []string, name string) bool {
	for _, arg := range args {
		if arg == name || strings.HasPrefix(arg, name+"=") {
			return true
		}
	}
	return false
}

// FormatRate renders a frame rate without trailing zeros (60, 29.97).
func FormatRate(rate float64) string {
	return strconv.FormatFloat(rate, 'f', -1, 64)
}
