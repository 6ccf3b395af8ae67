package mocks

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Environment variables understood by the fake encoder.
const (
	// FakeFFmpegEnv set to "1" makes a test binary act as ffmpeg.
	FakeFFmpegEnv = "TIMECUT_FAKE_FFMPEG"
	// FakeFFmpegModeEnv selects a failure: "fail" exits 1 without output,
	// "nofile" exits 0 without output, "early-exit" exits 1 before reading
	// stdin, "dirty-exit" writes the output and then exits 1.
	FakeFFmpegModeEnv = "TIMECUT_FAKE_FFMPEG_MODE"
	// FakeFFmpegArgsEnv names a file that receives the arguments, one per line.
	FakeFFmpegArgsEnv = "TIMECUT_FAKE_FFMPEG_ARGS"
)

var framePatternVerb = regexp.MustCompile(`%0?\d*d`)

// IsFakeFFmpeg reports whether this process was started as the fake encoder.
func IsFakeFFmpeg() bool {
	return os.Getenv(FakeFFmpegEnv) == "1"
}

// RunFakeFFmpeg emulates enough of ffmpeg for pipeline tests and returns
// the exit code. Typical use from a package's TestMain:
//
//	if mocks.IsFakeFFmpeg() {
//		os.Exit(mocks.RunFakeFFmpeg(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
//	}
func RunFakeFFmpeg(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if path := os.Getenv(FakeFFmpegArgsEnv); path != "" {
		os.WriteFile(path, []byte(strings.Join(args, "\n")), 0644)
	}

	mode := os.Getenv(FakeFFmpegModeEnv)
	if mode == "early-exit" {
		fmt.Fprintln(stderr, "Invalid argument")
		return 1
	}
	if len(args) == 0 {
		fmt.Fprintln(stderr, "no arguments")
		return 1
	}

	input := ""
	for i := 0; i < len(args)-1; i++ {
		if args[i] == "-i" {
			input = args[i+1]
		}
	}

	frames := 0
	switch input {
	case "pipe:0", "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			fmt.Fprintf(stderr, "read stdin: %v\n", err)
			return 1
		}
		frames = bytes.Count(data, PNGSignature) + bytes.Count(data, []byte{0xff, 0xd8, 0xff})
	default:
		matches, _ := filepath.Glob(framePatternVerb.ReplaceAllString(input, "*"))
		frames = len(matches)
	}

	for i := 1; i <= frames; i++ {
		fmt.Fprintf(stderr, "frame=%5d fps=0.0 q=-1.0 size=N/A time=N/A bitrate=N/A speed=N/A\r", i)
	}
	fmt.Fprintln(stderr)

	switch mode {
	case "fail":
		fmt.Fprintln(stderr, "Conversion failed!")
		return 1
	case "nofile":
		return 0
	}

	video := []byte(fmt.Sprintf("fake-video frames=%d", frames))
	output := args[len(args)-1]
	if output == "pipe:1" {
		if _, err := stdout.Write(video); err != nil {
			return 1
		}
		return 0
	}
	if err := os.WriteFile(output, video, 0644); err != nil {
		fmt.Fprintf(stderr, "write output: %v\n", err)
		return 1
	}
	if mode == "dirty-exit" {
		return 1
	}
	return 0
}
