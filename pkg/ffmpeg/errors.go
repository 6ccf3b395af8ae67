package ffmpeg

import (
	"errors"
	"fmt"
)

var (
	// ErrFFmpegNotFound is returned when no ffmpeg executable can be located.
	ErrFFmpegNotFound = errors.New("ffmpeg: executable not found")

	// ErrFileNotCreated is returned when the encoder exited but the expected
	// output file is missing.
	ErrFileNotCreated = errors.New("ffmpeg: file not created")

	// ErrStdinClosed is returned when a frame is written after the input
	// stream was closed.
	ErrStdinClosed = errors.New("ffmpeg: stdin already closed")

	// ErrAlreadyWaited is returned when Wait is called more than once.
	ErrAlreadyWaited = errors.New("ffmpeg: process already awaited")
)

// SpawnError reports a failure to launch the encoder process.
type SpawnError struct {
	Path string
	Err  error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("ffmpeg: spawn %s: %v", e.Path, e.Err)
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}
