// Package framesink delivers captured frames to a numbered image sequence
// on disk or to a frame processor.
package framesink

import (
	"errors"
	"fmt"

	"github.com/user/timecut/pkg/ports"
)

// ErrNoTarget is returned by New when neither a pattern nor a processor is given.
var ErrNoTarget = errors.New("framesink: no output pattern or frame processor")

// Sink hands each frame to its destination in capture order.
type Sink struct {
	pattern string
	process ports.FrameProcessor
	fs      ports.FileSystem
	count   int
}

// New creates a Sink. A non-nil process takes precedence over pattern.
func New(pattern string, process ports.FrameProcessor, fs ports.FileSystem) (*Sink, error) {
	if process == nil && pattern == "" {
		return nil, ErrNoTarget
	}
	return &Sink{
		pattern: pattern,
		process: process,
		fs:      fs,
	}, nil
}

// Put delivers the next frame. Files are numbered from 1.
func (s *Sink) Put(frame []byte) error {
	index := s.count + 1
	if s.process != nil {
		if err := s.process(frame); err != nil {
			return fmt.Errorf("process frame %d: %w", index, err)
		}
	} else {
		path := fmt.Sprintf(s.pattern, index)
		if err := s.fs.WriteFile(path, frame); err != nil {
			return fmt.Errorf("save frame %d: %w", index, err)
		}
	}
	s.count = index
	return nil
}

// Count returns the number of frames delivered so far.
func (s *Sink) Count() int {
	return s.count
}
