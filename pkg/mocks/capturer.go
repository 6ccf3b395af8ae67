// Package mocks provides mock implementations for testing.
package mocks

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/user/timecut/pkg/ports"
)

// PNGSignature starts every fake frame so fake encoders can count them.
var PNGSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// FakeFrame returns a small buffer that looks like a PNG file.
func FakeFrame(index int) []byte {
	return append(append([]byte{}, PNGSignature...), []byte(fmt.Sprintf("frame-%d", index))...)
}

// FrameCapturer is a mock implementation of ports.FrameCapturer. Without
// CaptureFunc it emits opts.Frames fake frames, writing them to
// opts.OutputPattern or handing them to the processor.
type FrameCapturer struct {
	CaptureFunc func(ctx context.Context, opts ports.CaptureOptions, process ports.FrameProcessor) error

	mu    sync.Mutex
	Calls []CaptureCall
}

// CaptureCall records a call to Capture.
type CaptureCall struct {
	Options ports.CaptureOptions
	Piped   bool
}

func (m *FrameCapturer) Capture(ctx context.Context, opts ports.CaptureOptions, process ports.FrameProcessor) error {
	m.mu.Lock()
	m.Calls = append(m.Calls, CaptureCall{Options: opts, Piped: process != nil})
	m.mu.Unlock()

	if m.CaptureFunc != nil {
		return m.CaptureFunc(ctx, opts, process)
	}

	for i := 1; i <= opts.Frames; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		frame := FakeFrame(i)
		if process != nil {
			if err := process(frame); err != nil {
				return err
			}
			continue
		}
		if err := os.WriteFile(fmt.Sprintf(opts.OutputPattern, i), frame, 0644); err != nil {
			return err
		}
	}
	return nil
}

var _ ports.FrameCapturer = (*FrameCapturer)(nil)
