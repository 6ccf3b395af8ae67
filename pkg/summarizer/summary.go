// Package summarizer provides summary generation for render results.
package summarizer

import (
	"time"

	"github.com/user/timecut/pkg/config"
	"github.com/user/timecut/pkg/orchestrator"
	"github.com/user/timecut/pkg/ports"
)

// Summary contains the data reported after a render run.
type Summary struct {
	// Metadata
	GeneratedAt time.Time

	// Input
	Source string
	URL    string

	// Run
	Mode    string
	Frames  int
	FPS     float64
	Elapsed time.Duration

	// Output; Path is empty when the video was streamed.
	Output     string
	FrameDir   string
	FramesKept bool
	FileSize   int64

	// Video is set when the output could be inspected.
	Video *ports.VideoInfo
}

// NewSummary creates a new Summary with the current timestamp.
func NewSummary() *Summary {
	return &Summary{
		GeneratedAt: time.Now(),
	}
}

// Builder provides a fluent interface for building a Summary.
type Builder struct {
	summary *Summary
}

// NewBuilder creates a new Builder.
func NewBuilder() *Builder {
	return &Builder{
		summary: NewSummary(),
	}
}

// WithInput sets the frame source and page.
func (b *Builder) WithInput(source, url string) *Builder {
	b.summary.Source = source
	b.summary.URL = url
	return b
}

// WithResult copies the details of a finished run.
func (b *Builder) WithResult(r orchestrator.Result) *Builder {
	b.summary.Mode = string(r.Mode)
	b.summary.Frames = r.Frames
	b.summary.FPS = r.FPS
	b.summary.Elapsed = r.Elapsed
	b.summary.Output = r.OutputPath
	b.summary.FrameDir = r.FrameDir
	b.summary.FramesKept = r.FramesKept
	b.summary.FileSize = r.FileSize
	b.summary.Video = r.Video
	return b
}

// Build returns the constructed Summary.
func (b *Builder) Build() *Summary {
	return b.summary
}

// FromRun builds a Summary for cfg and its result.
func FromRun(cfg config.Config, r orchestrator.Result) *Summary {
	return NewBuilder().WithInput(cfg.Source, cfg.URL).WithResult(r).Build()
}
