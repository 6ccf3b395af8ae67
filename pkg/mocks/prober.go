package mocks

import (
	"sync"

	"github.com/user/timecut/pkg/ports"
)

// VideoProber is a mock implementation of ports.VideoProber.
type VideoProber struct {
	ProbeFunc func(path string) (*ports.VideoInfo, error)

	mu    sync.Mutex
	Paths []string
}

func (m *VideoProber) Probe(path string) (*ports.VideoInfo, error) {
	m.mu.Lock()
	m.Paths = append(m.Paths, path)
	m.mu.Unlock()

	if m.ProbeFunc != nil {
		return m.ProbeFunc(path)
	}
	return &ports.VideoInfo{Codec: "h264"}, nil
}

var _ ports.VideoProber = (*VideoProber)(nil)
