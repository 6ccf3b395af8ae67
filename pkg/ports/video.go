package ports

// VideoInfo describes an encoded video file.
type VideoInfo struct {
	Codec      string
	Width      int
	Height     int
	Samples    int
	DurationMs int64
	Fragmented bool
}

// VideoProber inspects encoded video files.
type VideoProber interface {
	// Probe reads the container headers of the file at path.
	Probe(path string) (*VideoInfo, error)
}
