// Package mp4probe inspects the video track of ISO BMFF files (mp4, mov, m4v).
package mp4probe

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Eyevinn/mp4ff/mp4"

	"github.com/user/timecut/pkg/ports"
)

// ErrNoVideoTrack is returned when the file has no video track.
var ErrNoVideoTrack = errors.New("no video track found")

// Prober implements ports.VideoProber using mp4ff.
type Prober struct{}

// New creates a new Prober.
func New() *Prober {
	return &Prober{}
}

// Probe reads the video track summary of the file at path.
func (p *Prober) Probe(path string) (*ports.VideoInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	return ProbeReader(f)
}

// ProbeReader reads the video track summary from r.
func ProbeReader(r io.ReadSeeker) (*ports.VideoInfo, error) {
	mp4File, err := mp4.DecodeFile(r)
	if err != nil {
		return nil, fmt.Errorf("decode mp4: %w", err)
	}

	if mp4File.IsFragmented() {
		return probeFragmented(mp4File)
	}
	return probeProgressive(mp4File)
}

func probeProgressive(mp4File *mp4.File) (*ports.VideoInfo, error) {
	if mp4File.Moov == nil {
		return nil, fmt.Errorf("no moov box found")
	}
	trak := videoTrack(mp4File.Moov)
	if trak == nil {
		return nil, ErrNoVideoTrack
	}

	info := trackInfo(trak)
	if stbl := trak.Mdia.Minf.Stbl; stbl.Stsz != nil {
		info.Samples = int(stbl.Stsz.SampleNumber)
	}
	if mdhd := trak.Mdia.Mdhd; mdhd != nil && mdhd.Timescale > 0 {
		info.DurationMs = int64(mdhd.Duration * 1000 / uint64(mdhd.Timescale))
	}
	return info, nil
}

func probeFragmented(mp4File *mp4.File) (*ports.VideoInfo, error) {
	if mp4File.Init == nil || mp4File.Init.Moov == nil {
		return nil, fmt.Errorf("no init segment found")
	}
	moov := mp4File.Init.Moov
	trak := videoTrack(moov)
	if trak == nil {
		return nil, ErrNoVideoTrack
	}

	info := trackInfo(trak)
	info.Fragmented = true

	trackID := trak.Tkhd.TrackID
	var trex *mp4.TrexBox
	if moov.Mvex != nil {
		for _, t := range moov.Mvex.Trexs {
			if t.TrackID == trackID {
				trex = t
				break
			}
		}
	}

	var timescale uint64 = 1000
	if mdhd := trak.Mdia.Mdhd; mdhd != nil && mdhd.Timescale > 0 {
		timescale = uint64(mdhd.Timescale)
	}

	var total uint64
	for _, seg := range mp4File.Segments {
		for _, frag := range seg.Fragments {
			if !hasTrack(frag, trackID) {
				continue
			}
			samples, err := frag.GetFullSamples(trex)
			if err != nil {
				return nil, fmt.Errorf("get samples: %w", err)
			}
			info.Samples += len(samples)
			for _, s := range samples {
				total += uint64(s.Dur)
			}
		}
	}
	info.DurationMs = int64(total * 1000 / timescale)

	return info, nil
}

func hasTrack(frag *mp4.Fragment, trackID uint32) bool {
	if frag.Moof == nil {
		return false
	}
	for _, traf := range frag.Moof.Trafs {
		if traf.Tfhd != nil && traf.Tfhd.TrackID == trackID {
			return true
		}
	}
	return false
}

func videoTrack(moov *mp4.MoovBox) *mp4.TrakBox {
	for _, trak := range moov.Traks {
		if trak.Mdia == nil || trak.Mdia.Hdlr == nil || trak.Mdia.Hdlr.HandlerType != "vide" {
			continue
		}
		if trak.Mdia.Minf == nil || trak.Mdia.Minf.Stbl == nil || trak.Mdia.Minf.Stbl.Stsd == nil {
			continue
		}
		return trak
	}
	return nil
}

func trackInfo(trak *mp4.TrakBox) *ports.VideoInfo {
	info := &ports.VideoInfo{Codec: "unknown"}
	children := trak.Mdia.Minf.Stbl.Stsd.Children
	if len(children) == 0 {
		return info
	}
	info.Codec = codecName(children[0].Type())
	if vse, ok := children[0].(*mp4.VisualSampleEntryBox); ok {
		info.Width = int(vse.Width)
		info.Height = int(vse.Height)
	}
	return info
}

func codecName(sampleEntry string) string {
	switch sampleEntry {
	case "avc1", "avc3":
		return "h264"
	case "hvc1", "hev1":
		return "hevc"
	case "av01":
		return "av1"
	case "vp08":
		return "vp8"
	case "vp09":
		return "vp9"
	case "mp4v":
		return "mpeg4"
	default:
		return sampleEntry
	}
}

var _ ports.VideoProber = (*Prober)(nil)
