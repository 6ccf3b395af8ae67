package ffmpeg

import (
	"regexp"
	"strings"

	"github.com/user/timecut/pkg/ports"
)

var progressSpacing = regexp.MustCompile(`=\s+`)

// ParseFrame extracts the value of the frame= field from an ffmpeg stats
// line such as "frame=   42 fps= 30 q=28.0 size=...".
func ParseFrame(text string) (string, bool) {
	if !strings.Contains(text, "frame=") {
		return "", false
	}
	line := strings.TrimSpace(progressSpacing.ReplaceAllString(text, "="))
	for _, field := range strings.Split(line, " ") {
		key, value, ok := strings.Cut(field, "=")
		if ok && key == "frame" && value != "" {
			return value, true
		}
	}
	return "", false
}

// ReportProgress logs a compile progress line when text carries a frame
// count. Text without one is ignored.
func ReportProgress(log ports.Logger, text string, totalFrames float64) {
	frame, ok := ParseFrame(text)
	if !ok {
		return
	}
	log.Info("Compiling current:%s total:%s frames", frame, FormatRate(totalFrames))
}
