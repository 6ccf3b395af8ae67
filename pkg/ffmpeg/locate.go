// Package ffmpeg builds ffmpeg invocations and supervises the encoder process.
package ffmpeg

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
)

// PathEnv names the environment variable consulted for the ffmpeg path.
const PathEnv = "FFMPEG_PATH"

// Find locates the ffmpeg executable.
// Priority: 1) explicit path, 2) FFMPEG_PATH env, 3) PATH, 4) common locations.
func Find(explicit string) (string, error) {
	if explicit != "" {
		if resolved, err := exec.LookPath(explicit); err == nil {
			return resolved, nil
		}
		return "", fmt.Errorf("%w: %s", ErrFFmpegNotFound, explicit)
	}

	if envPath := os.Getenv(PathEnv); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath, nil
		}
		return "", fmt.Errorf("%w: %s %s not found", ErrFFmpegNotFound, PathEnv, envPath)
	}

	execName := "ffmpeg"
	if runtime.GOOS == "windows" {
		execName = "ffmpeg.exe"
	}
	if path, err := exec.LookPath(execName); err == nil {
		return path, nil
	}

	for _, p := range commonPaths() {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	return "", ErrFFmpegNotFound
}

func commonPaths() []string {
	switch runtime.GOOS {
	case "windows":
		return []string{
			`C:\ffmpeg\bin\ffmpeg.exe`,
			`C:\Program Files\ffmpeg\bin\ffmpeg.exe`,
			`C:\Program Files (x86)\ffmpeg\bin\ffmpeg.exe`,
		}
	case "darwin":
		return []string{
			"/opt/homebrew/bin/ffmpeg",
			"/usr/local/bin/ffmpeg",
			"/usr/bin/ffmpeg",
		}
	default:
		return []string{
			"/usr/bin/ffmpeg",
			"/usr/local/bin/ffmpeg",
			"/snap/bin/ffmpeg",
		}
	}
}
