// Package e2e contains end-to-end tests for the timecut CLI.
// They need ffmpeg and, for browser sources, Chrome.
package e2e

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"

	"github.com/user/timecut/pkg/adapters/mp4probe"
)

const page = `<!DOCTYPE html>
<html><body style="margin:0">
<div id="box" style="position:absolute;width:40px;height:40px;background:#c00"></div>
<script>
const box = document.getElementById('box');
function tick() {
  box.style.left = (Date.now() / 10 % 200) + 'px';
  requestAnimationFrame(tick);
}
requestAnimationFrame(tick);
</script>
</body></html>`

var (
	buildOnce sync.Once
	binary    string
	buildErr  error
)

// getBinaryName returns the test binary name with platform-specific extension
func getBinaryName() string {
	if runtime.GOOS == "windows" {
		return "timecut-test.exe"
	}
	return "timecut-test"
}

// cliBinary returns TIMECUT_BINARY when set, otherwise builds the CLI once.
func cliBinary(t *testing.T) string {
	t.Helper()
	if os.Getenv("TIMECUT_E2E") != "1" {
		t.Skip("Skipping E2E test (set TIMECUT_E2E=1 to run)")
	}
	if path := os.Getenv("TIMECUT_BINARY"); path != "" {
		return path
	}

	buildOnce.Do(func() {
		dir, err := os.MkdirTemp("", "timecut-e2e-bin")
		if err != nil {
			buildErr = err
			return
		}
		binary = filepath.Join(dir, getBinaryName())
		cmd := exec.Command("go", "build", "-o", binary, "./cmd/timecut")
		cmd.Dir = getProjectRoot(t)
		if out, err := cmd.CombinedOutput(); err != nil {
			buildErr = &buildError{err: err, output: string(out)}
		}
	})
	if buildErr != nil {
		t.Fatalf("Failed to build CLI: %v", buildErr)
	}
	return binary
}

type buildError struct {
	err    error
	output string
}

func (e *buildError) Error() string {
	return e.err.Error() + "\n" + e.output
}

func run(t *testing.T, args ...string) (string, string) {
	t.Helper()
	cmd := exec.Command(cliBinary(t), args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		t.Fatalf("timecut %v failed: %v\nstdout: %s\nstderr: %s", args, err, stdout.String(), stderr.String())
	}
	return stdout.String(), stderr.String()
}

func probe(t *testing.T, path string, frames int) {
	t.Helper()
	info, err := mp4probe.New().Probe(path)
	if err != nil {
		t.Fatalf("Invalid MP4 file: %v", err)
	}
	if info.Samples != frames {
		t.Errorf("expected %d samples, got %d", frames, info.Samples)
	}
	t.Logf("Video created: %s %dx%d, %d samples", info.Codec, info.Width, info.Height, info.Samples)
}

func TestRenderPattern_Buffered(t *testing.T) {
	output := filepath.Join(t.TempDir(), "pattern.mp4")

	stdout, _ := run(t, "render", "--source", "pattern", "-W", "320", "-H", "240", "--fps", "30", "--frames", "30", "-o", output)

	probe(t, output, 30)
	if !strings.Contains(stdout, output) {
		t.Errorf("expected summary mentioning %s:\n%s", output, stdout)
	}
	entries, _ := filepath.Glob(filepath.Join(filepath.Dir(output), "timecut-*"))
	if len(entries) != 0 {
		t.Errorf("frame directory should be removed: %v", entries)
	}
}

func TestRenderPattern_PipeJPEG(t *testing.T) {
	output := filepath.Join(t.TempDir(), "pipe.mp4")

	run(t, "render", "--source", "pattern", "--pipe-mode", "--screenshot-type", "jpeg", "--frames", "20", "--fps", "20", "-o", output, "--no-summary")

	probe(t, output, 20)
}

func TestRenderPattern_Stdout(t *testing.T) {
	dir := t.TempDir()

	stdout, _ := run(t, "render", "--source", "pattern", "--pipe-mode", "--frames", "10", "--fps", "10", "--output=-")

	path := filepath.Join(dir, "stream.mp4")
	if err := os.WriteFile(path, []byte(stdout), 0644); err != nil {
		t.Fatal(err)
	}
	info, err := mp4probe.New().Probe(path)
	if err != nil {
		t.Fatalf("stdout is not an mp4 stream: %v", err)
	}
	if !info.Fragmented {
		t.Error("streamed mp4 should be fragmented")
	}
}

func TestRenderPattern_KeepFrames(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "kept.mp4")

	run(t, "render", "--source", "pattern", "--frames", "5", "--fps", "5", "--keep-frames", "--frame-dir", "frames", "-o", output, "--no-summary")

	frames, _ := filepath.Glob(filepath.Join(dir, "frames", "image-*.png"))
	if len(frames) != 5 {
		t.Errorf("expected 5 kept frames, got %d", len(frames))
	}
}

func TestRenderBrowser(t *testing.T) {
	dir := t.TempDir()
	html := filepath.Join(dir, "index.html")
	if err := os.WriteFile(html, []byte(page), 0644); err != nil {
		t.Fatal(err)
	}
	output := filepath.Join(dir, "browser.mp4")
	summary := filepath.Join(dir, "summary.md")

	run(t, "render", html, "-W", "240", "-H", "120", "--fps", "24", "--duration", "1", "-o", output, "--summary-file", summary, "--auto-install")

	probe(t, output, 24)
	if _, err := os.Stat(summary); err != nil {
		t.Errorf("summary file not written: %v", err)
	}
}

func TestVersionCommand(t *testing.T) {
	stdout, _ := run(t, "version")
	if !strings.Contains(stdout, "timecut") {
		t.Errorf("unexpected version output %q", stdout)
	}
}

func getProjectRoot(t *testing.T) string {
	// Start from current working directory and find go.mod
	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("Could not find project root (go.mod)")
		}
		dir = parent
	}
}
