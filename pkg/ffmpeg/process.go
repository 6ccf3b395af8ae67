package ffmpeg

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/user/timecut/pkg/ports"
)

// stderrTailLines is how many stderr lines are kept for error reports.
const stderrTailLines = 20

// SpawnOptions configures an encoder process.
type SpawnOptions struct {
	// Path is the ffmpeg executable.
	Path string
	Args []string

	// OutputPath must exist once the process exits. Leave empty when the
	// video is streamed to Stream.
	OutputPath string
	// Stream receives the process's stdout when set.
	Stream io.Writer

	// TotalFrames is reported alongside each progress line.
	TotalFrames float64
	Logger      ports.Logger
}

// Process is a running encoder. Frames are written with Write, the input
// is finished with CloseInput, and Wait reports the outcome. Write and
// CloseInput may be called from the capture goroutine while stderr and
// stdout are drained in the background.
type Process struct {
	cmd    *exec.Cmd
	path   string
	output string
	logger ports.Logger

	mu          sync.Mutex
	stdin       io.WriteCloser
	stdinErr    error
	stdinClosed bool
	waited      bool

	stderrDone chan error
	stdoutDone chan error

	tailMu sync.Mutex
	tail   []string
}

// Spawn starts the encoder with stdin, stdout and stderr attached.
func Spawn(opts SpawnOptions) (*Process, error) {
	p := &Process{
		cmd:        exec.Command(opts.Path, opts.Args...),
		path:       opts.Path,
		output:     opts.OutputPath,
		logger:     opts.Logger,
		stderrDone: make(chan error, 1),
		stdoutDone: make(chan error, 1),
	}

	stdin, err := p.cmd.StdinPipe()
	if err != nil {
		return nil, &SpawnError{Path: opts.Path, Err: err}
	}
	p.stdin = stdin

	stderr, err := p.cmd.StderrPipe()
	if err != nil {
		return nil, &SpawnError{Path: opts.Path, Err: err}
	}

	var stdout io.ReadCloser
	if opts.Stream != nil {
		stdout, err = p.cmd.StdoutPipe()
		if err != nil {
			return nil, &SpawnError{Path: opts.Path, Err: err}
		}
	}

	p.logger.Debug("Starting encoder: %s %s", opts.Path, strings.Join(opts.Args, " "))
	if err := p.cmd.Start(); err != nil {
		return nil, &SpawnError{Path: opts.Path, Err: err}
	}

	go p.readStderr(stderr, opts.TotalFrames)
	if stdout != nil {
		go p.forwardStdout(stdout, opts.Stream)
	} else {
		p.stdoutDone <- nil
	}

	return p, nil
}

// Write sends one frame to the encoder's stdin. It blocks until the
// encoder has accepted the data. After a failed write every later call
// returns the same error.
func (p *Process) Write(frame []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stdinErr != nil {
		return p.stdinErr
	}
	if p.stdinClosed {
		return ErrStdinClosed
	}
	if _, err := p.stdin.Write(frame); err != nil {
		p.stdinErr = fmt.Errorf("write encoder stdin: %w", err)
		return p.stdinErr
	}
	return nil
}

// CloseInput signals end of stream to the encoder. Closing twice is a no-op.
func (p *Process) CloseInput() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stdinClosed {
		return nil
	}
	p.stdinClosed = true
	if err := p.stdin.Close(); err != nil && p.stdinErr == nil {
		p.stdinErr = fmt.Errorf("close encoder stdin: %w", err)
		return p.stdinErr
	}
	return nil
}

// Wait closes stdin if still open, waits for the encoder to exit and for
// its output streams to drain, then verifies the result. For file output
// the file must exist; for streamed output the process must exit cleanly.
func (p *Process) Wait() (string, error) {
	p.mu.Lock()
	if p.waited {
		p.mu.Unlock()
		return "", ErrAlreadyWaited
	}
	p.waited = true
	p.mu.Unlock()

	// Close errors land in stdinErr, checked below.
	p.CloseInput()

	stderrErr := <-p.stderrDone
	stdoutErr := <-p.stdoutDone
	exitErr := p.cmd.Wait()
	p.logger.Debug("Encoder process finished")

	p.mu.Lock()
	stdinErr := p.stdinErr
	p.mu.Unlock()

	if stdinErr != nil {
		return "", p.withTail(stdinErr)
	}
	if stdoutErr != nil {
		return "", stdoutErr
	}
	if stderrErr != nil {
		return "", stderrErr
	}

	if p.output == "" {
		if exitErr != nil {
			return "", p.withTail(fmt.Errorf("ffmpeg: %w", exitErr))
		}
		return "", nil
	}

	if _, err := os.Stat(p.output); err != nil {
		if exitErr != nil {
			return "", p.withTail(fmt.Errorf("%w: %s (%v)", ErrFileNotCreated, p.output, exitErr))
		}
		return "", p.withTail(fmt.Errorf("%w: %s", ErrFileNotCreated, p.output))
	}
	if exitErr != nil {
		p.logger.Warn("Encoder exited with %s but produced %s", exitErr, p.output)
	}
	return p.output, nil
}

// Abort closes stdin and reaps the process in the background. It is used
// when the run fails before Wait is reached.
func (p *Process) Abort() {
	p.mu.Lock()
	if p.waited {
		p.mu.Unlock()
		return
	}
	p.waited = true
	p.mu.Unlock()

	p.CloseInput()
	go func() {
		<-p.stderrDone
		<-p.stdoutDone
		p.cmd.Wait()
	}()
}

// Pid returns the operating system process id.
func (p *Process) Pid() int {
	if p.cmd.Process == nil {
		return 0
	}
	return p.cmd.Process.Pid
}

func (p *Process) readStderr(r io.Reader, totalFrames float64) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	scanner.Split(scanLines)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		p.remember(line)
		ReportProgress(p.logger, line, totalFrames)
	}
	if err := scanner.Err(); err != nil {
		// Keep draining so the encoder never blocks on a full pipe.
		io.Copy(io.Discard, r)
		p.stderrDone <- fmt.Errorf("read encoder stderr: %w", err)
		return
	}
	p.stderrDone <- nil
}

func (p *Process) forwardStdout(r io.Reader, w io.Writer) {
	if _, err := io.Copy(w, r); err != nil {
		io.Copy(io.Discard, r)
		p.stdoutDone <- fmt.Errorf("forward encoder output: %w", err)
		return
	}
	p.stdoutDone <- nil
}

func (p *Process) remember(line string) {
	p.tailMu.Lock()
	defer p.tailMu.Unlock()
	p.tail = append(p.tail, line)
	if len(p.tail) > stderrTailLines {
		p.tail = p.tail[len(p.tail)-stderrTailLines:]
	}
}

// withTail appends the last stderr lines to err.
func (p *Process) withTail(err error) error {
	p.tailMu.Lock()
	defer p.tailMu.Unlock()
	if len(p.tail) == 0 {
		return err
	}
	return &encoderError{err: err, stderr: strings.Join(p.tail, "\n")}
}

// encoderError carries encoder stderr output along with the failure.
type encoderError struct {
	err    error
	stderr string
}

func (e *encoderError) Error() string {
	return fmt.Sprintf("%v\nstderr: %s", e.err, e.stderr)
}

func (e *encoderError) Unwrap() error {
	return e.err
}

// scanLines splits on \n and on the bare \r ffmpeg uses to redraw its
// stats line.
func scanLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
