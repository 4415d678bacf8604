package subprocess

import (
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"runtime"
	"sync"

	"github.com/wagiedev/provider-bridge-go/internal/errors"
)

// Process owns the spawned bridge service and its three standard streams.
//
// The input stream handle is cleared the moment the process is known dead:
// on explicit shutdown, or by the stdout reader calling DropInput after
// EOF. Alive reports false from then on.
type Process struct {
	log *slog.Logger

	// mu guards the process handle and the stdin handle. It is held only
	// for the duration of a single write, a handle check, or a teardown.
	mu    sync.Mutex
	cmd   *exec.Cmd
	stdin io.WriteCloser

	stdout io.ReadCloser
	stderr io.ReadCloser
}

// DefaultNodePath returns the Node.js executable name for the current
// platform, resolved through PATH at spawn time.
func DefaultNodePath() string {
	if runtime.GOOS == "windows" {
		return "node.exe"
	}

	return "node"
}

// Spawn starts the bridge service script under Node.js with all three
// standard streams redirected to pipes.
//
// The working directory defaults to the invoking user's home directory so
// the bridge can discover native CLI tools and profile configuration
// regardless of where the application is installed. On Windows the process
// is created without a console window.
//
// Spawn failure is fatal: the returned error wraps the underlying cause
// and no Process is returned.
func Spawn(log *slog.Logger, nodePath, scriptPath, workDir string) (*Process, error) {
	if nodePath == "" {
		nodePath = DefaultNodePath()
	}

	if workDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, &errors.ConnectionError{Err: fmt.Errorf("determine user home directory: %w", err)}
		}

		workDir = home
	}

	log = log.With("component", "bridge_process")
	log.Info("starting bridge service", "script", scriptPath, "cwd", workDir)

	//nolint:gosec // G204: the script path comes from discovery or explicit configuration
	cmd := exec.Command(nodePath, scriptPath)
	cmd.Dir = workDir
	hideWindow(cmd)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, &errors.ConnectionError{Err: fmt.Errorf("stdin pipe: %w", err)}
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, &errors.ConnectionError{Err: fmt.Errorf("stdout pipe: %w", err)}
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, &errors.ConnectionError{Err: fmt.Errorf("stderr pipe: %w", err)}
	}

	if err := cmd.Start(); err != nil {
		return nil, &errors.ConnectionError{Err: fmt.Errorf("spawn bridge service: %w", err)}
	}

	log.Info("bridge service started", "pid", cmd.Process.Pid)

	return &Process{
		log:    log,
		cmd:    cmd,
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
	}, nil
}

// WriteLine writes one frame to the bridge stdin, appending a trailing
// newline when missing. The write happens under the handle lock so
// concurrent frames never interleave.
func (p *Process) WriteLine(data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stdin == nil {
		return errors.ErrStdinUnavailable
	}

	// Explicit copy so a caller's backing array with spare capacity is
	// never mutated.
	if len(data) == 0 || data[len(data)-1] != '\n' {
		framed := make([]byte, len(data)+1)
		copy(framed, data)
		framed[len(data)] = '\n'
		data = framed
	}

	if _, err := p.stdin.Write(data); err != nil {
		return fmt.Errorf("write to stdin: %w", err)
	}

	return nil
}

// Output is the bridge stdout stream.
func (p *Process) Output() io.Reader {
	return p.stdout
}

// Diagnostics is the bridge stderr stream.
func (p *Process) Diagnostics() io.Reader {
	return p.stderr
}

// Alive reports whether the process handle exists and its input stream has
// not been dropped.
func (p *Process) Alive() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.cmd != nil && p.stdin != nil
}

// DropInput closes and clears the stdin handle. The stdout reader calls
// this on EOF so subsequent Alive checks report false.
func (p *Process) DropInput() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stdin != nil {
		_ = p.stdin.Close()
		p.stdin = nil

		p.log.Debug("stdin handle dropped")
	}
}

// Shutdown forcibly terminates the bridge process and waits for its exit.
// After the first call the handle is cleared, so a second call is a
// guaranteed no-op regardless of caller.
func (p *Process) Shutdown() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cmd == nil {
		return nil
	}

	p.log.Debug("killing bridge process", "pid", p.cmd.Process.Pid)

	if err := p.cmd.Process.Kill(); err != nil && !stderrors.Is(err, os.ErrProcessDone) {
		p.cmd = nil
		p.stdin = nil

		return fmt.Errorf("kill bridge process: %w", err)
	}

	_ = p.cmd.Wait()

	p.cmd = nil
	p.stdin = nil

	p.log.Info("bridge process terminated")

	return nil
}
