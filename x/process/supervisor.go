// Package process manages the lifecycle of the external ws_dissector
// process and the raw byte traffic over its stdin/stdout pipes.
package process

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/mobileinsight/wsdissector/x/aww"
)

// ErrNotStarted indicates a request was issued before Start succeeded.
// This is a caller contract violation, not a runtime condition.
var ErrNotStarted = errors.New("process: dissector not started")

// ErrUnresponsive indicates the dissector produced no sentinel within the
// response timeout. The stream is desynchronized from this point on.
var ErrUnresponsive = errors.New("process: dissector unresponsive")

// ErrBroken indicates the stream was abandoned mid-response by an earlier
// timeout or cancellation and can no longer be trusted.
var ErrBroken = errors.New("process: dissector stream desynchronized")

// libraryPathVar is the environment variable receiving the library dir.
const libraryPathVar = "LD_LIBRARY_PATH"

// supervisor implements Supervisor over one exec.Cmd. It holds the only
// handles to the child's pipes; callers interact with the child
// exclusively through WriteRequest and ReadUntilSentinel.
type supervisor struct {
	logger zerolog.Logger
	cfg    Config

	mu      sync.Mutex
	started bool
	broken  bool
	cmd     *exec.Cmd
	stdin   io.WriteCloser
	reader  *bufio.Reader
}

// New creates a Supervisor. The child is not spawned until Start.
func New(cfg Config) Supervisor {
	return &supervisor{
		logger: cfg.Logger,
		cfg:    cfg,
	}
}

// Start spawns the dissector with its library search path prepended to the
// inherited environment. First call wins; repeat calls return nil without
// side effects. A spawn failure is fatal for this supervisor: the child is
// never retried.
func (s *supervisor) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	cmd := exec.Command(s.cfg.ExecutablePath)
	cmd.Env = childEnv(s.cfg.Env, s.cfg.LibraryDir)
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("process: stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("process: stdout pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("process: spawn %s: %w", s.cfg.ExecutablePath, err)
	}

	s.cmd = cmd
	s.stdin = stdin
	s.reader = bufio.NewReader(stdout)
	s.started = true

	s.logger.Info().
		Str("executable", s.cfg.ExecutablePath).
		Str("library_dir", s.cfg.LibraryDir).
		Int("pid", cmd.Process.Pid).
		Msg("Dissector process started")

	go s.reap(cmd)

	return nil
}

// reap logs the child's exit. The supervisor never restarts it; callers
// observe the death as pipe errors.
func (s *supervisor) reap(cmd *exec.Cmd) {
	err := cmd.Wait()
	s.logger.Warn().Err(err).Int("pid", cmd.Process.Pid).Msg("Dissector process exited")
}

// WriteRequest writes the framed request to the child's stdin. The pipe is
// unbuffered on this side, so the bytes reach the child as soon as the OS
// accepts the write.
func (s *supervisor) WriteRequest(data []byte) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return ErrNotStarted
	}
	if s.broken {
		s.mu.Unlock()
		return ErrBroken
	}
	stdin := s.stdin
	s.mu.Unlock()

	if _, err := stdin.Write(data); err != nil {
		return fmt.Errorf("process: write request: %w", err)
	}
	return nil
}

// ReadUntilSentinel drains one response from the child's stdout. On
// timeout or cancellation the in-flight read is abandoned and the
// supervisor is marked broken: response boundaries can no longer be
// matched to requests once a partial response has been left in the pipe.
func (s *supervisor) ReadUntilSentinel(ctx context.Context) (string, error) {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return "", ErrNotStarted
	}
	if s.broken {
		s.mu.Unlock()
		return "", ErrBroken
	}
	reader := s.reader
	s.mu.Unlock()

	type result struct {
		text string
		err  error
	}
	resCh := make(chan result, 1)
	go func() {
		text, err := aww.ReadResponse(reader)
		resCh <- result{text: text, err: err}
	}()

	var timeout <-chan time.Time
	if s.cfg.ResponseTimeout > 0 {
		timer := time.NewTimer(s.cfg.ResponseTimeout)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case res := <-resCh:
		if res.err != nil {
			return "", res.err
		}
		return res.text, nil
	case <-timeout:
		s.markBroken()
		s.logger.Error().
			Dur("timeout", s.cfg.ResponseTimeout).
			Msg("No sentinel within response timeout; stream abandoned")
		return "", ErrUnresponsive
	case <-ctx.Done():
		s.markBroken()
		return "", ctx.Err()
	}
}

// Running reports whether Start has succeeded.
func (s *supervisor) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started
}

// PID returns the child process id, or 0 before Start.
func (s *supervisor) PID() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cmd == nil || s.cmd.Process == nil {
		return 0
	}
	return s.cmd.Process.Pid
}

func (s *supervisor) markBroken() {
	s.mu.Lock()
	s.broken = true
	s.mu.Unlock()
}

// childEnv builds the child environment: base (host environment when nil)
// with libraryDir prepended to LD_LIBRARY_PATH. An unset variable behaves
// as an empty previous value.
func childEnv(base []string, libraryDir string) []string {
	if base == nil {
		base = os.Environ()
	}

	prev := ""
	env := make([]string, 0, len(base)+1)
	prefix := libraryPathVar + "="
	for _, kv := range base {
		if strings.HasPrefix(kv, prefix) {
			prev = strings.TrimPrefix(kv, prefix)
			continue
		}
		env = append(env, kv)
	}

	env = append(env, prefix+libraryDir+string(os.PathListSeparator)+prev)
	return env
}
