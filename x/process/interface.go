package process

import "context"

// Supervisor owns the single external dissector process and its pipe pair.
// The child is started at most once and never restarted; a dead pipe
// surfaces as an error on the write or read path.
type Supervisor interface {
	// Start spawns the dissector child process. Repeat calls are no-ops
	// returning nil, regardless of how the supervisor was configured.
	Start() error

	// WriteRequest writes one framed request to the child's stdin. The
	// write reaches the pipe before WriteRequest returns.
	WriteRequest(data []byte) error

	// ReadUntilSentinel drains one response from the child's stdout,
	// blocking until the sentinel line arrives, ctx is done, or the
	// configured response timeout fires.
	ReadUntilSentinel(ctx context.Context) (string, error)

	// Running reports whether Start has succeeded.
	Running() bool

	// PID returns the child process id, or 0 before Start.
	PID() int
}
