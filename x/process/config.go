package process

import (
	"time"

	"github.com/rs/zerolog"
)

// DefaultResponseTimeout bounds the wait for a response sentinel.
const DefaultResponseTimeout = 30 * time.Second

// Config contains all dependencies for the Supervisor.
type Config struct {
	Logger zerolog.Logger

	// ExecutablePath is the path of the ws_dissector binary.
	ExecutablePath string

	// LibraryDir is prepended to LD_LIBRARY_PATH in the child's
	// environment so the binary finds libwireshark.
	LibraryDir string

	// ResponseTimeout bounds ReadUntilSentinel; 0 waits forever.
	ResponseTimeout time.Duration

	// Env is the base environment for the child; defaults to the host
	// process environment.
	Env []string
}

// DefaultConfig returns a config with sensible defaults for optional fields.
func DefaultConfig(logger zerolog.Logger, executablePath, libraryDir string) Config {
	return Config{
		Logger:          logger.With().Str("component", "process-supervisor").Logger(),
		ExecutablePath:  executablePath,
		LibraryDir:      libraryDir,
		ResponseTimeout: DefaultResponseTimeout,
	}
}
