package process

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeScript drops an executable shell script into a temp dir so tests
// can stand in for the real dissector binary.
func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fake-dissector.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))
	return path
}

func newTestSupervisor(t *testing.T, script string, timeout time.Duration) Supervisor {
	t.Helper()
	cfg := DefaultConfig(zerolog.New(os.Stderr).Level(zerolog.Disabled), script, "/opt/ws/lib")
	cfg.ResponseTimeout = timeout
	cfg.Env = []string{"PATH=/usr/bin:/bin"}
	return New(cfg)
}

func TestChildEnv(t *testing.T) {
	t.Parallel()

	sep := string(os.PathListSeparator)

	env := childEnv([]string{"HOME=/root"}, "/lib/ws")
	assert.Contains(t, env, "HOME=/root")
	assert.Contains(t, env, "LD_LIBRARY_PATH=/lib/ws"+sep)

	env = childEnv([]string{"LD_LIBRARY_PATH=/usr/lib", "HOME=/root"}, "/lib/ws")
	assert.Contains(t, env, "LD_LIBRARY_PATH=/lib/ws"+sep+"/usr/lib")
	assert.NotContains(t, env, "LD_LIBRARY_PATH=/usr/lib")
}

func TestStart_Idempotent(t *testing.T) {
	t.Parallel()

	script := writeScript(t, "cat >/dev/null\n")
	sup := newTestSupervisor(t, script, time.Second)

	assert.False(t, sup.Running())
	assert.Equal(t, 0, sup.PID())

	require.NoError(t, sup.Start())
	pid := sup.PID()
	require.NotZero(t, pid)
	assert.True(t, sup.Running())

	// Second call must not spawn another child.
	require.NoError(t, sup.Start())
	assert.Equal(t, pid, sup.PID())
}

func TestStart_SpawnFailure(t *testing.T) {
	t.Parallel()

	sup := newTestSupervisor(t, filepath.Join(t.TempDir(), "missing"), time.Second)
	require.Error(t, sup.Start())
	assert.False(t, sup.Running())
}

func TestUseBeforeStart(t *testing.T) {
	t.Parallel()

	sup := newTestSupervisor(t, "/bin/true", time.Second)

	err := sup.WriteRequest([]byte{0x00})
	require.ErrorIs(t, err, ErrNotStarted)

	_, err = sup.ReadUntilSentinel(context.Background())
	require.ErrorIs(t, err, ErrNotStarted)
}

func TestReadUntilSentinel(t *testing.T) {
	t.Parallel()

	script := writeScript(t, `echo "env=$LD_LIBRARY_PATH"
echo "line one"
echo "line two"
echo "===___==="
cat >/dev/null
`)
	sup := newTestSupervisor(t, script, 5*time.Second)
	require.NoError(t, sup.Start())

	text, err := sup.ReadUntilSentinel(context.Background())
	require.NoError(t, err)

	sep := string(os.PathListSeparator)
	assert.Equal(t, "env=/opt/ws/lib"+sep+"\nline one\nline two\n", text)
}

func TestReadUntilSentinel_Timeout(t *testing.T) {
	t.Parallel()

	script := writeScript(t, `echo "partial output"
cat >/dev/null
`)
	sup := newTestSupervisor(t, script, 100*time.Millisecond)
	require.NoError(t, sup.Start())

	start := time.Now()
	_, err := sup.ReadUntilSentinel(context.Background())
	require.ErrorIs(t, err, ErrUnresponsive)
	assert.Less(t, time.Since(start), 5*time.Second)

	// The stream is desynchronized from here on.
	_, err = sup.ReadUntilSentinel(context.Background())
	require.ErrorIs(t, err, ErrBroken)
	require.ErrorIs(t, sup.WriteRequest([]byte{0x00}), ErrBroken)
}

func TestReadUntilSentinel_ContextCancel(t *testing.T) {
	t.Parallel()

	script := writeScript(t, "cat >/dev/null\n")
	sup := newTestSupervisor(t, script, 0) // no timeout: cancellation only
	require.NoError(t, sup.Start())

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := sup.ReadUntilSentinel(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	_, err = sup.ReadUntilSentinel(context.Background())
	require.ErrorIs(t, err, ErrBroken)
}

func TestWriteRequest_ReachesChild(t *testing.T) {
	t.Parallel()

	// The child reports how many bytes each request carried.
	script := writeScript(t, `while true; do
  head -c 11 >/dev/null || exit 0
  echo "got 11 bytes"
  echo "===___==="
done
`)
	sup := newTestSupervisor(t, script, 5*time.Second)
	require.NoError(t, sup.Start())

	require.NoError(t, sup.WriteRequest([]byte{
		0x00, 0x00, 0x00, 0x9D, 0x00, 0x00, 0x00, 0x03, 0x01, 0x80, 0x00,
	}))

	text, err := sup.ReadUntilSentinel(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "got 11 bytes\n", text)
}
