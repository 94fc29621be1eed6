package remedy_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moriyoshi-k/aws-metric-responder/internal/alarm"
	"github.com/moriyoshi-k/aws-metric-responder/internal/remedy"
)

// writeScript drops an executable shell script into a temp dir.
func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "recover.sh")
	script := "#!/bin/sh\n" + body + "\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func TestRecoverSuccess(t *testing.T) {
	path := writeScript(t, "echo service restarted")
	r := remedy.New(path, 15*time.Second, zerolog.Nop())

	out := r.Recover(context.Background())

	assert.Equal(t, alarm.StatusSucceeded, out.Status)
	assert.Equal(t, "exit 0", out.Detail)
}

func TestRecoverMissingPathSkips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "does-not-exist.sh")
	r := remedy.New(path, 15*time.Second, zerolog.Nop())

	out := r.Recover(context.Background())

	assert.Equal(t, alarm.StatusSkipped, out.Status)
	assert.Contains(t, out.Detail, "not found")
}

func TestRecoverNonZeroExit(t *testing.T) {
	path := writeScript(t, "echo restart failed >&2\nexit 3")
	r := remedy.New(path, 15*time.Second, zerolog.Nop())

	out := r.Recover(context.Background())

	require.Equal(t, alarm.StatusFailed, out.Status)
	assert.ErrorContains(t, out.Err, "exit 3")
	assert.ErrorContains(t, out.Err, "restart failed")
}

func TestRecoverTimeout(t *testing.T) {
	path := writeScript(t, "sleep 10")
	r := remedy.New(path, 100*time.Millisecond, zerolog.Nop())

	start := time.Now()
	out := r.Recover(context.Background())
	elapsed := time.Since(start)

	require.Equal(t, alarm.StatusFailed, out.Status)
	assert.ErrorContains(t, out.Err, "timed out")
	assert.Less(t, elapsed, 5*time.Second, "Recover must return promptly after the timeout fires")
}

func TestRecoverTimeoutWithBackgroundChild(t *testing.T) {
	// A realistic restart script leaves a child behind. The child inherits
	// the output pipes, so Recover must not wait for it once the timeout
	// has killed the script.
	path := writeScript(t, "sleep 30 &\nsleep 30")
	r := remedy.New(path, 200*time.Millisecond, zerolog.Nop())

	start := time.Now()
	out := r.Recover(context.Background())
	elapsed := time.Since(start)

	require.Equal(t, alarm.StatusFailed, out.Status)
	assert.ErrorContains(t, out.Err, "timed out")
	assert.Less(t, elapsed, 3*time.Second, "Recover must not wait for the script's descendants")
}

func TestRecoverNotFoundAtExecution(t *testing.T) {
	// The script passes the os.Stat pre-check but exec fails with ENOENT,
	// the same shape as the script vanishing between check and execution.
	path := filepath.Join(t.TempDir(), "recover.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/nonexistent/sh\n"), 0o755))
	r := remedy.New(path, 15*time.Second, zerolog.Nop())

	out := r.Recover(context.Background())

	require.Equal(t, alarm.StatusFailed, out.Status)
	assert.ErrorContains(t, out.Err, "not found at execution")
}

func TestRecoverGenericExecFault(t *testing.T) {
	// A present but non-executable file fails at exec time with a
	// permission error, which is neither an exit code nor a not-found.
	path := filepath.Join(t.TempDir(), "recover.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"), 0o644))
	r := remedy.New(path, 15*time.Second, zerolog.Nop())

	out := r.Recover(context.Background())

	require.Equal(t, alarm.StatusFailed, out.Status)
	assert.ErrorContains(t, out.Err, "recovery script execution")
}
