//go:build unix

package supervisor

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSupervisor(t *testing.T, command ...string) *Supervisor {
	t.Helper()

	if _, err := exec.LookPath(command[0]); err != nil {
		t.Skipf("%s is not available: %v", command[0], err)
	}

	s := New(Options{Dir: t.TempDir(), Command: command, StopTimeout: 500 * time.Millisecond})
	s.pollInterval = 10 * time.Millisecond
	t.Cleanup(func() { _, _ = s.Stop() })
	return s
}

func TestStatusWithoutPIDFile(t *testing.T) {
	s := newTestSupervisor(t, "sleep", "30")

	_, err := s.Status()
	assert.True(t, errors.Is(err, ErrNotRunning))
}

func TestStatusRemovesStalePIDFile(t *testing.T) {
	s := newTestSupervisor(t, "sleep", "30")

	cmd := exec.Command("true")
	require.NoError(t, cmd.Run())
	require.NoError(t, os.WriteFile(s.pidFile, []byte(strconv.Itoa(cmd.Process.Pid)), 0o644))

	_, err := s.Status()
	assert.True(t, errors.Is(err, ErrNotRunning))
	assert.NoFileExists(t, s.pidFile)
}

func TestStartStop(t *testing.T) {
	s := newTestSupervisor(t, "sleep", "30")

	pid, err := s.Start()
	require.NoError(t, err)
	assert.Positive(t, pid)
	assert.FileExists(t, s.pidFile)
	assert.FileExists(t, s.LogFile())

	running, err := s.Status()
	require.NoError(t, err)
	assert.Equal(t, pid, running)

	_, err = s.Start()
	assert.True(t, errors.Is(err, ErrAlreadyRunning))

	killed, err := s.Stop()
	require.NoError(t, err)
	assert.False(t, killed)
	assert.NoFileExists(t, s.pidFile)

	_, err = s.Stop()
	assert.True(t, errors.Is(err, ErrNotRunning))
}

func TestStopEscalatesToKill(t *testing.T) {
	s := newTestSupervisor(t, "sh", "-c", `trap "" TERM; while :; do sleep 0.05; done`)

	_, err := s.Start()
	require.NoError(t, err)
	time.Sleep(200 * time.Millisecond)

	killed, err := s.Stop()
	require.NoError(t, err)
	assert.True(t, killed)

	_, err = s.Status()
	assert.True(t, errors.Is(err, ErrNotRunning))
}

func TestRestartAndReload(t *testing.T) {
	s := newTestSupervisor(t, "sleep", "30")

	_, err := s.Reload()
	assert.True(t, errors.Is(err, ErrNotRunning))

	first, err := s.Restart()
	require.NoError(t, err)

	second, err := s.Reload()
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	_, err = s.Status()
	assert.NoError(t, err)
}

func TestLogs(t *testing.T) {
	s := newTestSupervisor(t, "sleep", "30")

	_, err := s.Logs(10)
	assert.True(t, errors.Is(err, ErrNoLogs))

	require.NoError(t, os.WriteFile(s.LogFile(), []byte("one\ntwo\nthree\nfour\n"), 0o644))

	lines, err := s.Logs(2)
	require.NoError(t, err)
	assert.Equal(t, []string{"three", "four"}, lines)

	lines, err = s.Logs(40)
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two", "three", "four"}, lines)
}

func TestDelete(t *testing.T) {
	s := newTestSupervisor(t, "sleep", "30")

	_, err := s.Start()
	require.NoError(t, err)
	require.NoError(t, s.Delete())

	assert.NoFileExists(t, s.pidFile)
	assert.NoFileExists(t, s.LogFile())

	require.NoError(t, s.Delete(), "deleting twice is fine")
}

func TestUpdateOutsideRepository(t *testing.T) {
	s := newTestSupervisor(t, "git")

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	_, err := s.Update(ctx)
	assert.Error(t, err)
}

func TestNewResolvesRelativePaths(t *testing.T) {
	s := New(Options{Dir: "/srv/bot", LogFile: "custom.log"})

	assert.Equal(t, filepath.Join("/srv/bot", DefaultPIDFile), s.pidFile)
	assert.Equal(t, "/srv/bot/custom.log", s.LogFile())
	assert.Equal(t, defaultStopTimeout, s.stopTimeout)
}
