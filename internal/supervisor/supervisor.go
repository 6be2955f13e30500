// Package supervisor runs the bot as a detached background process tracked
// by a pid file.
package supervisor

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

var (
	ErrNotRunning     = errors.New("bot is not running")
	ErrAlreadyRunning = errors.New("bot is already running")
	ErrNoLogs         = errors.New("log file does not exist yet")
)

const (
	DefaultPIDFile = "bot.pid"
	DefaultLogFile = "bot.log"

	defaultStopTimeout  = 6 * time.Second
	defaultPollInterval = 200 * time.Millisecond
)

type Options struct {
	// Dir holds the pid and log files and is the working directory of the bot.
	Dir string
	// Command is the bot executable followed by its arguments.
	Command []string

	PIDFile     string
	LogFile     string
	StopTimeout time.Duration
}

type Supervisor struct {
	dir     string
	command []string
	pidFile string
	logFile string

	stopTimeout  time.Duration
	pollInterval time.Duration
}

func New(opts Options) *Supervisor {
	s := &Supervisor{
		dir:          opts.Dir,
		command:      opts.Command,
		pidFile:      opts.PIDFile,
		logFile:      opts.LogFile,
		stopTimeout:  opts.StopTimeout,
		pollInterval: defaultPollInterval,
	}

	if s.pidFile == "" {
		s.pidFile = DefaultPIDFile
	}
	if s.logFile == "" {
		s.logFile = DefaultLogFile
	}
	if !filepath.IsAbs(s.pidFile) {
		s.pidFile = filepath.Join(s.dir, s.pidFile)
	}
	if !filepath.IsAbs(s.logFile) {
		s.logFile = filepath.Join(s.dir, s.logFile)
	}
	if s.stopTimeout <= 0 {
		s.stopTimeout = defaultStopTimeout
	}

	return s
}

func (s *Supervisor) LogFile() string {
	return s.logFile
}

// Status returns the pid of the running bot. A pid file left by a dead
// process is removed.
func (s *Supervisor) Status() (int, error) {
	pid, err := s.readPID()
	if err != nil {
		return 0, err
	}
	if pid == 0 {
		return 0, ErrNotRunning
	}

	if !isRunning(pid) {
		if err := s.removePID(); err != nil {
			return 0, err
		}
		return 0, ErrNotRunning
	}

	return pid, nil
}

func (s *Supervisor) Start() (int, error) {
	const op = "supervisor.Start"

	if pid, err := s.Status(); err == nil {
		return pid, ErrAlreadyRunning
	} else if !errors.Is(err, ErrNotRunning) {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	if len(s.command) == 0 {
		return 0, fmt.Errorf("%s: no bot command configured", op)
	}

	logFile, err := os.OpenFile(s.logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	defer logFile.Close()

	// The bot writes its own JSON log to LOG_FILE; stderr catches panics.
	cmd := exec.Command(s.command[0], s.command[1:]...)
	cmd.Dir = s.dir
	cmd.Env = append(os.Environ(), "LOG_FILE="+s.logFile)
	cmd.Stderr = logFile
	cmd.SysProcAttr = detached()

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	go func() { _ = cmd.Wait() }()

	pid := cmd.Process.Pid
	if err := os.WriteFile(s.pidFile, []byte(strconv.Itoa(pid)+"\n"), 0o644); err != nil {
		_ = kill(pid)
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return pid, nil
}

// Stop sends SIGTERM and escalates to SIGKILL after the stop timeout. It
// reports whether the kill was needed.
func (s *Supervisor) Stop() (bool, error) {
	const op = "supervisor.Stop"

	pid, err := s.Status()
	if err != nil {
		return false, err
	}

	killed, err := s.stopProcess(pid)
	if err != nil {
		return killed, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.removePID(); err != nil {
		return killed, fmt.Errorf("%s: %w", op, err)
	}
	return killed, nil
}

func (s *Supervisor) stopProcess(pid int) (bool, error) {
	if err := terminate(pid); err != nil {
		if !isRunning(pid) {
			return false, nil
		}
		return false, err
	}

	deadline := time.Now().Add(s.stopTimeout)
	for time.Now().Before(deadline) {
		if !isRunning(pid) {
			return false, nil
		}
		time.Sleep(s.pollInterval)
	}

	if err := kill(pid); err != nil && isRunning(pid) {
		return true, err
	}
	return true, nil
}

// Restart stops the bot when it runs and starts it again.
func (s *Supervisor) Restart() (int, error) {
	if _, err := s.Stop(); err != nil && !errors.Is(err, ErrNotRunning) {
		return 0, err
	}
	return s.Start()
}

// Reload restarts a running bot so it picks up new configuration and code.
func (s *Supervisor) Reload() (int, error) {
	if _, err := s.Status(); err != nil {
		return 0, err
	}
	return s.Restart()
}

// Logs returns up to n last lines of the log file.
func (s *Supervisor) Logs(n int) ([]string, error) {
	f, err := os.Open(s.logFile)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNoLogs
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if n <= 0 {
		return nil, nil
	}

	ring := make([]string, 0, n)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		if len(ring) == n {
			ring = append(ring[:0], ring[1:]...)
		}
		ring = append(ring, strings.ToValidUTF8(scanner.Text(), ""))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return ring, nil
}

// Update fast-forwards the git checkout in the bot directory.
func (s *Supervisor) Update(ctx context.Context) (string, error) {
	cmd := exec.CommandContext(ctx, "git", "pull", "--ff-only")
	cmd.Dir = s.dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("git pull: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return strings.TrimSpace(stdout.String()), nil
}

// Delete stops the bot and removes the pid and log files. The checkout is left alone.
func (s *Supervisor) Delete() error {
	if _, err := s.Stop(); err != nil && !errors.Is(err, ErrNotRunning) {
		return err
	}

	for _, path := range []string{s.logFile, s.pidFile} {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

func (s *Supervisor) readPID() (int, error) {
	raw, err := os.ReadFile(s.pidFile)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil || pid <= 0 {
		return 0, nil
	}
	return pid, nil
}

func (s *Supervisor) removePID() error {
	if err := os.Remove(s.pidFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
