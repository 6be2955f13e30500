//go:build unix

package supervisor

import (
	"errors"
	"syscall"
)

func detached() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setsid: true}
}

func isRunning(pid int) bool {
	err := syscall.Kill(pid, 0)
	return err == nil || errors.Is(err, syscall.EPERM)
}

func terminate(pid int) error {
	return syscall.Kill(pid, syscall.SIGTERM)
}

func kill(pid int) error {
	return syscall.Kill(pid, syscall.SIGKILL)
}
