// Package daemon guards against two engine instances sharing the same
// database and status sink, using a PID file.
package daemon

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/pkg/errors"
)

const (
	defaultPIDName = "timeopt.pid"
	defaultPIDDir  = ".config/timeopt"
)

// Guard is a PID-file lock for the engine process.
type Guard struct {
	pidFile string
}

// DefaultPIDPath returns the conventional PID file location.
func DefaultPIDPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to get home directory")
	}
	dir := filepath.Join(homeDir, defaultPIDDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errors.Wrap(err, "failed to create pid directory")
	}
	return filepath.Join(dir, defaultPIDName), nil
}

// New creates a guard. An empty path uses the default location.
func New(pidFile string) (*Guard, error) {
	if pidFile == "" {
		var err error
		pidFile, err = DefaultPIDPath()
		if err != nil {
			return nil, err
		}
	}
	return &Guard{pidFile: pidFile}, nil
}

// Acquire writes this process's PID, failing if another live instance
// holds the file. A stale file from a dead process is replaced.
func (g *Guard) Acquire() error {
	running, pid, err := g.IsRunning()
	if err != nil {
		return err
	}
	if running {
		return errors.Errorf("another engine instance is running (pid %d)", pid)
	}
	pidData := strconv.Itoa(os.Getpid())
	if err := os.WriteFile(g.pidFile, []byte(pidData), 0644); err != nil {
		return errors.Wrap(err, "failed to write pid file")
	}
	return nil
}

// Release removes the PID file. Safe to call when nothing was acquired.
func (g *Guard) Release() error {
	if err := os.Remove(g.pidFile); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "failed to remove pid file")
	}
	return nil
}

// IsRunning reports whether the PID in the file belongs to a live
// process. A missing or stale file means not running.
func (g *Guard) IsRunning() (bool, int, error) {
	data, err := os.ReadFile(g.pidFile)
	if err != nil {
		if os.IsNotExist(err) {
			return false, 0, nil
		}
		return false, 0, errors.Wrap(err, "failed to read pid file")
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return false, 0, errors.Wrap(err, "invalid pid file contents")
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return false, 0, nil
	}
	if err := process.Signal(syscall.Signal(0)); err != nil {
		// Dead process; clean up the stale file.
		_ = g.Release()
		return false, 0, nil
	}
	return true, pid, nil
}
