package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"timeopt/internal/models"
)

const defaultNudgeName = "nudges.jsonl"

// FileNudgeSink appends created nudges to a JSON-lines log that
// notification surfaces can tail. One nudge per line, append-only.
type FileNudgeSink struct {
	mu   sync.Mutex
	path string
}

// DefaultNudgePath returns the conventional nudge log location.
func DefaultNudgePath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	dir := filepath.Join(homeDir, defaultStatusDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create nudge log directory: %w", err)
	}

	return filepath.Join(dir, defaultNudgeName), nil
}

// NewFileNudgeSink creates a file-backed nudge sink. An empty path
// uses the default location.
func NewFileNudgeSink(path string) (*FileNudgeSink, error) {
	if path == "" {
		var err error
		path, err = DefaultNudgePath()
		if err != nil {
			return nil, err
		}
	}
	return &FileNudgeSink{path: path}, nil
}

// WriteNudge appends one nudge as a JSON line.
func (s *FileNudgeSink) WriteNudge(_ context.Context, nudge models.Nudge) error {
	data, err := json.Marshal(nudge)
	if err != nil {
		return fmt.Errorf("failed to marshal nudge: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open nudge log: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to append nudge: %w", err)
	}
	return nil
}
