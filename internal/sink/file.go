package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"timeopt/internal/models"
)

const (
	defaultStatusName = "status.json"
	defaultStatusDir  = ".config/timeopt"
)

// FileSink writes status snapshots as a JSON file. Writes go through a
// temp file and rename so readers always see either the previous or
// the new snapshot, never a partial one.
type FileSink struct {
	path string
}

// DefaultStatusPath returns the conventional status file location.
func DefaultStatusPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	dir := filepath.Join(homeDir, defaultStatusDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create status directory: %w", err)
	}

	return filepath.Join(dir, defaultStatusName), nil
}

// NewFileSink creates a file sink. An empty path uses the default
// location.
func NewFileSink(path string) (*FileSink, error) {
	if path == "" {
		var err error
		path, err = DefaultStatusPath()
		if err != nil {
			return nil, err
		}
	}
	return &FileSink{path: path}, nil
}

// WriteStatus serializes the snapshot atomically.
func (s *FileSink) WriteStatus(_ context.Context, status models.OptimizationStatus) error {
	data, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal status: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write status file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace status file: %w", err)
	}
	return nil
}

// ReadStatus loads the last written snapshot, used by the CLI status
// command.
func (s *FileSink) ReadStatus() (*models.OptimizationStatus, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read status file: %w", err)
	}
	var status models.OptimizationStatus
	if err := json.Unmarshal(data, &status); err != nil {
		return nil, fmt.Errorf("failed to parse status file: %w", err)
	}
	return &status, nil
}

// Close is a no-op for the file sink.
func (s *FileSink) Close() error {
	return nil
}
