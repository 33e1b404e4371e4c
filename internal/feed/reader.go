// Package feed reads activity events from a JSONL stream and hands
// them to a handler, one line per event.
package feed

import (
	"bufio"
	"context"
	"encoding/json"
	"io"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"timeopt/internal/models"
)

// Lines longer than this are rejected rather than buffered.
const maxLineBytes = 1 << 20

// Handler consumes one parsed event. Returning an error other than
// *models.OutOfOrderError aborts the stream.
type Handler func(*models.ActivityEvent) error

// Stats summarizes one stream pass.
type Stats struct {
	Processed int
	Skipped   int
}

// Reader streams ActivityEvents out of newline-delimited JSON.
type Reader struct {
	logger *zap.Logger
}

func NewReader(logger *zap.Logger) *Reader {
	return &Reader{logger: logger}
}

// Stream parses src line by line until EOF or context cancellation.
// Blank lines, malformed JSON, events without an app name, and
// out-of-order events are counted as skipped; the stream continues.
func (r *Reader) Stream(ctx context.Context, src io.Reader, handle Handler) (Stats, error) {
	var stats Stats

	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	line := 0
	for scanner.Scan() {
		line++
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}

		var event models.ActivityEvent
		if err := json.Unmarshal(raw, &event); err != nil {
			r.logger.Warn("skipping malformed feed line",
				zap.Int("line", line), zap.Error(err))
			stats.Skipped++
			continue
		}
		if event.AppName == "" {
			r.logger.Warn("skipping feed line without app name", zap.Int("line", line))
			stats.Skipped++
			continue
		}
		if event.Timestamp.IsZero() {
			r.logger.Warn("skipping feed line without timestamp", zap.Int("line", line))
			stats.Skipped++
			continue
		}

		if err := handle(&event); err != nil {
			var oooErr *models.OutOfOrderError
			if errors.As(err, &oooErr) {
				r.logger.Warn("skipping out-of-order event",
					zap.Int("line", line),
					zap.Time("last", oooErr.Last),
					zap.Time("got", oooErr.Got))
				stats.Skipped++
				continue
			}
			return stats, errors.Wrapf(err, "handling feed line %d", line)
		}
		stats.Processed++
	}

	if err := scanner.Err(); err != nil {
		return stats, errors.Wrap(err, "reading feed")
	}
	return stats, nil
}
