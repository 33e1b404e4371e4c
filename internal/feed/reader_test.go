package feed

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"timeopt/internal/models"
)

const sampleFeed = `{"timestamp":"2025-06-02T09:00:00Z","app_name":"GoLand","window_title":"reader.go"}

{"timestamp":"2025-06-02T09:05:00Z","app_name":"Slack"}
not json at all
{"timestamp":"2025-06-02T09:06:00Z","window_title":"no app"}
{"window_title":"no timestamp","app_name":"Chrome"}
{"timestamp":"2025-06-02T09:10:00Z","app_name":"Chrome","url":"https://example.com"}
`

func TestStreamParsesAndSkips(t *testing.T) {
	r := NewReader(zap.NewNop())

	var apps []string
	stats, err := r.Stream(context.Background(), strings.NewReader(sampleFeed), func(e *models.ActivityEvent) error {
		apps = append(apps, e.AppName)
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"GoLand", "Slack", "Chrome"}, apps)
	assert.Equal(t, 3, stats.Processed)
	assert.Equal(t, 3, stats.Skipped)
}

func TestStreamSkipsOutOfOrderEvents(t *testing.T) {
	r := NewReader(zap.NewNop())

	feed := `{"timestamp":"2025-06-02T09:00:00Z","app_name":"GoLand"}
{"timestamp":"2025-06-02T08:00:00Z","app_name":"Slack"}
{"timestamp":"2025-06-02T09:30:00Z","app_name":"Chrome"}
`

	var last time.Time
	stats, err := r.Stream(context.Background(), strings.NewReader(feed), func(e *models.ActivityEvent) error {
		if !last.IsZero() && e.Timestamp.Before(last) {
			return &models.OutOfOrderError{Last: last, Got: e.Timestamp}
		}
		last = e.Timestamp
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Processed)
	assert.Equal(t, 1, stats.Skipped)
}

func TestStreamAbortsOnHandlerError(t *testing.T) {
	r := NewReader(zap.NewNop())
	boom := errors.New("boom")

	stats, err := r.Stream(context.Background(), strings.NewReader(sampleFeed), func(*models.ActivityEvent) error {
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.Zero(t, stats.Processed)
}

func TestStreamHonorsContextCancellation(t *testing.T) {
	r := NewReader(zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Stream(ctx, strings.NewReader(sampleFeed), func(*models.ActivityEvent) error {
		t.Fatal("handler must not run after cancellation")
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}
