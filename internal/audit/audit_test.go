package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func logOne(t *testing.T, ctx context.Context, event Event) map[string]any {
	t.Helper()

	var buf bytes.Buffer
	logger := NewSlogLogger(slog.New(slog.NewJSONHandler(&buf, nil)))
	logger.now = func() time.Time { return time.Date(2024, 6, 15, 8, 0, 0, 0, time.FixedZone("PHT", 8*3600)) }

	require.NoError(t, logger.Log(ctx, event))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	return entry
}

func TestSlogLogger_Log(t *testing.T) {
	entry := logOne(t, context.Background(), Event{
		EventType: EventVerificationDecided,
		Subject:   "temp-1718000000000",
		Source:    "verification",
		Success:   true,
		Metadata:  map[string]string{"method": "face", "similarity": "94.00"},
	})

	assert.Equal(t, "audit_event", entry["msg"])
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "audit", entry["component"])
	assert.Equal(t, string(EventVerificationDecided), entry["event_type"])
	assert.Equal(t, "verification", entry["source"])
	assert.Equal(t, "temp-1718000000000", entry["subject"])
	assert.Equal(t, true, entry["success"])
	assert.Equal(t, "2024-06-15T00:00:00Z", entry["occurred_at"])
	assert.Equal(t, map[string]any{"method": "face", "similarity": "94.00"}, entry["metadata"])
	assert.NotContains(t, entry, "actor")
	assert.NotContains(t, entry, "error")

	_, err := uuid.Parse(entry["event_id"].(string))
	assert.NoError(t, err)
}

func TestSlogLogger_Log_FailureIsWarn(t *testing.T) {
	entry := logOne(t, context.Background(), Event{
		EventType: EventImagesAnnotated,
		Source:    "rekognition",
		Error:     "access denied",
	})

	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "access denied", entry["error"])
	assert.Equal(t, false, entry["success"])
}

func TestSlogLogger_Log_ActorFromContext(t *testing.T) {
	moderator := uuid.NewString()
	ctx := WithActor(context.Background(), moderator)

	entry := logOne(t, ctx, Event{
		EventType: EventUserSuspended,
		Subject:   "3f1c2a1e-8c55-4a7e-9d0b-0d6f4f0f2d11",
		Source:    "moderation",
		Success:   true,
	})
	assert.Equal(t, moderator, entry["actor"])

	entry = logOne(t, ctx, Event{EventType: EventWarningSent, Actor: "explicit", Success: true})
	assert.Equal(t, "explicit", entry["actor"], "an explicit actor wins over the context")
}

func TestSlogLogger_Log_KeepsProvidedIDAndTimestamp(t *testing.T) {
	id := uuid.New()
	entry := logOne(t, context.Background(), Event{
		ID:        id,
		Timestamp: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
		EventType: EventWarningSent,
		Success:   true,
	})

	assert.Equal(t, id.String(), entry["event_id"])
	assert.Equal(t, "2024-01-15T10:30:00Z", entry["occurred_at"])
}

func TestActorFrom(t *testing.T) {
	_, ok := ActorFrom(context.Background())
	assert.False(t, ok)

	_, ok = ActorFrom(WithActor(context.Background(), ""))
	assert.False(t, ok)

	actor, ok := ActorFrom(WithActor(context.Background(), "mod-1"))
	assert.True(t, ok)
	assert.Equal(t, "mod-1", actor)
}

func TestNoOpLogger(t *testing.T) {
	var l Logger = &NoOpLogger{}
	assert.NoError(t, l.Log(context.Background(), Event{EventType: EventUserRegistered}))
}
