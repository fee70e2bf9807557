package audit

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventImagesAnnotated     EventType = "IMAGES_ANNOTATED"
	EventFacesDetected       EventType = "FACES_DETECTED"
	EventVerificationDecided EventType = "VERIFICATION_DECIDED"
	EventUserRegistered      EventType = "USER_REGISTERED"
	EventUserSuspended       EventType = "USER_SUSPENDED"
	EventWarningSent         EventType = "WARNING_SENT"
)

// Event is one auditable step in the verification or moderation flow.
// Subject is the registrant or user the event is about; Actor is the
// moderator who caused it, empty for anonymous verification calls.
type Event struct {
	ID        uuid.UUID
	Timestamp time.Time
	EventType EventType
	Subject   string
	Actor     string
	Source    string
	Success   bool
	Error     string
	Metadata  map[string]string
}

type Logger interface {
	Log(ctx context.Context, event Event) error
}

type actorKey struct{}

// WithActor tags ctx so that events logged under it carry the actor.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFrom returns the actor stored by WithActor.
func ActorFrom(ctx context.Context) (string, bool) {
	actor, ok := ctx.Value(actorKey{}).(string)
	return actor, ok && actor != ""
}

// SlogLogger writes events as structured records on a dedicated
// "audit" component logger. Failed steps are logged at warn level.
type SlogLogger struct {
	logger *slog.Logger
	now    func() time.Time
}

func NewSlogLogger(logger *slog.Logger) *SlogLogger {
	return &SlogLogger{
		logger: logger.With("component", "audit"),
		now:    time.Now,
	}
}

func (l *SlogLogger) Log(ctx context.Context, event Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = l.now().UTC()
	}
	if event.Actor == "" {
		event.Actor, _ = ActorFrom(ctx)
	}

	attrs := []slog.Attr{
		slog.String("event_id", event.ID.String()),
		slog.String("event_type", string(event.EventType)),
		slog.Time("occurred_at", event.Timestamp),
		slog.String("source", event.Source),
		slog.Bool("success", event.Success),
	}
	if event.Subject != "" {
		attrs = append(attrs, slog.String("subject", event.Subject))
	}
	if event.Actor != "" {
		attrs = append(attrs, slog.String("actor", event.Actor))
	}
	if event.Error != "" {
		attrs = append(attrs, slog.String("error", event.Error))
	}
	if len(event.Metadata) > 0 {
		attrs = append(attrs, slog.Attr{Key: "metadata", Value: slog.GroupValue(metadataAttrs(event.Metadata)...)})
	}

	level := slog.LevelInfo
	if !event.Success {
		level = slog.LevelWarn
	}
	l.logger.LogAttrs(ctx, level, "audit_event", attrs...)
	return nil
}

func metadataAttrs(metadata map[string]string) []slog.Attr {
	keys := make([]string, 0, len(metadata))
	for k := range metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	attrs := make([]slog.Attr, 0, len(keys))
	for _, k := range keys {
		attrs = append(attrs, slog.String(k, metadata[k]))
	}
	return attrs
}

// NoOpLogger discards events.
type NoOpLogger struct{}

func (l *NoOpLogger) Log(_ context.Context, _ Event) error {
	return nil
}
