// Package events publishes verification outcomes on NATS.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/retroconnect/idverify/internal/domain"
)

// DefaultSubject carries one message per decided verification attempt.
const DefaultSubject = "identity.verification.completed"

// Conn is the part of *nats.Conn the publisher uses.
type Conn interface {
	Publish(subj string, data []byte) error
	Close()
}

// VerificationCompletedMessage is the payload published per attempt.
type VerificationCompletedMessage struct {
	AttemptID  string    `json:"attempt_id"`
	UserID     string    `json:"user_id"`
	IDType     string    `json:"id_type"`
	Match      bool      `json:"match"`
	Method     string    `json:"method"`
	Similarity float64   `json:"similarity"`
	DecidedAt  time.Time `json:"decided_at"`
}

type Publisher struct {
	conn    Conn
	subject string
	logger  *slog.Logger
}

// Connect dials NATS and returns a publisher on subject.
func Connect(url, subject string, logger *slog.Logger) (*Publisher, error) {
	conn, err := nats.Connect(url,
		nats.Name("idverify"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	logger.Info("connected to NATS", "url", url)
	return NewPublisher(conn, subject, logger), nil
}

func NewPublisher(conn Conn, subject string, logger *slog.Logger) *Publisher {
	if subject == "" {
		subject = DefaultSubject
	}
	return &Publisher{
		conn:    conn,
		subject: subject,
		logger:  logger.With("component", "events"),
	}
}

func (p *Publisher) PublishVerification(ctx context.Context, attempt *domain.VerificationAttempt) error {
	msg := VerificationCompletedMessage{
		AttemptID:  attempt.ID.String(),
		UserID:     attempt.UserRef,
		IDType:     attempt.IDType,
		Match:      attempt.Match,
		Method:     string(attempt.Method),
		Similarity: attempt.Similarity,
		DecidedAt:  attempt.CreatedAt,
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal verification event: %w", err)
	}

	if err := p.conn.Publish(p.subject, data); err != nil {
		return fmt.Errorf("publish verification event: %w", err)
	}

	p.logger.DebugContext(ctx, "verification event published", "attempt_id", msg.AttemptID)
	return nil
}

func (p *Publisher) Close() {
	if p.conn != nil {
		p.conn.Close()
		p.logger.Info("NATS connection closed")
	}
}

// NoopPublisher drops every event; used when NATS is not configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishVerification(context.Context, *domain.VerificationAttempt) error {
	return nil
}

func (NoopPublisher) Close() {}
