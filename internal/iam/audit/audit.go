// Package audit emits write-once security audit events. Events go to the
// structured log under a fixed type so a downstream collector can filter
// them; nothing in this repository ever reads them back.
package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/kyralabs/iamcore/pkg/slogx"
)

// Event statuses.
const (
	StatusSuccess = "success"
	StatusFail    = "fail"
)

// Actions recorded by the IAM handlers.
const (
	ActionLogin          = "user.login"
	ActionRegister       = "user.register"
	ActionPasswordChange = "user.pw.change"
	ActionProfileUpdate  = "user.profile.update"
	ActionProfileDelete  = "user.profile.delete"
)

// Event is a single audit record.
type Event struct {
	Action string
	UserID string
	Status string
	Meta   map[string]any
}

// Sink records audit events.
type Sink interface {
	Record(ctx context.Context, e Event)
}

// Logger is the default Sink, writing events through the contextual slog
// logger.
type Logger struct {
	base *slog.Logger
}

// NewLogger builds an audit sink over the given base logger. A nil base
// falls back to the context/request logger at record time.
func NewLogger(base *slog.Logger) *Logger {
	return &Logger{base: base}
}

func (l *Logger) Record(ctx context.Context, e Event) {
	log := l.base
	if log == nil {
		log = slogx.FromContext(ctx)
	}

	if e.Status == "" {
		e.Status = StatusSuccess
	}

	attrs := []any{
		"type", "iam_audit",
		"timestamp", time.Now().UTC().Format(time.RFC3339),
		"action", e.Action,
		"user_id", e.UserID,
		"status", e.Status,
	}
	for k, v := range e.Meta {
		attrs = append(attrs, k, v)
	}

	log.Info("audit_event", attrs...)
}
