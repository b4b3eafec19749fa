package ctxutil

import (
	"context"

	"github.com/google/uuid"
)

type ctxKey string

const (
	sessionIDKey ctxKey = "session_id"
	attemptIDKey ctxKey = "attempt_id"
)

// WithSessionID stores the study session ID in the context.
func WithSessionID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, sessionIDKey, id)
}

// SessionIDFromCtx extracts the study session ID from the context.
// Returns uuid.Nil and false if the value is missing, nil UUID, or wrong type.
func SessionIDFromCtx(ctx context.Context) (uuid.UUID, bool) {
	return idFromCtx(ctx, sessionIDKey)
}

// WithAttemptID stores the exam attempt ID in the context.
func WithAttemptID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, attemptIDKey, id)
}

// AttemptIDFromCtx extracts the exam attempt ID from the context.
func AttemptIDFromCtx(ctx context.Context) (uuid.UUID, bool) {
	return idFromCtx(ctx, attemptIDKey)
}

// LogAttrs returns the IDs present in ctx as slog key-value pairs.
func LogAttrs(ctx context.Context) []any {
	var attrs []any
	if id, ok := SessionIDFromCtx(ctx); ok {
		attrs = append(attrs, string(sessionIDKey), id.String())
	}
	if id, ok := AttemptIDFromCtx(ctx); ok {
		attrs = append(attrs, string(attemptIDKey), id.String())
	}
	return attrs
}

func idFromCtx(ctx context.Context, key ctxKey) (uuid.UUID, bool) {
	id, ok := ctx.Value(key).(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}
