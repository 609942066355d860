package middleware

import (
	"context"

	pkgerrors "github.com/angelmondragon/shophub/pkg/errors"
)

type contextKey string

const ctxSessionID contextKey = "session_id"

// SessionIDFromContext returns the shopper session resolved by the Session middleware.
func SessionIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxSessionID).(string); ok {
		return v
	}
	return ""
}

// WithSessionID injects the session identifier into the context.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxSessionID, sessionID)
}

// RequireSessionID is SessionIDFromContext for handlers that cannot run without a session.
func RequireSessionID(ctx context.Context) (string, error) {
	id := SessionIDFromContext(ctx)
	if id == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	return id, nil
}
