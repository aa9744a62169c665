package auth

import (
	"context"
	"errors"
)

type ctxKey int

const (
	ctxUserID ctxKey = iota
	ctxRole
	ctxShift
)

func WithIdentity(ctx context.Context, userID, role, shift string) context.Context {
	ctx = context.WithValue(ctx, ctxUserID, userID)
	ctx = context.WithValue(ctx, ctxRole, role)
	ctx = context.WithValue(ctx, ctxShift, shift)
	return ctx
}

func UserID(ctx context.Context) (string, error) {
	v := ctx.Value(ctxUserID)
	if s, ok := v.(string); ok && s != "" {
		return s, nil
	}
	return "", errors.New("user_id not in context")
}

func Role(ctx context.Context) (string, error) {
	v := ctx.Value(ctxRole)
	if s, ok := v.(string); ok && s != "" {
		return s, nil
	}
	return "", errors.New("role not in context")
}

// Shift returns the session's selected shift. Empty is valid for roles that
// are not shift-scoped, so only the missing-key case is an error.
func Shift(ctx context.Context) (string, error) {
	v := ctx.Value(ctxShift)
	if s, ok := v.(string); ok {
		return s, nil
	}
	return "", errors.New("shift not in context")
}
