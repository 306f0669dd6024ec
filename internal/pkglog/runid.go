package pkglog

import (
	"context"

	"github.com/google/uuid"
)

type runIDContextKey struct{}

// RunID returns the run id stored in ctx, or "".
func RunID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(runIDContextKey{}).(string)
	return id
}

// SetRunID stores id in ctx.
func SetRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDContextKey{}, id)
}

// NewRun stores a fresh random run id in ctx and returns both.
func NewRun(ctx context.Context) (context.Context, string) {
	id := uuid.NewString()
	return SetRunID(ctx, id), id
}
