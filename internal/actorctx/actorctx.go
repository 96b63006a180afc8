package actorctx

import (
	"context"

	"github.com/geocoder89/qtohub/internal/access"
)

type ctxKey struct{}

// WithActor attaches the authenticated caller to ctx. Services read it
// back with From before every policy decision.
func WithActor(ctx context.Context, actor access.Actor) context.Context {
	return context.WithValue(ctx, ctxKey{}, actor)
}

func From(ctx context.Context) (access.Actor, bool) {
	v, ok := ctx.Value(ctxKey{}).(access.Actor)

	return v, ok && v.ID != ""
}
