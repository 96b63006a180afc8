// Package service holds the policy-gated operations over projects and QTO
// items. Every method resolves the caller from the context and evaluates
// an access.Policy before touching a store.
package service

import (
	"context"
	"log/slog"

	"github.com/geocoder89/qtohub/internal/access"
	"github.com/geocoder89/qtohub/internal/actorctx"
	"github.com/geocoder89/qtohub/internal/apperr"
)

const msgNotAuthenticated = "User not authenticated. Please login."

func actorFrom(ctx context.Context) (access.Actor, error) {
	actor, ok := actorctx.From(ctx)
	if !ok {
		return access.Actor{}, apperr.Authentication(msgNotAuthenticated)
	}
	return actor, nil
}

func loggerOrDefault(log *slog.Logger) *slog.Logger {
	if log == nil {
		return slog.Default()
	}
	return log
}
