package db

import (
	"context"
	"errors"

	"github.com/geocoder89/qtohub/internal/access"
	"github.com/geocoder89/qtohub/internal/config"
	"github.com/geocoder89/qtohub/internal/domain/user"
	"github.com/geocoder89/qtohub/internal/security"
)

type UserStore interface {
	Create(ctx context.Context, u user.User) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
}

// EnsureAdminUser creates the bootstrap Admin account when ADMIN_EMAIL and
// ADMIN_PASSWORD are configured and no user holds that email yet.
func EnsureAdminUser(ctx context.Context, users UserStore, cfg config.Config) (created bool, err error) {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return false, nil
	}

	_, err = users.GetByEmail(ctx, cfg.AdminEmail)

	if err == nil {
		return false, nil
	}

	if !errors.Is(err, user.ErrNotFound) {
		return false, err
	}

	hash, err := security.HashPassword(cfg.AdminPassword)

	if err != nil {
		return false, err
	}

	u := user.New(cfg.AdminEmail, hash, cfg.AdminName, string(access.RoleAdmin))

	if _, err = users.Create(ctx, u); err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}
