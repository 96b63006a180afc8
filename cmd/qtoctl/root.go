package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/geocoder89/qtohub/internal/access"
	"github.com/geocoder89/qtohub/internal/actorctx"
	"github.com/geocoder89/qtohub/internal/config"
	"github.com/geocoder89/qtohub/internal/db"
	"github.com/geocoder89/qtohub/internal/domain/user"
	"github.com/geocoder89/qtohub/internal/observability"
	"github.com/geocoder89/qtohub/internal/repo/postgres"
	"github.com/geocoder89/qtohub/internal/service"
	"github.com/geocoder89/qtohub/internal/spreadsheet"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

const defaultTimeout = 2 * time.Minute

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "qtohub-ctl",
		Short:         "qtoctl - maintenance tool for the qtohub database",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		migrateCmd(),
		createUserCmd(),
		exportCmd(),
		importCmd(),
	)

	return root
}

// env is what every subcommand needs once connected.
type env struct {
	cfg  config.Config
	log  *slog.Logger
	pool *pgxpool.Pool
}

func connect(ctx context.Context) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if cfg.StorageDriver != config.StoragePostgres {
		return nil, fmt.Errorf("qtoctl needs STORAGE_DRIVER=%s, got %q", config.StoragePostgres, cfg.StorageDriver)
	}

	pool, err := db.NewPool(ctx, cfg.DBURL)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}

	return &env{cfg: cfg, log: observability.NewLogger(cfg.Env), pool: pool}, nil
}

// withEnv runs fn with a connected env and a bounded context.
func withEnv(fn func(ctx context.Context, e *env) error) error {
	ctx, cancel := config.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	e, err := connect(ctx)
	if err != nil {
		return err
	}
	defer e.pool.Close()

	return fn(ctx, e)
}

// actAs resolves email to a stored user and puts it in ctx so the services
// apply the same ownership rules as the HTTP API.
func (e *env) actAs(ctx context.Context, email string) (context.Context, error) {
	u, err := postgres.NewUsersRepo(e.pool, nil).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, fmt.Errorf("no user with email %q", email)
		}
		return nil, err
	}

	actor := access.Actor{ID: u.ID, Username: u.Username, Role: access.Role(u.Role)}
	return actorctx.WithActor(ctx, actor), nil
}

func (e *env) bridge() *spreadsheet.Bridge {
	projects := postgres.NewProjectsRepo(e.pool, nil)
	projectSvc := service.NewProjects(projects, e.log)
	itemSvc := service.NewItems(postgres.NewItemsRepo(e.pool, nil), projects, e.log)

	return spreadsheet.NewBridge(projectSvc, itemSvc, nil, e.log)
}
