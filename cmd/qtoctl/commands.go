package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/geocoder89/qtohub/internal/access"
	"github.com/geocoder89/qtohub/internal/apperr"
	"github.com/geocoder89/qtohub/internal/db"
	"github.com/geocoder89/qtohub/internal/domain/user"
	"github.com/geocoder89/qtohub/internal/repo/postgres"
	"github.com/geocoder89/qtohub/internal/security"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(func(ctx context.Context, e *env) error {
				if err := db.Migrate(ctx, e.pool); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
				return nil
			})
		},
	}
}

func createUserCmd() *cobra.Command {
	var email, password, name, role string

	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create a user with the given role",
		Long: `Create a user directly in the database.

Examples:
  qtoctl create-user --email=pm@example.com --password=secret123 --name="Jane PM" --role="Project Manager"
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			r := access.Role(role)
			if !r.Valid() {
				return fmt.Errorf("unknown role %q (want %q, %q or %q)", role, access.RoleAdmin, access.RoleProjectManager, access.RoleDataEntry)
			}
			if len(password) < 8 {
				return fmt.Errorf("password must be at least 8 characters")
			}

			return withEnv(func(ctx context.Context, e *env) error {
				hash, err := security.HashPassword(password)
				if err != nil {
					return err
				}

				u, err := postgres.NewUsersRepo(e.pool, nil).Create(ctx, user.New(email, hash, name, string(r)))
				if err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s) id=%s\n", u.Email, u.Role, u.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "User email (required)")
	cmd.Flags().StringVar(&password, "password", "", "User password (required)")
	cmd.Flags().StringVar(&name, "name", "", "Full name")
	cmd.Flags().StringVar(&role, "role", string(access.RoleDataEntry), "Role")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func exportCmd() *cobra.Command {
	var as, projectID, out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a project's QTO items to an xlsx workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(func(ctx context.Context, e *env) error {
				ctx, err := e.actAs(ctx, as)
				if err != nil {
					return err
				}

				x, err := e.bridge().Export(ctx, projectID)
				if err != nil {
					return describe(err)
				}

				path := out
				if path == "" {
					path = x.FileName
				} else if info, statErr := os.Stat(path); statErr == nil && info.IsDir() {
					path = filepath.Join(path, x.FileName)
				}

				if err := os.WriteFile(path, x.Content, 0o644); err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&as, "as", "", "Email of the user to act as (required)")
	cmd.Flags().StringVar(&projectID, "project", "", "Project ID (required)")
	cmd.Flags().StringVar(&out, "out", "", "Output file or directory (default: generated name in cwd)")
	_ = cmd.MarkFlagRequired("as")
	_ = cmd.MarkFlagRequired("project")

	return cmd
}

func importCmd() *cobra.Command {
	var as, projectID, file string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import QTO items from an xlsx workbook into a project",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !strings.EqualFold(filepath.Ext(file), ".xlsx") {
				return fmt.Errorf("only .xlsx files are supported")
			}

			f, err := os.Open(file)
			if err != nil {
				return err
			}
			defer f.Close()

			return withEnv(func(ctx context.Context, e *env) error {
				ctx, err := e.actAs(ctx, as)
				if err != nil {
					return err
				}

				res, err := e.bridge().Import(ctx, projectID, f)
				if err != nil {
					return describe(err)
				}

				w := cmd.OutOrStdout()
				fmt.Fprintln(w, res.Message)
				for _, msg := range res.Errors {
					fmt.Fprintf(w, "  %s\n", msg)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&as, "as", "", "Email of the user to act as (required)")
	cmd.Flags().StringVar(&projectID, "project", "", "Project ID (required)")
	cmd.Flags().StringVar(&file, "file", "", "Path to the .xlsx file (required)")
	_ = cmd.MarkFlagRequired("as")
	_ = cmd.MarkFlagRequired("project")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

// describe swaps domain errors for their user-facing message.
func describe(err error) error {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return errors.New(apperr.MessageOf(err))
	}
	return err
}
