package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/qtohub/internal/domain/project"
	"github.com/geocoder89/qtohub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const projectColumns = `id, project_name, project_number, client_name, client_contact, project_address,
	start_date, expected_end_date, project_status, project_description, contract_value, currency,
	key_reference_numbers, created_by_id, created_at, updated_at`

type ProjectsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewProjectsRepo(pool *pgxpool.Pool, prom *observability.Prom) *ProjectsRepo {
	return &ProjectsRepo{pool: pool, prom: prom}
}

func (r *ProjectsRepo) Insert(ctx context.Context, p project.Project) error {
	err := observe(r.prom, "projects.insert", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO projects (`+projectColumns+`)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)`,
			p.ID, p.Name, p.Number, p.ClientName, p.ClientContact, p.Address,
			p.StartDate, p.ExpectedEndDate, string(p.Status), p.Description, p.ContractValue, p.Currency,
			p.KeyReferenceNumbers, p.CreatedByID, p.CreatedAt, p.UpdatedAt,
		)
		return err
	})

	if isUniqueViolation(err) {
		return project.ErrNumberTaken
	}
	return err
}

// List returns projects newest first. A nil ownerID lists every project.
func (r *ProjectsRepo) List(ctx context.Context, ownerID *string) ([]project.Project, error) {
	var out []project.Project

	err := observe(r.prom, "projects.list", func() error {
		rows, err := r.pool.Query(ctx,
			`SELECT `+projectColumns+`
			FROM projects
			WHERE $1::text IS NULL OR created_by_id = $1
			ORDER BY created_at DESC, id DESC`,
			ownerID,
		)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			p, err := scanProject(rows)
			if err != nil {
				return err
			}
			out = append(out, p)
		}
		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	if out == nil {
		out = []project.Project{}
	}
	return out, nil
}

func (r *ProjectsRepo) GetByID(ctx context.Context, id string) (project.Project, error) {
	var p project.Project

	err := observe(r.prom, "projects.get_by_id", func() error {
		var err error
		p, err = scanProject(r.pool.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, id))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return project.Project{}, project.ErrNotFound
		}
		return project.Project{}, err
	}
	return p, nil
}

func (r *ProjectsRepo) Update(ctx context.Context, p project.Project) (project.Project, error) {
	var updated project.Project

	err := observe(r.prom, "projects.update", func() error {
		var err error
		updated, err = scanProject(r.pool.QueryRow(ctx,
			`UPDATE projects SET
				project_name = $2,
				project_number = $3,
				client_name = $4,
				client_contact = $5,
				project_address = $6,
				start_date = $7,
				expected_end_date = $8,
				project_status = $9,
				project_description = $10,
				contract_value = $11,
				currency = $12,
				key_reference_numbers = $13,
				updated_at = $14
			WHERE id = $1
			RETURNING `+projectColumns,
			p.ID, p.Name, p.Number, p.ClientName, p.ClientContact, p.Address,
			p.StartDate, p.ExpectedEndDate, string(p.Status), p.Description, p.ContractValue, p.Currency,
			p.KeyReferenceNumbers, p.UpdatedAt,
		))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return project.Project{}, project.ErrNotFound
		}
		if isUniqueViolation(err) {
			return project.Project{}, project.ErrNumberTaken
		}
		return project.Project{}, err
	}
	return updated, nil
}

// Delete removes the project; its QTO items go with it (ON DELETE CASCADE).
func (r *ProjectsRepo) Delete(ctx context.Context, id string) error {
	var affected int64

	err := observe(r.prom, "projects.delete", func() error {
		tag, err := r.pool.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
		affected = tag.RowsAffected()
		return err
	})

	if err != nil {
		return err
	}
	if affected == 0 {
		return project.ErrNotFound
	}
	return nil
}

func scanProject(row scanner) (project.Project, error) {
	var (
		p      project.Project
		status string
	)

	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Number,
		&p.ClientName,
		&p.ClientContact,
		&p.Address,
		&p.StartDate,
		&p.ExpectedEndDate,
		&status,
		&p.Description,
		&p.ContractValue,
		&p.Currency,
		&p.KeyReferenceNumbers,
		&p.CreatedByID,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	p.Status = project.Status(status)

	return p, err
}
