package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/qtohub/internal/domain/qtoitem"
	"github.com/geocoder89/qtohub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const itemColumns = `id, project_id, csi_code, item_description, quantity, unit, unit_rate, total_cost,
	notes, is_boq_item, boq_division, created_by_id, created_at, updated_at`

type ItemsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewItemsRepo(pool *pgxpool.Pool, prom *observability.Prom) *ItemsRepo {
	return &ItemsRepo{pool: pool, prom: prom}
}

func (r *ItemsRepo) Insert(ctx context.Context, it qtoitem.Item) error {
	return observe(r.prom, "qto_items.insert", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO qto_items (`+itemColumns+`)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
			it.ID, it.ProjectID, it.CSICode, it.Description, it.Quantity, it.Unit, it.UnitRate, it.TotalCost,
			it.Notes, boqFlag(it.IsBOQItem), it.BOQDivision, it.CreatedByID, it.CreatedAt, it.UpdatedAt,
		)
		return err
	})
}

func (r *ItemsRepo) ListByProject(ctx context.Context, projectID string) ([]qtoitem.Item, error) {
	out := []qtoitem.Item{}

	err := observe(r.prom, "qto_items.list_by_project", func() error {
		rows, err := r.pool.Query(ctx,
			`SELECT `+itemColumns+`
			FROM qto_items
			WHERE project_id = $1
			ORDER BY created_at DESC, id DESC`,
			projectID,
		)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			it, err := scanItem(rows)
			if err != nil {
				return err
			}
			out = append(out, it)
		}
		return rows.Err()
	})

	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ItemsRepo) GetByID(ctx context.Context, id string) (qtoitem.Item, error) {
	var it qtoitem.Item

	err := observe(r.prom, "qto_items.get_by_id", func() error {
		var err error
		it, err = scanItem(r.pool.QueryRow(ctx, `SELECT `+itemColumns+` FROM qto_items WHERE id = $1`, id))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return qtoitem.Item{}, qtoitem.ErrNotFound
		}
		return qtoitem.Item{}, err
	}
	return it, nil
}

func (r *ItemsRepo) Update(ctx context.Context, it qtoitem.Item) (qtoitem.Item, error) {
	var updated qtoitem.Item

	err := observe(r.prom, "qto_items.update", func() error {
		var err error
		updated, err = scanItem(r.pool.QueryRow(ctx,
			`UPDATE qto_items SET
				csi_code = $2,
				item_description = $3,
				quantity = $4,
				unit = $5,
				unit_rate = $6,
				total_cost = $7,
				notes = $8,
				is_boq_item = $9,
				boq_division = $10,
				updated_at = $11
			WHERE id = $1
			RETURNING `+itemColumns,
			it.ID, it.CSICode, it.Description, it.Quantity, it.Unit, it.UnitRate, it.TotalCost,
			it.Notes, boqFlag(it.IsBOQItem), it.BOQDivision, it.UpdatedAt,
		))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return qtoitem.Item{}, qtoitem.ErrNotFound
		}
		return qtoitem.Item{}, err
	}
	return updated, nil
}

func (r *ItemsRepo) Delete(ctx context.Context, id string) error {
	var affected int64

	err := observe(r.prom, "qto_items.delete", func() error {
		tag, err := r.pool.Exec(ctx, `DELETE FROM qto_items WHERE id = $1`, id)
		affected = tag.RowsAffected()
		return err
	})

	if err != nil {
		return err
	}
	if affected == 0 {
		return qtoitem.ErrNotFound
	}
	return nil
}

// is_boq_item is stored as 0/1.
func boqFlag(b bool) int16 {
	if b {
		return 1
	}
	return 0
}

func scanItem(row scanner) (qtoitem.Item, error) {
	var (
		it  qtoitem.Item
		boq int16
	)

	err := row.Scan(
		&it.ID,
		&it.ProjectID,
		&it.CSICode,
		&it.Description,
		&it.Quantity,
		&it.Unit,
		&it.UnitRate,
		&it.TotalCost,
		&it.Notes,
		&boq,
		&it.BOQDivision,
		&it.CreatedByID,
		&it.CreatedAt,
		&it.UpdatedAt,
	)
	it.IsBOQItem = boq != 0

	return it, err
}
