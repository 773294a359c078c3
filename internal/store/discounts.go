package store

import (
	"context"
	"fmt"

	"expense-ledger/internal/database"
	"expense-ledger/internal/model"
)

const discountColumns = `id, name, observation, tags, created_at, updated_at`

func scanDiscount(row scanner) (*model.Discount, error) {
	d := &model.Discount{}
	if err := row.Scan(&d.ID, &d.Name, &d.Observation, &d.Tags, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err
	}
	return d, nil
}

func ListDiscounts(ctx context.Context, db database.Querier, f CatalogFilter) (PageResult[model.Discount], error) {
	pattern := likePattern(f.Search)
	var total int
	if err := db.QueryRow(ctx,
		`SELECT COUNT(*) FROM discounts WHERE ($1 = '' OR name ILIKE $1)`, pattern,
	).Scan(&total); err != nil {
		return PageResult[model.Discount]{}, wrapErr("ListDiscounts", err)
	}

	rows, err := db.Query(ctx,
		`SELECT `+discountColumns+` FROM discounts
		 WHERE ($1 = '' OR name ILIKE $1)
		 ORDER BY name, id LIMIT $2 OFFSET $3`,
		pattern, f.Page.Limit(), f.Page.Offset(),
	)
	if err != nil {
		return PageResult[model.Discount]{}, wrapErr("ListDiscounts", err)
	}
	defer rows.Close()

	var out []model.Discount
	for rows.Next() {
		d, err := scanDiscount(rows)
		if err != nil {
			return PageResult[model.Discount]{}, wrapErr("ListDiscounts", err)
		}
		out = append(out, *d)
	}
	if err := rows.Err(); err != nil {
		return PageResult[model.Discount]{}, wrapErr("ListDiscounts", err)
	}
	return newPageResult(out, total, f.Page), nil
}

func AllDiscounts(ctx context.Context, db database.Querier) ([]model.Discount, error) {
	rows, err := db.Query(ctx, `SELECT `+discountColumns+` FROM discounts ORDER BY name`)
	if err != nil {
		return nil, wrapErr("AllDiscounts", err)
	}
	defer rows.Close()

	out := []model.Discount{}
	for rows.Next() {
		d, err := scanDiscount(rows)
		if err != nil {
			return nil, wrapErr("AllDiscounts", err)
		}
		out = append(out, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("AllDiscounts", err)
	}
	return out, nil
}

func GetDiscount(ctx context.Context, db database.Querier, id int) (*model.Discount, error) {
	d, err := scanDiscount(db.QueryRow(ctx, `SELECT `+discountColumns+` FROM discounts WHERE id = $1`, id))
	if err != nil {
		return nil, wrapErr("GetDiscount", err)
	}
	return d, nil
}

func CreateDiscount(ctx context.Context, db database.Querier, d *model.Discount) (*model.Discount, error) {
	d.Tags = tagsArg(d.Tags)
	row := db.QueryRow(ctx,
		`INSERT INTO discounts (name, observation, tags)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at`,
		d.Name, d.Observation, d.Tags,
	)
	if err := row.Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, wrapErr("CreateDiscount", err)
	}
	return d, nil
}

func UpdateDiscount(ctx context.Context, db database.Querier, d *model.Discount) error {
	d.Tags = tagsArg(d.Tags)
	tag, err := db.Exec(ctx,
		`UPDATE discounts SET name = $1, observation = $2, tags = $3, updated_at = NOW() WHERE id = $4`,
		d.Name, d.Observation, d.Tags, d.ID,
	)
	return expectOne("UpdateDiscount", tag, err)
}

// DeleteDiscount refuses while any expense still carries the discount. The
// explicit count gives a clean ErrInUse; the RESTRICT key covers the race.
func DeleteDiscount(ctx context.Context, db database.Querier, id int) error {
	var uses int
	if err := db.QueryRow(ctx,
		`SELECT COUNT(*) FROM expense_discounts WHERE discount_id = $1`, id,
	).Scan(&uses); err != nil {
		return wrapErr("DeleteDiscount", err)
	}
	if uses > 0 {
		return fmt.Errorf("DeleteDiscount: %w", ErrInUse)
	}

	tag, err := db.Exec(ctx, `DELETE FROM discounts WHERE id = $1`, id)
	if err != nil {
		return wrapDeleteErr("DeleteDiscount", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("DeleteDiscount: %w", ErrNotFound)
	}
	return nil
}
