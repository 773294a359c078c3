package store

import (
	"context"
	"fmt"

	"expense-ledger/internal/database"
	"expense-ledger/internal/model"
)

const paymentMethodColumns = `id, name, observation, tags, is_active, created_at, updated_at`

func scanPaymentMethod(row scanner) (*model.PaymentMethod, error) {
	p := &model.PaymentMethod{}
	if err := row.Scan(&p.ID, &p.Name, &p.Observation, &p.Tags, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return p, nil
}

func ListPaymentMethods(ctx context.Context, db database.Querier, f CatalogFilter) (PageResult[model.PaymentMethod], error) {
	pattern := likePattern(f.Search)
	var total int
	if err := db.QueryRow(ctx,
		`SELECT COUNT(*) FROM payment_methods WHERE ($1 = '' OR name ILIKE $1)`, pattern,
	).Scan(&total); err != nil {
		return PageResult[model.PaymentMethod]{}, wrapErr("ListPaymentMethods", err)
	}

	rows, err := db.Query(ctx,
		`SELECT `+paymentMethodColumns+` FROM payment_methods
		 WHERE ($1 = '' OR name ILIKE $1)
		 ORDER BY name, id LIMIT $2 OFFSET $3`,
		pattern, f.Page.Limit(), f.Page.Offset(),
	)
	if err != nil {
		return PageResult[model.PaymentMethod]{}, wrapErr("ListPaymentMethods", err)
	}
	defer rows.Close()

	var out []model.PaymentMethod
	for rows.Next() {
		p, err := scanPaymentMethod(rows)
		if err != nil {
			return PageResult[model.PaymentMethod]{}, wrapErr("ListPaymentMethods", err)
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return PageResult[model.PaymentMethod]{}, wrapErr("ListPaymentMethods", err)
	}
	return newPageResult(out, total, f.Page), nil
}

func ActivePaymentMethods(ctx context.Context, db database.Querier) ([]model.PaymentMethod, error) {
	rows, err := db.Query(ctx, `SELECT `+paymentMethodColumns+` FROM payment_methods WHERE is_active ORDER BY name`)
	if err != nil {
		return nil, wrapErr("ActivePaymentMethods", err)
	}
	defer rows.Close()

	out := []model.PaymentMethod{}
	for rows.Next() {
		p, err := scanPaymentMethod(rows)
		if err != nil {
			return nil, wrapErr("ActivePaymentMethods", err)
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("ActivePaymentMethods", err)
	}
	return out, nil
}

func GetPaymentMethod(ctx context.Context, db database.Querier, id int) (*model.PaymentMethod, error) {
	p, err := scanPaymentMethod(db.QueryRow(ctx, `SELECT `+paymentMethodColumns+` FROM payment_methods WHERE id = $1`, id))
	if err != nil {
		return nil, wrapErr("GetPaymentMethod", err)
	}
	return p, nil
}

func CreatePaymentMethod(ctx context.Context, db database.Querier, p *model.PaymentMethod) (*model.PaymentMethod, error) {
	p.Tags = tagsArg(p.Tags)
	row := db.QueryRow(ctx,
		`INSERT INTO payment_methods (name, observation, tags, is_active)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at`,
		p.Name, p.Observation, p.Tags, p.IsActive,
	)
	if err := row.Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, wrapErr("CreatePaymentMethod", err)
	}
	return p, nil
}

func UpdatePaymentMethod(ctx context.Context, db database.Querier, p *model.PaymentMethod) error {
	p.Tags = tagsArg(p.Tags)
	tag, err := db.Exec(ctx,
		`UPDATE payment_methods SET name = $1, observation = $2, tags = $3, is_active = $4, updated_at = NOW()
		 WHERE id = $5`,
		p.Name, p.Observation, p.Tags, p.IsActive, p.ID,
	)
	return expectOne("UpdatePaymentMethod", tag, err)
}

func DeletePaymentMethod(ctx context.Context, db database.Querier, id int) error {
	tag, err := db.Exec(ctx, `DELETE FROM payment_methods WHERE id = $1`, id)
	if err != nil {
		return wrapDeleteErr("DeletePaymentMethod", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("DeletePaymentMethod: %w", ErrNotFound)
	}
	return nil
}
