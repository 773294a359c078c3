package store

import (
	"context"
	"fmt"

	"expense-ledger/internal/database"
	"expense-ledger/internal/model"
)

const detailColumns = `d.id, d.expense_id, d.name, d.amount, d.quantity, d.observation, d.category_id`

func scanDetail(row scanner) (*model.ExpenseDetail, error) {
	d := &model.ExpenseDetail{}
	if err := row.Scan(&d.ID, &d.ExpenseID, &d.Name, &d.Amount, &d.Quantity, &d.Observation, &d.CategoryID); err != nil {
		return nil, err
	}
	return d, nil
}

// ListDetailsForUpdate returns the expense's details locked for the transaction.
func ListDetailsForUpdate(ctx context.Context, db database.Querier, expenseID int) ([]model.ExpenseDetail, error) {
	rows, err := db.Query(ctx,
		`SELECT `+detailColumns+` FROM expense_details d WHERE d.expense_id = $1 ORDER BY d.id FOR UPDATE`,
		expenseID,
	)
	if err != nil {
		return nil, wrapErr("ListDetailsForUpdate", err)
	}
	defer rows.Close()

	out := []model.ExpenseDetail{}
	for rows.Next() {
		d, err := scanDetail(rows)
		if err != nil {
			return nil, wrapErr("ListDetailsForUpdate", err)
		}
		out = append(out, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("ListDetailsForUpdate", err)
	}
	return out, nil
}

func GetDetailForUpdate(ctx context.Context, db database.Querier, id int) (*model.ExpenseDetail, error) {
	d, err := scanDetail(db.QueryRow(ctx,
		`SELECT `+detailColumns+` FROM expense_details d WHERE d.id = $1 FOR UPDATE`, id,
	))
	if err != nil {
		return nil, wrapErr("GetDetailForUpdate", err)
	}
	return d, nil
}

func CountDetailsForUpdate(ctx context.Context, db database.Querier, expenseID int) (int, error) {
	var n int
	err := db.QueryRow(ctx,
		`SELECT COUNT(*) FROM (SELECT id FROM expense_details WHERE expense_id = $1 FOR UPDATE) d`,
		expenseID,
	).Scan(&n)
	if err != nil {
		return 0, wrapErr("CountDetailsForUpdate", err)
	}
	return n, nil
}

func InsertDetail(ctx context.Context, db database.Querier, d *model.ExpenseDetail) error {
	row := db.QueryRow(ctx,
		`INSERT INTO expense_details (expense_id, name, amount, quantity, observation, category_id)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		d.ExpenseID, d.Name, d.Amount, d.Quantity, d.Observation, d.CategoryID,
	)
	if err := row.Scan(&d.ID); err != nil {
		return wrapErr("InsertDetail", err)
	}
	return nil
}

// UpdateDetail is scoped by expense id so a detail can never move between expenses.
func UpdateDetail(ctx context.Context, db database.Querier, d *model.ExpenseDetail) error {
	tag, err := db.Exec(ctx,
		`UPDATE expense_details
		 SET name = $1, amount = $2, quantity = $3, observation = $4, category_id = $5, updated_at = NOW()
		 WHERE id = $6 AND expense_id = $7`,
		d.Name, d.Amount, d.Quantity, d.Observation, d.CategoryID, d.ID, d.ExpenseID,
	)
	return expectOne("UpdateDetail", tag, err)
}

func DeleteDetail(ctx context.Context, db database.Querier, expenseID, id int) error {
	tag, err := db.Exec(ctx, `DELETE FROM expense_details WHERE id = $1 AND expense_id = $2`, id, expenseID)
	if err != nil {
		return wrapDeleteErr("DeleteDetail", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("DeleteDetail: %w", ErrNotFound)
	}
	return nil
}
