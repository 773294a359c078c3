package store

import (
	"context"
	"fmt"
	"time"

	"expense-ledger/internal/database"
	"expense-ledger/internal/model"
)

const expenseSelect = `SELECT e.id, e.name, e.expense_date, e.observation, e.document_number, e.document_path,
	e.payment_method_id, e.created_at, e.updated_at,
	pm.id, pm.name, pm.observation, pm.tags, pm.is_active, pm.created_at, pm.updated_at
	FROM expenses e
	JOIN payment_methods pm ON pm.id = e.payment_method_id`

type ExpenseFilter struct {
	From   *time.Time
	To     *time.Time
	Search string
	Page   Page
}

func scanExpense(row scanner) (*model.Expense, error) {
	e := &model.Expense{PaymentMethod: &model.PaymentMethod{}}
	pm := e.PaymentMethod
	if err := row.Scan(
		&e.ID,
		&e.Name,
		&e.ExpenseDate,
		&e.Observation,
		&e.DocumentNumber,
		&e.DocumentPath,
		&e.PaymentMethodID,
		&e.CreatedAt,
		&e.UpdatedAt,
		&pm.ID,
		&pm.Name,
		&pm.Observation,
		&pm.Tags,
		&pm.IsActive,
		&pm.CreatedAt,
		&pm.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return e, nil
}

func collectExpenses(ctx context.Context, db database.Querier, op string, sql string, args ...any) ([]model.Expense, error) {
	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return nil, wrapErr(op, err)
	}
	defer rows.Close()

	out := []model.Expense{}
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, wrapErr(op, err)
		}
		out = append(out, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr(op, err)
	}
	return out, nil
}

// ListExpenses returns one page, newest first, with details and discounts loaded.
func ListExpenses(ctx context.Context, db database.Querier, f ExpenseFilter) (PageResult[model.Expense], error) {
	where := `WHERE ($1 = '' OR e.name ILIKE $1 OR e.document_number ILIKE $1)
		AND ($2::date IS NULL OR e.expense_date >= $2)
		AND ($3::date IS NULL OR e.expense_date <= $3)`
	args := []any{likePattern(f.Search), f.From, f.To}

	var total int
	if err := db.QueryRow(ctx, `SELECT COUNT(*) FROM expenses e `+where, args...).Scan(&total); err != nil {
		return PageResult[model.Expense]{}, wrapErr("ListExpenses", err)
	}

	items, err := collectExpenses(ctx, db, "ListExpenses",
		expenseSelect+` `+where+` ORDER BY e.expense_date DESC, e.id DESC LIMIT $4 OFFSET $5`,
		append(args, f.Page.Limit(), f.Page.Offset())...,
	)
	if err != nil {
		return PageResult[model.Expense]{}, err
	}
	if err := LoadExpenseRelations(ctx, db, items); err != nil {
		return PageResult[model.Expense]{}, err
	}
	return newPageResult(items, total, f.Page), nil
}

// ListExpensesBetween loads every expense dated within [from, to] with relations.
func ListExpensesBetween(ctx context.Context, db database.Querier, from, to time.Time) ([]model.Expense, error) {
	items, err := collectExpenses(ctx, db, "ListExpensesBetween",
		expenseSelect+` WHERE e.expense_date BETWEEN $1 AND $2 ORDER BY e.expense_date, e.id`,
		from, to,
	)
	if err != nil {
		return nil, err
	}
	if err := LoadExpenseRelations(ctx, db, items); err != nil {
		return nil, err
	}
	return items, nil
}

// ExpenseDateBounds returns the earliest and latest expense dates. ok is false
// when there are no expenses at all.
func ExpenseDateBounds(ctx context.Context, db database.Querier) (first, last time.Time, ok bool, err error) {
	var lo, hi *time.Time
	if err := db.QueryRow(ctx, `SELECT MIN(expense_date), MAX(expense_date) FROM expenses`).Scan(&lo, &hi); err != nil {
		return time.Time{}, time.Time{}, false, wrapErr("ExpenseDateBounds", err)
	}
	if lo == nil || hi == nil {
		return time.Time{}, time.Time{}, false, nil
	}
	return *lo, *hi, true, nil
}

func GetExpense(ctx context.Context, db database.Querier, id int) (*model.Expense, error) {
	e, err := scanExpense(db.QueryRow(ctx, expenseSelect+` WHERE e.id = $1`, id))
	if err != nil {
		return nil, wrapErr("GetExpense", err)
	}
	items := []model.Expense{*e}
	if err := LoadExpenseRelations(ctx, db, items); err != nil {
		return nil, err
	}
	return &items[0], nil
}

// GetExpenseForUpdate locks the expense row; relations are not loaded.
func GetExpenseForUpdate(ctx context.Context, db database.Querier, id int) (*model.Expense, error) {
	e, err := scanExpense(db.QueryRow(ctx, expenseSelect+` WHERE e.id = $1 FOR UPDATE OF e`, id))
	if err != nil {
		return nil, wrapErr("GetExpenseForUpdate", err)
	}
	return e, nil
}

func CreateExpense(ctx context.Context, db database.Querier, e *model.Expense) error {
	row := db.QueryRow(ctx,
		`INSERT INTO expenses (name, expense_date, observation, document_number, document_path, payment_method_id)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at, updated_at`,
		e.Name,
		e.ExpenseDate,
		e.Observation,
		e.DocumentNumber,
		e.DocumentPath,
		e.PaymentMethodID,
	)
	if err := row.Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return wrapErr("CreateExpense", err)
	}
	return nil
}

func UpdateExpense(ctx context.Context, db database.Querier, e *model.Expense) error {
	tag, err := db.Exec(ctx,
		`UPDATE expenses
		 SET name = $1, expense_date = $2, observation = $3, document_number = $4,
		     document_path = $5, payment_method_id = $6, updated_at = NOW()
		 WHERE id = $7`,
		e.Name,
		e.ExpenseDate,
		e.Observation,
		e.DocumentNumber,
		e.DocumentPath,
		e.PaymentMethodID,
		e.ID,
	)
	return expectOne("UpdateExpense", tag, err)
}

func UpdateExpenseDocument(ctx context.Context, db database.Querier, id int, number string, path *string) error {
	tag, err := db.Exec(ctx,
		`UPDATE expenses SET document_number = $1, document_path = $2, updated_at = NOW() WHERE id = $3`,
		number, path, id,
	)
	return expectOne("UpdateExpenseDocument", tag, err)
}

// DeleteExpense removes the expense; details and discounts go with it.
func DeleteExpense(ctx context.Context, db database.Querier, id int) error {
	tag, err := db.Exec(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	if err != nil {
		return wrapDeleteErr("DeleteExpense", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("DeleteExpense: %w", ErrNotFound)
	}
	return nil
}
