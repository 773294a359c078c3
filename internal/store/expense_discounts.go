package store

import (
	"context"
	"fmt"

	"expense-ledger/internal/database"
	"expense-ledger/internal/model"
)

const expenseDiscountColumns = `ed.id, ed.expense_id, ed.discount_id, ed.discount_amount, ed.observation, ed.date`

func GetExpenseDiscount(ctx context.Context, db database.Querier, id int) (*model.ExpenseDiscount, error) {
	ed := &model.ExpenseDiscount{}
	err := db.QueryRow(ctx,
		`SELECT `+expenseDiscountColumns+` FROM expense_discounts ed WHERE ed.id = $1`, id,
	).Scan(&ed.ID, &ed.ExpenseID, &ed.DiscountID, &ed.DiscountAmount, &ed.Observation, &ed.Date)
	if err != nil {
		return nil, wrapErr("GetExpenseDiscount", err)
	}
	return ed, nil
}

func InsertExpenseDiscount(ctx context.Context, db database.Querier, ed *model.ExpenseDiscount) error {
	row := db.QueryRow(ctx,
		`INSERT INTO expense_discounts (expense_id, discount_id, discount_amount, observation, date)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		ed.ExpenseID, ed.DiscountID, ed.DiscountAmount, ed.Observation, ed.Date,
	)
	if err := row.Scan(&ed.ID); err != nil {
		return wrapErr("InsertExpenseDiscount", err)
	}
	return nil
}

func UpdateExpenseDiscount(ctx context.Context, db database.Querier, ed *model.ExpenseDiscount) error {
	tag, err := db.Exec(ctx,
		`UPDATE expense_discounts
		 SET discount_id = $1, discount_amount = $2, observation = $3, date = $4, updated_at = NOW()
		 WHERE id = $5 AND expense_id = $6`,
		ed.DiscountID, ed.DiscountAmount, ed.Observation, ed.Date, ed.ID, ed.ExpenseID,
	)
	return expectOne("UpdateExpenseDiscount", tag, err)
}

func DeleteExpenseDiscount(ctx context.Context, db database.Querier, expenseID, id int) error {
	tag, err := db.Exec(ctx, `DELETE FROM expense_discounts WHERE id = $1 AND expense_id = $2`, id, expenseID)
	if err != nil {
		return wrapErr("DeleteExpenseDiscount", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("DeleteExpenseDiscount: %w", ErrNotFound)
	}
	return nil
}
