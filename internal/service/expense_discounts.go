package service

import (
	"context"
	"fmt"
	"time"

	"expense-ledger/internal/database"
	"expense-ledger/internal/model"
	"expense-ledger/internal/store"
	"expense-ledger/internal/validation"

	"github.com/shopspring/decimal"
)

var (
	getExpenseDiscount    = store.GetExpenseDiscount
	insertExpenseDiscount = store.InsertExpenseDiscount
	updateExpenseDiscount = store.UpdateExpenseDiscount
	deleteExpenseDiscount = store.DeleteExpenseDiscount
)

// ExpenseDiscountInput applies a catalog discount to an expense. Date
// defaults to the expense date.
type ExpenseDiscountInput struct {
	DiscountID     int             `json:"discount_id" validate:"required"`
	DiscountAmount decimal.Decimal `json:"discount_amount" validate:"gte=0,lte=9999999999.99"`
	Observation    string          `json:"observation" validate:"max=2000"`
	Date           string          `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

func (in ExpenseDiscountInput) toModel(e *model.Expense) (model.ExpenseDiscount, error) {
	date := e.ExpenseDate
	if in.Date != "" {
		d, err := time.Parse(DateLayout, in.Date)
		if err != nil {
			return model.ExpenseDiscount{}, validation.Errors{"date": "must be a date formatted as YYYY-MM-DD"}
		}
		date = d
	}
	return model.ExpenseDiscount{
		ExpenseID:      e.ID,
		DiscountID:     in.DiscountID,
		DiscountAmount: in.DiscountAmount,
		Observation:    in.Observation,
		Date:           date,
	}, nil
}

func (s *Expenses) ApplyDiscount(ctx context.Context, expenseID int, in ExpenseDiscountInput) (*model.Expense, error) {
	if err := validator.Validate(&in); err != nil {
		return nil, err
	}
	err := database.WithTx(ctx, s.DB, func(q database.Querier) error {
		e, err := getExpenseForUpdate(ctx, q, expenseID)
		if err != nil {
			return err
		}
		ed, err := in.toModel(e)
		if err != nil {
			return err
		}
		return insertExpenseDiscount(ctx, q, &ed)
	})
	if err != nil {
		return nil, s.saveError("ApplyDiscount", err)
	}
	return s.reload(ctx, expenseID)
}

func (s *Expenses) UpdateDiscount(ctx context.Context, expenseID, expenseDiscountID int, in ExpenseDiscountInput) (*model.Expense, error) {
	if err := validator.Validate(&in); err != nil {
		return nil, err
	}
	err := database.WithTx(ctx, s.DB, func(q database.Querier) error {
		e, err := getExpenseForUpdate(ctx, q, expenseID)
		if err != nil {
			return err
		}
		cur, err := getExpenseDiscount(ctx, q, expenseDiscountID)
		if err != nil {
			return err
		}
		if cur.ExpenseID != expenseID {
			return ErrDiscountMismatch
		}
		ed, err := in.toModel(e)
		if err != nil {
			return err
		}
		ed.ID = expenseDiscountID
		return updateExpenseDiscount(ctx, q, &ed)
	})
	if err != nil {
		return nil, s.saveError("UpdateDiscount", err)
	}
	return s.reload(ctx, expenseID)
}

func (s *Expenses) RemoveDiscount(ctx context.Context, expenseID, expenseDiscountID int) error {
	err := database.WithTx(ctx, s.DB, func(q database.Querier) error {
		cur, err := getExpenseDiscount(ctx, q, expenseDiscountID)
		if err != nil {
			return err
		}
		if cur.ExpenseID != expenseID {
			return ErrDiscountMismatch
		}
		return deleteExpenseDiscount(ctx, q, expenseID, expenseDiscountID)
	})
	if err != nil {
		return fmt.Errorf("RemoveDiscount: %w", err)
	}
	return nil
}
