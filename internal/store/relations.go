package store

import (
	"context"

	"expense-ledger/internal/database"
	"expense-ledger/internal/model"
)

// LoadExpenseRelations fills Details (with Category) and Discounts (with
// Discount) for every expense in place, using two queries for the whole set.
func LoadExpenseRelations(ctx context.Context, db database.Querier, expenses []model.Expense) error {
	if len(expenses) == 0 {
		return nil
	}
	ids := make([]int, len(expenses))
	index := make(map[int]int, len(expenses))
	for i := range expenses {
		ids[i] = expenses[i].ID
		index[expenses[i].ID] = i
		expenses[i].Details = []model.ExpenseDetail{}
		expenses[i].Discounts = []model.ExpenseDiscount{}
	}

	rows, err := db.Query(ctx,
		`SELECT `+detailColumns+`,
		        c.id, c.name, c.observation, c.tags, c.is_active, c.created_at, c.updated_at
		 FROM expense_details d
		 JOIN categories c ON c.id = d.category_id
		 WHERE d.expense_id = ANY($1)
		 ORDER BY d.expense_id, d.id`,
		ids,
	)
	if err != nil {
		return wrapErr("LoadExpenseRelations", err)
	}
	for rows.Next() {
		d := model.ExpenseDetail{Category: &model.Category{}}
		c := d.Category
		if err := rows.Scan(
			&d.ID, &d.ExpenseID, &d.Name, &d.Amount, &d.Quantity, &d.Observation, &d.CategoryID,
			&c.ID, &c.Name, &c.Observation, &c.Tags, &c.IsActive, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			rows.Close()
			return wrapErr("LoadExpenseRelations", err)
		}
		i := index[d.ExpenseID]
		expenses[i].Details = append(expenses[i].Details, d)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return wrapErr("LoadExpenseRelations", err)
	}

	rows, err = db.Query(ctx,
		`SELECT `+expenseDiscountColumns+`,
		        di.id, di.name, di.observation, di.tags, di.created_at, di.updated_at
		 FROM expense_discounts ed
		 JOIN discounts di ON di.id = ed.discount_id
		 WHERE ed.expense_id = ANY($1)
		 ORDER BY ed.expense_id, ed.id`,
		ids,
	)
	if err != nil {
		return wrapErr("LoadExpenseRelations", err)
	}
	defer rows.Close()
	for rows.Next() {
		ed := model.ExpenseDiscount{Discount: &model.Discount{}}
		di := ed.Discount
		if err := rows.Scan(
			&ed.ID, &ed.ExpenseID, &ed.DiscountID, &ed.DiscountAmount, &ed.Observation, &ed.Date,
			&di.ID, &di.Name, &di.Observation, &di.Tags, &di.CreatedAt, &di.UpdatedAt,
		); err != nil {
			return wrapErr("LoadExpenseRelations", err)
		}
		i := index[ed.ExpenseID]
		expenses[i].Discounts = append(expenses[i].Discounts, ed)
	}
	if err := rows.Err(); err != nil {
		return wrapErr("LoadExpenseRelations", err)
	}
	return nil
}
