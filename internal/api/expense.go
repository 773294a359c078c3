package api

import (
	"time"

	"expense-ledger/internal/model"
	"expense-ledger/internal/store"
)

// swagger:model api.DetailResponse
type DetailResponse struct {
	ID          int    `json:"id" example:"10"`
	Name        string `json:"name" example:"Rice 5kg"`
	Amount      string `json:"amount" example:"100.00"`
	Quantity    string `json:"quantity" example:"2.00"`
	LineTotal   string `json:"line_total" example:"200.00"`
	Observation string `json:"observation" example:""`
	CategoryID  int    `json:"category_id" example:"3"`
	Category    string `json:"category,omitempty" example:"Groceries"`
}

// swagger:model api.ExpenseDiscountResponse
type ExpenseDiscountResponse struct {
	ID             int    `json:"id" example:"4"`
	DiscountID     int    `json:"discount_id" example:"2"`
	Discount       string `json:"discount,omitempty" example:"Loyalty card"`
	DiscountAmount string `json:"discount_amount" example:"20.00"`
	Observation    string `json:"observation" example:""`
	Date           string `json:"date" example:"2025-03-01"`
}

// swagger:model api.ExpenseResponse
type ExpenseResponse struct {
	ID              int                       `json:"id" example:"1"`
	Name            string                    `json:"name" example:"Supermarket"`
	ExpenseDate     string                    `json:"expense_date" example:"2025-03-01"`
	Observation     string                    `json:"observation" example:""`
	DocumentNumber  string                    `json:"document_number" example:"F-0001"`
	DocumentURL     *string                   `json:"document_url" example:"/storage/documents/1b9d.pdf"`
	PaymentMethodID int                       `json:"payment_method_id" example:"1"`
	PaymentMethod   string                    `json:"payment_method,omitempty" example:"Credit card"`
	Subtotal        string                    `json:"subtotal" example:"250.00"`
	DiscountTotal   string                    `json:"discount_total" example:"20.00"`
	Total           string                    `json:"total" example:"230.00"`
	Tags            []string                  `json:"tags" example:"food,card"`
	Details         []DetailResponse          `json:"details,omitempty"`
	Discounts       []ExpenseDiscountResponse `json:"discounts,omitempty"`
	CreatedAt       time.Time                 `json:"created_at"`
	UpdatedAt       time.Time                 `json:"updated_at"`
}

// NewExpenseResponse flattens e. fileURL turns a stored document path into a
// public URL.
func NewExpenseResponse(e model.Expense, fileURL func(string) string) ExpenseResponse {
	r := ExpenseResponse{
		ID:              e.ID,
		Name:            e.Name,
		ExpenseDate:     e.ExpenseDate.Format(dateLayout),
		Observation:     e.Observation,
		DocumentNumber:  e.DocumentNumber,
		PaymentMethodID: e.PaymentMethodID,
		Subtotal:        e.Subtotal().StringFixed(2),
		DiscountTotal:   e.DiscountTotal().StringFixed(2),
		Total:           e.Total().StringFixed(2),
		Tags:            e.Tags(),
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
	}
	if e.DocumentPath != nil && fileURL != nil {
		u := fileURL(*e.DocumentPath)
		r.DocumentURL = &u
	}
	if e.PaymentMethod != nil {
		r.PaymentMethod = e.PaymentMethod.Name
	}
	for _, d := range e.Details {
		dr := DetailResponse{
			ID:          d.ID,
			Name:        d.Name,
			Amount:      d.Amount.StringFixed(2),
			Quantity:    d.Quantity.StringFixed(2),
			LineTotal:   d.LineTotal().StringFixed(2),
			Observation: d.Observation,
			CategoryID:  d.CategoryID,
		}
		if d.Category != nil {
			dr.Category = d.Category.Name
		}
		r.Details = append(r.Details, dr)
	}
	for _, ed := range e.Discounts {
		er := ExpenseDiscountResponse{
			ID:             ed.ID,
			DiscountID:     ed.DiscountID,
			DiscountAmount: ed.DiscountAmount.StringFixed(2),
			Observation:    ed.Observation,
			Date:           ed.Date.Format(dateLayout),
		}
		if ed.Discount != nil {
			er.Discount = ed.Discount.Name
		}
		r.Discounts = append(r.Discounts, er)
	}
	return r
}

// swagger:model api.ExpenseListResponse
type ExpenseListResponse struct {
	Data        []ExpenseResponse `json:"data"`
	Total       int               `json:"total" example:"42"`
	CurrentPage int               `json:"current_page" example:"1"`
	PerPage     int               `json:"per_page" example:"15"`
	LastPage    int               `json:"last_page" example:"3"`
}

func NewExpenseListResponse(res store.PageResult[model.Expense], fileURL func(string) string) ExpenseListResponse {
	out := ExpenseListResponse{
		Data:        make([]ExpenseResponse, 0, len(res.Items)),
		Total:       res.Total,
		CurrentPage: res.Page,
		PerPage:     res.PerPage,
		LastPage:    res.LastPage,
	}
	for _, e := range res.Items {
		out.Data = append(out.Data, NewExpenseResponse(e, fileURL))
	}
	return out
}
