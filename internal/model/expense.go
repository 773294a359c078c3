package model

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

type Expense struct {
	ID              int       `db:"id" json:"id"`
	Name            string    `db:"name" json:"name"`
	ExpenseDate     time.Time `db:"expense_date" json:"expense_date"`
	Observation     string    `db:"observation" json:"observation"`
	DocumentNumber  string    `db:"document_number" json:"document_number"`
	DocumentPath    *string   `db:"document_path" json:"document_path"`
	PaymentMethodID int       `db:"payment_method_id" json:"payment_method_id"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`

	PaymentMethod *PaymentMethod    `json:"payment_method,omitempty"`
	Details       []ExpenseDetail   `json:"details"`
	Discounts     []ExpenseDiscount `json:"discounts"`
}

type ExpenseDetail struct {
	ID          int             `db:"id" json:"id"`
	ExpenseID   int             `db:"expense_id" json:"expense_id"`
	Name        string          `db:"name" json:"name"`
	Amount      decimal.Decimal `db:"amount" json:"amount"`
	Quantity    decimal.Decimal `db:"quantity" json:"quantity"`
	Observation string          `db:"observation" json:"observation"`
	CategoryID  int             `db:"category_id" json:"category_id"`

	Category *Category `json:"category,omitempty"`
}

type ExpenseDiscount struct {
	ID             int             `db:"id" json:"id"`
	ExpenseID      int             `db:"expense_id" json:"expense_id"`
	DiscountID     int             `db:"discount_id" json:"discount_id"`
	DiscountAmount decimal.Decimal `db:"discount_amount" json:"discount_amount"`
	Observation    string          `db:"observation" json:"observation"`
	Date           time.Time       `db:"date" json:"date"`

	Discount *Discount `json:"discount,omitempty"`
}

// LineTotal is amount × quantity.
func (d ExpenseDetail) LineTotal() decimal.Decimal {
	return d.Amount.Mul(d.Quantity)
}

func (e Expense) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, d := range e.Details {
		sum = sum.Add(d.LineTotal())
	}
	return sum
}

func (e Expense) DiscountTotal() decimal.Decimal {
	sum := decimal.Zero
	for _, d := range e.Discounts {
		sum = sum.Add(d.DiscountAmount)
	}
	return sum
}

// Total never goes below zero, however large the discounts are.
func (e Expense) Total() decimal.Decimal {
	total := e.Subtotal().Sub(e.DiscountTotal())
	if total.IsNegative() {
		return decimal.Zero
	}
	return total
}

// Tags is the sorted, de-duplicated union of the tags on the detail categories,
// the payment method and the applied discounts. Relations that were not
// loaded contribute nothing.
func (e Expense) Tags() []string {
	seen := map[string]struct{}{}
	add := func(tags []string) {
		for _, t := range tags {
			if t != "" {
				seen[t] = struct{}{}
			}
		}
	}
	for _, d := range e.Details {
		if d.Category != nil {
			add(d.Category.Tags)
		}
	}
	if e.PaymentMethod != nil {
		add(e.PaymentMethod.Tags)
	}
	for _, d := range e.Discounts {
		if d.Discount != nil {
			add(d.Discount.Tags)
		}
	}

	out := make([]string, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
