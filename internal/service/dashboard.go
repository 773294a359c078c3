package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"expense-ledger/internal/database"
	"expense-ledger/internal/model"
	"expense-ledger/internal/store"

	"github.com/shopspring/decimal"
)

const (
	billingCycleDay = 24
	topItemsLimit   = 10
)

var (
	expenseDateBounds   = store.ExpenseDateBounds
	listExpensesBetween = store.ListExpensesBetween
)

type DateRange struct {
	From time.Time
	To   time.Time
}

type Amount struct {
	Label string          `json:"label"`
	Total decimal.Decimal `json:"total"`
}

type Share struct {
	Label      string          `json:"label"`
	Total      decimal.Decimal `json:"total"`
	Percentage decimal.Decimal `json:"percentage"`
}

type Dashboard struct {
	From            string          `json:"from"`
	To              string          `json:"to"`
	Total           decimal.Decimal `json:"total"`
	ExpenseCount    int             `json:"expense_count"`
	DetailCount     int             `json:"detail_count"`
	ByDay           []Amount        `json:"by_day"`
	TopItems        []Share         `json:"top_items"`
	ByCategory      []Amount        `json:"by_category"`
	ByPaymentMethod []Amount        `json:"by_payment_method"`
	ByDiscount      []Amount        `json:"by_discount"`
}

// BillingCycle returns the cycle containing now's calendar day: from the 24th
// of one month to the 24th of the next, both days included. Dates are UTC
// midnights, like DATE columns.
func BillingCycle(now time.Time) DateRange {
	y, m, d := now.Date()
	if d < billingCycleDay {
		m--
	}
	from := time.Date(y, m, billingCycleDay, 0, 0, 0, 0, time.UTC)
	return DateRange{From: from, To: from.AddDate(0, 1, 0)}
}

// BuildDashboard aggregates the expenses dated within [from, to]. Missing
// bounds fall back to the billing cycle around now. The query is clamped to
// the dates that actually hold expenses; the reported range is the requested one.
func BuildDashboard(ctx context.Context, db database.Querier, from, to *time.Time, now time.Time) (*Dashboard, error) {
	r := BillingCycle(now)
	if from != nil {
		r.From = truncateDay(*from)
	}
	if to != nil {
		r.To = truncateDay(*to)
	}
	if r.To.Before(r.From) {
		r.From, r.To = r.To, r.From
	}

	first, last, ok, err := expenseDateBounds(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("BuildDashboard: %w", err)
	}

	var expenses []model.Expense
	if ok {
		q := r
		if q.From.Before(first) {
			q.From = first
		}
		if q.To.After(last) {
			q.To = last
		}
		if !q.From.After(q.To) {
			if expenses, err = listExpensesBetween(ctx, db, q.From, q.To); err != nil {
				return nil, fmt.Errorf("BuildDashboard: %w", err)
			}
		}
	}

	d := Aggregate(expenses)
	d.From = r.From.Format(DateLayout)
	d.To = r.To.Format(DateLayout)
	return &d, nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Aggregate computes every dashboard figure from a loaded expense set.
// Totals per day and payment method use the net expense total; per item and
// category use gross line totals; per discount uses the discount amounts.
func Aggregate(expenses []model.Expense) Dashboard {
	d := Dashboard{Total: decimal.Zero}
	byDay := map[string]decimal.Decimal{}
	byItem := map[string]decimal.Decimal{}
	byCategory := map[string]decimal.Decimal{}
	byPayment := map[string]decimal.Decimal{}
	byDiscount := map[string]decimal.Decimal{}
	gross := decimal.Zero

	for _, e := range expenses {
		total := e.Total()
		d.Total = d.Total.Add(total)
		d.ExpenseCount++

		day := e.ExpenseDate.Format(DateLayout)
		byDay[day] = byDay[day].Add(total)

		pm := "Unknown"
		if e.PaymentMethod != nil {
			pm = e.PaymentMethod.Name
		}
		byPayment[pm] = byPayment[pm].Add(total)

		for _, det := range e.Details {
			d.DetailCount++
			line := det.LineTotal()
			gross = gross.Add(line)

			name := strings.TrimSpace(det.Name)
			byItem[name] = byItem[name].Add(line)

			cat := "Uncategorized"
			if det.Category != nil {
				cat = det.Category.Name
			}
			byCategory[cat] = byCategory[cat].Add(line)
		}
		for _, disc := range e.Discounts {
			label := "Discount"
			if disc.Discount != nil {
				label = disc.Discount.Name
			}
			byDiscount[label] = byDiscount[label].Add(disc.DiscountAmount)
		}
	}

	d.ByDay = sortedAmounts(byDay, func(a, b Amount) bool { return a.Label < b.Label })
	d.ByCategory = sortedAmounts(byCategory, byTotalDesc)
	d.ByPaymentMethod = sortedAmounts(byPayment, byTotalDesc)
	d.ByDiscount = sortedAmounts(byDiscount, byTotalDesc)

	items := sortedAmounts(byItem, byTotalDesc)
	if len(items) > topItemsLimit {
		items = items[:topItemsLimit]
	}
	d.TopItems = make([]Share, 0, len(items))
	hundred := decimal.NewFromInt(100)
	for _, it := range items {
		pct := decimal.Zero
		if gross.IsPositive() {
			pct = it.Total.Mul(hundred).Div(gross).Round(2)
		}
		d.TopItems = append(d.TopItems, Share{Label: it.Label, Total: it.Total, Percentage: pct})
	}
	return d
}

func byTotalDesc(a, b Amount) bool {
	if c := a.Total.Cmp(b.Total); c != 0 {
		return c > 0
	}
	return a.Label < b.Label
}

func sortedAmounts(m map[string]decimal.Decimal, less func(a, b Amount) bool) []Amount {
	out := make([]Amount, 0, len(m))
	for label, total := range m {
		out = append(out, Amount{Label: label, Total: total})
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}
