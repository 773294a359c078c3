package api

import (
	"fmt"
	"time"

	"expense-ledger/internal/store"
)

const dateLayout = "2006-01-02"

// ListQuery carries the paging and filter parameters shared by list endpoints.
type ListQuery struct {
	Page    int    `query:"page" validate:"omitempty,min=1" example:"1"`
	PerPage int    `query:"per_page" validate:"omitempty,min=1,max=100" example:"15"`
	Search  string `query:"search" validate:"max=255" example:"market"`
	From    string `query:"from" validate:"omitempty,datetime=2006-01-02" example:"2025-02-24"`
	To      string `query:"to" validate:"omitempty,datetime=2006-01-02" example:"2025-03-24"`
}

func (q ListQuery) StorePage() store.Page { return store.NewPage(q.Page, q.PerPage) }

// Range parses From and To. A missing bound is returned as nil.
func (q ListQuery) Range() (from, to *time.Time, err error) {
	if from, err = parseDate(q.From); err != nil {
		return nil, nil, fmt.Errorf("from: %w", err)
	}
	if to, err = parseDate(q.To); err != nil {
		return nil, nil, fmt.Errorf("to: %w", err)
	}
	return from, to, nil
}

func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
