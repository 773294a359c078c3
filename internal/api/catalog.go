package api

import (
	"sort"
	"strings"

	"expense-ledger/internal/model"
)

// CatalogRequest is the form shared by categories, payment methods and
// discounts. IsActive is ignored for discounts.
// swagger:model api.CatalogRequest
type CatalogRequest struct {
	Name        string   `json:"name" validate:"required,max=255" example:"Groceries"`
	Observation string   `json:"observation" validate:"max=2000" example:""`
	Tags        []string `json:"tags" validate:"max=20,dive,max=50" example:"food,home"`
	IsActive    *bool    `json:"is_active" example:"true"`
}

// Normalize trims the fields and reduces Tags to a sorted set of lowercase
// words.
func (r *CatalogRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Observation = strings.TrimSpace(r.Observation)
	seen := map[string]bool{}
	tags := make([]string, 0, len(r.Tags))
	for _, t := range r.Tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		tags = append(tags, t)
	}
	sort.Strings(tags)
	r.Tags = tags
}

func (r CatalogRequest) active() bool { return r.IsActive == nil || *r.IsActive }

func (r CatalogRequest) ApplyCategory(c *model.Category) {
	c.Name, c.Observation, c.Tags, c.IsActive = r.Name, r.Observation, r.Tags, r.active()
}

func (r CatalogRequest) ApplyPaymentMethod(p *model.PaymentMethod) {
	p.Name, p.Observation, p.Tags, p.IsActive = r.Name, r.Observation, r.Tags, r.active()
}

func (r CatalogRequest) ApplyDiscount(d *model.Discount) {
	d.Name, d.Observation, d.Tags = r.Name, r.Observation, r.Tags
}
