package store

import (
	"context"
	"fmt"

	"expense-ledger/internal/database"
	"expense-ledger/internal/model"
)

const categoryColumns = `id, name, observation, tags, is_active, created_at, updated_at`

type CatalogFilter struct {
	Search string
	Page   Page
}

func scanCategory(row scanner) (*model.Category, error) {
	c := &model.Category{}
	if err := row.Scan(&c.ID, &c.Name, &c.Observation, &c.Tags, &c.IsActive, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return c, nil
}

func ListCategories(ctx context.Context, db database.Querier, f CatalogFilter) (PageResult[model.Category], error) {
	pattern := likePattern(f.Search)
	var total int
	if err := db.QueryRow(ctx,
		`SELECT COUNT(*) FROM categories WHERE ($1 = '' OR name ILIKE $1)`, pattern,
	).Scan(&total); err != nil {
		return PageResult[model.Category]{}, wrapErr("ListCategories", err)
	}

	rows, err := db.Query(ctx,
		`SELECT `+categoryColumns+` FROM categories
		 WHERE ($1 = '' OR name ILIKE $1)
		 ORDER BY name, id LIMIT $2 OFFSET $3`,
		pattern, f.Page.Limit(), f.Page.Offset(),
	)
	if err != nil {
		return PageResult[model.Category]{}, wrapErr("ListCategories", err)
	}
	defer rows.Close()

	var out []model.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return PageResult[model.Category]{}, wrapErr("ListCategories", err)
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return PageResult[model.Category]{}, wrapErr("ListCategories", err)
	}
	return newPageResult(out, total, f.Page), nil
}

// ActiveCategories feeds select inputs on the expense form.
func ActiveCategories(ctx context.Context, db database.Querier) ([]model.Category, error) {
	rows, err := db.Query(ctx, `SELECT `+categoryColumns+` FROM categories WHERE is_active ORDER BY name`)
	if err != nil {
		return nil, wrapErr("ActiveCategories", err)
	}
	defer rows.Close()

	out := []model.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, wrapErr("ActiveCategories", err)
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("ActiveCategories", err)
	}
	return out, nil
}

func GetCategory(ctx context.Context, db database.Querier, id int) (*model.Category, error) {
	c, err := scanCategory(db.QueryRow(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id))
	if err != nil {
		return nil, wrapErr("GetCategory", err)
	}
	return c, nil
}

func CreateCategory(ctx context.Context, db database.Querier, c *model.Category) (*model.Category, error) {
	c.Tags = tagsArg(c.Tags)
	row := db.QueryRow(ctx,
		`INSERT INTO categories (name, observation, tags, is_active)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at`,
		c.Name, c.Observation, c.Tags, c.IsActive,
	)
	if err := row.Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, wrapErr("CreateCategory", err)
	}
	return c, nil
}

func UpdateCategory(ctx context.Context, db database.Querier, c *model.Category) error {
	c.Tags = tagsArg(c.Tags)
	tag, err := db.Exec(ctx,
		`UPDATE categories SET name = $1, observation = $2, tags = $3, is_active = $4, updated_at = NOW()
		 WHERE id = $5`,
		c.Name, c.Observation, c.Tags, c.IsActive, c.ID,
	)
	return expectOne("UpdateCategory", tag, err)
}

// DeleteCategory fails with ErrInUse while any expense detail references the category.
func DeleteCategory(ctx context.Context, db database.Querier, id int) error {
	tag, err := db.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return wrapDeleteErr("DeleteCategory", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("DeleteCategory: %w", ErrNotFound)
	}
	return nil
}
