// Package catalog serves the categories, payment methods and discounts that
// expenses refer to. The three share one form and one set of pages.
package catalog

import (
	"context"
	"net/http"

	"expense-ledger/internal/api"
	"expense-ledger/internal/database"
	"expense-ledger/internal/handler"
	"expense-ledger/internal/model"
	"expense-ledger/internal/store"
	"expense-ledger/internal/ui"

	"github.com/labstack/echo/v4"
)

// Resource binds the store functions of one catalog table to its pages.
type Resource[T any] struct {
	Label     string
	Path      string
	Component string

	List   func(ctx context.Context, db database.Querier, f store.CatalogFilter) (store.PageResult[T], error)
	Get    func(ctx context.Context, db database.Querier, id int) (*T, error)
	Create func(ctx context.Context, db database.Querier, v *T) (*T, error)
	Update func(ctx context.Context, db database.Querier, v *T) error
	Delete func(ctx context.Context, db database.Querier, id int) error
	Apply  func(req api.CatalogRequest, v *T, id int)
}

func Categories() Resource[model.Category] {
	return Resource[model.Category]{
		Label: "Category", Path: "/categories", Component: "Categories",
		List: store.ListCategories, Get: store.GetCategory, Create: store.CreateCategory,
		Update: store.UpdateCategory, Delete: store.DeleteCategory,
		Apply: func(req api.CatalogRequest, v *model.Category, id int) { req.ApplyCategory(v); v.ID = id },
	}
}

func PaymentMethods() Resource[model.PaymentMethod] {
	return Resource[model.PaymentMethod]{
		Label: "Payment method", Path: "/payment-methods", Component: "PaymentMethods",
		List: store.ListPaymentMethods, Get: store.GetPaymentMethod, Create: store.CreatePaymentMethod,
		Update: store.UpdatePaymentMethod, Delete: store.DeletePaymentMethod,
		Apply: func(req api.CatalogRequest, v *model.PaymentMethod, id int) { req.ApplyPaymentMethod(v); v.ID = id },
	}
}

func Discounts() Resource[model.Discount] {
	return Resource[model.Discount]{
		Label: "Discount", Path: "/discounts", Component: "Discounts",
		List: store.ListDiscounts, Get: store.GetDiscount, Create: store.CreateDiscount,
		Update: store.UpdateDiscount, Delete: store.DeleteDiscount,
		Apply: func(req api.CatalogRequest, v *model.Discount, id int) { req.ApplyDiscount(v); v.ID = id },
	}
}

func (rs Resource[T]) IndexHandler(db database.Querier, r *ui.Renderer) echo.HandlerFunc {
	return func(c echo.Context) error {
		q, err := handler.BindList(c)
		if err != nil {
			return handler.WebFail(c, err, rs.Path)
		}
		res, err := rs.List(c.Request().Context(), db, store.CatalogFilter{Search: q.Search, Page: q.StorePage()})
		if err != nil {
			return handler.WebFail(c, err, "/dashboard")
		}
		return r.Render(c, http.StatusOK, rs.Component+"/Index", map[string]any{
			"items":   res,
			"filters": map[string]string{"search": q.Search},
		})
	}
}

func (rs Resource[T]) CreateHandler(r *ui.Renderer) echo.HandlerFunc {
	return func(c echo.Context) error {
		return r.Render(c, http.StatusOK, rs.Component+"/Create", nil)
	}
}

func (rs Resource[T]) bind(c echo.Context) (api.CatalogRequest, error) {
	var req api.CatalogRequest
	if err := c.Bind(&req); err != nil {
		return req, echo.NewHTTPError(http.StatusBadRequest, "invalid form data")
	}
	req.Normalize()
	if err := c.Validate(&req); err != nil {
		return req, err
	}
	return req, nil
}

func (rs Resource[T]) StoreHandler(db database.Querier) echo.HandlerFunc {
	return func(c echo.Context) error {
		req, err := rs.bind(c)
		if err != nil {
			return handler.WebFail(c, err, rs.Path+"/create")
		}
		var v T
		rs.Apply(req, &v, 0)
		if _, err := rs.Create(c.Request().Context(), db, &v); err != nil {
			return handler.WebFail(c, err, rs.Path+"/create")
		}
		handler.Flash(c, handler.FlashSuccess, rs.Label+" created.")
		return ui.Redirect(c, rs.Path)
	}
}

func (rs Resource[T]) EditHandler(db database.Querier, r *ui.Renderer) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := handler.ParseID(c, "id")
		if err != nil {
			return err
		}
		v, err := rs.Get(c.Request().Context(), db, id)
		if err != nil {
			return handler.WebFail(c, err, rs.Path)
		}
		return r.Render(c, http.StatusOK, rs.Component+"/Edit", map[string]any{"item": v})
	}
}

func (rs Resource[T]) UpdateHandler(db database.Querier) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := handler.ParseID(c, "id")
		if err != nil {
			return err
		}
		req, err := rs.bind(c)
		if err != nil {
			return handler.WebFail(c, err, rs.Path)
		}
		var v T
		rs.Apply(req, &v, id)
		if err := rs.Update(c.Request().Context(), db, &v); err != nil {
			return handler.WebFail(c, err, rs.Path)
		}
		handler.Flash(c, handler.FlashSuccess, rs.Label+" updated.")
		return ui.Redirect(c, rs.Path)
	}
}

// DestroyHandler refuses rows that expenses still reference.
func (rs Resource[T]) DestroyHandler(db database.Querier) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := handler.ParseID(c, "id")
		if err != nil {
			return err
		}
		if err := rs.Delete(c.Request().Context(), db, id); err != nil {
			return handler.WebFail(c, err, rs.Path)
		}
		handler.Flash(c, handler.FlashSuccess, rs.Label+" deleted.")
		return ui.Redirect(c, rs.Path)
	}
}

// Register mounts the six resource routes on g.
func (rs Resource[T]) Register(g *echo.Group, db database.Querier, r *ui.Renderer) {
	g.GET(rs.Path, rs.IndexHandler(db, r))
	g.GET(rs.Path+"/create", rs.CreateHandler(r))
	g.POST(rs.Path, rs.StoreHandler(db))
	g.GET(rs.Path+"/:id/edit", rs.EditHandler(db, r))
	g.PUT(rs.Path+"/:id", rs.UpdateHandler(db))
	g.DELETE(rs.Path+"/:id", rs.DestroyHandler(db))
}
