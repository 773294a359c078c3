// Package expenses serves the expense pages, their detail and discount
// sub-resources, and the read side of the JSON API.
package expenses

import (
	"context"
	"fmt"
	"net/http"

	"expense-ledger/internal/api"
	"expense-ledger/internal/database"
	"expense-ledger/internal/handler"
	"expense-ledger/internal/model"
	"expense-ledger/internal/service"
	"expense-ledger/internal/store"
	"expense-ledger/internal/ui"
	"expense-ledger/internal/validation"

	"github.com/labstack/echo/v4"
)

const indexPath = "/expenses"

var (
	listExpenses         = store.ListExpenses
	getExpense           = store.GetExpense
	activeCategories     = store.ActiveCategories
	activePaymentMethods = store.ActivePaymentMethods
	allDiscounts         = store.AllDiscounts
)

// Service is the write side used by the handlers; *service.Expenses
// implements it.
type Service interface {
	Save(ctx context.Context, id int, in service.ExpenseInput) (*model.Expense, error)
	Delete(ctx context.Context, id int) error
	UpdateDocument(ctx context.Context, id int, in service.DocumentInput) (*model.Expense, error)
	UpdateDetail(ctx context.Context, expenseID, detailID int, in service.DetailInput) (*model.Expense, error)
	DeleteDetail(ctx context.Context, expenseID, detailID int) error
	ApplyDiscount(ctx context.Context, expenseID int, in service.ExpenseDiscountInput) (*model.Expense, error)
	UpdateDiscount(ctx context.Context, expenseID, expenseDiscountID int, in service.ExpenseDiscountInput) (*model.Expense, error)
	RemoveDiscount(ctx context.Context, expenseID, expenseDiscountID int) error
}

func editPath(id int) string { return fmt.Sprintf("%s/%d/edit", indexPath, id) }

// filter turns the list query into a store filter. Bad dates are field errors.
func filter(q api.ListQuery) (store.ExpenseFilter, error) {
	from, to, err := q.Range()
	if err != nil {
		return store.ExpenseFilter{}, validation.Errors{"from": "must be a date formatted as YYYY-MM-DD"}
	}
	return store.ExpenseFilter{From: from, To: to, Search: q.Search, Page: q.StorePage()}, nil
}

// formOptions are the choices offered by the expense form. Inactive
// categories and payment methods are hidden from new input.
func formOptions(ctx context.Context, db database.Querier) (map[string]any, error) {
	categories, err := activeCategories(ctx, db)
	if err != nil {
		return nil, err
	}
	methods, err := activePaymentMethods(ctx, db)
	if err != nil {
		return nil, err
	}
	discounts, err := allDiscounts(ctx, db)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"categories":      categories,
		"payment_methods": methods,
		"discounts":       discounts,
	}, nil
}

func IndexHandler(db database.Querier, r *ui.Renderer, fileURL func(string) string) echo.HandlerFunc {
	return func(c echo.Context) error {
		q, err := handler.BindList(c)
		if err != nil {
			return handler.WebFail(c, err, indexPath)
		}
		f, err := filter(q)
		if err != nil {
			return handler.WebFail(c, err, indexPath)
		}
		res, err := listExpenses(c.Request().Context(), db, f)
		if err != nil {
			return handler.WebFail(c, err, "/dashboard")
		}
		return r.Render(c, http.StatusOK, "Expenses/Index", map[string]any{
			"expenses": api.NewExpenseListResponse(res, fileURL),
			"filters":  map[string]string{"search": q.Search, "from": q.From, "to": q.To},
		})
	}
}

func CreateHandler(db database.Querier, r *ui.Renderer) echo.HandlerFunc {
	return func(c echo.Context) error {
		props, err := formOptions(c.Request().Context(), db)
		if err != nil {
			return handler.WebFail(c, err, indexPath)
		}
		return r.Render(c, http.StatusOK, "Expenses/Create", props)
	}
}

func StoreHandler(svc Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		in, err := bindExpense(c)
		if err != nil {
			return handler.WebFail(c, err, indexPath+"/create")
		}
		e, err := svc.Save(c.Request().Context(), 0, in)
		if err != nil {
			return handler.WebFail(c, err, indexPath+"/create")
		}
		handler.Flash(c, handler.FlashSuccess, "Expense created.")
		return ui.Redirect(c, editPath(e.ID))
	}
}

func EditHandler(db database.Querier, r *ui.Renderer, fileURL func(string) string) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := handler.ParseID(c, "id")
		if err != nil {
			return err
		}
		ctx := c.Request().Context()
		e, err := getExpense(ctx, db, id)
		if err != nil {
			return handler.WebFail(c, err, indexPath)
		}
		props, err := formOptions(ctx, db)
		if err != nil {
			return handler.WebFail(c, err, indexPath)
		}
		props["expense"] = api.NewExpenseResponse(*e, fileURL)
		return r.Render(c, http.StatusOK, "Expenses/Edit", props)
	}
}

func UpdateHandler(svc Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := handler.ParseID(c, "id")
		if err != nil {
			return err
		}
		in, err := bindExpense(c)
		if err != nil {
			return handler.WebFail(c, err, editPath(id))
		}
		if _, err := svc.Save(c.Request().Context(), id, in); err != nil {
			return handler.WebFail(c, err, editPath(id))
		}
		handler.Flash(c, handler.FlashSuccess, "Expense updated.")
		return ui.Redirect(c, editPath(id))
	}
}

func DestroyHandler(svc Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := handler.ParseID(c, "id")
		if err != nil {
			return err
		}
		if err := svc.Delete(c.Request().Context(), id); err != nil {
			return handler.WebFail(c, err, indexPath)
		}
		handler.Flash(c, handler.FlashSuccess, "Expense deleted.")
		return ui.Redirect(c, indexPath)
	}
}

func UpdateDetailHandler(svc Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := handler.ParseID(c, "id")
		if err != nil {
			return err
		}
		detailID, err := handler.ParseID(c, "detail_id")
		if err != nil {
			return err
		}
		in, err := bindDetail(c)
		if err != nil {
			return handler.WebFail(c, err, editPath(id))
		}
		if _, err := svc.UpdateDetail(c.Request().Context(), id, detailID, in); err != nil {
			return handler.WebFail(c, err, editPath(id))
		}
		handler.Flash(c, handler.FlashSuccess, "Detail updated.")
		return ui.Back(c, editPath(id))
	}
}

// DestroyDetailHandler refuses to remove the last detail of an expense.
func DestroyDetailHandler(svc Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := handler.ParseID(c, "id")
		if err != nil {
			return err
		}
		detailID, err := handler.ParseID(c, "detail_id")
		if err != nil {
			return err
		}
		if err := svc.DeleteDetail(c.Request().Context(), id, detailID); err != nil {
			return handler.WebFail(c, err, editPath(id))
		}
		handler.Flash(c, handler.FlashSuccess, "Detail deleted.")
		return ui.Back(c, editPath(id))
	}
}

func ApplyDiscountHandler(svc Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := handler.ParseID(c, "id")
		if err != nil {
			return err
		}
		in, err := bindDiscount(c)
		if err != nil {
			return handler.WebFail(c, err, editPath(id))
		}
		if _, err := svc.ApplyDiscount(c.Request().Context(), id, in); err != nil {
			return handler.WebFail(c, err, editPath(id))
		}
		handler.Flash(c, handler.FlashSuccess, "Discount applied.")
		return ui.Back(c, editPath(id))
	}
}

func UpdateDiscountHandler(svc Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := handler.ParseID(c, "id")
		if err != nil {
			return err
		}
		edID, err := handler.ParseID(c, "expense_discount_id")
		if err != nil {
			return err
		}
		in, err := bindDiscount(c)
		if err != nil {
			return handler.WebFail(c, err, editPath(id))
		}
		if _, err := svc.UpdateDiscount(c.Request().Context(), id, edID, in); err != nil {
			return handler.WebFail(c, err, editPath(id))
		}
		handler.Flash(c, handler.FlashSuccess, "Discount updated.")
		return ui.Back(c, editPath(id))
	}
}

func RemoveDiscountHandler(svc Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := handler.ParseID(c, "id")
		if err != nil {
			return err
		}
		edID, err := handler.ParseID(c, "expense_discount_id")
		if err != nil {
			return err
		}
		if err := svc.RemoveDiscount(c.Request().Context(), id, edID); err != nil {
			return handler.WebFail(c, err, editPath(id))
		}
		handler.Flash(c, handler.FlashSuccess, "Discount removed.")
		return ui.Back(c, editPath(id))
	}
}
