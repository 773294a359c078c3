package expenses

import (
	"net/http"
	"time"

	"expense-ledger/internal/api"
	"expense-ledger/internal/database"
	"expense-ledger/internal/handler"
	"expense-ledger/internal/service"
	"expense-ledger/internal/validation"

	"github.com/labstack/echo/v4"
)

var (
	buildDashboard = service.BuildDashboard
	timeNow        = time.Now
)

// ListAPIHandler returns a page of expenses.
// @Summary     List expenses
// @Description Newest first. from and to bound the expense date, search matches name and document number
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Param       page     query    int    false "page number"
// @Param       per_page query    int    false "page size (max 100)"
// @Param       search   query    string false "search term"
// @Param       from     query    string false "first date (YYYY-MM-DD)"
// @Param       to       query    string false "last date (YYYY-MM-DD)"
// @Success     200      {object} api.ExpenseListResponse
// @Failure     401      {object} api.ErrorResponse
// @Failure     422      {object} api.ValidationErrorResponse
// @Router      /expenses [get]
func ListAPIHandler(db database.Querier, fileURL func(string) string) echo.HandlerFunc {
	return func(c echo.Context) error {
		q, err := handler.BindList(c)
		if err != nil {
			return handler.APIFail(c, err)
		}
		f, err := filter(q)
		if err != nil {
			return handler.APIFail(c, err)
		}
		res, err := listExpenses(c.Request().Context(), db, f)
		if err != nil {
			return handler.APIFail(c, err)
		}
		return c.JSON(http.StatusOK, api.NewExpenseListResponse(res, fileURL))
	}
}

// ShowAPIHandler returns one expense with its details and discounts.
// @Summary     Get expense
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Param       id  path     int true "expense id"
// @Success     200 {object} api.ExpenseResponse
// @Failure     404 {object} api.ErrorResponse
// @Router      /expenses/{id} [get]
func ShowAPIHandler(db database.Querier, fileURL func(string) string) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := handler.ParseID(c, "id")
		if err != nil {
			return err
		}
		e, err := getExpense(c.Request().Context(), db, id)
		if err != nil {
			return handler.APIFail(c, err)
		}
		return c.JSON(http.StatusOK, api.NewExpenseResponse(*e, fileURL))
	}
}

// DocumentAPIHandler changes the document number and file of an expense.
// @Summary     Update expense document
// @Description Multipart form or JSON. A new file replaces the stored one; delete_document removes it
// @Tags        expenses
// @Accept      multipart/form-data
// @Produce     json
// @Security    BearerAuth
// @Param       id              path     int    true  "expense id"
// @Param       document_number formData string false "document number"
// @Param       delete_document formData bool   false "remove the stored file"
// @Param       document        formData file   false "jpeg, png, webp, gif or pdf"
// @Success     200             {object} api.ExpenseResponse
// @Failure     404             {object} api.ErrorResponse
// @Failure     422             {object} api.ValidationErrorResponse
// @Router      /expenses/{id}/document [patch]
func DocumentAPIHandler(svc Service, fileURL func(string) string) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := handler.ParseID(c, "id")
		if err != nil {
			return err
		}
		in, err := bindDocument(c)
		if err != nil {
			return handler.APIFail(c, err)
		}
		e, err := svc.UpdateDocument(c.Request().Context(), id, in)
		if err != nil {
			return handler.APIFail(c, err)
		}
		return c.JSON(http.StatusOK, api.NewExpenseResponse(*e, fileURL))
	}
}

// StatisticsAPIHandler aggregates the expenses of a date range. Without from
// and to the current billing cycle is used.
// @Summary     Expense statistics
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Param       from query    string false "first date (YYYY-MM-DD)"
// @Param       to   query    string false "last date (YYYY-MM-DD)"
// @Success     200  {object} service.Dashboard
// @Failure     422  {object} api.ValidationErrorResponse
// @Router      /expenses/statistics [get]
func StatisticsAPIHandler(db database.Querier) echo.HandlerFunc {
	return func(c echo.Context) error {
		q, err := handler.BindList(c)
		if err != nil {
			return handler.APIFail(c, err)
		}
		from, to, err := q.Range()
		if err != nil {
			return handler.APIFail(c, validation.Errors{"from": "must be a date formatted as YYYY-MM-DD"})
		}
		d, err := buildDashboard(c.Request().Context(), db, from, to, timeNow())
		if err != nil {
			return handler.APIFail(c, err)
		}
		return c.JSON(http.StatusOK, d)
	}
}
