// Package dashboard renders the spending overview.
package dashboard

import (
	"net/http"
	"time"

	"expense-ledger/internal/database"
	"expense-ledger/internal/handler"
	"expense-ledger/internal/service"
	"expense-ledger/internal/ui"
	"expense-ledger/internal/validation"

	"github.com/labstack/echo/v4"
)

var (
	buildDashboard = service.BuildDashboard
	timeNow        = time.Now
)

// Handler shows the totals of the requested range, defaulting to the
// billing cycle that contains today.
func Handler(db database.Querier, r *ui.Renderer) echo.HandlerFunc {
	return func(c echo.Context) error {
		q, err := handler.BindList(c)
		if err != nil {
			return handler.WebFail(c, err, "/expenses")
		}
		from, to, err := q.Range()
		if err != nil {
			return handler.WebFail(c, validation.Errors{"from": "must be a date formatted as YYYY-MM-DD"}, "/expenses")
		}
		stats, err := buildDashboard(c.Request().Context(), db, from, to, timeNow())
		if err != nil {
			return handler.WebFail(c, err, "/expenses")
		}
		return r.Render(c, http.StatusOK, "Dashboard", map[string]any{
			"stats":   stats,
			"filters": map[string]string{"from": stats.From, "to": stats.To},
		})
	}
}
