package router

import (
	"errors"
	"net/http"
	"strings"

	_ "expense-ledger/docs"
	"expense-ledger/internal/api"
	"expense-ledger/internal/cache"
	"expense-ledger/internal/database"
	"expense-ledger/internal/handler"
	"expense-ledger/internal/handler/auth"
	"expense-ledger/internal/handler/catalog"
	"expense-ledger/internal/handler/dashboard"
	"expense-ledger/internal/handler/expenses"
	"expense-ledger/internal/handler/users"
	"expense-ledger/internal/metrics"
	"expense-ledger/internal/middleware"
	"expense-ledger/internal/service"
	"expense-ledger/internal/session"
	"expense-ledger/internal/ui"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
)

// Deps is everything the routes need.
type Deps struct {
	DB         database.DB
	Cache      cache.Cache
	Sessions   *session.Store
	Renderer   *ui.Renderer
	Expenses   expenses.Service
	FileURL    func(string) string
	OAuth      service.OAuthProvider
	Metrics    *metrics.HTTPMetrics
	Tokens     auth.TokenTTL
	StorageDir string
}

// Setup registers the web pages, the JSON API and the operational endpoints.
func Setup(e *echo.Echo, d Deps) {
	// HTML forms tunnel PUT, PATCH and DELETE through POST.
	e.Pre(echomw.MethodOverrideWithConfig(echomw.MethodOverrideConfig{
		Getter: echomw.MethodFromForm("_method"),
	}))
	e.HTTPErrorHandler = errorHandler(d.Renderer, e.DefaultHTTPErrorHandler)

	e.Static("/storage", d.StorageDir)
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	if d.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(d.Metrics.Handler()))
	}

	setupAPI(e.Group("/api"), d)
	setupWeb(e, d)
}

func setupAPI(g *echo.Group, d Deps) {
	g.RouteNotFound("/*", func(echo.Context) error { return echo.ErrNotFound })
	g.GET("/ping", handler.PingHandler(d.DB, d.Cache), middleware.RequireAuth)

	g.POST("/auth/login", auth.LoginHandler(d.DB, d.Cache, d.Tokens))
	g.POST("/auth/refresh", auth.RefreshHandler(d.DB, d.Cache, d.Tokens))

	ex := g.Group("/expenses", middleware.RequireAuth)
	ex.GET("", expenses.ListAPIHandler(d.DB, d.FileURL))
	ex.GET("/statistics", expenses.StatisticsAPIHandler(d.DB))
	ex.GET("/:id", expenses.ShowAPIHandler(d.DB, d.FileURL))
	ex.PATCH("/:id/document", expenses.DocumentAPIHandler(d.Expenses, d.FileURL))
}

func setupWeb(e *echo.Echo, d Deps) {
	r := d.Renderer
	r.SetShared(sharedProps)

	web := e.Group("", d.Sessions.Middleware(), middleware.LoadUser(d.DB), r.VersionMiddleware())

	web.GET("/", func(c echo.Context) error { return ui.Redirect(c, "/dashboard") })

	guest := web.Group("", middleware.RequireGuest)
	guest.GET("/login", auth.LoginPageHandler(r))
	guest.GET("/auth/google/redirect", auth.GoogleRedirectHandler(d.OAuth))
	guest.GET("/auth/google/callback", auth.GoogleCallbackHandler(d.DB, d.OAuth))

	app := web.Group("", middleware.RequireLogin)
	app.POST("/logout", auth.LogoutHandler())
	app.POST("/account/api-token", auth.APITokenHandler(d.Cache, d.Tokens))
	app.GET("/dashboard", dashboard.Handler(d.DB, r))

	catalog.Categories().Register(app, d.DB, r)
	catalog.PaymentMethods().Register(app, d.DB, r)
	catalog.Discounts().Register(app, d.DB, r)

	app.GET("/expenses", expenses.IndexHandler(d.DB, r, d.FileURL))
	app.GET("/expenses/create", expenses.CreateHandler(d.DB, r))
	app.POST("/expenses", expenses.StoreHandler(d.Expenses))
	app.GET("/expenses/:id/edit", expenses.EditHandler(d.DB, r, d.FileURL))
	app.PUT("/expenses/:id", expenses.UpdateHandler(d.Expenses))
	app.DELETE("/expenses/:id", expenses.DestroyHandler(d.Expenses))
	app.PUT("/expenses/:id/details/:detail_id", expenses.UpdateDetailHandler(d.Expenses))
	app.DELETE("/expenses/:id/details/:detail_id", expenses.DestroyDetailHandler(d.Expenses))
	app.POST("/expenses/:id/discounts", expenses.ApplyDiscountHandler(d.Expenses))
	app.PUT("/expenses/:id/discounts/:expense_discount_id", expenses.UpdateDiscountHandler(d.Expenses))
	app.DELETE("/expenses/:id/discounts/:expense_discount_id", expenses.RemoveDiscountHandler(d.Expenses))

	admin := web.Group("/users", middleware.RequireWebAdmin)
	admin.GET("", users.IndexHandler(d.DB, r))
	admin.GET("/create", users.CreateHandler(r))
	admin.POST("", users.StoreHandler(d.DB))
	admin.GET("/:id/edit", users.EditHandler(d.DB, r))
	admin.PUT("/:id", users.UpdateHandler(d.DB))
	admin.DELETE("/:id", users.DestroyHandler(d.DB))
	for _, action := range []string{"authorize", "revoke", "promote", "demote"} {
		admin.POST("/:id/"+action, users.TransitionHandler(d.DB, action))
	}
}

// sharedProps is merged into every page: the signed in user and whatever
// the previous request left in the session.
func sharedProps(c echo.Context) map[string]any {
	sess := session.FromContext(c)
	var user *api.UserResponse
	if u := middleware.CurrentUser(c); u != nil {
		res := api.NewUserResponse(*u)
		user = &res
	}
	flash := sess.TakeFlash()
	if flash == nil {
		flash = map[string]string{}
	}
	errs := sess.TakeErrors()
	if errs == nil {
		errs = map[string]string{}
	}
	return map[string]any{
		"auth":   map[string]any{"user": user},
		"flash":  flash,
		"errors": errs,
	}
}

// errorHandler renders error pages for browser requests and leaves JSON
// errors to fallback.
func errorHandler(r *ui.Renderer, fallback echo.HTTPErrorHandler) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		path := c.Request().URL.Path
		if strings.HasPrefix(path, "/api/") || path == "/metrics" || strings.HasPrefix(path, "/swagger/") {
			fallback(err, c)
			return
		}

		status := http.StatusInternalServerError
		message := http.StatusText(status)
		var he *echo.HTTPError
		if errors.As(err, &he) {
			status = he.Code
			if m, ok := he.Message.(string); ok {
				message = m
			}
		}
		if rerr := r.Render(c, status, "Error", map[string]any{"status": status, "message": message}); rerr != nil {
			fallback(err, c)
		}
	}
}
