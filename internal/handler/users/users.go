package users

import (
	"net/http"

	"expense-ledger/internal/api"
	"expense-ledger/internal/database"
	"expense-ledger/internal/handler"
	"expense-ledger/internal/middleware"
	"expense-ledger/internal/model"
	"expense-ledger/internal/service"
	"expense-ledger/internal/store"
	"expense-ledger/internal/ui"

	"github.com/labstack/echo/v4"
)

var (
	listUsers     = store.ListUsers
	getUserByID   = store.GetUserByID
	createUser    = service.CreateUser
	updateUser    = service.UpdateUser
	deleteUser    = service.DeleteUser
	setAuthorized = service.SetAuthorized
	setAdmin      = service.SetAdmin
)

const indexPath = "/users"

func toResponses(us []model.User) []api.UserResponse {
	out := make([]api.UserResponse, 0, len(us))
	for _, u := range us {
		out = append(out, api.NewUserResponse(u))
	}
	return out
}

// IndexHandler lists users. status narrows the list to one of
// unauthorized, authorized or admin.
func IndexHandler(db database.Querier, r *ui.Renderer) echo.HandlerFunc {
	return func(c echo.Context) error {
		q, err := handler.BindList(c)
		if err != nil {
			return handler.WebFail(c, err, indexPath)
		}
		f := store.UserFilter{Search: q.Search, Page: q.StorePage()}
		yes, no := true, false
		status := c.QueryParam("status")
		switch model.UserState(status) {
		case model.StateUnauthorized:
			f.Authorized = &no
		case model.StateAuthorized:
			f.Authorized, f.Admin = &yes, &no
		case model.StateAdmin:
			f.Admin = &yes
		default:
			status = ""
		}

		res, err := listUsers(c.Request().Context(), db, f)
		if err != nil {
			return handler.WebFail(c, err, "/dashboard")
		}
		return r.Render(c, http.StatusOK, "Users/Index", map[string]any{
			"users": store.PageResult[api.UserResponse]{
				Items: toResponses(res.Items), Total: res.Total, Page: res.Page, PerPage: res.PerPage, LastPage: res.LastPage,
			},
			"filters": map[string]string{"search": q.Search, "status": status},
		})
	}
}

func CreateHandler(r *ui.Renderer) echo.HandlerFunc {
	return func(c echo.Context) error {
		return r.Render(c, http.StatusOK, "Users/Create", nil)
	}
}

func StoreHandler(db database.Querier) echo.HandlerFunc {
	return func(c echo.Context) error {
		var in service.UserInput
		if err := c.Bind(&in); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid form data")
		}
		u, err := createUser(c.Request().Context(), db, in)
		if err != nil {
			return handler.WebFail(c, err, indexPath+"/create")
		}
		handler.Flash(c, handler.FlashSuccess, "User "+u.Email+" created.")
		return ui.Redirect(c, indexPath)
	}
}

func EditHandler(db database.Querier, r *ui.Renderer) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := handler.ParseID(c, "id")
		if err != nil {
			return err
		}
		u, err := getUserByID(c.Request().Context(), db, id)
		if err != nil {
			return handler.WebFail(c, err, indexPath)
		}
		return r.Render(c, http.StatusOK, "Users/Edit", map[string]any{"user": api.NewUserResponse(*u)})
	}
}

func UpdateHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := handler.ParseID(c, "id")
		if err != nil {
			return err
		}
		var in service.UserInput
		if err := c.Bind(&in); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid form data")
		}
		if _, err := updateUser(c.Request().Context(), db, id, in); err != nil {
			return handler.WebFail(c, err, indexPath)
		}
		handler.Flash(c, handler.FlashSuccess, "User updated.")
		return ui.Redirect(c, indexPath)
	}
}

func DestroyHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := handler.ParseID(c, "id")
		if err != nil {
			return err
		}
		actor := middleware.CurrentUser(c)
		if err := deleteUser(c.Request().Context(), db, actor.ID, id); err != nil {
			return handler.WebFail(c, err, indexPath)
		}
		handler.Flash(c, handler.FlashSuccess, "User deleted.")
		return ui.Redirect(c, indexPath)
	}
}

// TransitionHandler applies one of the authorize, revoke, promote and demote
// actions.
func TransitionHandler(db database.DB, action string) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := handler.ParseID(c, "id")
		if err != nil {
			return err
		}
		ctx := c.Request().Context()
		var u *model.User
		var msg string
		switch action {
		case "authorize":
			u, err = setAuthorized(ctx, db, id, true)
			msg = "authorized"
		case "revoke":
			u, err = setAuthorized(ctx, db, id, false)
			msg = "no longer authorized"
		case "promote":
			u, err = setAdmin(ctx, db, id, true)
			msg = "now an administrator"
		case "demote":
			u, err = setAdmin(ctx, db, id, false)
			msg = "no longer an administrator"
		default:
			return echo.NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return handler.WebFail(c, err, indexPath)
		}
		handler.Flash(c, handler.FlashSuccess, u.Email+" is "+msg+".")
		return ui.Back(c, indexPath)
	}
}
