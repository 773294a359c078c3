package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"expense-ledger/internal/database"
	"expense-ledger/internal/model"
	"expense-ledger/internal/service"
	"expense-ledger/internal/session"
	"expense-ledger/internal/store"
	"expense-ledger/internal/ui"

	"github.com/labstack/echo/v4"
)

const (
	ContextClaimsKey = "claims"
	ContextUserKey   = "user"
)

var getUserByID = store.GetUserByID

func extractClaims(c echo.Context) (*service.CustomClaims, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing token")
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header format")
	}
	claims, err := service.VerifyAccessToken(parts[1])
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, fmt.Sprintf("invalid token: %v", err))
	}
	return claims, nil
}

// RequireAuth guards the JSON API with a Bearer access token.
func RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, err := extractClaims(c)
		if err != nil {
			return err
		}
		c.Set(ContextClaimsKey, claims)
		return next(c)
	}
}

func RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return RequireAuth(func(c echo.Context) error {
		if !Claims(c).IsAdmin {
			return echo.NewHTTPError(http.StatusForbidden, "admin privileges required")
		}
		return next(c)
	})
}

// Claims returns the verified token claims, or nil outside RequireAuth.
func Claims(c echo.Context) *service.CustomClaims {
	claims, _ := c.Get(ContextClaimsKey).(*service.CustomClaims)
	return claims
}

// LoadUser resolves the session's user. A user that was deleted or lost
// authorization since signing in is logged out on the spot.
func LoadUser(db database.Querier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess := session.FromContext(c)
			if sess.UserID == 0 {
				return next(c)
			}
			u, err := getUserByID(c.Request().Context(), db, sess.UserID)
			switch {
			case errors.Is(err, store.ErrNotFound):
				sess.Logout()
			case err != nil:
				return err
			case !u.Authorized:
				sess.Logout()
			default:
				c.Set(ContextUserKey, u)
			}
			return next(c)
		}
	}
}

// CurrentUser returns the signed in web user, or nil.
func CurrentUser(c echo.Context) *model.User {
	u, _ := c.Get(ContextUserKey).(*model.User)
	return u
}

// RequireLogin sends anonymous visitors to the login page.
func RequireLogin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if CurrentUser(c) == nil {
			return ui.Redirect(c, "/login")
		}
		return next(c)
	}
}

// RequireGuest keeps signed in users away from the login page.
func RequireGuest(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if CurrentUser(c) != nil {
			return ui.Redirect(c, "/dashboard")
		}
		return next(c)
	}
}

func RequireWebAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return RequireLogin(func(c echo.Context) error {
		if !CurrentUser(c).IsAdmin {
			return echo.NewHTTPError(http.StatusForbidden, "admin privileges required")
		}
		return next(c)
	})
}
