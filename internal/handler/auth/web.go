package auth

import (
	"errors"
	"net/http"

	"expense-ledger/internal/cache"
	"expense-ledger/internal/database"
	"expense-ledger/internal/handler"
	"expense-ledger/internal/logger"
	"expense-ledger/internal/middleware"
	"expense-ledger/internal/service"
	"expense-ledger/internal/session"
	"expense-ledger/internal/ui"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

var (
	loginWithGoogle = service.LoginWithGoogle
	newState        = func() string { return uuid.NewString() }
)

func LoginPageHandler(r *ui.Renderer) echo.HandlerFunc {
	return func(c echo.Context) error {
		return r.Render(c, http.StatusOK, "Auth/Login", nil)
	}
}

// GoogleRedirectHandler starts the OAuth code flow. The state is kept in the
// session and checked once on the callback.
func GoogleRedirectHandler(p service.OAuthProvider) echo.HandlerFunc {
	return func(c echo.Context) error {
		state := newState()
		session.FromContext(c).SetOAuthState(state)
		return ui.Location(c, p.AuthCodeURL(state))
	}
}

// GoogleCallbackHandler signs in a pre-registered, authorized account. Any
// failure lands back on the login page with a message and no session.
func GoogleCallbackHandler(db database.Querier, p service.OAuthProvider) echo.HandlerFunc {
	return func(c echo.Context) error {
		sess := session.FromContext(c)
		toLogin := func(msg string) error {
			handler.Flash(c, handler.FlashError, msg)
			return c.Redirect(http.StatusFound, "/login")
		}

		expected := sess.TakeOAuthState()
		if expected == "" || c.QueryParam("state") != expected {
			return toLogin("Your sign-in attempt expired. Please try again.")
		}
		if c.QueryParam("error") != "" {
			return toLogin("Google sign-in was cancelled.")
		}
		code := c.QueryParam("code")
		if code == "" {
			return toLogin("Google did not return an authorization code.")
		}

		ctx := c.Request().Context()
		gu, err := p.Exchange(ctx, code)
		if err != nil {
			logger.FromEcho(c).Warn("google exchange failed", zap.Error(err))
			return toLogin("Google sign-in failed. Please try again.")
		}
		u, err := loginWithGoogle(ctx, db, gu)
		switch {
		case errors.Is(err, service.ErrUnknownAccount):
			logger.FromEcho(c).Info("google login for unknown account", zap.String("email", gu.Email))
			return toLogin("There is no account for " + gu.Email + ". Ask an administrator for access.")
		case errors.Is(err, service.ErrUnauthorizedAccount):
			return toLogin("Your account is waiting for an administrator to authorize it.")
		case err != nil:
			logger.FromEcho(c).Error("google login failed", zap.Error(err))
			return toLogin("Google sign-in failed. Please try again.")
		}

		sess.Login(u.ID)
		handler.Flash(c, handler.FlashSuccess, "Welcome back, "+u.Name+".")
		return c.Redirect(http.StatusFound, "/dashboard")
	}
}

func LogoutHandler() echo.HandlerFunc {
	return func(c echo.Context) error {
		session.FromContext(c).Logout()
		return ui.Redirect(c, "/login")
	}
}

// APITokenHandler issues a token pair for the signed in user and shows it once
// through the flash.
func APITokenHandler(cch cache.Cache, ttl TokenTTL) echo.HandlerFunc {
	return func(c echo.Context) error {
		u := middleware.CurrentUser(c)
		res, err := issuePair(c, cch, *u, ttl)
		if err != nil {
			return handler.WebFail(c, err, "/dashboard")
		}
		sess := session.FromContext(c)
		sess.SetFlash("api_token", res.AccessToken)
		sess.SetFlash("refresh_token", res.RefreshToken)
		handler.Flash(c, handler.FlashSuccess, "API token created. Copy it now, it will not be shown again.")
		return ui.Back(c, "/dashboard")
	}
}
