package auth

import (
	"errors"
	"net/http"
	"time"

	"expense-ledger/internal/api"
	"expense-ledger/internal/cache"
	"expense-ledger/internal/database"
	"expense-ledger/internal/handler"
	"expense-ledger/internal/model"
	"expense-ledger/internal/service"
	"expense-ledger/internal/store"

	"github.com/labstack/echo/v4"
)

var (
	loginWithPassword    = service.LoginWithPassword
	issueAccessToken     = service.IssueAccessToken
	issueRefreshToken    = service.IssueRefreshToken
	validateRefreshToken = service.ValidateRefreshToken
	revokeRefreshToken   = service.RevokeRefreshToken
	getUserByID          = store.GetUserByID
	timeNow              = time.Now
)

// TokenTTL sets the lifetimes of issued token pairs.
type TokenTTL struct {
	Access  time.Duration
	Refresh time.Duration
}

func issuePair(c echo.Context, cch cache.Cache, u model.User, ttl TokenTTL) (*api.TokenResponse, error) {
	access, err := issueAccessToken(u, ttl.Access)
	if err != nil {
		return nil, err
	}
	refresh, err := issueRefreshToken(c.Request().Context(), cch, u.ID, u.IsAdmin, ttl.Refresh)
	if err != nil {
		return nil, err
	}
	return &api.TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresAt:    timeNow().Add(ttl.Access).UTC(),
	}, nil
}

// LoginHandler exchanges email and password for an API token pair.
// @Summary     Log in
// @Description Validates email and password of an authorized, password enabled account and returns an access and a refresh token
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       body body     api.LoginRequest true "credentials"
// @Success     200  {object} api.TokenResponse
// @Failure     401  {object} api.ErrorResponse
// @Failure     403  {object} api.ErrorResponse
// @Failure     422  {object} api.ValidationErrorResponse
// @Router      /auth/login [post]
func LoginHandler(db database.Querier, cch cache.Cache, ttl TokenTTL) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req api.LoginRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, api.ErrorResponse{Message: "invalid request body"})
		}
		if err := c.Validate(&req); err != nil {
			return handler.APIFail(c, err)
		}

		u, err := loginWithPassword(c.Request().Context(), db, req.Email, req.Password)
		if err != nil {
			return handler.APIFail(c, err)
		}
		res, err := issuePair(c, cch, *u, ttl)
		if err != nil {
			return handler.APIFail(c, err)
		}
		return c.JSON(http.StatusOK, res)
	}
}

// RefreshHandler rotates a refresh token. The old token stops working.
// @Summary     Refresh tokens
// @Description Trades a refresh token for a new access and refresh token pair
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       body body     api.RefreshRequest true "refresh token"
// @Success     200  {object} api.TokenResponse
// @Failure     401  {object} api.ErrorResponse
// @Failure     422  {object} api.ValidationErrorResponse
// @Router      /auth/refresh [post]
func RefreshHandler(db database.Querier, cch cache.Cache, ttl TokenTTL) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req api.RefreshRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, api.ErrorResponse{Message: "invalid request body"})
		}
		if err := c.Validate(&req); err != nil {
			return handler.APIFail(c, err)
		}

		ctx := c.Request().Context()
		data, err := validateRefreshToken(ctx, cch, req.RefreshToken)
		if err != nil {
			return handler.APIFail(c, err)
		}
		u, err := getUserByID(ctx, db, data.UserID)
		if errors.Is(err, store.ErrNotFound) || (err == nil && !u.Authorized) {
			_ = revokeRefreshToken(ctx, cch, req.RefreshToken)
			return handler.APIFail(c, service.ErrInvalidRefreshToken)
		}
		if err != nil {
			return handler.APIFail(c, err)
		}
		if err := revokeRefreshToken(ctx, cch, req.RefreshToken); err != nil {
			return handler.APIFail(c, err)
		}

		res, err := issuePair(c, cch, *u, ttl)
		if err != nil {
			return handler.APIFail(c, err)
		}
		return c.JSON(http.StatusOK, res)
	}
}
