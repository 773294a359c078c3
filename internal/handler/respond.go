package handler

import (
	"errors"
	"net/http"
	"strconv"

	"expense-ledger/internal/api"
	"expense-ledger/internal/filestore"
	"expense-ledger/internal/logger"
	"expense-ledger/internal/service"
	"expense-ledger/internal/session"
	"expense-ledger/internal/store"
	"expense-ledger/internal/ui"
	"expense-ledger/internal/validation"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const (
	FlashSuccess = "success"
	FlashError   = "error"

	genericFailure = "Something went wrong. Please try again."
)

// ParseID reads a positive integer path parameter. Anything else is a 404.
func ParseID(c echo.Context, name string) (int, error) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id < 1 {
		return 0, echo.NewHTTPError(http.StatusNotFound, "not found")
	}
	return id, nil
}

// BindList reads the paging and filter query parameters.
func BindList(c echo.Context) (api.ListQuery, error) {
	var q api.ListQuery
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &q); err != nil {
		return q, validation.Errors{"_": "invalid query parameters"}
	}
	if err := c.Validate(&q); err != nil {
		return q, err
	}
	return q, nil
}

// Flash queues a message for the next page the user sees.
func Flash(c echo.Context, kind, msg string) {
	session.FromContext(c).SetFlash(kind, msg)
}

// userMessage is the text shown for errors the user can act on. ok is false
// for unexpected failures.
func userMessage(err error) (msg string, status int, ok bool) {
	switch {
	case errors.Is(err, store.ErrInUse):
		return "This record is still in use and cannot be deleted.", http.StatusConflict, true
	case errors.Is(err, store.ErrInvalidReference):
		return "A referenced record does not exist.", http.StatusUnprocessableEntity, true
	case errors.Is(err, store.ErrDuplicate):
		return "A record with these values already exists.", http.StatusConflict, true
	case errors.Is(err, service.ErrLastAdmin),
		errors.Is(err, service.ErrSelfDelete),
		errors.Is(err, service.ErrLastDetail):
		return capitalize(err), http.StatusForbidden, true
	case errors.Is(err, service.ErrDetailMismatch),
		errors.Is(err, service.ErrDiscountMismatch):
		return capitalize(err), http.StatusUnprocessableEntity, true
	case errors.Is(err, filestore.ErrTooLarge), errors.Is(err, filestore.ErrUnsupportedType):
		return capitalize(err), http.StatusUnprocessableEntity, true
	}
	return "", http.StatusInternalServerError, false
}

func capitalize(err error) string {
	s := err.Error()
	if s == "" {
		return s
	}
	if s[0] >= 'a' && s[0] <= 'z' {
		s = string(s[0]-'a'+'A') + s[1:]
	}
	return s + "."
}

// WebFail turns a failed form submission into a redirect back to the form.
// Field errors and messages travel in the session; a missing record is a 404.
func WebFail(c echo.Context, err error, fallback string) error {
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		session.FromContext(c).SetErrors(verrs)
		return ui.Back(c, fallback)
	}
	if errors.Is(err, store.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "not found")
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he
	}
	msg, _, ok := userMessage(err)
	if !ok {
		logger.FromEcho(c).Error("request failed", zap.Error(err))
		msg = genericFailure
	}
	Flash(c, FlashError, msg)
	return ui.Back(c, fallback)
}

// APIFail writes the JSON error body matching err.
func APIFail(c echo.Context, err error) error {
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		return c.JSON(http.StatusUnprocessableEntity, api.ValidationErrorResponse{
			Message: "The given data was invalid.",
			Errors:  verrs,
		})
	}
	var he *echo.HTTPError
	switch {
	case errors.As(err, &he):
		return he
	case errors.Is(err, store.ErrNotFound):
		return c.JSON(http.StatusNotFound, api.ErrorResponse{Message: "not found"})
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrInvalidRefreshToken):
		return c.JSON(http.StatusUnauthorized, api.ErrorResponse{Message: err.Error()})
	case errors.Is(err, service.ErrUnauthorizedAccount):
		return c.JSON(http.StatusForbidden, api.ErrorResponse{Message: err.Error()})
	}
	msg, status, ok := userMessage(err)
	if !ok {
		logger.FromEcho(c).Error("request failed", zap.Error(err))
		msg = "internal server error"
	}
	return c.JSON(status, api.ErrorResponse{Message: msg})
}
