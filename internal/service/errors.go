package service

import "errors"

var (
	ErrLastAdmin           = errors.New("at least one administrator must remain")
	ErrSelfDelete          = errors.New("you cannot delete your own account")
	ErrDetailMismatch      = errors.New("detail does not belong to this expense")
	ErrDiscountMismatch    = errors.New("discount does not belong to this expense")
	ErrLastDetail          = errors.New("an expense must keep at least one detail")
	ErrUnknownAccount      = errors.New("no account is registered for this email")
	ErrUnauthorizedAccount = errors.New("this account has not been authorized yet")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
)
