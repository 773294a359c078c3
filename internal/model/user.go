package model

import "time"

type UserState string

const (
	StateUnauthorized UserState = "unauthorized"
	StateAuthorized   UserState = "authorized"
	StateAdmin        UserState = "admin"
)

type User struct {
	ID           int       `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash *string   `db:"password_hash" json:"-"`
	GoogleID     *string   `db:"google_id" json:"-"`
	Avatar       *string   `db:"avatar" json:"avatar"`
	Authorized   bool      `db:"authorized" json:"authorized"`
	IsAdmin      bool      `db:"is_admin" json:"is_admin"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// State collapses the two flags. An admin is always authorized.
func (u User) State() UserState {
	switch {
	case u.IsAdmin:
		return StateAdmin
	case u.Authorized:
		return StateAuthorized
	default:
		return StateUnauthorized
	}
}

// CanUsePassword reports whether password login is allowed for the account.
// Google-linked accounts sign in through OAuth only.
func (u User) CanUsePassword() bool {
	return u.PasswordHash != nil && u.GoogleID == nil
}
