package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"expense-ledger/internal/database"
	"expense-ledger/internal/model"
	"expense-ledger/internal/store"
	"expense-ledger/internal/validation"
)

var (
	insertUser           = store.CreateUser
	updateUserRow        = store.UpdateUser
	deleteUserRow        = store.DeleteUser
	getUserForUpdate     = store.GetUserForUpdate
	countAdminsForUpdate = store.CountAdminsForUpdate

	validator = validation.New()
)

// UserInput is the admin user form. An empty Password leaves the stored hash untouched.
type UserInput struct {
	Name       string `json:"name" form:"name" validate:"required,max=255"`
	Email      string `json:"email" form:"email" validate:"required,email,max=255"`
	Password   string `json:"password" form:"password" validate:"omitempty,min=8,max=72"`
	Authorized bool   `json:"authorized" form:"authorized"`
	IsAdmin    bool   `json:"is_admin" form:"is_admin"`
}

func (in *UserInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.IsAdmin {
		in.Authorized = true
	}
}

func CreateUser(ctx context.Context, db database.Querier, in UserInput) (*model.User, error) {
	in.normalize()
	if err := validator.Validate(&in); err != nil {
		return nil, err
	}
	u := &model.User{Name: in.Name, Email: in.Email, Authorized: in.Authorized, IsAdmin: in.IsAdmin}
	if in.Password != "" {
		hash, err := HashPassword(in.Password)
		if err != nil {
			return nil, err
		}
		u.PasswordHash = &hash
	}
	u, err := insertUser(ctx, db, u)
	if errors.Is(err, store.ErrDuplicate) {
		return nil, validation.Errors{"email": "has already been taken"}
	}
	if err != nil {
		return nil, fmt.Errorf("CreateUser: %w", err)
	}
	return u, nil
}

// UpdateUser applies the admin form. Dropping the admin flag is subject to the
// last-admin rule.
func UpdateUser(ctx context.Context, db database.DB, id int, in UserInput) (*model.User, error) {
	in.normalize()
	if err := validator.Validate(&in); err != nil {
		return nil, err
	}
	var hash *string
	if in.Password != "" {
		h, err := HashPassword(in.Password)
		if err != nil {
			return nil, err
		}
		hash = &h
	}

	var out *model.User
	err := database.WithTx(ctx, db, func(q database.Querier) error {
		u, err := getUserForUpdate(ctx, q, id)
		if err != nil {
			return err
		}
		if u.IsAdmin && !in.IsAdmin {
			if err := ensureAnotherAdmin(ctx, q); err != nil {
				return err
			}
		}
		u.Name, u.Email, u.Authorized, u.IsAdmin = in.Name, in.Email, in.Authorized, in.IsAdmin
		if hash != nil {
			u.PasswordHash = hash
		}
		if err := updateUserRow(ctx, q, u); err != nil {
			return err
		}
		out = u
		return nil
	})
	if errors.Is(err, store.ErrDuplicate) {
		return nil, validation.Errors{"email": "has already been taken"}
	}
	if err != nil {
		return nil, fmt.Errorf("UpdateUser: %w", err)
	}
	return out, nil
}

// SetAuthorized grants or revokes access. Revoking an admin also removes the
// admin flag, so it is checked against the last-admin rule.
func SetAuthorized(ctx context.Context, db database.DB, id int, authorized bool) (*model.User, error) {
	return mutateUser(ctx, db, "SetAuthorized", id, func(ctx context.Context, q database.Querier, u *model.User) error {
		if !authorized && u.IsAdmin {
			if err := ensureAnotherAdmin(ctx, q); err != nil {
				return err
			}
			u.IsAdmin = false
		}
		u.Authorized = authorized
		return nil
	})
}

// SetAdmin promotes or demotes. Promotion also authorizes the account.
func SetAdmin(ctx context.Context, db database.DB, id int, admin bool) (*model.User, error) {
	return mutateUser(ctx, db, "SetAdmin", id, func(ctx context.Context, q database.Querier, u *model.User) error {
		if !admin && u.IsAdmin {
			if err := ensureAnotherAdmin(ctx, q); err != nil {
				return err
			}
		}
		u.IsAdmin = admin
		if admin {
			u.Authorized = true
		}
		return nil
	})
}

func DeleteUser(ctx context.Context, db database.DB, actorID, id int) error {
	if actorID == id {
		return ErrSelfDelete
	}
	err := database.WithTx(ctx, db, func(q database.Querier) error {
		u, err := getUserForUpdate(ctx, q, id)
		if err != nil {
			return err
		}
		if u.IsAdmin {
			if err := ensureAnotherAdmin(ctx, q); err != nil {
				return err
			}
		}
		return deleteUserRow(ctx, q, id)
	})
	if err != nil {
		return fmt.Errorf("DeleteUser: %w", err)
	}
	return nil
}

// AuthorizeEmail authorizes the account for email, creating it when absent.
// created reports whether a new row was inserted.
func AuthorizeEmail(ctx context.Context, db database.DB, email, name string, admin bool) (u *model.User, created bool, err error) {
	existing, err := getUserByEmail(ctx, db, email)
	switch {
	case errors.Is(err, store.ErrNotFound):
		if name == "" {
			name = strings.SplitN(email, "@", 2)[0]
		}
		u, err = CreateUser(ctx, db, UserInput{Name: name, Email: email, Authorized: true, IsAdmin: admin})
		return u, err == nil, err
	case err != nil:
		return nil, false, fmt.Errorf("AuthorizeEmail: %w", err)
	}

	u, err = SetAuthorized(ctx, db, existing.ID, true)
	if err != nil {
		return nil, false, err
	}
	if admin && !u.IsAdmin {
		u, err = SetAdmin(ctx, db, u.ID, true)
	}
	return u, false, err
}

func RevokeEmail(ctx context.Context, db database.DB, email string) (*model.User, error) {
	u, err := getUserByEmail(ctx, db, email)
	if err != nil {
		return nil, fmt.Errorf("RevokeEmail: %w", err)
	}
	return SetAuthorized(ctx, db, u.ID, false)
}

// BootstrapAdmin creates the first administrator, or promotes an existing account.
func BootstrapAdmin(ctx context.Context, db database.DB, email, name, password string) (*model.User, error) {
	existing, err := getUserByEmail(ctx, db, email)
	if errors.Is(err, store.ErrNotFound) {
		return CreateUser(ctx, db, UserInput{Name: name, Email: email, Password: password, Authorized: true, IsAdmin: true})
	}
	if err != nil {
		return nil, fmt.Errorf("BootstrapAdmin: %w", err)
	}
	if password != "" {
		return UpdateUser(ctx, db, existing.ID, UserInput{
			Name: existing.Name, Email: existing.Email, Password: password, Authorized: true, IsAdmin: true,
		})
	}
	return SetAdmin(ctx, db, existing.ID, true)
}

func mutateUser(ctx context.Context, db database.DB, op string, id int, fn func(context.Context, database.Querier, *model.User) error) (*model.User, error) {
	var out *model.User
	err := database.WithTx(ctx, db, func(q database.Querier) error {
		u, err := getUserForUpdate(ctx, q, id)
		if err != nil {
			return err
		}
		if err := fn(ctx, q, u); err != nil {
			return err
		}
		if err := updateUserRow(ctx, q, u); err != nil {
			return err
		}
		out = u
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

// ensureAnotherAdmin must run inside the mutating transaction.
func ensureAnotherAdmin(ctx context.Context, q database.Querier) error {
	n, err := countAdminsForUpdate(ctx, q)
	if err != nil {
		return err
	}
	if n <= 1 {
		return ErrLastAdmin
	}
	return nil
}
