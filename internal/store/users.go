package store

import (
	"context"
	"fmt"
	"strings"

	"expense-ledger/internal/database"
	"expense-ledger/internal/model"
)

const userColumns = `id, name, email, password_hash, google_id, avatar, authorized, is_admin, created_at, updated_at`

type UserFilter struct {
	Search     string
	Authorized *bool
	Admin      *bool
	Page       Page
}

func scanUser(row scanner) (*model.User, error) {
	u := &model.User{}
	if err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&u.GoogleID,
		&u.Avatar,
		&u.Authorized,
		&u.IsAdmin,
		&u.CreatedAt,
		&u.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return u, nil
}

func GetUserByID(ctx context.Context, db database.Querier, userID int) (*model.User, error) {
	row := db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, userID)
	u, err := scanUser(row)
	if err != nil {
		return nil, wrapErr("GetUserByID", err)
	}
	return u, nil
}

// GetUserForUpdate locks the row for the rest of the transaction.
func GetUserForUpdate(ctx context.Context, db database.Querier, userID int) (*model.User, error) {
	row := db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, userID)
	u, err := scanUser(row)
	if err != nil {
		return nil, wrapErr("GetUserForUpdate", err)
	}
	return u, nil
}

func GetUserByEmail(ctx context.Context, db database.Querier, email string) (*model.User, error) {
	row := db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`,
		strings.ToLower(strings.TrimSpace(email)),
	)
	u, err := scanUser(row)
	if err != nil {
		return nil, wrapErr("GetUserByEmail", err)
	}
	return u, nil
}

func ListUsers(ctx context.Context, db database.Querier, f UserFilter) (PageResult[model.User], error) {
	where := `WHERE ($1 = '' OR name ILIKE $1 OR email ILIKE $1)
		AND ($2::boolean IS NULL OR authorized = $2)
		AND ($3::boolean IS NULL OR is_admin = $3)`
	args := []any{likePattern(f.Search), f.Authorized, f.Admin}

	var total int
	if err := db.QueryRow(ctx, `SELECT COUNT(*) FROM users `+where, args...).Scan(&total); err != nil {
		return PageResult[model.User]{}, wrapErr("ListUsers", err)
	}

	rows, err := db.Query(ctx,
		`SELECT `+userColumns+` FROM users `+where+` ORDER BY name, id LIMIT $4 OFFSET $5`,
		append(args, f.Page.Limit(), f.Page.Offset())...,
	)
	if err != nil {
		return PageResult[model.User]{}, wrapErr("ListUsers", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return PageResult[model.User]{}, wrapErr("ListUsers", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return PageResult[model.User]{}, wrapErr("ListUsers", err)
	}
	return newPageResult(users, total, f.Page), nil
}

func CreateUser(ctx context.Context, db database.Querier, u *model.User) (*model.User, error) {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	row := db.QueryRow(ctx,
		`INSERT INTO users (name, email, password_hash, google_id, avatar, authorized, is_admin)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at, updated_at`,
		u.Name,
		u.Email,
		u.PasswordHash,
		u.GoogleID,
		u.Avatar,
		u.Authorized,
		u.IsAdmin,
	)
	if err := row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, wrapErr("CreateUser", err)
	}
	return u, nil
}

// UpdateUser writes every mutable column, including the password hash.
func UpdateUser(ctx context.Context, db database.Querier, u *model.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	tag, err := db.Exec(ctx,
		`UPDATE users
		 SET name = $1, email = $2, password_hash = $3, authorized = $4, is_admin = $5, updated_at = NOW()
		 WHERE id = $6`,
		u.Name,
		u.Email,
		u.PasswordHash,
		u.Authorized,
		u.IsAdmin,
		u.ID,
	)
	return expectOne("UpdateUser", tag, err)
}

func UpdateUserGoogleIdentity(ctx context.Context, db database.Querier, userID int, googleID string, avatar *string, name string) error {
	tag, err := db.Exec(ctx,
		`UPDATE users
		 SET google_id = $1, avatar = $2, name = $3, updated_at = NOW()
		 WHERE id = $4`,
		googleID,
		avatar,
		name,
		userID,
	)
	return expectOne("UpdateUserGoogleIdentity", tag, err)
}

func DeleteUser(ctx context.Context, db database.Querier, userID int) error {
	tag, err := db.Exec(ctx, `DELETE FROM users WHERE id = $1`, userID)
	if err != nil {
		return wrapDeleteErr("DeleteUser", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("DeleteUser: %w", ErrNotFound)
	}
	return nil
}

// CountAdminsForUpdate locks every admin row so concurrent demotions serialize
// on the same set before either one sees the count.
func CountAdminsForUpdate(ctx context.Context, db database.Querier) (int, error) {
	var n int
	err := db.QueryRow(ctx,
		`SELECT COUNT(*) FROM (SELECT id FROM users WHERE is_admin = TRUE FOR UPDATE) admins`,
	).Scan(&n)
	if err != nil {
		return 0, wrapErr("CountAdminsForUpdate", err)
	}
	return n, nil
}
