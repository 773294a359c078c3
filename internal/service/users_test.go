package service

import (
	"context"
	"testing"

	"expense-ledger/internal/database"
	"expense-ledger/internal/model"
	"expense-ledger/internal/store"
	"expense-ledger/internal/validation"

	"github.com/stretchr/testify/require"
)

// memUsers backs the user store vars with a map.
type memUsers struct {
	users   map[int]*model.User
	deleted []int
}

func installUsers(t *testing.T, users ...model.User) *memUsers {
	t.Helper()
	t.Cleanup(restoreGlobals)
	m := &memUsers{users: map[int]*model.User{}}
	for _, u := range users {
		u := u
		m.users[u.ID] = &u
	}
	getUserForUpdate = func(_ context.Context, _ database.Querier, id int) (*model.User, error) {
		u, ok := m.users[id]
		if !ok {
			return nil, store.ErrNotFound
		}
		cp := *u
		return &cp, nil
	}
	getUserByEmail = func(_ context.Context, _ database.Querier, email string) (*model.User, error) {
		for _, u := range m.users {
			if u.Email == email {
				cp := *u
				return &cp, nil
			}
		}
		return nil, store.ErrNotFound
	}
	countAdminsForUpdate = func(context.Context, database.Querier) (int, error) {
		n := 0
		for _, u := range m.users {
			if u.IsAdmin {
				n++
			}
		}
		return n, nil
	}
	updateUserRow = func(_ context.Context, _ database.Querier, u *model.User) error {
		cp := *u
		m.users[u.ID] = &cp
		return nil
	}
	insertUser = func(_ context.Context, _ database.Querier, u *model.User) (*model.User, error) {
		u.ID = len(m.users) + 100
		cp := *u
		m.users[u.ID] = &cp
		return u, nil
	}
	deleteUserRow = func(_ context.Context, _ database.Querier, id int) error {
		delete(m.users, id)
		m.deleted = append(m.deleted, id)
		return nil
	}
	return m
}

var (
	soleAdmin  = model.User{ID: 1, Name: "Root", Email: "root@example.com", Authorized: true, IsAdmin: true}
	otherAdmin = model.User{ID: 2, Name: "Ops", Email: "ops@example.com", Authorized: true, IsAdmin: true}
	member     = model.User{ID: 3, Name: "Ann", Email: "ann@example.com", Authorized: true}
)

func TestDemoteSoleAdminRejected(t *testing.T) {
	m := installUsers(t, soleAdmin, member)
	db, txs := txDB()

	_, err := SetAdmin(context.Background(), db, 1, false)
	require.ErrorIs(t, err, ErrLastAdmin)
	require.True(t, (*txs)[0].RolledBack)
	require.True(t, m.users[1].IsAdmin)

	_, err = SetAuthorized(context.Background(), db, 1, false)
	require.ErrorIs(t, err, ErrLastAdmin)

	_, err = UpdateUser(context.Background(), db, 1, UserInput{Name: "Root", Email: "root@example.com"})
	require.ErrorIs(t, err, ErrLastAdmin)
	require.True(t, m.users[1].IsAdmin)
}

func TestDemoteWithTwoAdmins(t *testing.T) {
	m := installUsers(t, soleAdmin, otherAdmin)
	db, txs := txDB()

	u, err := SetAdmin(context.Background(), db, 2, false)
	require.NoError(t, err)
	require.Equal(t, model.StateAuthorized, u.State())
	require.True(t, (*txs)[0].Committed)
	require.False(t, m.users[2].IsAdmin)

	// now 1 is the last one again
	_, err = SetAdmin(context.Background(), db, 1, false)
	require.ErrorIs(t, err, ErrLastAdmin)
}

func TestRevokeAdminDemotes(t *testing.T) {
	m := installUsers(t, soleAdmin, otherAdmin)
	db, _ := txDB()

	u, err := SetAuthorized(context.Background(), db, 2, false)
	require.NoError(t, err)
	require.Equal(t, model.StateUnauthorized, u.State())
	require.False(t, m.users[2].IsAdmin)
}

func TestPromoteAuthorizes(t *testing.T) {
	installUsers(t, soleAdmin, model.User{ID: 5, Email: "new@example.com"})
	db, _ := txDB()

	u, err := SetAdmin(context.Background(), db, 5, true)
	require.NoError(t, err)
	require.Equal(t, model.StateAdmin, u.State())
}

func TestDeleteUser(t *testing.T) {
	m := installUsers(t, soleAdmin, otherAdmin, member)
	db, _ := txDB()

	require.ErrorIs(t, DeleteUser(context.Background(), db, 1, 1), ErrSelfDelete)

	require.NoError(t, DeleteUser(context.Background(), db, 1, 2))
	require.NoError(t, DeleteUser(context.Background(), db, 1, 3))
	require.Equal(t, []int{2, 3}, m.deleted)

	// 1 is the last admin; another admin session cannot exist, but the rule still holds
	require.ErrorIs(t, DeleteUser(context.Background(), db, 99, 1), ErrLastAdmin)
	require.ErrorIs(t, DeleteUser(context.Background(), db, 1, 404), store.ErrNotFound)
}

func TestCreateUser(t *testing.T) {
	m := installUsers(t)
	u, err := CreateUser(context.Background(), &database.FakeDB{}, UserInput{
		Name: " Bea ", Email: "Bea@Example.com", Password: "correct horse", IsAdmin: true,
	})
	require.NoError(t, err)
	require.Equal(t, "bea@example.com", u.Email)
	require.Equal(t, "Bea", u.Name)
	require.True(t, u.Authorized)
	require.NotNil(t, u.PasswordHash)
	require.NoError(t, ComparePassword(*u.PasswordHash, "correct horse"))
	require.Len(t, m.users, 1)

	_, err = CreateUser(context.Background(), &database.FakeDB{}, UserInput{Email: "bad", Password: "short"})
	errs := validation.FromError(err)
	require.Contains(t, errs, "name")
	require.Contains(t, errs, "email")
	require.Contains(t, errs, "password")
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	installUsers(t)
	insertUser = func(context.Context, database.Querier, *model.User) (*model.User, error) {
		return nil, store.ErrDuplicate
	}
	_, err := CreateUser(context.Background(), &database.FakeDB{}, UserInput{Name: "A", Email: "a@example.com"})
	require.Equal(t, "has already been taken", validation.FromError(err)["email"])
}

func TestAuthorizeEmail(t *testing.T) {
	m := installUsers(t, soleAdmin, model.User{ID: 7, Name: "Pending", Email: "pending@example.com"})
	db, _ := txDB()

	u, created, err := AuthorizeEmail(context.Background(), db, "pending@example.com", "", false)
	require.NoError(t, err)
	require.False(t, created)
	require.True(t, u.Authorized)

	u, created, err = AuthorizeEmail(context.Background(), db, "fresh@example.com", "", true)
	require.NoError(t, err)
	require.True(t, created)
	require.Equal(t, "fresh", u.Name)
	require.Equal(t, model.StateAdmin, u.State())

	u, err = RevokeEmail(context.Background(), db, "pending@example.com")
	require.NoError(t, err)
	require.False(t, u.Authorized)
	require.False(t, m.users[7].Authorized)

	// root and fresh are both admins, so one of them may go
	_, err = RevokeEmail(context.Background(), db, "root@example.com")
	require.NoError(t, err)
	_, err = RevokeEmail(context.Background(), db, "fresh@example.com")
	require.ErrorIs(t, err, ErrLastAdmin)
}

func TestBootstrapAdmin(t *testing.T) {
	m := installUsers(t, member)
	db, _ := txDB()

	u, err := BootstrapAdmin(context.Background(), db, "ann@example.com", "ignored", "")
	require.NoError(t, err)
	require.Equal(t, model.StateAdmin, u.State())
	require.Equal(t, "Ann", m.users[3].Name)

	u, err = BootstrapAdmin(context.Background(), db, "boss@example.com", "Boss", "s3cret-pass")
	require.NoError(t, err)
	require.True(t, u.IsAdmin)
	require.NotNil(t, u.PasswordHash)
}
