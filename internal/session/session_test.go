package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"expense-ledger/internal/cache"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewStore(rdb, time.Hour, true), mr
}

// do runs h behind the middleware, sending the cookie when id is set.
func do(t *testing.T, st *Store, id string, h echo.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	e.GET("/", h, st.Middleware())
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if id != "" {
		req.AddCookie(&http.Cookie{Name: CookieName, Value: id})
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func cookieOf(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == CookieName {
			return c
		}
	}
	return nil
}

func TestAnonymousRequestWritesNothing(t *testing.T) {
	st, mr := newStore(t)
	rec := do(t, st, "", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	require.Nil(t, cookieOf(rec))
	require.Empty(t, mr.Keys())
}

func TestFlashSurvivesOneRequest(t *testing.T) {
	st, mr := newStore(t)
	rec := do(t, st, "", func(c echo.Context) error {
		FromContext(c).SetFlash("success", "Saved.")
		FromContext(c).SetErrors(map[string]string{"name": "is required"})
		return c.NoContent(http.StatusSeeOther)
	})
	ck := cookieOf(rec)
	require.NotNil(t, ck)
	require.True(t, ck.HttpOnly)
	require.True(t, ck.Secure)
	require.Equal(t, http.SameSiteLaxMode, ck.SameSite)
	require.True(t, mr.Exists(keyPrefix+ck.Value))
	require.Equal(t, time.Hour, mr.TTL(keyPrefix+ck.Value))

	var flash, errs map[string]string
	do(t, st, ck.Value, func(c echo.Context) error {
		flash = FromContext(c).TakeFlash()
		errs = FromContext(c).TakeErrors()
		return c.NoContent(http.StatusOK)
	})
	require.Equal(t, "Saved.", flash["success"])
	require.Equal(t, "is required", errs["name"])

	do(t, st, ck.Value, func(c echo.Context) error {
		flash = FromContext(c).TakeFlash()
		errs = FromContext(c).TakeErrors()
		return c.NoContent(http.StatusOK)
	})
	require.Empty(t, flash)
	require.Empty(t, errs)
}

func TestLoginRotatesIDAndLogoutDestroys(t *testing.T) {
	st, mr := newStore(t)
	rec := do(t, st, "", func(c echo.Context) error {
		FromContext(c).SetOAuthState("xyz")
		return c.NoContent(http.StatusFound)
	})
	before := cookieOf(rec).Value

	var state string
	rec = do(t, st, before, func(c echo.Context) error {
		s := FromContext(c)
		state = s.TakeOAuthState()
		s.Login(7)
		return c.NoContent(http.StatusFound)
	})
	require.Equal(t, "xyz", state)
	after := cookieOf(rec).Value
	require.NotEqual(t, before, after)
	require.False(t, mr.Exists(keyPrefix+before))
	require.True(t, mr.Exists(keyPrefix+after))

	var uid int
	do(t, st, after, func(c echo.Context) error {
		uid = FromContext(c).UserID
		require.Empty(t, FromContext(c).TakeOAuthState())
		return c.NoContent(http.StatusOK)
	})
	require.Equal(t, 7, uid)

	rec = do(t, st, after, func(c echo.Context) error {
		FromContext(c).Logout()
		return c.NoContent(http.StatusSeeOther)
	})
	require.Equal(t, -1, cookieOf(rec).MaxAge)
	require.False(t, mr.Exists(keyPrefix+after))
}

func TestUnknownOrCorruptCookieStartsFresh(t *testing.T) {
	st, mr := newStore(t)
	require.NoError(t, mr.Set(keyPrefix+"bad", "{"))

	for _, id := range []string{"ghost", "bad"} {
		s, err := st.Load(context.Background(), id)
		require.NoError(t, err)
		require.NotEqual(t, id, s.ID)
		require.Zero(t, s.UserID)
	}
}

func TestLoadError(t *testing.T) {
	st := NewStore(&cache.FakeCache{GetFn: func(context.Context, string) *redis.StringCmd {
		return redis.NewStringResult("", errors.New("down"))
	}}, time.Hour, false)
	rec := do(t, st, "abc", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestFromContextWithoutMiddleware(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	s := FromContext(c)
	require.NotNil(t, s)
	s.SetFlash("error", "x")
}
