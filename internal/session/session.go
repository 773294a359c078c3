package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"expense-ledger/internal/cache"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

const (
	CookieName = "ledger_session"
	keyPrefix  = "session:"
	contextKey = "session"
)

var newID = func() string { return uuid.NewString() }

// Session is the server side state behind the session cookie. Flash and
// Errors survive exactly one subsequent request.
type Session struct {
	ID         string            `json:"-"`
	UserID     int               `json:"user_id,omitempty"`
	OAuthState string            `json:"oauth_state,omitempty"`
	Flash      map[string]string `json:"flash,omitempty"`
	Errors     map[string]string `json:"errors,omitempty"`

	dirty     bool
	destroyed bool
	previous  string
}

func (s *Session) SetFlash(kind, msg string) {
	if s.Flash == nil {
		s.Flash = map[string]string{}
	}
	s.Flash[kind] = msg
	s.dirty = true
}

// TakeFlash returns the pending messages and clears them.
func (s *Session) TakeFlash() map[string]string {
	f := s.Flash
	if len(f) > 0 {
		s.Flash = nil
		s.dirty = true
	}
	return f
}

func (s *Session) SetErrors(errs map[string]string) {
	s.Errors = errs
	s.dirty = true
}

func (s *Session) TakeErrors() map[string]string {
	e := s.Errors
	if len(e) > 0 {
		s.Errors = nil
		s.dirty = true
	}
	return e
}

func (s *Session) SetOAuthState(state string) {
	s.OAuthState = state
	s.dirty = true
}

// TakeOAuthState returns the stored state once; a replayed callback sees "".
func (s *Session) TakeOAuthState() string {
	st := s.OAuthState
	if st != "" {
		s.OAuthState = ""
		s.dirty = true
	}
	return st
}

// Login binds the session to userID under a fresh id so an id planted before
// sign-in cannot be reused afterwards.
func (s *Session) Login(userID int) {
	if s.previous == "" {
		s.previous = s.ID
	}
	s.ID = newID()
	s.UserID = userID
	s.dirty = true
}

func (s *Session) Logout() {
	s.destroyed = true
	s.UserID = 0
}

type Store struct {
	cache  cache.Cache
	ttl    time.Duration
	secure bool
}

func NewStore(c cache.Cache, ttl time.Duration, secure bool) *Store {
	return &Store{cache: c, ttl: ttl, secure: secure}
}

// Load returns the stored session or a new empty one when id is unknown.
func (st *Store) Load(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		return &Session{ID: newID()}, nil
	}
	raw, err := st.cache.Get(ctx, keyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return &Session{ID: newID()}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Load: %w", err)
	}
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return &Session{ID: newID()}, nil
	}
	s.ID = id
	return &s, nil
}

// Save persists s and refreshes its expiry.
func (st *Store) Save(ctx context.Context, s *Session) error {
	if s.previous != "" {
		if err := st.cache.Del(ctx, keyPrefix+s.previous).Err(); err != nil {
			return fmt.Errorf("Save: %w", err)
		}
		s.previous = ""
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("Save: %w", err)
	}
	if err := st.cache.Set(ctx, keyPrefix+s.ID, raw, st.ttl).Err(); err != nil {
		return fmt.Errorf("Save: %w", err)
	}
	s.dirty = false
	return nil
}

func (st *Store) Destroy(ctx context.Context, s *Session) error {
	keys := []string{keyPrefix + s.ID}
	if s.previous != "" {
		keys = append(keys, keyPrefix+s.previous)
	}
	if err := st.cache.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("Destroy: %w", err)
	}
	return nil
}

func (st *Store) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   st.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// Middleware loads the session before the handler and writes it back, with
// the cookie, before the response is committed.
func (st *Store) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			var id string
			if ck, err := c.Cookie(CookieName); err == nil {
				id = ck.Value
			}
			s, err := st.Load(c.Request().Context(), id)
			if err != nil {
				return err
			}
			incoming := s.ID
			Attach(c, s)

			var saveErr error
			c.Response().Before(func() {
				ctx := c.Request().Context()
				switch {
				case s.destroyed:
					saveErr = st.Destroy(ctx, s)
					c.SetCookie(st.cookie("", -1))
				case s.dirty || s.ID != incoming || s.UserID != 0:
					saveErr = st.Save(ctx, s)
					c.SetCookie(st.cookie(s.ID, int(st.ttl.Seconds())))
				}
			})

			if err := next(c); err != nil {
				return err
			}
			return saveErr
		}
	}
}

// Attach makes s the request's session. Middleware does this for every request.
func Attach(c echo.Context, s *Session) { c.Set(contextKey, s) }

// FromContext returns the request's session. Outside of Middleware it returns
// a throwaway session so callers never deal with nil.
func FromContext(c echo.Context) *Session {
	if s, ok := c.Get(contextKey).(*Session); ok {
		return s
	}
	return &Session{}
}
