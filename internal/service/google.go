package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"expense-ledger/internal/database"
	"expense-ledger/internal/model"
	"expense-ledger/internal/store"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

var updateUserGoogleIdentity = store.UpdateUserGoogleIdentity

// GoogleUser is the subset of the userinfo response used for sign-in.
type GoogleUser struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

type OAuthProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*GoogleUser, error)
}

type GoogleOAuth struct {
	config      *oauth2.Config
	userInfoURL string
}

func NewGoogleOAuth(clientID, clientSecret, redirectURL string) *GoogleOAuth {
	return &GoogleOAuth{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		userInfoURL: googleUserInfoURL,
	}
}

func (g *GoogleOAuth) AuthCodeURL(state string) string {
	return g.config.AuthCodeURL(state, oauth2.SetAuthURLParam("prompt", "select_account"))
}

// Exchange trades the callback code for a token and fetches the profile with it.
func (g *GoogleOAuth) Exchange(ctx context.Context, code string) (*GoogleUser, error) {
	tok, err := g.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("Exchange: token: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("Exchange: %w", err)
	}
	resp, err := g.config.Client(ctx, tok).Do(req)
	if err != nil {
		return nil, fmt.Errorf("Exchange: userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("Exchange: userinfo status %d: %s", resp.StatusCode, body)
	}
	var gu GoogleUser
	if err := json.NewDecoder(resp.Body).Decode(&gu); err != nil {
		return nil, fmt.Errorf("Exchange: decode userinfo: %w", err)
	}
	return &gu, nil
}

// LoginWithGoogle maps a Google profile onto a pre-provisioned account. It
// never creates users.
func LoginWithGoogle(ctx context.Context, db database.Querier, gu *GoogleUser) (*model.User, error) {
	if gu == nil || gu.Email == "" || !gu.VerifiedEmail {
		return nil, ErrUnknownAccount
	}
	u, err := getUserByEmail(ctx, db, gu.Email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUnknownAccount
	}
	if err != nil {
		return nil, fmt.Errorf("LoginWithGoogle: %w", err)
	}
	if !u.Authorized {
		return nil, ErrUnauthorizedAccount
	}

	name := u.Name
	if gu.Name != "" {
		name = gu.Name
	}
	avatar := u.Avatar
	if gu.Picture != "" {
		avatar = &gu.Picture
	}
	if err := updateUserGoogleIdentity(ctx, db, u.ID, gu.ID, avatar, name); err != nil {
		return nil, fmt.Errorf("LoginWithGoogle: %w", err)
	}
	u.GoogleID, u.Avatar, u.Name = &gu.ID, avatar, name
	return u, nil
}
