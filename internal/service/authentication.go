package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"expense-ledger/internal/cache"
	"expense-ledger/internal/database"
	"expense-ledger/internal/model"
	"expense-ledger/internal/store"

	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
)

const refreshTokenPrefix = "refresh_token:"

var (
	randRead        = rand.Read
	jsonMarshal     = json.Marshal
	jsonUnmarshal   = json.Unmarshal
	timeNow         = time.Now
	parseWithClaims = jwt.ParseWithClaims

	getUserByEmail = store.GetUserByEmail
)

// CustomClaims is the payload of API access tokens.
type CustomClaims struct {
	UserID  int  `json:"uid"`
	IsAdmin bool `json:"is_admin"`
	jwt.RegisteredClaims
}

// RefreshTokenData is stored in redis under the opaque refresh token.
type RefreshTokenData struct {
	UserID   int       `json:"user_id"`
	IsAdmin  bool      `json:"is_admin"`
	IssuedAt time.Time `json:"issued_at"`
}

func jwtSecret() ([]byte, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET not set")
	}
	return []byte(secret), nil
}

// AuthenticateUser checks password against the user's stored hash.
func AuthenticateUser(_ context.Context, user model.User, password string) error {
	if !user.CanUsePassword() {
		return ErrInvalidCredentials
	}
	if err := ComparePassword(*user.PasswordHash, password); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// LoginWithPassword is the API login. Google-linked and unauthorized
// accounts are refused.
func LoginWithPassword(ctx context.Context, db database.Querier, email, password string) (*model.User, error) {
	u, err := getUserByEmail(ctx, db, email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("LoginWithPassword: %w", err)
	}
	if err := AuthenticateUser(ctx, *u, password); err != nil {
		return nil, err
	}
	if !u.Authorized {
		return nil, ErrUnauthorizedAccount
	}
	return u, nil
}

func IssueAccessToken(user model.User, ttl time.Duration) (string, error) {
	secret, err := jwtSecret()
	if err != nil {
		return "", err
	}

	now := timeNow()
	claims := CustomClaims{
		UserID:  user.ID,
		IsAdmin: user.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func VerifyAccessToken(tokenString string) (*CustomClaims, error) {
	secret, err := jwtSecret()
	if err != nil {
		return nil, err
	}

	token, err := parseWithClaims(tokenString, &CustomClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

// IssueRefreshToken stores a random 32 byte token in the cache for ttl.
func IssueRefreshToken(ctx context.Context, c cache.Cache, userID int, isAdmin bool, ttl time.Duration) (string, error) {
	buf := make([]byte, 32)
	if _, err := randRead(buf); err != nil {
		return "", fmt.Errorf("IssueRefreshToken: %w", err)
	}
	token := base64.RawURLEncoding.EncodeToString(buf)

	data, err := jsonMarshal(RefreshTokenData{UserID: userID, IsAdmin: isAdmin, IssuedAt: timeNow()})
	if err != nil {
		return "", fmt.Errorf("IssueRefreshToken: %w", err)
	}
	if err := c.Set(ctx, refreshTokenPrefix+token, data, ttl).Err(); err != nil {
		return "", fmt.Errorf("IssueRefreshToken: %w", err)
	}
	return token, nil
}

func ValidateRefreshToken(ctx context.Context, c cache.Cache, token string) (*RefreshTokenData, error) {
	raw, err := c.Get(ctx, refreshTokenPrefix+token).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrInvalidRefreshToken
	}
	if err != nil {
		return nil, fmt.Errorf("ValidateRefreshToken: %w", err)
	}
	var data RefreshTokenData
	if err := jsonUnmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("ValidateRefreshToken: %w", err)
	}
	return &data, nil
}

// RevokeRefreshToken makes token unusable. Refresh rotates tokens through it.
func RevokeRefreshToken(ctx context.Context, c cache.Cache, token string) error {
	if err := c.Del(ctx, refreshTokenPrefix+token).Err(); err != nil {
		return fmt.Errorf("RevokeRefreshToken: %w", err)
	}
	return nil
}
