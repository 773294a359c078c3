package api

import "time"

// swagger:model api.TokenResponse
type TokenResponse struct {
	AccessToken  string    `json:"access_token" example:"eyJhbGciOi..."`
	RefreshToken string    `json:"refresh_token,omitempty" example:"q8Xc..."`
	TokenType    string    `json:"token_type" example:"Bearer"`
	ExpiresAt    time.Time `json:"expires_at" example:"2025-05-09T15:04:05Z"`
}
