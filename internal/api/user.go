package api

import (
	"time"

	"expense-ledger/internal/model"
)

// swagger:model api.UserResponse
type UserResponse struct {
	ID           int       `json:"id" example:"1"`
	Name         string    `json:"name" example:"Alice"`
	Email        string    `json:"email" example:"alice@example.com"`
	Avatar       *string   `json:"avatar" example:"https://lh3.googleusercontent.com/a/x"`
	Authorized   bool      `json:"authorized" example:"true"`
	IsAdmin      bool      `json:"is_admin" example:"false"`
	State        string    `json:"state" example:"authorized"`
	GoogleLinked bool      `json:"google_linked" example:"true"`
	CreatedAt    time.Time `json:"created_at" example:"2025-05-01T15:04:05Z"`
}

func NewUserResponse(u model.User) UserResponse {
	return UserResponse{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		Avatar:       u.Avatar,
		Authorized:   u.Authorized,
		IsAdmin:      u.IsAdmin,
		State:        string(u.State()),
		GoogleLinked: u.GoogleID != nil,
		CreatedAt:    u.CreatedAt,
	}
}
