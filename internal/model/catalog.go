package model

import "time"

type Category struct {
	ID          int       `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Observation string    `db:"observation" json:"observation"`
	Tags        []string  `db:"tags" json:"tags"`
	IsActive    bool      `db:"is_active" json:"is_active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

type PaymentMethod struct {
	ID          int       `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Observation string    `db:"observation" json:"observation"`
	Tags        []string  `db:"tags" json:"tags"`
	IsActive    bool      `db:"is_active" json:"is_active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

type Discount struct {
	ID          int       `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Observation string    `db:"observation" json:"observation"`
	Tags        []string  `db:"tags" json:"tags"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
