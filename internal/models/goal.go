package models

import "time"

// Goal represents a financial goal a user is saving toward.
type Goal struct {
	ID            int64      `json:"id"`
	UserID        int64      `json:"-"`
	Title         string     `json:"title"`
	TargetAmount  float64    `json:"target_amount"`
	CurrentAmount float64    `json:"current_amount"`
	TargetDate    *time.Time `json:"target_date"`
	Description   string     `json:"description"`
	Priority      string     `json:"priority"`
	Status        string     `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// GoalUpdate carries a partial update; nil fields are left untouched.
type GoalUpdate struct {
	Title         *string
	TargetAmount  *float64
	CurrentAmount *float64
	TargetDate    *time.Time
	Description   *string
	Priority      *string
	Status        *string
}
