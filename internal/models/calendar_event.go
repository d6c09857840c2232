package models

import "time"

// CalendarEvent represents a calendar entry owned by a user.
type CalendarEvent struct {
	ID          int64
	UserID      int64
	Title       string
	Description string
	StartDate   time.Time
	EndDate     *time.Time
	AllDay      bool
	Color       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CalendarEventUpdate carries a partial update; nil fields are left untouched.
type CalendarEventUpdate struct {
	Title       *string
	Description *string
	StartDate   *time.Time
	EndDate     *time.Time
	AllDay      *bool
	Color       *string
}
