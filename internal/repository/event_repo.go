package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"finplan/internal/database"
	"finplan/internal/models"
)

// EventRepository handles database operations for calendar events
type EventRepository struct {
	db database.DBTX
}

// NewEventRepository creates a new calendar event repository
func NewEventRepository(db database.DBTX) *EventRepository {
	return &EventRepository{db: db}
}

const eventColumns = "id, user_id, title, description, start_date, end_date, all_day, color, created_at, updated_at"

// ListEvents retrieves a user's events, optionally bounded by start date
func (r *EventRepository) ListEvents(userID int64, from, to *time.Time) ([]models.CalendarEvent, error) {
	query := "SELECT " + eventColumns + " FROM calendar_events WHERE user_id = ?"
	args := []interface{}{userID}

	if from != nil {
		query += " AND start_date >= ?"
		args = append(args, *from)
	}
	if to != nil {
		query += " AND start_date <= ?"
		args = append(args, *to)
	}
	query += " ORDER BY start_date ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []models.CalendarEvent
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *event)
	}
	return events, rows.Err()
}

// CreateEvent inserts a new calendar event
func (r *EventRepository) CreateEvent(event *models.CalendarEvent) (*models.CalendarEvent, error) {
	query := `
		INSERT INTO calendar_events (user_id, title, description, start_date, end_date, all_day, color)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query,
		event.UserID, event.Title, event.Description, event.StartDate, event.EndDate, event.AllDay, event.Color)
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	return r.GetEvent(event.UserID, id)
}

// GetEvent retrieves one event owned by the user, nil when absent
func (r *EventRepository) GetEvent(userID, eventID int64) (*models.CalendarEvent, error) {
	query := "SELECT " + eventColumns + " FROM calendar_events WHERE id = ? AND user_id = ?"
	event, err := scanEvent(r.db.QueryRow(query, eventID, userID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return event, nil
}

// UpdateEvent applies a partial update to an event owned by the user.
// Returns nil when the event does not exist or is owned by someone else.
func (r *EventRepository) UpdateEvent(userID, eventID int64, update models.CalendarEventUpdate) (*models.CalendarEvent, error) {
	existing, err := r.GetEvent(userID, eventID)
	if err != nil || existing == nil {
		return nil, err
	}

	var sets []string
	var args []interface{}

	if update.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, strings.TrimSpace(*update.Title))
	}
	if update.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, strings.TrimSpace(*update.Description))
	}
	if update.StartDate != nil {
		sets = append(sets, "start_date = ?")
		args = append(args, *update.StartDate)
	}
	if update.EndDate != nil {
		sets = append(sets, "end_date = ?")
		args = append(args, *update.EndDate)
	}
	if update.AllDay != nil {
		sets = append(sets, "all_day = ?")
		args = append(args, *update.AllDay)
	}
	if update.Color != nil {
		sets = append(sets, "color = ?")
		args = append(args, *update.Color)
	}

	if len(sets) == 0 {
		return existing, nil
	}

	sets = append(sets, "updated_at = CURRENT_TIMESTAMP")
	args = append(args, eventID, userID)

	query := "UPDATE calendar_events SET " + strings.Join(sets, ", ") + " WHERE id = ? AND user_id = ?"
	if _, err := r.db.Exec(query, args...); err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}

	return r.GetEvent(userID, eventID)
}

// DeleteEvent removes an event owned by the user; reports whether a row was deleted
func (r *EventRepository) DeleteEvent(userID, eventID int64) (bool, error) {
	result, err := r.db.Exec("DELETE FROM calendar_events WHERE id = ? AND user_id = ?", eventID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to delete event: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read delete result: %w", err)
	}
	return rows > 0, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEvent(row rowScanner) (*models.CalendarEvent, error) {
	event := &models.CalendarEvent{}
	err := row.Scan(
		&event.ID,
		&event.UserID,
		&event.Title,
		&event.Description,
		&event.StartDate,
		&event.EndDate,
		&event.AllDay,
		&event.Color,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return event, nil
}
