package handlers

import (
	"time"

	"finplan/internal/models"
)

// calendarEventView is the wire shape calendar clients expect, matching the
// FullCalendar event object
type calendarEventView struct {
	ID              int64  `json:"id"`
	Title           string `json:"title"`
	Start           string `json:"start"`
	End             string `json:"end,omitempty"`
	AllDay          bool   `json:"allDay"`
	BackgroundColor string `json:"backgroundColor"`
	BorderColor     string `json:"borderColor"`
	Description     string `json:"description"`
}

func newCalendarEventView(event models.CalendarEvent) calendarEventView {
	view := calendarEventView{
		ID:              event.ID,
		Title:           event.Title,
		Start:           event.StartDate.Format(time.RFC3339),
		AllDay:          event.AllDay,
		BackgroundColor: event.Color,
		BorderColor:     event.Color,
		Description:     event.Description,
	}
	if event.EndDate != nil {
		view.End = event.EndDate.Format(time.RFC3339)
	}
	return view
}

func newCalendarEventViews(events []models.CalendarEvent) []calendarEventView {
	views := make([]calendarEventView, 0, len(events))
	for _, event := range events {
		views = append(views, newCalendarEventView(event))
	}
	return views
}

// transactionView is the wire shape for a transaction
type transactionView struct {
	ID          int64        `json:"id"`
	Type        string       `json:"type"`
	Amount      float64      `json:"amount"`
	Category    string       `json:"category"`
	Description string       `json:"description"`
	Date        string       `json:"date"`
	Tags        []models.Tag `json:"tags"`
	CreatedAt   time.Time    `json:"created_at"`
}

func newTransactionView(txn models.Transaction) transactionView {
	tags := txn.Tags
	if tags == nil {
		tags = []models.Tag{}
	}
	return transactionView{
		ID:          txn.ID,
		Type:        txn.Type,
		Amount:      txn.Amount,
		Category:    txn.Category,
		Description: txn.Description,
		Date:        txn.Date.Format("2006-01-02"),
		Tags:        tags,
		CreatedAt:   txn.CreatedAt,
	}
}

func newTransactionViews(txns []models.Transaction) []transactionView {
	views := make([]transactionView, 0, len(txns))
	for _, txn := range txns {
		views = append(views, newTransactionView(txn))
	}
	return views
}
