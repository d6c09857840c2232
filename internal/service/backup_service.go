package service

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"finplan/internal/database"
)

// BackupData represents the complete database backup structure
type BackupData struct {
	Version      string              `json:"version"`
	ExportedAt   time.Time           `json:"exported_at"`
	Users        []UserBackup        `json:"users"`
	Events       []EventBackup       `json:"calendar_events"`
	Goals        []GoalBackup        `json:"goals"`
	Tags         []TagBackup         `json:"tags"`
	Transactions []TransactionBackup `json:"transactions"`
}

// UserBackup represents a user record for backup
type UserBackup struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// EventBackup represents a calendar event record for backup
type EventBackup struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"user_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	StartDate   time.Time  `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	AllDay      bool       `json:"all_day"`
	Color       string     `json:"color"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// GoalBackup represents a goal record for backup
type GoalBackup struct {
	ID            int64      `json:"id"`
	UserID        int64      `json:"user_id"`
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

// TagBackup represents a tag record for backup
type TagBackup struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
}

// TransactionBackup represents a transaction record for backup, including
// the IDs of its attached tags
type TransactionBackup struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Type        string    `json:"type"`
	Amount      float64   `json:"amount"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	TagIDs      []int64   `json:"tag_ids"`
	CreatedAt   time.Time `json:"created_at"`
}

// BackupService handles database backup and restore operations
type BackupService struct {
	db *database.DB
}

// NewBackupService creates a new backup service
func NewBackupService(db *database.DB) *BackupService {
	return &BackupService{db: db}
}

// Export creates a complete backup of the database to a file
func (s *BackupService) Export(outputPath string) error {
	log.Println("Starting database export...")

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if err := s.ExportToWriter(file); err != nil {
		return err
	}

	log.Printf("Database exported successfully to %s", outputPath)
	return nil
}

// ExportToWriter exports the database to an io.Writer
func (s *BackupService) ExportToWriter(w io.Writer) error {
	backup := &BackupData{
		Version:    "1.0",
		ExportedAt: time.Now(),
	}

	if err := s.exportUsers(backup); err != nil {
		return fmt.Errorf("failed to export users: %w", err)
	}
	if err := s.exportEvents(backup); err != nil {
		return fmt.Errorf("failed to export calendar events: %w", err)
	}
	if err := s.exportGoals(backup); err != nil {
		return fmt.Errorf("failed to export goals: %w", err)
	}
	if err := s.exportTags(backup); err != nil {
		return fmt.Errorf("failed to export tags: %w", err)
	}
	if err := s.exportTransactions(backup); err != nil {
		return fmt.Errorf("failed to export transactions: %w", err)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return fmt.Errorf("failed to encode backup: %w", err)
	}

	log.Printf("Exported: %d users, %d events, %d goals, %d tags, %d transactions",
		len(backup.Users), len(backup.Events), len(backup.Goals),
		len(backup.Tags), len(backup.Transactions))
	return nil
}

// Import restores a database from a backup file
func (s *BackupService) Import(inputPath string) error {
	log.Printf("Starting database import from %s...", inputPath)

	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	return s.ImportFromReader(file)
}

// ImportFromReader restores a database from a backup reader
func (s *BackupService) ImportFromReader(reader io.Reader) error {
	var backup BackupData
	decoder := json.NewDecoder(reader)
	if err := decoder.Decode(&backup); err != nil {
		return fmt.Errorf("failed to decode backup: %w", err)
	}

	log.Printf("Backup version: %s, exported at: %s", backup.Version, backup.ExportedAt)

	// Import in order of dependencies
	if err := s.importUsers(backup.Users); err != nil {
		return fmt.Errorf("failed to import users: %w", err)
	}
	if err := s.importEvents(backup.Events); err != nil {
		return fmt.Errorf("failed to import calendar events: %w", err)
	}
	if err := s.importGoals(backup.Goals); err != nil {
		return fmt.Errorf("failed to import goals: %w", err)
	}
	if err := s.importTags(backup.Tags); err != nil {
		return fmt.Errorf("failed to import tags: %w", err)
	}
	if err := s.importTransactions(backup.Transactions); err != nil {
		return fmt.Errorf("failed to import transactions: %w", err)
	}

	log.Println("Database import completed successfully")
	return nil
}

func (s *BackupService) exportUsers(backup *BackupData) error {
	query := "SELECT id, email, password_hash, first_name, last_name, created_at, updated_at FROM users ORDER BY id"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var u UserBackup
		if err := rows.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return err
		}
		backup.Users = append(backup.Users, u)
	}
	return rows.Err()
}

func (s *BackupService) exportEvents(backup *BackupData) error {
	query := "SELECT id, user_id, title, COALESCE(description, ''), start_date, end_date, all_day, color, created_at, updated_at FROM calendar_events ORDER BY id"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var e EventBackup
		var endDate sql.NullTime
		if err := rows.Scan(&e.ID, &e.UserID, &e.Title, &e.Description, &e.StartDate, &endDate, &e.AllDay, &e.Color, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return err
		}
		if endDate.Valid {
			e.EndDate = &endDate.Time
		}
		backup.Events = append(backup.Events, e)
	}
	return rows.Err()
}

func (s *BackupService) exportGoals(backup *BackupData) error {
	query := "SELECT id, user_id, title, target_amount, current_amount, target_date, COALESCE(description, ''), priority, status, created_at, updated_at FROM goals ORDER BY id"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var g GoalBackup
		var targetDate sql.NullTime
		if err := rows.Scan(&g.ID, &g.UserID, &g.Title, &g.TargetAmount, &g.CurrentAmount, &targetDate, &g.Description, &g.Priority, &g.Status, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return err
		}
		if targetDate.Valid {
			g.TargetDate = &targetDate.Time
		}
		backup.Goals = append(backup.Goals, g)
	}
	return rows.Err()
}

func (s *BackupService) exportTags(backup *BackupData) error {
	query := "SELECT id, user_id, name, color, created_at FROM tags ORDER BY id"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var t TagBackup
		if err := rows.Scan(&t.ID, &t.UserID, &t.Name, &t.Color, &t.CreatedAt); err != nil {
			return err
		}
		backup.Tags = append(backup.Tags, t)
	}
	return rows.Err()
}

func (s *BackupService) exportTransactions(backup *BackupData) error {
	query := "SELECT id, user_id, type, amount, category, COALESCE(description, ''), date, created_at FROM transactions ORDER BY id"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var t TransactionBackup
		if err := rows.Scan(&t.ID, &t.UserID, &t.Type, &t.Amount, &t.Category, &t.Description, &t.Date, &t.CreatedAt); err != nil {
			return err
		}

		tagQuery := "SELECT tag_id FROM transaction_tags WHERE transaction_id = ? ORDER BY tag_id"
		tagRows, err := s.db.Query(tagQuery, t.ID)
		if err != nil {
			return err
		}
		for tagRows.Next() {
			var tagID int64
			if err := tagRows.Scan(&tagID); err != nil {
				tagRows.Close()
				return err
			}
			t.TagIDs = append(t.TagIDs, tagID)
		}
		tagRows.Close()
		if err := tagRows.Err(); err != nil {
			return err
		}

		backup.Transactions = append(backup.Transactions, t)
	}
	return rows.Err()
}

func (s *BackupService) importUsers(users []UserBackup) error {
	log.Printf("Importing %d users...", len(users))
	for _, u := range users {
		query := "INSERT INTO users (id, email, password_hash, first_name, last_name, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)"
		_, err := s.db.Exec(query, u.ID, u.Email, u.PasswordHash, u.FirstName, u.LastName, u.CreatedAt, u.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to import user %d: %w", u.ID, err)
		}
	}
	return nil
}

func (s *BackupService) importEvents(events []EventBackup) error {
	log.Printf("Importing %d calendar events...", len(events))
	for _, e := range events {
		query := "INSERT INTO calendar_events (id, user_id, title, description, start_date, end_date, all_day, color, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"
		_, err := s.db.Exec(query, e.ID, e.UserID, e.Title, e.Description, e.StartDate, nullableTime(e.EndDate), e.AllDay, e.Color, e.CreatedAt, e.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to import calendar event %d: %w", e.ID, err)
		}
	}
	return nil
}

func (s *BackupService) importGoals(goals []GoalBackup) error {
	log.Printf("Importing %d goals...", len(goals))
	for _, g := range goals {
		query := "INSERT INTO goals (id, user_id, title, target_amount, current_amount, target_date, description, priority, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"
		_, err := s.db.Exec(query, g.ID, g.UserID, g.Title, g.TargetAmount, g.CurrentAmount, nullableTime(g.TargetDate), g.Description, g.Priority, g.Status, g.CreatedAt, g.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to import goal %d: %w", g.ID, err)
		}
	}
	return nil
}

func (s *BackupService) importTags(tags []TagBackup) error {
	log.Printf("Importing %d tags...", len(tags))
	for _, t := range tags {
		query := "INSERT INTO tags (id, user_id, name, color, created_at) VALUES (?, ?, ?, ?, ?)"
		_, err := s.db.Exec(query, t.ID, t.UserID, t.Name, t.Color, t.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to import tag %d: %w", t.ID, err)
		}
	}
	return nil
}

func (s *BackupService) importTransactions(transactions []TransactionBackup) error {
	log.Printf("Importing %d transactions...", len(transactions))
	for _, t := range transactions {
		query := "INSERT INTO transactions (id, user_id, type, amount, category, description, date, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)"
		_, err := s.db.Exec(query, t.ID, t.UserID, t.Type, t.Amount, t.Category, t.Description, t.Date, t.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to import transaction %d: %w", t.ID, err)
		}
		for _, tagID := range t.TagIDs {
			_, err := s.db.Exec("INSERT INTO transaction_tags (transaction_id, tag_id) VALUES (?, ?)", t.ID, tagID)
			if err != nil {
				return fmt.Errorf("failed to import tag link for transaction %d: %w", t.ID, err)
			}
		}
	}
	return nil
}

func nullableTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}
