package repository

import (
	"database/sql"
	"fmt"
	"time"

	"finplan/internal/database"
	"finplan/internal/models"
)

// UserRepository handles database operations for users and reset credentials
type UserRepository struct {
	db database.DBTX
}

// NewUserRepository creates a new user repository
func NewUserRepository(db database.DBTX) *UserRepository {
	return &UserRepository{db: db}
}

// CreateUser inserts a new user into the database
func (r *UserRepository) CreateUser(email, passwordHash, firstName, lastName string) (*models.User, error) {
	query := `
		INSERT INTO users (email, password_hash, first_name, last_name)
		VALUES (?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query, email, passwordHash, firstName, lastName)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	now := time.Now()
	return &models.User{
		ID:           id,
		Email:        email,
		PasswordHash: passwordHash,
		FirstName:    firstName,
		LastName:     lastName,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// GetUserByEmail retrieves a user by email address, nil when absent
func (r *UserRepository) GetUserByEmail(email string) (*models.User, error) {
	query := `
		SELECT id, email, password_hash, first_name, last_name,
		       reset_token, reset_token_expires, created_at, updated_at
		FROM users
		WHERE email = ?
	`
	return r.scanUser(r.db.QueryRow(query, email))
}

// GetUserByID retrieves a user by ID, nil when absent
func (r *UserRepository) GetUserByID(id int64) (*models.User, error) {
	query := `
		SELECT id, email, password_hash, first_name, last_name,
		       reset_token, reset_token_expires, created_at, updated_at
		FROM users
		WHERE id = ?
	`
	return r.scanUser(r.db.QueryRow(query, id))
}

func (r *UserRepository) scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.FirstName,
		&user.LastName,
		&user.ResetToken,
		&user.ResetTokenExpires,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// SetResetToken stores a reset credential against the user record,
// overwriting any previous pending reset.
func (r *UserRepository) SetResetToken(userID int64, token string, expiresAt time.Time) error {
	query := `
		UPDATE users
		SET reset_token = ?, reset_token_expires = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`
	if _, err := r.db.Exec(query, token, expiresAt, userID); err != nil {
		return fmt.Errorf("failed to set reset token: %w", err)
	}
	return nil
}

// ConsumeResetToken atomically exchanges a live reset credential for a new
// password hash. The update is conditioned on the token still matching at
// write time, so of two racing consumers exactly one sees rows affected = 1.
// Returns the owning user id, or 0 when the token is unknown or expired.
func (r *UserRepository) ConsumeResetToken(token, newPasswordHash string, now time.Time) (int64, error) {
	var userID int64
	lookup := `
		SELECT id FROM users
		WHERE reset_token = ? AND reset_token_expires > ?
	`
	err := r.db.QueryRow(lookup, token, now).Scan(&userID)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to look up reset token: %w", err)
	}

	// Compare-and-clear: the WHERE clause re-checks the token so a
	// concurrent consumer that already cleared it affects zero rows.
	clear := `
		UPDATE users
		SET password_hash = ?, reset_token = NULL, reset_token_expires = NULL,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND reset_token = ?
	`
	result, err := r.db.Exec(clear, newPasswordHash, userID, token)
	if err != nil {
		return 0, fmt.Errorf("failed to consume reset token: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read consume result: %w", err)
	}
	if rows == 0 {
		return 0, nil
	}
	return userID, nil
}

// UpdatePassword replaces a user's password hash
func (r *UserRepository) UpdatePassword(userID int64, passwordHash string) error {
	query := `
		UPDATE users
		SET password_hash = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`
	if _, err := r.db.Exec(query, passwordHash, userID); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}
