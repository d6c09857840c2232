package repository

import (
	"database/sql"
	"fmt"
	"strings"

	"finplan/internal/database"
	"finplan/internal/models"
)

// GoalRepository handles database operations for financial goals
type GoalRepository struct {
	db database.DBTX
}

// NewGoalRepository creates a new goal repository
func NewGoalRepository(db database.DBTX) *GoalRepository {
	return &GoalRepository{db: db}
}

const goalColumns = "id, user_id, title, target_amount, current_amount, target_date, description, priority, status, created_at, updated_at"

// ListGoals retrieves all goals for a user, highest priority first
func (r *GoalRepository) ListGoals(userID int64) ([]models.Goal, error) {
	query := "SELECT " + goalColumns + ` FROM goals
		WHERE user_id = ?
		ORDER BY CASE priority WHEN 'high' THEN 3 WHEN 'medium' THEN 2 WHEN 'low' THEN 1 ELSE 0 END DESC,
			created_at DESC`

	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query goals: %w", err)
	}
	defer rows.Close()

	var goals []models.Goal
	for rows.Next() {
		goal, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, *goal)
	}
	return goals, rows.Err()
}

// CreateGoal inserts a new goal; new goals start active with nothing saved
func (r *GoalRepository) CreateGoal(goal *models.Goal) (*models.Goal, error) {
	query := `
		INSERT INTO goals (user_id, title, target_amount, current_amount, target_date, description, priority, status)
		VALUES (?, ?, ?, 0, ?, ?, ?, 'active')
	`
	id, err := r.db.ExecReturningID(query,
		goal.UserID, goal.Title, goal.TargetAmount, goal.TargetDate, goal.Description, goal.Priority)
	if err != nil {
		return nil, fmt.Errorf("failed to create goal: %w", err)
	}
	return r.GetGoal(goal.UserID, id)
}

// GetGoal retrieves one goal owned by the user, nil when absent
func (r *GoalRepository) GetGoal(userID, goalID int64) (*models.Goal, error) {
	query := "SELECT " + goalColumns + " FROM goals WHERE id = ? AND user_id = ?"
	goal, err := scanGoal(r.db.QueryRow(query, goalID, userID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get goal: %w", err)
	}
	return goal, nil
}

// UpdateGoal applies a partial update to a goal owned by the user.
// Returns nil when the goal does not exist or is owned by someone else.
func (r *GoalRepository) UpdateGoal(userID, goalID int64, update models.GoalUpdate) (*models.Goal, error) {
	existing, err := r.GetGoal(userID, goalID)
	if err != nil || existing == nil {
		return nil, err
	}

	var sets []string
	var args []interface{}

	if update.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, strings.TrimSpace(*update.Title))
	}
	if update.TargetAmount != nil {
		sets = append(sets, "target_amount = ?")
		args = append(args, *update.TargetAmount)
	}
	if update.CurrentAmount != nil {
		sets = append(sets, "current_amount = ?")
		args = append(args, *update.CurrentAmount)
	}
	if update.TargetDate != nil {
		sets = append(sets, "target_date = ?")
		args = append(args, *update.TargetDate)
	}
	if update.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, strings.TrimSpace(*update.Description))
	}
	if update.Priority != nil {
		sets = append(sets, "priority = ?")
		args = append(args, *update.Priority)
	}
	if update.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, *update.Status)
	}

	if len(sets) == 0 {
		return existing, nil
	}

	sets = append(sets, "updated_at = CURRENT_TIMESTAMP")
	args = append(args, goalID, userID)

	query := "UPDATE goals SET " + strings.Join(sets, ", ") + " WHERE id = ? AND user_id = ?"
	if _, err := r.db.Exec(query, args...); err != nil {
		return nil, fmt.Errorf("failed to update goal: %w", err)
	}

	return r.GetGoal(userID, goalID)
}

// DeleteGoal removes a goal owned by the user; reports whether a row was deleted
func (r *GoalRepository) DeleteGoal(userID, goalID int64) (bool, error) {
	result, err := r.db.Exec("DELETE FROM goals WHERE id = ? AND user_id = ?", goalID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to delete goal: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read delete result: %w", err)
	}
	return rows > 0, nil
}

func scanGoal(row rowScanner) (*models.Goal, error) {
	goal := &models.Goal{}
	err := row.Scan(
		&goal.ID,
		&goal.UserID,
		&goal.Title,
		&goal.TargetAmount,
		&goal.CurrentAmount,
		&goal.TargetDate,
		&goal.Description,
		&goal.Priority,
		&goal.Status,
		&goal.CreatedAt,
		&goal.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return goal, nil
}
