package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"finplan/internal/database"
	"finplan/internal/models"
)

// ErrDuplicateTag is returned when a user already has a tag with the same name.
var ErrDuplicateTag = errors.New("tag already exists")

// TransactionRepository handles database operations for transactions and tags.
// It holds a *database.DB rather than DBTX because tag attachment needs its
// own transactions.
type TransactionRepository struct {
	db *database.DB
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *database.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

const transactionColumns = "t.id, t.user_id, t.type, t.amount, t.category, t.description, t.date, t.created_at"

// ListTransactions retrieves the user's transactions, newest first,
// narrowed by the filter.
func (r *TransactionRepository) ListTransactions(userID int64, filter models.TransactionFilter) ([]models.Transaction, error) {
	query := "SELECT DISTINCT " + transactionColumns + " FROM transactions t"
	var args []interface{}

	if filter.Tag != "" {
		query += ` JOIN transaction_tags tt ON tt.transaction_id = t.id
			JOIN tags tg ON tg.id = tt.tag_id AND tg.name = ?`
		args = append(args, filter.Tag)
	}

	query += " WHERE t.user_id = ?"
	args = append(args, userID)

	if filter.Type != "" {
		query += " AND t.type = ?"
		args = append(args, filter.Type)
	}
	if filter.DateFrom != nil {
		query += " AND t.date >= ?"
		args = append(args, *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query += " AND t.date <= ?"
		args = append(args, *filter.DateTo)
	}

	query += " ORDER BY t.date DESC, t.id DESC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filter.Offset)
		}
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var transactions []models.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, *txn)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.loadTags(transactions); err != nil {
		return nil, err
	}
	return transactions, nil
}

// CreateTransaction inserts a transaction and attaches the given tags.
// Tag IDs that don't exist or belong to another user are skipped.
func (r *TransactionRepository) CreateTransaction(txn *models.Transaction, tagIDs []int64) (*models.Transaction, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO transactions (user_id, type, amount, category, description, date)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	id, err := tx.ExecReturningID(query,
		txn.UserID, txn.Type, txn.Amount, txn.Category, txn.Description, txn.Date)
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	if err := attachTags(tx, txn.UserID, id, tagIDs); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return r.GetTransaction(txn.UserID, id)
}

// GetTransaction retrieves one transaction owned by the user, nil when absent
func (r *TransactionRepository) GetTransaction(userID, transactionID int64) (*models.Transaction, error) {
	query := "SELECT " + transactionColumns + " FROM transactions t WHERE t.id = ? AND t.user_id = ?"
	txn, err := scanTransaction(r.db.QueryRow(query, transactionID, userID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	list := []models.Transaction{*txn}
	if err := r.loadTags(list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

// UpdateTransaction applies a partial update. A non-nil TagIDs replaces the
// entire tag set. Returns nil when the transaction does not exist or is
// owned by someone else.
func (r *TransactionRepository) UpdateTransaction(userID, transactionID int64, update models.TransactionUpdate) (*models.Transaction, error) {
	existing, err := r.GetTransaction(userID, transactionID)
	if err != nil || existing == nil {
		return nil, err
	}

	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var sets []string
	var args []interface{}

	if update.Amount != nil {
		sets = append(sets, "amount = ?")
		args = append(args, *update.Amount)
	}
	if update.Category != nil {
		sets = append(sets, "category = ?")
		args = append(args, strings.TrimSpace(*update.Category))
	}
	if update.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, strings.TrimSpace(*update.Description))
	}
	if update.Date != nil {
		sets = append(sets, "date = ?")
		args = append(args, *update.Date)
	}

	if len(sets) > 0 {
		args = append(args, transactionID, userID)
		query := "UPDATE transactions SET " + strings.Join(sets, ", ") + " WHERE id = ? AND user_id = ?"
		if _, err := tx.Exec(query, args...); err != nil {
			return nil, fmt.Errorf("failed to update transaction: %w", err)
		}
	}

	if update.TagIDs != nil {
		if _, err := tx.Exec("DELETE FROM transaction_tags WHERE transaction_id = ?", transactionID); err != nil {
			return nil, fmt.Errorf("failed to clear transaction tags: %w", err)
		}
		if err := attachTags(tx, userID, transactionID, update.TagIDs); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return r.GetTransaction(userID, transactionID)
}

// DeleteTransaction removes a transaction owned by the user; reports whether
// a row was deleted. Tag links go with it via ON DELETE CASCADE.
func (r *TransactionRepository) DeleteTransaction(userID, transactionID int64) (bool, error) {
	result, err := r.db.Exec("DELETE FROM transactions WHERE id = ? AND user_id = ?", transactionID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to delete transaction: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read delete result: %w", err)
	}
	return rows > 0, nil
}

// attachTags links tags to a transaction, silently skipping IDs that don't
// exist or belong to another user.
func attachTags(tx *database.Tx, userID, transactionID int64, tagIDs []int64) error {
	for _, tagID := range tagIDs {
		var id int64
		err := tx.QueryRow("SELECT id FROM tags WHERE id = ? AND user_id = ?", tagID, userID).Scan(&id)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to check tag: %w", err)
		}
		_, err = tx.Exec("INSERT INTO transaction_tags (transaction_id, tag_id) VALUES (?, ?)", transactionID, id)
		if err != nil {
			return fmt.Errorf("failed to attach tag: %w", err)
		}
	}
	return nil
}

// loadTags fills in the Tags slice for each transaction with a single
// follow-up query. Kept separate from the listing query so it works the
// same on all dialects.
func (r *TransactionRepository) loadTags(transactions []models.Transaction) error {
	if len(transactions) == 0 {
		return nil
	}

	index := make(map[int64]*models.Transaction, len(transactions))
	placeholders := make([]string, 0, len(transactions))
	args := make([]interface{}, 0, len(transactions))
	for i := range transactions {
		transactions[i].Tags = []models.Tag{}
		index[transactions[i].ID] = &transactions[i]
		placeholders = append(placeholders, "?")
		args = append(args, transactions[i].ID)
	}

	query := `
		SELECT tt.transaction_id, tg.id, tg.user_id, tg.name, tg.color, tg.created_at
		FROM transaction_tags tt
		JOIN tags tg ON tg.id = tt.tag_id
		WHERE tt.transaction_id IN (` + strings.Join(placeholders, ", ") + `)
		ORDER BY tg.name
	`
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return fmt.Errorf("failed to query transaction tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var transactionID int64
		var tag models.Tag
		if err := rows.Scan(&transactionID, &tag.ID, &tag.UserID, &tag.Name, &tag.Color, &tag.CreatedAt); err != nil {
			return fmt.Errorf("failed to scan tag: %w", err)
		}
		if txn, ok := index[transactionID]; ok {
			txn.Tags = append(txn.Tags, tag)
		}
	}
	return rows.Err()
}

// ListTags retrieves all tags for a user, alphabetically
func (r *TransactionRepository) ListTags(userID int64) ([]models.Tag, error) {
	rows, err := r.db.Query("SELECT id, user_id, name, color, created_at FROM tags WHERE user_id = ? ORDER BY name", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tags: %w", err)
	}
	defer rows.Close()

	var tags []models.Tag
	for rows.Next() {
		var tag models.Tag
		if err := rows.Scan(&tag.ID, &tag.UserID, &tag.Name, &tag.Color, &tag.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

// CreateTag inserts a new tag for the user. Returns ErrDuplicateTag when the
// user already has a tag with that name.
func (r *TransactionRepository) CreateTag(userID int64, name, color string) (*models.Tag, error) {
	var existing int64
	err := r.db.QueryRow("SELECT id FROM tags WHERE user_id = ? AND name = ?", userID, name).Scan(&existing)
	if err == nil {
		return nil, ErrDuplicateTag
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to check tag: %w", err)
	}

	id, err := r.db.ExecReturningID("INSERT INTO tags (user_id, name, color) VALUES (?, ?, ?)", userID, name, color)
	if err != nil {
		return nil, fmt.Errorf("failed to create tag: %w", err)
	}

	tag := &models.Tag{}
	err = r.db.QueryRow("SELECT id, user_id, name, color, created_at FROM tags WHERE id = ?", id).
		Scan(&tag.ID, &tag.UserID, &tag.Name, &tag.Color, &tag.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get tag: %w", err)
	}
	return tag, nil
}

// GetStatistics aggregates the user's transactions over an optional date range.
func (r *TransactionRepository) GetStatistics(userID int64, from, to *time.Time) (*models.Statistics, error) {
	where := "WHERE t.user_id = ?"
	baseArgs := []interface{}{userID}
	if from != nil {
		where += " AND t.date >= ?"
		baseArgs = append(baseArgs, *from)
	}
	if to != nil {
		where += " AND t.date <= ?"
		baseArgs = append(baseArgs, *to)
	}

	stats := &models.Statistics{
		Totals:     map[string]models.TypeTotal{},
		ByCategory: []models.CategoryStat{},
		ByTags:     []models.TagStat{},
	}

	totalsQuery := "SELECT t.type, COALESCE(SUM(t.amount), 0), COUNT(*) FROM transactions t " + where + " GROUP BY t.type"
	rows, err := r.db.Query(totalsQuery, baseArgs...)
	if err != nil {
		return nil, fmt.Errorf("failed to query totals: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var txType string
		var total models.TypeTotal
		if err := rows.Scan(&txType, &total.Total, &total.Count); err != nil {
			return nil, fmt.Errorf("failed to scan total: %w", err)
		}
		stats.Totals[txType] = total
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	categoryQuery := `SELECT t.category, t.type, COALESCE(SUM(t.amount), 0), COUNT(*)
		FROM transactions t ` + where + `
		GROUP BY t.category, t.type
		ORDER BY SUM(t.amount) DESC`
	catRows, err := r.db.Query(categoryQuery, baseArgs...)
	if err != nil {
		return nil, fmt.Errorf("failed to query category stats: %w", err)
	}
	defer catRows.Close()
	for catRows.Next() {
		var stat models.CategoryStat
		if err := catRows.Scan(&stat.Category, &stat.Type, &stat.Total, &stat.Count); err != nil {
			return nil, fmt.Errorf("failed to scan category stat: %w", err)
		}
		stats.ByCategory = append(stats.ByCategory, stat)
	}
	if err := catRows.Err(); err != nil {
		return nil, err
	}

	tagQuery := `SELECT tg.name, tg.color, COALESCE(SUM(t.amount), 0), COUNT(*)
		FROM transactions t
		JOIN transaction_tags tt ON tt.transaction_id = t.id
		JOIN tags tg ON tg.id = tt.tag_id ` + where + `
		GROUP BY tg.id, tg.name, tg.color
		ORDER BY SUM(t.amount) DESC`
	tagRows, err := r.db.Query(tagQuery, baseArgs...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tag stats: %w", err)
	}
	defer tagRows.Close()
	for tagRows.Next() {
		var stat models.TagStat
		if err := tagRows.Scan(&stat.Name, &stat.Color, &stat.Total, &stat.Count); err != nil {
			return nil, fmt.Errorf("failed to scan tag stat: %w", err)
		}
		stats.ByTags = append(stats.ByTags, stat)
	}
	return stats, tagRows.Err()
}

func scanTransaction(row rowScanner) (*models.Transaction, error) {
	txn := &models.Transaction{}
	err := row.Scan(
		&txn.ID,
		&txn.UserID,
		&txn.Type,
		&txn.Amount,
		&txn.Category,
		&txn.Description,
		&txn.Date,
		&txn.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return txn, nil
}
