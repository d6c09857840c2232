package models

import "time"

// Transaction types.
const (
	TransactionIncome  = "income"
	TransactionExpense = "expense"
)

// Transaction represents a single income or expense entry.
type Transaction struct {
	ID          int64
	UserID      int64
	Type        string
	Amount      float64
	Category    string
	Description string
	Date        time.Time
	Tags        []Tag
	CreatedAt   time.Time
}

// TransactionUpdate carries a partial update; nil fields are left untouched.
// TagIDs, when non-nil, replaces the full tag set (an empty slice clears it).
type TransactionUpdate struct {
	Amount      *float64
	Category    *string
	Description *string
	Date        *time.Time
	TagIDs      []int64
}

// TransactionFilter narrows a transaction listing.
type TransactionFilter struct {
	Tag      string
	DateFrom *time.Time
	DateTo   *time.Time
	Type     string
	Limit    int
	Offset   int
}

// Tag labels transactions. Names are unique per user.
type Tag struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"-"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
}

// TypeTotal is the aggregate for one transaction type.
type TypeTotal struct {
	Total float64 `json:"total"`
	Count int64   `json:"count"`
}

// CategoryStat is the aggregate for one category and type.
type CategoryStat struct {
	Category string  `json:"category"`
	Type     string  `json:"type"`
	Total    float64 `json:"total"`
	Count    int64   `json:"count"`
}

// TagStat is the aggregate for one tag.
type TagStat struct {
	Name  string  `json:"name"`
	Color string  `json:"color"`
	Total float64 `json:"total"`
	Count int64   `json:"count"`
}

// Statistics bundles the aggregate views over a date range.
type Statistics struct {
	Totals     map[string]TypeTotal `json:"totals"`
	ByCategory []CategoryStat       `json:"by_category"`
	ByTags     []TagStat            `json:"by_tags"`
}
