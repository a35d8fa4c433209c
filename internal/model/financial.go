package model

import (
	"crypto/sha256"
	"fmt"
	"time"
)

// FinancialRecord is a single transaction. Amounts are positive for spending.
type FinancialRecord struct {
	Date     time.Time
	ID       string
	UserID   string
	Category string
	Merchant string
	Note     string
	Hash     string
	Amount   float64
}

// GenerateHash creates a stable hash for duplicate detection on import.
func (r *FinancialRecord) GenerateHash() string {
	data := fmt.Sprintf("%s:%s:%.2f:%s",
		r.UserID,
		r.Date.Format("2006-01-02"),
		r.Amount,
		r.Merchant)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

// Budget holds per-category limits for one month.
type Budget struct {
	Month          time.Time // first day of the month
	CategoryLimits map[string]float64
	ID             string
	UserID         string
	AlertThreshold float64 // usage ratio that trips an alert, e.g. 0.8
}

// LimitFor returns the configured limit for a category, false when the
// category has no budget line.
func (b *Budget) LimitFor(category string) (float64, bool) {
	limit, ok := b.CategoryLimits[category]
	return limit, ok
}

// BudgetAlert is a derived warning that spending in a category has reached
// the alert threshold of its limit.
type BudgetAlert struct {
	Category  string
	Limit     float64
	Spent     float64
	UsageRate float64 // Spent / Limit
}
