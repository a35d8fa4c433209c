package model

import (
	"fmt"
	"time"
)

// EmotionRecord is one logged emotional state reading.
type EmotionRecord struct {
	RecordedAt time.Time
	ID         string
	UserID     string
	Triggers   []string
	Score      float64 // -1.0 (worst) to 1.0 (best)
}

// Validate ensures the record has usable data.
func (e *EmotionRecord) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("emotion record ID is required")
	}
	if e.Score < -1.0 || e.Score > 1.0 {
		return fmt.Errorf("emotion score must be between -1.0 and 1.0, got %.2f", e.Score)
	}
	return nil
}

// EmotionTrend classifies the direction recent scores are moving.
type EmotionTrend string

// Trend classifications from the regression slope of recent scores.
const (
	EmotionTrendImproving EmotionTrend = "improving"
	EmotionTrendStable    EmotionTrend = "stable"
	EmotionTrendDeclining EmotionTrend = "declining"
)
