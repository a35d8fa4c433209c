package model

import (
	"math"
	"time"
)

// CorrelationStrength bands the absolute coefficient.
type CorrelationStrength string

// Strength bands at |r| thresholds 0.2 / 0.4 / 0.7.
const (
	StrengthNone     CorrelationStrength = "none"
	StrengthWeak     CorrelationStrength = "weak"
	StrengthModerate CorrelationStrength = "moderate"
	StrengthStrong   CorrelationStrength = "strong"
)

// CorrelationDirection classifies the sign of the coefficient.
type CorrelationDirection string

// Directions with a ±0.1 deadband around zero.
const (
	DirectionNone     CorrelationDirection = "none"
	DirectionPositive CorrelationDirection = "positive"
	DirectionNegative CorrelationDirection = "negative"
)

// CorrelationExample is one evidentiary data point backing a correlation.
type CorrelationExample struct {
	Date   time.Time
	ValueA float64
	ValueB float64
}

// Correlation is a discovered statistical relationship between two domain
// metrics. Coefficient and Significance are nil when never computed.
type Correlation struct {
	DiscoveredAt time.Time
	LastVerified *time.Time
	Coefficient  *float64
	Significance *float64
	ID           string
	UserID       string
	DimensionA   string
	DimensionB   string
	Description  string
	SampleCount  int
	Examples     []CorrelationExample
}

// MaxCorrelationExamples caps the evidentiary points kept per correlation.
const MaxCorrelationExamples = 3

// Strength bands the coefficient magnitude.
func (c *Correlation) Strength() CorrelationStrength {
	if c.Coefficient == nil {
		return StrengthNone
	}
	abs := math.Abs(*c.Coefficient)
	switch {
	case abs >= 0.7:
		return StrengthStrong
	case abs >= 0.4:
		return StrengthModerate
	case abs >= 0.2:
		return StrengthWeak
	default:
		return StrengthNone
	}
}

// Direction classifies the coefficient sign with a ±0.1 deadband.
func (c *Correlation) Direction() CorrelationDirection {
	if c.Coefficient == nil {
		return DirectionNone
	}
	switch {
	case *c.Coefficient > 0.1:
		return DirectionPositive
	case *c.Coefficient < -0.1:
		return DirectionNegative
	default:
		return DirectionNone
	}
}

// IsSignificant reports whether the correlation clears p < 0.05.
func (c *Correlation) IsSignificant() bool {
	return c.Significance != nil && *c.Significance < 0.05
}

// IsStale reports whether the correlation needs re-verification: never
// verified, or last verified more than 30 days before now.
func (c *Correlation) IsStale(now time.Time) bool {
	if c.LastVerified == nil {
		return true
	}
	return now.Sub(*c.LastVerified) > 30*24*time.Hour
}
