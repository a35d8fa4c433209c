// Package config provides configuration utilities for the application.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/lifeprism/lifeprism/internal/common"
)

// Settings carries every tunable the pipeline reads. Nothing downstream
// touches viper directly; engines receive this struct at construction.
type Settings struct {
	// Aggregation.
	CacheTTL       time.Duration
	CacheSize      int
	RecentDays     int // window for recent financials and emotions
	UpcomingDays   int // window for upcoming events
	RecentInsights int // how many persisted insights a snapshot carries

	// Correlation analysis.
	MinSamples        int
	MinCoefficient    float64
	SignificanceLevel float64
	LookbackDays      int
	ExactSignificance bool

	// Insight generation.
	DeadlineWindowDays int
	StreakMilestones   []int
	AlertThreshold     float64
}

// Defaults returns the shipped settings.
func Defaults() Settings {
	return Settings{
		CacheTTL:           300 * time.Second,
		CacheSize:          1024,
		RecentDays:         30,
		UpcomingDays:       7,
		RecentInsights:     20,
		MinSamples:         30,
		MinCoefficient:     0.4,
		SignificanceLevel:  0.05,
		LookbackDays:       60,
		ExactSignificance:  false,
		DeadlineWindowDays: 7,
		StreakMilestones:   []int{21, 66},
		AlertThreshold:     0.8,
	}
}

// Load reads settings from viper on top of the defaults.
func Load() (Settings, error) {
	s := Defaults()

	if v := viper.GetDuration("cache.ttl"); v > 0 {
		s.CacheTTL = v
	}
	if v := viper.GetInt("cache.size"); v > 0 {
		s.CacheSize = v
	}
	if v := viper.GetInt("aggregation.recent_days"); v > 0 {
		s.RecentDays = v
	}
	if v := viper.GetInt("aggregation.upcoming_days"); v > 0 {
		s.UpcomingDays = v
	}
	if v := viper.GetInt("aggregation.recent_insights"); v > 0 {
		s.RecentInsights = v
	}
	if v := viper.GetInt("correlation.min_samples"); v > 0 {
		s.MinSamples = v
	}
	if v := viper.GetFloat64("correlation.min_coefficient"); v > 0 {
		s.MinCoefficient = v
	}
	if v := viper.GetFloat64("correlation.significance_level"); v > 0 {
		s.SignificanceLevel = v
	}
	if v := viper.GetInt("correlation.lookback_days"); v > 0 {
		s.LookbackDays = v
	}
	if viper.IsSet("correlation.exact_significance") {
		s.ExactSignificance = viper.GetBool("correlation.exact_significance")
	}
	if v := viper.GetInt("insights.deadline_window_days"); v > 0 {
		s.DeadlineWindowDays = v
	}
	if v := viper.GetIntSlice("insights.streak_milestones"); len(v) > 0 {
		s.StreakMilestones = v
	}
	if v := viper.GetFloat64("insights.alert_threshold"); v > 0 {
		s.AlertThreshold = v
	}

	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate rejects settings the pipeline cannot run with.
func (s Settings) Validate() error {
	if s.CacheTTL <= 0 {
		return fmt.Errorf("%w: cache TTL must be positive", common.ErrInvalidConfig)
	}
	if s.MinSamples < 3 {
		return fmt.Errorf("%w: minimum sample size must be at least 3", common.ErrInvalidConfig)
	}
	if s.MinCoefficient < 0 || s.MinCoefficient > 1 {
		return fmt.Errorf("%w: minimum coefficient must be in [0,1]", common.ErrInvalidConfig)
	}
	if s.SignificanceLevel <= 0 || s.SignificanceLevel >= 1 {
		return fmt.Errorf("%w: significance level must be in (0,1)", common.ErrInvalidConfig)
	}
	if s.AlertThreshold <= 0 || s.AlertThreshold > 1 {
		return fmt.Errorf("%w: alert threshold must be in (0,1]", common.ErrInvalidConfig)
	}
	if s.DeadlineWindowDays < 1 {
		return fmt.Errorf("%w: deadline window must be at least one day", common.ErrInvalidConfig)
	}
	return nil
}
