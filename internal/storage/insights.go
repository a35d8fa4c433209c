package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lifeprism/lifeprism/internal/model"
)

// actionEnvelope is the stored form of a suggested action. Params are kept
// as raw JSON and decoded into the struct matching the action type.
type actionEnvelope struct {
	Type     model.ActionType `json:"type"`
	Action   string           `json:"action"`
	Priority int              `json:"priority"`
	Params   json.RawMessage  `json:"params,omitempty"`
}

func encodeActions(actions []model.SuggestedAction) (string, error) {
	if len(actions) == 0 {
		return "", nil
	}
	envelopes := make([]actionEnvelope, 0, len(actions))
	for _, a := range actions {
		env := actionEnvelope{Type: a.Type, Action: a.Action, Priority: a.Priority}
		if a.Params != nil {
			raw, err := json.Marshal(a.Params)
			if err != nil {
				return "", fmt.Errorf("failed to encode action params: %w", err)
			}
			env.Params = raw
		}
		envelopes = append(envelopes, env)
	}
	data, err := json.Marshal(envelopes)
	if err != nil {
		return "", fmt.Errorf("failed to encode actions: %w", err)
	}
	return string(data), nil
}

func decodeActions(data string) ([]model.SuggestedAction, error) {
	if data == "" {
		return nil, nil
	}
	var envelopes []actionEnvelope
	if err := json.Unmarshal([]byte(data), &envelopes); err != nil {
		return nil, fmt.Errorf("failed to decode actions: %w", err)
	}
	actions := make([]model.SuggestedAction, 0, len(envelopes))
	for _, env := range envelopes {
		action := model.SuggestedAction{
			Type:     env.Type,
			Action:   env.Action,
			Priority: env.Priority,
		}
		if len(env.Params) > 0 {
			params, err := decodeActionParams(env.Type, env.Params)
			if err != nil {
				return nil, err
			}
			action.Params = params
		}
		actions = append(actions, action)
	}
	return actions, nil
}

func decodeActionParams(actionType model.ActionType, raw json.RawMessage) (model.ActionParams, error) {
	var params model.ActionParams
	switch actionType {
	case model.ActionReviewBudget:
		params = &model.ReviewBudgetParams{}
	case model.ActionPlanMeals:
		params = &model.PlanMealsParams{}
	case model.ActionSprintPlan:
		params = &model.SprintPlanParams{}
	case model.ActionAdjustGoal:
		params = &model.AdjustGoalParams{}
	case model.ActionSetDailyPace:
		params = &model.SetDailyPaceParams{}
	case model.ActionLowerTarget:
		params = &model.LowerTargetParams{}
	case model.ActionSetReminder:
		params = &model.SetReminderParams{}
	case model.ActionRescheduleEvent:
		params = &model.RescheduleEventParams{}
	case model.ActionReviewPattern:
		params = &model.ReviewPatternParams{}
	default:
		return nil, fmt.Errorf("unknown action type %q", actionType)
	}
	if err := json.Unmarshal(raw, params); err != nil {
		return nil, fmt.Errorf("failed to decode %s params: %w", actionType, err)
	}
	return deref(params), nil
}

// deref returns the value pointed to so stored actions round-trip with the
// same concrete types the detectors emit.
func deref(params model.ActionParams) model.ActionParams {
	switch p := params.(type) {
	case *model.ReviewBudgetParams:
		return *p
	case *model.PlanMealsParams:
		return *p
	case *model.SprintPlanParams:
		return *p
	case *model.AdjustGoalParams:
		return *p
	case *model.SetDailyPaceParams:
		return *p
	case *model.LowerTargetParams:
		return *p
	case *model.SetReminderParams:
		return *p
	case *model.RescheduleEventParams:
		return *p
	case *model.ReviewPatternParams:
		return *p
	default:
		return params
	}
}

// FetchRecentInsights returns up to `limit` insights, newest first.
func (s *SQLiteStorage) FetchRecentInsights(ctx context.Context, userID string, limit int) ([]model.Insight, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("insight limit must be positive, got %d", limit)
	}
	return s.queryInsights(ctx, userID, `
		SELECT id, user_id, type, category, title, COALESCE(description, ''),
		       priority, urgency, impact, confidence, actionable, status,
		       COALESCE(actions, ''), COALESCE(params, ''), generated_at, valid_until
		FROM insights
		WHERE user_id = ?
		ORDER BY generated_at DESC
		LIMIT ?
	`, userID, limit)
}

// FetchUrgentInsights returns new priority 4+ insights, highest first.
func (s *SQLiteStorage) FetchUrgentInsights(ctx context.Context, userID string) ([]model.Insight, error) {
	return s.queryInsights(ctx, userID, `
		SELECT id, user_id, type, category, title, COALESCE(description, ''),
		       priority, urgency, impact, confidence, actionable, status,
		       COALESCE(actions, ''), COALESCE(params, ''), generated_at, valid_until
		FROM insights
		WHERE user_id = ? AND status = 'new' AND priority >= 4
		ORDER BY priority DESC, generated_at DESC
	`, userID)
}

func (s *SQLiteStorage) queryInsights(ctx context.Context, userID, query string, args ...any) ([]model.Insight, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query insights: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var insights []model.Insight
	for rows.Next() {
		var insight model.Insight
		var actions, params string
		var validUntil sql.NullTime
		if err := rows.Scan(
			&insight.ID, &insight.UserID, &insight.Type, &insight.Category,
			&insight.Title, &insight.Description, &insight.Priority,
			&insight.Urgency, &insight.Impact, &insight.Confidence,
			&insight.Actionable, &insight.Status, &actions, &params,
			&insight.GeneratedAt, &validUntil,
		); err != nil {
			return nil, fmt.Errorf("failed to scan insight: %w", err)
		}
		if validUntil.Valid {
			v := validUntil.Time
			insight.ValidUntil = &v
		}
		if insight.Actions, err = decodeActions(actions); err != nil {
			return nil, err
		}
		if params != "" {
			if err := json.Unmarshal([]byte(params), &insight.Params); err != nil {
				return nil, fmt.Errorf("failed to decode insight params: %w", err)
			}
		}
		insights = append(insights, insight)
	}
	return insights, rows.Err()
}

// SaveInsights persists a batch of generated insights in one transaction.
func (s *SQLiteStorage) SaveInsights(ctx context.Context, insights []model.Insight) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if len(insights) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO insights (id, user_id, type, category, title, description,
			priority, urgency, impact, confidence, actionable, status,
			actions, params, generated_at, valid_until)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET status = excluded.status
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i := range insights {
		insight := &insights[i]
		if err := insight.Validate(); err != nil {
			return err
		}

		actions, err := encodeActions(insight.Actions)
		if err != nil {
			return err
		}
		var params string
		if len(insight.Params) > 0 {
			data, mErr := json.Marshal(insight.Params)
			if mErr != nil {
				return fmt.Errorf("failed to encode insight params: %w", mErr)
			}
			params = string(data)
		}

		if _, err := stmt.ExecContext(ctx,
			insight.ID, insight.UserID, insight.Type, insight.Category,
			insight.Title, insight.Description, insight.Priority,
			insight.Urgency, insight.Impact, insight.Confidence,
			insight.Actionable, insight.Status, actions, params,
			insight.GeneratedAt, insight.ValidUntil,
		); err != nil {
			return fmt.Errorf("failed to insert insight: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit insights: %w", err)
	}
	return nil
}
