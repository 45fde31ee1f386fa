package repository

import (
	"context"
	"database/sql"
	"fmt"

	"repair-desk/internal/domain"
)

// ActivityRepository defines the interface for the activity feed
type ActivityRepository interface {
	Create(ctx context.Context, activity *domain.Activity) error
	List(ctx context.Context, limit int) ([]*domain.Activity, error)
}

type activityRepository struct {
	db *sql.DB
}

// NewActivityRepository creates a new instance of ActivityRepository
func NewActivityRepository(db *sql.DB) ActivityRepository {
	return &activityRepository{db: db}
}

// Create appends an entry to the feed
func (r *activityRepository) Create(ctx context.Context, activity *domain.Activity) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO activities (id, type, message, created_at)
		VALUES ($1, $2, $3, $4)
	`, activity.ID, string(activity.Type), activity.Message, activity.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create activity: %w", err)
	}
	return nil
}

// List retrieves the most recent limit entries, newest first
func (r *activityRepository) List(ctx context.Context, limit int) ([]*domain.Activity, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, type, message, created_at
		FROM activities
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	defer rows.Close()

	activities := []*domain.Activity{}
	for rows.Next() {
		a := &domain.Activity{}
		var activityType string
		if err := rows.Scan(&a.ID, &activityType, &a.Message, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		a.Type = domain.ActivityType(activityType)
		activities = append(activities, a)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating activities: %w", err)
	}

	return activities, nil
}
