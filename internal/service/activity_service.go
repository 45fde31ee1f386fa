package service

import (
	"context"

	"repair-desk/internal/domain"
	"repair-desk/internal/logger"
	"repair-desk/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// DefaultActivityLimit is used when the caller does not ask for a page size
	DefaultActivityLimit = 20
	// MaxActivityLimit caps a single page of the feed
	MaxActivityLimit = 200
)

// ActivityService defines the interface for the dashboard activity feed
type ActivityService interface {
	// Record appends an entry. It never fails the caller: a store error is logged.
	Record(ctx context.Context, activityType domain.ActivityType, message string)
	List(ctx context.Context, limit int) ([]*domain.Activity, error)
}

type activityService struct {
	repo   repository.ActivityRepository
	logger *zap.Logger
	now    Clock
}

// NewActivityService creates a new instance of ActivityService
func NewActivityService(repo repository.ActivityRepository, logger *zap.Logger) ActivityService {
	return &activityService{repo: repo, logger: logger, now: systemClock}
}

func (s *activityService) Record(ctx context.Context, activityType domain.ActivityType, message string) {
	activity := &domain.Activity{
		ID:        uuid.New(),
		Type:      activityType,
		Message:   message,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.Create(ctx, activity); err != nil {
		logger.WithContext(ctx, s.logger).Error("Failed to record activity",
			zap.Error(err),
			zap.String("type", string(activityType)),
			zap.String("message", message),
		)
	}
}

// List returns the newest entries first. A limit <= 0 selects the default page size.
func (s *activityService) List(ctx context.Context, limit int) ([]*domain.Activity, error) {
	ctx, span := startSpan(ctx, "ListActivities")
	defer span.End()

	switch {
	case limit <= 0:
		limit = DefaultActivityLimit
	case limit > MaxActivityLimit:
		limit = MaxActivityLimit
	}

	activities, err := s.repo.List(ctx, limit)
	if err != nil {
		return nil, fail(span, err)
	}
	return activities, nil
}
