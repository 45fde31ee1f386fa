package mongorepo

import (
	"context"
	"fmt"

	"repair-desk/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type activityRepository struct {
	coll *mongo.Collection
}

func (r *activityRepository) Create(ctx context.Context, activity *domain.Activity) error {
	ctx, span := startSpan(ctx, "MongoCreateActivity")
	defer span.End()

	doc := activityEntity{
		ID:        activity.ID.String(),
		Type:      string(activity.Type),
		Message:   activity.Message,
		CreatedAt: activity.CreatedAt,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fail(span, fmt.Errorf("failed to create activity: %w", err), "Failed to create activity")
	}
	return nil
}

func (r *activityRepository) List(ctx context.Context, limit int) ([]*domain.Activity, error) {
	ctx, span := startSpan(ctx, "MongoListActivities")
	defer span.End()

	cursor, err := r.coll.Find(ctx, bson.M{}, newestFirst("created_at").SetLimit(int64(limit)))
	if err != nil {
		return nil, fail(span, fmt.Errorf("failed to list activities: %w", err), "Failed to list activities")
	}
	defer cursor.Close(ctx)

	activities := []*domain.Activity{}
	for cursor.Next(ctx) {
		var doc activityEntity
		if err := cursor.Decode(&doc); err != nil {
			return nil, fail(span, fmt.Errorf("failed to decode activity: %w", err), "Failed to decode activity")
		}
		id, err := parseID(doc.ID)
		if err != nil {
			return nil, fail(span, err, "Failed to decode activity")
		}
		activities = append(activities, &domain.Activity{
			ID:        id,
			Type:      domain.ActivityType(doc.Type),
			Message:   doc.Message,
			CreatedAt: doc.CreatedAt,
		})
	}
	if err := cursor.Err(); err != nil {
		return nil, fail(span, fmt.Errorf("cursor error: %w", err), "Cursor error")
	}
	return activities, nil
}
