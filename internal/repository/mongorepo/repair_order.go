package mongorepo

import (
	"context"
	"errors"
	"fmt"

	"repair-desk/internal/domain"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.opentelemetry.io/otel/attribute"
)

type repairOrderRepository struct {
	coll *mongo.Collection
}

func (r *repairOrderRepository) Create(ctx context.Context, order *domain.RepairOrder) error {
	ctx, span := startSpan(ctx, "MongoCreateRepairOrder")
	defer span.End()

	doc, err := newRepairOrderEntity(order)
	if err != nil {
		return fail(span, err, "Failed to encode repair order")
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fail(span, fmt.Errorf("failed to create repair order: %w", err), "Failed to create repair order")
	}
	return nil
}

func (r *repairOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.RepairOrder, error) {
	ctx, span := startSpan(ctx, "MongoFindRepairOrder")
	defer span.End()
	span.SetAttributes(attribute.String("repairID", id.String()))

	var doc repairOrderEntity
	err := r.coll.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.NewNotFoundError(domain.ResourceRepairOrder, id.String())
	}
	if err != nil {
		return nil, fail(span, fmt.Errorf("failed to find repair order by ID: %w", err), "Failed to find repair order")
	}
	return doc.toDomain()
}

func (r *repairOrderRepository) List(ctx context.Context, status *domain.RepairStatus) ([]*domain.RepairOrder, error) {
	ctx, span := startSpan(ctx, "MongoListRepairOrders")
	defer span.End()

	filter := bson.M{}
	if status != nil {
		filter["repair_status"] = string(*status)
	}

	cursor, err := r.coll.Find(ctx, filter, newestFirst("created_at"))
	if err != nil {
		return nil, fail(span, fmt.Errorf("failed to list repair orders: %w", err), "Failed to list repair orders")
	}
	defer cursor.Close(ctx)

	orders := []*domain.RepairOrder{}
	for cursor.Next(ctx) {
		var doc repairOrderEntity
		if err := cursor.Decode(&doc); err != nil {
			return nil, fail(span, fmt.Errorf("failed to decode repair order: %w", err), "Failed to decode repair order")
		}
		order, err := doc.toDomain()
		if err != nil {
			return nil, fail(span, err, "Failed to decode repair order")
		}
		orders = append(orders, order)
	}
	if err := cursor.Err(); err != nil {
		return nil, fail(span, fmt.Errorf("cursor error: %w", err), "Cursor error")
	}

	span.SetAttributes(attribute.Int("repairCount", len(orders)))
	return orders, nil
}

// Update replaces the stored document only while its version still matches order.Version
func (r *repairOrderRepository) Update(ctx context.Context, order *domain.RepairOrder) error {
	ctx, span := startSpan(ctx, "MongoUpdateRepairOrder")
	defer span.End()
	span.SetAttributes(attribute.String("repairID", order.ID.String()))

	doc, err := newRepairOrderEntity(order)
	if err != nil {
		return fail(span, err, "Failed to encode repair order")
	}
	doc.Version = order.Version + 1

	result, err := r.coll.ReplaceOne(ctx, bson.M{"_id": doc.ID, "version": order.Version}, doc)
	if err != nil {
		return fail(span, fmt.Errorf("failed to update repair order: %w", err), "Failed to update repair order")
	}

	if result.MatchedCount == 0 {
		count, err := r.coll.CountDocuments(ctx, bson.M{"_id": doc.ID})
		if err != nil {
			return fail(span, fmt.Errorf("failed to check repair order: %w", err), "Failed to check repair order")
		}
		if count == 0 {
			return domain.NewNotFoundError(domain.ResourceRepairOrder, doc.ID)
		}
		return domain.ErrVersionConflict
	}

	order.Version = doc.Version
	return nil
}

func (r *repairOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, span := startSpan(ctx, "MongoDeleteRepairOrder")
	defer span.End()

	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return fail(span, fmt.Errorf("failed to delete repair order: %w", err), "Failed to delete repair order")
	}
	if result.DeletedCount == 0 {
		return domain.NewNotFoundError(domain.ResourceRepairOrder, id.String())
	}
	return nil
}
