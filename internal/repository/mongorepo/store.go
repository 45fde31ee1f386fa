// Package mongorepo implements the repository interfaces on MongoDB.
// Sales run in multi-document transactions and need a replica set.
package mongorepo

import (
	"context"
	"fmt"

	"repair-desk/internal/domain"
	"repair-desk/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	productsCollection        = "products"
	secondHandCollection      = "second_hand_products"
	repairOrdersCollection    = "repair_orders"
	salesCollection           = "sales"
	secondHandSalesCollection = "second_hand_sales"
	activitiesCollection      = "activities"
)

var tracer = otel.Tracer("repair-desk/mongorepo")

func startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return tracer.Start(ctx, name)
}

// fail records err on span unless it is an expected domain outcome
func fail(span trace.Span, err error, msg string) error {
	if !domain.IsExpected(err) {
		span.RecordError(err)
		span.SetStatus(codes.Error, msg)
	}
	return err
}

// New wires every repository to database db of client
func New(client *mongo.Client, db string) *repository.Repositories {
	database := client.Database(db)
	return &repository.Repositories{
		Products:     &productRepository{coll: database.Collection(productsCollection)},
		SecondHand:   &secondHandRepository{coll: database.Collection(secondHandCollection)},
		RepairOrders: &repairOrderRepository{coll: database.Collection(repairOrdersCollection)},
		Sales: &saleRepository{
			client:          client,
			products:        database.Collection(productsCollection),
			secondHand:      database.Collection(secondHandCollection),
			sales:           database.Collection(salesCollection),
			secondHandSales: database.Collection(secondHandSalesCollection),
		},
		Activities: &activityRepository{coll: database.Collection(activitiesCollection)},
	}
}

// EnsureIndexes creates the secondary indexes the list and report queries use
func EnsureIndexes(ctx context.Context, client *mongo.Client, db string) error {
	database := client.Database(db)
	indexes := map[string][]string{
		productsCollection:        {"category", "stock"},
		secondHandCollection:      {"category"},
		repairOrdersCollection:    {"repair_status", "created_at"},
		salesCollection:           {"sale_date"},
		secondHandSalesCollection: {"sale_date"},
		activitiesCollection:      {"created_at"},
	}

	for coll, keys := range indexes {
		models := make([]mongo.IndexModel, 0, len(keys))
		for _, key := range keys {
			models = append(models, mongo.IndexModel{
				Keys:    bson.D{{Key: key, Value: 1}},
				Options: options.Index().SetName("idx_" + coll + "_" + key),
			})
		}
		if _, err := database.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", coll, err)
		}
	}
	return nil
}

func newestFirst(field string) *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: field, Value: -1}})
}

func dateFilter(field string, r domain.DateRange) bson.M {
	bounds := bson.M{}
	if !r.From.IsZero() {
		bounds["$gte"] = r.From
	}
	if !r.To.IsZero() {
		bounds["$lt"] = r.To
	}
	if len(bounds) == 0 {
		return bson.M{}
	}
	return bson.M{field: bounds}
}
