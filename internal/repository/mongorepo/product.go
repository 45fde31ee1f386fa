package mongorepo

import (
	"context"
	"errors"
	"fmt"

	"repair-desk/internal/domain"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel/attribute"
)

type productRepository struct {
	coll *mongo.Collection
}

func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	ctx, span := startSpan(ctx, "MongoCreateProduct")
	defer span.End()

	doc, err := newProductEntity(product)
	if err != nil {
		return fail(span, err, "Failed to encode product")
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fail(span, fmt.Errorf("failed to create product: %w", err), "Failed to create product")
	}
	return nil
}

func (r *productRepository) Update(ctx context.Context, product *domain.Product) error {
	ctx, span := startSpan(ctx, "MongoUpdateProduct")
	defer span.End()
	span.SetAttributes(attribute.String("productID", product.ID.String()))

	doc, err := newProductEntity(product)
	if err != nil {
		return fail(span, err, "Failed to encode product")
	}
	update := bson.M{"$set": bson.M{
		"name":        doc.Name,
		"description": doc.Description,
		"price":       doc.Price,
		"stock":       doc.Stock,
		"category":    doc.Category,
		"brand":       doc.Brand,
		"images":      doc.Images,
		"updated_at":  doc.UpdatedAt,
	}}
	result, err := r.coll.UpdateByID(ctx, doc.ID, update)
	if err != nil {
		return fail(span, fmt.Errorf("failed to update product: %w", err), "Failed to update product")
	}
	if result.MatchedCount == 0 {
		return domain.NewNotFoundError(domain.ResourceProduct, doc.ID)
	}
	return nil
}

func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, span := startSpan(ctx, "MongoDeleteProduct")
	defer span.End()

	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return fail(span, fmt.Errorf("failed to delete product: %w", err), "Failed to delete product")
	}
	if result.DeletedCount == 0 {
		return domain.NewNotFoundError(domain.ResourceProduct, id.String())
	}
	return nil
}

func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	ctx, span := startSpan(ctx, "MongoFindProduct")
	defer span.End()

	var doc productEntity
	err := r.coll.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.NewNotFoundError(domain.ResourceProduct, id.String())
	}
	if err != nil {
		return nil, fail(span, fmt.Errorf("failed to find product by ID: %w", err), "Failed to find product")
	}
	return doc.toDomain()
}

func (r *productRepository) List(ctx context.Context, category string) ([]*domain.Product, error) {
	filter := bson.M{}
	if category != "" {
		filter["category"] = category
	}
	return r.find(ctx, "MongoListProducts", filter, newestFirst("created_at"))
}

func (r *productRepository) ListLowStock(ctx context.Context, threshold int) ([]*domain.Product, error) {
	opts := options.Find().SetSort(bson.D{{Key: "stock", Value: 1}, {Key: "name", Value: 1}})
	return r.find(ctx, "MongoListLowStock", bson.M{"stock": bson.M{"$lt": threshold}}, opts)
}

func (r *productRepository) find(ctx context.Context, name string, filter bson.M, opts *options.FindOptions) ([]*domain.Product, error) {
	ctx, span := startSpan(ctx, name)
	defer span.End()

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fail(span, fmt.Errorf("failed to list products: %w", err), "Failed to list products")
	}
	defer cursor.Close(ctx)

	products := []*domain.Product{}
	for cursor.Next(ctx) {
		var doc productEntity
		if err := cursor.Decode(&doc); err != nil {
			return nil, fail(span, fmt.Errorf("failed to decode product: %w", err), "Failed to decode product")
		}
		product, err := doc.toDomain()
		if err != nil {
			return nil, fail(span, err, "Failed to decode product")
		}
		products = append(products, product)
	}
	if err := cursor.Err(); err != nil {
		return nil, fail(span, fmt.Errorf("cursor error: %w", err), "Cursor error")
	}

	span.SetAttributes(attribute.Int("productCount", len(products)))
	return products, nil
}

type secondHandRepository struct {
	coll *mongo.Collection
}

func (r *secondHandRepository) Create(ctx context.Context, product *domain.SecondHandProduct) error {
	ctx, span := startSpan(ctx, "MongoCreateSecondHandProduct")
	defer span.End()

	doc, err := newSecondHandEntity(product)
	if err != nil {
		return fail(span, err, "Failed to encode second-hand product")
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fail(span, fmt.Errorf("failed to create second-hand product: %w", err), "Failed to create second-hand product")
	}
	return nil
}

func (r *secondHandRepository) Update(ctx context.Context, product *domain.SecondHandProduct) error {
	ctx, span := startSpan(ctx, "MongoUpdateSecondHandProduct")
	defer span.End()

	doc, err := newSecondHandEntity(product)
	if err != nil {
		return fail(span, err, "Failed to encode second-hand product")
	}
	update := bson.M{"$set": bson.M{
		"name":            doc.Product.Name,
		"description":     doc.Product.Description,
		"price":           doc.Product.Price,
		"stock":           doc.Product.Stock,
		"category":        doc.Product.Category,
		"brand":           doc.Product.Brand,
		"images":          doc.Product.Images,
		"condition":       doc.Condition,
		"usage_duration":  doc.UsageDuration,
		"condition_notes": doc.ConditionNotes,
		"updated_at":      doc.Product.UpdatedAt,
	}}
	result, err := r.coll.UpdateByID(ctx, doc.Product.ID, update)
	if err != nil {
		return fail(span, fmt.Errorf("failed to update second-hand product: %w", err), "Failed to update second-hand product")
	}
	if result.MatchedCount == 0 {
		return domain.NewNotFoundError(domain.ResourceSecondHandProduct, doc.Product.ID)
	}
	return nil
}

func (r *secondHandRepository) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, span := startSpan(ctx, "MongoDeleteSecondHandProduct")
	defer span.End()

	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return fail(span, fmt.Errorf("failed to delete second-hand product: %w", err), "Failed to delete second-hand product")
	}
	if result.DeletedCount == 0 {
		return domain.NewNotFoundError(domain.ResourceSecondHandProduct, id.String())
	}
	return nil
}

func (r *secondHandRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.SecondHandProduct, error) {
	ctx, span := startSpan(ctx, "MongoFindSecondHandProduct")
	defer span.End()

	var doc secondHandEntity
	err := r.coll.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.NewNotFoundError(domain.ResourceSecondHandProduct, id.String())
	}
	if err != nil {
		return nil, fail(span, fmt.Errorf("failed to find second-hand product by ID: %w", err), "Failed to find second-hand product")
	}
	return doc.toDomain()
}

func (r *secondHandRepository) List(ctx context.Context, category string) ([]*domain.SecondHandProduct, error) {
	ctx, span := startSpan(ctx, "MongoListSecondHandProducts")
	defer span.End()

	filter := bson.M{}
	if category != "" {
		filter["category"] = category
	}

	cursor, err := r.coll.Find(ctx, filter, newestFirst("created_at"))
	if err != nil {
		return nil, fail(span, fmt.Errorf("failed to list second-hand products: %w", err), "Failed to list second-hand products")
	}
	defer cursor.Close(ctx)

	products := []*domain.SecondHandProduct{}
	for cursor.Next(ctx) {
		var doc secondHandEntity
		if err := cursor.Decode(&doc); err != nil {
			return nil, fail(span, fmt.Errorf("failed to decode second-hand product: %w", err), "Failed to decode second-hand product")
		}
		product, err := doc.toDomain()
		if err != nil {
			return nil, fail(span, err, "Failed to decode second-hand product")
		}
		products = append(products, product)
	}
	if err := cursor.Err(); err != nil {
		return nil, fail(span, fmt.Errorf("cursor error: %w", err), "Cursor error")
	}
	return products, nil
}
