package mongorepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"repair-desk/internal/domain"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel/attribute"
)

type saleRepository struct {
	client          *mongo.Client
	products        *mongo.Collection
	secondHand      *mongo.Collection
	sales           *mongo.Collection
	secondHandSales *mongo.Collection
}

// CreateSale decrements every line and inserts the sale in one transaction.
// The callback may run more than once when the server reports a transient
// conflict, so it rebuilds its results from scratch on every attempt.
func (r *saleRepository) CreateSale(ctx context.Context, sale *domain.Sale) ([]domain.StockLevel, error) {
	ctx, span := startSpan(ctx, "MongoCreateSale")
	defer span.End()
	span.SetAttributes(attribute.String("saleID", sale.ID.String()), attribute.Int("lineCount", len(sale.Lines)))

	session, err := r.client.StartSession()
	if err != nil {
		return nil, fail(span, fmt.Errorf("failed to start session: %w", err), "Failed to start MongoDB session")
	}
	defer session.EndSession(ctx)

	ids, quantities := sale.Quantities()
	var levels []domain.StockLevel

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		levels = make([]domain.StockLevel, 0, len(ids))
		names := make(map[uuid.UUID]string, len(ids))

		for _, id := range ids {
			var doc productEntity
			err := decrement(sc, r.products, id, quantities[id], sale.CreatedAt).Decode(&doc)
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil, stockFailure(sc, r.products, domain.ResourceProduct, id, quantities[id])
			}
			if err != nil {
				return nil, fmt.Errorf("failed to decrement product stock: %w", err)
			}
			names[id] = doc.Name
			levels = append(levels, domain.StockLevel{ProductID: id, Stock: doc.Stock})
		}

		for i := range sale.Lines {
			sale.Lines[i].ProductName = names[sale.Lines[i].ProductID]
		}
		entity, err := newSaleEntity(sale)
		if err != nil {
			return nil, err
		}
		if _, err := r.sales.InsertOne(sc, entity); err != nil {
			return nil, fmt.Errorf("failed to create sale: %w", err)
		}
		return nil, nil
	})
	if err != nil {
		return nil, fail(span, err, "Sale transaction failed")
	}

	return levels, nil
}

func (r *saleRepository) ListSales(ctx context.Context, dr domain.DateRange) ([]*domain.Sale, error) {
	ctx, span := startSpan(ctx, "MongoListSales")
	defer span.End()

	cursor, err := r.sales.Find(ctx, dateFilter("sale_date", dr), newestFirst("sale_date"))
	if err != nil {
		return nil, fail(span, fmt.Errorf("failed to list sales: %w", err), "Failed to list sales")
	}
	defer cursor.Close(ctx)

	sales := []*domain.Sale{}
	for cursor.Next(ctx) {
		var doc saleEntity
		if err := cursor.Decode(&doc); err != nil {
			return nil, fail(span, fmt.Errorf("failed to decode sale: %w", err), "Failed to decode sale")
		}
		sale, err := doc.toDomain()
		if err != nil {
			return nil, fail(span, err, "Failed to decode sale")
		}
		sales = append(sales, sale)
	}
	if err := cursor.Err(); err != nil {
		return nil, fail(span, fmt.Errorf("cursor error: %w", err), "Cursor error")
	}
	return sales, nil
}

func (r *saleRepository) CreateSecondHandSale(ctx context.Context, sale *domain.SaleTransaction) (int, error) {
	ctx, span := startSpan(ctx, "MongoCreateSecondHandSale")
	defer span.End()
	span.SetAttributes(attribute.String("productID", sale.ProductID.String()))

	session, err := r.client.StartSession()
	if err != nil {
		return 0, fail(span, fmt.Errorf("failed to start session: %w", err), "Failed to start MongoDB session")
	}
	defer session.EndSession(ctx)

	var remaining int
	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		var doc secondHandEntity
		err := decrement(sc, r.secondHand, sale.ProductID, sale.QuantitySold, sale.SaleDate).Decode(&doc)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, stockFailure(sc, r.secondHand, domain.ResourceSecondHandProduct, sale.ProductID, sale.QuantitySold)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to decrement second-hand stock: %w", err)
		}

		price, err := fromDecimal128(doc.Product.Price)
		if err != nil {
			return nil, err
		}
		sale.Price(doc.Product.Name, price)
		remaining = doc.Product.Stock

		entity, err := newSaleTransactionEntity(sale)
		if err != nil {
			return nil, err
		}
		if _, err := r.secondHandSales.InsertOne(sc, entity); err != nil {
			return nil, fmt.Errorf("failed to create second-hand sale: %w", err)
		}
		return nil, nil
	})
	if err != nil {
		return 0, fail(span, err, "Second-hand sale transaction failed")
	}

	return remaining, nil
}

func (r *saleRepository) ListSecondHandSales(ctx context.Context, dr domain.DateRange) ([]*domain.SaleTransaction, error) {
	ctx, span := startSpan(ctx, "MongoListSecondHandSales")
	defer span.End()

	cursor, err := r.secondHandSales.Find(ctx, dateFilter("sale_date", dr), newestFirst("sale_date"))
	if err != nil {
		return nil, fail(span, fmt.Errorf("failed to list second-hand sales: %w", err), "Failed to list second-hand sales")
	}
	defer cursor.Close(ctx)

	sales := []*domain.SaleTransaction{}
	for cursor.Next(ctx) {
		var doc saleTransactionEntity
		if err := cursor.Decode(&doc); err != nil {
			return nil, fail(span, fmt.Errorf("failed to decode second-hand sale: %w", err), "Failed to decode second-hand sale")
		}
		sale, err := doc.toDomain()
		if err != nil {
			return nil, fail(span, err, "Failed to decode second-hand sale")
		}
		sales = append(sales, sale)
	}
	if err := cursor.Err(); err != nil {
		return nil, fail(span, fmt.Errorf("cursor error: %w", err), "Cursor error")
	}
	return sales, nil
}

// decrement takes quantity units of id only if that many are in stock and
// returns the updated document
func decrement(ctx context.Context, coll *mongo.Collection, id uuid.UUID, quantity int, at time.Time) *mongo.SingleResult {
	return coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id.String(), "stock": bson.M{"$gte": quantity}},
		bson.M{"$inc": bson.M{"stock": -quantity}, "$set": bson.M{"updated_at": at}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
}

// stockFailure explains a conditional decrement that matched no document
func stockFailure(ctx context.Context, coll *mongo.Collection, resource string, id uuid.UUID, requested int) error {
	var current struct {
		Stock int `bson:"stock"`
	}
	err := coll.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&current)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.NewNotFoundError(resource, id.String())
	}
	if err != nil {
		return fmt.Errorf("failed to read stock: %w", err)
	}
	return &domain.InsufficientStockError{ProductID: id.String(), Requested: requested, Available: current.Stock}
}
