package database

import (
	"context"
	"fmt"
	"time"

	"repair-desk/internal/config"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// ConnectMongo connects to MongoDB, retrying until the server answers and its
// replica set is initialized. Sales run in multi-document transactions, which
// a standalone server does not support.
func ConnectMongo(cfg config.MongoConfig, retries int, delay time.Duration, logger *zap.Logger) (*mongo.Client, error) {
	var client *mongo.Client
	var err error

	for i := range retries {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		client, err = mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
		if err == nil {
			err = client.Ping(ctx, nil)
			if err == nil {
				var result struct {
					Ok int `bson:"ok"`
				}
				err = client.Database("admin").RunCommand(ctx, bson.D{
					{Key: "replSetGetStatus", Value: 1},
				}).Decode(&result)
				if err == nil && result.Ok == 1 {
					cancel()
					logger.Info("Connected to MongoDB", zap.String("database", cfg.Database))
					return client, nil
				}
				if err == nil {
					err = fmt.Errorf("replica set status not ok")
				}
				logger.Warn("Replica set not ready", zap.Error(err))
			}
			_ = client.Disconnect(context.Background())
		}
		cancel()
		logger.Warn("Failed to connect to MongoDB",
			zap.Int("attempt", i+1),
			zap.Int("max_attempts", retries),
			zap.Error(err),
		)
		if i < retries-1 {
			time.Sleep(delay)
		}
	}

	return nil, fmt.Errorf("failed to connect to MongoDB after %d retries: %w", retries, err)
}
