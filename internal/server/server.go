package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"repair-desk/internal/config"
	custommiddleware "repair-desk/internal/middleware"
	"repair-desk/internal/service"
	"repair-desk/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	store  *Store
	redis  *redis.Client
}

// NewServer opens the configured store and rate limiter and builds the HTTP server
func NewServer(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Server, error) {
	store, err := OpenStore(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Store.Driver, err)
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = newRedisClient(ctx, cfg.Redis, logger)
	}

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      NewHandler(cfg, store, redisClient, logger),
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config: cfg,
		logger: logger,
		store:  store,
		redis:  redisClient,
	}

	return server, nil
}

// NewHandler builds the instrumented router serving store. A nil redisClient
// disables rate limiting.
func NewHandler(cfg *config.Config, store *Store, redisClient *redis.Client, logger *zap.Logger) http.Handler {
	router := chi.NewRouter()

	router.Use(custommiddleware.DefaultMiddlewareStack()...)
	router.Use(custommiddleware.RouteSpanName)
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.CORSMiddleware(cfg.CORS.AllowedOrigins, cfg.Server.Env == "development"))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		health := store.Health(r.Context())
		status := http.StatusOK
		if health["status"] != "up" {
			status = http.StatusServiceUnavailable
		}
		custommiddleware.RespondWithJSON(w, status, map[string]interface{}{
			"status": http.StatusText(status),
			"store":  health,
		})
	})

	repos := store.Repos
	activities := service.NewActivityService(repos.Activities, logger)
	products := service.NewProductService(repos.Products, activities, cfg.Inventory.LowStockThreshold, logger)
	secondHand := service.NewSecondHandService(repos.SecondHand, activities, logger)
	sales := service.NewSaleService(repos.Sales, activities, logger)
	repairs := service.NewRepairService(repos.RepairOrders, activities, logger)
	reports := service.NewReportService(repos.Sales, repos.RepairOrders, logger)

	var limit func(http.Handler) http.Handler
	if redisClient != nil {
		limit = custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
			RequestsPerWindow: cfg.RateLimit.Requests,
			Window:            time.Duration(cfg.RateLimit.WindowSeconds) * time.Second,
			KeyPrefix:         "rl",
		}, logger)
	}

	transport.RegisterRoutes(router, transport.Handlers{
		Products:   transport.NewProductHandler(products, sales, logger),
		SecondHand: transport.NewSecondHandHandler(secondHand, sales, logger),
		Repairs:    transport.NewRepairHandler(repairs, logger),
		Reports:    transport.NewReportHandler(reports, activities, logger),
	}, limit)

	return otelhttp.NewHandler(router, "repair-desk",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return "HTTP " + r.Method
		}),
	)
}

// newRedisClient connects to Redis. An unreachable server is logged and the
// client kept, since the limiter lets requests through on Redis errors.
func newRedisClient(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("Redis unreachable, rate limiting fails open", zap.Error(err))
	} else {
		logger.Info("Connected to Redis", zap.String("addr", client.Options().Addr))
	}
	return client
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.store.Close(ctx); err != nil {
		s.logger.Error("Failed to close store", zap.Error(err))
	}

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis client", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
