package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"parfumerie/internal/cartstore"
	"parfumerie/internal/checkout"
	"parfumerie/internal/config"
	"parfumerie/internal/db"
	"parfumerie/internal/httpserver"
	"parfumerie/internal/logging"
	orderrepo "parfumerie/internal/repository/order"
	perfumerepo "parfumerie/internal/repository/perfume"
	tokenrepo "parfumerie/internal/repository/token"
	cataloguesvc "parfumerie/internal/service/catalogue"
	sessionsvc "parfumerie/internal/service/session"
	storefrontsvc "parfumerie/internal/service/storefront"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger, err := logging.New(cfg.LogLevel, "api")
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatal("connect to db", zap.Error(err))
	}
	defer dbpool.Close()

	carts, tokens, closeStore, err := buildStores(ctx, cfg, dbpool, logger)
	if err != nil {
		logger.Fatal("init cart store", zap.Error(err))
	}
	defer closeStore()

	perfumes := perfumerepo.NewPostgres(dbpool, logger)
	orders := orderrepo.NewPostgres(dbpool, logger)

	co := checkout.New(
		checkout.WithLogger(logger),
		checkout.WithCompletion(func(next checkout.Page, conf checkout.Confirmation) {
			logger.Debug("checkout hand-off",
				zap.String("reference", conf.OrderReference),
				zap.Int64("total", conf.TotalAmount),
				zap.String("next", string(next)),
			)
		}),
	)

	catalogueService := cataloguesvc.New(perfumes)
	sessionService := sessionsvc.New(tokens, carts, cfg.SessionTTL, logger)
	storefrontService := storefrontsvc.New(carts, catalogueService, orders, co, logger,
		storefrontsvc.WithSubmitTimeout(cfg.CheckoutLock),
	)

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		Sessions:   sessionService,
		Catalogue:  catalogueService,
		Storefront: storefrontService,
	}, cfg.CORSOrigins)
	if err != nil {
		logger.Fatal("init server", zap.Error(err))
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting http server", zap.String("addr", cfg.HTTPAddr), zap.String("cart_store", cfg.CartStore))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
	case err := <-serverErr:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	} else {
		logger.Info("server stopped")
	}
}

// buildStores picks where carts and session tokens live. Redis holds both
// when configured; otherwise carts stay in process and tokens go to
// Postgres.
func buildStores(ctx context.Context, cfg config.Config, pool *pgxpool.Pool, logger *zap.Logger) (cartstore.Store, tokenrepo.Repository, func(), error) {
	switch cfg.CartStore {
	case config.CartStoreMemory:
		return cartstore.NewMemory(cfg.SessionTTL, cfg.CheckoutLock), tokenrepo.NewPostgres(pool), func() {}, nil
	case config.CartStoreRedis:
		client, err := db.ConnectRedis(ctx, db.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, nil, nil, err
		}
		var uc redis.UniversalClient = client
		closeFn := func() {
			if err := client.Close(); err != nil {
				logger.Warn("close redis", zap.Error(err))
			}
		}
		return cartstore.NewRedis(uc, cfg.SessionTTL, cfg.CheckoutLock, logger), tokenrepo.NewRedis(uc), closeFn, nil
	default:
		return nil, nil, nil, fmt.Errorf("unknown CART_STORE %q", cfg.CartStore)
	}
}
