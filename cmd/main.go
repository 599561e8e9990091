package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/grubline/order-service/internal/app"
	"github.com/grubline/order-service/internal/config"
	"github.com/grubline/order-service/internal/events"
	"github.com/grubline/order-service/internal/handler"
	"github.com/grubline/order-service/internal/postgres"
	"github.com/grubline/order-service/internal/promo"
	"github.com/grubline/order-service/internal/redis"
	"github.com/grubline/order-service/internal/repo"
	"github.com/grubline/order-service/internal/service"
	"github.com/grubline/order-service/pkg/cache"
	"github.com/grubline/order-service/pkg/cartstore"
	"github.com/grubline/order-service/pkg/trm"

	"github.com/joho/godotenv"
)

func main() {
	conf := config.New()
	logger := newLogger(conf.Env)
	panicIfErr("invalid config", conf.Validate())

	panicIfErr("failed to run migrations", postgres.Migrate(conf.Postgres))

	db, err := postgres.New(conf.Postgres)
	panicIfErr("failed to connect to db", err)
	defer db.Close()
	logger.Info("postgres connected")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	redisClient, err := redis.New(ctx, conf.Redis)
	panicIfErr("failed to connect to redis", err)
	defer redisClient.Close()
	logger.Info("redis connected")

	ledgerRepo := repo.NewPostgresRepo(db)
	txManager := trm.NewManager(db)

	cartStore := cartstore.NewRedisStore(redisClient, conf.Cart.TTL)
	orderCache := cache.NewLRUCache(conf.Cache.Capacity, conf.Cache.TTL)
	orderCache.StartJanitor(ctx)

	publisher := events.NewKafkaPublisher(logger, conf.Kafka)
	defer publisher.Close()

	cartService := service.NewCartService(logger, cartStore, ledgerRepo)
	checkoutService := service.NewCheckoutService(
		logger, txManager,
		ledgerRepo, ledgerRepo, cartStore, ledgerRepo,
		promo.NewStaticEvaluator(), publisher,
		conf.Checkout.LedgerTimeout,
	)
	orderService := service.NewOrderService(logger, ledgerRepo, orderCache)

	httpHandler := handler.NewHTTPHandler(logger, cartService, checkoutService, orderService)

	application := app.New(logger, conf)
	application.SetHTTPHandlers(httpHandler)

	panicIfErr("failed to start app", application.Start(ctx))
	<-ctx.Done()
	panicIfErr("failed to stop app", application.Stop())
}

func init() {
	godotenv.Load()
}

func newLogger(env string) *slog.Logger {
	switch env {
	case "production":
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}

func panicIfErr(prefix string, err error) {
	if err != nil {
		panic(prefix + ": " + err.Error())
	}
}
