package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bistrobook/api"
	"bistrobook/config"
	"bistrobook/internal/auth"
	"bistrobook/internal/bootstrap"
	"bistrobook/internal/cache"
	"bistrobook/internal/database"
	"bistrobook/internal/kafka"
	"bistrobook/internal/repository"
	"bistrobook/internal/service/booking"
	"bistrobook/internal/service/menu"
	"bistrobook/internal/service/order"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	_ = godotenv.Load()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Menu.CacheTTLSeconds)*time.Second)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	txManager := repository.NewTxManager(pool)
	customerRepo := repository.NewCustomerRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)
	orderRepo := repository.NewOrderRepository(pool)
	menuRepo := repository.NewMenuRepository(pool)
	tableRepo := repository.NewTableRepository(pool)
	userRepo := repository.NewUserRepository(pool)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLMinutes)*time.Minute)
	authService := auth.NewService(userRepo, tokens)

	bookingService := booking.NewBookingService(
		txManager,
		customerRepo,
		tableRepo,
		bookingRepo,
		producer,
		log,
		cfg.Kafka.BookingEventsTopic,
		time.Duration(cfg.Booking.CompletionGraceHours)*time.Hour,
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		booking.WithSlotLockCache(redisCache, time.Duration(cfg.Booking.SlotLockTTLSeconds)*time.Second),
	)
	orderService := order.NewOrderService(
		txManager,
		customerRepo,
		bookingRepo,
		menuRepo,
		orderRepo,
		producer,
		log,
		cfg.Kafka.OrderEventsTopic,
		order.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
	)
	menuService := menu.NewMenuService(txManager, menuRepo, redisCache, log)

	handlers := bootstrap.Handlers{
		Auth:     api.NewAuthHandler(authService, log),
		Bookings: api.NewBookingHandler(bookingService, log),
		Orders:   api.NewOrderHandler(orderService, log),
		Menu:     api.NewMenuHandler(menuService, log),
		Tables:   api.NewTableHandler(tableRepo, log),
	}

	if err := bootstrap.Run(ctx, cfg, tokens, handlers, log); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
