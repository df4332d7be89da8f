package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bistrobook/config"
	"bistrobook/internal/email"
	"bistrobook/internal/kafka"
	"bistrobook/internal/repository"
	"bistrobook/internal/service/booking"
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	txManager := repository.NewTxManager(pool)
	customerRepo := repository.NewCustomerRepository(pool)
	tableRepo := repository.NewTableRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)
	bookingService := booking.NewBookingService(
		txManager,
		customerRepo,
		tableRepo,
		bookingRepo,
		producer,
		log,
		cfg.Kafka.BookingEventsTopic,
		time.Duration(cfg.Booking.CompletionGraceHours)*time.Hour,
	)

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic, log)
	defer consumer.Close()

	sender := email.NewSender()

	go func() {
		if err := consumer.Consume(ctx, kafka.EventHandler{
			Booking: sender.SendBooking,
			Order:   sender.SendOrder,
		}); err != nil {
			log.WithError(err).Info("consumer stopped")
		}
	}()

	sweep := time.NewTicker(time.Duration(cfg.Worker.SweepMinutes) * time.Minute)
	defer sweep.Stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-sweep.C:
			completed, err := bookingService.CompletePastBookings(ctx)
			if err != nil {
				log.WithError(err).Error("complete past bookings")
				continue
			}
			if len(completed) > 0 {
				log.WithField("count", len(completed)).Info("completed past bookings")
			}
		case s := <-sig:
			log.WithField("signal", s).Info("shutting down")
			return
		}
	}
}
