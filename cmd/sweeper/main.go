package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"maitred/internal/config"
	"maitred/internal/database"
	"maitred/internal/logger"
	"maitred/internal/messaging"
	"maitred/internal/repository"
	"maitred/internal/search"
	"maitred/internal/service"
)

// The sweeper cancels option reservations whose hold expired. It runs as a
// separate process so option holds lapse even when the API is idle.
func main() {
	cfg := config.Load()

	logger.Init(cfg.LogLevel, cfg.LogFormat)

	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	natsClient, err := messaging.NewNATSClient(cfg.NATS)
	if err != nil {
		log.Fatalf("Failed to connect to NATS: %v", err)
	}
	defer natsClient.Close()

	index, err := search.NewReservationIndex(cfg.Elasticsearch)
	if err != nil {
		slog.Warn("Elasticsearch unavailable, expired options will not be reindexed", "error", err)
		index = nil
	}

	repos := repository.NewRepositories(db)
	reservations := service.NewReservationService(repos.Reservations, repos.Layout, repos.Audit, natsClient, index)

	interval := time.Duration(getEnvInt("SWEEP_INTERVAL_SEC", 60)) * time.Second
	slog.Info("Starting option expiry sweeper", "interval", interval)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	sweep(ctx, reservations)

	for {
		select {
		case <-ticker.C:
			sweep(ctx, reservations)
		case <-ctx.Done():
			slog.Info("Option expiry sweeper stopped")
			return
		}
	}
}

func sweep(ctx context.Context, reservations *service.ReservationService) {
	expired, err := reservations.ExpireOptions(ctx)
	if err != nil {
		slog.Error("Failed to expire options", "error", err)
		return
	}
	if expired > 0 {
		slog.Info("Expired option reservations", "count", expired)
	}
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
