package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	processor "auction-market/internal/auctionProcessor"
	bidding "auction-market/internal/biddingService"
	"auction-market/internal/ledger"
	"auction-market/internal/lock"
	"auction-market/internal/notifier"
	"auction-market/internal/repository"
	"auction-market/internal/scheduler"
	"auction-market/internal/server"
	"auction-market/utils"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
)

const sweepLockKey = "auction-market:sweep"

func main() {
	args := ParseArgs()
	if !args.Validate() {
		panic("missing arguments")
	}
	if err := utils.SetLevel(args.LogLevel); err != nil {
		utils.Warn("invalid log level, keeping default", map[string]any{"level": args.LogLevel})
	}

	repo, err := openRepository(args.DB)
	if err != nil {
		utils.Fatal("failed to open repository", map[string]any{"driver": args.DB.Driver, "error": err.Error()})
	}

	var redisClient *redis.Client
	if args.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     args.Redis.Addr,
			Password: args.Redis.Password,
			DB:       args.Redis.DB,
		})
		defer redisClient.Close()
	}

	backends := notifier.Fanout{notifier.LogNotifier{}}
	if args.NATSURL != "" {
		nc, err := nats.Connect(args.NATSURL)
		if err != nil {
			utils.Fatal("failed to connect to nats", map[string]any{"url": args.NATSURL, "error": err.Error()})
		}
		defer nc.Drain()
		backends = append(backends, notifier.NewNATSNotifier(nc, ""))
	}
	if redisClient != nil && args.NotificationStream != "" {
		backends = append(backends, notifier.NewRedisStreamNotifier(redisClient, args.NotificationStream))
	}
	dispatcher := notifier.NewDispatcher(backends)
	defer dispatcher.Close()

	l := ledger.New(repo)
	if args.SeedDemoData {
		if err := seedDemoData(context.Background(), repo, time.Now().UTC()); err != nil {
			utils.Fatal("failed to seed demo data", map[string]any{"error": err.Error()})
		}
	}

	biddingSvc := bidding.NewBiddingService(l, bidding.WithNotifier(dispatcher))

	procOpts := []processor.Option{
		processor.WithNotifier(dispatcher),
		processor.WithWorkers(args.SweepWorkers),
	}
	if redisClient != nil {
		procOpts = append(procOpts, processor.WithRunLock(lock.NewRedisRunLock(redisClient, sweepLockKey)))
	}
	auctionProcessor := processor.NewAuctionProcessor(l, procOpts...)

	sched := scheduler.New(auctionProcessor, args.SweepInterval)
	sched.Start()
	defer sched.Stop()

	router := server.SetupRouter(biddingSvc, auctionProcessor, sched, args.OperatorToken)

	srv := &http.Server{
		Addr:         args.ServerURL,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		utils.Info("starting auction server", map[string]any{"addr": args.ServerURL, "db_driver": args.DB.Driver})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.Error("server failed", map[string]any{"error": err.Error()})
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	utils.Info("shutting down server", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		utils.Error("server forced to shutdown", map[string]any{"error": err.Error()})
	}
}

// openRepository returns the storage backend selected by cfg.Driver
func openRepository(cfg DBConfig) (repository.AuctionDB, error) {
	switch cfg.Driver {
	case "memory":
		return repository.NewMemoryRepo(), nil
	case "postgres":
		db, err := repository.OpenPostgres(repository.PostgresDSN(cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode))
		if err != nil {
			return nil, err
		}
		if cfg.AutoMigrate {
			if err := repository.Migrate(db); err != nil {
				return nil, fmt.Errorf("migrate: %w", err)
			}
		}
		return repository.NewGormRepo(db), nil
	default:
		return nil, fmt.Errorf("unknown db driver %q", cfg.Driver)
	}
}
