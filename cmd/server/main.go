package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-gin-ticket-booking/config"
	"go-gin-ticket-booking/internal/cache"
	"go-gin-ticket-booking/internal/database"
	"go-gin-ticket-booking/internal/handler"
	"go-gin-ticket-booking/internal/idgen"
	"go-gin-ticket-booking/internal/preload"
	"go-gin-ticket-booking/internal/queue"
	"go-gin-ticket-booking/internal/repository"
	"go-gin-ticket-booking/internal/repository/memory"
	"go-gin-ticket-booking/internal/service"
	"go-gin-ticket-booking/internal/worker"
	"go-gin-ticket-booking/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

type repositories struct {
	users    repository.UserRepository
	events   repository.EventRepository
	tickets  repository.TicketRepository
	accounts repository.AccountRepository
}

func main() {
	cfg := config.LoadConfig()

	pflag.StringVar(&cfg.Storage.Backend, "storage", cfg.Storage.Backend, "storage backend: memory | postgres")
	pflag.StringVar(&cfg.Queue.Backend, "queue", cfg.Queue.Backend, "booking queue backend: memory | redis | rabbitmq")
	pflag.StringVar(&cfg.Preload.File, "preload", cfg.Preload.File, "YAML file with users, events and tickets to load at startup")
	pflag.StringVar(&cfg.Server.Port, "port", cfg.Server.Port, "HTTP listen port")
	pflag.Parse()

	if err := logger.SetLevel(cfg.Server.LogLevel); err != nil {
		logger.L.Warn("invalid LOG_LEVEL, keeping info", zap.String("level", cfg.Server.LogLevel))
	}
	defer func() { _ = logger.L.Sync() }()

	log := logger.WithComponent("server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, pool, err := openRepositories(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to initialize storage", zap.Error(err))
	}
	if pool != nil {
		defer pool.Close()
	}

	// Redis 只有在快取或 Redis Stream 隊列啟用時才連線
	var rdb *redis.Client
	if cfg.Cache.Enabled || cfg.Queue.Backend == config.QueueRedis {
		rdb, err = database.InitRedis(&cfg.Redis)
		if err != nil {
			log.Fatal("Failed to initialize redis", zap.Error(err))
		}
		defer rdb.Close()
	}

	eventCache := cache.NewNoopEventCache()
	if cfg.Cache.Enabled {
		eventCache = cache.NewRedisEventCache(rdb, cfg.Cache.TTL)
	}

	bookingQueue, closeQueue, err := openBookingQueue(cfg, rdb)
	if err != nil {
		log.Fatal("Failed to initialize booking queue", zap.Error(err))
	}
	defer closeQueue()

	userService := service.NewUserService(repos.users)
	eventService := service.NewEventService(repos.events, eventCache)
	ticketService := service.NewTicketService(repos.tickets, repos.users, repos.events, bookingQueue)
	accountService := service.NewAccountService(repos.accounts, repos.users)

	if cfg.Preload.File != "" {
		if _, err := preload.LoadFile(ctx, cfg.Preload.File, preload.Services{
			Users:    userService,
			Events:   eventService,
			Tickets:  ticketService,
			Accounts: accountService,
		}); err != nil {
			log.Fatal("Failed to preload data", zap.String("file", cfg.Preload.File), zap.Error(err))
		}
	}

	bookingWorker := worker.NewBookingWorker(ticketService, bookingQueue)
	if err := bookingWorker.Start(ctx); err != nil {
		log.Fatal("Failed to start booking worker", zap.Error(err))
	}

	router := gin.Default()
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})
	handler.NewUserHandler(userService).RegisterRoutes(router)
	handler.NewEventHandler(eventService).RegisterRoutes(router)
	handler.NewTicketHandler(ticketService, userService).RegisterRoutes(router)
	handler.NewAccountHandler(accountService).RegisterRoutes(router)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		log.Info("HTTP server listening",
			zap.String("addr", srv.Addr),
			zap.String("storage", cfg.Storage.Backend),
			zap.String("queue", cfg.Queue.Backend),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown failed", zap.Error(err))
	}
	bookingWorker.Wait()
}

// openRepositories memory 模式下 pool 為 nil
func openRepositories(ctx context.Context, cfg *config.Config) (*repositories, *pgxpool.Pool, error) {
	switch cfg.Storage.Backend {
	case config.StorageMemory:
		return &repositories{
			users:    memory.NewUserRepository(idgen.NewSequence()),
			events:   memory.NewEventRepository(idgen.NewSequence()),
			tickets:  memory.NewTicketRepository(idgen.NewSequence()),
			accounts: memory.NewAccountRepository(),
		}, nil, nil
	case config.StoragePostgres:
		pool, err := database.InitDatabase(&cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		if err := database.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return &repositories{
			users:    repository.NewUserRepository(pool),
			events:   repository.NewEventRepository(pool),
			tickets:  repository.NewTicketRepository(pool),
			accounts: repository.NewAccountRepository(pool),
		}, pool, nil
	default:
		return nil, nil, errors.New("unknown storage backend: " + cfg.Storage.Backend)
	}
}

func openBookingQueue(cfg *config.Config, rdb *redis.Client) (queue.BookingQueue, func(), error) {
	noop := func() {}
	switch cfg.Queue.Backend {
	case config.QueueMemory:
		return queue.NewMemoryBookingQueue(cfg.Queue.BufferSize), noop, nil
	case config.QueueRedis:
		q, err := queue.NewRedisStreamBookingQueue(rdb, "", nil)
		if err != nil {
			return nil, noop, err
		}
		return q, noop, nil
	case config.QueueRabbitMQ:
		q, err := queue.NewRabbitMQBookingQueue(cfg.Queue.RabbitMQURL, cfg.Queue.QueueName)
		if err != nil {
			return nil, noop, err
		}
		return q, func() { _ = q.Close() }, nil
	default:
		return nil, noop, errors.New("unknown queue backend: " + cfg.Queue.Backend)
	}
}
