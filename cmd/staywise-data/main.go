package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"staywise-data/internal/config"
	"staywise-data/internal/database"
	httpapi "staywise-data/internal/http"
	"staywise-data/internal/logger"
	"staywise-data/internal/repository"
	"staywise-data/internal/service"
	"staywise-data/internal/store"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "staywise-data")
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Redis 可选：缓存 + 通知队列
	var kv store.KV
	var notifier service.Notifier = service.NopNotifier{}
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			log.Warn("Redis enabled but connection failed, caching and queueing disabled", zap.Error(err))
			_ = redisClient.Close()
			redisClient = nil
		} else {
			kv = store.NewRedisKV(redisClient)
			notifier = service.NewStreamNotifier(store.NewStreamPublisher(redisClient), log)
		}
	}

	// DB 优先；连接失败回退内存库（本地开发 `go run` 即可用）
	var db *sql.DB
	var (
		ownersRepo     repository.OwnersRepository
		usersRepo      repository.UsersRepository
		propsRepo      repository.PropertiesRepository
		assignRepo     repository.AssignmentsRepository
		paymentsRepo   repository.PaymentsRepository
		complaintsRepo repository.ComplaintsRepository
		notifsRepo     repository.NotificationsRepository
	)
	if cfg.DBEnabled {
		if d, err := database.NewPostgresDB(&cfg.Database); err == nil {
			db = d
			log.Info("DB enabled for staywise-data")
		} else {
			log.Warn("DB enabled but connection failed, falling back to in-memory store", zap.Error(err))
		}
	}
	if db != nil {
		ownersRepo = repository.NewPostgresOwnersRepository(db)
		usersRepo = repository.NewPostgresUsersRepository(db)
		propsRepo = repository.NewPostgresPropertiesRepository(db)
		assignRepo = repository.NewPostgresAssignmentsRepository(db)
		paymentsRepo = repository.NewPostgresPaymentsRepository(db)
		complaintsRepo = repository.NewPostgresComplaintsRepository(db)
		notifsRepo = repository.NewPostgresNotificationsRepository(db)
	} else {
		mem := repository.NewMemoryStore()
		ownersRepo = mem
		usersRepo = mem
		propsRepo = mem
		assignRepo = mem
		paymentsRepo = mem
		complaintsRepo = mem
		notifsRepo = mem.Notifications()
	}

	// WhatsApp 网关（未配置时消息只入库排队）
	var sender service.WhatsAppSender = service.NopWhatsAppSender{}
	if cfg.WhatsApp.Enabled && cfg.WhatsApp.BaseURL != "" {
		sender = service.NewWhatsAppClient(cfg.WhatsApp.BaseURL, cfg.WhatsApp.APIKey, log)
	}

	jwtExpiry := time.Duration(cfg.JWT.ExpiresHours) * time.Hour
	authService := service.NewAuthService(ownersRepo, usersRepo, cfg.JWT.Secret, jwtExpiry, log)
	propertyService := service.NewPropertyService(propsRepo, kv, log)
	tenancyService := service.NewTenancyService(assignRepo, usersRepo, notifier, log)
	rentService := service.NewRentService(paymentsRepo, assignRepo, log)
	complaintService := service.NewComplaintService(complaintsRepo, assignRepo, log)
	receiptService := service.NewReceiptService(paymentsRepo, notifsRepo, sender, notifier, log)

	router := httpapi.NewRouter(log)
	authMW := httpapi.NewAuthMiddleware(cfg.JWT.Secret, log)
	router.RegisterHealthRoute()
	router.RegisterAuthRoutes(httpapi.NewAuthHandler(authService, log))
	router.RegisterPropertyRoutes(authMW, httpapi.NewPropertyHandler(propertyService, log))
	router.RegisterTenancyRoutes(authMW, httpapi.NewTenancyHandler(tenancyService, log))
	router.RegisterRentRoutes(authMW, httpapi.NewRentHandler(rentService, log))
	router.RegisterComplaintRoutes(authMW, httpapi.NewComplaintHandler(complaintService, log))
	router.RegisterReceiptRoutes(authMW, httpapi.NewReceiptHandler(receiptService, log))

	srv := service.NewServer(cfg.HTTP.Addr, router, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		cancel()
	case <-errCh:
		cancel()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 5*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
	if redisClient != nil {
		_ = redisClient.Close()
	}
	if db != nil {
		_ = db.Close()
	}
}
