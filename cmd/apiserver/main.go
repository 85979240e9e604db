package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/gorilla/handlers"
	"go.uber.org/zap"

	"social-go/internal/auth"
	"social-go/internal/config"
	"social-go/internal/handlers/apiserver"
	appKafka "social-go/internal/kafka"
	kafkahandlers "social-go/internal/kafka/handlers"
	"social-go/internal/logging"
	"social-go/internal/mediatypes"
	appRedis "social-go/internal/redis"
	"social-go/internal/services"
	"social-go/internal/storage"
	"social-go/internal/storage/memory"
)

func main() {
	// 1. 加载配置
	cfg, err := config.LoadConfig(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatalf("无法加载配置: %v", err)
	}
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("无法初始化日志: %v", err)
	}
	defer logger.Sync() //nolint:errcheck
	logger.Info("配置加载成功", zap.String("app", cfg.AppName), zap.String("version", cfg.AppVersion))

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. 初始化 Repositories
	repos, err := openRepositories(cfg, logger)
	if err != nil {
		logger.Fatal("无法初始化数据库", zap.Error(err))
	}

	// 3. 初始化 TokenBlacklist，未配置 Redis 时使用进程内实现
	var blacklist auth.TokenBlacklist
	if cfg.Redis.Addr != "" {
		redisClient, err := appRedis.NewClient(rootCtx, cfg.Redis, logger)
		if err != nil {
			logger.Fatal("无法连接到 Redis", zap.Error(err))
		}
		defer redisClient.Close()
		blacklist = appRedis.NewRedisTokenBlacklist(redisClient)
	} else {
		logger.Warn("REDIS.ADDR 为空，令牌黑名单仅在本进程内有效")
		blacklist = auth.NewMemoryTokenBlacklist()
	}

	// 4. 初始化媒体存储
	media, err := openMediaStore(cfg)
	if err != nil {
		logger.Fatal("无法初始化媒体存储", zap.Error(err))
	}

	// 5. 清理任务：启用 Kafka 时发布到 topic 并在本进程消费，否则只记录日志
	var consumers sync.WaitGroup
	orphans := services.NewLogOrphanRecorder(logger)
	if cfg.Kafka.Enabled {
		producer, err := appKafka.NewConfluentKafkaProducer(cfg.Kafka, logger)
		if err != nil {
			logger.Fatal("无法创建 Kafka 生产者", zap.Error(err))
		}
		defer producer.Close()
		orphans = services.NewKafkaOrphanRecorder(producer, cfg.Kafka.CleanupTopic, logger)

		consumer, err := appKafka.NewConfluentKafkaConsumer(cfg.Kafka, logger)
		if err != nil {
			logger.Fatal("无法创建 Kafka 消费者", zap.Error(err))
		}
		defer consumer.Close()

		cleanup := kafkahandlers.NewCleanupConsumerLogic(services.NewCleanupExecutor(repos, media, logger), logger)
		consumers.Add(1)
		go func() {
			defer consumers.Done()
			logger.Info("清理任务消费者启动", zap.String("topic", cfg.Kafka.CleanupTopic), zap.String("group", cfg.Kafka.ConsumerGroup))
			err := consumer.Consume(rootCtx, []string{cfg.Kafka.CleanupTopic}, cfg.Kafka.ConsumerGroup, cleanup.HandleCleanupTask)
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("清理任务消费者错误", zap.Error(err))
			}
			logger.Info("清理任务消费者已停止")
		}()
	}

	// 6. 初始化 Services
	likes := services.NewLikeLedger(repos, logger)
	authService := services.NewAuthService(repos.Users, blacklist, cfg.Auth, logger)
	contentService := services.NewContentService(repos, media, orphans, cfg.Storage.MaxPostImages, logger)
	feedService := services.NewFeedService(repos, likes, logger)
	friendService := services.NewFriendshipService(repos, logger)
	userService := services.NewUserService(repos.Users, media, logger)

	// 7. 路由
	r := apiserver.NewRouter(apiserver.Handlers{
		Auth:    apiserver.NewAuthHandler(authService, cfg.Auth, logger),
		OAuth:   apiserver.NewOAuthHandler(authService, cfg.Auth, logger),
		Users:   apiserver.NewUserHandler(userService, friendService, cfg, logger),
		Friends: apiserver.NewFriendRequestHandler(friendService, cfg, logger),
		Content: apiserver.NewContentHandler(contentService, feedService, likes, cfg, logger),
	}, authService, logger)

	if cfg.Storage.Type == "local" {
		staticPath := strings.TrimSuffix(cfg.APIServer.MediaBaseURL, "/") + "/"
		r.PathPrefix(staticPath).Handler(http.StripPrefix(staticPath, http.FileServer(http.Dir(cfg.Storage.LocalPath))))
		logger.Info("提供静态文件服务", zap.String("path", staticPath), zap.String("dir", cfg.Storage.LocalPath))
	}

	// 8. CORS
	corsOptions := []handlers.CORSOption{
		handlers.AllowedOrigins(cfg.APIServer.CORS.AllowedOrigins),
		handlers.AllowedMethods(cfg.APIServer.CORS.AllowedMethods),
		handlers.AllowedHeaders(cfg.APIServer.CORS.AllowedHeaders),
		handlers.ExposedHeaders(cfg.APIServer.CORS.ExposedHeaders),
		handlers.MaxAge(cfg.APIServer.CORS.MaxAge),
	}
	if cfg.APIServer.CORS.AllowCredentials {
		corsOptions = append(corsOptions, handlers.AllowCredentials())
	}

	// 9. 启动 HTTP 服务器并实现优雅关闭
	serverAddr := fmt.Sprintf("%s:%s", cfg.APIServer.Host, cfg.APIServer.Port)
	srv := &http.Server{
		Addr:           serverAddr,
		Handler:        handlers.CORS(corsOptions...)(r),
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	go func() {
		logger.Info("API 服务器启动", zap.String("addr", serverAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("API 服务器启动失败", zap.Error(err))
		}
	}()

	<-rootCtx.Done()
	logger.Info("收到关闭信号，正在关闭 API 服务器...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Error("API 服务器强制关闭", zap.Error(err))
	}
	consumers.Wait()
	logger.Info("API 服务器已成功关闭")
}

func openRepositories(cfg config.Config, logger *zap.Logger) (*storage.Repositories, error) {
	if cfg.Database.Type == "memory" {
		logger.Warn("使用内存存储，重启后数据丢失")
		return memory.NewStore().Repositories(), nil
	}
	db, err := storage.InitDB(cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	if err := storage.AutoMigrateTables(db, logger); err != nil {
		return nil, fmt.Errorf("数据库表迁移失败: %w", err)
	}
	return storage.NewGormRepositories(db), nil
}

func openMediaStore(cfg config.Config) (mediatypes.MediaStore, error) {
	switch cfg.Storage.Type {
	case "local":
		store, err := storage.NewLocalMediaStore(cfg.Storage, cfg.APIServer.MediaBaseURL)
		if err != nil {
			return nil, err
		}
		return store, nil
	case "s3":
		store, err := storage.NewS3MediaStore(cfg.Storage.S3)
		if err != nil {
			return nil, err
		}
		return store, nil
	}
	return nil, fmt.Errorf("不支持的存储类型: %s", cfg.Storage.Type)
}
