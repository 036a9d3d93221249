package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ultimatum-server/internal/config"
	"ultimatum-server/internal/database"
	"ultimatum-server/internal/export"
	"ultimatum-server/internal/game"
	"ultimatum-server/internal/handler"
	"ultimatum-server/internal/logger"
	"ultimatum-server/internal/middleware"
	"ultimatum-server/internal/repository"
	"ultimatum-server/internal/service"
	"ultimatum-server/internal/sink"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()
	log.Println("Запуск Ultimatum Server...")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{Level: cfg.LogLevel, Encoding: cfg.LogEncoding, Service: cfg.ServiceName})
	if err != nil {
		log.Fatalf("Не удалось инициализировать логгер: %v", err)
	}
	defer zapLogger.Sync()
	zapLogger.Info("Logger initialized", zap.String("logLevel", cfg.LogLevel))

	ctx := context.Background()
	var sinks []sink.Named

	// PostgreSQL
	if cfg.PostgresEnabled() {
		zapLogger.Info("Подключение к PostgreSQL", zap.String("dsn", cfg.MaskedDSN()))
		if err := database.ApplyMigrations(cfg.GetDSN(), zapLogger); err != nil {
			zapLogger.Fatal("Не удалось применить миграции", zap.Error(err))
		}
		dbPool, err := database.Connect(ctx, database.Config{
			DSN:         cfg.GetDSN(),
			MaxConns:    cfg.DBMaxConns,
			IdleTimeout: cfg.DBIdleTimeout,
		}, zapLogger)
		if err != nil {
			zapLogger.Fatal("Не удалось подключиться к БД", zap.Error(err))
		}
		defer dbPool.Close()
		sinks = append(sinks, sink.NewPgSink(dbPool, zapLogger))
	}

	// RabbitMQ
	if cfg.RabbitMQEnabled() {
		rabbitConn, err := connectRabbitMQ(cfg.RabbitMQURL, zapLogger)
		if err != nil {
			zapLogger.Fatal("Не удалось подключиться к RabbitMQ", zap.Error(err))
		}
		defer rabbitConn.Close()
		rabbitSink, ch, err := sink.NewRabbitMQSink(rabbitConn, cfg.ResultsQueueName, zapLogger)
		if err != nil {
			zapLogger.Fatal("Не удалось создать RabbitMQ sink", zap.Error(err))
		}
		defer ch.Close()
		sinks = append(sinks, rabbitSink)
		zapLogger.Info("Успешное подключение к RabbitMQ", zap.String("queue", cfg.ResultsQueueName))
	}

	// Google Sheets
	if cfg.SheetsEnabled() {
		sheetsSink, err := sink.NewSheetsSink(ctx, sink.SheetsConfig{
			SpreadsheetID:   cfg.GSheetSpreadsheetID,
			Range:           cfg.GSheetRange,
			CredentialsJSON: []byte(cfg.GSheetCredentials),
		}, zapLogger)
		if err != nil {
			zapLogger.Fatal("Не удалось создать Sheets sink", zap.Error(err))
		}
		sinks = append(sinks, sheetsSink)
	}

	if len(sinks) == 0 {
		zapLogger.Warn("Внешние хранилища результатов не настроены, строки пишутся в лог")
		sinks = append(sinks, sink.NewLogSink(zapLogger))
	}
	results := sink.NewMulti(cfg.SinkTimeout, zapLogger, sinks...)
	zapLogger.Info("Result sinks configured", zap.Strings("sinks", results.Names()))

	// Хранилище сессий
	var sessions repository.SessionRepository
	if cfg.RedisEnabled() {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := redisClient.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			zapLogger.Fatal("Не удалось подключиться к Redis", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		}
		defer redisClient.Close()
		sessions = repository.NewRedisSessionRepository(redisClient, cfg.SessionTTL, zapLogger)
		zapLogger.Info("Сессии хранятся в Redis", zap.String("addr", cfg.RedisAddr))
	} else {
		memRepo, err := repository.NewMemorySessionRepository(cfg.SessionCacheSize, zapLogger)
		if err != nil {
			zapLogger.Fatal("Не удалось создать хранилище сессий", zap.Error(err))
		}
		sessions = memRepo
	}

	var archive *export.Archive
	if cfg.ResultsDir != "" {
		archive, err = export.NewArchive(cfg.ResultsDir, zapLogger)
		if err != nil {
			zapLogger.Fatal("Не удалось подготовить каталог результатов", zap.Error(err))
		}
	}

	machine := game.NewMachine(game.DefaultSource(), game.SystemClock(), results, zapLogger)
	experimentService, err := service.NewExperimentService(machine, sessions, archive, cfg.Experiment(), zapLogger)
	if err != nil {
		zapLogger.Fatal("Некорректные параметры эксперимента", zap.Error(err))
	}
	experimentHandler := handler.NewExperimentHandler(experimentService, zapLogger)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.EchoZapLogger(zapLogger))
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORSWithConfig(echoMiddleware.CORSConfig{
		AllowOrigins: cfg.CORSAllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
	}))
	experimentHandler.RegisterRoutes(e)

	go func() {
		zapLogger.Info("HTTP сервер слушает", zap.String("port", cfg.Port))
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Ошибка запуска HTTP сервера", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLogger.Info("Получен сигнал завершения, начинаем graceful shutdown...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Ошибка при graceful shutdown Echo", zap.Error(err))
	}
	zapLogger.Info("Ultimatum Server остановлен")
}

// connectRabbitMQ пытается подключиться к RabbitMQ с несколькими попытками
func connectRabbitMQ(url string, logger *zap.Logger) (*amqp.Connection, error) {
	var conn *amqp.Connection
	var err error
	maxRetries := 5
	retryDelay := 5 * time.Second
	for i := 0; i < maxRetries; i++ {
		conn, err = amqp.Dial(url)
		if err == nil {
			return conn, nil
		}
		logger.Warn("Не удалось подключиться к RabbitMQ",
			zap.Int("attempt", i+1),
			zap.Int("max_attempts", maxRetries),
			zap.Duration("retry_delay", retryDelay),
			zap.Error(err),
		)
		time.Sleep(retryDelay)
	}
	return nil, err
}
