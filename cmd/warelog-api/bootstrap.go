package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/antonkhm/warelog/config"
	"github.com/antonkhm/warelog/internal/api/httpapi"
	"github.com/antonkhm/warelog/internal/broker/kafka"
	"github.com/antonkhm/warelog/internal/cache/rediscache"
	"github.com/antonkhm/warelog/internal/integrations/functions"
	"github.com/antonkhm/warelog/internal/integrations/functions/fake"
	"github.com/antonkhm/warelog/internal/integrations/functions/routehttp"
	"github.com/antonkhm/warelog/internal/realtime"
	"github.com/antonkhm/warelog/internal/services/inventory"
	"github.com/antonkhm/warelog/internal/services/logistics"
	"github.com/antonkhm/warelog/internal/services/notifications"
	"github.com/antonkhm/warelog/internal/services/orders"
	"github.com/antonkhm/warelog/internal/services/tracking"
	"github.com/antonkhm/warelog/internal/storage/pgwarehouse"
)

type warelogAPIApp struct {
	ctx      context.Context
	cancel   context.CancelFunc
	opts     warelogAPIOpts
	srv      *httpapi.Server
	feed     *realtime.Feed
	consumer *kafka.Consumer
	closeDB  func()
}

func mustBootstrapWarelogAPI() *warelogAPIApp {
	cfgPath := os.Getenv("configPath")
	if cfgPath == "" {
		panic("configPath env var is required")
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		panic(fmt.Sprintf("ошибка парсинга конфига, %v", err))
	}

	httpAddr := cfg.Warelog.HTTPAddr
	if httpAddr == "" {
		httpAddr = ":8080"
	}
	consumerGroup := cfg.Warelog.KafkaConsumerGroup
	if consumerGroup == "" {
		consumerGroup = "warelog-api"
	}
	topic := cfg.Kafka.RowChangeTopicName
	if topic == "" {
		topic = "warelog.rowchange"
	}

	snapshotTTL := time.Duration(cfg.Warelog.SnapshotTTLSeconds) * time.Second
	if snapshotTTL <= 0 {
		snapshotTTL = 15 * time.Second
	}
	pollInterval := time.Duration(cfg.Warelog.TrackingPollIntervalSeconds) * time.Second
	if pollInterval <= 0 {
		pollInterval = 5 * time.Second
	}
	fetchTimeout := time.Duration(cfg.Warelog.TrackingFetchTimeoutSeconds) * time.Second
	if fetchTimeout <= 0 {
		fetchTimeout = 20 * time.Second
	}

	sslMode := cfg.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	connString := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.Database.Username, cfg.Database.Password, cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName, sslMode)
	st := mustOpenPostgresWithRetry(connString, 60*time.Second)

	redisAddr := fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port)
	rc := rediscache.New(redisAddr)

	brokers := []string{fmt.Sprintf("%s:%d", cfg.Kafka.Host, cfg.Kafka.Port)}
	producer := kafka.NewProducer(brokers)
	consumer := kafka.NewConsumer(brokers, topic, consumerGroup)
	feed := realtime.NewFeed(consumer)

	// Без развёрнутого сервиса функций превью маршрута считает локальная заглушка.
	var routes functions.RouteOptimizer
	if cfg.Warelog.FunctionsBaseURL != "" {
		routes = routehttp.New(cfg.Warelog.FunctionsBaseURL, cfg.Warelog.AnonKey, cfg.Warelog.MapboxToken, nil)
	} else {
		routes = fake.New()
	}

	notificationsSvc := notifications.New(st, producer, topic)
	ordersSvc := orders.New(st, producer, topic, notificationsSvc, routes)
	logisticsSvc := logistics.New(st, producer, topic)
	inventorySvc := inventory.New(st)
	tracker := tracking.New(st, feed).WithSettings(pollInterval, fetchTimeout)

	auth := httpapi.NewAuth(cfg.Warelog.AuthSecret, cfg.Warelog.AnonKey)
	srv := httpapi.New(ordersSvc, logisticsSvc, inventorySvc, notificationsSvc, tracker, st, auth).
		WithSnapshotCache(rc, snapshotTTL)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	return &warelogAPIApp{
		ctx:    ctx,
		cancel: cancel,
		opts: warelogAPIOpts{
			httpAddr:      httpAddr,
			topic:         topic,
			consumerGroup: consumerGroup,
		},
		srv:      srv,
		feed:     feed,
		consumer: consumer,
		closeDB:  st.Close,
	}
}

func mustOpenPostgresWithRetry(connString string, wait time.Duration) *pgwarehouse.Storage {
	deadline := time.Now().Add(wait)
	var lastErr error
	for time.Now().Before(deadline) {
		st, err := pgwarehouse.New(connString)
		if err == nil {
			return st
		}
		lastErr = err
		time.Sleep(1 * time.Second)
	}
	panic(fmt.Sprintf("postgres is not ready after %s: %v", wait, lastErr))
}

func (a *warelogAPIApp) Close() {
	if a.cancel != nil {
		a.cancel()
	}
	if a.consumer != nil {
		_ = a.consumer.Close()
	}
	if a.closeDB != nil {
		a.closeDB()
	}
}

func (a *warelogAPIApp) Run() error {
	return runWarelogAPI(a.ctx, a.opts, a.srv, a.feed)
}
