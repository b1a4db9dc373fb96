package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/antonkhm/warelog/config"
	"github.com/antonkhm/warelog/internal/broker/kafka"
	"github.com/antonkhm/warelog/internal/cache/rediscache"
	"github.com/antonkhm/warelog/internal/integrations/functions"
	"github.com/antonkhm/warelog/internal/integrations/functions/fake"
	"github.com/antonkhm/warelog/internal/integrations/functions/simhttp"
	"github.com/antonkhm/warelog/internal/services/gpssim"
)

type workerFactories struct {
	newProducer    func(cfg *config.Config) gpssim.Producer
	newRateLimiter func(cfg *config.Config) gpssim.RateLimiter
	newSimulator   func(cfg *config.Config) functions.Simulator
}

func defaultWorkerFactories() workerFactories {
	return workerFactories{
		newProducer: func(cfg *config.Config) gpssim.Producer {
			brokers := []string{fmt.Sprintf("%s:%d", cfg.Kafka.Host, cfg.Kafka.Port)}
			return kafka.NewProducer(brokers)
		},
		newRateLimiter: func(cfg *config.Config) gpssim.RateLimiter {
			redisAddr := fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port)
			return rediscache.NewRateLimiter(redisAddr)
		},
		newSimulator: func(cfg *config.Config) functions.Simulator {
			// Без base_url сервиса функций — fallback на локальный fake.
			if cfg.Warelog.FunctionsBaseURL != "" {
				return simhttp.New(cfg.Warelog.FunctionsBaseURL, cfg.Warelog.AnonKey, nil)
			}
			return fake.New()
		},
	}
}

func RunGPSWorker(ctx context.Context, cfg *config.Config, f workerFactories) error {
	topic := cfg.Kafka.RowChangeTopicName
	if topic == "" {
		topic = "warelog.rowchange"
	}

	interval := time.Duration(cfg.Warelog.SimulationIntervalSeconds) * time.Second
	if interval <= 0 {
		interval = 60 * time.Second
	}
	rlPerMin := int64(cfg.Warelog.SimulationRateLimitPerMinute)
	if rlPerMin <= 0 {
		rlPerMin = 30
	}
	backoff := gpssim.BackoffConfig{
		Step1: time.Duration(cfg.Warelog.SimulationBackoff1Seconds) * time.Second,
		Step2: time.Duration(cfg.Warelog.SimulationBackoff2Seconds) * time.Second,
		Step3: time.Duration(cfg.Warelog.SimulationBackoff3Seconds) * time.Second,
	}

	var runner *gpssim.Runner
	if cfg.Warelog.SimulationEnabled {
		producer := f.newProducer(cfg)
		rl := f.newRateLimiter(cfg)
		sim := f.newSimulator(cfg)
		runner = gpssim.New(sim, producer, rl, topic).
			WithSettings(interval, rlPerMin, backoff)
	} else {
		slog.Info("gps simulation disabled, worker serves only ops endpoints")
	}

	httpErr := make(chan error, 1)
	go func() {
		httpErr <- runWorkerHTTPServer(ctx, workerHTTPOpts{
			httpAddr: cfg.Warelog.WorkerHTTPAddr,
			runner:   runner,
			cfg:      cfg,
		})
	}()

	if runner == nil {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-httpErr:
			return err
		}
	}

	runErr := make(chan error, 1)
	go func() {
		runErr <- runner.Run(ctx)
	}()

	select {
	case err := <-runErr:
		return err
	case err := <-httpErr:
		return err
	}
}
