package gpssim

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/antonkhm/warelog/internal/broker/messages"
	"github.com/antonkhm/warelog/internal/integrations/functions"
)

type Producer interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
}

type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int64, window time.Duration) (bool, int64, error)
}

// Runner периодически дёргает функцию симуляции GPS. Неудачный вызов
// логируется и проглатывается: цикл не останавливается никогда, только
// отступает по backoff.
type Runner struct {
	sim      functions.Simulator
	producer Producer
	rl       RateLimiter
	topic    string

	interval           time.Duration
	rateLimitPerMinute int64
	backoff            BackoffConfig

	triggerCh chan struct{}

	startedAtUnixNano   int64
	lastCycleUnixNano   atomic.Int64
	lastTriggerUnixNano atomic.Int64
	totalCalls          atomic.Int64
	totalErrors         atomic.Int64
	totalUpdated        atomic.Int64
	failStreak          atomic.Int64
	retryAtUnixNano     atomic.Int64
	lastErrorMu         sync.Mutex
	lastError           string
}

func New(sim functions.Simulator, producer Producer, rl RateLimiter, topic string) *Runner {
	return &Runner{
		sim:                sim,
		producer:           producer,
		rl:                 rl,
		topic:              topic,
		interval:           60 * time.Second,
		rateLimitPerMinute: 30,
		backoff:            DefaultBackoffConfig(),
		triggerCh:          make(chan struct{}, 1),
		startedAtUnixNano:  time.Now().UTC().UnixNano(),
	}
}

func (r *Runner) WithSettings(interval time.Duration, rlPerMin int64, backoff BackoffConfig) *Runner {
	if interval > 0 {
		r.interval = interval
	}
	if rlPerMin > 0 {
		r.rateLimitPerMinute = rlPerMin
	}
	r.backoff = backoff.normalized()
	return r
}

// Trigger просит внеочередной вызов симуляции (best-effort, без блокировки).
func (r *Runner) Trigger() {
	r.lastTriggerUnixNano.Store(time.Now().UTC().UnixNano())
	select {
	case r.triggerCh <- struct{}{}:
	default:
	}
}

type Stats struct {
	StartedAt     time.Time  `json:"startedAt"`
	LastCycleAt   *time.Time `json:"lastCycleAt,omitempty"`
	LastTriggerAt *time.Time `json:"lastTriggerAt,omitempty"`
	TotalCalls    int64      `json:"totalCalls"`
	TotalErrors   int64      `json:"totalErrors"`
	TotalUpdated  int64      `json:"totalUpdatedVehicles"`
	FailStreak    int64      `json:"failStreak"`
	LastError     string     `json:"lastError,omitempty"`
}

func (r *Runner) Stats() Stats {
	st := Stats{
		StartedAt:    time.Unix(0, r.startedAtUnixNano).UTC(),
		TotalCalls:   r.totalCalls.Load(),
		TotalErrors:  r.totalErrors.Load(),
		TotalUpdated: r.totalUpdated.Load(),
		FailStreak:   r.failStreak.Load(),
	}
	if n := r.lastCycleUnixNano.Load(); n > 0 {
		t := time.Unix(0, n).UTC()
		st.LastCycleAt = &t
	}
	if n := r.lastTriggerUnixNano.Load(); n > 0 {
		t := time.Unix(0, n).UTC()
		st.LastTriggerAt = &t
	}
	r.lastErrorMu.Lock()
	st.LastError = r.lastError
	r.lastErrorMu.Unlock()
	return st
}

func (r *Runner) Run(ctx context.Context) error {
	t := time.NewTicker(r.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			r.runOnce(ctx)
		case <-r.triggerCh:
			r.runOnce(ctx)
		}
	}
}

func (r *Runner) runOnce(ctx context.Context) {
	now := time.Now().UTC()
	r.lastCycleUnixNano.Store(now.UnixNano())

	// После серии неудач пережидаем backoff-окно.
	if retryAt := r.retryAtUnixNano.Load(); retryAt > 0 && now.UnixNano() < retryAt {
		return
	}

	if r.rl != nil && r.rateLimitPerMinute > 0 {
		minuteKey := fmt.Sprintf("rl:gpssim:%s", now.Format("200601021504"))
		allowed, n, err := r.rl.Allow(ctx, minuteKey, r.rateLimitPerMinute, 70*time.Second)
		if err != nil {
			slog.Warn("gps sim rate limiter", "error", err.Error())
		} else if !allowed {
			slog.Warn("gps sim rate limit exceeded", "count", n)
			return
		}
	}

	r.totalCalls.Add(1)
	res, err := r.sim.SimulateGPS(ctx)
	if err != nil {
		r.totalErrors.Add(1)
		streak := r.failStreak.Add(1)
		r.retryAtUnixNano.Store(now.Add(r.backoff.Delay(streak)).UnixNano())
		r.lastErrorMu.Lock()
		r.lastError = err.Error()
		r.lastErrorMu.Unlock()
		slog.Error("gps simulation call", "error", err.Error(), "fail_streak", streak)
		return
	}

	r.failStreak.Store(0)
	r.retryAtUnixNano.Store(0)
	r.totalUpdated.Add(int64(res.UpdatedVehicles))
	slog.Info("gps simulation tick", "updated_vehicles", res.UpdatedVehicles)

	if r.producer != nil && res.UpdatedVehicles > 0 {
		row, _ := json.Marshal(map[string]any{"updated_vehicles": res.UpdatedVehicles})
		b, err := json.Marshal(messages.RowChange{
			Table: "vehicle_locations",
			Op:    messages.OpUpdate,
			At:    now,
			Row:   row,
		})
		if err == nil {
			if err := r.producer.Publish(ctx, r.topic, []byte("gpssim"), b); err != nil {
				slog.Warn("publish row change", "error", err.Error())
			}
		}
	}
}
