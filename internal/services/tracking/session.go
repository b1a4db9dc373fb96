package tracking

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/antonkhm/warelog/internal/models"
	"github.com/pkg/errors"
)

// Session — состояние наблюдения за одним заказом. Все причины обновления
// (тикер, каждое push-событие) сливаются в один буферизованный канал,
// который разбирает единственный цикл выборки: конкурентных выборок нет,
// за in-flight выборкой следует максимум одна добавочная.
type Session struct {
	orderID string
	repo    Repository

	pollInterval time.Duration
	fetchTimeout time.Duration

	triggerCh chan struct{}
	updatesCh chan struct{}

	seq atomic.Uint64

	mu         sync.RWMutex
	appliedSeq uint64
	snapshot   models.TrackingSnapshot
}

func newSession(orderID string, repo Repository, pollInterval, fetchTimeout time.Duration) *Session {
	return &Session{
		orderID:      orderID,
		repo:         repo,
		pollInterval: pollInterval,
		fetchTimeout: fetchTimeout,
		triggerCh:    make(chan struct{}, 1),
		updatesCh:    make(chan struct{}, 1),
	}
}

func (s *Session) OrderID() string { return s.orderID }

// Trigger просит внеочередную выборку (best-effort, без блокировки).
func (s *Session) Trigger() {
	select {
	case s.triggerCh <- struct{}{}:
	default:
	}
}

// Updates сигналит после каждого применённого снапшота; канал ёмкостью 1,
// пропущенные сигналы схлопываются.
func (s *Session) Updates() <-chan struct{} { return s.updatesCh }

// Current возвращает копию текущего снапшота.
func (s *Session) Current() models.TrackingSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := s.snapshot
	if snap.Delivery != nil {
		row := *snap.Delivery
		snap.Delivery = &row
	}
	return snap
}

func (s *Session) run(ctx context.Context) {
	s.fetch(ctx)

	t := time.NewTicker(s.pollInterval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.fetch(ctx)
		case <-s.triggerCh:
			s.fetch(ctx)
		}
	}
}

type fetchResult struct {
	at time.Time

	orderOK bool
	order   models.Order

	viewOK    bool
	rowFound  bool
	row       models.TrackingRow
	err       error
}

func (s *Session) fetch(ctx context.Context) {
	seq := s.seq.Add(1)

	fctx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	res := fetchResult{at: time.Now().UTC()}

	order, found, err := s.repo.GetOrder(fctx, s.orderID)
	switch {
	case err != nil:
		res.err = errors.Wrap(err, "fetch order")
	case !found:
		res.err = errors.Errorf("order %s not found", s.orderID)
	default:
		res.orderOK = true
		res.order = order
	}

	if res.orderOK {
		// Отсутствие строки представления — не ошибка: доставка ещё не началась.
		row, rowFound, err := s.repo.GetTrackingRow(fctx, s.orderID)
		if err != nil {
			res.err = errors.Wrap(err, "fetch tracking row")
		} else {
			res.viewOK = true
			res.rowFound = rowFound
			res.row = row
		}
	}

	s.apply(seq, res)
}

// apply накладывает результат выборки: устаревший seq отбрасывается
// (побеждает последняя начатая), при ошибке прошлый удачный снапшот
// сохраняется и помечается флагом Err.
func (s *Session) apply(seq uint64, res fetchResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seq <= s.appliedSeq {
		slog.Debug("stale fetch discarded", "order_id", s.orderID, "seq", seq, "applied", s.appliedSeq)
		return
	}
	s.appliedSeq = seq

	next := s.snapshot
	next.Seq = seq
	next.FetchedAt = res.at
	next.Err = res.err

	if res.orderOK {
		next.Order = res.order
	}
	if res.viewOK {
		if res.rowFound {
			row := res.row
			next.Delivery = &row
		} else {
			next.Delivery = nil
		}
	}

	s.snapshot = next

	if res.err != nil {
		slog.Warn("tracking fetch failed", "order_id", s.orderID, "error", res.err.Error())
	}

	select {
	case s.updatesCh <- struct{}{}:
	default:
	}
}
