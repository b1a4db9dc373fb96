package tracking

import (
	"context"
	"sync"
	"time"

	"github.com/antonkhm/warelog/internal/models"
)

type Repository interface {
	GetOrder(ctx context.Context, id string) (models.Order, bool, error)
	GetTrackingRow(ctx context.Context, orderID string) (models.TrackingRow, bool, error)
}

// Subscriber выдаёт канал-сигнал "строка таблицы изменилась" и функцию отписки.
type Subscriber interface {
	Subscribe(table, filterCol, filterVal string) (<-chan struct{}, func())
}

type CancelFunc func()

type Tracker struct {
	repo Repository
	feed Subscriber

	pollInterval time.Duration
	fetchTimeout time.Duration
}

func New(repo Repository, feed Subscriber) *Tracker {
	return &Tracker{
		repo:         repo,
		feed:         feed,
		pollInterval: 5 * time.Second,
		fetchTimeout: 20 * time.Second,
	}
}

func (t *Tracker) WithSettings(pollInterval, fetchTimeout time.Duration) *Tracker {
	if pollInterval > 0 {
		t.pollInterval = pollInterval
	}
	if fetchTimeout > 0 {
		t.fetchTimeout = fetchTimeout
	}
	return t
}

// StartTracking запускает сессию наблюдения за заказом: немедленная выборка,
// затем тикер и подписки на изменения. CancelFunc останавливает таймер и
// снимает все подписки; повторный вызов безопасен.
func (t *Tracker) StartTracking(ctx context.Context, orderID string) (*Session, CancelFunc) {
	sctx, cancel := context.WithCancel(ctx)

	s := newSession(orderID, t.repo, t.pollInterval, t.fetchTimeout)

	var unsubs []func()
	if t.feed != nil {
		subs := []struct{ table, col, val string }{
			{"vehicle_locations", "", ""},
			{"orders", "id", orderID},
			{"delivery_routes", "", ""},
			{"notifications", "order_id", orderID},
		}
		for _, sub := range subs {
			ch, unsub := t.feed.Subscribe(sub.table, sub.col, sub.val)
			unsubs = append(unsubs, unsub)
			go func(ch <-chan struct{}) {
				for {
					select {
					case <-sctx.Done():
						return
					case <-ch:
						s.Trigger()
					}
				}
			}(ch)
		}
	}

	go s.run(sctx)

	var once sync.Once
	stop := func() {
		once.Do(func() {
			cancel()
			for _, u := range unsubs {
				u()
			}
		})
	}
	return s, stop
}
