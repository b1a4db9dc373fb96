package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/antonkhm/warelog/internal/broker/messages"
)

type consumer interface {
	Consume(ctx context.Context, handler func(key, value []byte) error) error
}

type subscription struct {
	table     string
	filterCol string
	filterVal string
	ch        chan struct{}
}

// Feed раздаёт события изменения строк подписчикам по таблице и
// необязательному фильтру по колонке. Подписчик получает не само событие,
// а сигнал "данные устарели, перечитай" — канал ёмкостью 1, лишние
// сигналы схлопываются.
type Feed struct {
	c consumer

	mu     sync.RWMutex
	subs   map[uint64]*subscription
	nextID uint64
}

func NewFeed(c consumer) *Feed {
	return &Feed{c: c, subs: make(map[uint64]*subscription)}
}

// Subscribe регистрирует подписку на изменения таблицы. filterCol == ""
// означает все строки. Возвращённая функция отписки идемпотентна.
func (f *Feed) Subscribe(table, filterCol, filterVal string) (<-chan struct{}, func()) {
	f.mu.Lock()
	f.nextID++
	id := f.nextID
	sub := &subscription{
		table:     table,
		filterCol: filterCol,
		filterVal: filterVal,
		ch:        make(chan struct{}, 1),
	}
	f.subs[id] = sub
	f.mu.Unlock()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.subs, id)
			f.mu.Unlock()
		})
	}
	return sub.ch, unsubscribe
}

// Apply доставляет одно событие всем совпадающим подпискам.
func (f *Feed) Apply(rc messages.RowChange) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	for _, sub := range f.subs {
		if sub.table != rc.Table {
			continue
		}
		if sub.filterCol != "" {
			v, ok := rc.Column(sub.filterCol)
			if !ok || v != sub.filterVal {
				continue
			}
		}
		select {
		case sub.ch <- struct{}{}:
		default:
		}
	}
}

// Run читает поток событий до отмены контекста. Кривые payload'ы
// логируются и пропускаются, поток не останавливают.
func (f *Feed) Run(ctx context.Context) error {
	return f.c.Consume(ctx, func(_key, value []byte) error {
		var rc messages.RowChange
		if err := json.Unmarshal(value, &rc); err != nil {
			slog.Warn("realtime: malformed row change", "error", err.Error())
			return nil
		}
		f.Apply(rc)
		return nil
	})
}

// SubscriberCount — число активных подписок (для ops-эндпоинтов и тестов).
func (f *Feed) SubscriberCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subs)
}
