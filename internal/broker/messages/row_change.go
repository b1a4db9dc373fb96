package messages

import (
	"encoding/json"
	"time"
)

// Op — операция изменения строки, как её отдаёт бэкенд.
type Op string

const (
	OpInsert Op = "INSERT"
	OpUpdate Op = "UPDATE"
	OpDelete Op = "DELETE"
)

// RowChange — событие изменения строки таблицы, публикуется в Kafka
// после каждой успешной записи. Row содержит новое состояние строки;
// порядок доставки относительно опросов БД не гарантируется.
type RowChange struct {
	Table string          `json:"table"`
	Op    Op              `json:"op"`
	At    time.Time       `json:"at"`
	Row   json.RawMessage `json:"row,omitempty"`
}

// Column достаёт строковое значение колонки из Row. Повреждённый payload
// трактуется как отсутствие значения, не как ошибка.
func (m RowChange) Column(name string) (string, bool) {
	if len(m.Row) == 0 {
		return "", false
	}
	var row map[string]any
	if err := json.Unmarshal(m.Row, &row); err != nil {
		return "", false
	}
	v, ok := row[name]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}
