package feed

import (
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultResweepSchedule — расписание сброса курсора по умолчанию:
// раз в час feed перечитывается с нуля, чтобы подобрать лоты,
// пропущенные из-за гонок фильтра или сбоев.
const DefaultResweepSchedule = "@hourly"

// Cursor — непрозрачная позиция в change feed, сохраняемая между
// опросами, с периодическим сбросом по cron-расписанию.
type Cursor struct {
	mu       sync.Mutex
	seq      string
	schedule cron.Schedule
	nextDrop time.Time
	now      func() time.Time
}

// NewCursor создаёт курсор со сбросом по cron-выражению spec
// (поддерживаются стандартные пять полей и дескрипторы вида "@hourly").
func NewCursor(spec string) (*Cursor, error) {
	if spec == "" {
		spec = DefaultResweepSchedule
	}
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, err
	}
	c := &Cursor{schedule: schedule, now: time.Now}
	c.nextDrop = schedule.Next(c.now())
	return c, nil
}

// Get возвращает текущую позицию; пустая строка — читать с начала.
func (c *Cursor) Get() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seq
}

// Set запоминает позицию последнего обработанного изменения.
func (c *Cursor) Set(seq string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq = seq
}

// MaybeDrop сбрасывает курсор, если пришло время по расписанию.
// После сброса следующий дрен перефильтрует базу целиком.
func (c *Cursor) MaybeDrop(logger *slog.Logger) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if now.Before(c.nextDrop) {
		return
	}
	c.seq = ""
	c.nextDrop = c.schedule.Next(now)
	logger.Info("dropping feed cursor, full database will be filtered",
		"next_drop", c.nextDrop,
	)
}
