package mapping

import (
	"context"
	"sync"
)

// Lazy — встроенное in-process хранилище без TTL.
//
// Живёт столько же, сколько процесс; записи не истекают. Подходит для
// единственного экземпляра concierge — разделяемого состояния у кэша
// нет, а потерянные при рестарте записи некритичны (кэш advisory).
type Lazy struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewLazy создаёт встроенный кэш.
func NewLazy() *Lazy {
	return &Lazy{data: make(map[string]string)}
}

func (l *Lazy) Get(ctx context.Context, key string) (string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.data[key], nil
}

func (l *Lazy) Put(ctx context.Context, key, value string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.data[key] = value
	return nil
}

func (l *Lazy) Has(ctx context.Context, key string) (bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.data[key]
	return ok, nil
}

func (l *Lazy) Delete(ctx context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.data, key)
	return nil
}

// IsEmpty сообщает, пусто ли хранилище.
func (l *Lazy) IsEmpty() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.data) == 0
}

// Destroy очищает хранилище целиком.
func (l *Lazy) Destroy() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.data = make(map[string]string)
}
