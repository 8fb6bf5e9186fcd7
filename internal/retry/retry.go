// Package retry реализует повтор удалённых вызовов с фиксированной
// задержкой.
//
// Политика применяется явно на каждом месте удалённого вызова:
//
//	err := retry.Do(ctx, policy, clients.IsRetryable, func() error {
//	    return assets.Patch(ctx, id, patch)
//	})
//
// Комбинатор вместо декоратора держит политику повторов инспектируемой
// и тестируемой отдельно от бизнес-логики.
package retry

import (
	"context"
	"time"
)

// Defaults политики.
const (
	DefaultMaxAttempts = 5
	DefaultDelay       = 2 * time.Second
)

// Policy — параметры повтора.
type Policy struct {
	// MaxAttempts — максимальное число попыток, включая первую.
	MaxAttempts int

	// Delay — фиксированная пауза между попытками.
	Delay time.Duration

	// sleep подменяется в тестах.
	sleep func(ctx context.Context, d time.Duration) bool
}

// DefaultPolicy возвращает политику по умолчанию: 5 попыток с паузой 2с.
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: DefaultMaxAttempts, Delay: DefaultDelay}
}

// WithSleep возвращает копию политики с подменённой функцией сна.
// Используется в тестах, чтобы не ждать реальные задержки.
func (p Policy) WithSleep(sleep func(ctx context.Context, d time.Duration) bool) Policy {
	p.sleep = sleep
	return p
}

// Do выполняет op, повторяя её при ошибках, которые isRetryable считает
// временными. Возвращает nil при первом успехе либо последнюю ошибку,
// когда попытки исчерпаны, ошибка не временная или контекст отменён.
//
// Пауза между попытками синхронная: воркер однопоточный по построению,
// и блокировка здесь — единственный контроль конкурентности.
func Do(ctx context.Context, p Policy, isRetryable func(error) bool, op func() error) error {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = DefaultMaxAttempts
	}
	sleep := p.sleep
	if sleep == nil {
		sleep = sleepWithContext
	}

	var lastErr error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if ctx.Err() != nil || attempt == p.MaxAttempts || isRetryable == nil || !isRetryable(lastErr) {
			break
		}
		if !sleep(ctx, p.Delay) {
			break
		}
		retries.Inc()
	}
	return lastErr
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
