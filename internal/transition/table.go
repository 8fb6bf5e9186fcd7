// Package transition содержит статические таблицы переходов статусов
// для лотов и активов.
//
// Каждый вариант лота (Basic, Loki) несёт собственную таблицу и набор
// обрабатываемых статусов. Отсутствие записи в таблице — ошибка
// программирования, а не данных: таблицы проверяются при старте
// (Validate), после чего MustNext паникует на промахе вместо тихого
// no-op.
package transition

import (
	"fmt"

	"github.com/shaiso/Concierge/internal/domain"
)

// Resource — ресурс, к которому относится переход.
type Resource string

const (
	ResourceLot   Resource = "lot"
	ResourceAsset Resource = "asset"
)

// Action — фаза перехода внутри статуса.
type Action string

const (
	// ActionPre — промежуточный статус фазы захвата (claim).
	ActionPre Action = "pre"

	// ActionFinish — целевой статус успешного завершения.
	ActionFinish Action = "finish"

	// ActionFail — статус отката при неуспехе.
	ActionFail Action = "fail"
)

// Change — тройка переходов для одного текущего статуса.
type Change struct {
	Pre    domain.Status
	Finish domain.Status
	Fail   domain.Status
}

func (c Change) get(action Action) domain.Status {
	switch action {
	case ActionPre:
		return c.Pre
	case ActionFinish:
		return c.Finish
	case ActionFail:
		return c.Fail
	}
	return domain.StatusNone
}

// Table — таблица переходов одного варианта лота:
// ресурс → текущий статус лота → {pre, finish, fail}.
type Table struct {
	Lot   map[domain.Status]Change
	Asset map[domain.Status]Change
}

// Next возвращает следующий статус для ресурса и действия.
// Второе значение — false, если запись для статуса отсутствует.
// Пустой статус в существующей записи — валидный ответ: переход для
// этого действия не предусмотрен.
func (t Table) Next(resource Resource, current domain.Status, action Action) (domain.Status, bool) {
	var m map[domain.Status]Change
	switch resource {
	case ResourceLot:
		m = t.Lot
	case ResourceAsset:
		m = t.Asset
	default:
		return domain.StatusNone, false
	}
	change, ok := m[current]
	if !ok {
		return domain.StatusNone, false
	}
	return change.get(action), true
}

// MustNext — как Next, но паникует на отсутствующей записи. Применяется
// процессорами после того, как Validate подтвердил покрытие таблицы.
func (t Table) MustNext(resource Resource, current domain.Status, action Action) domain.Status {
	next, ok := t.Next(resource, current, action)
	if !ok {
		panic(fmt.Sprintf("transition: no %s entry for status %q", resource, current))
	}
	return next
}

// Validate проверяет, что таблица содержит записи lot и asset для
// каждого обрабатываемого статуса. Вызывается при конструировании
// процессора — ошибка конфигурации должна валить процесс на старте.
func (t Table) Validate(handled []domain.Status) error {
	for _, status := range handled {
		if _, ok := t.Lot[status]; !ok {
			return fmt.Errorf("transition: lot table misses handled status %q", status)
		}
		if _, ok := t.Asset[status]; !ok {
			return fmt.Errorf("transition: asset table misses handled status %q", status)
		}
	}
	return nil
}
