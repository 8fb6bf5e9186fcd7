// Package calendar считает даты старта аукционов с учётом рабочих дней.
//
// Ядру пакет виден как единственная чистая функция Advance. Таблица
// исключений (праздники в будни, рабочие субботы) вшита в бинарь из
// workdays.json и может быть переопределена файлом через NewCalendar.
package calendar

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"time"
)

//go:embed workdays.json
var embeddedExceptions []byte

// Calendar — календарь рабочих дней.
type Calendar struct {
	// exceptions: дата (YYYY-MM-DD) → true, если день нерабочий
	// вопреки дню недели, и false, если рабочий вопреки выходному.
	exceptions map[string]bool
}

// Default возвращает календарь со вшитой таблицей исключений.
func Default() *Calendar {
	cal, err := parse(embeddedExceptions)
	if err != nil {
		// вшитая таблица проверяется тестом, сюда попадать некуда
		panic(fmt.Sprintf("calendar: embedded workdays table: %v", err))
	}
	return cal
}

// NewCalendar загружает таблицу исключений из файла.
func NewCalendar(path string) (*Calendar, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("calendar: read exceptions: %w", err)
	}
	return parse(raw)
}

func parse(raw []byte) (*Calendar, error) {
	exceptions := make(map[string]bool)
	if err := json.Unmarshal(raw, &exceptions); err != nil {
		return nil, fmt.Errorf("calendar: parse exceptions: %w", err)
	}
	for date := range exceptions {
		if _, err := time.Parse("2006-01-02", date); err != nil {
			return nil, fmt.Errorf("calendar: bad exception date %q", date)
		}
	}
	return &Calendar{exceptions: exceptions}, nil
}

// IsHoliday сообщает, является ли день нерабочим: суббота и воскресенье
// по умолчанию нерабочие, таблица исключений переопределяет и то и
// другое.
func (c *Calendar) IsHoliday(t time.Time) bool {
	if override, ok := c.exceptions[t.Format("2006-01-02")]; ok {
		return override
	}
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// Advance возвращает момент, отстоящий от start на delta.
//
// При businessDays=false — это просто start+delta. При businessDays=true
// целые дни delta отсчитываются по рабочим дням: каждая итерация
// переносит курсор на следующий рабочий день, выходные и праздники не
// расходуют дельту. Остаток меньше суток прибавляется как есть.
func (c *Calendar) Advance(start time.Time, delta time.Duration, businessDays bool) time.Time {
	if !businessDays || delta <= 0 {
		return start.Add(delta)
	}

	days := int(delta / (24 * time.Hour))
	rest := delta % (24 * time.Hour)

	cursor := start
	for i := 0; i < days; i++ {
		cursor = c.nextWorkingDay(cursor)
	}
	return cursor.Add(rest)
}

func (c *Calendar) nextWorkingDay(t time.Time) time.Time {
	cursor := t
	for {
		cursor = cursor.AddDate(0, 0, 1)
		if !c.IsHoliday(cursor) {
			return cursor
		}
	}
}
