package calendar

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func TestAdvance_PlainDelta(t *testing.T) {
	cal := Default()
	start := date(2026, time.August, 28) // пятница

	got := cal.Advance(start, 48*time.Hour, false)
	want := date(2026, time.August, 30)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestAdvance_BusinessDaysSkipWeekend(t *testing.T) {
	cal := Default()
	start := date(2026, time.August, 28) // пятница

	got := cal.Advance(start, 24*time.Hour, true)
	want := date(2026, time.August, 31) // понедельник
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestAdvance_BusinessDaysSkipHoliday(t *testing.T) {
	cal := Default()
	// 2026-08-24 — праздник в понедельник (см. workdays.json)
	start := date(2026, time.August, 21) // пятница

	got := cal.Advance(start, 24*time.Hour, true)
	// суббота 2026-08-22 объявлена рабочей в таблице исключений
	want := date(2026, time.August, 22)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestAdvance_MultipleBusinessDays(t *testing.T) {
	cal := Default()
	start := date(2026, time.August, 26) // среда

	got := cal.Advance(start, 3*24*time.Hour, true)
	// чт 27, пт 28, пн 31
	want := date(2026, time.August, 31)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestAdvance_SubDayRemainder(t *testing.T) {
	cal := Default()
	start := date(2026, time.August, 28)

	got := cal.Advance(start, 24*time.Hour+6*time.Hour, true)
	want := date(2026, time.August, 31).Add(6 * time.Hour)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestAdvance_ZeroAndNegative(t *testing.T) {
	cal := Default()
	start := date(2026, time.August, 28)

	if got := cal.Advance(start, 0, true); !got.Equal(start) {
		t.Errorf("zero delta: got %v", got)
	}
	if got := cal.Advance(start, -time.Hour, true); !got.Equal(start.Add(-time.Hour)) {
		t.Errorf("negative delta falls back to plain addition, got %v", got)
	}
}

func TestIsHoliday(t *testing.T) {
	cal := Default()
	tests := []struct {
		day  time.Time
		want bool
	}{
		{date(2026, time.August, 29), true},  // суббота
		{date(2026, time.August, 31), false}, // понедельник
		{date(2026, time.August, 24), true},  // праздник в будни
		{date(2026, time.August, 22), false}, // рабочая суббота
	}
	for _, tt := range tests {
		if got := cal.IsHoliday(tt.day); got != tt.want {
			t.Errorf("IsHoliday(%v) = %v, want %v", tt.day.Format("2006-01-02"), got, tt.want)
		}
	}
}

func TestDefault_EmbeddedTableParses(t *testing.T) {
	if Default() == nil {
		t.Fatal("embedded table must parse")
	}
}
