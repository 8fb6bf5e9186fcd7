package worker

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/shaiso/Concierge/internal/domain"
	"github.com/shaiso/Concierge/internal/ledger"
	"github.com/shaiso/Concierge/internal/mapping"
	"github.com/shaiso/Concierge/internal/processing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeProcessor struct {
	lots []string
}

func (f *fakeProcessor) ProcessLots(ctx context.Context, lot *domain.Lot) {
	f.lots = append(f.lots, lot.ID)
}

type fakeLedger struct {
	records  map[string]*domain.BrokenLotRecord
	resolved []string
}

func (f *fakeLedger) Get(ctx context.Context, lotID string) (*domain.BrokenLotRecord, error) {
	record, ok := f.records[lotID]
	if !ok {
		return nil, ledger.ErrNotFound
	}
	return record, nil
}

func (f *fakeLedger) Resolve(ctx context.Context, lot domain.Lot) error {
	f.resolved = append(f.resolved, lot.ID)
	if record, ok := f.records[lot.ID]; ok {
		record.Resolved = true
		record.Rev = lot.Rev
	}
	return nil
}

func newTestWorker(processors map[string]processing.Processor, lg *fakeLedger, cache mapping.Mapping) *Worker {
	if lg == nil {
		lg = &fakeLedger{}
	}
	if cache == nil {
		cache = mapping.NewVoid()
	}
	return New(Config{
		Ledger:     lg,
		Cache:      cache,
		Processors: processors,
		Logger:     testLogger(),
	})
}

func TestDispatch_RoutesByLotType(t *testing.T) {
	basic := &fakeProcessor{}
	loki := &fakeProcessor{}
	w := newTestWorker(map[string]processing.Processor{
		"basic": basic,
		"loki":  loki,
	}, nil, nil)

	w.dispatch(context.Background(), &domain.Lot{ID: "lot-1", LotType: "basic"})
	w.dispatch(context.Background(), &domain.Lot{ID: "lot-2", LotType: "loki"})

	if len(basic.lots) != 1 || basic.lots[0] != "lot-1" {
		t.Errorf("basic processor got %v, want [lot-1]", basic.lots)
	}
	if len(loki.lots) != 1 || loki.lots[0] != "lot-2" {
		t.Errorf("loki processor got %v, want [lot-2]", loki.lots)
	}
}

func TestDispatch_UnknownLotTypeIsSkipped(t *testing.T) {
	basic := &fakeProcessor{}
	w := newTestWorker(map[string]processing.Processor{"basic": basic}, nil, nil)

	w.dispatch(context.Background(), &domain.Lot{ID: "lot-1", LotType: "unknown"})

	if len(basic.lots) != 0 {
		t.Errorf("unknown lot type must not be dispatched: %v", basic.lots)
	}
}

func TestDispatch_CachedLotIsSkipped(t *testing.T) {
	basic := &fakeProcessor{}
	cache := mapping.NewLazy()
	if err := cache.Put(context.Background(), "lot-1", "true"); err != nil {
		t.Fatalf("seed cache: %v", err)
	}
	w := newTestWorker(map[string]processing.Processor{"basic": basic}, nil, cache)

	w.dispatch(context.Background(), &domain.Lot{ID: "lot-1", LotType: "basic"})

	if len(basic.lots) != 0 {
		t.Errorf("cached lot must not be dispatched: %v", basic.lots)
	}
}

func TestDispatch_BrokenLotRevisionRule(t *testing.T) {
	basic := &fakeProcessor{}
	lg := &fakeLedger{records: map[string]*domain.BrokenLotRecord{
		"lot-1": {Lot: domain.Lot{ID: "lot-1"}, Rev: "3-c", Message: "patching assets to active"},
	}}
	w := newTestWorker(map[string]processing.Processor{"basic": basic}, lg, nil)

	// Та же ревизия — пропуск, каждый раз, сколько бы доставок ни было.
	lot := &domain.Lot{ID: "lot-1", LotType: "basic", Rev: "3-c"}
	w.dispatch(context.Background(), lot)
	w.dispatch(context.Background(), lot)

	if len(basic.lots) != 0 {
		t.Fatalf("broken lot with unchanged rev must not be dispatched: %v", basic.lots)
	}
	if len(lg.resolved) != 0 {
		t.Fatalf("unchanged rev must not resolve the record: %v", lg.resolved)
	}

	// Другая ревизия — запись снимается, лот уходит в обработку.
	moved := &domain.Lot{ID: "lot-1", LotType: "basic", Rev: "4-d"}
	w.dispatch(context.Background(), moved)

	if len(lg.resolved) != 1 || lg.resolved[0] != "lot-1" {
		t.Errorf("record must be resolved on revision change: %v", lg.resolved)
	}
	if len(basic.lots) != 1 || basic.lots[0] != "lot-1" {
		t.Errorf("lot must be dispatched after resolution: %v", basic.lots)
	}

	// Запись разрешена: дальнейшие доставки обрабатываются как обычно.
	w.dispatch(context.Background(), moved)
	if len(basic.lots) != 2 {
		t.Errorf("resolved lot must keep being dispatched: %v", basic.lots)
	}
}
