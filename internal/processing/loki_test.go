package processing

import (
	"context"
	"testing"

	"github.com/shaiso/Concierge/internal/calendar"
	"github.com/shaiso/Concierge/internal/clients"
	"github.com/shaiso/Concierge/internal/domain"
	"github.com/shaiso/Concierge/internal/mapping"
)

func lokiLot(status domain.Status) *domain.Lot {
	return &domain.Lot{
		ID:      "lot-1",
		Rev:     "1-a",
		LotID:   "UA-LOT-1",
		Status:  status,
		LotType: "loki",
		RelatedProcesses: []domain.RelatedProcess{
			{ID: "rp-1", Type: domain.RelatedProcessAsset, RelatedProcessID: "asset-1"},
			{ID: "rp-2", Type: domain.RelatedProcessAsset, RelatedProcessID: "asset-2"},
		},
	}
}

func lokiAsset(id string, status domain.Status) *domain.Asset {
	return &domain.Asset{
		ID:        id,
		Status:    status,
		AssetType: "lokiAsset",
		AssetID:   "UA-" + id,
		Title:     "Asset " + id,
		Items:     []domain.Item{{ID: "item-" + id, Description: "item"}},
		Decisions: []domain.Decision{{DecisionID: "dec-" + id}},
	}
}

func lokiFixture(status domain.Status) (*domain.Lot, *fakeLots, *fakeAssets) {
	lot := lokiLot(status)
	lots := &fakeLots{
		remote: map[string]*domain.Lot{lot.ID: lot},
		token:  "transfer-token",
	}
	assetStatus := domain.StatusPending
	if status == domain.StatusActiveSalable {
		assetStatus = domain.StatusActive
	}
	assets := &fakeAssets{remote: map[string]*domain.Asset{
		"asset-1": lokiAsset("asset-1", assetStatus),
		"asset-2": lokiAsset("asset-2", assetStatus),
	}}
	return lot, lots, assets
}

func newTestLoki(t *testing.T, lots *fakeLots, assets *fakeAssets, auctions AuctionClient, ledger *fakeLedger) *Loki {
	t.Helper()
	if auctions == nil {
		auctions = &fakeAuctions{}
	}
	p, err := NewLoki(Deps{
		Lots:   lots,
		Assets: assets,
		Ledger: ledger,
		Cache:  mapping.NewLazy(),
		Logger: testLogger(),
	}, auctions, calendar.Default(), LokiConfig{
		AssetTypes:  []string{"lokiAsset"},
		PlannedPMTs: []string{"sellout.english"},
		Retry:       testPolicy(),
	})
	if err != nil {
		t.Fatalf("new loki processor: %v", err)
	}
	return p
}

type fakeAuctions struct {
	created   []*domain.AuctionCreate
	createErr error
	response  *domain.CreatedAuction
}

func (f *fakeAuctions) Create(ctx context.Context, auction *domain.AuctionCreate) (*domain.CreatedAuction, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, auction)
	if f.response != nil {
		return f.response, nil
	}
	return &domain.CreatedAuction{
		ID:        "auction-remote-1",
		AuctionID: "UA-AUC-1",
		Status:    domain.AuctionPendingActivation,
	}, nil
}

func TestLokiClaim_Success(t *testing.T) {
	lot, lots, assets := lokiFixture(domain.StatusVerification)
	ledger := &fakeLedger{}
	p := newTestLoki(t, lots, assets, nil, ledger)

	p.ProcessLots(context.Background(), lot)

	// Записи лота получают внешние идентификаторы активов.
	if len(lots.rpPatches) != 2 {
		t.Fatalf("rp patches = %v, want 2", lots.rpPatches)
	}
	if lots.rpPatches[0].identifier != "UA-asset-1" || lots.rpPatches[1].identifier != "UA-asset-2" {
		t.Errorf("identifiers not propagated: %v", lots.rpPatches)
	}

	// На каждом активе создана обратная запись типа lot.
	if len(assets.createdRP) != 2 {
		t.Fatalf("created back links = %v, want 2", assets.createdRP)
	}
	for _, call := range assets.createdRP {
		if call.rp.Type != domain.RelatedProcessLot || call.rp.RelatedProcessID != lot.ID {
			t.Errorf("back link = %v, want type lot pointing at %s", call.rp, lot.ID)
		}
		if call.rp.Identifier != lot.LotID {
			t.Errorf("back link identifier = %q, want %q", call.rp.Identifier, lot.LotID)
		}
	}

	// Завершение: проекция представительного актива и статус pending.
	if len(lots.patches) != 1 {
		t.Fatalf("lot patches = %v, want 1", lots.patches)
	}
	patch := lots.patches[0].patch
	if patch.Status != domain.StatusPending {
		t.Errorf("lot patched to %q, want pending", patch.Status)
	}
	if patch.Title != "Asset asset-1" {
		t.Errorf("title not projected from representative asset: %q", patch.Title)
	}
	if len(patch.Decisions) != 1 || patch.Decisions[0].RelatedItem != "asset-1" {
		t.Errorf("asset decisions must be merged tagged with asset id: %v", patch.Decisions)
	}
	if len(ledger.broken) != 0 {
		t.Errorf("unexpected ledger records: %v", ledger.broken)
	}
}

func TestLokiClaim_ModeMismatchFailsLot(t *testing.T) {
	lot, lots, assets := lokiFixture(domain.StatusVerification)
	assets.remote["asset-2"].Mode = "test"
	p := newTestLoki(t, lots, assets, nil, &fakeLedger{})

	p.ProcessLots(context.Background(), lot)

	if len(assets.patches) != 0 {
		t.Errorf("assets must not be patched: %v", assets.patches)
	}
	if len(lots.patches) != 1 || lots.patches[0].patch.Status != domain.StatusInvalid {
		t.Errorf("lot patches = %v, want single invalid", lots.patches)
	}
}

func TestLokiClaim_LinkFailureCleansUpWithoutLedger(t *testing.T) {
	lot, lots, assets := lokiFixture(domain.StatusVerification)
	lots.rpPatchFn = func(rpID string) error {
		if rpID == "rp-2" {
			return apiErr(500)
		}
		return nil
	}
	ledger := &fakeLedger{}
	p := newTestLoki(t, lots, assets, nil, ledger)

	p.ProcessLots(context.Background(), lot)

	// Обратная запись первого актива удалена.
	if len(assets.deletedRP) != 1 || assets.deletedRP[0].assetID != "asset-1" {
		t.Errorf("deleted back links = %v, want asset-1 cleanup", assets.deletedRP)
	}
	// Идентификатор первой записи лота очищен (последний rp patch).
	last := lots.rpPatches[len(lots.rpPatches)-1]
	if last.rpID != "rp-1" || last.identifier != "" {
		t.Errorf("last rp patch = %v, want cleared rp-1", last)
	}
	// Активы возвращены в pending.
	tail := assets.patches[len(assets.patches)-2:]
	for _, call := range tail {
		if call.status != domain.StatusPending {
			t.Errorf("expected revert to pending, got %v", call)
		}
	}
	// Восстановимое отклонение: ledger не трогаем, лот не патчим.
	if len(ledger.broken) != 0 {
		t.Errorf("link failure must not reach the ledger: %v", ledger.broken)
	}
	if len(lots.patches) != 0 {
		t.Errorf("lot must not be patched: %v", lots.patches)
	}
}

func TestLokiClaim_FinishFailureRevertsToComposing(t *testing.T) {
	lot, lots, assets := lokiFixture(domain.StatusVerification)
	lots.patchFn = func(_ string, patch clients.LotPatch) error {
		if patch.Status == domain.StatusPending {
			return apiErr(500)
		}
		return nil
	}
	ledger := &fakeLedger{}
	p := newTestLoki(t, lots, assets, nil, ledger)

	p.ProcessLots(context.Background(), lot)

	// Связи сняты, активы в pending, лот в composing, поломка в ledger.
	if len(assets.deletedRP) != 2 {
		t.Errorf("deleted back links = %v, want both", assets.deletedRP)
	}
	last := lots.patches[len(lots.patches)-1]
	if last.patch.Status != domain.StatusComposing {
		t.Errorf("lot must be reverted to composing, got %q", last.patch.Status)
	}
	if len(ledger.broken) != 1 || ledger.broken[0].message != "patching lot to pending" {
		t.Errorf("ledger records = %v, want patching lot to pending", ledger.broken)
	}
}

func TestLokiSalable_Success(t *testing.T) {
	lot, lots, assets := lokiFixture(domain.StatusActiveSalable)
	lot.Auctions = []domain.Auction{{
		ID:                    "lot-auction-1",
		Status:                domain.AuctionScheduled,
		TenderAttempts:        1,
		ProcurementMethodType: "sellout.english",
	}}
	lots.remote[lot.ID] = lot
	auctions := &fakeAuctions{}
	p := newTestLoki(t, lots, assets, auctions, &fakeLedger{})

	p.ProcessLots(context.Background(), lot)

	if len(auctions.created) != 1 {
		t.Fatalf("auctions created = %d, want 1", len(auctions.created))
	}
	if len(lots.auctionPatches) != 1 {
		t.Fatalf("lot auction patches = %v, want 1", lots.auctionPatches)
	}
	got := lots.auctionPatches[0]
	if got.auctionID != "lot-auction-1" {
		t.Errorf("patched auction subitem %q, want lot-auction-1", got.auctionID)
	}
	if got.patch.AuctionID != "UA-AUC-1" || got.patch.RelatedProcessID != "auction-remote-1" {
		t.Errorf("created auction identifiers not propagated: %+v", got.patch)
	}
	if len(lots.patches) != 0 {
		t.Errorf("lot status must stay active.salable: %v", lots.patches)
	}

	has, _ := p.cache.Has(context.Background(), lot.ID)
	if !has {
		t.Error("successful auction creation must mark the lot in mapping")
	}
}

func TestLokiSalable_CreateFailureRevertsLot(t *testing.T) {
	lot, lots, assets := lokiFixture(domain.StatusActiveSalable)
	lot.Auctions = []domain.Auction{{
		ID:                    "lot-auction-1",
		Status:                domain.AuctionScheduled,
		TenderAttempts:        1,
		ProcurementMethodType: "sellout.english",
	}}
	lots.remote[lot.ID] = lot
	auctions := &fakeAuctions{createErr: apiErr(500)}
	p := newTestLoki(t, lots, assets, auctions, &fakeLedger{})

	p.ProcessLots(context.Background(), lot)

	if len(lots.patches) != 1 || lots.patches[0].patch.Status != domain.StatusComposing {
		t.Fatalf("lot patches = %v, want single composing", lots.patches)
	}
	for _, call := range assets.patches {
		if call.status != domain.StatusPending {
			t.Errorf("assets must be reverted to pending, got %v", call)
		}
	}
}

func TestLokiSalable_SequenceGuards(t *testing.T) {
	tests := []struct {
		name     string
		auctions []domain.Auction
	}{
		{
			name:     "no scheduled auction",
			auctions: []domain.Auction{{ID: "a1", Status: domain.AuctionUnsuccessful, TenderAttempts: 1}},
		},
		{
			name: "previous auction still active",
			auctions: []domain.Auction{
				{ID: "a1", Status: domain.AuctionActive, TenderAttempts: 1},
				{ID: "a2", Status: domain.AuctionScheduled, TenderAttempts: 2},
			},
		},
		{
			name: "cancelled auction after the scheduled one",
			auctions: []domain.Auction{
				{ID: "a1", Status: domain.AuctionUnsuccessful, TenderAttempts: 1},
				{ID: "a2", Status: domain.AuctionScheduled, TenderAttempts: 2, ProcurementMethodType: "sellout.english"},
				{ID: "a3", Status: domain.AuctionCancelled, TenderAttempts: 3},
			},
		},
		{
			name: "pending activation ahead of the scheduled one",
			auctions: []domain.Auction{
				{ID: "a1", Status: domain.AuctionPendingActivation, TenderAttempts: 1},
				{ID: "a2", Status: domain.AuctionScheduled, TenderAttempts: 2, ProcurementMethodType: "sellout.english"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lot, lots, assets := lokiFixture(domain.StatusActiveSalable)
			lot.Auctions = tt.auctions
			lots.remote[lot.ID] = lot
			auctions := &fakeAuctions{}
			p := newTestLoki(t, lots, assets, auctions, &fakeLedger{})

			p.ProcessLots(context.Background(), lot)

			if len(auctions.created) != 0 {
				t.Errorf("auction must not be created: %v", auctions.created)
			}
			if len(lots.patches) != 0 || len(assets.patches) != 0 {
				t.Error("ineligible sequence must not mutate anything")
			}
		})
	}
}

func TestLokiSalable_UnplannedPMTIsNoOp(t *testing.T) {
	lot, lots, assets := lokiFixture(domain.StatusActiveSalable)
	lot.Auctions = []domain.Auction{{
		ID:                    "lot-auction-1",
		Status:                domain.AuctionScheduled,
		TenderAttempts:        1,
		ProcurementMethodType: "sellout.dutch",
	}}
	lots.remote[lot.ID] = lot
	auctions := &fakeAuctions{}
	p := newTestLoki(t, lots, assets, auctions, &fakeLedger{})

	p.ProcessLots(context.Background(), lot)

	// «Нечего делать» — не отказ: ни создания, ни отката.
	if len(auctions.created) != 0 {
		t.Errorf("auction must not be created: %v", auctions.created)
	}
	if len(lots.patches) != 0 {
		t.Errorf("nothing-to-do must not revert the lot: %v", lots.patches)
	}
}
