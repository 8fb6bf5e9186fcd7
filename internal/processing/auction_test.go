package processing

import (
	"context"
	"testing"
	"time"

	"github.com/shaiso/Concierge/internal/domain"
)

// Понедельник, рабочий день.
var auctionNow = time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

func newPeriodLoki(t *testing.T) *Loki {
	t.Helper()
	p := newTestLoki(t, &fakeLots{}, &fakeAssets{}, nil, &fakeLedger{})
	p.now = func() time.Time { return auctionNow }
	return p
}

func TestAuctionPeriod_FirstAttempt(t *testing.T) {
	p := newPeriodLoki(t)

	tests := []struct {
		name    string
		auction domain.Auction
		want    time.Time
	}{
		{
			name: "template in the future wins",
			auction: domain.Auction{
				TenderAttempts: 1,
				AuctionPeriod:  &domain.Period{StartDate: auctionNow.AddDate(0, 1, 0)},
			},
			want: auctionNow.AddDate(0, 1, 0),
		},
		{
			name: "past template is overridden by the next business day",
			auction: domain.Auction{
				TenderAttempts: 1,
				AuctionPeriod:  &domain.Period{StartDate: auctionNow.AddDate(0, 0, -7)},
			},
			// 2026-09-01, вторник
			want: auctionNow.AddDate(0, 0, 1),
		},
		{
			name: "no template at all",
			auction: domain.Auction{
				TenderAttempts: 1,
			},
			want: auctionNow.AddDate(0, 0, 1),
		},
		{
			name: "accelerator compresses the lead time",
			auction: domain.Auction{
				TenderAttempts:           1,
				ProcurementMethodDetails: "quick, accelerator=1440",
			},
			// 20 дней / 1440 = 20 минут, календарные
			want: auctionNow.Add(20 * time.Minute),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			period, err := p.auctionPeriod(&tt.auction)
			if err != nil {
				t.Fatalf("auction period: %v", err)
			}
			if !period.StartDate.Equal(tt.want) {
				t.Errorf("start date = %v, want %v", period.StartDate, tt.want)
			}
		})
	}
}

func TestAuctionPeriod_NeverEarlierThanTemplate(t *testing.T) {
	p := newPeriodLoki(t)
	template := auctionNow.AddDate(0, 2, 0)
	auction := domain.Auction{
		TenderAttempts:           1,
		ProcurementMethodDetails: "accelerator=1440",
		AuctionPeriod:            &domain.Period{StartDate: template},
	}

	period, err := p.auctionPeriod(&auction)
	if err != nil {
		t.Fatalf("auction period: %v", err)
	}
	if period.StartDate.Before(template) {
		t.Errorf("start date %v is earlier than template %v", period.StartDate, template)
	}
}

func TestAuctionPeriod_LaterAttemptUsesTenderingDuration(t *testing.T) {
	p := newPeriodLoki(t)
	auction := domain.Auction{
		TenderAttempts:    2,
		TenderingDuration: "P25DT12H",
	}

	period, err := p.auctionPeriod(&auction)
	if err != nil {
		t.Fatalf("auction period: %v", err)
	}
	want := auctionNow.Add(25*24*time.Hour + 12*time.Hour)
	if !period.StartDate.Equal(want) {
		t.Errorf("start date = %v, want %v", period.StartDate, want)
	}
}

func TestAuctionPeriod_BadTenderingDuration(t *testing.T) {
	p := newPeriodLoki(t)
	auction := domain.Auction{TenderAttempts: 2, TenderingDuration: "25 days"}

	if _, err := p.auctionPeriod(&auction); err == nil {
		t.Error("expected error for unparseable tendering duration")
	}
}

func TestAccelerator(t *testing.T) {
	tests := []struct {
		details string
		want    int
		ok      bool
	}{
		{"quick, accelerator=1440", 1440, true},
		{"accelerator=2", 2, true},
		{"", 0, false},
		{"quick", 0, false},
		{"accelerator=0", 0, false},
	}
	for _, tt := range tests {
		got, ok := accelerator(tt.details)
		if got != tt.want || ok != tt.ok {
			t.Errorf("accelerator(%q) = (%d, %v), want (%d, %v)", tt.details, got, ok, tt.want, tt.ok)
		}
	}
}

func TestCreateAuction_BuildsDocument(t *testing.T) {
	lot := lokiLot(domain.StatusActiveSalable)
	lot.Title = "Lot title"
	lot.Mode = "test"
	lot.LotCustodian = &domain.Organization{Name: "Custodian"}
	lot.Documents = []domain.Document{{ID: "doc-1", Title: "lot doc"}}
	lot.Auctions = []domain.Auction{{
		ID:                    "lot-auction-1",
		Status:                domain.AuctionScheduled,
		TenderAttempts:        1,
		ProcurementMethodType: "sellout.english",
		Value:                 &domain.Value{Amount: 1000, Currency: "UAH"},
		Documents:             []domain.Document{{ID: "doc-a", Title: "auction doc"}},
	}}

	lots := &fakeLots{token: "transfer-token"}
	auctions := &fakeAuctions{}
	p := newTestLoki(t, lots, &fakeAssets{}, auctions, &fakeLedger{})
	p.now = func() time.Time { return auctionNow }

	created, sourceID, err := p.CreateAuction(context.Background(), lot)
	if err != nil {
		t.Fatalf("create auction: %v", err)
	}
	if created == nil || sourceID != "lot-auction-1" {
		t.Fatalf("created = %v, source = %q", created, sourceID)
	}

	doc := auctions.created[0]
	if doc.MerchandisingObject != lot.ID {
		t.Errorf("merchandisingObject = %q, want lot id", doc.MerchandisingObject)
	}
	if doc.TransferToken != "transfer-token" {
		t.Errorf("transfer token not propagated: %q", doc.TransferToken)
	}
	if doc.Status != domain.AuctionPendingActivation {
		t.Errorf("status = %q, want pending.activation", doc.Status)
	}
	if doc.Value == nil || doc.Value.Amount != 1000 {
		t.Errorf("attempt-indexed value not projected: %+v", doc.Value)
	}
	if doc.ProcuringEntity == nil || doc.ProcuringEntity.Name != "Custodian" {
		t.Errorf("procuringEntity must come from lotCustodian: %+v", doc.ProcuringEntity)
	}

	// Документы: свои у аукциона как есть, документы лота — с пометкой.
	if len(doc.Documents) != 2 {
		t.Fatalf("documents = %v, want 2", doc.Documents)
	}
	if doc.Documents[0].RelatedItem != "" {
		t.Errorf("auction document must not be tagged: %+v", doc.Documents[0])
	}
	if doc.Documents[1].RelatedItem != lot.ID {
		t.Errorf("lot document must be tagged with lot id: %+v", doc.Documents[1])
	}

	// Исходный снапшот не мутирован.
	if lot.Documents[0].RelatedItem != "" {
		t.Error("lot snapshot documents must stay untouched")
	}
}

func TestCreateAuction_NothingToDo(t *testing.T) {
	lot := lokiLot(domain.StatusActiveSalable)
	p := newTestLoki(t, &fakeLots{}, &fakeAssets{}, nil, &fakeLedger{})

	created, sourceID, err := p.CreateAuction(context.Background(), lot)
	if created != nil || sourceID != "" || err != nil {
		t.Errorf("no scheduled auction: got (%v, %q, %v), want (nil, \"\", nil)", created, sourceID, err)
	}
}

func TestCreateAuction_CredentialsFailureIsHard(t *testing.T) {
	lot := lokiLot(domain.StatusActiveSalable)
	lot.Auctions = []domain.Auction{{
		ID:                    "lot-auction-1",
		Status:                domain.AuctionScheduled,
		TenderAttempts:        1,
		ProcurementMethodType: "sellout.english",
	}}
	lots := &fakeLots{credsErr: apiErr(500)}
	auctions := &fakeAuctions{}
	p := newTestLoki(t, lots, &fakeAssets{}, auctions, &fakeLedger{})

	_, _, err := p.CreateAuction(context.Background(), lot)
	if err == nil {
		t.Fatal("credentials failure must be a hard failure")
	}
	if len(auctions.created) != 0 {
		t.Errorf("auction must not be created without a transfer token: %v", auctions.created)
	}
}
