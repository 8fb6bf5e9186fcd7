package processing

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/shaiso/Concierge/internal/clients"
	"github.com/shaiso/Concierge/internal/domain"
	"github.com/shaiso/Concierge/internal/retry"
	"github.com/shaiso/Concierge/internal/telemetry"
)

// acceleratorRe — директива ускорения в procurementMethodDetails
// тестовых стендов: "accelerator=N" сжимает 20-дневный интервал до
// старта в N раз.
var acceleratorRe = regexp.MustCompile(`accelerator=(\d+)`)

const firstAttemptLeadTime = 20 * 24 * time.Hour

// CreateAuction — под-сага создания аукциона для лота в active.salable.
//
// Возвращает созданный аукцион и id исходного подэлемента auctions
// лота. Тройка исходов различается строго:
//   - (nil, "", nil) — делать нечего: нет аукциона в scheduled либо его
//     procurementMethodType вне allow-list; это не отказ;
//   - (nil, "", err) — попытка была и провалилась; вызывающий обязан
//     откатить лот в composing;
//   - (auction, id, nil) — аукцион создан.
//
// У сервиса аукционов нет серверного ключа идемпотентности: повтор
// после таймаута фактически успешного POST может создать дубликат.
// Известный at-least-once риск, здесь не маскируется.
func (p *Loki) CreateAuction(ctx context.Context, lot *domain.Lot) (*domain.CreatedAuction, string, error) {
	source := scheduledAuction(lot)
	if source == nil {
		p.logger.Info("no scheduled auction to create", "lot_id", lot.ID)
		return nil, "", nil
	}
	if _, ok := p.plannedPMTs[source.ProcurementMethodType]; !ok {
		p.logger.Info("procurement method type is not planned, skipping auction",
			"lot_id", lot.ID,
			"auction_id", source.ID,
			"procurement_method_type", source.ProcurementMethodType)
		return nil, "", nil
	}

	doc := buildAuction(lot, source)

	// Одноразовый transfer-токен. Отказ здесь — жёсткий: без токена
	// аукцион не активировать.
	var token string
	err := retry.Do(ctx, p.retry, clients.IsRetryable, func() error {
		var err error
		token, err = p.lots.ExtractCredentials(ctx, lot.ID)
		return err
	})
	if err != nil {
		return nil, "", fmt.Errorf("extract lot credentials: %w", err)
	}
	doc.TransferToken = token

	period, err := p.auctionPeriod(source)
	if err != nil {
		return nil, "", err
	}
	doc.AuctionPeriod = period

	var created *domain.CreatedAuction
	err = retry.Do(ctx, p.retry, clients.IsRetryable, func() error {
		var err error
		created, err = p.auctions.Create(ctx, doc)
		return err
	})
	if err != nil {
		return nil, "", fmt.Errorf("create auction: %w", err)
	}

	telemetry.WithAuctionID(p.logger, created.ID).Info("successfully created auction",
		"lot_id", lot.ID,
		"auction_number", created.AuctionID)
	return created, source.ID, nil
}

// scheduledAuction возвращает первый аукцион лота в статусе scheduled.
func scheduledAuction(lot *domain.Lot) *domain.Auction {
	for i := range lot.Auctions {
		if lot.Auctions[i].Status == domain.AuctionScheduled {
			return &lot.Auctions[i]
		}
	}
	return nil
}

// buildAuction собирает документ аукциона: литеральные поля лота плюс
// поля очередной попытки из подэлемента auctions. Документы лота
// вливаются в документы аукциона с пометкой relatedItem = id лота.
// Результат — свежее значение, структурно независимое от снапшота.
func buildAuction(lot *domain.Lot, source *domain.Auction) *domain.AuctionCreate {
	items := make([]domain.Item, len(lot.Items))
	copy(items, lot.Items)

	documents := make([]domain.Document, 0, len(source.Documents)+len(lot.Documents))
	documents = append(documents, source.Documents...)
	for _, d := range lot.Documents {
		d.RelatedItem = lot.ID
		documents = append(documents, d)
	}

	return &domain.AuctionCreate{
		Title:                 lot.Title,
		Description:           lot.Description,
		Mode:                  lot.Mode,
		MerchandisingObject:   lot.ID,
		TenderAttempts:        source.TenderAttempts,
		ProcuringEntity:       lot.LotCustodian,
		Items:                 items,
		Value:                 source.Value,
		MinimalStep:           source.MinimalStep,
		Guarantee:             source.Guarantee,
		RegistrationFee:       source.RegistrationFee,
		ProcurementMethodType: source.ProcurementMethodType,
		BankAccount:           source.BankAccount,
		AuctionParameters:     source.AuctionParameters,
		Documents:             documents,
		Status:                domain.AuctionPendingActivation,
	}
}

// auctionPeriod вычисляет период создаваемого аукциона.
//
// Первая попытка стартует не раньше шаблонной даты: расчётная дата
// (рабочий день спустя сутки либо ускоренный интервал на тестовом
// стенде) берётся, только когда она позже шаблонной — аукцион никогда
// не сдвигается раньше. Повторные попытки стартуют через
// tenderingDuration от текущего момента.
func (p *Loki) auctionPeriod(source *domain.Auction) (*domain.Period, error) {
	now := p.now()

	if source.TenderAttempts > 1 {
		dur, err := domain.ParseISODuration(source.TenderingDuration)
		if err != nil {
			return nil, fmt.Errorf("parse tendering duration: %w", err)
		}
		return &domain.Period{StartDate: now.Add(dur)}, nil
	}

	var computed time.Time
	if accel, ok := accelerator(source.ProcurementMethodDetails); ok {
		computed = p.cal.Advance(now, firstAttemptLeadTime/time.Duration(accel), false)
	} else {
		computed = p.cal.Advance(now, 24*time.Hour, true)
	}

	start := computed
	if source.AuctionPeriod != nil && source.AuctionPeriod.StartDate.After(computed) {
		start = source.AuctionPeriod.StartDate
	}
	return &domain.Period{StartDate: start}, nil
}

// accelerator извлекает множитель ускорения из procurementMethodDetails.
func accelerator(details string) (int, bool) {
	m := acceleratorRe.FindStringSubmatch(details)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
