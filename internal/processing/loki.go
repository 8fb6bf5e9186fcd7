package processing

import (
	"context"
	"fmt"
	"time"

	"github.com/shaiso/Concierge/internal/calendar"
	"github.com/shaiso/Concierge/internal/clients"
	"github.com/shaiso/Concierge/internal/domain"
	"github.com/shaiso/Concierge/internal/retry"
	"github.com/shaiso/Concierge/internal/telemetry"
	"github.com/shaiso/Concierge/internal/transition"
)

// LokiConfig — конфигурация процессора Loki.
type LokiConfig struct {
	// AssetTypes — допустимые типы активов.
	AssetTypes []string

	// PlannedPMTs — allow-list procurementMethodType, для которых
	// создаются аукционы.
	PlannedPMTs []string

	// Retry — политика повторов удалённых вызовов.
	Retry retry.Policy
}

// Loki — процессор лотов со связями через relatedProcesses.
//
// Поверх саги захвата Basic добавляет двустороннее связывание
// relatedProcesses (фаза C), проекцию полей представительного актива на
// лот при завершении verification и под-сагу создания аукциона для
// статуса active.salable.
type Loki struct {
	base

	auctions    AuctionClient
	cal         *calendar.Calendar
	plannedPMTs map[string]struct{}

	// now подменяется в тестах расчёта дат.
	now func() time.Time
}

// NewLoki конструирует процессор Loki.
func NewLoki(deps Deps, auctions AuctionClient, cal *calendar.Calendar, cfg LokiConfig) (*Loki, error) {
	b, err := newBase(deps, cfg.Retry, transition.Loki, transition.LokiHandledStatuses, cfg.AssetTypes)
	if err != nil {
		return nil, err
	}
	if auctions == nil {
		return nil, fmt.Errorf("%w: missing auction client", ErrConfiguration)
	}
	if cal == nil {
		return nil, fmt.Errorf("%w: missing calendar", ErrConfiguration)
	}
	if len(cfg.PlannedPMTs) == 0 {
		return nil, fmt.Errorf("%w: empty procurement method type list", ErrConfiguration)
	}
	b.requireModeMatch = true

	pmts := make(map[string]struct{}, len(cfg.PlannedPMTs))
	for _, pmt := range cfg.PlannedPMTs {
		pmts[pmt] = struct{}{}
	}
	return &Loki{
		base:        b,
		auctions:    auctions,
		cal:         cal,
		plannedPMTs: pmts,
		now:         time.Now,
	}, nil
}

// ProcessLots выполняет один раунд саги для лота Loki.
func (p *Loki) ProcessLots(ctx context.Context, lot *domain.Lot) {
	if !p.checkLot(ctx, lot) {
		return
	}

	switch lot.Status {
	case domain.StatusVerification:
		p.claim(ctx, lot)
	case domain.StatusActiveSalable:
		p.processSalable(ctx, lot)
	case domain.StatusPendingDissolution,
		domain.StatusPendingSold,
		domain.StatusPendingDeleted:
		lotTarget := p.table.MustNext(transition.ResourceLot, lot.Status, transition.ActionFinish)
		assetTarget := p.table.MustNext(transition.ResourceAsset, lot.Status, transition.ActionFinish)
		if p.processLotAndAssets(ctx, lot, lotTarget, assetTarget) {
			p.markProcessed(ctx, lot)
		}
	}
}

// claim — сага захвата активов для лота Loki в verification: фазы A и B
// как у Basic, затем двустороннее связывание relatedProcesses и
// завершение с проекцией полей актива.
func (p *Loki) claim(ctx context.Context, lot *domain.Lot) {
	available, err := p.checkAssets(ctx, lot, domain.StatusPending)
	if err != nil {
		p.logger.Info("due to fail in getting assets, lot is skipped",
			"lot_id", lot.ID, "error", err)
		return
	}
	if !available {
		p.patchLot(ctx, lot,
			p.table.MustNext(transition.ResourceLot, lot.Status, transition.ActionFail), nil)
		return
	}

	preTarget := p.table.MustNext(transition.ResourceAsset, lot.Status, transition.ActionPre)
	failTarget := p.table.MustNext(transition.ResourceAsset, lot.Status, transition.ActionFail)

	// Фаза A.
	ok, succeeded := p.patchAssets(ctx, lot, preTarget, lot.ID)
	if !ok {
		if ok, _ := p.patchAssets(ctx, subsetLot(lot, succeeded), failTarget, ""); !ok {
			p.logBroken(ctx, lot, "patching assets to "+preTarget.String())
		}
		return
	}

	// Фаза B.
	finishTarget := p.table.MustNext(transition.ResourceAsset, lot.Status, transition.ActionFinish)
	if ok, _ := p.patchAssets(ctx, lot, finishTarget, lot.ID); !ok {
		if ok, _ := p.patchAssets(ctx, lot, failTarget, ""); !ok {
			p.logBroken(ctx, lot, "patching assets to "+finishTarget.String())
		}
		return
	}

	// Фаза C: двустороннее связывание. Отказ здесь — восстановимое
	// бизнес-отклонение: связи чистятся, активы возвращаются в pending,
	// ledger не трогается — следующая доставка попробует снова.
	links, err := p.linkRelatedProcesses(ctx, lot)
	if err != nil {
		p.logger.Warn("failed to link related processes, reverting",
			"lot_id", lot.ID, "error", err)
		p.cleanupLinks(ctx, lot, links)
		p.patchAssets(ctx, lot, failTarget, "")
		return
	}

	// Завершение: проекция представительного актива и переход лота.
	lotFinish := p.table.MustNext(transition.ResourceLot, lot.Status, transition.ActionFinish)
	extra, err := p.assetProjection(ctx, lot)
	if err == nil && p.patchLot(ctx, lot, lotFinish, extra) {
		p.markProcessed(ctx, lot)
		return
	}
	if err != nil {
		p.logger.Error("failed to build asset projection",
			"lot_id", lot.ID, "error", clients.ErrorMessage(err))
	}
	p.cleanupLinks(ctx, lot, links)
	p.patchAssets(ctx, lot, failTarget, "")
	p.patchLot(ctx, lot, domain.StatusComposing, nil)
	p.logBroken(ctx, lot, "patching lot to "+lotFinish.String())
}

// link — установленная связь лот↔актив: запись на стороне лота и
// созданная обратная запись на стороне актива.
type link struct {
	lotRPID     string
	assetID     string
	assetRPID   string
	backCreated bool
}

// linkRelatedProcesses выполняет фазу C: проставляет внешние
// идентификаторы активов в записях relatedProcesses лота и создаёт на
// каждом активе обратную запись типа "lot". Возвращает установленные
// связи и для частичного отказа — их же, для очистки.
func (p *Loki) linkRelatedProcesses(ctx context.Context, lot *domain.Lot) ([]link, error) {
	var links []link
	for _, rp := range lot.AssetRelatedProcesses() {
		var asset *domain.Asset
		err := retry.Do(ctx, p.retry, clients.IsRetryable, func() error {
			var err error
			asset, err = p.assets.Get(ctx, rp.RelatedProcessID)
			return err
		})
		if err != nil {
			return links, fmt.Errorf("get asset %s: %w", rp.RelatedProcessID, err)
		}

		err = retry.Do(ctx, p.retry, clients.IsRetryable, func() error {
			return p.lots.PatchRelatedProcess(ctx, lot.ID, rp.ID,
				clients.RelatedProcessPatch{Identifier: asset.AssetID})
		})
		if err != nil {
			return links, fmt.Errorf("patch lot related process %s: %w", rp.ID, err)
		}
		links = append(links, link{lotRPID: rp.ID, assetID: asset.ID})

		var created *domain.RelatedProcess
		err = retry.Do(ctx, p.retry, clients.IsRetryable, func() error {
			var err error
			created, err = p.assets.CreateRelatedProcess(ctx, asset.ID, domain.RelatedProcess{
				Type:             domain.RelatedProcessLot,
				RelatedProcessID: lot.ID,
				Identifier:       lot.LotID,
			})
			return err
		})
		if err != nil {
			return links, fmt.Errorf("create asset back link on %s: %w", asset.ID, err)
		}
		links[len(links)-1].assetRPID = created.ID
		links[len(links)-1].backCreated = true
	}
	return links, nil
}

// cleanupLinks откатывает фазу C: удаляет обратные записи на активах и
// очищает идентификаторы в записях лота. Best-effort — отказ очистки
// только логируется, следующий раунд связывания перезапишет остатки.
func (p *Loki) cleanupLinks(ctx context.Context, lot *domain.Lot, links []link) {
	for _, l := range links {
		if l.backCreated {
			err := retry.Do(ctx, p.retry, clients.IsRetryable, func() error {
				return p.assets.DeleteRelatedProcess(ctx, l.assetID, l.assetRPID)
			})
			if err != nil {
				p.logger.Error("failed to delete asset back link",
					"lot_id", lot.ID, "asset_id", l.assetID, "error", clients.ErrorMessage(err))
			}
		}
		err := retry.Do(ctx, p.retry, clients.IsRetryable, func() error {
			return p.lots.PatchRelatedProcess(ctx, lot.ID, l.lotRPID,
				clients.RelatedProcessPatch{Identifier: ""})
		})
		if err != nil {
			p.logger.Error("failed to clear lot related process identifier",
				"lot_id", lot.ID, "related_process_id", l.lotRPID, "error", clients.ErrorMessage(err))
		}
	}
}

// assetProjection строит патч завершения verification: фиксированная
// проекция полей представительного (первого) актива плюс слияние его
// решений с решениями лота. Каждое решение актива помечается
// relatedItem с id актива. Все срезы — свежие копии, структурно
// независимые от снапшота.
func (p *Loki) assetProjection(ctx context.Context, lot *domain.Lot) (*clients.LotPatch, error) {
	ids := lot.AssetIDs()
	if len(ids) == 0 {
		return nil, fmt.Errorf("lot %s has no assets", lot.ID)
	}

	var asset *domain.Asset
	err := retry.Do(ctx, p.retry, clients.IsRetryable, func() error {
		var err error
		asset, err = p.assets.Get(ctx, ids[0])
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get representative asset %s: %w", ids[0], err)
	}

	decisions := make([]domain.Decision, 0, len(lot.Decisions)+len(asset.Decisions))
	decisions = append(decisions, lot.Decisions...)
	for _, d := range asset.Decisions {
		d.RelatedItem = asset.ID
		decisions = append(decisions, d)
	}

	items := make([]domain.Item, len(asset.Items))
	copy(items, asset.Items)

	return &clients.LotPatch{
		Title:        asset.Title,
		Description:  asset.Description,
		LotHolder:    asset.AssetHolder,
		LotCustodian: asset.AssetCustodian,
		Items:        items,
		Decisions:    decisions,
	}, nil
}

// processSalable обслуживает лот в active.salable: проверяет активы и
// последовательность аукционов, создаёт очередной аукцион и проставляет
// его идентификаторы на лоте.
func (p *Loki) processSalable(ctx context.Context, lot *domain.Lot) {
	available, err := p.checkAssets(ctx, lot, domain.StatusActive)
	if err != nil {
		p.logger.Info("due to fail in getting assets, lot is skipped",
			"lot_id", lot.ID, "error", err)
		return
	}
	if !available {
		p.logger.Warn("lot assets are not active, skipping auction creation",
			"lot_id", lot.ID)
		return
	}
	if !p.checkAuctionSequence(lot) {
		return
	}

	created, sourceID, err := p.CreateAuction(ctx, lot)
	if err != nil {
		// Явный отказ под-саги (в отличие от «нечего делать») —
		// лот возвращается в composing, активы в pending.
		p.logger.Error("failed to create auction, reverting lot",
			"lot_id", lot.ID, "error", clients.ErrorMessage(err))
		lotFail := p.table.MustNext(transition.ResourceLot, lot.Status, transition.ActionFail)
		assetFail := p.table.MustNext(transition.ResourceAsset, lot.Status, transition.ActionFail)
		p.processLotAndAssets(ctx, lot, lotFail, assetFail)
		return
	}
	if created == nil {
		return
	}

	patch := domain.AuctionPatch{
		AuctionID:        created.AuctionID,
		Status:           created.Status,
		RelatedProcessID: created.ID,
	}
	err = retry.Do(ctx, p.retry, clients.IsRetryable, func() error {
		return p.lots.PatchAuction(ctx, lot.ID, sourceID, patch)
	})
	if err != nil {
		// Аукцион создан, но лот не узнал его идентификаторов: не
		// поломка — повтор раунда допатчит, создание заново не
		// начнётся, пока аукцион числится scheduled у лота.
		telemetry.WithAuctionID(p.logger, sourceID).Error("failed to patch lot auction",
			"lot_id", lot.ID, "error", clients.ErrorMessage(err))
		return
	}
	p.markProcessed(ctx, lot)
}

// handledAuctionStatuses — статусы аукционов, при которых лот пригоден
// к созданию очередного аукциона. Любой другой статус в
// последовательности (активный, отменённый, ожидающий активации)
// означает, что последовательность ещё не устоялась.
var handledAuctionStatuses = map[domain.AuctionStatus]struct{}{
	domain.AuctionScheduled:    {},
	domain.AuctionUnsuccessful: {},
}

// checkAuctionSequence проверяет инвариант последовательности: все
// аукционы лота в обрабатываемых статусах, и у аукциона в статусе
// scheduled непосредственный предшественник (если есть) unsuccessful.
func (p *Loki) checkAuctionSequence(lot *domain.Lot) bool {
	for _, auction := range lot.Auctions {
		if _, ok := handledAuctionStatuses[auction.Status]; !ok {
			p.logger.Warn("lot contains auction in unhandled status",
				"lot_id", lot.ID,
				"auction_id", auction.ID,
				"status", auction.Status)
			return false
		}
	}
	for i, auction := range lot.Auctions {
		if auction.Status != domain.AuctionScheduled {
			continue
		}
		if i == 0 {
			return true
		}
		prev := lot.Auctions[i-1]
		if prev.Status != domain.AuctionUnsuccessful {
			p.logger.Warn("previous auction is not unsuccessful",
				"lot_id", lot.ID,
				"auction_id", auction.ID,
				"previous_status", prev.Status)
			return false
		}
		return true
	}
	p.logger.Warn("lot does not contain auctions in scheduled status", "lot_id", lot.ID)
	return false
}
