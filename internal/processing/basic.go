package processing

import (
	"context"

	"github.com/shaiso/Concierge/internal/domain"
	"github.com/shaiso/Concierge/internal/retry"
	"github.com/shaiso/Concierge/internal/transition"
)

// BasicConfig — конфигурация процессора Basic.
type BasicConfig struct {
	// AssetTypes — допустимые типы активов.
	AssetTypes []string

	// Retry — политика повторов удалённых вызовов.
	Retry retry.Policy
}

// Basic — процессор лотов с прямыми ссылками на активы.
//
// Verification проходит сагой захвата: активы переводятся в
// промежуточный статус со ссылкой на лот, затем в целевой, затем лот
// завершает переход. Любой частичный отказ компенсируется возвратом
// активов в pending; неудавшаяся компенсация фиксируется в ledger.
type Basic struct {
	base
}

// NewBasic конструирует процессор Basic. Таблица переходов проверяется
// здесь же: дырявая таблица валит процесс на старте, а не паникой в
// середине саги.
func NewBasic(deps Deps, cfg BasicConfig) (*Basic, error) {
	b, err := newBase(deps, cfg.Retry, transition.Basic, transition.BasicHandledStatuses, cfg.AssetTypes)
	if err != nil {
		return nil, err
	}
	return &Basic{base: b}, nil
}

// ProcessLots выполняет один раунд саги для лота Basic.
func (p *Basic) ProcessLots(ctx context.Context, lot *domain.Lot) {
	if !p.checkLot(ctx, lot) {
		return
	}

	switch lot.Status {
	case domain.StatusVerification:
		p.claim(ctx, lot)
	case domain.StatusRecomposed,
		domain.StatusPendingDissolution,
		domain.StatusPendingSold,
		domain.StatusPendingDeleted:
		lotTarget := p.table.MustNext(transition.ResourceLot, lot.Status, transition.ActionFinish)
		assetTarget := p.table.MustNext(transition.ResourceAsset, lot.Status, transition.ActionFinish)
		if p.processLotAndAssets(ctx, lot, lotTarget, assetTarget) {
			p.markProcessed(ctx, lot)
		}
	}
}

// claim — сага захвата активов для лота в verification.
func (p *Basic) claim(ctx context.Context, lot *domain.Lot) {
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

	// Фаза A: промежуточный статус + ссылка на лот. Компенсация
	// откатывает только успевшую часть.
	ok, succeeded := p.patchAssets(ctx, lot, preTarget, lot.ID)
	if !ok {
		if ok, _ := p.patchAssets(ctx, subsetLot(lot, succeeded), failTarget, ""); !ok {
			p.logBroken(ctx, lot, "patching assets to "+preTarget.String())
		}
		return
	}

	// Фаза B: целевой статус активов. Компенсация откатывает все активы
	// лота: часть из них уже в целевом статусе, часть — в промежуточном.
	finishTarget := p.table.MustNext(transition.ResourceAsset, lot.Status, transition.ActionFinish)
	if ok, _ := p.patchAssets(ctx, lot, finishTarget, lot.ID); !ok {
		if ok, _ := p.patchAssets(ctx, lot, failTarget, ""); !ok {
			p.logBroken(ctx, lot, "patching assets to "+finishTarget.String())
		}
		return
	}

	// Завершение: переход самого лота. Активы уже захвачены, поэтому
	// отказ здесь — поломка саги независимо от исхода отката.
	lotFinish := p.table.MustNext(transition.ResourceLot, lot.Status, transition.ActionFinish)
	if !p.patchLot(ctx, lot, lotFinish, nil) {
		p.patchAssets(ctx, lot, failTarget, "")
		p.logBroken(ctx, lot, "patching lot to "+lotFinish.String())
		return
	}
	p.markProcessed(ctx, lot)
}
