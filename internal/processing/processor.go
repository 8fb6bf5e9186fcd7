package processing

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shaiso/Concierge/internal/clients"
	"github.com/shaiso/Concierge/internal/domain"
	"github.com/shaiso/Concierge/internal/mapping"
	"github.com/shaiso/Concierge/internal/retry"
	"github.com/shaiso/Concierge/internal/telemetry"
	"github.com/shaiso/Concierge/internal/transition"
)

// Processor — обработчик лотов одного варианта. Worker выбирает
// процессор по алиасу lotType из конфигурации.
type Processor interface {
	// ProcessLots выполняет один раунд саги для снапшота лота.
	// Ошибки не возвращаются: любой исход либо залогирован и безопасен
	// для повтора при следующей доставке из feed, либо зафиксирован в
	// ledger как поломка.
	ProcessLots(ctx context.Context, lot *domain.Lot)
}

// LotClient — потребительский срез клиента сервиса лотов.
type LotClient interface {
	Get(ctx context.Context, lotID string) (*domain.Lot, error)
	Patch(ctx context.Context, lotID string, patch clients.LotPatch) error
	PatchAuction(ctx context.Context, lotID, auctionID string, patch domain.AuctionPatch) error
	PatchRelatedProcess(ctx context.Context, lotID, rpID string, patch clients.RelatedProcessPatch) error
	ExtractCredentials(ctx context.Context, lotID string) (string, error)
}

// AssetClient — потребительский срез клиента сервиса активов.
type AssetClient interface {
	Get(ctx context.Context, assetID string) (*domain.Asset, error)
	Patch(ctx context.Context, assetID string, patch clients.AssetPatch) error
	CreateRelatedProcess(ctx context.Context, assetID string, rp domain.RelatedProcess) (*domain.RelatedProcess, error)
	DeleteRelatedProcess(ctx context.Context, assetID, rpID string) error
}

// AuctionClient — потребительский срез клиента сервиса аукционов.
type AuctionClient interface {
	Create(ctx context.Context, auction *domain.AuctionCreate) (*domain.CreatedAuction, error)
}

// Ledger — срез ledger'а, нужный процессору: только фиксация поломки.
type Ledger interface {
	LogBroken(ctx context.Context, lot domain.Lot, message string) error
}

// Deps — внешние зависимости процессора.
type Deps struct {
	Lots   LotClient
	Assets AssetClient
	Ledger Ledger
	Cache  mapping.Mapping
	Logger *slog.Logger
}

func (d Deps) validate() error {
	if d.Lots == nil || d.Assets == nil || d.Ledger == nil || d.Cache == nil {
		return fmt.Errorf("%w: missing dependency", ErrConfiguration)
	}
	return nil
}

// base — общая часть процессоров: проверки, PATCH-хелперы, ledger.
type base struct {
	lots   LotClient
	assets AssetClient
	ledger Ledger
	cache  mapping.Mapping
	retry  retry.Policy
	table  transition.Table

	handled    map[domain.Status]struct{}
	assetTypes map[string]struct{}

	// requireModeMatch — требовать совпадения mode лота и актива при
	// checkAssets (Loki).
	requireModeMatch bool

	logger *slog.Logger
}

func newBase(deps Deps, policy retry.Policy, table transition.Table, handled []domain.Status, assetTypes []string) (base, error) {
	if err := deps.validate(); err != nil {
		return base{}, err
	}
	if len(assetTypes) == 0 {
		return base{}, fmt.Errorf("%w: empty asset type list", ErrConfiguration)
	}
	if err := table.Validate(handled); err != nil {
		return base{}, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}

	handledSet := make(map[domain.Status]struct{}, len(handled))
	for _, s := range handled {
		handledSet[s] = struct{}{}
	}
	typeSet := make(map[string]struct{}, len(assetTypes))
	for _, t := range assetTypes {
		typeSet[t] = struct{}{}
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return base{
		lots:       deps.Lots,
		assets:     deps.Assets,
		ledger:     deps.Ledger,
		cache:      deps.Cache,
		retry:      policy,
		table:      table,
		handled:    handledSet,
		assetTypes: typeSet,
		logger:     logger,
	}, nil
}

// checkLot перечитывает лот из источника истины и решает, можно ли
// обрабатывать снапшот. Удалённое состояние не мутирует никогда.
//
// false означает «пропустить этот раунд»: лот не найден или недоступен,
// его статус уже изменился (снапшот устарел), либо статус вне
// обрабатываемого набора.
func (b *base) checkLot(ctx context.Context, lot *domain.Lot) bool {
	var fresh *domain.Lot
	err := retry.Do(ctx, b.retry, clients.IsRetryable, func() error {
		var err error
		fresh, err = b.lots.Get(ctx, lot.ID)
		return err
	})
	if err != nil {
		b.logger.Info("failed to get lot, skipping",
			"lot_id", lot.ID, "error", clients.ErrorMessage(err))
		return false
	}
	if fresh.Status != lot.Status {
		b.logger.Warn("lot status already changed",
			"lot_id", lot.ID,
			"snapshot_status", lot.Status,
			"actual_status", fresh.Status,
		)
		return false
	}
	if _, ok := b.handled[lot.Status]; !ok {
		b.logger.Warn("lot status is not handled, skipping",
			"lot_id", lot.ID, "status", lot.Status)
		return false
	}
	return true
}

// checkAssets проверяет пригодность активов лота к захвату.
//
// Возвращаемая ошибка — «исход неизвестен»: не-404 отказ выборки.
// Вызывающий прерывает раунд без единой мутации и полагается на
// следующую доставку из feed. false без ошибки — обычная бизнес-ветка:
// актив не найден, не того типа, не в ожидаемом статусе, занят другим
// лотом либо (Loki) в другом режиме.
func (b *base) checkAssets(ctx context.Context, lot *domain.Lot, expected domain.Status) (bool, error) {
	lotLogger := telemetry.WithLotID(b.logger, lot.ID)
	for _, assetID := range lot.AssetIDs() {
		logger := telemetry.WithAssetID(lotLogger, assetID)

		var asset *domain.Asset
		err := retry.Do(ctx, b.retry, clients.IsRetryable, func() error {
			var err error
			asset, err = b.assets.Get(ctx, assetID)
			return err
		})
		if clients.IsNotFound(err) {
			logger.Warn("asset not found")
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("get asset %s: %w", assetID, err)
		}

		if _, ok := b.assetTypes[asset.AssetType]; !ok {
			logger.Warn("asset type is not allowed for this lot type",
				"asset_type", asset.AssetType)
			return false, nil
		}
		if b.requireModeMatch && asset.Mode != lot.Mode {
			logger.Warn("asset mode differs from lot mode",
				"asset_mode", asset.Mode, "lot_mode", lot.Mode)
			return false, nil
		}
		if related := asset.RelatedLotID(); related != "" && related != lot.ID {
			logger.Warn("asset is already claimed by another lot",
				"related_lot", related)
			return false, nil
		}
		if asset.Status != expected {
			logger.Warn("asset status differs from expected",
				"status", asset.Status, "expected", expected)
			return false, nil
		}
	}
	return true, nil
}

// patchAssets переводит активы лота в status, проставляя relatedLot
// (пустая строка очищает связь). Отказ отдельного актива логируется и
// не прерывает обход: возвращается флаг полного успеха и список
// успешных id в исходном порядке.
func (b *base) patchAssets(ctx context.Context, lot *domain.Lot, status domain.Status, relatedLot string) (bool, []string) {
	ids := lot.AssetIDs()
	patch := clients.AssetPatch{Status: status, RelatedLot: &relatedLot}

	lotLogger := telemetry.WithLotID(b.logger, lot.ID)
	succeeded := make([]string, 0, len(ids))
	for _, assetID := range ids {
		logger := telemetry.WithAssetID(lotLogger, assetID)
		err := retry.Do(ctx, b.retry, clients.IsRetryable, func() error {
			return b.assets.Patch(ctx, assetID, patch)
		})
		if err != nil {
			logger.Error("failed to patch asset",
				"status", status, "error", clients.ErrorMessage(err))
			continue
		}
		logger.Info("successfully patched asset", "status", status)
		succeeded = append(succeeded, assetID)
	}
	return len(succeeded) == len(ids), succeeded
}

// patchLot переводит лот в status одним PATCH. extra задаёт
// дополнительные поля (проекция актива при завершении verification).
func (b *base) patchLot(ctx context.Context, lot *domain.Lot, status domain.Status, extra *clients.LotPatch) bool {
	patch := clients.LotPatch{}
	if extra != nil {
		patch = *extra
	}
	patch.Status = status

	err := retry.Do(ctx, b.retry, clients.IsRetryable, func() error {
		return b.lots.Patch(ctx, lot.ID, patch)
	})
	if err != nil {
		b.logger.Error("failed to patch lot",
			"lot_id", lot.ID, "status", status,
			"error", clients.ErrorMessage(err))
		return false
	}
	b.logger.Info("successfully patched lot", "lot_id", lot.ID, "status", status)
	return true
}

// processLotAndAssets — простые терминальные переходы: активы
// переводятся best-effort (частичный отказ — только предупреждение,
// без компенсации), лот патчится безусловно. Возвращает исход PATCH
// лота.
func (b *base) processLotAndAssets(ctx context.Context, lot *domain.Lot, lotStatus, assetStatus domain.Status) bool {
	ok, succeeded := b.patchAssets(ctx, lot, assetStatus, "")
	if !ok {
		b.logger.Warn("not all assets were patched",
			"lot_id", lot.ID,
			"status", assetStatus,
			"failed_assets", failedIDs(lot.AssetIDs(), succeeded),
		)
	}
	return b.patchLot(ctx, lot, lotStatus, nil)
}

// markProcessed помечает лот в advisory-кэше. Отказ кэша — не отказ
// обработки: потерянная метка стоит лишь лишнего no-op раунда.
func (b *base) markProcessed(ctx context.Context, lot *domain.Lot) {
	if err := b.cache.Put(ctx, lot.ID, "true"); err != nil {
		b.logger.Warn("failed to mark lot in mapping", "lot_id", lot.ID, "error", err)
	}
}

// logBroken фиксирует саго-фатальный отказ: компенсация не удалась,
// лот требует ручного разбора.
func (b *base) logBroken(ctx context.Context, lot *domain.Lot, message string) {
	if err := b.ledger.LogBroken(ctx, *lot, message); err != nil {
		// ledger недоступен: поломка остаётся только в логах
		b.logger.Error("failed to log broken lot",
			"lot_id", lot.ID, "message", message, "error", err)
	}
}

// subsetLot возвращает копию лота, у которой активы сужены до ids.
// Используется компенсацией, чтобы откатить только успевшую часть.
func subsetLot(lot *domain.Lot, ids []string) *domain.Lot {
	sub := *lot
	sub.Assets = ids
	sub.RelatedProcesses = nil
	return &sub
}

func failedIDs(all, succeeded []string) []string {
	ok := make(map[string]struct{}, len(succeeded))
	for _, id := range succeeded {
		ok[id] = struct{}{}
	}
	var failed []string
	for _, id := range all {
		if _, found := ok[id]; !found {
			failed = append(failed, id)
		}
	}
	return failed
}
