package domain

// Status — статус лота или актива в реестре.
//
// Жизненный цикл лота (вариант Basic):
//
//	verification → active.salable → pending.sold → sold
//	             ↘ pending                       ↘ pending.dissolution → dissolved
//
// Вариант Loki добавляет composing/invalid и выносит создание аукционов
// в отдельный статус active.salable (см. пакет processing).
type Status string

// Статусы лотов.
const (
	StatusVerification       Status = "verification"
	StatusPending            Status = "pending"
	StatusComposing          Status = "composing"
	StatusInvalid            Status = "invalid"
	StatusActiveSalable      Status = "active.salable"
	StatusActiveAuction      Status = "active.auction"
	StatusRecomposed         Status = "recomposed"
	StatusPendingDissolution Status = "pending.dissolution"
	StatusPendingSold        Status = "pending.sold"
	StatusPendingDeleted     Status = "pending.deleted"
	StatusDissolved          Status = "dissolved"
	StatusSold               Status = "sold"
	StatusDeleted            Status = "deleted"
)

// Статусы активов.
const (
	StatusActive   Status = "active"
	StatusComplete Status = "complete"
)

// StatusNone — пустой статус: переход не определён.
const StatusNone Status = ""

func (s Status) String() string {
	return string(s)
}

// AuctionStatus — статус аукциона в последовательности аукционов лота.
type AuctionStatus string

const (
	AuctionScheduled         AuctionStatus = "scheduled"
	AuctionUnsuccessful      AuctionStatus = "unsuccessful"
	AuctionCancelled         AuctionStatus = "cancelled"
	AuctionActive            AuctionStatus = "active"
	AuctionPendingActivation AuctionStatus = "pending.activation"
)

// LotType — тип лота, определяющий таблицу переходов и вариант процессора.
type LotType string

const (
	LotTypeBasic LotType = "basic"
	LotTypeLoki  LotType = "loki"
)
