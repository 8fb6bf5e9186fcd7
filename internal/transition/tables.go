package transition

import "github.com/shaiso/Concierge/internal/domain"

// BasicHandledStatuses — статусы лотов, обрабатываемые вариантом Basic.
// Лот в любом другом статусе — гарантированный no-op.
var BasicHandledStatuses = []domain.Status{
	domain.StatusVerification,
	domain.StatusRecomposed,
	domain.StatusPendingDissolution,
	domain.StatusPendingSold,
	domain.StatusPendingDeleted,
}

// Basic — таблица переходов варианта Basic.
var Basic = Table{
	Lot: map[domain.Status]Change{
		domain.StatusVerification: {
			Finish: domain.StatusActiveSalable,
			Fail:   domain.StatusPending,
		},
		domain.StatusRecomposed: {
			Finish: domain.StatusPending,
		},
		domain.StatusPendingDissolution: {
			Finish: domain.StatusDissolved,
		},
		domain.StatusPendingSold: {
			Finish: domain.StatusSold,
		},
		domain.StatusPendingDeleted: {
			Finish: domain.StatusDeleted,
		},
	},
	Asset: map[domain.Status]Change{
		domain.StatusVerification: {
			Pre:    domain.StatusVerification,
			Finish: domain.StatusActive,
			Fail:   domain.StatusPending,
		},
		domain.StatusRecomposed: {
			Finish: domain.StatusPending,
		},
		domain.StatusPendingDissolution: {
			Finish: domain.StatusPending,
		},
		domain.StatusPendingSold: {
			Finish: domain.StatusComplete,
		},
		domain.StatusPendingDeleted: {
			Finish: domain.StatusPending,
		},
	},
}

// LokiHandledStatuses — статусы лотов, обрабатываемые вариантом Loki.
var LokiHandledStatuses = []domain.Status{
	domain.StatusVerification,
	domain.StatusPendingDissolution,
	domain.StatusPendingSold,
	domain.StatusPendingDeleted,
	domain.StatusActiveSalable,
}

// Loki — таблица переходов варианта Loki. В отличие от Basic,
// verification завершается в pending (лот ещё компонуется), а
// active.salable обслуживается под-сагой создания аукциона; записи fail
// для active.salable задают статусы отката при её неуспехе.
var Loki = Table{
	Lot: map[domain.Status]Change{
		domain.StatusVerification: {
			Finish: domain.StatusPending,
			Fail:   domain.StatusInvalid,
		},
		domain.StatusActiveSalable: {
			Fail: domain.StatusComposing,
		},
		domain.StatusPendingDissolution: {
			Finish: domain.StatusDissolved,
		},
		domain.StatusPendingSold: {
			Finish: domain.StatusSold,
		},
		domain.StatusPendingDeleted: {
			Finish: domain.StatusDeleted,
		},
	},
	Asset: map[domain.Status]Change{
		domain.StatusVerification: {
			Pre:    domain.StatusVerification,
			Finish: domain.StatusActive,
			Fail:   domain.StatusPending,
		},
		domain.StatusActiveSalable: {
			Fail: domain.StatusPending,
		},
		domain.StatusPendingDissolution: {
			Finish: domain.StatusPending,
		},
		domain.StatusPendingSold: {
			Finish: domain.StatusComplete,
		},
		domain.StatusPendingDeleted: {
			Finish: domain.StatusPending,
		},
	},
}
