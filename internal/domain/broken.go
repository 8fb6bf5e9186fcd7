package domain

import "time"

// BrokenLotRecord — запись о лоте, компенсация которого не удалась.
//
// Запись создаётся ledger'ом при фатальном сбое саги и требует ручного
// разбора оператором. Resolved переводится в true только когда worker
// видит тот же лот с другой ревизией — удалённое состояние изменилось
// после поломки, и повторная обработка безопасна.
type BrokenLotRecord struct {
	// Lot — снапшот лота на момент поломки.
	Lot Lot `json:"lot"`

	// Message — какой именно шаг саги не удалось откатить,
	// например "patching assets to active".
	Message string `json:"message"`

	// Rev — ревизия лота, при которой произошла поломка. Пока ревизия
	// из feed совпадает с сохранённой, лот пропускается.
	Rev string `json:"rev"`

	// Resolved — запись разобрана (автоматически по смене ревизии или
	// оператором через cli).
	Resolved bool `json:"resolved"`

	// BrokenAt и ResolvedAt — времена создания и разрешения записи.
	BrokenAt   time.Time  `json:"brokenAt"`
	ResolvedAt *time.Time `json:"resolvedAt,omitempty"`
}
