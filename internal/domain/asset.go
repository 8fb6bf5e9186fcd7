package domain

// Asset — актив, который может быть включён не более чем в один лот
// одновременно. Инвариант единственного владельца обеспечивает сервис
// активов; concierge дополнительно проверяет обратную ссылку при
// checkAssets.
type Asset struct {
	// ID — идентификатор актива в сервисе активов.
	ID string `json:"id"`

	// Status — текущий статус актива.
	Status Status `json:"status"`

	// AssetType — тип актива. Допустимые типы для каждого варианта лота
	// задаются конфигурацией (группы алиасов).
	AssetType string `json:"assetType"`

	// Mode — режим актива; Loki требует совпадения с режимом лота.
	Mode string `json:"mode,omitempty"`

	// RelatedLot — прямая обратная ссылка на владеющий лот (Basic).
	RelatedLot string `json:"relatedLot,omitempty"`

	// RelatedProcesses — типизированные связи актива; запись типа "lot"
	// служит обратной ссылкой на владеющий лот (Loki).
	RelatedProcesses []RelatedProcess `json:"relatedProcesses,omitempty"`

	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`

	AssetHolder    *Organization `json:"assetHolder,omitempty"`
	AssetCustodian *Organization `json:"assetCustodian,omitempty"`

	Items     []Item     `json:"items,omitempty"`
	Decisions []Decision `json:"decisions,omitempty"`
	Documents []Document `json:"documents,omitempty"`

	// AssetID — человекочитаемый номер актива. Используется как внешний
	// идентификатор при связывании relatedProcesses.
	AssetID string `json:"assetID,omitempty"`
}

// RelatedLotID возвращает идентификатор владеющего лота: прямое поле
// relatedLot имеет приоритет, иначе ищется запись relatedProcesses типа
// "lot". Пустая строка означает, что актив никем не занят.
func (a *Asset) RelatedLotID() string {
	if a.RelatedLot != "" {
		return a.RelatedLot
	}
	for _, rp := range a.RelatedProcesses {
		if rp.Type == RelatedProcessLot {
			return rp.RelatedProcessID
		}
	}
	return ""
}
