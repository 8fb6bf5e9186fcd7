package domain

// Lot — основной бизнес-объект, статус которого двигает весь workflow.
//
// Лот объединяет набор активов и последовательность аукционов. Ссылки на
// активы хранятся либо напрямую в Assets (вариант Basic), либо через
// типизированные записи RelatedProcesses (вариант Loki).
type Lot struct {
	// ID — идентификатор лота в сервисе лотов.
	ID string `json:"id"`

	// Rev — ревизия документа лота в document store. Используется
	// ledger'ом: сломанный лот пропускается, пока его ревизия не
	// изменится.
	Rev string `json:"rev"`

	// LotID — человекочитаемый номер лота.
	LotID string `json:"lotID,omitempty"`

	// Status — текущий статус лота.
	Status Status `json:"status"`

	// LotType — алиас типа лота из конфигурации (например "loki",
	// "anotherBasic"). По нему worker выбирает процессор.
	LotType string `json:"lotType"`

	// Mode — режим лота ("test" или пусто). Loki требует совпадения
	// режима лота и актива.
	Mode string `json:"mode,omitempty"`

	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`

	// LotHolder и LotCustodian — балансодержатель и распорядитель лота.
	LotHolder    *Organization `json:"lotHolder,omitempty"`
	LotCustodian *Organization `json:"lotCustodian,omitempty"`

	// Items — предметы лота (заполняются из актива при завершении
	// verification).
	Items []Item `json:"items,omitempty"`

	// Assets — прямые ссылки на активы (Basic).
	Assets []string `json:"assets,omitempty"`

	// RelatedProcesses — типизированные связи лота (Loki). Записи типа
	// "asset" указывают на активы лота.
	RelatedProcesses []RelatedProcess `json:"relatedProcesses,omitempty"`

	// Auctions — последовательность аукционов лота, упорядоченная по
	// tenderAttempts.
	Auctions []Auction `json:"auctions,omitempty"`

	// Decisions — решения по лоту.
	Decisions []Decision `json:"decisions,omitempty"`

	// Documents — документы лота. При создании аукциона копируются в
	// документ аукциона с relatedItem = ID лота.
	Documents []Document `json:"documents,omitempty"`
}

// AssetIDs возвращает идентификаторы активов лота независимо от способа
// связывания: прямые ссылки Assets имеют приоритет, иначе берутся
// relatedProcesses типа "asset".
func (l *Lot) AssetIDs() []string {
	if len(l.Assets) > 0 {
		ids := make([]string, len(l.Assets))
		copy(ids, l.Assets)
		return ids
	}
	var ids []string
	for _, rp := range l.RelatedProcesses {
		if rp.Type == RelatedProcessAsset {
			ids = append(ids, rp.RelatedProcessID)
		}
	}
	return ids
}

// AssetRelatedProcesses возвращает записи relatedProcesses типа "asset".
func (l *Lot) AssetRelatedProcesses() []RelatedProcess {
	var rps []RelatedProcess
	for _, rp := range l.RelatedProcesses {
		if rp.Type == RelatedProcessAsset {
			rps = append(rps, rp)
		}
	}
	return rps
}

// RelatedProcessType — тип связи между лотом и другим ресурсом.
type RelatedProcessType string

const (
	RelatedProcessAsset RelatedProcessType = "asset"
	RelatedProcessLot   RelatedProcessType = "lot"
)

// RelatedProcess — типизированная запись связи лот↔актив.
//
// На стороне лота запись типа "asset" указывает на актив; на стороне
// актива обратная запись типа "lot" указывает на лот. Identifier —
// внешний человекочитаемый идентификатор связанного ресурса.
type RelatedProcess struct {
	ID               string             `json:"id,omitempty"`
	Type             RelatedProcessType `json:"type"`
	RelatedProcessID string             `json:"relatedProcessID"`
	Identifier       string             `json:"identifier,omitempty"`
}

// Decision — решение органа управления по лоту или активу.
type Decision struct {
	ID           string `json:"id,omitempty"`
	Title        string `json:"title,omitempty"`
	DecisionID   string `json:"decisionID"`
	DecisionDate string `json:"decisionDate,omitempty"`
	DecisionOf   string `json:"decisionOf,omitempty"`

	// RelatedItem — идентификатор ресурса, к которому относится решение
	// (проставляется при слиянии решений актива в лот).
	RelatedItem string `json:"relatedItem,omitempty"`
}

// Document — документ, прикреплённый к лоту, активу или аукциону.
type Document struct {
	ID           string `json:"id,omitempty"`
	Title        string `json:"title,omitempty"`
	URL          string `json:"url,omitempty"`
	DocumentOf   string `json:"documentOf,omitempty"`
	DocumentType string `json:"documentType,omitempty"`
	RelatedItem  string `json:"relatedItem,omitempty"`
}

// Item — предмет (имущество) в составе лота или актива.
type Item struct {
	ID          string   `json:"id,omitempty"`
	Description string   `json:"description"`
	Quantity    float64  `json:"quantity,omitempty"`
	Unit        *Unit    `json:"unit,omitempty"`
	Address     *Address `json:"address,omitempty"`
}

// Unit — единица измерения предмета.
type Unit struct {
	Code string `json:"code,omitempty"`
	Name string `json:"name,omitempty"`
}

// Address — адрес расположения предмета.
type Address struct {
	CountryName   string `json:"countryName,omitempty"`
	Region        string `json:"region,omitempty"`
	Locality      string `json:"locality,omitempty"`
	StreetAddress string `json:"streetAddress,omitempty"`
	PostalCode    string `json:"postalCode,omitempty"`
}

// Organization — организация (балансодержатель, распорядитель,
// организатор аукциона).
type Organization struct {
	Name       string      `json:"name"`
	Identifier *Identifier `json:"identifier,omitempty"`
}

// Identifier — официальный идентификатор организации.
type Identifier struct {
	Scheme    string `json:"scheme,omitempty"`
	ID        string `json:"id"`
	LegalName string `json:"legalName,omitempty"`
}
