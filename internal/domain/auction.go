package domain

import "time"

// Auction — аукцион в последовательности аукционов лота.
//
// Инвариант последовательности: все аукционы лота находятся в
// обрабатываемых статусах (scheduled, unsuccessful), и аукцион в
// статусе scheduled имеет непосредственного предшественника (если он
// есть) в статусе unsuccessful — иначе лот не готов к следующему
// аукциону.
type Auction struct {
	// ID — идентификатор аукциона как подэлемента лота.
	ID string `json:"id"`

	// AuctionID — человекочитаемый номер, присвоенный сервисом
	// аукционов после создания.
	AuctionID string `json:"auctionID,omitempty"`

	// Status — статус аукциона.
	Status AuctionStatus `json:"status"`

	// TenderAttempts — позиция аукциона в последовательности (с 1).
	TenderAttempts int `json:"tenderAttempts"`

	// ProcurementMethodType — тип процедуры. Создаются только аукционы
	// с типом из configured allow-list.
	ProcurementMethodType string `json:"procurementMethodType"`

	// ProcurementMethodDetails — строка с деталями процедуры; может
	// содержать директиву ускорения "accelerator=N" (тестовые стенды).
	ProcurementMethodDetails string `json:"procurementMethodDetails,omitempty"`

	// AuctionPeriod — шаблонный период проведения.
	AuctionPeriod *Period `json:"auctionPeriod,omitempty"`

	// TenderingDuration — длительность приёма предложений в формате
	// ISO 8601 (например "P25DT12H"). Используется для расчёта даты
	// старта повторных аукционов.
	TenderingDuration string `json:"tenderingDuration,omitempty"`

	Value             *Value             `json:"value,omitempty"`
	MinimalStep       *Value             `json:"minimalStep,omitempty"`
	Guarantee         *Value             `json:"guarantee,omitempty"`
	RegistrationFee   *Value             `json:"registrationFee,omitempty"`
	BankAccount       *BankAccount       `json:"bankAccount,omitempty"`
	AuctionParameters *AuctionParameters `json:"auctionParameters,omitempty"`
	Documents         []Document         `json:"documents,omitempty"`

	// RelatedProcessID — идентификатор созданного аукциона в сервисе
	// аукционов (проставляется после успешного создания).
	RelatedProcessID string `json:"relatedProcessID,omitempty"`
}

// Period — временной период.
type Period struct {
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate,omitzero"`
}

// Value — денежная величина.
type Value struct {
	Amount                float64 `json:"amount"`
	Currency              string  `json:"currency,omitempty"`
	ValueAddedTaxIncluded bool    `json:"valueAddedTaxIncluded,omitempty"`
}

// BankAccount — банковские реквизиты для оплаты.
type BankAccount struct {
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
}

// AuctionParameters — параметры проведения аукциона.
type AuctionParameters struct {
	Type       string `json:"type,omitempty"`
	DutchSteps int    `json:"dutchSteps,omitempty"`
}

// AuctionCreate — документ для POST /auctions, собираемый из лота
// декларативной проекцией (см. processing). Каждое значение — свежая
// копия, структурно независимая от снапшота лота.
type AuctionCreate struct {
	Title                 string             `json:"title,omitempty"`
	Description           string             `json:"description,omitempty"`
	Mode                  string             `json:"mode,omitempty"`
	MerchandisingObject   string             `json:"merchandisingObject"`
	TenderAttempts        int                `json:"tenderAttempts"`
	ProcuringEntity       *Organization      `json:"procuringEntity,omitempty"`
	Items                 []Item             `json:"items,omitempty"`
	Value                 *Value             `json:"value,omitempty"`
	MinimalStep           *Value             `json:"minimalStep,omitempty"`
	Guarantee             *Value             `json:"guarantee,omitempty"`
	RegistrationFee       *Value             `json:"registrationFee,omitempty"`
	ProcurementMethodType string             `json:"procurementMethodType"`
	BankAccount           *BankAccount       `json:"bankAccount,omitempty"`
	AuctionParameters     *AuctionParameters `json:"auctionParameters,omitempty"`
	Documents             []Document         `json:"documents,omitempty"`
	Status                AuctionStatus      `json:"status"`
	TransferToken         string             `json:"transfer_token,omitempty"`
	AuctionPeriod         *Period            `json:"auctionPeriod,omitempty"`
}

// CreatedAuction — ответ сервиса аукционов на создание.
type CreatedAuction struct {
	ID        string        `json:"id"`
	AuctionID string        `json:"auctionID"`
	Status    AuctionStatus `json:"status"`
}

// AuctionPatch — данные для PATCH подэлемента auctions лота после
// успешного создания аукциона.
type AuctionPatch struct {
	AuctionID        string        `json:"auctionID,omitempty"`
	Status           AuctionStatus `json:"status,omitempty"`
	RelatedProcessID string        `json:"relatedProcessID,omitempty"`
}
