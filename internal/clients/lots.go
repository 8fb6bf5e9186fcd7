package clients

import (
	"context"
	"net/http"

	"github.com/shaiso/Concierge/internal/domain"
)

// LotsClient — клиент сервиса лотов.
type LotsClient struct {
	c *client
}

// NewLotsClient создаёт клиент сервиса лотов.
func NewLotsClient(cfg Config) *LotsClient {
	return &LotsClient{c: newClient(cfg)}
}

// LotPatch — данные для PATCH лота. Status обязателен; остальные поля —
// фиксированная проекция полей актива, переносимая на лот при
// завершении verification (Loki).
type LotPatch struct {
	Status       domain.Status        `json:"status"`
	Title        string               `json:"title,omitempty"`
	Description  string               `json:"description,omitempty"`
	LotHolder    *domain.Organization `json:"lotHolder,omitempty"`
	LotCustodian *domain.Organization `json:"lotCustodian,omitempty"`
	Items        []domain.Item        `json:"items,omitempty"`
	Decisions    []domain.Decision    `json:"decisions,omitempty"`
}

// Check проверяет доступность сервиса лотов.
func (lc *LotsClient) Check(ctx context.Context) error {
	return lc.c.check(ctx, "/lots")
}

// Get возвращает актуальное состояние лота.
func (lc *LotsClient) Get(ctx context.Context, lotID string) (*domain.Lot, error) {
	var lot domain.Lot
	if err := lc.c.do(ctx, http.MethodGet, "/lots/"+lotID, nil, &lot); err != nil {
		return nil, err
	}
	return &lot, nil
}

// Patch обновляет лот.
func (lc *LotsClient) Patch(ctx context.Context, lotID string, patch LotPatch) error {
	return lc.c.do(ctx, http.MethodPatch, "/lots/"+lotID, patch, nil)
}

// PatchAuction обновляет подэлемент auctions лота: идентификаторы
// созданного аукциона и его статус.
func (lc *LotsClient) PatchAuction(ctx context.Context, lotID, auctionID string, patch domain.AuctionPatch) error {
	return lc.c.do(ctx, http.MethodPatch, "/lots/"+lotID+"/auctions/"+auctionID, patch, nil)
}

// RelatedProcessPatch — данные для PATCH записи relatedProcesses лота.
type RelatedProcessPatch struct {
	Identifier string `json:"identifier"`
}

// PatchRelatedProcess проставляет внешний идентификатор актива в записи
// relatedProcesses лота (фаза связывания Loki).
func (lc *LotsClient) PatchRelatedProcess(ctx context.Context, lotID, rpID string, patch RelatedProcessPatch) error {
	return lc.c.do(ctx, http.MethodPatch, "/lots/"+lotID+"/related_processes/"+rpID, patch, nil)
}

// credentials — ответ эндпоинта credentials.
type credentials struct {
	TransferToken string `json:"transfer_token"`
}

// ExtractCredentials возвращает одноразовый transfer-токен лота,
// который потребляется при создании аукциона.
func (lc *LotsClient) ExtractCredentials(ctx context.Context, lotID string) (string, error) {
	var creds credentials
	if err := lc.c.do(ctx, http.MethodGet, "/lots/"+lotID+"/credentials", nil, &creds); err != nil {
		return "", err
	}
	return creds.TransferToken, nil
}
