package clients

import (
	"context"
	"net/http"

	"github.com/shaiso/Concierge/internal/domain"
)

// AssetsClient — клиент сервиса активов.
type AssetsClient struct {
	c *client
}

// NewAssetsClient создаёт клиент сервиса активов.
func NewAssetsClient(cfg Config) *AssetsClient {
	return &AssetsClient{c: newClient(cfg)}
}

// AssetPatch — данные для PATCH актива. RelatedLot указывается
// указателем: nil — поле не трогаем, пустая строка — явно очищаем
// связь при возврате актива в pending.
type AssetPatch struct {
	Status     domain.Status `json:"status"`
	RelatedLot *string       `json:"relatedLot,omitempty"`
}

// Check проверяет доступность сервиса активов.
func (ac *AssetsClient) Check(ctx context.Context) error {
	return ac.c.check(ctx, "/assets")
}

// Get возвращает актуальное состояние актива.
func (ac *AssetsClient) Get(ctx context.Context, assetID string) (*domain.Asset, error) {
	var asset domain.Asset
	if err := ac.c.do(ctx, http.MethodGet, "/assets/"+assetID, nil, &asset); err != nil {
		return nil, err
	}
	return &asset, nil
}

// Patch обновляет актив.
func (ac *AssetsClient) Patch(ctx context.Context, assetID string, patch AssetPatch) error {
	return ac.c.do(ctx, http.MethodPatch, "/assets/"+assetID, patch, nil)
}

// CreateRelatedProcess создаёт на активе обратную ссылку на лот.
// Возвращает созданную запись — её id нужен для отката связывания.
func (ac *AssetsClient) CreateRelatedProcess(ctx context.Context, assetID string, rp domain.RelatedProcess) (*domain.RelatedProcess, error) {
	var created domain.RelatedProcess
	if err := ac.c.do(ctx, http.MethodPost, "/assets/"+assetID+"/related_processes", rp, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// DeleteRelatedProcess удаляет обратную ссылку актива на лот.
func (ac *AssetsClient) DeleteRelatedProcess(ctx context.Context, assetID, rpID string) error {
	return ac.c.do(ctx, http.MethodDelete, "/assets/"+assetID+"/related_processes/"+rpID, nil, nil)
}
