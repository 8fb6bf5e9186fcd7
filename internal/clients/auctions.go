package clients

import (
	"context"
	"net/http"

	"github.com/shaiso/Concierge/internal/domain"
)

// AuctionsClient — клиент сервиса аукционов.
//
// У эндпоинта создания нет серверного ключа идемпотентности: повтор
// POST после таймаута фактически успешной первой попытки может создать
// дубликат аукциона. Это известный at-least-once риск, он не
// маскируется на клиенте.
type AuctionsClient struct {
	c *client
}

// NewAuctionsClient создаёт клиент сервиса аукционов.
func NewAuctionsClient(cfg Config) *AuctionsClient {
	return &AuctionsClient{c: newClient(cfg)}
}

// Check проверяет доступность сервиса аукционов.
func (ac *AuctionsClient) Check(ctx context.Context) error {
	return ac.c.check(ctx, "/auctions")
}

// Create публикует собранный документ аукциона.
func (ac *AuctionsClient) Create(ctx context.Context, auction *domain.AuctionCreate) (*domain.CreatedAuction, error) {
	var created domain.CreatedAuction
	if err := ac.c.do(ctx, http.MethodPost, "/auctions", auction, &created); err != nil {
		return nil, err
	}
	return &created, nil
}
