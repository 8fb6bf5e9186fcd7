package mapping

import "context"

// Void — выключенный кэш.
//
// Get и Has возвращают фиксированные «ключа нет» ответы, Put и Delete —
// no-op. Has намеренно отвечает false: worker пропускает лоты с
// положительным ответом кэша, и любой другой sentinel при выключенном
// кэшировании останавливал бы обработку целиком.
type Void struct{}

// NewVoid создаёт выключенный кэш.
func NewVoid() *Void {
	return &Void{}
}

func (*Void) Get(ctx context.Context, key string) (string, error) { return "", nil }

func (*Void) Put(ctx context.Context, key, value string) error { return nil }

func (*Void) Has(ctx context.Context, key string) (bool, error) { return false, nil }

func (*Void) Delete(ctx context.Context, key string) error { return nil }
