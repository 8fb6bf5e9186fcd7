package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shaiso/Concierge/internal/domain"
)

// ErrNotFound — записи для лота нет.
var ErrNotFound = errors.New("ledger: record not found")

// Notifier получает события ledger'а для операторских алертов.
// Реализуется пакетом mq; nil-реализация допустима.
type Notifier interface {
	LotBroken(ctx context.Context, record domain.BrokenLotRecord)
	LotResolved(ctx context.Context, lotID, rev string)
}

// Store — ledger поверх Postgres.
type Store struct {
	pool     *pgxpool.Pool
	notifier Notifier
	logger   *slog.Logger
}

// New создаёт ledger. notifier может быть nil — тогда события никуда
// не публикуются.
func New(pool *pgxpool.Pool, notifier Notifier, logger *slog.Logger) *Store {
	return &Store{pool: pool, notifier: notifier, logger: logger}
}

// EnsureSchema создаёт таблицу ledger'а, если её нет. Вызывается на
// старте процесса.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS broken_lots (
			lot_id      text PRIMARY KEY,
			lot         jsonb NOT NULL,
			message     text NOT NULL,
			rev         text NOT NULL,
			resolved    boolean NOT NULL DEFAULT false,
			broken_at   timestamptz NOT NULL,
			resolved_at timestamptz
		)
	`)
	if err != nil {
		return fmt.Errorf("ensure ledger schema: %w", err)
	}
	return nil
}

// LogBroken фиксирует сломанный лот. Повторная поломка того же лота
// перезаписывает запись и снова помечает её неразрешённой.
func (s *Store) LogBroken(ctx context.Context, lot domain.Lot, message string) error {
	lotJSON, err := json.Marshal(lot)
	if err != nil {
		return fmt.Errorf("marshal broken lot: %w", err)
	}

	now := time.Now().UTC()
	_, err = s.pool.Exec(ctx, `
		INSERT INTO broken_lots (lot_id, lot, message, rev, resolved, broken_at, resolved_at)
		VALUES ($1, $2, $3, $4, false, $5, NULL)
		ON CONFLICT (lot_id) DO UPDATE
		SET lot = EXCLUDED.lot,
		    message = EXCLUDED.message,
		    rev = EXCLUDED.rev,
		    resolved = false,
		    broken_at = EXCLUDED.broken_at,
		    resolved_at = NULL
	`, lot.ID, lotJSON, message, lot.Rev, now)
	if err != nil {
		return fmt.Errorf("upsert broken lot %s: %w", lot.ID, err)
	}

	lotsBroken.Inc()
	s.logger.Error("lot marked as broken",
		"lot_id", lot.ID,
		"rev", lot.Rev,
		"message", message,
	)
	if s.notifier != nil {
		s.notifier.LotBroken(ctx, domain.BrokenLotRecord{
			Lot:      lot,
			Message:  message,
			Rev:      lot.Rev,
			BrokenAt: now,
		})
	}
	return nil
}

// Get возвращает запись по id лота либо ErrNotFound.
func (s *Store) Get(ctx context.Context, lotID string) (*domain.BrokenLotRecord, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT lot, message, rev, resolved, broken_at, resolved_at
		FROM broken_lots
		WHERE lot_id = $1
	`, lotID)
	return scanRecord(row)
}

// Resolve помечает запись разрешённой и запоминает ревизию, при которой
// лот вернулся в обработку.
func (s *Store) Resolve(ctx context.Context, lot domain.Lot) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE broken_lots
		SET resolved = true, rev = $2, resolved_at = $3
		WHERE lot_id = $1
	`, lot.ID, lot.Rev, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("resolve broken lot %s: %w", lot.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	s.logger.Info("broken lot resolved", "lot_id", lot.ID, "rev", lot.Rev)
	if s.notifier != nil {
		s.notifier.LotResolved(ctx, lot.ID, lot.Rev)
	}
	return nil
}

// ListFilter — фильтр списка записей.
type ListFilter struct {
	// Unresolved — только неразрешённые записи.
	Unresolved bool

	// Limit — максимум записей; 0 — без ограничения разумного нет,
	// поэтому по умолчанию 100.
	Limit int
}

// List возвращает записи ledger'а, свежие поломки первыми.
func (s *Store) List(ctx context.Context, filter ListFilter) ([]domain.BrokenLotRecord, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx, `
		SELECT lot, message, rev, resolved, broken_at, resolved_at
		FROM broken_lots
		WHERE NOT $1 OR NOT resolved
		ORDER BY broken_at DESC
		LIMIT $2
	`, filter.Unresolved, limit)
	if err != nil {
		return nil, fmt.Errorf("list broken lots: %w", err)
	}
	defer rows.Close()

	var records []domain.BrokenLotRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}
	return records, rows.Err()
}

type scannable interface {
	Scan(dest ...any) error
}

func scanRecord(row scannable) (*domain.BrokenLotRecord, error) {
	var (
		lotJSON []byte
		record  domain.BrokenLotRecord
	)
	err := row.Scan(
		&lotJSON,
		&record.Message,
		&record.Rev,
		&record.Resolved,
		&record.BrokenAt,
		&record.ResolvedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan broken lot: %w", err)
	}
	if err := json.Unmarshal(lotJSON, &record.Lot); err != nil {
		return nil, fmt.Errorf("decode broken lot snapshot: %w", err)
	}
	return &record, nil
}
