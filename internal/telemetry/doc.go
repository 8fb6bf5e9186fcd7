// Package telemetry обеспечивает наблюдаемость системы.
//
// Включает structured logging через slog: формат и уровень задаются
// переменными окружения LOG_FORMAT и LOG_LEVEL; хелперы With*ID
// навешивают доменные идентификаторы (lot_id, asset_id, auction_id)
// единообразными ключами. Метрики воркер экспортирует на /metrics
// endpoint (см. пакет worker).
package telemetry
