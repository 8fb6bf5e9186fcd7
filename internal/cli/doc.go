// Package cli реализует операторский инструмент командной строки.
//
// # Обзор
//
// CLI — утилита для разбора сломанных лотов и диагностики подключений.
// Она ходит напрямую в Postgres ledger'а и во внешние сервисы,
// воркер для её работы не нужен.
//
// # Ключевые компоненты
//
// ## Output
//
// Форматирование вывода. Поддерживает два режима:
//   - Таблицы (text/tabwriter) — по умолчанию
//   - JSON (json.MarshalIndent) — с флагом --json
//
// Данные выводятся в stdout, сообщения (Success/Error) — в stderr.
// Это позволяет использовать pipe: concierge broken list --json | jq .
//
// ## Commands
//
//   - broken: list, show, resolve — работа с ledger'ом сломанных лотов
//   - check: прогон проверок подключений из пакета checks
//
// Каждая группа создаётся через фабричную функцию (NewBrokenCmd и т.д.),
// принимающую замыкания для ленивого создания зависимостей после
// парсинга PersistentFlags.
package cli
