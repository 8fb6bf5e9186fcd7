// Package feed читает change feed document store'а с лотами.
//
// Feed — упорядоченный возобновляемый поток изменений, фильтруемый на
// стороне сервера предикатом по lotType и status. Пакет отвечает за:
//
//   - построение фильтра из конфигурации (filter.go);
//   - курсор последней обработанной позиции и его периодический сброс
//     для полной перефильтрации базы (cursor.go);
//   - собственно опрос _changes и маппинг документов в domain.Lot
//     (feed.go).
//
// Опрос синхронный и однопоточный: worker вычитывает один дрен за
// проход цикла.
package feed
