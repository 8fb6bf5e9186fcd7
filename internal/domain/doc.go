// Package domain содержит модель данных реестра: лоты, активы, аукционы
// и связанные с ними записи.
//
// Владельцем данных являются удалённые сервисы (lots, assets, auctions) —
// concierge работает только с короткоживущими снапшотами, полученными из
// change feed или по GET-запросу. Любое значение из этого пакета может
// устареть сразу после получения; актуальность проверяется повторным
// чтением из источника (см. processing.checkLot).
package domain
