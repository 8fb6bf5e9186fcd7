// Package clients содержит HTTP-клиенты трёх удалённых сервисов
// реестра: лотов, активов и аукционов.
//
// Все клиенты — тонкие адаптеры над net/http: JSON-конверт {"data": ...}
// в обе стороны, Bearer-токен, маппинг не-2xx ответов в *APIError со
// статус-кодом. Политика повторов намеренно вынесена наружу (пакет
// retry): клиент выполняет ровно один запрос.
package clients
