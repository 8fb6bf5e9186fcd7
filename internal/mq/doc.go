// Package mq предоставляет инфраструктуру для работы с RabbitMQ.
//
// Структура:
//   - connection.go — управление соединением с RabbitMQ (reconnect, graceful shutdown)
//   - topology.go   — объявление exchanges, queues, bindings
//   - notifier.go   — публикация операторских событий ledger'а
//
// Типы сообщений:
//   - lot.broken   — сага по лоту сломалась, лот требует разбора
//   - lot.resolved — запись о поломке снята, лот вернулся в обработку
//
// Сами concierge-процессы из очередей не читают: потребители — внешние
// операторские инструменты (алертинг, дашборды).
package mq
