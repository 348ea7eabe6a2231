// Package mq предоставляет инфраструктуру для работы с RabbitMQ.
//
// Структура:
//   - connection.go — управление соединением (reconnect, graceful shutdown)
//   - topology.go   — объявление exchanges, queues, bindings
//   - publisher.go  — публикация событий
//   - consumer.go   — потребление событий
//
// Типы сообщений:
//   - hash.recorded — вычислен provenance-хэш job
//
// Exchanges:
//   - lineage.hashes — события вычисления хэшей
//   - lineage.dlq    — dead letter queue
package mq
