// Package indexer наполняет индекс provenance-хэшей.
//
// Indexer:
//   - Потребляет события hash.recorded из очереди RabbitMQ
//   - Валидирует payload
//   - Записывает HashRecord в БД через RecordRepo
//
// Дубликаты (тот же digest для той же пары workflow/job) считаются
// успешной обработкой: событие ack'ается без записи.
package indexer
