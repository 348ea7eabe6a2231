// Package api реализует read-only HTTP API индекса provenance-хэшей.
//
// API обслуживается процессом lineage-indexer и даёт операторам
// доступ к индексу без прямого подключения к БД:
//
//   - GET /api/v1/workflows — сводка по workflows в индексе
//   - GET /api/v1/workflows/{workflow}/records — записи workflow
//   - GET /api/v1/records/{digest} — запись по digest
//   - DELETE /api/v1/records?algo_version= — массовая инвалидация
//
// Ответы — JSON в конвертах DataResponse/ListResponse; ошибки — в
// ErrorResponse с машиночитаемым кодом.
package api
