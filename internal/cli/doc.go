// Package cli реализует инструмент командной строки Lineage.
//
// # Обзор
//
// CLI — локальная утилита: она читает workflow-файл, строит task-граф
// и вычисляет provenance-хэши напрямую, без промежуточного API.
// Индекс хэшей (PostgreSQL) и очередь событий (RabbitMQ) подключаются
// опционально, через флаги --record и --publish.
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
// Это позволяет использовать pipe: lineage hash wf.json --json | jq .
//
// ## Commands
//
// Cobra-команды организованы по операциям:
//   - hash:  вычисление provenance-хэшей jobs
//   - graph: структура task-графа и топологический порядок
//   - cache: store, fetch, status локального кэша артефактов
//   - index: list, show, purge индекса хэшей
//
// Каждая группа создаётся через фабричную функцию (NewHashCmd и т.д.),
// принимающую outputFn — замыкание для ленивого создания Output
// после парсинга PersistentFlags.
package cli
