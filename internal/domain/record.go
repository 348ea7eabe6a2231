package domain

import (
	"time"

	"github.com/google/uuid"
)

// HashRecord — запись в индексе provenance-хэшей.
//
// Запись создаётся когда:
// - CLI вычисляет хэш с флагом --record (прямая запись в БД)
// - Indexer получает событие hash.recorded из очереди
//
// Индекс позволяет операторам видеть, какие digests уже вычислены,
// и массово инвалидировать записи при смене версии алгоритма.
type HashRecord struct {
	// ID — уникальный идентификатор записи.
	ID uuid.UUID `json:"id"`

	// Workflow — имя workflow, которому принадлежит job.
	Workflow string `json:"workflow"`

	// JobID — идентификатор job в рамках workflow.
	JobID string `json:"job_id"`

	// Digest — versioned provenance-хэш (hex, 64 символа).
	Digest string `json:"digest"`

	// AlgoVersion — версия алгоритма хэширования, которой вычислен digest.
	// Записи со старой версией подлежат удалению при bump'е версии.
	AlgoVersion string `json:"algo_version"`

	// ComputedAt — время вычисления хэша.
	ComputedAt time.Time `json:"computed_at"`
}

// WorkflowSummary — сводка по workflow в индексе.
type WorkflowSummary struct {
	// Workflow — имя workflow.
	Workflow string `json:"workflow"`

	// Records — количество записей индекса для workflow.
	Records int `json:"records"`

	// LastComputedAt — время последней записи.
	LastComputedAt time.Time `json:"last_computed_at"`
}
