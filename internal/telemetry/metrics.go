package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Метрики хэширования и кэша. Регистрируются в глобальном registry;
// сервисы экспортируют их через /metrics (promhttp).
var (
	// HashesComputed — количество фактически вычисленных provenance-хэшей
	// (без memo-хитов).
	HashesComputed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lineage_hashes_computed_total",
		Help: "Total provenance hashes actually computed (memo misses)",
	})

	// HashMemoHits — количество запросов, обслуженных из memo-таблицы.
	HashMemoHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lineage_hash_memo_hits_total",
		Help: "Total provenance hash requests served from the memo table",
	})

	// CacheHits — количество попаданий в локальный кэш артефактов.
	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lineage_cache_hits_total",
		Help: "Total local artifact cache hits",
	})

	// CacheMisses — количество промахов локального кэша артефактов.
	CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lineage_cache_misses_total",
		Help: "Total local artifact cache misses",
	})

	// RecordsIndexed — количество записей, добавленных в индекс
	// provenance-хэшей indexer'ом.
	RecordsIndexed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lineage_records_indexed_total",
		Help: "Total hash records written to the provenance index",
	})

	// HTTPRequests — количество HTTP запросов к API индекса.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lineage_http_requests_total",
		Help: "Total HTTP requests to the provenance index API",
	}, []string{"method", "status"})
)
