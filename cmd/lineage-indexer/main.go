// Lineage Indexer — наполняет индекс provenance-хэшей.
//
// Indexer:
//   - Получает события hash.recorded из RabbitMQ
//   - Записывает их в PostgreSQL через RecordRepo
//   - Обслуживает read-only HTTP API индекса
//   - Экспортирует /healthz и /metrics
//
// Indexer масштабируется горизонтально: несколько экземпляров
// могут потреблять из одной очереди.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shaiso/Lineage/internal/api"
	"github.com/shaiso/Lineage/internal/indexer"
	"github.com/shaiso/Lineage/internal/mq"
	"github.com/shaiso/Lineage/internal/repo"
	"github.com/shaiso/Lineage/internal/telemetry"
)

func main() {
	// Инициализируем structured logging
	logger := telemetry.SetupLogger()
	logger.Info("starting lineage-indexer")

	// graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// DB pool
	pool, err := repo.NewPool(ctx)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("database connected")

	// RabbitMQ
	mqURL := os.Getenv("RABBITMQ_URL")
	if mqURL == "" {
		mqURL = mq.DefaultURL()
	}

	conn, err := mq.NewConnection(mqURL, logger)
	if err != nil {
		logger.Error("failed to connect to RabbitMQ", "error", err)
		os.Exit(1)
	}
	defer conn.Close()

	if err := mq.SetupTopology(conn); err != nil {
		logger.Error("failed to setup topology", "error", err)
		os.Exit(1)
	}

	records := repo.NewRecordRepo(pool)

	// Создаём indexer
	idx := indexer.New(indexer.Config{
		Records: records,
		Conn:    conn,
		Logger:  logger,
	})

	// HTTP mux: API индекса + /healthz + /metrics
	mux := http.NewServeMux()
	handler := api.NewHandler(api.Config{
		Records: records,
		Logger:  logger,
	})
	handler.RegisterRoutes(mux)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	port := ":8083"
	if v := os.Getenv("INDEXER_PORT"); v != "" {
		port = ":" + v
	}

	go func() {
		logger.Info("listening", "addr", port)
		if err := http.ListenAndServe(port, mux); err != nil {
			logger.Error("http server error", "error", err)
			cancel()
		}
	}()

	// Потребляем события до сигнала завершения
	if err := idx.Start(ctx); err != nil && ctx.Err() == nil {
		logger.Error("indexer stopped with error", "error", err)
		os.Exit(1)
	}

	logger.Info("lineage-indexer stopped")
}
