package indexer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/Lineage/internal/domain"
	"github.com/shaiso/Lineage/internal/mq"
	"github.com/shaiso/Lineage/internal/repo"
	"github.com/shaiso/Lineage/internal/telemetry"
)

// Ошибки indexer'а.
var (
	// ErrEmptyDigest — событие без digest.
	ErrEmptyDigest = errors.New("event has empty digest")

	// ErrEmptyJobID — событие без job_id.
	ErrEmptyJobID = errors.New("event has empty job_id")

	// ErrUnexpectedType — сообщение неожиданного типа в очереди.
	ErrUnexpectedType = errors.New("unexpected message type")
)

// RecordStore — минимальный интерфейс хранилища записей.
// Реализуется repo.RecordRepo; в тестах подменяется fake'ом.
type RecordStore interface {
	Create(ctx context.Context, rec *domain.HashRecord) error
}

// Indexer потребляет события hash.recorded и пишет их в индекс.
type Indexer struct {
	records  RecordStore
	conn     *mq.Connection
	consumer *mq.Consumer
	logger   *slog.Logger
}

// Config — конфигурация Indexer.
type Config struct {
	// Records — хранилище записей.
	Records RecordStore

	// Conn — соединение с RabbitMQ.
	Conn *mq.Connection

	// Prefetch — количество событий для предварительной загрузки.
	Prefetch int

	// Logger
	Logger *slog.Logger
}

// New создаёт новый Indexer.
func New(cfg Config) *Indexer {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	idx := &Indexer{
		records: cfg.Records,
		conn:    cfg.Conn,
		logger:  logger,
	}

	idx.consumer = mq.NewConsumer(cfg.Conn, logger, mq.ConsumerConfig{
		Queue:    mq.QueueHashesRecorded,
		Handler:  idx.HandleHashRecorded,
		Prefetch: cfg.Prefetch,
	})

	return idx
}

// Start запускает потребление событий. Блокирует до отмены ctx.
func (i *Indexer) Start(ctx context.Context) error {
	i.logger.Info("indexer started", "queue", mq.QueueHashesRecorded)
	return i.consumer.Start(ctx)
}

// HandleHashRecorded обрабатывает одно событие hash.recorded.
// Дубликат записи — не ошибка: событие ack'ается.
func (i *Indexer) HandleHashRecorded(ctx context.Context, d *mq.Delivery) error {
	if d.Message.Type != mq.MessageTypeHashRecorded {
		return fmt.Errorf("%w: %s", ErrUnexpectedType, d.Message.Type)
	}

	payload, err := mq.ParsePayload[mq.HashRecordedPayload](&d.Message)
	if err != nil {
		return fmt.Errorf("parse payload: %w", err)
	}

	if err := validatePayload(&payload); err != nil {
		return err
	}

	rec := &domain.HashRecord{
		ID:          uuid.New(),
		Workflow:    payload.Workflow,
		JobID:       payload.JobID,
		Digest:      payload.Digest,
		AlgoVersion: payload.AlgoVersion,
		ComputedAt:  payload.ComputedAt,
	}
	if rec.ComputedAt.IsZero() {
		rec.ComputedAt = time.Now()
	}

	logger := telemetry.WithDigest(
		telemetry.WithJobID(
			telemetry.WithWorkflow(telemetry.FromContext(ctx), rec.Workflow),
			rec.JobID,
		),
		rec.Digest,
	)

	err = i.records.Create(ctx, rec)
	if errors.Is(err, repo.ErrAlreadyExists) {
		logger.Debug("record already indexed")
		return nil
	}
	if err != nil {
		return fmt.Errorf("store record: %w", err)
	}

	telemetry.RecordsIndexed.Inc()
	logger.Info("record indexed", "algo_version", rec.AlgoVersion)
	return nil
}

// validatePayload проверяет обязательные поля события.
func validatePayload(p *mq.HashRecordedPayload) error {
	if p.Digest == "" {
		return ErrEmptyDigest
	}
	if p.JobID == "" {
		return ErrEmptyJobID
	}
	return nil
}
