package indexer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/Lineage/internal/domain"
	"github.com/shaiso/Lineage/internal/mq"
	"github.com/shaiso/Lineage/internal/repo"
)

// fakeStore — in-memory реализация RecordStore для тестов.
type fakeStore struct {
	created []*domain.HashRecord
	err     error
}

func (s *fakeStore) Create(_ context.Context, rec *domain.HashRecord) error {
	if s.err != nil {
		return s.err
	}
	s.created = append(s.created, rec)
	return nil
}

// delivery собирает Delivery с событием hash.recorded.
func delivery(msgType mq.MessageType, payload any) *mq.Delivery {
	return &mq.Delivery{
		Message: mq.Message{
			ID:        "msg-1",
			Type:      msgType,
			Payload:   payload,
			Timestamp: time.Now(),
		},
	}
}

func validPayload() map[string]any {
	return map[string]any{
		"workflow":     "rna-seq",
		"job_id":       "align",
		"digest":       "9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08",
		"algo_version": "0.1",
		"computed_at":  time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC).Format(time.RFC3339),
	}
}

func newTestIndexer(store RecordStore) *Indexer {
	return New(Config{Records: store})
}

func TestHandleHashRecorded_CreatesRecord(t *testing.T) {
	store := &fakeStore{}
	idx := newTestIndexer(store)

	d := delivery(mq.MessageTypeHashRecorded, validPayload())
	if err := idx.HandleHashRecorded(context.Background(), d); err != nil {
		t.Fatalf("handle: %v", err)
	}

	if len(store.created) != 1 {
		t.Fatalf("expected 1 record, got %d", len(store.created))
	}

	rec := store.created[0]
	if rec.Workflow != "rna-seq" || rec.JobID != "align" {
		t.Errorf("unexpected record: %+v", rec)
	}
	if rec.AlgoVersion != "0.1" {
		t.Errorf("algo_version = %q, want 0.1", rec.AlgoVersion)
	}
	if rec.ID == uuid.Nil {
		t.Error("record must get a generated UUID")
	}
	if rec.ComputedAt.IsZero() {
		t.Error("computed_at must be populated")
	}
}

func TestHandleHashRecorded_UnexpectedType(t *testing.T) {
	idx := newTestIndexer(&fakeStore{})

	d := delivery("task.completed", validPayload())
	err := idx.HandleHashRecorded(context.Background(), d)
	if !errors.Is(err, ErrUnexpectedType) {
		t.Errorf("expected ErrUnexpectedType, got %v", err)
	}
}

func TestHandleHashRecorded_EmptyDigest(t *testing.T) {
	idx := newTestIndexer(&fakeStore{})

	payload := validPayload()
	payload["digest"] = ""
	d := delivery(mq.MessageTypeHashRecorded, payload)

	err := idx.HandleHashRecorded(context.Background(), d)
	if !errors.Is(err, ErrEmptyDigest) {
		t.Errorf("expected ErrEmptyDigest, got %v", err)
	}
}

func TestHandleHashRecorded_EmptyJobID(t *testing.T) {
	idx := newTestIndexer(&fakeStore{})

	payload := validPayload()
	payload["job_id"] = ""
	d := delivery(mq.MessageTypeHashRecorded, payload)

	err := idx.HandleHashRecorded(context.Background(), d)
	if !errors.Is(err, ErrEmptyJobID) {
		t.Errorf("expected ErrEmptyJobID, got %v", err)
	}
}

func TestHandleHashRecorded_DuplicateIsAck(t *testing.T) {
	// Дубликат — не ошибка: событие ack'ается и не уходит в retry
	store := &fakeStore{err: repo.ErrAlreadyExists}
	idx := newTestIndexer(store)

	d := delivery(mq.MessageTypeHashRecorded, validPayload())
	if err := idx.HandleHashRecorded(context.Background(), d); err != nil {
		t.Errorf("duplicate record must not fail the handler, got %v", err)
	}
}

func TestHandleHashRecorded_StoreFailure(t *testing.T) {
	storeErr := errors.New("connection refused")
	idx := newTestIndexer(&fakeStore{err: storeErr})

	d := delivery(mq.MessageTypeHashRecorded, validPayload())
	err := idx.HandleHashRecorded(context.Background(), d)
	if !errors.Is(err, storeErr) {
		t.Errorf("expected wrapped store error, got %v", err)
	}
}
