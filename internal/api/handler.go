package api

import (
	"log/slog"

	"github.com/shaiso/Lineage/internal/repo"
)

// Handler — обработчик API индекса с зависимостями.
type Handler struct {
	records *repo.RecordRepo
	logger  *slog.Logger
}

// Config — конфигурация для создания Handler.
type Config struct {
	Records *repo.RecordRepo
	Logger  *slog.Logger
}

// NewHandler создаёт новый Handler.
func NewHandler(cfg Config) *Handler {
	return &Handler{
		records: cfg.Records,
		logger:  cfg.Logger,
	}
}
