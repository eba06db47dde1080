package handler

import (
	"log/slog"

	"github.com/masjidnetwork/backend/internal/repository"
)

// Handler serves the endpoints that are not tied to a domain service.
type Handler struct {
	db     repository.DB
	logger *slog.Logger
}

func New(db repository.DB, logger *slog.Logger) *Handler {
	return &Handler{db: db, logger: logger}
}
