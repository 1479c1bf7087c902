// Package storage holds the contract shared by the sqlite and postgres
// solicitation stores.
package storage

import (
	"context"

	"github.com/rfp-brief/backend/internal/storage/models"
)

type Store interface {
	InsertSolicitation(ctx context.Context, s *models.Solicitation) error
	GetSolicitation(ctx context.Context, id string) (*models.Envelope, error)
	ListSolicitations(ctx context.Context, limit int) ([]models.SolicitationSummary, error)
	Ping(ctx context.Context) error
	Close() error
}
