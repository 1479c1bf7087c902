package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/rfp-brief/backend/internal/storage/models"
	"github.com/rfp-brief/backend/pkg/logger"
)

type Client struct {
	db *pgxpool.Pool
}

func NewClient(ctx context.Context, dsn string, maxConns int32) (*Client, error) {
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres dsn: %w", err)
	}
	if maxConns > 0 {
		poolCfg.MaxConns = maxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	logger.Info("Postgres client initialized", zap.String("host", poolCfg.ConnConfig.Host))

	return &Client{db: pool}, nil
}

func (c *Client) Close() error {
	c.db.Close()
	return nil
}

func (c *Client) Ping(ctx context.Context) error {
	return c.db.Ping(ctx)
}

func (c *Client) InitSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS solicitations (
		id TEXT PRIMARY KEY,
		source TEXT,
		title TEXT NOT NULL,
		buyer TEXT,
		solicitation_id TEXT,
		closing_date TEXT,
		fit_score INTEGER NOT NULL,
		content_hash TEXT NOT NULL,
		envelope JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_solicitations_hash ON solicitations(content_hash);
	CREATE INDEX IF NOT EXISTS idx_solicitations_created ON solicitations(created_at);
	CREATE INDEX IF NOT EXISTS idx_solicitations_sol_id ON solicitations(solicitation_id);
	`

	if _, err := c.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info("Postgres schema initialized")
	return nil
}

func (c *Client) InsertSolicitation(ctx context.Context, s *models.Solicitation) error {
	envelope, err := json.Marshal(s.Envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal envelope: %w", err)
	}

	query := `
		INSERT INTO solicitations (
			id, source, title, buyer, solicitation_id, closing_date,
			fit_score, content_hash, envelope, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err = c.db.Exec(ctx, query,
		s.ID,
		s.Source,
		s.Title,
		s.Buyer,
		s.SolicitationID,
		s.ClosingDate,
		s.FitScore,
		s.ContentHash,
		envelope,
		s.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert solicitation: %w", err)
	}

	logger.Debug("Solicitation inserted", zap.String("id", s.ID), zap.String("title", s.Title))
	return nil
}

func (c *Client) GetSolicitation(ctx context.Context, id string) (*models.Envelope, error) {
	var raw []byte
	err := c.db.QueryRow(ctx, `SELECT envelope FROM solicitations WHERE id = $1`, id).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get solicitation: %w", err)
	}

	var env models.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("failed to unmarshal envelope: %w", err)
	}

	return &env, nil
}

func (c *Client) ListSolicitations(ctx context.Context, limit int) ([]models.SolicitationSummary, error) {
	query := `
		SELECT id, source, title, buyer, solicitation_id, closing_date, fit_score, created_at
		FROM solicitations
		ORDER BY created_at DESC, id
		LIMIT $1
	`

	rows, err := c.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list solicitations: %w", err)
	}
	defer rows.Close()

	list := []models.SolicitationSummary{}
	for rows.Next() {
		var s models.SolicitationSummary
		if err := rows.Scan(&s.ID, &s.Source, &s.Title, &s.Buyer, &s.SolicitationID, &s.ClosingDate, &s.FitScore, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		list = append(list, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}

	return list, nil
}
