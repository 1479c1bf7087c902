package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/rfp-brief/backend/internal/storage/models"
	"github.com/rfp-brief/backend/pkg/logger"
)

type Client struct {
	db *sql.DB
}

func NewClient(dbPath string) (*Client, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	_, err = db.Exec("PRAGMA foreign_keys = ON")
	if err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	_, err = db.Exec("PRAGMA journal_mode = WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	logger.Info("SQLite client initialized", zap.String("path", dbPath))

	return &Client{db: db}, nil
}

func (c *Client) Close() error {
	return c.db.Close()
}

func (c *Client) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
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
		envelope TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_solicitations_hash ON solicitations(content_hash);
	CREATE INDEX IF NOT EXISTS idx_solicitations_created ON solicitations(created_at);
	CREATE INDEX IF NOT EXISTS idx_solicitations_sol_id ON solicitations(solicitation_id);
	`

	_, err := c.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info("SQLite schema initialized")
	return nil
}

func (c *Client) InsertSolicitation(ctx context.Context, s *models.Solicitation) error {
	envelope, err := json.Marshal(s.Envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal envelope: %w", err)
	}

	query := `
		INSERT INTO solicitations (id, source, title, buyer, solicitation_id, closing_date, fit_score, content_hash, envelope, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = c.db.ExecContext(
		ctx,
		query,
		s.ID,
		s.Source,
		s.Title,
		s.Buyer,
		s.SolicitationID,
		s.ClosingDate,
		s.FitScore,
		s.ContentHash,
		string(envelope),
		s.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert solicitation: %w", err)
	}

	logger.Debug("Solicitation inserted", zap.String("id", s.ID), zap.String("title", s.Title))
	return nil
}

func (c *Client) GetSolicitation(ctx context.Context, id string) (*models.Envelope, error) {
	query := `SELECT envelope FROM solicitations WHERE id = ?`

	var raw string
	err := c.db.QueryRowContext(ctx, query, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get solicitation: %w", err)
	}

	var env models.Envelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return nil, fmt.Errorf("failed to unmarshal envelope: %w", err)
	}

	return &env, nil
}

func (c *Client) ListSolicitations(ctx context.Context, limit int) ([]models.SolicitationSummary, error) {
	query := `
		SELECT id, source, title, buyer, solicitation_id, closing_date, fit_score, created_at
		FROM solicitations
		ORDER BY created_at DESC, id
		LIMIT ?
	`

	rows, err := c.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list solicitations: %w", err)
	}
	defer rows.Close()

	list := []models.SolicitationSummary{}
	for rows.Next() {
		var s models.SolicitationSummary
		var createdAt int64

		err := rows.Scan(&s.ID, &s.Source, &s.Title, &s.Buyer, &s.SolicitationID, &s.ClosingDate, &s.FitScore, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		s.CreatedAt = time.Unix(createdAt, 0).UTC()
		list = append(list, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}

	return list, nil
}
