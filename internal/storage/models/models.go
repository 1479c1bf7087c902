package models

import (
	"errors"
	"time"

	"github.com/rfp-brief/backend/internal/extraction"
)

var ErrNotFound = errors.New("solicitation not found")

type Meta struct {
	ID          string    `json:"id"`
	Source      string    `json:"source"`
	SourceType  string    `json:"source_type"`
	ProcessedAt time.Time `json:"processed_at"`
	Language    string    `json:"language"`
	Pages       *int      `json:"pages"`
	WordCount   int       `json:"word_count"`
	ContentHash string    `json:"content_hash"`
}

// Envelope is the response body for one processed document.
type Envelope struct {
	Meta              Meta                         `json:"meta"`
	Facts             extraction.Facts             `json:"facts"`
	Requirements      extraction.Requirements      `json:"requirements"`
	RiskAndCompliance extraction.RiskAndCompliance `json:"risk_and_compliance"`
	Summary           extraction.SummaryVerdict    `json:"summary"`
}

func NewEnvelope(meta Meta, res extraction.Result) *Envelope {
	return &Envelope{
		Meta:              meta,
		Facts:             res.Record.Facts,
		Requirements:      res.Record.Requirements,
		RiskAndCompliance: res.Record.RiskAndCompliance,
		Summary:           res.Summary,
	}
}

// Solicitation is the stored row: indexed columns plus the full envelope.
type Solicitation struct {
	ID             string
	Source         string
	Title          string
	Buyer          string
	SolicitationID string
	ClosingDate    string
	FitScore       int
	ContentHash    string
	Envelope       *Envelope
	CreatedAt      time.Time
}

func SolicitationFromEnvelope(env *Envelope) *Solicitation {
	return &Solicitation{
		ID:             env.Meta.ID,
		Source:         env.Meta.Source,
		Title:          env.Facts.Title,
		Buyer:          env.Facts.Buyer,
		SolicitationID: env.Facts.SolicitationID,
		ClosingDate:    env.Facts.ClosingDate,
		FitScore:       env.Summary.FitScore.Score,
		ContentHash:    env.Meta.ContentHash,
		Envelope:       env,
		CreatedAt:      env.Meta.ProcessedAt,
	}
}

// SolicitationSummary is one row of a listing.
type SolicitationSummary struct {
	ID             string    `json:"id"`
	Source         string    `json:"source"`
	Title          string    `json:"title"`
	Buyer          string    `json:"buyer"`
	SolicitationID string    `json:"solicitation_id"`
	ClosingDate    string    `json:"closing_date"`
	FitScore       int       `json:"fit_score"`
	CreatedAt      time.Time `json:"created_at"`
}
