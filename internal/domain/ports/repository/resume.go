package repository

import (
	"context"
	"time"

	"hirehub-ranking/internal/domain/model"
)

type ResumeRepository interface {
	FindByID(ctx context.Context, tx Tx, id string) (*model.Resume, error)
	UpdateProcessing(ctx context.Context, tx Tx, id string, status model.ResumeStatus, reason string, at time.Time) error
	SaveParsedText(ctx context.Context, tx Tx, id, text string, at time.Time) error
}
