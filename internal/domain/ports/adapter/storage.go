package adapter

import (
	"context"

	"hirehub-ranking/internal/domain/model"
)

// BlobStore holds resume files and their parsed renditions.
type BlobStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte, contentType string) error
}

// ResumeParser turns an uploaded resume file into plain text.
type ResumeParser interface {
	Parse(ctx context.Context, fileName string, data []byte) (string, error)
}

// StatusPublisher fans ranking status changes out to other services.
type StatusPublisher interface {
	PublishRankingStatus(ctx context.Context, task *model.RankingTask) error
	Close() error
}
