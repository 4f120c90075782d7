package events

import (
	"context"

	"github.com/rs/zerolog"

	"hirehub-ranking/internal/domain/model"
	"hirehub-ranking/internal/domain/ports/adapter"
)

var _ adapter.StatusPublisher = (*NoopPublisher)(nil)

// NoopPublisher is used when no broker is configured. It only logs.
type NoopPublisher struct {
	log *zerolog.Logger
}

func NewNoopPublisher(logger *zerolog.Logger) *NoopPublisher {
	return &NoopPublisher{log: logger}
}

func (n *NoopPublisher) PublishRankingStatus(ctx context.Context, task *model.RankingTask) error {
	n.log.Debug().Str("job_id", task.JobID).Str("task_id", task.TaskID).
		Str("status", string(task.Status)).Int("progress", task.Progress).Msg("ranking status (no broker)")
	return nil
}

func (n *NoopPublisher) Close() error { return nil }
