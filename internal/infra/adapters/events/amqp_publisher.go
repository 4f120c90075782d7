package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"hirehub-ranking/internal/domain/model"
	"hirehub-ranking/internal/domain/ports/adapter"
	"hirehub-ranking/internal/infra/metrics"
)

var _ adapter.StatusPublisher = (*AMQPPublisher)(nil)

// StatusUpdate is the message other services consume from the status queue.
type StatusUpdate struct {
	Type      string              `json:"type"`
	JobID     string              `json:"jobId"`
	TaskID    string              `json:"taskId"`
	Status    model.RankingStatus `json:"status"`
	Progress  int                 `json:"progress"`
	Processed int                 `json:"processed"`
	Failed    int                 `json:"failed"`
	Total     int                 `json:"total"`
	Error     string              `json:"error,omitempty"`
	Timestamp time.Time           `json:"timestamp"`
}

func newStatusUpdate(task *model.RankingTask) StatusUpdate {
	return StatusUpdate{
		Type:      "ranking_status",
		JobID:     task.JobID,
		TaskID:    task.TaskID,
		Status:    task.Status,
		Progress:  task.Progress,
		Processed: task.Processed,
		Failed:    task.Failed,
		Total:     task.Total,
		Error:     task.Error,
		Timestamp: task.UpdatedAt,
	}
}

// AMQPPublisher writes persistent status messages to a durable queue.
type AMQPPublisher struct {
	mu    sync.Mutex
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string
	log   *zerolog.Logger
}

func NewAMQPPublisher(url, queue string, logger *zerolog.Logger) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("amqp dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("amqp channel: %w", err)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare queue %s: %w", queue, err)
	}
	pl := logger.With().Str("component", "AMQPPublisher").Str("queue", queue).Logger()
	return &AMQPPublisher{conn: conn, ch: ch, queue: queue, log: &pl}, nil
}

func (p *AMQPPublisher) PublishRankingStatus(ctx context.Context, task *model.RankingTask) error {
	body, err := json.Marshal(newStatusUpdate(task))
	if err != nil {
		return err
	}
	// amqp channels are not safe for concurrent publishes
	p.mu.Lock()
	err = p.ch.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    task.UpdatedAt,
		MessageId:    task.TaskID,
		Body:         body,
	})
	p.mu.Unlock()
	metrics.IncEventPublished(err == nil)
	if err != nil {
		p.log.Warn().Err(err).Str("job_id", task.JobID).Msg("publish ranking status failed")
		return fmt.Errorf("publish ranking status: %w", err)
	}
	return nil
}

func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
