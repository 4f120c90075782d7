//go:build !integration

package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"hirehub-ranking/internal/domain/model"
	"hirehub-ranking/internal/infra/logging"
)

func TestStatusUpdateShape(t *testing.T) {
	now := time.Date(2025, 5, 2, 9, 0, 0, 0, time.UTC)
	task, _ := model.NewRankingTask("T1", "J1", 2, now)
	_ = task.RecordSuccess(now)
	task.Fail("scoring service down", now)

	b, err := json.Marshal(newStatusUpdate(task))
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]interface{}
	_ = json.Unmarshal(b, &m)
	if m["type"] != "ranking_status" || m["jobId"] != "J1" || m["status"] != "failed" {
		t.Fatalf("got %s", b)
	}
	if m["progress"].(float64) != 50 || m["error"] != "scoring service down" {
		t.Fatalf("got %s", b)
	}
}

func TestNoopPublisher(t *testing.T) {
	p := NewNoopPublisher(logging.Nop())
	task, _ := model.NewRankingTask("T1", "J1", 0, time.Now())
	if err := p.PublishRankingStatus(context.Background(), task); err != nil {
		t.Fatal(err)
	}
	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
}
