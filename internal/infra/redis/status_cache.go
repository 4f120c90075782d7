package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"hirehub-ranking/internal/domain"
	"hirehub-ranking/internal/domain/model"
	"hirehub-ranking/internal/domain/ports/repository"
	"hirehub-ranking/internal/infra/metrics"
)

var _ repository.StatusCache = (*StatusCache)(nil)

// StatusCache keeps ranking and resume progress records as JSON strings.
type StatusCache struct {
	client     RedisClient
	statusTTL  time.Duration
	resultsTTL time.Duration
}

func NewStatusCache(client RedisClient, statusTTL, resultsTTL time.Duration) *StatusCache {
	if statusTTL <= 0 {
		statusTTL = 24 * time.Hour
	}
	if resultsTTL <= 0 {
		resultsTTL = 24 * time.Hour
	}
	return &StatusCache{client: client, statusTTL: statusTTL, resultsTTL: resultsTTL}
}

func rankingStatusKey(jobID string) string  { return fmt.Sprintf("ranking:job:%s:status", jobID) }
func rankingResultsKey(jobID string) string { return fmt.Sprintf("ranking:job:%s:results", jobID) }
func resumeStatusKey(resumeID string) string {
	return fmt.Sprintf("resume:processing:%s", resumeID)
}

func (c *StatusCache) SetRankingStatus(ctx context.Context, task *model.RankingTask) error {
	return c.put(ctx, rankingStatusKey(task.JobID), task, c.statusTTL)
}

func (c *StatusCache) GetRankingStatus(ctx context.Context, jobID string) (*model.RankingTask, error) {
	var t model.RankingTask
	if err := c.get(ctx, "ranking_status", rankingStatusKey(jobID), &t); err != nil {
		return nil, err
	}
	t.Source = model.SourceCache
	return &t, nil
}

func (c *StatusCache) DeleteRankingStatus(ctx context.Context, jobID string) error {
	return c.client.Del(ctx, rankingStatusKey(jobID))
}

func (c *StatusCache) SetResults(ctx context.Context, res *model.RankingResults) error {
	return c.put(ctx, rankingResultsKey(res.JobID), res, c.resultsTTL)
}

func (c *StatusCache) GetResults(ctx context.Context, jobID string) (*model.RankingResults, error) {
	var r model.RankingResults
	if err := c.get(ctx, "ranking_results", rankingResultsKey(jobID), &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *StatusCache) SetResumeStatus(ctx context.Context, st *model.ResumeProcessingStatus) error {
	return c.put(ctx, resumeStatusKey(st.ResumeID), st, c.statusTTL)
}

func (c *StatusCache) GetResumeStatus(ctx context.Context, resumeID string) (*model.ResumeProcessingStatus, error) {
	var st model.ResumeProcessingStatus
	if err := c.get(ctx, "resume_status", resumeStatusKey(resumeID), &st); err != nil {
		return nil, err
	}
	return &st, nil
}

func (c *StatusCache) put(ctx context.Context, key string, v interface{}, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, ttl)
}

func (c *StatusCache) get(ctx context.Context, name, key string, v interface{}) error {
	data, err := c.client.Get(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrCacheMiss) {
			metrics.IncCacheRequest(name, "miss")
			return domain.ErrCacheMiss
		}
		metrics.IncCacheRequest(name, "error")
		return err
	}
	if err := json.Unmarshal([]byte(data), v); err != nil {
		// a record we cannot read is as good as absent
		metrics.IncCacheRequest(name, "error")
		return fmt.Errorf("%w: decode %s: %v", domain.ErrCacheMiss, key, err)
	}
	metrics.IncCacheRequest(name, "hit")
	return nil
}
