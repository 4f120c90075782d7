package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound        = errors.New("entity not found")
	ErrAlreadyExists   = errors.New("entity already exists")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")

	// Ranking
	ErrRankingInProgress = errors.New("ranking already in progress for this job")
	ErrTaskNotFound      = errors.New("task not found")
	ErrTerminalStatus    = errors.New("task already in a terminal status")
	ErrRankingSuperseded = errors.New("ranking run no longer owns the job")
	ErrAllScoringFailed  = errors.New("every scoring call failed")
	ErrQueueFull         = errors.New("worker queue full")

	// Infrastructure
	ErrCacheMiss          = errors.New("cache miss")
	ErrLockNotAcquired    = errors.New("lock not acquired")
	ErrLockLost           = errors.New("lock no longer held")
	ErrInvalidExecContext = errors.New("invalid execution context")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
	ErrScoringFailed      = errors.New("scoring service failed")
	ErrInvalidScoreOutput = errors.New("scoring service returned invalid output")
	ErrResumeUnavailable  = errors.New("resume content unavailable")
)
