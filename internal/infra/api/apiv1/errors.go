package apiv1

import (
	"errors"
	"net/http"

	"hirehub-ranking/internal/domain"
)

var errorStatus = []struct {
	err  error
	code int
}{
	{domain.ErrInvalidArgument, http.StatusBadRequest},
	{domain.ErrUnauthorized, http.StatusUnauthorized},
	{domain.ErrForbidden, http.StatusForbidden},
	{domain.ErrNotFound, http.StatusNotFound},
	{domain.ErrTaskNotFound, http.StatusNotFound},
	{domain.ErrRankingInProgress, http.StatusConflict},
	{domain.ErrQueueFull, http.StatusServiceUnavailable},
	{domain.ErrResumeUnavailable, http.StatusServiceUnavailable},
}

// statusFor maps a domain error to its HTTP status and client message.
// Anything unrecognised is a 500 whose detail stays in the logs.
func statusFor(err error) (int, string) {
	for _, m := range errorStatus {
		if errors.Is(err, m.err) {
			return m.code, m.err.Error()
		}
	}
	return http.StatusInternalServerError, "internal error"
}
