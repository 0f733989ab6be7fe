package domain

import (
	"context"
	"errors"
)

// RunResult reports one batch run. Attempted counts every eligible invoice,
// Sent and Failed partition it.
type RunResult struct {
	Attempted int `json:"attempted"`
	Sent      int `json:"sent"`
	Failed    int `json:"failed"`
}

// Service runs one reminder batch: select overdue invoices eligible for a
// reminder today, notify each in sequence, and record every attempt.
type Service interface {
	Run(ctx context.Context) (RunResult, error)
}

var ErrSenderUnavailable = errors.New("sender_unavailable")
