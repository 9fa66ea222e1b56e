package calls

import (
	"context"
	"errors"
	"time"
)

var ErrInvalidRange = errors.New("calls: invalid time range")

// Summary aggregates the call log over a time window.
type Summary struct {
	TotalCalls             int `json:"total_calls"`
	CompletedCalls         int `json:"completed_calls"`
	FailedCalls            int `json:"failed_calls"`
	NoAnswerCalls          int `json:"no_answer_calls"`
	BusyCalls              int `json:"busy_calls"`
	CanceledCalls          int `json:"canceled_calls"`
	RecordedCalls          int `json:"recorded_calls"`
	TotalDurationSeconds   int `json:"total_duration_seconds"`
	AverageDurationSeconds int `json:"average_duration_seconds"`
}

// Summarize computes call counts and durations for [from, to).
func Summarize(ctx context.Context, repo Repository, from, to time.Time) (Summary, error) {
	if from.IsZero() || to.IsZero() || !to.After(from) {
		return Summary{}, ErrInvalidRange
	}
	rows, err := repo.List(ctx, from, to)
	if err != nil {
		return Summary{}, err
	}

	var out Summary
	for _, c := range rows {
		out.TotalCalls++
		out.TotalDurationSeconds += c.DurationSeconds
		if c.RecordingURL != "" {
			out.RecordedCalls++
		}
		switch c.Status {
		case CallStatusCompleted:
			out.CompletedCalls++
		case CallStatusFailed:
			out.FailedCalls++
		case CallStatusNoAnswer:
			out.NoAnswerCalls++
		case CallStatusBusy:
			out.BusyCalls++
		case CallStatusCanceled:
			out.CanceledCalls++
		}
	}
	if out.TotalCalls > 0 {
		out.AverageDurationSeconds = out.TotalDurationSeconds / out.TotalCalls
	}
	return out, nil
}
