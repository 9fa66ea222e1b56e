package calls

import (
	"context"
	"testing"
	"time"
)

func TestSummarize_CountsByStatusAndDuration(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	seed := []Call{
		{From: "+1555", To: "+1666", Status: CallStatusCompleted, DurationSeconds: 60, RecordingURL: "https://api.twilio.example/rec/1", CreatedAt: base.Add(time.Hour)},
		{From: "+1555", To: "+1666", Status: CallStatusCompleted, DurationSeconds: 30, CreatedAt: base.Add(2 * time.Hour)},
		{From: "+1555", To: "+1666", Status: CallStatusNoAnswer, CreatedAt: base.Add(3 * time.Hour)},
		// Outside the window, must not count.
		{From: "+1555", To: "+1666", Status: CallStatusCompleted, DurationSeconds: 999, CreatedAt: base.Add(48 * time.Hour)},
	}
	for _, c := range seed {
		if err := repo.Record(ctx, c); err != nil {
			t.Fatalf("record failed: %v", err)
		}
	}

	sum, err := Summarize(ctx, repo, base, base.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if sum.TotalCalls != 3 || sum.CompletedCalls != 2 || sum.NoAnswerCalls != 1 {
		t.Fatalf("unexpected counts: %+v", sum)
	}
	if sum.RecordedCalls != 1 {
		t.Fatalf("expected 1 recorded call, got %d", sum.RecordedCalls)
	}
	if sum.TotalDurationSeconds != 90 || sum.AverageDurationSeconds != 30 {
		t.Fatalf("unexpected durations: %+v", sum)
	}
}

func TestSummarize_RejectsInvalidRange(t *testing.T) {
	repo := NewMemoryRepo()
	now := time.Now()
	if _, err := Summarize(context.Background(), repo, now, now); err != ErrInvalidRange {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
}

func TestRecord_RequiresAParty(t *testing.T) {
	repo := NewMemoryRepo()
	if err := repo.Record(context.Background(), Call{}); err != ErrInvalidCall {
		t.Fatalf("expected ErrInvalidCall, got %v", err)
	}
}

func TestFromProviderStatus(t *testing.T) {
	if FromProviderStatus("no-answer") != CallStatusNoAnswer {
		t.Fatalf("expected no-answer mapping")
	}
	if FromProviderStatus("") != CallStatusCompleted {
		t.Fatalf("expected unknown status to default to completed")
	}
}
