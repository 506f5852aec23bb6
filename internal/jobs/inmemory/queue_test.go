package inmemory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/findash/findash/internal/domain"
	"github.com/findash/findash/internal/jobs"
)

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestQueue_PublishAndProcess(t *testing.T) {
	store := NewStore()
	q := NewQueue(10, store)
	defer q.Close()

	var mu sync.Mutex
	var handled []string
	handler := func(ctx context.Context, job jobs.Job) error {
		mu.Lock()
		handled = append(handled, job.GetID())
		mu.Unlock()
		return nil
	}

	if err := q.Start(context.Background(), handler); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	job := &jobs.ReportJob{
		UserID:    "user-1",
		Email:     "user@example.com",
		Frequency: domain.FrequencyWeekly,
	}
	if err := q.PublishReport(context.Background(), job); err != nil {
		t.Fatalf("PublishReport failed: %v", err)
	}
	if job.JobID == "" {
		t.Fatal("expected a generated job id")
	}

	waitFor(t, 2*time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(handled) == 1
	})

	waitFor(t, 2*time.Second, func() bool {
		stored, err := store.GetJob(context.Background(), job.JobID)
		return err == nil && stored.Status == jobs.JobStatusCompleted
	})
}

func TestQueue_RetriesThenFails(t *testing.T) {
	store := NewStore()
	q := NewQueue(10, store)
	defer q.Close()

	var mu sync.Mutex
	attempts := 0
	handler := func(ctx context.Context, job jobs.Job) error {
		mu.Lock()
		attempts++
		mu.Unlock()
		return fmt.Errorf("report generation down")
	}

	if err := q.Start(context.Background(), handler); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	job := &jobs.ReportJob{
		UserID:     "user-1",
		Email:      "user@example.com",
		Frequency:  domain.FrequencyMonthly,
		MaxRetries: 2,
	}
	if err := q.PublishReport(context.Background(), job); err != nil {
		t.Fatalf("PublishReport failed: %v", err)
	}

	// Initial attempt plus two retries with linear backoff.
	waitFor(t, 10*time.Second, func() bool {
		stored, err := store.GetJob(context.Background(), job.JobID)
		return err == nil && stored.Status == jobs.JobStatusFailed
	})

	mu.Lock()
	got := attempts
	mu.Unlock()
	if got != 3 {
		t.Errorf("attempts = %d, want 3", got)
	}
}

func TestQueue_RetryAfterStopMarksFailed(t *testing.T) {
	store := NewStore()
	q := NewQueue(10, store)

	handler := func(ctx context.Context, job jobs.Job) error {
		return fmt.Errorf("report generation down")
	}
	if err := q.Start(context.Background(), handler); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	job := &jobs.ReportJob{
		UserID:     "user-1",
		Email:      "user@example.com",
		Frequency:  domain.FrequencyWeekly,
		MaxRetries: 3,
	}
	if err := q.PublishReport(context.Background(), job); err != nil {
		t.Fatalf("PublishReport failed: %v", err)
	}

	// Wait for the first failure to schedule a retry, then stop the queue
	// before the backoff timer fires.
	waitFor(t, 2*time.Second, func() bool {
		stored, err := store.GetJob(context.Background(), job.JobID)
		return err == nil && stored.Status == jobs.JobStatusRetrying
	})
	if err := q.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	// The republish hits the closed queue; the job must not stay in
	// retrying forever.
	waitFor(t, 3*time.Second, func() bool {
		stored, err := store.GetJob(context.Background(), job.JobID)
		return err == nil && stored.Status == jobs.JobStatusFailed
	})
}

func TestQueue_ClosedRejectsPublish(t *testing.T) {
	q := NewQueue(1, nil)
	if err := q.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	err := q.PublishReport(context.Background(), &jobs.ReportJob{UserID: "u"})
	if err == nil {
		t.Error("expected error publishing to a closed queue")
	}
}

func TestStore_ListJobsFiltering(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	seed := []*jobs.ReportJob{
		{JobID: "a", UserID: "user-1", Status: jobs.JobStatusCompleted},
		{JobID: "b", UserID: "user-1", Status: jobs.JobStatusFailed},
		{JobID: "c", UserID: "user-2", Status: jobs.JobStatusCompleted},
	}
	for _, job := range seed {
		if err := store.SaveJob(ctx, job); err != nil {
			t.Fatalf("SaveJob failed: %v", err)
		}
	}

	byUser, err := store.ListJobs(ctx, jobs.JobFilter{UserID: "user-1"})
	if err != nil {
		t.Fatalf("ListJobs failed: %v", err)
	}
	if len(byUser) != 2 {
		t.Errorf("user filter returned %d jobs, want 2", len(byUser))
	}

	failed, err := store.ListJobs(ctx, jobs.JobFilter{Status: jobs.JobStatusFailed})
	if err != nil {
		t.Fatalf("ListJobs failed: %v", err)
	}
	if len(failed) != 1 || failed[0].JobID != "b" {
		t.Errorf("status filter returned %+v", failed)
	}
}
