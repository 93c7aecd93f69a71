package worker_test

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/dialhub/callqueue/internal/domain"
	"github.com/dialhub/callqueue/internal/repository"
	"github.com/dialhub/callqueue/internal/service"
	"github.com/dialhub/callqueue/internal/worker"
)

func TestReclaimWorker_Sweep(t *testing.T) {
	queue := repository.NewMockQueueRepository()
	ctx := context.Background()

	now := time.Now().UTC()
	if _, err := queue.InsertEntries(ctx, []*domain.QueueEntry{
		{ID: "e1", CampaignID: "camp-1", ContactID: "c1", AccountID: "a1",
			AgentID: "agent-1", State: domain.StateQueued, CreatedAt: now},
		{ID: "e2", CampaignID: "camp-1", ContactID: "c2", AccountID: "a1",
			AgentID: "agent-1", State: domain.StateQueued, CreatedAt: now.Add(time.Second)},
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	// e1 gets an already-expired lease, e2 a live one.
	expired, _, err := queue.PullNext(ctx, "agent-1", "camp-1", -time.Minute)
	if err != nil {
		t.Fatalf("pull: %v", err)
	}
	live, _, err := queue.PullNext(ctx, "agent-1", "camp-1", 15*time.Minute)
	if err != nil {
		t.Fatalf("pull: %v", err)
	}

	var reclaimed int
	w := worker.NewReclaimWorker(queue, time.Minute, zap.NewNop(), func(count int) {
		reclaimed += count
	})

	w.Sweep(ctx)
	if reclaimed != 1 {
		t.Fatalf("expected 1 reclaimed lease, got %d", reclaimed)
	}

	got, _ := queue.GetByID(ctx, expired.ID)
	if got.State != domain.StateQueued || got.LockedBy != nil || got.LockExpiresAt != nil {
		t.Fatalf("expected reclaimed entry back in backlog with cleared lease, got %+v", got)
	}
	if got.LockVersion != 1 {
		t.Fatalf("reclaim must not rewind lock version, got %d", got.LockVersion)
	}

	stillLocked, _ := queue.GetByID(ctx, live.ID)
	if stillLocked.State != domain.StateLocked {
		t.Fatalf("live lease must survive the sweep, got %s", stillLocked.State)
	}

	// The reclaimed entry is pullable again, under a fresh lease version.
	again, ok, err := queue.PullNext(ctx, "agent-1", "camp-1", 15*time.Minute)
	if err != nil || !ok {
		t.Fatalf("re-pull: ok=%v err=%v", ok, err)
	}
	if again.ID != expired.ID {
		t.Fatalf("expected reclaimed entry %s, got %s", expired.ID, again.ID)
	}
	if again.LockVersion != 2 {
		t.Fatalf("expected lock_version=2 on re-lease, got %d", again.LockVersion)
	}

	// Nothing left to reclaim; the hook stays quiet.
	w.Sweep(ctx)
	if reclaimed != 1 {
		t.Fatalf("second sweep reclaimed again: total %d", reclaimed)
	}
}

func TestJobReclaimWorker_Sweep(t *testing.T) {
	queue := repository.NewMockQueueRepository()
	queue.ContactEmails = map[string]string{"c1": "c1@example.com"}
	ctx := context.Background()

	if _, err := queue.InsertEntries(ctx, []*domain.QueueEntry{
		{ID: "e1", CampaignID: "camp-1", ContactID: "c1", AccountID: "a1",
			AgentID: "agent-1", State: domain.StateQueued, CreatedAt: time.Now().UTC()},
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	jobs := repository.NewMockValidationJobRepository()
	svc := service.NewValidationService(jobs, queue, zap.NewNop())

	orphan, err := svc.StartJob(ctx, "agent-1", "camp-1")
	if err != nil {
		t.Fatalf("start job: %v", err)
	}
	if err := jobs.MarkProcessing(ctx, orphan.ID); err != nil {
		t.Fatalf("mark processing: %v", err)
	}
	// Age the heartbeat past the orphan timeout.
	jobs.Jobs[orphan.ID].UpdatedAt = time.Now().UTC().Add(-10 * time.Minute)

	fresh, err := svc.StartJob(ctx, "agent-1", "camp-1")
	if err != nil {
		t.Fatalf("start fresh job: %v", err)
	}
	if err := jobs.MarkProcessing(ctx, fresh.ID); err != nil {
		t.Fatalf("mark processing: %v", err)
	}

	w := worker.NewJobReclaimWorker(jobs, svc, time.Minute, 2*time.Minute, zap.NewNop())
	w.Sweep(ctx)

	resumed, _ := jobs.GetByID(ctx, orphan.ID)
	if resumed.Status != domain.JobCompleted {
		t.Fatalf("expected orphaned job resumed to completion, got %s", resumed.Status)
	}

	untouched, _ := jobs.GetByID(ctx, fresh.ID)
	if untouched.Status != domain.JobProcessing {
		t.Fatalf("job with a live heartbeat must be left alone, got %s", untouched.Status)
	}
}
