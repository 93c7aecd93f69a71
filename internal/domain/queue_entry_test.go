package domain_test

import (
	"testing"

	"github.com/dialhub/callqueue/internal/domain"
)

func TestPopulateRequest_Validate(t *testing.T) {
	valid := domain.PopulateRequest{
		AgentID:    "agent-1",
		CampaignID: "campaign-1",
		Limit:      100,
	}

	t.Run("valid request passes", func(t *testing.T) {
		if err := valid.Validate(); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("missing agent", func(t *testing.T) {
		r := valid
		r.AgentID = ""
		if err := r.Validate(); err != domain.ErrInvalidAgent {
			t.Fatalf("expected ErrInvalidAgent, got %v", err)
		}
	})

	t.Run("missing campaign", func(t *testing.T) {
		r := valid
		r.CampaignID = ""
		if err := r.Validate(); err != domain.ErrInvalidCampaign {
			t.Fatalf("expected ErrInvalidCampaign, got %v", err)
		}
	})

	t.Run("negative limit", func(t *testing.T) {
		r := valid
		r.Limit = -1
		if err := r.Validate(); err != domain.ErrInvalidLimit {
			t.Fatalf("expected ErrInvalidLimit, got %v", err)
		}
	})

	t.Run("limit too large", func(t *testing.T) {
		r := valid
		r.Limit = 10001
		if err := r.Validate(); err != domain.ErrInvalidLimit {
			t.Fatalf("expected ErrInvalidLimit, got %v", err)
		}
	})

	t.Run("zero limit means default", func(t *testing.T) {
		r := valid
		r.Limit = 0
		if err := r.Validate(); err != nil {
			t.Fatalf("expected no error for zero limit, got %v", err)
		}
	})
}

func TestQueueState(t *testing.T) {
	terminal := map[domain.QueueState]bool{
		domain.StateQueued:     false,
		domain.StateLocked:     false,
		domain.StateInProgress: false,
		domain.StateCompleted:  true,
		domain.StateRemoved:    true,
	}
	for state, want := range terminal {
		if !state.IsValid() {
			t.Errorf("state %q should be valid", state)
		}
		if got := state.IsTerminal(); got != want {
			t.Errorf("state %q: IsTerminal() = %v, want %v", state, got, want)
		}
	}
	if domain.QueueState("paused").IsValid() {
		t.Error("unknown state should not be valid")
	}
}

func TestQueueStats_Total(t *testing.T) {
	s := domain.QueueStats{Queued: 3, Locked: 1, InProgress: 2, Completed: 5, Removed: 1}
	if s.Total() != 12 {
		t.Fatalf("expected total=12, got %d", s.Total())
	}
}
