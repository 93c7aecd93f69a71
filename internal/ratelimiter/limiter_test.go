package ratelimiter_test

import (
	"testing"

	"github.com/dialhub/callqueue/internal/ratelimiter"
)

func TestAgentLimiters_Allow(t *testing.T) {
	al := ratelimiter.New(3)

	for i := 0; i < 3; i++ {
		if !al.Allow("agent-1") {
			t.Fatalf("pull %d should be allowed within burst", i+1)
		}
	}
	if al.Allow("agent-1") {
		t.Fatal("pull past the burst should be throttled")
	}
}

func TestAgentLimiters_PerAgentBuckets(t *testing.T) {
	al := ratelimiter.New(1)

	if !al.Allow("agent-1") {
		t.Fatal("first pull for agent-1 should be allowed")
	}
	if al.Allow("agent-1") {
		t.Fatal("second immediate pull for agent-1 should be throttled")
	}
	// Another agent has its own bucket and is unaffected.
	if !al.Allow("agent-2") {
		t.Fatal("first pull for agent-2 should be allowed")
	}
}
