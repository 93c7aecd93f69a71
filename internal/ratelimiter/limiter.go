package ratelimiter

import (
	"sync"

	"golang.org/x/time/rate"
)

// AgentLimiters holds one token bucket per polling agent, created lazily on
// first pull. Each limiter enforces a steady-state pull rate; burst equals
// the rate so an agent cannot save up tokens and hammer the dequeue path.
//
// Pulls never block; a throttled agent gets a 429 and its poll loop retries
// later, so the limiter exposes Allow rather than Wait.
type AgentLimiters struct {
	mu         sync.Mutex
	limiters   map[string]*rate.Limiter
	ratePerSec int
}

// New creates an AgentLimiters granting ratePerSec pulls per second per agent.
func New(ratePerSec int) *AgentLimiters {
	return &AgentLimiters{
		limiters:   make(map[string]*rate.Limiter),
		ratePerSec: ratePerSec,
	}
}

// Allow reports whether the agent may pull right now.
func (al *AgentLimiters) Allow(agentID string) bool {
	al.mu.Lock()
	l, ok := al.limiters[agentID]
	if !ok {
		l = rate.NewLimiter(rate.Limit(al.ratePerSec), al.ratePerSec)
		al.limiters[agentID] = l
	}
	al.mu.Unlock()
	return l.Allow()
}
