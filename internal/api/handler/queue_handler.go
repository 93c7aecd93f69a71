package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apimw "github.com/dialhub/callqueue/internal/api/middleware"
	"github.com/dialhub/callqueue/internal/domain"
	"github.com/dialhub/callqueue/internal/metrics"
	"github.com/dialhub/callqueue/internal/ratelimiter"
	"github.com/dialhub/callqueue/internal/service"
)

// QueueHandler exposes the work queue's populate, dispatch, and lifecycle
// endpoints to the agent-facing frontend.
type QueueHandler struct {
	svc     *service.QueueService
	limiter *ratelimiter.AgentLimiters
	m       *metrics.Metrics
	logger  *zap.Logger
}

func NewQueueHandler(
	svc *service.QueueService,
	limiter *ratelimiter.AgentLimiters,
	m *metrics.Metrics,
	logger *zap.Logger,
) *QueueHandler {
	return &QueueHandler{svc: svc, limiter: limiter, m: m, logger: logger}
}

// Populate handles POST /api/v1/queue/populate
func (h *QueueHandler) Populate(w http.ResponseWriter, r *http.Request) {
	var req domain.PopulateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	result, err := h.svc.Populate(r.Context(), req)
	if err != nil {
		h.logger.Warn("populate failed",
			zap.String("correlation_id", apimw.GetCorrelationID(r.Context())),
			zap.String("campaign_id", req.CampaignID),
			zap.Error(err),
		)
		mapError(w, err)
		return
	}

	h.m.EntriesPopulated.Add(float64(result.Added))
	h.m.EntriesSkipped.Add(float64(result.Skipped))
	respondJSON(w, http.StatusOK, result)
}

// Pull handles POST /api/v1/queue/pull
//
// Returns 200 with the leased entry, or 204 when the backlog has nothing
// usable this round, which the agent's poll loop treats as "try again".
func (h *QueueHandler) Pull(w http.ResponseWriter, r *http.Request) {
	var req domain.PullRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.AgentID != "" && !h.limiter.Allow(req.AgentID) {
		mapError(w, domain.ErrPullThrottled)
		return
	}

	start := time.Now()
	entry, ok, err := h.svc.PullNext(r.Context(), req)
	h.m.PullLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		mapError(w, err)
		return
	}
	if !ok {
		h.m.PullsTotal.WithLabelValues("miss").Inc()
		w.WriteHeader(http.StatusNoContent)
		return
	}

	h.m.PullsTotal.WithLabelValues("hit").Inc()
	respondJSON(w, http.StatusOK, entry)
}

// lifecycleRequest is the shared body for entry transition endpoints.
type lifecycleRequest struct {
	AgentID string `json:"agent_id"`
	Reason  string `json:"reason,omitempty"`
}

// MarkInProgress handles POST /api/v1/queue/entries/{id}/progress
func (h *QueueHandler) MarkInProgress(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "in_progress", func(req lifecycleRequest, id string) error {
		return h.svc.MarkInProgress(r.Context(), id, req.AgentID)
	})
}

// MarkCompleted handles POST /api/v1/queue/entries/{id}/complete
func (h *QueueHandler) MarkCompleted(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "completed", func(req lifecycleRequest, id string) error {
		return h.svc.MarkCompleted(r.Context(), id, req.AgentID)
	})
}

// Remove handles POST /api/v1/queue/entries/{id}/remove
func (h *QueueHandler) Remove(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "removed", func(req lifecycleRequest, id string) error {
		return h.svc.RemoveFromQueue(r.Context(), id, req.AgentID, req.Reason)
	})
}

// Release handles POST /api/v1/queue/entries/{id}/release
func (h *QueueHandler) Release(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "released", func(req lifecycleRequest, id string) error {
		return h.svc.ReleaseLock(r.Context(), id, req.AgentID)
	})
}

func (h *QueueHandler) transition(
	w http.ResponseWriter,
	r *http.Request,
	name string,
	apply func(req lifecycleRequest, entryID string) error,
) {
	entryID := chi.URLParam(r, "id")

	var req lifecycleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.AgentID == "" {
		mapError(w, domain.ErrInvalidAgent)
		return
	}

	if err := apply(req, entryID); err != nil {
		mapError(w, err)
		return
	}

	h.m.LifecycleTotal.WithLabelValues(name).Inc()
	w.WriteHeader(http.StatusNoContent)
}

// Boost handles POST /api/v1/queue/entries/{id}/boost
func (h *QueueHandler) Boost(w http.ResponseWriter, r *http.Request) {
	entryID := chi.URLParam(r, "id")
	if err := h.svc.BoostPriority(r.Context(), entryID); err != nil {
		mapError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Stats handles GET /api/v1/queue/stats?agent_id=&campaign_id=
func (h *QueueHandler) Stats(w http.ResponseWriter, r *http.Request) {
	agentID, campaignID, ok := agentCampaignParams(w, r)
	if !ok {
		return
	}
	stats, err := h.svc.Stats(r.Context(), agentID, campaignID)
	if err != nil {
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

// ClearCompleted handles DELETE /api/v1/queue/completed?agent_id=&campaign_id=
func (h *QueueHandler) ClearCompleted(w http.ResponseWriter, r *http.Request) {
	agentID, campaignID, ok := agentCampaignParams(w, r)
	if !ok {
		return
	}
	removed, err := h.svc.ClearCompleted(r.Context(), agentID, campaignID)
	if err != nil {
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int{"removed": removed})
}

// List handles GET /api/v1/queue?agent_id=&campaign_id=&include_completed=
func (h *QueueHandler) List(w http.ResponseWriter, r *http.Request) {
	agentID, campaignID, ok := agentCampaignParams(w, r)
	if !ok {
		return
	}
	includeCompleted := r.URL.Query().Get("include_completed") == "true"

	items, err := h.svc.AgentQueue(r.Context(), agentID, campaignID, includeCompleted)
	if err != nil {
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"data":  items,
		"total": len(items),
	})
}

func agentCampaignParams(w http.ResponseWriter, r *http.Request) (agentID, campaignID string, ok bool) {
	q := r.URL.Query()
	agentID = q.Get("agent_id")
	campaignID = q.Get("campaign_id")
	if agentID == "" {
		mapError(w, domain.ErrInvalidAgent)
		return "", "", false
	}
	if campaignID == "" {
		mapError(w, domain.ErrInvalidCampaign)
		return "", "", false
	}
	return agentID, campaignID, true
}
