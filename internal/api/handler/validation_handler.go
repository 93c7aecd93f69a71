package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/dialhub/callqueue/internal/service"
)

// ValidationHandler exposes bulk email-validation jobs.
type ValidationHandler struct {
	svc    *service.ValidationService
	logger *zap.Logger
}

func NewValidationHandler(svc *service.ValidationService, logger *zap.Logger) *ValidationHandler {
	return &ValidationHandler{svc: svc, logger: logger}
}

type startJobRequest struct {
	AgentID    string `json:"agent_id"`
	CampaignID string `json:"campaign_id"`
}

// Start handles POST /api/v1/validation-jobs
//
// The job is created synchronously and processed in the background; clients
// poll GET /api/v1/validation-jobs/{id} for progress. A job interrupted by
// a crash is resumed from its checkpoint by the job reclaim worker.
func (h *ValidationHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req startJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	job, err := h.svc.StartJob(r.Context(), req.AgentID, req.CampaignID)
	if err != nil {
		mapError(w, err)
		return
	}

	go func() {
		// Detached from the request context: the job must outlive the
		// HTTP call that started it.
		if err := h.svc.Process(context.Background(), job.ID); err != nil {
			h.logger.Error("validation job processing failed",
				zap.String("job_id", job.ID), zap.Error(err))
		}
	}()

	respondJSON(w, http.StatusAccepted, job)
}

// Get handles GET /api/v1/validation-jobs/{id}
func (h *ValidationHandler) Get(w http.ResponseWriter, r *http.Request) {
	job, err := h.svc.GetJob(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, job)
}
