package handler

import (
	"encoding/json"
	"net/http"

	"github.com/linguahub/api/internal/application/onboarding"
	"github.com/linguahub/api/internal/domain"
	"github.com/linguahub/api/internal/pkg/validate"
	"github.com/linguahub/api/internal/transport/http/middleware"
)

// OnboardingHandler handles the onboarding completion endpoint.
type OnboardingHandler struct {
	svc onboarding.Service
}

func NewOnboardingHandler(svc onboarding.Service) *OnboardingHandler {
	return &OnboardingHandler{svc: svc}
}

// Complete stores the learner's onboarding selections. Missing or malformed
// fields are a 400; success is an empty 204.
func (h *OnboardingHandler) Complete(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req domain.OnboardingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.svc.Complete(r.Context(), claims.UserID, req); err != nil {
		httpError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
