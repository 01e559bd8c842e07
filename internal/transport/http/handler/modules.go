package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/linguahub/api/internal/application/module"
	"github.com/linguahub/api/internal/application/progress"
	"github.com/linguahub/api/internal/domain"
	"github.com/linguahub/api/internal/pkg/validate"
	"github.com/linguahub/api/internal/transport/http/middleware"
)

// ModuleHandler serves the foundation catalog with per-user progress and the
// admin-only catalog CRUD.
type ModuleHandler struct {
	catalogSvc  module.Service
	progressSvc progress.Service
}

func NewModuleHandler(catalogSvc module.Service, progressSvc progress.Service) *ModuleHandler {
	return &ModuleHandler{catalogSvc: catalogSvc, progressSvc: progressSvc}
}

// List returns the catalog ordered by ordinal, merged with the requesting
// user's lesson progress.
func (h *ModuleHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	statuses, err := h.progressSvc.ListModules(r.Context(), claims.UserID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statuses)
}

// CompleteLesson records one finished lesson inside a module.
func (h *ModuleHandler) CompleteLesson(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req struct {
		Lesson int `json:"lesson"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	p, err := h.progressSvc.CompleteLesson(r.Context(), claims.UserID, chi.URLParam(r, "id"), req.Lesson)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Summary returns the dashboard progress rollup.
func (h *ModuleHandler) Summary(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	sum, err := h.progressSvc.Summary(r.Context(), claims.UserID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (h *ModuleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input domain.ModuleInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&input); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	created, err := h.catalogSvc.Create(r.Context(), input)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *ModuleHandler) Update(w http.ResponseWriter, r *http.Request) {
	var input domain.ModuleInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&input); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	updated, err := h.catalogSvc.Update(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *ModuleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.catalogSvc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "module deleted"})
}
