package handler

import (
	"encoding/json"
	"net/http"

	"github.com/linguahub/api/internal/application/auth"
	"github.com/linguahub/api/internal/pkg/validate"
)

// EmailConfirmHandler handles the email verification flow: resending the
// code and redeeming either the typed code or the emailed link.
type EmailConfirmHandler struct {
	svc auth.Service
}

func NewEmailConfirmHandler(svc auth.Service) *EmailConfirmHandler {
	return &EmailConfirmHandler{svc: svc}
}

// Resend re-issues the verification email. The response is identical whether
// or not the address has an account.
func (h *EmailConfirmHandler) Resend(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email" validate:"required,email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := h.svc.ResendVerification(r.Context(), req.Email); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "verification email sent"})
}

// VerifyCode redeems the typed 6-digit code.
func (h *EmailConfirmHandler) VerifyCode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email" validate:"required,email"`
		Code  string `json:"code" validate:"required,len=6,numeric"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := h.svc.VerifyEmailCode(r.Context(), req.Email, req.Code); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "email confirmed"})
}

// VerifyLink redeems the token carried in the emailed confirmation link.
// The link is a GET so it can be opened straight from a mail client.
func (h *EmailConfirmHandler) VerifyLink(w http.ResponseWriter, r *http.Request) {
	uid := r.URL.Query().Get("uid")
	token := r.URL.Query().Get("token")
	if uid == "" || token == "" {
		writeError(w, http.StatusBadRequest, "uid and token required")
		return
	}
	if err := h.svc.VerifyEmailLink(r.Context(), uid, token); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "email confirmed"})
}
