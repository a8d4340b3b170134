package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"

	"github.com/duetlabs/duet/internal/apperr"
	"github.com/duetlabs/duet/internal/credential"
)

// clientKey derives the throttle key for a request: the client IP without
// the port. The RealIP middleware has already rewritten RemoteAddr when the
// request came through a trusted proxy.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// VerifyPIN handles POST /verify-pin. On success it issues a session whose
// role the submitted PIN resolved to.
func (h *Handler) VerifyPIN(w http.ResponseWriter, r *http.Request) {
	var req verifyPINRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, detailBody("invalid JSON body"))
		return
	}

	key := clientKey(r)
	if !h.throttle.Allow(key) {
		h.writeCredentialError(w, apperr.ErrTooManyAttempts)
		return
	}

	role, err := h.resolver.Resolve(req.PIN)
	switch {
	case errors.Is(err, apperr.ErrInvalidFormat):
		// No secret was compared; the message may name the format rule.
		writeJSON(w, http.StatusBadRequest, detailBody("PIN must be exactly 4 digits"))
		return
	case errors.Is(err, apperr.ErrUnauthorized):
		h.throttle.Fail(key)
		writeJSON(w, http.StatusUnauthorized, detailBody(msgInvalidPIN))
		return
	case err != nil:
		slog.Error("verify pin failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, detailBody("internal error"))
		return
	}

	h.throttle.Succeed(key)
	sess := h.sessions.Issue(role)
	writeJSON(w, http.StatusOK, verifyPINResponse{Role: wireRole(role), Token: sess.Token})
}

// ChangePIN handles POST /change-pin (author session required). A success
// revokes every author session, forcing re-authentication with the new PIN.
func (h *Handler) ChangePIN(w http.ResponseWriter, r *http.Request) {
	var req changePINRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, detailBody("invalid JSON body"))
		return
	}

	if err := h.rotation.Rotate(req.OldPIN, req.NewPIN, req.NewLabel); err != nil {
		h.writeCredentialError(w, err)
		return
	}

	h.sessions.RevokeRole(credential.RoleAuthor)
	writeJSON(w, http.StatusOK, map[string]any{
		"message":         "PIN updated successfully",
		"reauth_required": true,
	})
}

// ChangeLabel handles POST /change-label (author session required).
func (h *Handler) ChangeLabel(w http.ResponseWriter, r *http.Request) {
	var req changeLabelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, detailBody("invalid JSON body"))
		return
	}

	if err := h.rotation.ChangeLabel(req.CurrentPIN, req.Label); err != nil {
		h.writeCredentialError(w, err)
		return
	}

	if h.broker != nil {
		h.broker.PublishLabelsEvent()
	}
	writeJSON(w, http.StatusOK, h.labels())
}

// Labels handles GET /labels. Publicly readable; the payload carries no
// secret.
func (h *Handler) Labels(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.labels())
}

// Logout handles POST /logout, revoking the presented session.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Revoke(bearerToken(r))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) labels() labelsResponse {
	return labelsResponse{You: authorLabel, Her: h.credentials.Get().ViewerLabel}
}

// writeCredentialError maps the credential failure taxonomy onto the wire.
// Every PIN-comparison failure carries the same generic message.
func (h *Handler) writeCredentialError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperr.ErrUnauthorized):
		writeJSON(w, http.StatusUnauthorized, detailBody(msgInvalidPIN))
	case errors.Is(err, apperr.ErrInvalidFormat):
		writeJSON(w, http.StatusBadRequest, detailBody("New PIN must be exactly 4 digits"))
	case errors.Is(err, apperr.ErrConflict):
		writeJSON(w, http.StatusBadRequest, detailBody("PIN already in use"))
	case errors.Is(err, apperr.ErrInvalidLabel):
		writeJSON(w, http.StatusBadRequest, detailBody("Label must be 1-20 characters"))
	case errors.Is(err, apperr.ErrTooManyAttempts):
		writeJSON(w, http.StatusTooManyRequests, detailBody("Too many attempts, try again later"))
	default:
		slog.Error("credential update failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, detailBody("internal error"))
	}
}
