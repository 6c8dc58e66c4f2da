package admin

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"wildstep/internal/game"
)

// commandTimeout bounds how long a modifier change waits for the next tick.
const commandTimeout = 2 * time.Second

// HealthResponse is the body of /healthz.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Online  int    `json:"online"`
}

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

type handlers struct {
	players  Players
	validate *validator.Validate
	version  string
	log      *slog.Logger
}

func (h *handlers) healthz(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, HealthResponse{Status: "ok", Version: h.version, Online: h.players.Online()})
}

func (h *handlers) listPlayers(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.players.Statuses())
}

func (h *handlers) getPlayer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	for _, st := range h.players.Statuses() {
		if st.ID == id {
			respondJSON(w, http.StatusOK, st)
			return
		}
	}
	respondError(w, http.StatusNotFound, "player not online")
}

func (h *handlers) updateModifiers(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req game.ModifierUpdate
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req == (game.ModifierUpdate{}) {
		respondError(w, http.StatusBadRequest, "no modifiers given")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, "multiplier must be in (0, 100]")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), commandTimeout)
	defer cancel()
	switch err := h.players.UpdateModifiers(ctx, id, req); {
	case errors.Is(err, game.ErrUnknownPlayer):
		respondError(w, http.StatusNotFound, "player not online")
		return
	case errors.Is(err, context.DeadlineExceeded):
		h.log.Warn("modifier update timed out", "player", id)
		respondError(w, http.StatusServiceUnavailable, "game loop busy")
		return
	case err != nil:
		h.log.Error("modifier update failed", "player", id, "error", err)
		respondError(w, http.StatusInternalServerError, "update failed")
		return
	}

	h.log.Info("modifiers updated", "player", id)
	h.getPlayer(w, r)
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Error: message})
}
