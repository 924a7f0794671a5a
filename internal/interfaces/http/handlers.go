package http

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/chainmagnet/chainmagnet/internal/votes"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	token := mux.Vars(r)["token"]

	score, err := s.service.GetScore(r.Context(), token)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, score)
}

func (s *Server) handleDiscovery(w http.ResponseWriter, r *http.Request) {
	tokens, err := s.service.GetDiscoveryList(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"target_chain": s.service.TargetChain(),
		"count":        len(tokens),
		"tokens":       tokens,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"providers": s.service.HealthSnapshot(),
	})
}

func (s *Server) handleCastVote(w http.ResponseWriter, r *http.Request) {
	token := mux.Vars(r)["token"]

	total, err := s.service.Votes().Cast(r.Context(), token)
	if err == votes.ErrDisabled {
		writeError(w, http.StatusServiceUnavailable, "voting is not configured")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"token": token, "votes": total})
}

func (s *Server) handleVoteCount(w http.ResponseWriter, r *http.Request) {
	token := mux.Vars(r)["token"]

	total, err := s.service.Votes().Count(r.Context(), token)
	if err == votes.ErrDisabled {
		writeError(w, http.StatusServiceUnavailable, "voting is not configured")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"token": token, "votes": total})
}
