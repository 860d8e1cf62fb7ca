package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hokuto-abe/quiz-grandprix/services"
)

type MatchmakingHandler struct {
	matchmakingService services.MatchmakingService
}

func NewMatchmakingHandler(matchmakingService services.MatchmakingService) *MatchmakingHandler {
	return &MatchmakingHandler{matchmakingService: matchmakingService}
}

func (h *MatchmakingHandler) Run(w http.ResponseWriter, r *http.Request) {
	roundID, err := strconv.Atoi(chi.URLParam(r, "roundID"))
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	force := r.URL.Query().Get("force") == "1"

	plan, err := h.matchmakingService.Run(r.Context(), roundID, force)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, jsonResponse{"plan": plan}, nil)
}
