package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hokuto-abe/quiz-grandprix/services"
)

type RoundHandler struct {
	dashboardService services.DashboardService
	archiveService   services.ArchiveService
}

func NewRoundHandler(dashboardService services.DashboardService, archiveService services.ArchiveService) *RoundHandler {
	return &RoundHandler{dashboardService: dashboardService, archiveService: archiveService}
}

func (h *RoundHandler) ListRounds(w http.ResponseWriter, r *http.Request) {
	rounds, err := h.dashboardService.ListRounds(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"rounds": rounds}, nil)
}

func (h *RoundHandler) GetRoundOverview(w http.ResponseWriter, r *http.Request) {
	roundID, err := strconv.Atoi(chi.URLParam(r, "roundID"))
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	overview, err := h.dashboardService.GetRoundOverview(r.Context(), roundID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, overview, nil)
}

func (h *RoundHandler) GetMatch(w http.ResponseWriter, r *http.Request) {
	matchID, err := strconv.Atoi(chi.URLParam(r, "matchID"))
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	view, err := h.dashboardService.GetMatchView(r.Context(), matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view, nil)
}

func (h *RoundHandler) Archive(w http.ResponseWriter, r *http.Request) {
	roundID, err := strconv.Atoi(chi.URLParam(r, "roundID"))
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	url, err := h.archiveService.ArchiveRound(r.Context(), roundID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, jsonResponse{"url": url}, nil)
}
