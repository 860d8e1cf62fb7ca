package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hokuto-abe/quiz-grandprix/models"
	"github.com/hokuto-abe/quiz-grandprix/scoring"
	"github.com/hokuto-abe/quiz-grandprix/services"
)

type ScoreHandler struct {
	scoreService services.ScoreService
}

func NewScoreHandler(scoreService services.ScoreService) *ScoreHandler {
	return &ScoreHandler{scoreService: scoreService}
}

type applyOperationRequest struct {
	Kind    models.OperationKind    `json:"kind"`
	Payload models.OperationPayload `json:"payload"`
}

func (h *ScoreHandler) ApplyOperation(w http.ResponseWriter, r *http.Request) {
	matchID, err := strconv.Atoi(chi.URLParam(r, "matchID"))
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var req applyOperationRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	// An undo posted as an operation rolls the tip back instead of
	// growing the chain.
	if req.Kind == models.OpScoreUndo {
		tip, snap, err := h.scoreService.Undo(r.Context(), matchID)
		if err != nil {
			mapServiceErrorToHTTP(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, jsonResponse{"tip": tip, "snapshot": snap}, nil)
		return
	}

	op, snap, err := h.scoreService.ApplyOperation(r.Context(), matchID, req.Kind, req.Payload)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, jsonResponse{"operation": op, "snapshot": snap}, nil)
}

func (h *ScoreHandler) Undo(w http.ResponseWriter, r *http.Request) {
	matchID, err := strconv.Atoi(chi.URLParam(r, "matchID"))
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tip, snap, err := h.scoreService.Undo(r.Context(), matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"tip": tip, "snapshot": snap}, nil)
}

func (h *ScoreHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	matchID, err := strconv.Atoi(chi.URLParam(r, "matchID"))
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	snap, err := h.scoreService.CurrentSnapshot(r.Context(), matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"snapshot": snap}, nil)
}

type freeEditRequest struct {
	Overrides []scoring.SeatOverride `json:"overrides"`
}

func (h *ScoreHandler) FreeEdit(w http.ResponseWriter, r *http.Request) {
	matchID, err := strconv.Atoi(chi.URLParam(r, "matchID"))
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var req freeEditRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	snap, err := h.scoreService.FreeEdit(r.Context(), matchID, req.Overrides)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"snapshot": snap}, nil)
}
