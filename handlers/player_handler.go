package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hokuto-abe/quiz-grandprix/services"
)

type PlayerHandler struct {
	playerService services.PlayerService
}

func NewPlayerHandler(playerService services.PlayerService) *PlayerHandler {
	return &PlayerHandler{playerService: playerService}
}

type createPlayerRequest struct {
	Name     string `json:"name"`
	NameKana string `json:"name_kana"`
}

func (h *PlayerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createPlayerRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	player, err := h.playerService.CreatePlayer(r.Context(), req.Name, req.NameKana)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, jsonResponse{"player": player}, nil)
}

func (h *PlayerHandler) List(w http.ResponseWriter, r *http.Request) {
	players, err := h.playerService.ListPlayers(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"players": players}, nil)
}

type importResultsRequest struct {
	Entries []services.ResultEntry `json:"entries"`
}

func (h *PlayerHandler) ImportResults(w http.ResponseWriter, r *http.Request) {
	var req importResultsRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	force := r.URL.Query().Get("force") == "1"

	results, err := h.playerService.ImportResults(r.Context(), req.Entries, force)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, jsonResponse{"results": results}, nil)
}

type preferenceRequest struct {
	Choices [4]int `json:"choices"`
}

func (h *PlayerHandler) SetPreference(w http.ResponseWriter, r *http.Request) {
	playerID, err := strconv.Atoi(chi.URLParam(r, "playerID"))
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var req preferenceRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	pref, err := h.playerService.SetPreference(r.Context(), playerID, req.Choices)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"preference": pref}, nil)
}

type preferenceLockRequest struct {
	Locked bool `json:"locked"`
}

func (h *PlayerHandler) SetPreferenceLock(w http.ResponseWriter, r *http.Request) {
	var req preferenceLockRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.playerService.SetPreferenceLock(r.Context(), req.Locked); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"locked": req.Locked}, nil)
}
