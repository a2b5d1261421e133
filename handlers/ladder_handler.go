package handlers

import (
	"net/http"

	"github.com/courtside/club-system/services"
)

type LadderHandler struct {
	ladderService services.LadderService
	matchService  services.LadderMatchService
}

func NewLadderHandler(ladderService services.LadderService, matchService services.LadderMatchService) *LadderHandler {
	return &LadderHandler{
		ladderService: ladderService,
		matchService:  matchService,
	}
}

// CreateHandler handles POST /ladders.
func (h *LadderHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	var input services.CreateLadderInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	ladder, err := h.ladderService.CreateLadder(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"ladder": ladder}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListHandler handles GET /ladders.
func (h *LadderHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	ladders, err := h.ladderService.ListLadders(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"ladders": ladders}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetByIDHandler handles GET /ladders/{ladderID}.
func (h *LadderHandler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "ladderID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	ladder, err := h.ladderService.GetLadder(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"ladder": ladder}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// JoinHandler handles POST /ladders/{ladderID}/members.
func (h *LadderHandler) JoinHandler(w http.ResponseWriter, r *http.Request) {
	ladderID, err := getIDFromURL(r, "ladderID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		PlayerID int `json:"player_id"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.ladderService.Join(r.Context(), ladderID, input.PlayerID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"joined": true}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// LeaveHandler handles DELETE /ladders/{ladderID}/members/{playerID}.
func (h *LadderHandler) LeaveHandler(w http.ResponseWriter, r *http.Request) {
	ladderID, err := getIDFromURL(r, "ladderID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	playerID, err := getIDFromURL(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.ladderService.Leave(r.Context(), ladderID, playerID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RankingsHandler handles GET /ladders/{ladderID}/rankings.
func (h *LadderHandler) RankingsHandler(w http.ResponseWriter, r *http.Request) {
	ladderID, err := getIDFromURL(r, "ladderID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	rankings, err := h.ladderService.Rankings(r.Context(), ladderID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"rankings": rankings}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RecordMatchHandler handles POST /ladders/{ladderID}/matches.
func (h *LadderHandler) RecordMatchHandler(w http.ResponseWriter, r *http.Request) {
	ladderID, err := getIDFromURL(r, "ladderID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var cmd services.RecordLadderMatchCommand
	if err := readJSON(w, r, &cmd); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	cmd.LadderID = ladderID

	match, err := h.matchService.RecordMatch(r.Context(), cmd)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListMatchesHandler handles GET /ladders/{ladderID}/matches.
func (h *LadderHandler) ListMatchesHandler(w http.ResponseWriter, r *http.Request) {
	ladderID, err := getIDFromURL(r, "ladderID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	matches, err := h.matchService.ListMatches(r.Context(), ladderID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
