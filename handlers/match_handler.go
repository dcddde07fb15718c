package handlers

import (
	"errors"
	"net/http"

	"github.com/Dosada05/badminton-community/services"
)

type MatchHandler struct {
	resultService services.MatchResultService
}

func NewMatchHandler(rs services.MatchResultService) *MatchHandler {
	return &MatchHandler{resultService: rs}
}

// SubmitResult godoc
// @Summary Submit a match result
// @Tags results
// @Description The submitter must be one of the players. Neither player is confirmed yet.
// @Accept json
// @Produce json
// @Param input body services.SubmitResultInput true "Result"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Security BearerAuth
// @Router /results [post]
func (h *MatchHandler) SubmitResult(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}

	var input services.SubmitResultInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.resultService.SubmitResult(r.Context(), actor.UserID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"result": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ConfirmResult godoc
// @Summary Confirm a match result
// @Tags results
// @Description Settlement runs once both players have confirmed. Repeating the call is safe.
// @Produce json
// @Param resultID path int true "Result ID"
// @Success 200 {object} map[string]interface{} "success, confirmed, message"
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string "Settlement failed, retry"
// @Security BearerAuth
// @Router /results/{resultID}/confirm [post]
func (h *MatchHandler) ConfirmResult(w http.ResponseWriter, r *http.Request) {
	resultID, err := getIDFromURL(r, "resultID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}

	out, err := h.resultService.ConfirmResult(r.Context(), resultID, actor.UserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"success":   true,
		"confirmed": out.Confirmed,
		"message":   out.Message,
		"result":    out.Result,
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetResult godoc
// @Summary Get a match result
// @Tags results
// @Produce json
// @Param resultID path int true "Result ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /results/{resultID} [get]
func (h *MatchHandler) GetResult(w http.ResponseWriter, r *http.Request) {
	resultID, err := getIDFromURL(r, "resultID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.resultService.GetResult(r.Context(), resultID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"result": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListResults godoc
// @Summary List match results of a player
// @Tags results
// @Produce json
// @Param user_id query int false "Player ID (defaults to the caller)"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /results [get]
func (h *MatchHandler) ListResults(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}
	userID := actor.UserID
	if v := r.URL.Query().Get("user_id"); v != "" {
		if userID = toInt(v, 0); userID <= 0 {
			badRequestResponse(w, r, errors.New("invalid user_id"))
			return
		}
	}

	limit, offset := pageParams(r)
	results, err := h.resultService.ListResults(r.Context(), userID, limit, offset)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"results": results}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
