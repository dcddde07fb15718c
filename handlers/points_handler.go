package handlers

import (
	"net/http"

	"github.com/Dosada05/badminton-community/services"
)

type PointsHandler struct {
	pointsService services.PointsService
}

func NewPointsHandler(ps services.PointsService) *PointsHandler {
	return &PointsHandler{pointsService: ps}
}

// GetMyBalance godoc
// @Summary Get the caller's points balance
// @Tags points
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /points/me [get]
func (h *PointsHandler) GetMyBalance(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}

	balance, err := h.pointsService.Balance(r.Context(), actor.UserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"user_id": actor.UserID, "balance": balance}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetMyHistory godoc
// @Summary List the caller's point transactions
// @Tags points
// @Produce json
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /points/me/history [get]
func (h *PointsHandler) GetMyHistory(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}

	limit, offset := pageParams(r)
	history, err := h.pointsService.History(r.Context(), actor.UserID, limit, offset)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"transactions": history}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
