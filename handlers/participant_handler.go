package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/Dosada05/badminton-community/services"
)

type ParticipantHandler struct {
	sessionService services.SessionService
}

func NewParticipantHandler(ss services.SessionService) *ParticipantHandler {
	return &ParticipantHandler{sessionService: ss}
}

type kickRequest struct {
	UserID int `json:"userId"`
}

// JoinSession godoc
// @Summary Join a pending match session
// @Tags participants
// @Produce json
// @Param sessionID path int true "Session ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string "Session is not pending"
// @Failure 409 {object} map[string]string "Already joined or session full"
// @Security BearerAuth
// @Router /sessions/{sessionID}/join [post]
func (h *ParticipantHandler) JoinSession(w http.ResponseWriter, r *http.Request) {
	sessionID, err := getIDFromURL(r, "sessionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}

	if err := h.sessionService.JoinSession(r.Context(), sessionID, actor.UserID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"success": true}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// LeaveSession godoc
// @Summary Leave a pending match session
// @Tags participants
// @Param sessionID path int true "Session ID"
// @Success 204
// @Failure 403 {object} map[string]string "Creator cannot leave"
// @Failure 404 {object} map[string]string "Not a participant"
// @Security BearerAuth
// @Router /sessions/{sessionID}/leave [post]
func (h *ParticipantHandler) LeaveSession(w http.ResponseWriter, r *http.Request) {
	sessionID, err := getIDFromURL(r, "sessionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}

	if err := h.sessionService.LeaveSession(r.Context(), sessionID, actor.UserID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// KickParticipant godoc
// @Summary Remove a participant from a session
// @Tags participants
// @Accept json
// @Param sessionID path int true "Session ID"
// @Param input body kickRequest true "Target user"
// @Success 204
// @Failure 400 {object} map[string]string "Target is the creator"
// @Failure 403 {object} map[string]string
// @Security BearerAuth
// @Router /sessions/{sessionID}/kick [post]
func (h *ParticipantHandler) KickParticipant(w http.ResponseWriter, r *http.Request) {
	sessionID, err := getIDFromURL(r, "sessionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}

	var req kickRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if req.UserID <= 0 {
		badRequestResponse(w, r, errors.New("userId is required"))
		return
	}

	if err := h.sessionService.KickParticipant(r.Context(), sessionID, actor, req.UserID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AttendSchedule godoc
// @Summary Mark attendance for a schedule slot
// @Tags participants
// @Param scheduleID path int true "Schedule ID"
// @Success 204
// @Failure 403 {object} map[string]string "Not a session participant"
// @Failure 409 {object} map[string]string
// @Security BearerAuth
// @Router /schedules/{scheduleID}/attendance [post]
func (h *ParticipantHandler) AttendSchedule(w http.ResponseWriter, r *http.Request) {
	h.attendance(w, r, h.sessionService.AttendSchedule)
}

// UnattendSchedule godoc
// @Summary Remove attendance from a schedule slot
// @Tags participants
// @Param scheduleID path int true "Schedule ID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /schedules/{scheduleID}/attendance [delete]
func (h *ParticipantHandler) UnattendSchedule(w http.ResponseWriter, r *http.Request) {
	h.attendance(w, r, h.sessionService.UnattendSchedule)
}

func (h *ParticipantHandler) attendance(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, scheduleID, userID int) error) {
	scheduleID, err := getIDFromURL(r, "scheduleID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}
	if err := fn(r.Context(), scheduleID, actor.UserID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
