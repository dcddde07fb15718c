package handlers

import (
	"net/http"

	"github.com/Dosada05/badminton-community/models"
	"github.com/Dosada05/badminton-community/services"
)

type InviteHandler struct {
	invitationService services.InvitationService
}

func NewInviteHandler(is services.InvitationService) *InviteHandler {
	return &InviteHandler{invitationService: is}
}

type createInvitationRequest struct {
	InviteeID int `json:"inviteeId"`
}

type respondInvitationRequest struct {
	Decision models.InvitationStatus `json:"decision"`
}

// CreateInvitation godoc
// @Summary Invite a user to a match session
// @Tags invitations
// @Accept json
// @Produce json
// @Param sessionID path int true "Session ID"
// @Param input body createInvitationRequest true "Invitee"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]string "Self invite or session not pending"
// @Failure 403 {object} map[string]string "Inviter is not a participant"
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string "Already participating or already invited"
// @Security BearerAuth
// @Router /sessions/{sessionID}/invitations [post]
func (h *InviteHandler) CreateInvitation(w http.ResponseWriter, r *http.Request) {
	sessionID, err := getIDFromURL(r, "sessionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}

	var req createInvitationRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	invitation, err := h.invitationService.Invite(r.Context(), actor.UserID, req.InviteeID, sessionID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"invitation": invitation}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListInvitations godoc
// @Summary List the caller's invitations
// @Tags invitations
// @Produce json
// @Param type query string false "sent or received (default received)"
// @Param status query string false "PENDING, ACCEPTED, DECLINED or CANCELLED"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /invitations [get]
func (h *InviteHandler) ListInvitations(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	opts := models.InvitationListOptions{Direction: models.InvitationDirection(q.Get("type"))}
	if v := q.Get("status"); v != "" {
		status := models.InvitationStatus(v)
		opts.Status = &status
	}

	invitations, err := h.invitationService.List(r.Context(), actor.UserID, opts)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"invitations": invitations}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RespondInvitation godoc
// @Summary Accept or decline an invitation
// @Tags invitations
// @Accept json
// @Produce json
// @Param invitationID path int true "Invitation ID"
// @Param input body respondInvitationRequest true "ACCEPTED or DECLINED"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string "Invitation or session no longer pending"
// @Failure 403 {object} map[string]string "Caller is not the invitee"
// @Failure 409 {object} map[string]string "Session is full"
// @Security BearerAuth
// @Router /invitations/{invitationID}/respond [post]
func (h *InviteHandler) RespondInvitation(w http.ResponseWriter, r *http.Request) {
	invitationID, err := getIDFromURL(r, "invitationID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}

	var req respondInvitationRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	invitation, err := h.invitationService.Respond(r.Context(), invitationID, actor.UserID, req.Decision)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"invitation": invitation}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// CancelInvitation godoc
// @Summary Cancel a pending invitation
// @Tags invitations
// @Produce json
// @Param invitationID path int true "Invitation ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string "Caller is not the inviter"
// @Security BearerAuth
// @Router /invitations/{invitationID}/cancel [post]
func (h *InviteHandler) CancelInvitation(w http.ResponseWriter, r *http.Request) {
	invitationID, err := getIDFromURL(r, "invitationID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}

	invitation, err := h.invitationService.Cancel(r.Context(), invitationID, actor.UserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"invitation": invitation}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
