package handlers

import (
	"net/http"

	"github.com/Dosada05/badminton-community/services"
)

type NotificationHandler struct {
	notificationService services.NotificationService
}

func NewNotificationHandler(ns services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: ns}
}

// ListNotifications godoc
// @Summary List the caller's notifications
// @Tags notifications
// @Produce json
// @Param unread query bool false "Only unread"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /notifications [get]
func (h *NotificationHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}

	limit, offset := pageParams(r)
	unread := r.URL.Query().Get("unread") == "true"
	list, err := h.notificationService.List(r.Context(), actor.UserID, unread, limit, offset)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"notifications": list}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// MarkRead godoc
// @Summary Mark a notification as read
// @Tags notifications
// @Param notificationID path int true "Notification ID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /notifications/{notificationID}/read [post]
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "notificationID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}

	if err := h.notificationService.MarkRead(r.Context(), id, actor.UserID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MarkAllRead godoc
// @Summary Mark all notifications as read
// @Tags notifications
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /notifications/read-all [post]
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}

	n, err := h.notificationService.MarkAllRead(r.Context(), actor.UserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"updated": n}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
