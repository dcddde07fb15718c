package handlers

import (
	"net/http"

	"github.com/Dosada05/badminton-community/models"
	"github.com/Dosada05/badminton-community/services"
)

type AdminUserHandler struct {
	adminUserService services.AdminUserService
}

func NewAdminUserHandler(s services.AdminUserService) *AdminUserHandler {
	return &AdminUserHandler{adminUserService: s}
}

type setStatusRequest struct {
	Status models.UserStatus `json:"status"`
}

// ListUsers godoc
// @Summary List users
// @Tags admin
// @Produce json
// @Param search query string false "Nickname or email fragment"
// @Param role query string false "user, moderator or admin"
// @Param status query string false "active or banned"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} models.UserListResponse
// @Security BearerAuth
// @Router /admin/users [get]
func (h *AdminUserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.UserFilter{
		Search: q.Get("search"),
		Page:   toInt(q.Get("page"), 1),
		Limit:  toInt(q.Get("limit"), 20),
	}
	if role := q.Get("role"); role != "" {
		v := models.UserRole(role)
		filter.Role = &v
	}
	if status := q.Get("status"); status != "" {
		v := models.UserStatus(status)
		filter.Status = &v
	}

	res, err := h.adminUserService.ListUsers(r.Context(), filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, res, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SetUserStatus godoc
// @Summary Ban or reinstate a user
// @Tags admin
// @Accept json
// @Produce json
// @Param userID path int true "User ID"
// @Param input body setStatusRequest true "active or banned"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /admin/users/{userID}/status [patch]
func (h *AdminUserHandler) SetUserStatus(w http.ResponseWriter, r *http.Request) {
	userID, err := getIDFromURL(r, "userID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}

	var req setStatusRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	user, err := h.adminUserService.SetUserStatus(r.Context(), actor, userID, req.Status)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"user": user}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
