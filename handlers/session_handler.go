package handlers

import (
	"net/http"

	"github.com/Dosada05/badminton-community/models"
	"github.com/Dosada05/badminton-community/services"
)

type SessionHandler struct {
	sessionService services.SessionService
}

func NewSessionHandler(ss services.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: ss}
}

// CreateSession godoc
// @Summary Create a match session
// @Tags sessions
// @Description The caller becomes the creator and first participant.
// @Accept json
// @Produce json
// @Param input body services.CreateSessionInput true "Session data"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Security BearerAuth
// @Router /sessions [post]
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}

	var input services.CreateSessionInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	session, err := h.sessionService.CreateSession(r.Context(), actor.UserID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"session": session}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListSessions godoc
// @Summary List match sessions
// @Tags sessions
// @Produce json
// @Param status query string false "PENDING, IN_PROGRESS, COMPLETED or CANCELLED"
// @Param match_type query string false "Match type"
// @Param creator_id query int false "Creator user ID"
// @Param participant_id query int false "Participant user ID"
// @Param mine query bool false "Only sessions the caller participates in"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /sessions [get]
func (h *SessionHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := models.SessionListOptions{}
	opts.Limit, opts.Offset = pageParams(r)

	if v := q.Get("status"); v != "" {
		status := models.SessionStatus(v)
		opts.Status = &status
	}
	if v := q.Get("match_type"); v != "" {
		mt := models.MatchType(v)
		opts.MatchType = &mt
	}
	if v := toInt(q.Get("creator_id"), 0); v > 0 {
		opts.CreatorID = &v
	}
	if v := toInt(q.Get("participant_id"), 0); v > 0 {
		opts.ParticipantID = &v
	}
	if q.Get("mine") == "true" {
		actor, ok := currentActor(w, r)
		if !ok {
			return
		}
		opts.ParticipantID = &actor.UserID
	}

	sessions, err := h.sessionService.ListSessions(r.Context(), opts)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"sessions": sessions}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetSession godoc
// @Summary Get a match session with participants and schedules
// @Tags sessions
// @Produce json
// @Param sessionID path int true "Session ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /sessions/{sessionID} [get]
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	sessionID, err := getIDFromURL(r, "sessionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	session, err := h.sessionService.GetSession(r.Context(), sessionID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"session": session}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type sessionTransition func(s services.SessionService, r *http.Request, sessionID int, actor models.Actor) (*models.MatchSession, error)

func (h *SessionHandler) transition(fn sessionTransition) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := getIDFromURL(r, "sessionID")
		if err != nil {
			badRequestResponse(w, r, err)
			return
		}
		actor, ok := currentActor(w, r)
		if !ok {
			return
		}

		session, err := fn(h.sessionService, r, sessionID, actor)
		if err != nil {
			mapServiceErrorToHTTP(w, r, err)
			return
		}

		response := jsonResponse{"success": true, "session": session}
		if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
			serverErrorResponse(w, r, err)
		}
	}
}

// StartSession godoc
// @Summary Start a match session
// @Tags sessions
// @Description Creator only. Requires the session to be PENDING with quorum reached.
// @Produce json
// @Param sessionID path int true "Session ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string "Invalid state or quorum not met"
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /sessions/{sessionID}/start [post]
func (h *SessionHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	h.transition(func(s services.SessionService, r *http.Request, id int, a models.Actor) (*models.MatchSession, error) {
		return s.StartSession(r.Context(), id, a)
	})(w, r)
}

// CompleteSession godoc
// @Summary Complete a match session
// @Tags sessions
// @Produce json
// @Param sessionID path int true "Session ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Security BearerAuth
// @Router /sessions/{sessionID}/complete [post]
func (h *SessionHandler) CompleteSession(w http.ResponseWriter, r *http.Request) {
	h.transition(func(s services.SessionService, r *http.Request, id int, a models.Actor) (*models.MatchSession, error) {
		return s.CompleteSession(r.Context(), id, a)
	})(w, r)
}

// CancelSession godoc
// @Summary Cancel a match session
// @Tags sessions
// @Description Creator, moderator or admin.
// @Produce json
// @Param sessionID path int true "Session ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Security BearerAuth
// @Router /sessions/{sessionID}/cancel [post]
func (h *SessionHandler) CancelSession(w http.ResponseWriter, r *http.Request) {
	h.transition(func(s services.SessionService, r *http.Request, id int, a models.Actor) (*models.MatchSession, error) {
		return s.CancelSession(r.Context(), id, a)
	})(w, r)
}

// AddSchedule godoc
// @Summary Add a schedule slot to a session
// @Tags sessions
// @Accept json
// @Produce json
// @Param sessionID path int true "Session ID"
// @Param input body services.AddScheduleInput true "Schedule data"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Security BearerAuth
// @Router /sessions/{sessionID}/schedules [post]
func (h *SessionHandler) AddSchedule(w http.ResponseWriter, r *http.Request) {
	sessionID, err := getIDFromURL(r, "sessionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}

	var input services.AddScheduleInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	schedule, err := h.sessionService.AddSchedule(r.Context(), sessionID, actor, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"schedule": schedule}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
