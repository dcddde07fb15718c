package routes

import (
	"net/http"

	_ "github.com/Dosada05/badminton-community/docs"
	"github.com/Dosada05/badminton-community/handlers"
	"github.com/Dosada05/badminton-community/middleware"
	"github.com/Dosada05/badminton-community/models"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Handlers groups every HTTP handler mounted by SetupRoutes.
type Handlers struct {
	Session      *handlers.SessionHandler
	Participant  *handlers.ParticipantHandler
	Invite       *handlers.InviteHandler
	Match        *handlers.MatchHandler
	Points       *handlers.PointsHandler
	Notification *handlers.NotificationHandler
	User         *handlers.UserHandler
	Admin        *handlers.AdminUserHandler
	Dashboard    *handlers.DashboardHandler
	WebSocket    *handlers.WebSocketHandler
}

func SetupRoutes(router chi.Router, auth *middleware.Authenticator, allowedOrigins []string, h Handlers) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	router.With(auth.Authenticate).Get("/ws/notifications", h.WebSocket.ServeNotifications)

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(auth.Authenticate)

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", h.Session.CreateSession)
			r.Get("/", h.Session.ListSessions)

			r.Route("/{sessionID}", func(r chi.Router) {
				r.Get("/", h.Session.GetSession)
				r.Post("/start", h.Session.StartSession)
				r.Post("/complete", h.Session.CompleteSession)
				r.Post("/cancel", h.Session.CancelSession)
				r.Post("/schedules", h.Session.AddSchedule)

				r.Post("/join", h.Participant.JoinSession)
				r.Post("/leave", h.Participant.LeaveSession)
				r.Post("/kick", h.Participant.KickParticipant)

				r.Post("/invitations", h.Invite.CreateInvitation)
			})
		})

		r.Route("/schedules/{scheduleID}/attendance", func(r chi.Router) {
			r.Post("/", h.Participant.AttendSchedule)
			r.Delete("/", h.Participant.UnattendSchedule)
		})

		r.Route("/invitations", func(r chi.Router) {
			r.Get("/", h.Invite.ListInvitations)
			r.Post("/{invitationID}/respond", h.Invite.RespondInvitation)
			r.Post("/{invitationID}/cancel", h.Invite.CancelInvitation)
		})

		r.Route("/results", func(r chi.Router) {
			r.Post("/", h.Match.SubmitResult)
			r.Get("/", h.Match.ListResults)
			r.Get("/{resultID}", h.Match.GetResult)
			r.Post("/{resultID}/confirm", h.Match.ConfirmResult)
		})

		r.Route("/points/me", func(r chi.Router) {
			r.Get("/", h.Points.GetMyBalance)
			r.Get("/history", h.Points.GetMyHistory)
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", h.Notification.ListNotifications)
			r.Post("/read-all", h.Notification.MarkAllRead)
			r.Post("/{notificationID}/read", h.Notification.MarkRead)
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/me", h.User.GetMe)
			r.Post("/me/avatar", h.User.UploadAvatar)
			r.Get("/{userID}", h.User.GetUserByID)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireRole(models.RoleAdmin, models.RoleModerator))
			r.Get("/users", h.Admin.ListUsers)
			r.Patch("/users/{userID}/status", h.Admin.SetUserStatus)
			r.Get("/stats", h.Dashboard.Stats)
		})
	})
}
