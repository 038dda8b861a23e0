package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/setpoint-app/setpoint/handlers"
	"github.com/setpoint-app/setpoint/middleware"
)

type Handlers struct {
	Auth         *handlers.AuthHandler
	User         *handlers.UserHandler
	Organization *handlers.OrganizationHandler
	Invite       *handlers.InviteHandler
	Team         *handlers.TeamHandler
	Tournament   *handlers.TournamentHandler
	Match        *handlers.MatchHandler
	Scoring      *handlers.ScoringHandler
	Stat         *handlers.StatHandler
	Dashboard    *handlers.DashboardHandler
	WebSocket    *handlers.WebSocketHandler
}

func SetupRoutes(router *chi.Mux, h Handlers, auth *middleware.Authenticator, limiter *middleware.RateLimiter) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(limiter.Limit)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Публичные маршруты
	router.Post("/auth/register", h.Auth.Register)
	router.Post("/auth/login", h.Auth.Login)

	// Табло матча доступно без авторизации: и HTTP-снимок, и websocket.
	router.Get("/matches/{matchID}/score", h.Scoring.GetScore)
	router.Get("/ws/matches/{matchID}", h.WebSocket.ServeMatch)

	// Всё остальное требует токен
	router.Group(func(r chi.Router) {
		r.Use(auth.Authenticate)

		r.Route("/users/me", func(r chi.Router) {
			r.Get("/", h.User.GetMe)
			r.Patch("/", h.User.UpdateMe)
			r.Post("/logo", h.User.UploadLogo)
		})

		r.Route("/organizations", func(r chi.Router) {
			r.Post("/", h.Organization.Create)
			r.Get("/", h.Organization.List)

			r.Route("/{orgID}", func(r chi.Router) {
				r.Get("/", h.Organization.Get)
				r.Patch("/", h.Organization.Update)
				r.Post("/logo", h.Organization.UploadLogo)
				r.Get("/dashboard", h.Dashboard.GetCounts)

				r.Get("/members", h.Organization.ListMembers)
				r.Patch("/members/{userID}", h.Organization.UpdateMemberRole)
				r.Delete("/members/{userID}", h.Organization.RemoveMember)

				r.Post("/invites", h.Invite.Create)

				r.Post("/teams", h.Team.Create)
				r.Get("/teams", h.Team.List)

				r.Post("/tournaments", h.Tournament.Create)
				r.Get("/tournaments", h.Tournament.List)

				r.Post("/matches", h.Match.Create)
				r.Get("/matches", h.Match.ListByOrganization)
			})
		})

		r.Post("/invites/{token}/accept", h.Invite.Accept)

		r.Route("/teams/{teamID}", func(r chi.Router) {
			r.Get("/", h.Team.Get)
			r.Patch("/", h.Team.Update)
			r.Delete("/", h.Team.Delete)
			r.Post("/logo", h.Team.UploadLogo)
			r.Post("/players", h.Team.AddPlayer)
		})
		r.Patch("/players/{playerID}", h.Team.UpdatePlayer)
		r.Delete("/players/{playerID}", h.Team.RemovePlayer)

		r.Route("/tournaments/{tournamentID}", func(r chi.Router) {
			r.Get("/", h.Tournament.Get)
			r.Patch("/", h.Tournament.Update)
			r.Delete("/", h.Tournament.Delete)
			r.Get("/matches", h.Match.ListByTournament)
		})

		r.Route("/matches/{matchID}", func(r chi.Router) {
			r.Get("/", h.Match.Get)
			r.Patch("/", h.Match.Update)
			r.Delete("/", h.Match.Delete)

			// Операции живого счёта
			r.Post("/start", h.Scoring.Start)
			r.Post("/points", h.Scoring.AddPoint)
			r.Delete("/points/last", h.Scoring.UndoPoint)
			r.Post("/end", h.Scoring.End)

			r.Put("/stats", h.Stat.Put)
			r.Get("/stats", h.Stat.List)
			r.Delete("/stats/{statID}", h.Stat.Delete)
		})
	})
}
