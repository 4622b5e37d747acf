package routes

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/Dosada05/padel-tournament/docs"
	"github.com/Dosada05/padel-tournament/handlers"
	"github.com/Dosada05/padel-tournament/middleware"
)

type Options struct {
	JWTSecret      string
	AllowedOrigins []string
	Logger         *slog.Logger
}

type Handlers struct {
	Tournaments  *handlers.TournamentHandler
	Participants *handlers.ParticipantHandler
	Matches      *handlers.MatchHandler
	Schedule     *handlers.ScheduleHandler
	WebSocket    *handlers.WebSocketHandler
}

// SetupRoutes mounts the public reads and the organizer-only mutations.
func SetupRoutes(router chi.Router, opts Options, h Handlers) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Cache"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// Websocket connections must not be cut by the request timeout.
	router.Get("/ws/tournaments/{tournamentID}", h.WebSocket.ServeWs)

	organizer := chi.Chain(
		middleware.Authenticate(opts.JWTSecret),
		middleware.Authorize(middleware.RoleOrganizer, middleware.RoleAdmin),
		middleware.Audit(logger),
	)

	router.Group(func(r chi.Router) {
		r.Use(chiMiddleware.Timeout(30 * time.Second))

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", h.Participants.ListCategories)
			r.With(organizer...).Post("/", h.Participants.CreateCategory)
		})

		r.Route("/tournaments", func(r chi.Router) {
			r.Get("/", h.Tournaments.ListHandler)
			r.With(organizer...).Post("/", h.Tournaments.CreateHandler)

			r.Route("/{tournamentID}", func(r chi.Router) {
				// Публичные маршруты
				r.Get("/", h.Tournaments.GetByIDHandler)
				r.Get("/archive", h.Tournaments.ArchiveHandler)
				r.Get("/pairs", h.Participants.ListPairs)
				r.Get("/zones", h.Tournaments.ListZonesHandler)
				r.Get("/zones/{zoneID}/standings", h.Tournaments.StandingsHandler)
				r.Get("/playoffs", h.Tournaments.ListPlayoffsHandler)
				r.Get("/matches", h.Matches.ListMatches)
				r.Get("/matches/{matchID}", h.Matches.GetMatch)
				r.Get("/courts", h.Schedule.ListCourts)
				r.Get("/slots", h.Schedule.ListSlots)

				// Защищенные маршруты только для организаторов
				r.Group(func(r chi.Router) {
					r.Use(organizer...)

					r.Post("/pairs", h.Participants.RegisterPair)
					r.Patch("/pairs/{pairID}/status", h.Participants.UpdatePairStatus)

					r.Post("/zones/generate", h.Tournaments.GenerateZonesHandler)
					r.Delete("/zones", h.Tournaments.DeleteZonesHandler)
					r.Post("/zones/{zoneID}/fixture", h.Tournaments.GenerateFixtureHandler)
					r.Delete("/zones/{zoneID}/fixture", h.Tournaments.DeleteFixtureHandler)

					r.Post("/playoffs/generate", h.Tournaments.GeneratePlayoffsHandler)
					r.Delete("/playoffs", h.Tournaments.DeletePlayoffsHandler)

					r.Post("/matches/{matchID}/result", h.Matches.SubmitResult)
					r.Post("/matches/{matchID}/confirm", h.Matches.ConfirmResult)
					r.Post("/matches/{matchID}/rollback", h.Matches.RollbackResult)
					r.Post("/matches/{matchID}/walkover", h.Matches.Walkover)

					r.Post("/courts", h.Schedule.CreateCourt)
					r.Delete("/courts/{courtID}", h.Schedule.DeleteCourt)
					r.Post("/slots", h.Schedule.GenerateSlots)
					r.Post("/schedule/auto", h.Schedule.AutoSchedule)
					r.Delete("/schedule", h.Schedule.ClearSchedule)
				})
			})
		})
	})
}
