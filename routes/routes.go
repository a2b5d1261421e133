package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/courtside/club-system/handlers"
	"github.com/courtside/club-system/middleware"
)

type Config struct {
	JWTSecretKey       string
	CORSAllowedOrigins []string
}

// SetupRoutes wires every handler into the router. Reads are public;
// anything that mutates ratings or tournament state requires a token,
// and tournament administration requires the admin role.
func SetupRoutes(
	router *chi.Mux,
	cfg Config,
	playerHandler *handlers.PlayerHandler,
	ladderHandler *handlers.LadderHandler,
	tournamentHandler *handlers.TournamentHandler,
	groupHandler *handlers.GroupHandler,
	websocketHandler *handlers.WebsocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticate(cfg.JWTSecretKey)
	adminOnly := middleware.Authorize(middleware.RoleAdmin)

	router.Route("/players", func(r chi.Router) {
		r.Get("/", playerHandler.ListHandler)
		r.Get("/{playerID}", playerHandler.GetByIDHandler)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Post("/", playerHandler.CreateHandler)
			r.Put("/{playerID}/avatar", playerHandler.UploadAvatarHandler)
		})
	})

	router.Get("/leaderboard", playerHandler.LeaderboardHandler)

	router.Route("/ladders", func(r chi.Router) {
		r.Get("/", ladderHandler.ListHandler)
		r.Get("/{ladderID}", ladderHandler.GetByIDHandler)
		r.Get("/{ladderID}/rankings", ladderHandler.RankingsHandler)
		r.Get("/{ladderID}/matches", ladderHandler.ListMatchesHandler)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Post("/", ladderHandler.CreateHandler)
			r.Post("/{ladderID}/members", ladderHandler.JoinHandler)
			r.Delete("/{ladderID}/members/{playerID}", ladderHandler.LeaveHandler)
			r.Post("/{ladderID}/matches", ladderHandler.RecordMatchHandler)
		})
	})

	router.Route("/tournaments", func(r chi.Router) {
		r.Get("/", tournamentHandler.ListHandler)
		r.Get("/{tournamentID}", tournamentHandler.GetByIDHandler)
		r.Get("/{tournamentID}/winners", tournamentHandler.ListWinnersHandler)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(adminOnly)
			r.Post("/", tournamentHandler.CreateHandler)
			r.Delete("/{tournamentID}", tournamentHandler.DeleteHandler)
			r.Post("/{tournamentID}/activate", tournamentHandler.ActivateHandler)
			r.Post("/{tournamentID}/complete", tournamentHandler.CompleteHandler)
			r.Put("/{tournamentID}/poster", tournamentHandler.UploadPosterHandler)
			r.Post("/{tournamentID}/groups", groupHandler.CreateHandler)
		})
	})

	router.Route("/groups", func(r chi.Router) {
		r.Get("/{groupID}", groupHandler.GetByIDHandler)
		r.Get("/{groupID}/standings", groupHandler.StandingsHandler)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(adminOnly)
			r.Post("/{groupID}/participants", groupHandler.AddParticipantHandler)
			r.Post("/{groupID}/schedule", groupHandler.GenerateScheduleHandler)
			r.Put("/{groupID}/matches/{matchID}/result", groupHandler.RecordResultHandler)
		})
	})

	router.Get("/ws/groups/{groupID}", websocketHandler.SubscribeGroupHandler)
}
