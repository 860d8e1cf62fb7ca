package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/hokuto-abe/quiz-grandprix/handlers"
	"github.com/hokuto-abe/quiz-grandprix/middleware"
	"github.com/hokuto-abe/quiz-grandprix/services"
)

type Handlers struct {
	Auth        *handlers.AuthHandler
	Score       *handlers.ScoreHandler
	Matchmaking *handlers.MatchmakingHandler
	Round       *handlers.RoundHandler
	Player      *handlers.PlayerHandler
	WebSocket   *handlers.WebSocketHandler
}

func InitRoutes(h Handlers, authService services.AuthService) *chi.Mux {
	router := chi.NewRouter()

	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Post("/auth/login", h.Auth.Login)

	// Public spectator surface.
	router.Get("/rounds", h.Round.ListRounds)
	router.Get("/rounds/{roundID}", h.Round.GetRoundOverview)
	router.Get("/matches/{matchID}", h.Round.GetMatch)
	router.Get("/matches/{matchID}/scores", h.Score.GetSnapshot)
	router.Get("/ws/matches/{matchID}", h.WebSocket.WatchMatch)
	router.Get("/players", h.Player.List)

	router.Handle("/metrics", promhttp.Handler())
	router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	router.Get("/swagger/doc.json", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "docs/swagger.json")
	})

	// Operator console.
	router.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(authService))
		r.Use(middleware.Authorize("admin"))

		r.Post("/matches/{matchID}/operations", h.Score.ApplyOperation)
		r.Delete("/matches/{matchID}/operations", h.Score.Undo)
		r.Patch("/matches/{matchID}/scores", h.Score.FreeEdit)

		r.Post("/rounds/{roundID}/matchmaking", h.Matchmaking.Run)
		r.Post("/rounds/{roundID}/archive", h.Round.Archive)

		r.Post("/players", h.Player.Create)
		r.Post("/players/results", h.Player.ImportResults)
		r.Put("/players/{playerID}/preference", h.Player.SetPreference)
		r.Put("/players/preference-lock", h.Player.SetPreferenceLock)
	})

	return router
}
