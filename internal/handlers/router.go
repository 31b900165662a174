package handlers

import (
	"net/http"

	"eevy/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func (h *Handler) Routes() http.Handler {
	router := chi.NewRouter()
	router.Use(chimiddleware.Logger)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{h.cfg.AllowedOrigins},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Route("/auth", func(r chi.Router) {
		r.Post("/signup", h.Signup)
		r.Post("/signin", h.Signin)
		r.With(middleware.Auth(h.cfg.JWTSecret)).Get("/me", h.Me)
	})

	router.Route("/chargers", func(r chi.Router) {
		r.Use(middleware.Auth(h.cfg.JWTSecret))
		r.Get("/available", h.ListAvailableChargers)
		r.Get("/mine", h.ListOwnChargers)
		r.Post("/", h.CreateCharger)
		r.Get("/{id}", h.GetCharger)
		r.Put("/{id}/availability", h.SetChargerAvailability)
		r.Delete("/{id}", h.DeleteCharger)
		r.Get("/{id}/reservations", h.ListChargerReservations)
		r.Post("/{id}/comments", h.AddComment)
		r.Get("/{id}/comments", h.ListComments)
	})

	router.Route("/reservations", func(r chi.Router) {
		r.Use(middleware.Auth(h.cfg.JWTSecret))
		r.Post("/", h.CreateReservation)
		r.Get("/", h.ListOwnReservations)
		r.Post("/{id}/decision", h.DecideReservation)
		r.Post("/{id}/settle", h.SettleReservation)
	})

	router.Route("/users", func(r chi.Router) {
		r.Use(middleware.Auth(h.cfg.JWTSecret))
		r.Get("/recent-places", h.ListRecentPlaces)
		r.Get("/favorites", h.ListFavorites)
		r.Put("/favorites/{chargerID}", h.AddFavorite)
		r.Delete("/favorites/{chargerID}", h.RemoveFavorite)
	})

	router.Route("/account", func(r chi.Router) {
		r.Use(middleware.Auth(h.cfg.JWTSecret))
		r.Get("/", h.GetAccount)
		r.Get("/movements", h.ListMovements)
	})

	router.Get("/ws/events", h.WSEvents)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return router
}
