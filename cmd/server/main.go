package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eevy/internal/config"
	"eevy/internal/db"
	"eevy/internal/geocode"
	"eevy/internal/handlers"
	"eevy/internal/services"
	"eevy/internal/store"
	"eevy/internal/websocket"
)

func main() {
	cfg := config.Load()
	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	defer database.Close()

	users := store.NewUserStore(database)
	chargers := store.NewChargerStore(database)
	reservations := store.NewReservationStore(database)
	accounts := store.NewAccountStore(database)
	movements := store.NewMovementStore(database)
	comments := store.NewCommentStore(database)
	txRunner := db.NewTxRunner(database)
	hub := websocket.NewHub()
	geocoder := geocode.NewClient(cfg.GeocodeBaseURL)

	availability := services.NewAvailabilityService(chargers, reservations)
	reservationService := services.NewReservationService(txRunner, reservations, chargers, hub)
	settlement := services.NewSettlementService(txRunner, reservations, chargers, accounts, movements, hub)

	handler := handlers.New(txRunner, cfg, users, chargers, accounts, movements, comments, availability, reservationService, settlement, geocoder, hub)
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("eevy API listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	<-shutdown

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
}
