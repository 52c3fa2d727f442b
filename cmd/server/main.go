package main // Entry point package

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/thedjrox/Leftover-Locator/internal/config"
	"github.com/thedjrox/Leftover-Locator/internal/database"
	"github.com/thedjrox/Leftover-Locator/internal/enrich"
	"github.com/thedjrox/Leftover-Locator/internal/feed"
	"github.com/thedjrox/Leftover-Locator/internal/geocode"
	"github.com/thedjrox/Leftover-Locator/internal/handler"
	"github.com/thedjrox/Leftover-Locator/internal/queue"
	"github.com/thedjrox/Leftover-Locator/internal/repository"
	"github.com/thedjrox/Leftover-Locator/internal/router"
)

func main() {
	cfg := config.Load()

	// Storage first: nothing works without it.
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database connect: %v", err)
	}
	bootCtx, cancelBoot := context.WithTimeout(context.Background(), 10*time.Second)
	if err := database.EnsureSchema(bootCtx, db); err != nil {
		log.Fatalf("database schema: %v", err)
	}
	cancelBoot()

	// Redis is optional; cache and rate limiting degrade without it.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable, response cache and rate limiting disabled")
	}

	// Background context for the hub, the enrichment loop and the
	// audit consumer; canceled first during shutdown so the feed
	// drains before storage closes.
	bg, stopBackground := context.WithCancel(context.Background())

	hub := feed.NewHub()
	go hub.Run(bg)

	listingRepo := repository.NewListingRepo(db)
	reservationRepo := repository.NewReservationRepo(db)

	geocoder := geocode.NewGoogleGeocoder(cfg.GeocodeAPIKey, cfg.GeocodeTimeout)
	enricher := enrich.New(listingRepo, geocoder, hub, cfg.EnrichInterval)
	go enricher.Run(bg)

	go queue.StartInventoryConsumer()

	e := echo.New()
	e.HideBanner = true
	router.Register(e, router.Handlers{
		Listing:     handler.NewListingHandler(listingRepo),
		Reservation: handler.NewReservationHandler(listingRepo, reservationRepo, hub),
		Webhook:     handler.NewWebhookHandler(listingRepo, geocoder, hub),
		Feed:        handler.NewFeedHandler(hub),
	}, rdb)

	addr := ":" + cfg.Port
	go func() {
		log.Printf("listening on %s (env=%s)", addr, cfg.Env)
		if err := e.Start(addr); err != nil {
			log.Printf("http server stopped: %v", err)
		}
	}()

	// Shutdown order: stop accepting requests, drain the feed and the
	// background loops, close storage last.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown: %v", err)
	}
	stopBackground()
	if rdb != nil {
		_ = rdb.Close()
	}
	if err := db.Close(); err != nil {
		log.Printf("database close: %v", err)
	}
}
