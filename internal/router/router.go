// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/thedjrox/Leftover-Locator/internal/config"
	"github.com/thedjrox/Leftover-Locator/internal/handler"
	"github.com/thedjrox/Leftover-Locator/internal/middleware"
)

// Handlers collects the constructed handlers the router wires up.
type Handlers struct {
	Listing     *handler.ListingHandler
	Reservation *handler.ReservationHandler
	Webhook     *handler.WebhookHandler
	Feed        *handler.FeedHandler
}

// Register wires all application routes onto the provided Echo
// instance. The browser client is served from another origin, so CORS
// is open. The search endpoint additionally goes through the Redis
// response cache; every public route shares the token-bucket limiter.
// Both degrade to pass-through when rdb is nil.
func Register(e *echo.Echo, h Handlers, rdb *redis.Client) {
	e.Use(echomw.CORS())
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	e.GET("/healthz", handler.Health)

	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	e.GET("/restaurants", h.Listing.Search, cache)

	e.POST("/reservations", h.Reservation.Create)
	e.POST("/webhook", h.Webhook.Ingest)
	e.GET("/ws", h.Feed.Connect)
}
