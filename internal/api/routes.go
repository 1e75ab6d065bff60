package api

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ericnishio/scribe-adapter/internal/store"
)

// RegisterRoutes registers all HTTP routes on the Fiber app. A nil nc
// or st marks that dependency as disabled rather than unhealthy.
func RegisterRoutes(app *fiber.App, nc *nats.Conn, st store.Store, handler *ScribeHandler) {
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		checks := map[string]string{
			"nats":  "ok",
			"store": "ok",
		}
		status := "ok"
		code := fiber.StatusOK

		if nc == nil {
			checks["nats"] = "disabled"
		} else if !nc.IsConnected() {
			checks["nats"] = "disconnected"
			status = "degraded"
			code = fiber.StatusServiceUnavailable
		} else if err := nc.FlushTimeout(1 * time.Second); err != nil {
			checks["nats"] = err.Error()
			status = "degraded"
			code = fiber.StatusServiceUnavailable
		}

		if st == nil {
			checks["store"] = "disabled"
		} else {
			healthCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := st.HealthCheck(healthCtx); err != nil {
				checks["store"] = err.Error()
				status = "degraded"
				code = fiber.StatusServiceUnavailable
			}
		}

		return c.Status(code).JSON(fiber.Map{
			"status": status,
			"checks": checks,
		})
	})

	// API routes
	v1 := app.Group("/api/v1")
	v1.Post("/session", handler.LoginHandler)
	v1.Delete("/session", handler.LogoutHandler)
	v1.Get("/session", handler.SessionHandler)
	v1.Get("/posts", handler.ListPostsHandler)
	v1.Post("/posts", handler.CreatePostHandler)
	v1.Get("/posts/:id", handler.GetPostHandler)
	v1.Post("/posts/:id/comments", handler.CommentHandler)
}
