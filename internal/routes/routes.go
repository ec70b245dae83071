package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/vortexmedx/medconnect-backend/internal/config"
	"github.com/vortexmedx/medconnect-backend/internal/handlers"
	"github.com/vortexmedx/medconnect-backend/internal/middleware"
	"github.com/vortexmedx/medconnect-backend/internal/roles"
	"github.com/vortexmedx/medconnect-backend/internal/sections"
	"github.com/vortexmedx/medconnect-backend/internal/session"
)

// rolePrefixes maps each section to its mount point and required role.
var rolePrefixes = map[session.Section]struct {
	prefix string
	role   roles.Role
}{
	session.SectionPatient:  {"/patient", roles.Patient},
	session.SectionDoctor:   {"/doctor", roles.Doctor},
	session.SectionLabOwner: {"/lab", roles.LabOwner},
}

func Setup(
	app *fiber.App,
	cfg *config.Config,
	deps sections.Deps,
	authHandler *handlers.AuthHandler,
	sessionHandler *handlers.SessionHandler,
	healthHandler *handlers.HealthHandler,
	roleSections []sections.Section,
) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)

	// Auth — public, with a stricter rate limit: 10 req/min per IP
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/signup", authHandler.Signup)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh)
	auth.Post("/logout", authHandler.Logout)

	// Startup session check. Public: a missing or expired token is itself a
	// valid answer (unauthenticated), not an error.
	api.Get("/session", sessionHandler.Current)

	// One protected group per role subtree.
	for _, section := range roleSections {
		mount, ok := rolePrefixes[section.ID()]
		if !ok {
			continue
		}
		group := api.Group(mount.prefix,
			middleware.JWTProtected(cfg),
			middleware.RoleRequired(deps.DB, mount.role),
		)
		section.RegisterRoutes(group, deps)
	}
}
