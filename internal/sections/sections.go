// Package sections defines the role-specific route subtrees. Each section
// mirrors one navigation subtree of the mobile app and is mounted behind the
// role middleware for its role.
package sections

import (
	"github.com/gofiber/fiber/v2"
	"github.com/vortexmedx/medconnect-backend/internal/profiles"
	"github.com/vortexmedx/medconnect-backend/internal/session"
	"github.com/vortexmedx/medconnect-backend/internal/storage"
	"github.com/vortexmedx/medconnect-backend/internal/uploads"
	"gorm.io/gorm"
)

// Deps carries the shared services a section may wire into its handlers.
type Deps struct {
	DB       *gorm.DB
	Profiles profiles.Repository
	Store    storage.ObjectStore
	Uploader *uploads.Coordinator
}

// Section is the interface every role subtree implements.
type Section interface {
	// ID returns the session section this subtree serves.
	ID() session.Section

	// Models returns the GORM model pointers this section owns, for
	// AutoMigrate. Shared models are each owned by exactly one section.
	Models() []interface{}

	// RegisterRoutes mounts the section's routes on the given group. The
	// group already has JWT and role middleware applied.
	RegisterRoutes(router fiber.Router, deps Deps)
}
