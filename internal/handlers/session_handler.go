package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/vortexmedx/medconnect-backend/internal/dto"
	"github.com/vortexmedx/medconnect-backend/internal/identity"
	"github.com/vortexmedx/medconnect-backend/internal/session"
)

// SessionHandler reports the current authentication snapshot. Clients call
// it on startup to restore an existing session before rendering anything.
type SessionHandler struct {
	provider identity.Provider
	gate     *session.Gate
}

func NewSessionHandler(provider identity.Provider, gate *session.Gate) *SessionHandler {
	return &SessionHandler{provider: provider, gate: gate}
}

func (h *SessionHandler) Current(c *fiber.Ctx) error {
	snap := h.gate.Current()

	if snap.State == session.StateUnauthenticated {
		if token := bearerToken(c); token != "" {
			if sess, err := h.provider.CurrentSession(c.Context(), token); err == nil {
				h.gate.Restore(sess)
				snap = h.gate.Current()
			}
		}
	}

	resp := dto.SessionResponse{
		State:         string(snap.State),
		ActiveSection: string(snap.Section),
		Screens:       snap.Section.Screens(),
		User:          snap.User,
	}
	return c.JSON(resp)
}

func bearerToken(c *fiber.Ctx) string {
	auth := c.Get(fiber.HeaderAuthorization)
	if len(auth) > 7 && strings.EqualFold(auth[:7], "bearer ") {
		return auth[7:]
	}
	return ""
}
