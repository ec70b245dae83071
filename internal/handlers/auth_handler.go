package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/vortexmedx/medconnect-backend/internal/accounts"
	"github.com/vortexmedx/medconnect-backend/internal/dto"
	"github.com/vortexmedx/medconnect-backend/internal/identity"
	"github.com/vortexmedx/medconnect-backend/internal/profiles"
	"github.com/vortexmedx/medconnect-backend/internal/roles"
	"github.com/vortexmedx/medconnect-backend/internal/session"
)

type AuthHandler struct {
	accounts *accounts.Service
	provider identity.Provider
	resolver *profiles.Resolver
	gate     *session.Gate
}

func NewAuthHandler(accountsSvc *accounts.Service, provider identity.Provider, resolver *profiles.Resolver, gate *session.Gate) *AuthHandler {
	return &AuthHandler{accounts: accountsSvc, provider: provider, resolver: resolver, gate: gate}
}

func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req dto.SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	if req.Password != req.ConfirmPassword {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Passwords do not match",
		})
	}
	if !roles.Valid(req.Role) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Role must be patient, doctor, or labOwner",
		})
	}

	result, err := h.accounts.CreateAccount(c.Context(), accounts.CreateAccountInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
		Role:     roles.Parse(req.Role),
	})
	if err != nil {
		var verr *accounts.ValidationError
		if errors.As(err, &verr) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: verr.Error(),
			})
		}
		if errors.Is(err, identity.ErrDuplicateAccount) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(dto.AuthResponse{
		AccessToken:  result.Session.AccessToken,
		RefreshToken: result.Session.RefreshToken,
		User:         result.User,
	})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	sess, err := h.provider.SignIn(c.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Internal server error",
		})
	}

	// The gate resolved this session while the sign-in event dispatched.
	user := h.gate.Current().User
	if user == nil || user.AuthID != sess.User.ID {
		if user, err = h.resolver.Resolve(c.Context(), sess); err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unable to resolve account profile",
			})
		}
	}

	return c.JSON(dto.AuthResponse{
		AccessToken:  sess.AccessToken,
		RefreshToken: sess.RefreshToken,
		User:         *user,
	})
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req dto.RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	sess, err := h.provider.Refresh(c.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidToken) {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Internal server error",
		})
	}

	user, err := h.resolver.Resolve(c.Context(), sess)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unable to resolve account profile",
		})
	}

	return c.JSON(dto.AuthResponse{
		AccessToken:  sess.AccessToken,
		RefreshToken: sess.RefreshToken,
		User:         *user,
	})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	var req dto.LogoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	if err := h.provider.SignOut(c.Context(), req.RefreshToken); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to sign out",
		})
	}

	return c.JSON(fiber.Map{"message": "Signed out successfully"})
}
