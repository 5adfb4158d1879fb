package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"
	dbmodels "github.com/recipevault/recipevault/recipevault/database/models"
	webmodels "github.com/recipevault/recipevault/web/models"
	"github.com/recipevault/recipevault/web/utils"
)

// invalidCredentials mirrors the serializer-level failure of the token
// endpoint: bad credentials are a validation error, not a 401.
func invalidCredentials(c *fiber.Ctx) error {
	return utils.SendBadRequest(c, "Unable to authenticate with provided credentials", map[string]string{
		"non_field_errors": "Unable to authenticate with provided credentials",
	})
}

func UserCreate(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.Context()

		var req webmodels.UserCreateRequest

		// Parse JSON body
		if err := c.BodyParser(&req); err != nil {
			return utils.SendError(c, 400, "INVALID_REQUEST", "Invalid request body", map[string]string{
				"error": err.Error(),
			})
		}

		// Validate request
		if validationErrors := utils.ValidateUserCreateRequest(&req); len(validationErrors) > 0 {
			return utils.HandleValidationErrors(c, validationErrors)
		}

		// Reject duplicate emails with a field-level error
		exists, err := webApp.Repos.User.EmailExists(ctx, req.Email)
		if err != nil {
			slog.Error("Failed to check email uniqueness", slog.String("error", err.Error()))
			return utils.SendInternalServerError(c, "Failed to create user")
		}
		if exists {
			return utils.SendBadRequest(c, "Validation failed", map[string]string{
				"email": "A user with that email already exists",
			})
		}

		user := &dbmodels.User{
			Email:    req.Email,
			Name:     req.Name,
			IsActive: true,
		}
		if err := user.SetPassword(req.Password); err != nil {
			slog.Error("Failed to hash password", slog.String("error", err.Error()))
			return utils.SendInternalServerError(c, "Failed to create user")
		}

		if err := webApp.Repos.User.Create(ctx, user); err != nil {
			slog.Error("Failed to create user", slog.String("error", err.Error()))
			return utils.SendInternalServerError(c, "Failed to create user")
		}

		slog.Info("User created successfully",
			slog.Int64("user_id", user.ID),
			slog.String("email", user.Email))

		return utils.SendCreated(c, webmodels.NewUserDTO(user), "User created successfully")
	}
}

func TokenCreate(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.Context()

		var req webmodels.TokenRequest

		// Parse JSON body
		if err := c.BodyParser(&req); err != nil {
			return utils.SendError(c, 400, "INVALID_REQUEST", "Invalid request body", map[string]string{
				"error": err.Error(),
			})
		}

		// Validate request
		if validationErrors := utils.ValidateTokenRequest(&req); len(validationErrors) > 0 {
			return utils.HandleValidationErrors(c, validationErrors)
		}

		user, err := webApp.Repos.User.GetByEmail(ctx, req.Email)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				slog.Debug("Token request for unknown email", slog.String("email", req.Email))
				return invalidCredentials(c)
			}
			slog.Error("Failed to look up user", slog.String("error", err.Error()))
			return utils.SendInternalServerError(c, "Failed to issue token")
		}

		if !user.CheckPassword(req.Password) || !user.IsActive {
			slog.Debug("Token request with bad credentials", slog.Int64("user_id", user.ID))
			return invalidCredentials(c)
		}

		token, err := webApp.TokenService.IssueToken(ctx, user)
		if err != nil {
			slog.Error("Failed to issue token",
				slog.Int64("user_id", user.ID),
				slog.String("error", err.Error()))
			return utils.SendInternalServerError(c, "Failed to issue token")
		}

		return utils.SendSuccess(c, webmodels.TokenDTO{Token: token.Key}, "Token issued successfully")
	}
}

func MeRetrieve(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := utils.CurrentUser(c)
		if !ok {
			return utils.SendUnauthorized(c, "Authentication required")
		}

		return utils.SendSuccess(c, webmodels.NewUserDTO(user), "User retrieved successfully")
	}
}

func MeUpdate(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.Context()

		user, ok := utils.CurrentUser(c)
		if !ok {
			return utils.SendUnauthorized(c, "Authentication required")
		}

		var req webmodels.UserCreateRequest

		// Parse JSON body
		if err := c.BodyParser(&req); err != nil {
			return utils.SendError(c, 400, "INVALID_REQUEST", "Invalid request body", map[string]string{
				"error": err.Error(),
			})
		}

		// Validate request
		if validationErrors := utils.ValidateUserManageRequest(&req); len(validationErrors) > 0 {
			return utils.HandleValidationErrors(c, validationErrors)
		}

		// Work on a fresh row, not the cached copy
		current, err := webApp.Repos.User.GetByID(ctx, user.ID)
		if err != nil {
			slog.Error("Failed to load user", slog.String("error", err.Error()))
			return utils.SendInternalServerError(c, "Failed to update user")
		}

		if !strings.EqualFold(req.Email, current.Email) {
			exists, err := webApp.Repos.User.EmailExists(ctx, req.Email)
			if err != nil {
				slog.Error("Failed to check email uniqueness", slog.String("error", err.Error()))
				return utils.SendInternalServerError(c, "Failed to update user")
			}
			if exists {
				return utils.SendBadRequest(c, "Validation failed", map[string]string{
					"email": "A user with that email already exists",
				})
			}
		}

		current.Email = req.Email
		current.Name = req.Name
		if req.Password != "" {
			if err := current.SetPassword(req.Password); err != nil {
				slog.Error("Failed to hash password", slog.String("error", err.Error()))
				return utils.SendInternalServerError(c, "Failed to update user")
			}
		}

		if err := webApp.Repos.User.Update(ctx, current); err != nil {
			slog.Error("Failed to update user",
				slog.Int64("user_id", current.ID),
				slog.String("error", err.Error()))
			return utils.SendInternalServerError(c, "Failed to update user")
		}

		// Drop the cached token entry so the next request sees the new profile
		if key := utils.CurrentTokenKey(c); key != "" {
			webApp.TokenService.Invalidate(key)
		}

		slog.Info("User updated successfully", slog.Int64("user_id", current.ID))

		return utils.SendSuccess(c, webmodels.NewUserDTO(current), "User updated successfully")
	}
}

func MePartialUpdate(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.Context()

		user, ok := utils.CurrentUser(c)
		if !ok {
			return utils.SendUnauthorized(c, "Authentication required")
		}

		var req webmodels.UserUpdateRequest

		// Parse JSON body
		if err := c.BodyParser(&req); err != nil {
			return utils.SendError(c, 400, "INVALID_REQUEST", "Invalid request body", map[string]string{
				"error": err.Error(),
			})
		}

		// Validate request
		if validationErrors := utils.ValidateUserUpdateRequest(&req); len(validationErrors) > 0 {
			return utils.HandleValidationErrors(c, validationErrors)
		}

		// Work on a fresh row, not the cached copy
		current, err := webApp.Repos.User.GetByID(ctx, user.ID)
		if err != nil {
			slog.Error("Failed to load user", slog.String("error", err.Error()))
			return utils.SendInternalServerError(c, "Failed to update user")
		}

		if req.Email != nil && !strings.EqualFold(*req.Email, current.Email) {
			exists, err := webApp.Repos.User.EmailExists(ctx, *req.Email)
			if err != nil {
				slog.Error("Failed to check email uniqueness", slog.String("error", err.Error()))
				return utils.SendInternalServerError(c, "Failed to update user")
			}
			if exists {
				return utils.SendBadRequest(c, "Validation failed", map[string]string{
					"email": "A user with that email already exists",
				})
			}
			current.Email = *req.Email
		}
		if req.Name != nil {
			current.Name = *req.Name
		}
		if req.Password != nil {
			if err := current.SetPassword(*req.Password); err != nil {
				slog.Error("Failed to hash password", slog.String("error", err.Error()))
				return utils.SendInternalServerError(c, "Failed to update user")
			}
		}

		if err := webApp.Repos.User.Update(ctx, current); err != nil {
			slog.Error("Failed to update user",
				slog.Int64("user_id", current.ID),
				slog.String("error", err.Error()))
			return utils.SendInternalServerError(c, "Failed to update user")
		}

		// Drop the cached token entry so the next request sees the new profile
		if key := utils.CurrentTokenKey(c); key != "" {
			webApp.TokenService.Invalidate(key)
		}

		slog.Info("User updated successfully", slog.Int64("user_id", current.ID))

		return utils.SendSuccess(c, webmodels.NewUserDTO(current), "User updated successfully")
	}
}
