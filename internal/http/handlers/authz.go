package handlers

import (
	"database/sql"
	"errors"

	"github.com/gofiber/fiber/v2"

	"examapp/internal/domain"
	applog "examapp/internal/log"
	"examapp/internal/services"
)

// LoadUser attaches the signed-in user to the request, if any.
func LoadUser(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if sid := c.Cookies(sidCookie); sid != "" {
			switch u, err := auth.CurrentUser(sid); {
			case err == nil:
				c.Locals("user", u)
			case errors.Is(err, sql.ErrNoRows):
			case err == services.ErrAccountBlocked:
				applog.Security(c, "auth.session.blocked", nil)
			default:
				applog.Error(c, "auth.session.load.fail", err, nil)
			}
		}
		return c.Next()
	}
}

// RequireUser enforces that a user is logged in; otherwise redirect to login.
func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if currentUser(c) == nil {
			applog.Security(c, "access.denied.anonymous", nil)
			return c.Redirect("/login")
		}
		return c.Next()
	}
}

// RequireRole lets through users holding any of roles; others get 403 with a notice.
func RequireRole(sess *services.SessionService, secure bool, roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u := currentUser(c)
		if u == nil {
			return c.Redirect("/login")
		}
		if err := services.Authorize(u, roles...); err == nil {
			return c.Next()
		}
		applog.Security(c, "access.denied.role", map[string]any{"roles": roles})
		notify(c, sess, secure, domain.NoticeError, "You do not have access to this action.")
		return fiber.NewError(fiber.StatusForbidden, "Access denied")
	}
}
