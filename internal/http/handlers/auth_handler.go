package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"examapp/internal/domain"
	"examapp/internal/log"
	"examapp/internal/services"
)

type AuthHandler struct {
	Auth   *services.AuthService
	Sess   *services.SessionService
	Secure bool
}

// GET /login
func (h *AuthHandler) LoginForm(c *fiber.Ctx) error {
	if sid := c.Cookies(sidCookie); sid != "" {
		n, ok, err := h.Sess.Farewell(sid)
		if err != nil {
			log.Error(c, "session.farewell.fail", err, nil)
		} else if ok {
			notify(c, h.Sess, h.Secure, n.Level, n.Text)
		}
	}
	return render(c, h.Sess, "login", fiber.Map{"Username": ""})
}

// POST /login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	sid := ensureSID(c, h.Secure)
	username := c.FormValue("username")
	pass := c.FormValue("password")

	switch err := h.Auth.CheckInput(username, pass); {
	case errors.Is(err, services.ErrEmptyUsername):
		log.Security(c, "auth.login.fail", map[string]any{"reason": "empty_username"})
		notify(c, h.Sess, h.Secure, domain.NoticeError, `The "Username" field cannot be empty. Please enter your username.`)
		return h.retry(c, username)
	case errors.Is(err, services.ErrEmptyPassword):
		log.Security(c, "auth.login.fail", map[string]any{"username": username, "reason": "empty_password"})
		notify(c, h.Sess, h.Secure, domain.NoticeError, `The "Password" field cannot be empty. Please enter your password.`)
		return h.retry(c, username)
	case errors.Is(err, services.ErrPasswordTooShort):
		log.Security(c, "auth.login.fail", map[string]any{"username": username, "reason": "short_password"})
		notify(c, h.Sess, h.Secure, domain.NoticeWarning, "The password is too short. Please check your input.")
		return h.retry(c, username)
	}

	u, err := h.Auth.Login(sid, username, pass)
	switch {
	case errors.Is(err, services.ErrBadCreds):
		log.Security(c, "auth.login.fail", map[string]any{"username": username})
		notify(c, h.Sess, h.Secure, domain.NoticeError, "Invalid username or password. Please try again.")
		c.Status(fiber.StatusUnauthorized)
		return render(c, h.Sess, "login", fiber.Map{"Username": ""})
	case errors.Is(err, services.ErrAccountBlocked):
		log.Security(c, "auth.login.blocked", map[string]any{"username": username})
		notify(c, h.Sess, h.Secure, domain.NoticeError, "Your account is blocked. Please contact the administrator.")
		return c.Redirect("/login")
	case err != nil:
		return err
	}

	c.Locals("user", u)
	log.Audit(c, "auth.login.success", map[string]any{"username": u.Username})
	dest, ok := services.Destination(u)
	if !ok {
		log.Security(c, "auth.login.no_role", map[string]any{"username": u.Username})
		notify(c, h.Sess, h.Secure, domain.NoticeWarning, "Your account has no role assigned. Please contact the administrator.")
		return c.Redirect("/")
	}
	return c.Redirect(dest)
}

func (h *AuthHandler) retry(c *fiber.Ctx, username string) error {
	c.Status(fiber.StatusBadRequest)
	return render(c, h.Sess, "login", fiber.Map{"Username": username})
}

// GET /logout
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if sid := c.Cookies(sidCookie); sid != "" && currentUser(c) != nil {
		name, err := h.Auth.Logout(sid)
		if err != nil {
			log.Error(c, "auth.logout.fail", err, nil)
		} else {
			log.Audit(c, "auth.logout", map[string]any{"name": name})
		}
	}
	return c.Redirect("/")
}
