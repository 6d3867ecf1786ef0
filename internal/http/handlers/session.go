package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"examapp/internal/domain"
	applog "examapp/internal/log"
	"examapp/internal/services"
)

const sidCookie = "sid"

// ensureSID returns the session id, issuing a new cookie for first-time visitors.
func ensureSID(c *fiber.Ctx, secure bool) string {
	sid := c.Cookies(sidCookie)
	if sid == "" {
		sid = uuid.NewString()
		c.Cookie(&fiber.Cookie{
			Name:     sidCookie,
			Value:    sid,
			Path:     "/",
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
			Secure:   secure,
		})
		// later reads in this request see the new id
		c.Request().Header.SetCookie(sidCookie, sid)
	}
	return sid
}

func currentUser(c *fiber.Ctx) *domain.User {
	u, _ := c.Locals("user").(*domain.User)
	return u
}

// notify queues a user-visible notice for the next rendered page.
func notify(c *fiber.Ctx, sess *services.SessionService, secure bool, level, text string) {
	sid := ensureSID(c, secure)
	if err := sess.Notify(sid, level, text); err != nil {
		applog.Error(c, "session.notice.fail", err, map[string]any{"level": level})
	}
}

// welcome moves a pending one-time welcome notice into the notice queue.
func welcome(c *fiber.Ctx, sess *services.SessionService, secure bool) {
	sid := c.Cookies(sidCookie)
	if sid == "" {
		return
	}
	n, ok, err := sess.Welcome(sid)
	if err != nil {
		applog.Error(c, "session.welcome.fail", err, nil)
		return
	}
	if ok {
		notify(c, sess, secure, n.Level, n.Text)
	}
}
