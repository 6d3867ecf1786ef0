package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "examapp/internal/log"
	"examapp/internal/services"
)

// render injects the current user, CSRF token and drained notices into data.
func render(c *fiber.Ctx, sess *services.SessionService, tmpl string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	if u := currentUser(c); u != nil {
		data["User"] = u
	}
	tok, _ := c.Locals("CSRFToken").(string)
	if tok == "" {
		tok = c.Cookies("csrf_")
	}
	data["CSRFToken"] = tok
	if sid := c.Cookies(sidCookie); sid != "" && sess != nil {
		notices, err := sess.Drain(sid)
		if err != nil {
			applog.Error(c, "session.notices.fail", err, nil)
		}
		data["Notices"] = notices
	}
	return c.Render(tmpl, data)
}
