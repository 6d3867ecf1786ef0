package handlers

import (
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"
	"github.com/jmoiron/sqlx"

	"examapp/internal/config"
	"examapp/internal/domain"
	applog "examapp/internal/log"
)

const genericError = "Something went wrong. Please try again."

// NewApp builds the fiber application with middleware, static assets and routes.
func NewApp(cfg config.Config, db *sqlx.DB) (*fiber.App, *Deps) {
	deps := NewDeps(db, cfg)

	engine := html.New(cfg.TemplatesDir, ".html")
	engine.Reload(!cfg.Production())

	app := fiber.New(fiber.Config{
		Views:     engine,
		BodyLimit: cfg.MaxUploadBytes,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code, msg := fiber.StatusInternalServerError, genericError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				code = fe.Code
				if code < fiber.StatusInternalServerError {
					msg = fe.Message
				}
			}
			if code >= fiber.StatusInternalServerError {
				applog.Error(c, "server.error", err, nil)
			}
			c.Status(code)
			if rerr := render(c, deps.Session, "error", fiber.Map{"Code": code, "Message": msg}); rerr != nil {
				return c.Status(code).SendString(msg)
			}
			return nil
		},
	})

	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{
		Next: func(c *fiber.Ctx) bool { return c.Path() == "/healthz" },
	}))
	app.Use(helmet.New())
	app.Use(LoadUser(deps.Auth))
	app.Use(limiter.New(limiter.Config{
		Max:        cfg.RateLimitMax,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			p := c.Path()
			return strings.HasPrefix(p, "/static/") || strings.HasPrefix(p, "/media/")
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.global.hit", nil)
			return fiber.NewError(fiber.StatusTooManyRequests, "Too many requests. Please slow down.")
		},
	}))
	app.Use(csrf.New(csrf.Config{
		KeyLookup:      "form:csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		CookieSecure:   cfg.CookieSecure,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Security(c, "csrf.fail", map[string]any{"error": err.Error()})
			return fiber.NewError(fiber.StatusForbidden, "Security check failed. Please refresh and try again.")
		},
	}))
	app.Use(func(c *fiber.Ctx) error {
		if tok, ok := c.Locals("csrf").(string); ok {
			c.Locals("CSRFToken", tok)
		}
		return c.Next()
	})

	app.Static("/static", cfg.StaticDir)
	app.Get("/media/*", mediaHandler(cfg.MediaDir))

	app.Get("/", deps.PageHandler.Home)
	app.Get("/client", deps.PageHandler.Client)
	app.Get("/manager", RequireUser(), deps.PageHandler.Manager)
	app.Get("/admin", RequireUser(), deps.PageHandler.Admin)

	app.Get("/login", deps.AuthHandler.LoginForm)
	app.Post("/login", limiter.New(limiter.Config{
		Max:        cfg.LoginRateMax,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			notify(c, deps.Session, cfg.CookieSecure, domain.NoticeError, "Too many attempts. Please try again later.")
			c.Status(fiber.StatusTooManyRequests)
			return render(c, deps.Session, "login", fiber.Map{"Username": ""})
		},
	}), deps.AuthHandler.Login)
	app.Get("/logout", deps.AuthHandler.Logout)

	app.Get("/search", deps.SearchHandler.Suggest)
	app.Post("/products/:id/image",
		RequireRole(deps.Session, cfg.CookieSecure, domain.RoleAdministrator, domain.RoleManager),
		deps.AdminHandler.UploadImage)
	app.Post("/admin/products",
		RequireRole(deps.Session, cfg.CookieSecure, domain.RoleAdministrator),
		deps.AdminHandler.CreateProduct)
	app.Post("/orders/:id/status",
		RequireRole(deps.Session, cfg.CookieSecure, domain.RoleManager, domain.RoleAdministrator),
		deps.AdminHandler.UpdateOrderStatus)

	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Use(func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "Page not found")
	})
	return app, deps
}

// mediaHandler serves uploaded files from dir, refusing traversal attempts.
func mediaHandler(dir string) fiber.Handler {
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	return func(c *fiber.Ctx) error {
		path := c.Params("*")
		raw := strings.ToLower(path)
		if strings.Contains(raw, "..") || strings.Contains(raw, "%2e") || strings.Contains(raw, "\x00") {
			applog.Security(c, "media.traversal.block", map[string]any{"path": path})
			return c.SendStatus(fiber.StatusNotFound)
		}
		clean := filepath.Clean(path)
		if clean == "." || strings.Contains(clean, "..") || filepath.IsAbs(clean) {
			applog.Security(c, "media.traversal.block", map[string]any{"path": path})
			return c.SendStatus(fiber.StatusNotFound)
		}
		return c.SendFile(filepath.Join(dir, clean), true)
	}
}
