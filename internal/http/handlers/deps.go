package handlers

import (
	"github.com/jmoiron/sqlx"

	"examapp/internal/config"
	"examapp/internal/repos"
	"examapp/internal/services"
)

type Deps struct {
	Auth    *services.AuthService
	Session *services.SessionService

	AuthHandler   *AuthHandler
	PageHandler   *PageHandler
	SearchHandler *SearchHandler
	AdminHandler  *AdminHandler
}

func NewDeps(db *sqlx.DB, cfg config.Config) *Deps {
	userRepo := repos.NewUserRepo(db)
	sessRepo := repos.NewSessionRepo(db)
	prodRepo := repos.NewProductRepo(db)
	refRepo := repos.NewReferenceRepo(db)
	orderRepo := repos.NewOrderRepo(db)

	authSvc := services.NewAuthService(userRepo, sessRepo, cfg.PasswordMinLength)
	sessSvc := services.NewSessionService(sessRepo)
	catalogSvc := services.NewCatalogService(prodRepo, refRepo)
	orderSvc := services.NewOrderService(orderRepo, refRepo)
	mediaSvc := services.NewMediaService(cfg.MediaDir, prodRepo)

	secure := cfg.CookieSecure
	return &Deps{
		Auth:    authSvc,
		Session: sessSvc,

		AuthHandler:   &AuthHandler{Auth: authSvc, Sess: sessSvc, Secure: secure},
		PageHandler:   &PageHandler{Catalog: catalogSvc, Orders: orderSvc, Sess: sessSvc, Secure: secure},
		SearchHandler: &SearchHandler{Catalog: catalogSvc},
		AdminHandler:  &AdminHandler{Catalog: catalogSvc, Orders: orderSvc, Media: mediaSvc, Sess: sessSvc, Secure: secure},
	}
}
