package handlers

import (
	"github.com/gofiber/fiber/v2"

	"examapp/internal/domain"
	"examapp/internal/log"
	"examapp/internal/services"
)

const boardSize = 50

type PageHandler struct {
	Catalog *services.CatalogService
	Orders  *services.OrderService
	Sess    *services.SessionService
	Secure  bool
}

// GET /
func (h *PageHandler) Home(c *fiber.Ctx) error {
	return render(c, h.Sess, "home", fiber.Map{"Products": h.products(c)})
}

// GET /client
func (h *PageHandler) Client(c *fiber.Ctx) error {
	u := currentUser(c)
	if !domain.HasRole(u, domain.RoleAuthorizedClient) {
		log.Security(c, "access.denied.client", nil)
		notify(c, h.Sess, h.Secure, domain.NoticeError, "You do not have access to the client page.")
		return fiber.NewError(fiber.StatusForbidden, "Access denied")
	}
	welcome(c, h.Sess, h.Secure)

	orders, err := h.Orders.ClientOrders(u.ID)
	if err != nil {
		log.Error(c, "client.orders.fail", err, nil)
		notify(c, h.Sess, h.Secure, domain.NoticeError, "Could not load your orders.")
		orders = []domain.Order{}
	}
	points, err := h.Orders.PickupPoints()
	if err != nil {
		log.Error(c, "client.pickup_points.fail", err, nil)
		points = []domain.PickupPoint{}
	}
	return render(c, h.Sess, "client", fiber.Map{"Products": h.products(c), "Orders": orders, "PickupPoints": points})
}

// GET /manager
func (h *PageHandler) Manager(c *fiber.Ctx) error {
	welcome(c, h.Sess, h.Secure)
	return render(c, h.Sess, "manager", h.dashboard(c))
}

// GET /admin
func (h *PageHandler) Admin(c *fiber.Ctx) error {
	welcome(c, h.Sess, h.Secure)
	data := h.dashboard(c)
	form, err := h.Catalog.Form()
	if err != nil {
		log.Error(c, "admin.form.fail", err, nil)
		notify(c, h.Sess, h.Secure, domain.NoticeError, "Could not load the product form.")
	}
	data["Form"] = form
	data["Upload"] = true
	return render(c, h.Sess, "admin", data)
}

// products lists the catalogue; a storage fault yields an empty list and a notice.
func (h *PageHandler) products(c *fiber.Ctx) []domain.Product {
	ps, err := h.Catalog.Products()
	if err != nil {
		log.Error(c, "catalog.list.fail", err, nil)
		notify(c, h.Sess, h.Secure, domain.NoticeError, "Could not load products. Please try again later.")
		return []domain.Product{}
	}
	return ps
}

func (h *PageHandler) dashboard(c *fiber.Ctx) fiber.Map {
	listing, err := h.Catalog.Filter(c.Query("search"), c.Query("sort"), c.Query("producer"))
	if err != nil {
		log.Error(c, "catalog.filter.fail", err, nil)
		notify(c, h.Sess, h.Secure, domain.NoticeError, "Could not load products. Please try again later.")
		listing.Products = []domain.Product{}
	}
	if listing.ProducerIgnored {
		log.Info(c, "catalog.filter.producer_ignored", map[string]any{"producer": c.Query("producer")})
	}
	board, err := h.Orders.Board(boardSize)
	if err != nil {
		log.Error(c, "orders.board.fail", err, nil)
		notify(c, h.Sess, h.Secure, domain.NoticeError, "Could not load orders.")
	}
	return fiber.Map{"Listing": listing, "Products": listing.Products, "Board": board}
}
