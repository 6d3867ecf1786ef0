package handlers

import (
	"errors"
	"net/url"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"examapp/internal/domain"
	applog "examapp/internal/log"
	"examapp/internal/services"
	"examapp/internal/validate"
)

type AdminHandler struct {
	Catalog *services.CatalogService
	Orders  *services.OrderService
	Media   *services.MediaService
	Sess    *services.SessionService
	Secure  bool
}

// POST /products/:id/image
func (h *AdminHandler) UploadImage(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	fh, err := c.FormFile("image")
	if !ok || err != nil {
		applog.Info(c, "products.image.skip", map[string]any{"product_id": c.Params("id")})
		return c.Redirect("/admin")
	}
	f, err := fh.Open()
	if err != nil {
		applog.Error(c, "products.image.open.fail", err, map[string]any{"product_id": id})
		return c.Redirect("/admin")
	}
	defer f.Close()

	rel, err := h.Media.ReplaceProductImage(id, fh.Filename, f)
	switch {
	case errors.Is(err, services.ErrUnsupportedImage):
		applog.Security(c, "products.image.reject", map[string]any{"product_id": id, "filename": fh.Filename})
		h.notify(c, domain.NoticeWarning, "Only jpg, jpeg, png, gif and webp images are accepted.")
	case err != nil:
		applog.Error(c, "products.image.save.fail", err, map[string]any{"product_id": id})
		h.notify(c, domain.NoticeError, "Could not update the product image.")
	default:
		applog.Audit(c, "products.image.update", map[string]any{"product_id": id, "image": rel})
		h.notify(c, domain.NoticeSuccess, "Product image updated.")
	}
	return c.Redirect("/admin")
}

// POST /admin/products
func (h *AdminHandler) CreateProduct(c *fiber.Ctx) error {
	in, problems := productForm(c)
	if len(problems) > 0 {
		applog.Security(c, "validation.fail", map[string]any{"form": "product", "fields": problems})
		for _, p := range problems {
			h.notify(c, domain.NoticeError, p)
		}
		return c.Redirect("/admin")
	}
	id, err := h.Catalog.CreateProduct(in)
	var perr *services.ProductError
	switch {
	case errors.As(err, &perr):
		applog.Security(c, "validation.fail", map[string]any{"form": "product", "fields": perr.Messages})
		for _, m := range perr.Messages {
			h.notify(c, domain.NoticeError, m)
		}
	case err != nil:
		applog.Error(c, "products.create.fail", err, map[string]any{"article": in.Article})
		h.notify(c, domain.NoticeError, "Could not save the product. Check the selected producer, manufacturer and category.")
	default:
		applog.Audit(c, "products.create", map[string]any{"product_id": id, "article": in.Article})
		h.notify(c, domain.NoticeSuccess, "Product "+in.Name+" created.")
	}
	return c.Redirect("/admin")
}

// POST /orders/:id/status
func (h *AdminHandler) UpdateOrderStatus(c *fiber.Ctx) error {
	back := dashboardReferer(c)
	id, okID := validate.ID(c.Params("id"))
	status, okStatus := validate.ID(c.FormValue("status_id"))
	if !okID || !okStatus {
		applog.Security(c, "validation.fail", map[string]any{"form": "order_status"})
		h.notify(c, domain.NoticeError, "Invalid order or status.")
		return c.Redirect(back)
	}
	if err := h.Orders.SetStatus(id, status); err != nil {
		applog.Error(c, "orders.status.update.fail", err, map[string]any{"order_id": id, "status_id": status})
		h.notify(c, domain.NoticeError, "Could not update the order status.")
		return c.Redirect(back)
	}
	applog.Audit(c, "orders.status.update", map[string]any{"order_id": id, "status_id": status})
	h.notify(c, domain.NoticeSuccess, "Order status updated.")
	return c.Redirect(back)
}

// dashboardReferer returns the referring staff dashboard, or /manager.
func dashboardReferer(c *fiber.Ctx) string {
	ref, err := url.Parse(c.Get(fiber.HeaderReferer))
	if err == nil && (ref.Host == "" || ref.Host == c.Hostname()) {
		if ref.Path == "/admin" || ref.Path == "/manager" {
			if ref.RawQuery != "" {
				return ref.Path + "?" + ref.RawQuery
			}
			return ref.Path
		}
	}
	return "/manager"
}

func (h *AdminHandler) notify(c *fiber.Ctx, level, text string) {
	notify(c, h.Sess, h.Secure, level, text)
}

// productForm converts the raw form; parse problems come back as messages.
func productForm(c *fiber.Ctx) (services.ProductInput, []string) {
	var (
		in       services.ProductInput
		problems []string
		ok       bool
	)
	in.Article = c.FormValue("article")
	in.Name = c.FormValue("name")
	in.Unit = c.FormValue("unit")
	in.Description = c.FormValue("description")

	if in.Price, ok = validate.Decimal(c.FormValue("price")); !ok {
		problems = append(problems, "Price: must be a number")
	}
	discount := strings.TrimSpace(c.FormValue("discount"))
	if discount != "" {
		if in.Discount, ok = validate.Decimal(discount); !ok {
			problems = append(problems, "Discount: must be a number")
		}
	}
	amount, err := strconv.Atoi(strings.TrimSpace(c.FormValue("amount")))
	if err != nil {
		problems = append(problems, "Amount: must be a whole number")
	}
	in.Amount = amount

	for _, ref := range []struct {
		field string
		label string
		dst   *int64
	}{
		{"producer_id", "Producer", &in.ProducerID},
		{"manufacturer_id", "Manufacturer", &in.ManufacturerID},
		{"category_id", "Category", &in.CategoryID},
	} {
		if *ref.dst, ok = validate.ID(c.FormValue(ref.field)); !ok {
			problems = append(problems, ref.label+": select a value")
		}
	}
	return in, problems
}
