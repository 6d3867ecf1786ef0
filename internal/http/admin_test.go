package handlers_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"examapp/internal/repos"
)

func (b *browser) upload(path, filename string, content []byte) *http.Response {
	b.t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	_ = w.WriteField("csrf", b.csrf())
	if filename != "" {
		fw, err := w.CreateFormFile("image", filename)
		if err != nil {
			b.t.Fatal(err)
		}
		_, _ = fw.Write(content)
	}
	_ = w.Close()
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return b.do(req)
}

func TestImageUploadReplacesImage(t *testing.T) {
	env := newEnv(t)
	b := env.browser(t)
	b.login("admin", "Passw0rd!")

	wantRedirect(t, b.upload("/products/1/image", "photo.PNG", []byte("\x89PNG fake")), "/admin")

	p, err := repos.NewProductRepo(env.db).Get(1)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(p.Image, "products/1/") || !strings.HasSuffix(p.Image, ".png") {
		t.Fatalf("unexpected image reference %q", p.Image)
	}
	if _, err := os.Stat(filepath.Join(env.cfg.MediaDir, filepath.FromSlash(p.Image))); err != nil {
		t.Fatalf("image not written: %v", err)
	}
	if resp := b.get("/media/" + p.Image); resp.StatusCode != http.StatusOK {
		t.Fatalf("media: want 200, got %d", resp.StatusCode)
	}
	if body := readBody(t, b.get("/admin")); !strings.Contains(body, "Product image updated.") {
		t.Fatal("success notice missing")
	}
}

func TestImageUploadAlwaysRedirects(t *testing.T) {
	env := newEnv(t)
	b := env.browser(t)
	b.login("manager", "Passw0rd!")
	prods := repos.NewProductRepo(env.db)

	wantRedirect(t, b.upload("/products/1/image", "", nil), "/admin")
	wantRedirect(t, b.upload("/products/1/image", "script.exe", []byte("MZ")), "/admin")
	wantRedirect(t, b.upload("/products/999/image", "photo.jpg", []byte("jpg")), "/admin")
	wantRedirect(t, b.upload("/products/abc/image", "photo.jpg", []byte("jpg")), "/admin")

	p, err := prods.Get(1)
	if err != nil {
		t.Fatal(err)
	}
	if p.Image != "" {
		t.Fatalf("image must stay untouched, got %q", p.Image)
	}
}

func TestImageUploadRequiresLogin(t *testing.T) {
	env := newEnv(t)
	wantRedirect(t, env.browser(t).upload("/products/1/image", "photo.png", []byte("png")), "/login")
}

func TestImageUploadStaffOnly(t *testing.T) {
	env := newEnv(t)
	b := env.browser(t)
	b.login("client", "Passw0rd!")
	resp := b.upload("/products/1/image", "photo.png", []byte("png"))
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("client upload: want 403, got %d", resp.StatusCode)
	}
	p, err := repos.NewProductRepo(env.db).Get(1)
	if err != nil {
		t.Fatal(err)
	}
	if p.Image != "" {
		t.Fatalf("client replaced an image: %q", p.Image)
	}
}

func TestMediaBlocksTraversal(t *testing.T) {
	env := newEnv(t)
	b := env.browser(t)
	for _, p := range []string{"/media/%2e%2e/secret", "/media/..%2fsecret"} {
		if resp := b.get(p); resp.StatusCode != http.StatusNotFound {
			t.Fatalf("%s: want 404, got %d", p, resp.StatusCode)
		}
	}
}

func productForm(overrides map[string]string) url.Values {
	v := url.Values{
		"article": {"Z900X1"}, "name": {"Gaming headset"}, "unit": {"pcs"},
		"price": {"4990,00"}, "discount": {"10"}, "amount": {"8"},
		"producer_id": {"1"}, "manufacturer_id": {"3"}, "category_id": {"3"},
		"description": {"Closed-back, USB"},
	}
	for k, val := range overrides {
		v.Set(k, val)
	}
	return v
}

func TestCreateProduct(t *testing.T) {
	env := newEnv(t)
	b := env.browser(t)
	b.login("admin", "Passw0rd!")

	wantRedirect(t, b.post("/admin/products", productForm(nil)), "/admin")
	found, err := repos.NewProductRepo(env.db).Filter(repos.ProductFilter{Search: "Z900X1"})
	if err != nil {
		t.Fatal(err)
	}
	if len(found) != 1 || found[0].FinalPrice().StringFixed(2) != "4491.00" {
		t.Fatalf("product not stored as expected: %+v", found)
	}
	if body := readBody(t, b.get("/admin")); !strings.Contains(body, "Product Gaming headset created.") {
		t.Fatal("success notice missing")
	}
}

func TestCreateProductRejectsBadInput(t *testing.T) {
	env := newEnv(t)
	b := env.browser(t)
	b.login("admin", "Passw0rd!")

	cases := []struct {
		name     string
		override map[string]string
		want     string
	}{
		{"discount above 100", map[string]string{"discount": "150"}, "Discount: must be less than or equal to 100"},
		{"negative discount", map[string]string{"discount": "-1"}, "Discount: must be greater than or equal to 0"},
		{"price not a number", map[string]string{"price": "cheap"}, "Price: must be a number"},
		{"missing name", map[string]string{"name": "  "}, "Name: this field is required"},
		{"no producer", map[string]string{"producer_id": ""}, "Producer: select a value"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			wantRedirect(t, b.post("/admin/products", productForm(tc.override)), "/admin")
			if body := readBody(t, b.get("/admin")); !strings.Contains(body, tc.want) {
				t.Fatalf("notice %q missing", tc.want)
			}
		})
	}
	found, err := repos.NewProductRepo(env.db).Filter(repos.ProductFilter{Search: "Z900X1"})
	if err != nil {
		t.Fatal(err)
	}
	if len(found) != 0 {
		t.Fatalf("invalid products were stored: %d", len(found))
	}
}

func TestCreateProductAdministratorOnly(t *testing.T) {
	env := newEnv(t)
	b := env.browser(t)
	b.login("manager", "Passw0rd!")
	resp := b.post("/admin/products", productForm(nil))
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("want 403, got %d", resp.StatusCode)
	}
}

func TestUpdateOrderStatus(t *testing.T) {
	env := newEnv(t)
	b := env.browser(t)
	b.login("manager", "Passw0rd!")

	resp := b.post("/orders/1/status", url.Values{"status_id": {"4"}},
		"Referer", "http://example.com/manager?search=redmi")
	wantRedirect(t, resp, "/manager?search=redmi")

	o, err := repos.NewOrderRepo(env.db).Get(1)
	if err != nil {
		t.Fatal(err)
	}
	if o.StatusID != 4 {
		t.Fatalf("want status 4, got %d", o.StatusID)
	}

	wantRedirect(t, b.post("/orders/1/status", url.Values{"status_id": {"2"}},
		"Referer", "http://evil.example/phish"), "/manager")
	wantRedirect(t, b.post("/orders/1/status", url.Values{"status_id": {"99"}}), "/manager")
	if body := readBody(t, b.get("/manager")); !strings.Contains(body, "Could not update the order status.") {
		t.Fatal("failure notice missing")
	}
}

func TestUpdateOrderStatusForbiddenForClients(t *testing.T) {
	env := newEnv(t)
	b := env.browser(t)
	b.login("client", "Passw0rd!")
	resp := b.post("/orders/1/status", url.Values{"status_id": {"5"}})
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("want 403, got %d", resp.StatusCode)
	}
}
