package handlers_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"

	"examapp/internal/config"
	"examapp/internal/http/handlers"
	"examapp/internal/repos"
)

type testEnv struct {
	app  *fiber.App
	deps *handlers.Deps
	db   *sqlx.DB
	cfg  config.Config
}

func newEnv(t *testing.T, tweak ...func(*config.Config)) *testEnv {
	t.Helper()
	cfg := config.Defaults()
	cfg.DBDSN = ":memory:"
	cfg.TemplatesDir = "../../web/templates"
	cfg.StaticDir = "../../web/static"
	cfg.MediaDir = t.TempDir()
	cfg.RateLimitMax = 10000
	cfg.LoginRateMax = 10000
	for _, f := range tweak {
		f(&cfg)
	}
	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	app, deps := handlers.NewApp(cfg, db)
	return &testEnv{app: app, deps: deps, db: db, cfg: cfg}
}

// browser keeps cookies between requests the way a real client would.
type browser struct {
	t       *testing.T
	app     *fiber.App
	cookies map[string]string
}

func (e *testEnv) browser(t *testing.T) *browser {
	return &browser{t: t, app: e.app, cookies: map[string]string{}}
}

func (b *browser) do(req *http.Request) *http.Response {
	b.t.Helper()
	for k, v := range b.cookies {
		req.AddCookie(&http.Cookie{Name: k, Value: v})
	}
	resp, err := b.app.Test(req, -1)
	if err != nil {
		b.t.Fatalf("%s %s: %v", req.Method, req.URL, err)
	}
	for _, c := range resp.Cookies() {
		if c.Value == "" || c.MaxAge < 0 {
			delete(b.cookies, c.Name)
			continue
		}
		b.cookies[c.Name] = c.Value
	}
	return resp
}

func (b *browser) get(path string) *http.Response {
	b.t.Helper()
	return b.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (b *browser) csrf() string {
	b.t.Helper()
	if b.cookies["csrf_"] == "" {
		b.get("/login")
	}
	tok := b.cookies["csrf_"]
	if tok == "" {
		b.t.Fatal("csrf token missing")
	}
	return tok
}

func (b *browser) post(path string, form url.Values, headers ...string) *http.Response {
	b.t.Helper()
	if form == nil {
		form = url.Values{}
	}
	form.Set("csrf", b.csrf())
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	return b.do(req)
}

func (b *browser) login(username, password string) *http.Response {
	b.t.Helper()
	return b.post("/login", url.Values{"username": {username}, "password": {password}})
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(raw)
}

func wantRedirect(t *testing.T, resp *http.Response, location string) {
	t.Helper()
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("want 302, got %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Location"); got != location {
		t.Fatalf("want redirect to %q, got %q", location, got)
	}
}
