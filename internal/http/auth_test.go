package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"examapp/internal/config"
	"examapp/internal/domain"
	"examapp/internal/repos"
)

func TestPasswordsSeededAreHashed(t *testing.T) {
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()
	var hashes []string
	if err := db.Select(&hashes, `SELECT password_hash FROM users`); err != nil {
		t.Fatalf("select hashes: %v", err)
	}
	if len(hashes) == 0 {
		t.Fatal("no users seeded")
	}
	for _, h := range hashes {
		if strings.Contains(h, "Passw0rd!") {
			t.Fatalf("hash contains plaintext password")
		}
		if err := bcrypt.CompareHashAndPassword([]byte(h), []byte("Passw0rd!")); err != nil {
			t.Fatalf("seed hash does not validate known password: %v", err)
		}
	}
}

func TestLoginRedirectsByRole(t *testing.T) {
	env := newEnv(t)
	if _, err := env.deps.Auth.Register(domain.User{Username: "boss"}, "Passw0rd!",
		domain.RoleManager, domain.RoleAdministrator); err != nil {
		t.Fatal(err)
	}
	if _, err := env.deps.Auth.Register(domain.User{Username: "nobody"}, "Passw0rd!"); err != nil {
		t.Fatal(err)
	}

	cases := []struct{ user, dest string }{
		{"admin", "/admin"},
		{"manager", "/manager"},
		{"client", "/client"},
		{"boss", "/admin"},
		{"nobody", "/"},
	}
	for _, tc := range cases {
		t.Run(tc.user, func(t *testing.T) {
			wantRedirect(t, env.browser(t).login(tc.user, "Passw0rd!"), tc.dest)
		})
	}
}

func TestLoginInputValidation(t *testing.T) {
	env := newEnv(t)
	cases := []struct {
		name, user, pass string
		wantText         string
	}{
		{"empty username", "", "Passw0rd!", `cannot be empty. Please enter your username`},
		{"empty password", "manager", "", `cannot be empty. Please enter your password`},
		{"short password", "manager", "abc", "too short"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := env.browser(t)
			resp := b.login(tc.user, tc.pass)
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("want 400, got %d", resp.StatusCode)
			}
			body := readBody(t, resp)
			if !strings.Contains(body, tc.wantText) {
				t.Fatalf("notice %q missing from page", tc.wantText)
			}
			if tc.user != "" && !strings.Contains(body, `value="`+tc.user+`"`) {
				t.Fatalf("entered username not kept")
			}
		})
	}
}

func TestLoginBadCredentials(t *testing.T) {
	env := newEnv(t)
	b := env.browser(t)
	for _, creds := range [][2]string{{"manager", "wrongpass!"}, {"ghost", "Passw0rd!"}} {
		resp := b.login(creds[0], creds[1])
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("want 401 for %s, got %d", creds[0], resp.StatusCode)
		}
		body := readBody(t, resp)
		if !strings.Contains(body, "Invalid username or password") {
			t.Fatal("generic error notice missing")
		}
		if strings.Contains(body, `value="`+creds[0]+`"`) {
			t.Fatal("username must not be kept after a failed login")
		}
	}
}

func TestLoginBlockedAccount(t *testing.T) {
	env := newEnv(t)
	b := env.browser(t)
	wantRedirect(t, b.login("blocked", "Passw0rd!"), "/login")

	body := readBody(t, b.get("/login"))
	if !strings.Contains(body, "Your account is blocked") {
		t.Fatal("blocked notice not shown")
	}
	wantRedirect(t, b.get("/manager"), "/login")
}

func TestLoginRequiresCSRF(t *testing.T) {
	env := newEnv(t)
	b := env.browser(t)
	b.csrf()
	req := strings.NewReader(url.Values{"username": {"admin"}, "password": {"Passw0rd!"}}.Encode())
	r := httptest.NewRequest(http.MethodPost, "/login", req)
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp := b.do(r)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("want 403 without csrf field, got %d", resp.StatusCode)
	}
}

func TestWelcomeShownOnce(t *testing.T) {
	env := newEnv(t)
	b := env.browser(t)
	wantRedirect(t, b.login("manager", "Passw0rd!"), "/manager")

	first := readBody(t, b.get("/manager"))
	if !strings.Contains(first, "Welcome, Pavel Orlov!") {
		t.Fatal("welcome notice missing on first visit")
	}
	second := readBody(t, b.get("/manager"))
	if strings.Contains(second, "Welcome, Pavel Orlov!") {
		t.Fatal("welcome notice repeated")
	}
}

func TestLogoutShowsFarewellOnce(t *testing.T) {
	env := newEnv(t)
	b := env.browser(t)
	b.login("admin", "Passw0rd!")
	b.get("/admin")

	wantRedirect(t, b.get("/logout"), "/")
	wantRedirect(t, b.get("/admin"), "/login")

	if body := readBody(t, b.get("/login")); !strings.Contains(body, "Goodbye, Anna Sokolova! You have successfully logged out.") {
		t.Fatal("farewell notice missing")
	}
	if body := readBody(t, b.get("/login")); strings.Contains(body, "Goodbye") {
		t.Fatal("farewell notice repeated")
	}
}

func TestLogoutAnonymousIsNoop(t *testing.T) {
	env := newEnv(t)
	b := env.browser(t)
	wantRedirect(t, b.get("/logout"), "/")
	if body := readBody(t, b.get("/login")); strings.Contains(body, "logged out") {
		t.Fatal("anonymous logout must not arm the farewell")
	}
}

func TestLoginThrottle(t *testing.T) {
	env := newEnv(t, func(c *config.Config) { c.LoginRateMax = 2 })
	b := env.browser(t)
	b.login("manager", "wrongpass!")
	b.login("manager", "wrongpass!")
	resp := b.login("manager", "Passw0rd!")
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("want 429 after throttle, got %d", resp.StatusCode)
	}
	if !strings.Contains(readBody(t, resp), "Too many attempts") {
		t.Fatal("throttle notice missing")
	}
}
