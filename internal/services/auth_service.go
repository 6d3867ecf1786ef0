package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"examapp/internal/domain"
	"examapp/internal/repos"
	"examapp/internal/validate"
)

var (
	ErrBadCreds         = errors.New("invalid username or password")
	ErrAccountBlocked   = errors.New("account is blocked")
	ErrEmptyUsername    = errors.New("username is empty")
	ErrEmptyPassword    = errors.New("password is empty")
	ErrPasswordTooShort = errors.New("password is too short")
	ErrAccessDenied     = errors.New("access denied")
)

// RoleRoute maps a group to the dashboard it lands on after login.
type RoleRoute struct {
	Role string
	Path string
}

// RoleRoutes is evaluated top-down; the first group the user belongs to wins.
var RoleRoutes = []RoleRoute{
	{Role: domain.RoleAdministrator, Path: "/admin"},
	{Role: domain.RoleAuthorizedClient, Path: "/client"},
	{Role: domain.RoleManager, Path: "/manager"},
}

type AuthService struct {
	Users          *repos.UserRepo
	Sessions       *repos.SessionRepo
	MinPasswordLen int
}

func NewAuthService(users *repos.UserRepo, sessions *repos.SessionRepo, minPasswordLen int) *AuthService {
	return &AuthService{Users: users, Sessions: sessions, MinPasswordLen: minPasswordLen}
}

// CheckInput applies the login form rules before any credential lookup.
func (s *AuthService) CheckInput(username, password string) error {
	if strings.TrimSpace(username) == "" {
		return ErrEmptyUsername
	}
	if password == "" {
		return ErrEmptyPassword
	}
	if len([]rune(password)) < s.MinPasswordLen {
		return ErrPasswordTooShort
	}
	return nil
}

// Login authenticates and binds the session. A blocked account is signed out
// of sid and reported with ErrAccountBlocked.
func (s *AuthService) Login(sid, username, password string) (*domain.User, error) {
	username, ok := validate.Username(username)
	if !ok {
		return nil, ErrBadCreds
	}
	u, err := s.Users.ByUsername(username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBadCreds
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return nil, ErrBadCreds
	}
	if u.Blocked {
		if err := s.Sessions.Unbind(sid); err != nil {
			return nil, err
		}
		return u, ErrAccountBlocked
	}
	if err := s.Sessions.Bind(sid, u.ID); err != nil {
		return nil, err
	}
	if err := s.Sessions.SetWelcome(sid, u.DisplayName()); err != nil {
		return nil, err
	}
	return u, nil
}

// Logout arms the farewell notice and unbinds the session. It returns the
// display name of the user that was signed out, or "" for anonymous sessions.
func (s *AuthService) Logout(sid string) (string, error) {
	u, err := s.CurrentUser(sid)
	switch {
	case errors.Is(err, sql.ErrNoRows), err == ErrAccountBlocked:
		return "", nil
	case err != nil:
		return "", err
	}
	name := u.DisplayName()
	if err := s.Sessions.SetLogout(sid, name); err != nil {
		return "", err
	}
	return name, s.Sessions.Unbind(sid)
}

// CurrentUser resolves the user bound to sid. Sessions of accounts blocked
// after sign-in are torn down on the spot.
func (s *AuthService) CurrentUser(sid string) (*domain.User, error) {
	id, err := s.Sessions.UserID(sid)
	if err != nil {
		return nil, err
	}
	u, err := s.Users.ByID(id)
	if err != nil {
		return nil, err
	}
	if u.Blocked {
		if err := s.Sessions.Unbind(sid); err != nil {
			return nil, fmt.Errorf("%w: unbind session: %w", ErrAccountBlocked, err)
		}
		return nil, ErrAccountBlocked
	}
	return u, nil
}

// Register creates an account with a bcrypt-hashed password.
func (s *AuthService) Register(u domain.User, password string, groups ...string) (int64, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}
	u.Hash = string(h)
	return s.Users.Create(u, groups...)
}

// Destination picks the landing page by role precedence.
func Destination(u *domain.User) (string, bool) {
	for _, rr := range RoleRoutes {
		if domain.HasRole(u, rr.Role) {
			return rr.Path, true
		}
	}
	return "", false
}

// Authorize returns ErrAccessDenied unless u holds one of roles.
func Authorize(u *domain.User, roles ...string) error {
	for _, r := range roles {
		if domain.HasRole(u, r) {
			return nil
		}
	}
	return ErrAccessDenied
}
