package domain

import "strings"

const (
	RoleAdministrator    = "Administrator"
	RoleAuthorizedClient = "Authorized client"
	RoleManager          = "Manager"
)

type User struct {
	ID        int64  `db:"id"`
	Username  string `db:"username"`
	FirstName string `db:"first_name"`
	LastName  string `db:"last_name"`
	Hash      string `db:"password_hash"`
	Blocked   bool   `db:"blocked"`

	Groups []string `db:"-"`
}

// DisplayName is the full name when one is set, otherwise the username.
func (u *User) DisplayName() string {
	full := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if full != "" {
		return full
	}
	return u.Username
}

// HasRole reports whether an authenticated user belongs to the named group.
func HasRole(u *User, role string) bool {
	if u == nil {
		return false
	}
	for _, g := range u.Groups {
		if g == role {
			return true
		}
	}
	return false
}
