package repos

import (
	"github.com/jmoiron/sqlx"

	"examapp/internal/domain"
)

type UserRepo struct{ DB *sqlx.DB }

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = `id, username, first_name, last_name, password_hash, blocked`

func (r *UserRepo) ByUsername(username string) (*domain.User, error) {
	var u domain.User
	if err := r.DB.Get(&u, `SELECT `+userColumns+` FROM users WHERE username=?`, username); err != nil {
		return nil, err
	}
	return r.withGroups(&u)
}

func (r *UserRepo) ByID(id int64) (*domain.User, error) {
	var u domain.User
	if err := r.DB.Get(&u, `SELECT `+userColumns+` FROM users WHERE id=?`, id); err != nil {
		return nil, err
	}
	return r.withGroups(&u)
}

func (r *UserRepo) withGroups(u *domain.User) (*domain.User, error) {
	groups := []string{}
	if err := r.DB.Select(&groups, `
	  SELECT g.name FROM user_groups ug
	  JOIN groups g ON g.id = ug.group_id
	  WHERE ug.user_id = ?
	  ORDER BY g.name`, u.ID); err != nil {
		return nil, err
	}
	u.Groups = groups
	return u, nil
}

// Create stores a user with an already hashed password and attaches the named groups.
// Unknown group names are created on the fly.
func (r *UserRepo) Create(u domain.User, groups ...string) (int64, error) {
	tx, err := r.DB.Beginx()
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.Exec(`INSERT INTO users(username,first_name,last_name,password_hash,blocked) VALUES(?,?,?,?,?)`,
		u.Username, u.FirstName, u.LastName, u.Hash, u.Blocked)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	for _, g := range groups {
		if _, err := tx.Exec(`INSERT INTO groups(name) VALUES(?) ON CONFLICT(name) DO NOTHING`, g); err != nil {
			return 0, err
		}
		if _, err := tx.Exec(`INSERT INTO user_groups(user_id,group_id) SELECT ?, id FROM groups WHERE name=?`, id, g); err != nil {
			return 0, err
		}
	}
	return id, tx.Commit()
}

func (r *UserRepo) SetBlocked(id int64, blocked bool) error {
	_, err := r.DB.Exec(`UPDATE users SET blocked=? WHERE id=?`, blocked, id)
	return err
}
