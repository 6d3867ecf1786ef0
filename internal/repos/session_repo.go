package repos

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"examapp/internal/domain"
)

// SessionRepo stores the sid cookie's server-side record: the bound user,
// the one-time welcome/logout notices and the queue of pending notices.
type SessionRepo struct{ db *sqlx.DB }

func NewSessionRepo(db *sqlx.DB) *SessionRepo { return &SessionRepo{db: db} }

func (r *SessionRepo) Ensure(sid string) error {
	_, err := r.db.Exec(`INSERT INTO sessions(id,last_seen) VALUES(?,CURRENT_TIMESTAMP)
	                     ON CONFLICT(id) DO UPDATE SET last_seen=CURRENT_TIMESTAMP`, sid)
	return err
}

func (r *SessionRepo) Bind(sid string, userID int64) error {
	_, err := r.db.Exec(`INSERT INTO sessions(id,user_id,last_seen)
	                     VALUES(?,?,CURRENT_TIMESTAMP)
	                     ON CONFLICT(id) DO UPDATE SET user_id=excluded.user_id,last_seen=CURRENT_TIMESTAMP`, sid, userID)
	return err
}

func (r *SessionRepo) Unbind(sid string) error {
	_, err := r.db.Exec(`UPDATE sessions SET user_id=NULL,last_seen=CURRENT_TIMESTAMP WHERE id=?`, sid)
	return err
}

// UserID returns the user bound to sid, or sql.ErrNoRows for anonymous sessions.
func (r *SessionRepo) UserID(sid string) (int64, error) {
	var id sql.NullInt64
	if err := r.db.Get(&id, `SELECT user_id FROM sessions WHERE id=?`, sid); err != nil {
		return 0, err
	}
	if !id.Valid {
		return 0, sql.ErrNoRows
	}
	return id.Int64, nil
}

const (
	flagWelcome = "show_welcome"
	flagLogout  = "show_logout"
)

// SetWelcome arms the one-time welcome notice; any pending farewell is dropped.
func (r *SessionRepo) SetWelcome(sid, name string) error {
	return r.setFlag(sid, flagWelcome, flagLogout, name)
}

// SetLogout arms the one-time farewell notice; any pending welcome is dropped.
func (r *SessionRepo) SetLogout(sid, name string) error {
	return r.setFlag(sid, flagLogout, flagWelcome, name)
}

func (r *SessionRepo) TakeWelcome(sid string) (string, bool, error) {
	return r.takeFlag(sid, flagWelcome)
}

func (r *SessionRepo) TakeLogout(sid string) (string, bool, error) {
	return r.takeFlag(sid, flagLogout)
}

func (r *SessionRepo) setFlag(sid, on, off, name string) error {
	_, err := r.db.Exec(`INSERT INTO sessions(id,`+on+`,`+off+`,display_name,last_seen)
	                     VALUES(?,1,0,?,CURRENT_TIMESTAMP)
	                     ON CONFLICT(id) DO UPDATE SET `+on+`=1,`+off+`=0,display_name=excluded.display_name,last_seen=CURRENT_TIMESTAMP`,
		sid, name)
	return err
}

// takeFlag reads and clears a flag together with the stored display name.
func (r *SessionRepo) takeFlag(sid, flag string) (string, bool, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return "", false, err
	}
	defer func() { _ = tx.Rollback() }()

	var row struct {
		On   bool   `db:"flag"`
		Name string `db:"display_name"`
	}
	err = tx.Get(&row, `SELECT `+flag+` AS flag, display_name FROM sessions WHERE id=?`, sid)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	if !row.On {
		return "", false, nil
	}
	if _, err := tx.Exec(`UPDATE sessions SET `+flag+`=0, display_name='' WHERE id=?`, sid); err != nil {
		return "", false, err
	}
	return row.Name, true, tx.Commit()
}

func (r *SessionRepo) AddNotice(sid string, n domain.Notice) error {
	if err := r.Ensure(sid); err != nil {
		return err
	}
	_, err := r.db.Exec(`INSERT INTO session_notices(session_id,level,text) VALUES(?,?,?)`, sid, n.Level, n.Text)
	return err
}

// TakeNotices drains the queue in insertion order.
func (r *SessionRepo) TakeNotices(sid string) ([]domain.Notice, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	out := []domain.Notice{}
	if err := tx.Select(&out, `SELECT level, text FROM session_notices WHERE session_id=? ORDER BY id`, sid); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}
	if _, err := tx.Exec(`DELETE FROM session_notices WHERE session_id=?`, sid); err != nil {
		return nil, err
	}
	return out, tx.Commit()
}
