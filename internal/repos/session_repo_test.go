package repos_test

import (
	"database/sql"
	"errors"
	"testing"

	"examapp/internal/domain"
	"examapp/internal/repos"
)

func TestSessionBindUnbind(t *testing.T) {
	db := openDB(t)
	s := repos.NewSessionRepo(db)
	u, err := repos.NewUserRepo(db).ByUsername("manager")
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Bind("sid-1", u.ID); err != nil {
		t.Fatal(err)
	}
	id, err := s.UserID("sid-1")
	if err != nil || id != u.ID {
		t.Fatalf("want user %d, got %d (%v)", u.ID, id, err)
	}
	if err := s.Unbind("sid-1"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.UserID("sid-1"); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("want ErrNoRows after unbind, got %v", err)
	}
}

func TestOneTimeFlags(t *testing.T) {
	db := openDB(t)
	s := repos.NewSessionRepo(db)

	if err := s.SetWelcome("sid-2", "Pavel Orlov"); err != nil {
		t.Fatal(err)
	}
	name, ok, err := s.TakeWelcome("sid-2")
	if err != nil || !ok || name != "Pavel Orlov" {
		t.Fatalf("first take: %q %v %v", name, ok, err)
	}
	if _, ok, _ := s.TakeWelcome("sid-2"); ok {
		t.Fatal("welcome flag must fire once")
	}

	// logout replaces a welcome that was never shown
	_ = s.SetWelcome("sid-2", "Pavel Orlov")
	_ = s.SetLogout("sid-2", "Pavel Orlov")
	if _, ok, _ := s.TakeWelcome("sid-2"); ok {
		t.Fatal("welcome must be dropped by logout")
	}
	if name, ok, _ := s.TakeLogout("sid-2"); !ok || name != "Pavel Orlov" {
		t.Fatalf("logout flag: %q %v", name, ok)
	}
	if _, ok, _ := s.TakeLogout("unknown-sid"); ok {
		t.Fatal("unknown session must not carry flags")
	}
}

func TestNoticesDrainInOrder(t *testing.T) {
	db := openDB(t)
	s := repos.NewSessionRepo(db)
	_ = s.AddNotice("sid-3", domain.Notice{Level: domain.NoticeError, Text: "first"})
	_ = s.AddNotice("sid-3", domain.Notice{Level: domain.NoticeInfo, Text: "second"})

	got, err := s.TakeNotices("sid-3")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Text != "first" || got[1].Level != domain.NoticeInfo {
		t.Fatalf("unexpected notices: %+v", got)
	}
	again, _ := s.TakeNotices("sid-3")
	if len(again) != 0 {
		t.Fatalf("queue not drained: %+v", again)
	}
}
