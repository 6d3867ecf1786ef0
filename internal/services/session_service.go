package services

import (
	"examapp/internal/domain"
	"examapp/internal/repos"
)

// SessionService queues user-visible notices and hands out the one-time
// welcome and farewell messages.
type SessionService struct {
	Sessions *repos.SessionRepo
}

func NewSessionService(sessions *repos.SessionRepo) *SessionService {
	return &SessionService{Sessions: sessions}
}

func (s *SessionService) Notify(sid, level, text string) error {
	return s.Sessions.AddNotice(sid, domain.Notice{Level: level, Text: text})
}

func (s *SessionService) Drain(sid string) ([]domain.Notice, error) {
	return s.Sessions.TakeNotices(sid)
}

// Welcome returns the "welcome" notice once after a successful login.
func (s *SessionService) Welcome(sid string) (domain.Notice, bool, error) {
	name, ok, err := s.Sessions.TakeWelcome(sid)
	if err != nil || !ok {
		return domain.Notice{}, false, err
	}
	return domain.Notice{Level: domain.NoticeSuccess, Text: "Welcome, " + name + "!"}, true, nil
}

// Farewell returns the "logged out" notice once after logout.
func (s *SessionService) Farewell(sid string) (domain.Notice, bool, error) {
	name, ok, err := s.Sessions.TakeLogout(sid)
	if err != nil || !ok {
		return domain.Notice{}, false, err
	}
	text := "You have successfully logged out."
	if name != "" {
		text = "Goodbye, " + name + "! You have successfully logged out."
	}
	return domain.Notice{Level: domain.NoticeInfo, Text: text}, true, nil
}
