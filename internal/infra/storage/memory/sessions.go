package memory

import (
	"sync"

	"tripdesk/internal/app/session"
)

// SessionRegistry tracks live search sessions. At most one session owns a
// given inquiry token: storing a new one retires the old owner under the
// registry lock, so two owners never coexist even momentarily.
type SessionRegistry struct {
	mu        sync.Mutex
	byID      map[string]*session.Session
	byInquiry map[string]string
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		byID:      make(map[string]*session.Session),
		byInquiry: make(map[string]string),
	}
}

// Replace stores the session and returns the retired previous owner of the
// same inquiry token, already cancelled, or nil.
func (r *SessionRegistry) Replace(s *session.Session) *session.Session {
	inquiry := s.Stay().InquiryToken

	r.mu.Lock()
	defer r.mu.Unlock()
	var retired *session.Session
	if oldID, ok := r.byInquiry[inquiry]; ok {
		if old := r.byID[oldID]; old != nil {
			old.Cancel()
			retired = old
		}
		delete(r.byID, oldID)
	}
	r.byID[s.ID()] = s
	r.byInquiry[inquiry] = s.ID()
	return retired
}

func (r *SessionRegistry) Get(id string) (*session.Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byID[id]
	return s, ok
}

// Remove cancels and forgets the session.
func (r *SessionRegistry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byID[id]
	if !ok {
		return
	}
	s.Cancel()
	delete(r.byID, id)
	inquiry := s.Stay().InquiryToken
	if r.byInquiry[inquiry] == id {
		delete(r.byInquiry, inquiry)
	}
}
