package memory

import (
	"sync"
	"time"

	"github.com/fenixacademy/funnel-backend/internal/entity"
)

// SessionStore guarda las sesiones del formulario en memoria del proceso.
// Una sesión nunca se persiste a medias: si el proceso muere, el visitante
// simplemente abre el modal de nuevo y arranca de cero.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*entity.FormSession
	ttl      time.Duration
}

const DefaultSessionTTL = 2 * time.Hour

func NewSessionStore(ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	st := &SessionStore{
		sessions: make(map[string]*entity.FormSession),
		ttl:      ttl,
	}
	go st.cleanup()
	return st
}

func (st *SessionStore) Put(s *entity.FormSession) {
	st.mu.Lock()
	st.sessions[s.ID] = s
	st.mu.Unlock()
}

// With ejecuta fn con la sesión bajo el lock del store; así todas las
// mutaciones de una sesión quedan serializadas (incluidos los temporizadores).
func (st *SessionStore) With(id string, fn func(*entity.FormSession) error) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	s, ok := st.sessions[id]
	if !ok {
		return entity.ErrSessionNotFound
	}
	return fn(s)
}

func (st *SessionStore) cleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()
		st.mu.Lock()
		for id, s := range st.sessions {
			stale := now.Sub(s.UpdatedAt) > st.ttl
			doneFor := s.Closed && now.Sub(s.UpdatedAt) > 10*time.Minute
			if stale || doneFor {
				delete(st.sessions, id)
			}
		}
		st.mu.Unlock()
	}
}
