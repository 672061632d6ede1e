package usecase

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// AuthUseCase es la puerta de visibilidad del panel: un secreto compartido y
// tokens de sesión en memoria. No es control de acceso real (el embudo no lo
// necesita): sin identidad por usuario, sin lockout, sin rate limit.

const DefaultTokenTTL = 12 * time.Hour

var ErrBadPassword = &DomainError{Code: "BAD_PASSWORD", Message: "contraseña incorrecta"}

type AuthUseCase struct {
	password string
	ttl      time.Duration

	mu     sync.Mutex
	tokens map[string]time.Time // token -> expiración
}

func NewAuthUseCase(password string, ttl time.Duration) *AuthUseCase {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	uc := &AuthUseCase{
		password: password,
		ttl:      ttl,
		tokens:   make(map[string]time.Time),
	}
	go uc.cleanup()
	return uc
}

// Login valida el secreto y emite un token que dura lo que duraría la sesión
// del navegador.
func (uc *AuthUseCase) Login(password string) (string, error) {
	if uc.password == "" || password != uc.password {
		return "", ErrBadPassword
	}

	token := uuid.New().String()
	uc.mu.Lock()
	uc.tokens[token] = time.Now().Add(uc.ttl)
	uc.mu.Unlock()

	return token, nil
}

func (uc *AuthUseCase) Validate(token string) bool {
	if token == "" {
		return false
	}
	uc.mu.Lock()
	defer uc.mu.Unlock()

	expires, ok := uc.tokens[token]
	if !ok {
		return false
	}
	if time.Now().After(expires) {
		delete(uc.tokens, token)
		return false
	}
	return true
}

func (uc *AuthUseCase) Logout(token string) {
	uc.mu.Lock()
	delete(uc.tokens, token)
	uc.mu.Unlock()
}

func (uc *AuthUseCase) cleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()
		uc.mu.Lock()
		for token, expires := range uc.tokens {
			if now.After(expires) {
				delete(uc.tokens, token)
			}
		}
		uc.mu.Unlock()
	}
}
