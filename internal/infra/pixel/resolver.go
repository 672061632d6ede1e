package pixel

import "sync"

// Resolver decide qué Pixel ID usar con precedencia documentada:
// override en caliente (lo fija el admin para pruebas) > valor de entorno.
// Se inyecta donde haga falta en vez de leer estado ambiental.
type Resolver struct {
	mu        sync.RWMutex
	defaultID string
	override  string
}

func NewResolver(defaultID string) *Resolver {
	return &Resolver{defaultID: defaultID}
}

func (r *Resolver) Current() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.override != "" {
		return r.override
	}
	return r.defaultID
}

// SetOverride fija el override de runtime; cadena vacía lo limpia.
func (r *Resolver) SetOverride(id string) {
	r.mu.Lock()
	r.override = id
	r.mu.Unlock()
}

func (r *Resolver) Override() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.override
}

func (r *Resolver) Default() string {
	return r.defaultID
}
