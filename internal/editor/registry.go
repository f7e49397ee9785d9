package editor

import "sync"

// Registry assigns track ids in request order, starting at zero.
type Registry struct {
	mu    sync.RWMutex
	ids   map[string]uint32
	names []string
}

func NewRegistry() *Registry {
	return &Registry{ids: make(map[string]uint32)}
}

// Register returns the id for name, assigning the next one if it is new.
func (r *Registry) Register(name string) (uint32, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id, ok := r.ids[name]; ok {
		return id, false
	}
	id := uint32(len(r.names))
	r.ids[name] = id
	r.names = append(r.names, name)
	return id, true
}

func (r *Registry) ID(name string) (uint32, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.ids[name]
	return id, ok
}

// Names lists registered tracks by id.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.names)
}
