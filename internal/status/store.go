package status

import (
	"sync"
	"time"
)

// Snapshot is a published copy of client state. The poll loop owns the live
// state; HTTP handlers only ever see snapshots.
type Snapshot struct {
	Address   string    `json:"address"`
	SessionID string    `json:"session_id,omitempty"`
	Connected bool      `json:"connected"`
	Row       uint32    `json:"row"`
	Paused    bool      `json:"paused"`
	Tracks    []string  `json:"tracks"`
	Commands  uint64    `json:"commands"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Store struct {
	mu   sync.RWMutex
	snap Snapshot
}

func NewStore() *Store {
	return &Store{snap: Snapshot{Paused: true, Tracks: []string{}}}
}

// Publish replaces the current snapshot. Tracks is copied.
func (s *Store) Publish(snap Snapshot) {
	tracks := make([]string, len(snap.Tracks))
	copy(tracks, snap.Tracks)
	snap.Tracks = tracks
	if snap.UpdatedAt.IsZero() {
		snap.UpdatedAt = time.Now()
	}
	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()
}

func (s *Store) Load() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.snap
	out.Tracks = append([]string(nil), s.snap.Tracks...)
	if out.Tracks == nil {
		out.Tracks = []string{}
	}
	return out
}
