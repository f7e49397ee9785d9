package tracker

import "github.com/danmuck/synctrack/internal/protocol"

// Track is the local copy of one named controller track.
type Track struct {
	Name string
	// Keys stays empty in this client: SET_KEY is surfaced to the Handler,
	// which owns any key storage.
	Keys []protocol.Key
}

// State is the client's view of the controller session. It has no locks;
// one goroutine owns it.
type State struct {
	// Row is the last playback row seen, either pushed by the controller or
	// set optimistically by the host.
	Row    uint32
	Paused bool

	tracks []*Track
	index  map[string]int
}

// NewState returns a paused session with no tracks.
func NewState() *State {
	return &State{
		Paused: true,
		index:  make(map[string]int),
	}
}

// Track looks up a track by name.
func (s *State) Track(name string) (*Track, bool) {
	i, ok := s.index[name]
	if !ok {
		return nil, false
	}
	return s.tracks[i], true
}

// Tracks returns the tracks in request order.
func (s *State) Tracks() []*Track {
	out := make([]*Track, len(s.tracks))
	copy(out, s.tracks)
	return out
}

// Names returns track names in request order.
func (s *State) Names() []string {
	out := make([]string, 0, len(s.tracks))
	for _, t := range s.tracks {
		out = append(out, t.Name)
	}
	return out
}

func (s *State) Len() int {
	return len(s.tracks)
}

// ensureTrack returns the named track, creating it when absent. created
// reports whether this call added it.
func (s *State) ensureTrack(name string) (t *Track, created bool) {
	if t, ok := s.Track(name); ok {
		return t, false
	}
	t = &Track{Name: name}
	s.index[name] = len(s.tracks)
	s.tracks = append(s.tracks, t)
	return t, true
}

// dropLast undoes an ensureTrack whose request never reached the wire.
func (s *State) dropLast(name string) {
	i, ok := s.index[name]
	if !ok || i != len(s.tracks)-1 {
		return
	}
	delete(s.index, name)
	s.tracks = s.tracks[:i]
}
