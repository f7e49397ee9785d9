package protocol

import "fmt"

// Opcode is the first byte of every command on the wire.
type Opcode uint8

const (
	OpSetKey     Opcode = 0
	OpDeleteKey  Opcode = 1
	OpGetTrack   Opcode = 2
	OpSetRow     Opcode = 3
	OpPause      Opcode = 4
	OpSaveTracks Opcode = 5
)

func (op Opcode) String() string {
	switch op {
	case OpSetKey:
		return "SET_KEY"
	case OpDeleteKey:
		return "DELETE_KEY"
	case OpGetTrack:
		return "GET_TRACK"
	case OpSetRow:
		return "SET_ROW"
	case OpPause:
		return "PAUSE"
	case OpSaveTracks:
		return "SAVE_TRACKS"
	default:
		return "UNKNOWN"
	}
}

// Interpolation selects how a track's value moves from one key to the next.
type Interpolation uint8

const (
	Step   Interpolation = 0
	Linear Interpolation = 1
	Smooth Interpolation = 2
	Ramp   Interpolation = 3
)

// InterpolationFromByte never fails: bytes outside 0..3 fall back to Step.
func InterpolationFromByte(b byte) Interpolation {
	switch Interpolation(b) {
	case Step, Linear, Smooth, Ramp:
		return Interpolation(b)
	default:
		return Step
	}
}

func (i Interpolation) String() string {
	switch i {
	case Step:
		return "step"
	case Linear:
		return "linear"
	case Smooth:
		return "smooth"
	case Ramp:
		return "ramp"
	default:
		return fmt.Sprintf("interpolation(%d)", uint8(i))
	}
}

// Key is one control point on a track curve.
type Key struct {
	Row           uint32
	Value         float32
	Interpolation Interpolation
}

// Command is one decoded protocol message.
type Command interface {
	Opcode() Opcode
}

// SetKey is the controller adding or replacing a key on a track.
type SetKey struct {
	TrackID uint32
	Key     Key
}

// DeleteKey is the controller removing the key at Row from a track.
type DeleteKey struct {
	TrackID uint32
	Row     uint32
}

// GetTrack is the client asking the controller for a track by name.
type GetTrack struct {
	Name string
}

// SetRow carries a playback row in either direction.
type SetRow struct {
	Row uint32
}

// Pause carries the raw flag byte; only 1 means paused.
type Pause struct {
	Flag uint8
}

// Paused reports the transport state the flag encodes.
func (p Pause) Paused() bool {
	return p.Flag == 1
}

type SaveTracks struct{}

// Unknown is any opcode without a table entry. It carries no payload.
type Unknown struct {
	Op Opcode
}

func (SetKey) Opcode() Opcode     { return OpSetKey }
func (DeleteKey) Opcode() Opcode  { return OpDeleteKey }
func (GetTrack) Opcode() Opcode   { return OpGetTrack }
func (SetRow) Opcode() Opcode     { return OpSetRow }
func (Pause) Opcode() Opcode      { return OpPause }
func (SaveTracks) Opcode() Opcode { return OpSaveTracks }
func (u Unknown) Opcode() Opcode  { return u.Op }
