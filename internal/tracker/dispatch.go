package tracker

import (
	"errors"
	"fmt"

	"github.com/danmuck/synctrack/internal/observability"
	"github.com/danmuck/synctrack/internal/protocol"
	"github.com/rs/zerolog"
)

var (
	// ErrInvariantViolation means a complete frame failed to decode. The
	// reassembler only hands over frames of the registered length, so this
	// is a defect, not a runtime condition.
	ErrInvariantViolation = errors.New("tracker: invariant violation")
	ErrConnectionClosed   = errors.New("tracker: connection closed")
)

// Handler observes commands after they have been applied to State.
type Handler interface {
	OnSetKey(trackID uint32, key protocol.Key)
	OnDeleteKey(trackID, row uint32)
	OnSetRow(row uint32)
	OnPause(paused bool)
	OnSaveTracks()
}

// NopHandler ignores every command. Embed it to override a subset.
type NopHandler struct{}

func (NopHandler) OnSetKey(uint32, protocol.Key) {}
func (NopHandler) OnDeleteKey(uint32, uint32)    {}
func (NopHandler) OnSetRow(uint32)               {}
func (NopHandler) OnPause(bool)                  {}
func (NopHandler) OnSaveTracks()                 {}

// Funcs adapts optional callbacks to Handler. Nil fields are skipped.
type Funcs struct {
	SetKey     func(trackID uint32, key protocol.Key)
	DeleteKey  func(trackID, row uint32)
	SetRow     func(row uint32)
	Pause      func(paused bool)
	SaveTracks func()
}

func (f Funcs) OnSetKey(trackID uint32, key protocol.Key) {
	if f.SetKey != nil {
		f.SetKey(trackID, key)
	}
}

func (f Funcs) OnDeleteKey(trackID, row uint32) {
	if f.DeleteKey != nil {
		f.DeleteKey(trackID, row)
	}
}

func (f Funcs) OnSetRow(row uint32) {
	if f.SetRow != nil {
		f.SetRow(row)
	}
}

func (f Funcs) OnPause(paused bool) {
	if f.Pause != nil {
		f.Pause(paused)
	}
}

func (f Funcs) OnSaveTracks() {
	if f.SaveTracks != nil {
		f.SaveTracks()
	}
}

// Dispatcher decodes complete frames and applies them to a State.
type Dispatcher struct {
	handler Handler
	logger  zerolog.Logger
}

func NewDispatcher(h Handler, logger zerolog.Logger) *Dispatcher {
	if h == nil {
		h = NopHandler{}
	}
	return &Dispatcher{handler: h, logger: logger}
}

// Dispatch decodes one complete frame, updates state, then notifies the
// handler. Unknown opcodes are logged and ignored.
func (d *Dispatcher) Dispatch(state *State, frame []byte) (protocol.Command, error) {
	cmd, err := protocol.Decode(frame)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvariantViolation, err)
	}
	observability.RecordCommand(commandLabel(cmd))

	switch c := cmd.(type) {
	case protocol.SetKey:
		d.logger.Debug().
			Uint32("track_id", c.TrackID).
			Uint32("row", c.Key.Row).
			Float32("value", c.Key.Value).
			Stringer("interpolation", c.Key.Interpolation).
			Msg("set_key")
		d.handler.OnSetKey(c.TrackID, c.Key)
	case protocol.DeleteKey:
		d.logger.Debug().Uint32("track_id", c.TrackID).Uint32("row", c.Row).Msg("delete_key")
		d.handler.OnDeleteKey(c.TrackID, c.Row)
	case protocol.SetRow:
		state.Row = c.Row
		d.logger.Debug().Uint32("row", c.Row).Msg("set_row")
		d.handler.OnSetRow(c.Row)
	case protocol.Pause:
		state.Paused = c.Paused()
		d.logger.Debug().Bool("paused", state.Paused).Uint8("flag", c.Flag).Msg("pause")
		d.handler.OnPause(state.Paused)
	case protocol.SaveTracks:
		d.logger.Debug().Msg("save_tracks")
		d.handler.OnSaveTracks()
	case protocol.Unknown:
		// Opcodes outside the table carry no payload, including GET_TRACK,
		// which only travels client to controller.
		d.logger.Warn().Uint8("opcode", uint8(c.Op)).Msg("ignoring unknown command")
	}
	return cmd, nil
}

func commandLabel(cmd protocol.Command) string {
	if !protocol.Known(cmd.Opcode()) {
		return "UNKNOWN"
	}
	return cmd.Opcode().String()
}
