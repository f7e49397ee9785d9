package frame

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"

	"github.com/danmuck/synctrack/internal/protocol"
)

// ErrWouldBlock may be returned by a Source that has no bytes ready.
var ErrWouldBlock = errors.New("frame: read would block")

// State is the reassembly phase of the in-flight command.
type State uint8

const (
	AwaitingHeader State = iota
	AwaitingPayload
	ReadyToDispatch
)

func (s State) String() string {
	switch s {
	case AwaitingHeader:
		return "awaiting_header"
	case AwaitingPayload:
		return "awaiting_payload"
	case ReadyToDispatch:
		return "ready_to_dispatch"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// LengthFunc maps an opcode to its fixed payload size.
type LengthFunc func(op protocol.Opcode) int

// Handler receives each complete command exactly once. The slice is only
// valid for the duration of the call.
type Handler interface {
	HandleFrame(frame []byte) error
}

type HandlerFunc func(frame []byte) error

func (f HandlerFunc) HandleFrame(frame []byte) error { return f(frame) }

// Reassembler accumulates one command at a time from a source that may
// deliver any number of bytes per read, including none.
type Reassembler struct {
	lengths   LengthFunc
	state     State
	remaining int
	buf       []byte
	scratch   []byte
}

type Option func(*Reassembler)

// WithLengths replaces the opcode table consulted after each header byte.
func WithLengths(fn LengthFunc) Option {
	return func(r *Reassembler) {
		if fn != nil {
			r.lengths = fn
		}
	}
}

func New(opts ...Option) *Reassembler {
	r := &Reassembler{
		lengths: protocol.PayloadLen,
		state:   AwaitingHeader,
		buf:     make([]byte, 0, protocol.FrameLen(protocol.OpSetKey)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Reassembler) State() State {
	return r.state
}

// Remaining is the number of payload bytes still needed in AwaitingPayload.
func (r *Reassembler) Remaining() int {
	return r.remaining
}

// Buffered is the number of bytes held for the in-flight command.
func (r *Reassembler) Buffered() int {
	return len(r.buf)
}

// Step advances the state machine by one poll: at most one read from src and
// at most one call into h. A would-block read is not an error. Any other read
// error is returned after keeping whatever bytes came with it.
func (r *Reassembler) Step(src io.Reader, h Handler) (bool, error) {
	var readErr error
	switch r.state {
	case AwaitingHeader:
		readErr = r.readHeader(src)
	case AwaitingPayload:
		readErr = r.readPayload(src)
	}
	if r.state != ReadyToDispatch {
		return false, readErr
	}

	err := h.HandleFrame(r.buf)
	r.buf = r.buf[:0]
	r.remaining = 0
	r.state = AwaitingHeader
	if err != nil {
		return true, err
	}
	return true, readErr
}

func (r *Reassembler) readHeader(src io.Reader) error {
	var op [1]byte
	n, err := src.Read(op[:])
	if n == 1 {
		r.buf = append(r.buf, op[0])
		r.remaining = r.lengths(protocol.Opcode(op[0]))
		if r.remaining > 0 {
			r.state = AwaitingPayload
		} else {
			r.remaining = 0
			r.state = ReadyToDispatch
		}
	}
	return filterWouldBlock(err)
}

func (r *Reassembler) readPayload(src io.Reader) error {
	if cap(r.scratch) < r.remaining {
		r.scratch = make([]byte, r.remaining)
	}
	chunk := r.scratch[:r.remaining]
	n, err := src.Read(chunk)
	if n > 0 {
		if n > r.remaining {
			n = r.remaining
		}
		r.buf = append(r.buf, chunk[:n]...)
		r.remaining -= n
		if r.remaining == 0 {
			r.state = ReadyToDispatch
		}
	}
	return filterWouldBlock(err)
}

// IsWouldBlock reports whether err means "no bytes yet" rather than failure.
func IsWouldBlock(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrWouldBlock) || errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func filterWouldBlock(err error) error {
	if IsWouldBlock(err) {
		return nil
	}
	return err
}
