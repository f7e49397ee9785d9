package tracker

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/danmuck/synctrack/internal/observability"
	"github.com/danmuck/synctrack/internal/protocol"
	"github.com/danmuck/synctrack/internal/protocol/frame"
	"github.com/danmuck/synctrack/internal/protocol/session"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type readDeadliner interface {
	SetReadDeadline(t time.Time) error
}

type writeDeadliner interface {
	SetWriteDeadline(t time.Time) error
}

// Client owns one handshaken controller connection and the session state
// fed by it. All methods must be called from a single goroutine.
type Client struct {
	conn      io.ReadWriter
	cfg       session.Config
	state     *State
	asm       *frame.Reassembler
	dispatch  *Dispatcher
	handler   Handler
	logger    zerolog.Logger
	sessionID string

	last   protocol.Command
	closed bool
}

type Option func(*Client)

// WithHandler receives every applied command.
func WithHandler(h Handler) Option {
	return func(c *Client) {
		if h != nil {
			c.handler = h
		}
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithSessionID tags log lines with a connection identifier.
func WithSessionID(id string) Option {
	return func(c *Client) {
		c.sessionID = id
	}
}

// New wraps a connection that has already completed the greeting exchange.
// When conn is a net.Conn, polls are bounded by cfg.PollTimeout; any other
// reader must not block (return 0 bytes or frame.ErrWouldBlock instead).
func New(conn io.ReadWriter, cfg session.Config, opts ...Option) *Client {
	c := &Client{
		conn:    conn,
		cfg:     cfg.WithDefaults(),
		state:   NewState(),
		asm:     frame.New(),
		handler: NopHandler{},
		logger:  log.Logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.sessionID != "" {
		c.logger = c.logger.With().Str("session", c.sessionID).Logger()
	}
	c.dispatch = NewDispatcher(c.handler, c.logger)
	return c
}

func (c *Client) SessionID() string {
	return c.sessionID
}

// RequestTrack returns the named local track, asking the controller for it
// the first time the name is seen. The track fills in as the controller
// answers, so a fresh track is empty.
func (c *Client) RequestTrack(name string) (*Track, error) {
	if c.closed {
		return nil, ErrConnectionClosed
	}
	t, created := c.state.ensureTrack(name)
	if !created {
		return t, nil
	}
	if err := c.send(protocol.EncodeGetTrack(name)); err != nil {
		c.state.dropLast(name)
		return nil, fmt.Errorf("tracker: request track %q: %w", name, err)
	}
	observability.RecordRequestSent(protocol.OpGetTrack.String())
	c.logger.Debug().Str("track", name).Int("tracks", c.state.Len()).Msg("requested track")
	return t, nil
}

// SetRow records row locally and tells the controller. A later SET_ROW from
// the controller overwrites it.
func (c *Client) SetRow(row uint32) error {
	if c.closed {
		return ErrConnectionClosed
	}
	c.state.Row = row
	if err := c.send(protocol.EncodeSetRow(row)); err != nil {
		return fmt.Errorf("tracker: send row %d: %w", row, err)
	}
	observability.RecordRequestSent(protocol.OpSetRow.String())
	return nil
}

// Poll performs one reassembly step. It returns the command dispatched by
// this step, or nil when the step only buffered bytes or found none. It is
// safe to call at any frequency. A non-nil command may accompany an error
// when the connection closed right after delivering it.
func (c *Client) Poll() (protocol.Command, error) {
	if c.closed {
		return nil, ErrConnectionClosed
	}
	if rd, ok := c.conn.(readDeadliner); ok && c.cfg.PollTimeout > 0 {
		if err := rd.SetReadDeadline(time.Now().Add(c.cfg.PollTimeout)); err != nil {
			return nil, fmt.Errorf("tracker: set read deadline: %w", err)
		}
	}

	before := c.asm.Buffered()
	src := &countingReader{r: c.conn}
	c.last = nil
	dispatched, err := c.asm.Step(src, frame.HandlerFunc(c.handleFrame))
	observability.RecordBytesRead(src.n)

	if err != nil {
		// A read may deliver the final bytes of a command together with EOF;
		// the command is applied by then and is returned alongside the error.
		cmd := c.last
		if dispatched && cmd != nil {
			observability.RecordPoll(observability.PollDispatch)
		} else {
			observability.RecordPoll(observability.PollError)
		}
		if errors.Is(err, io.EOF) {
			c.logger.Info().Msg("controller closed connection")
			return cmd, fmt.Errorf("%w: %w", ErrConnectionClosed, err)
		}
		if errors.Is(err, ErrInvariantViolation) {
			c.logger.Error().Err(err).Msg("dispatch failed")
		}
		return cmd, err
	}
	switch {
	case dispatched:
		observability.RecordPoll(observability.PollDispatch)
		return c.last, nil
	case c.asm.Buffered() != before:
		observability.RecordPoll(observability.PollProgress)
	default:
		observability.RecordPoll(observability.PollIdle)
	}
	return nil, nil
}

func (c *Client) handleFrame(fr []byte) error {
	cmd, err := c.dispatch.Dispatch(c.state, fr)
	if err != nil {
		return err
	}
	c.last = cmd
	return nil
}

func (c *Client) Row() uint32 {
	return c.state.Row
}

func (c *Client) Paused() bool {
	return c.state.Paused
}

func (c *Client) Track(name string) (*Track, bool) {
	return c.state.Track(name)
}

func (c *Client) Tracks() []*Track {
	return c.state.Tracks()
}

// TrackNames returns requested track names in request order.
func (c *Client) TrackNames() []string {
	return c.state.Names()
}

// Close releases the connection when it is closable. It is idempotent.
func (c *Client) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	if closer, ok := c.conn.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func (c *Client) send(b []byte) error {
	if wd, ok := c.conn.(writeDeadliner); ok && c.cfg.WriteTimeout > 0 {
		if err := wd.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout)); err != nil {
			return err
		}
	}
	_, err := c.conn.Write(b)
	return err
}

type countingReader struct {
	r io.Reader
	n int
}

func (cr *countingReader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	cr.n += n
	return n, err
}
