package editor

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/danmuck/synctrack/internal/protocol"
	"github.com/danmuck/synctrack/internal/protocol/session"
	"github.com/rs/zerolog/log"
)

var ErrServerClosed = errors.New("editor: server closed")

// Server is a minimal controller: it accepts clients, answers the greeting
// and then speaks the command stream.
type Server struct {
	ln               net.Listener
	handshakeTimeout time.Duration
	closeOnce        sync.Once
}

func Listen(addr string) (*Server, error) {
	ln, err := net.Listen("tcp", strings.TrimSpace(addr))
	if err != nil {
		return nil, err
	}
	log.Info().Str("addr", ln.Addr().String()).Msg("editor listening")
	return &Server{
		ln:               ln,
		handshakeTimeout: session.DefaultConfig().HandshakeTimeout,
	}, nil
}

func (s *Server) Addr() string {
	return s.ln.Addr().String()
}

// Accept waits for one client and completes the greeting exchange. A
// cancelled ctx unblocks the wait without closing the server.
func (s *Server) Accept(ctx context.Context) (*Conn, error) {
	if tl, ok := s.ln.(*net.TCPListener); ok {
		stop := context.AfterFunc(ctx, func() {
			_ = tl.SetDeadline(time.Now())
		})
		defer func() {
			stop()
			_ = tl.SetDeadline(time.Time{})
		}()
	}

	conn, err := s.ln.Accept()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.Is(err, net.ErrClosed) {
			return nil, ErrServerClosed
		}
		return nil, err
	}

	_ = conn.SetDeadline(time.Now().Add(s.handshakeTimeout))
	if err := session.ServerHandshake(conn); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("editor: handshake with %s: %w", conn.RemoteAddr(), err)
	}
	_ = conn.SetDeadline(time.Time{})
	log.Info().Str("remote", conn.RemoteAddr().String()).Msg("editor client connected")

	return &Conn{
		conn:   conn,
		reader: bufio.NewReader(conn),
		tracks: NewRegistry(),
	}, nil
}

func (s *Server) Close() error {
	var err error
	s.closeOnce.Do(func() {
		err = s.ln.Close()
	})
	return err
}

// Conn is one accepted client. Reads and writes may run on separate
// goroutines; concurrent Send calls are serialized.
type Conn struct {
	conn   net.Conn
	reader *bufio.Reader
	tracks *Registry
	mu     sync.Mutex
}

// ReadRequest blocks for the next client request. GET_TRACK names are
// registered and assigned the next track id.
func (c *Conn) ReadRequest() (protocol.Command, error) {
	cmd, err := protocol.ReadRequest(c.reader)
	if err != nil {
		return nil, err
	}
	if gt, ok := cmd.(protocol.GetTrack); ok {
		id, created := c.tracks.Register(gt.Name)
		log.Debug().Str("track", gt.Name).Uint32("track_id", id).Bool("new", created).Msg("editor track requested")
	}
	return cmd, nil
}

// Send writes cmds as one contiguous stream.
func (c *Conn) Send(cmds ...protocol.Command) error {
	b, err := protocol.EncodeAll(cmds...)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err = c.conn.Write(b)
	return err
}

// SendChunked writes the encoded stream in pieces of at most chunk bytes,
// pausing between pieces so the client sees them as separate reads.
func (c *Conn) SendChunked(chunk int, pause time.Duration, cmds ...protocol.Command) error {
	b, err := protocol.EncodeAll(cmds...)
	if err != nil {
		return err
	}
	if chunk <= 0 {
		chunk = len(b)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for off := 0; off < len(b); off += chunk {
		end := min(off+chunk, len(b))
		if _, err := c.conn.Write(b[off:end]); err != nil {
			return err
		}
		if pause > 0 && end < len(b) {
			time.Sleep(pause)
		}
	}
	return nil
}

// TrackID returns the id assigned to a requested track name.
func (c *Conn) TrackID(name string) (uint32, bool) {
	return c.tracks.ID(name)
}

func (c *Conn) Tracks() *Registry {
	return c.tracks
}

func (c *Conn) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}

func (c *Conn) Close() error {
	return c.conn.Close()
}
