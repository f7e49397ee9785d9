package session

import (
	"errors"
	"fmt"
	"io"

	"github.com/danmuck/synctrack/internal/protocol"
)

var ErrHandshakeMismatch = errors.New("session: handshake greeting mismatch")

// ClientHandshake sends the client greeting and verifies the controller reply.
// rw must still be in blocking mode.
func ClientHandshake(rw io.ReadWriter) error {
	if err := writeGreeting(rw, protocol.ClientGreeting); err != nil {
		return fmt.Errorf("write client greeting: %w", err)
	}
	return readGreeting(rw, protocol.ServerGreeting)
}

// ServerHandshake is the controller side: verify the client greeting, reply.
func ServerHandshake(rw io.ReadWriter) error {
	if err := readGreeting(rw, protocol.ClientGreeting); err != nil {
		return err
	}
	if err := writeGreeting(rw, protocol.ServerGreeting); err != nil {
		return fmt.Errorf("write server greeting: %w", err)
	}
	return nil
}

func writeGreeting(w io.Writer, greeting string) error {
	_, err := io.WriteString(w, greeting)
	return err
}

func readGreeting(r io.Reader, want string) error {
	buf := make([]byte, len(want))
	if _, err := io.ReadFull(r, buf); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: short greeting", ErrHandshakeMismatch)
		}
		return fmt.Errorf("read greeting: %w", err)
	}
	if string(buf) != want {
		return fmt.Errorf("%w: got %q want %q", ErrHandshakeMismatch, buf, want)
	}
	return nil
}
