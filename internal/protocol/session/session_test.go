package session

import (
	"bytes"
	"context"
	"errors"
	"io"
	"math/rand"
	"testing"
	"time"

	"github.com/danmuck/synctrack/internal/protocol"
	"github.com/danmuck/synctrack/internal/testutil/testlog"
)

// duplex reads scripted controller bytes and records what the client writes.
type duplex struct {
	in  *bytes.Reader
	out bytes.Buffer
}

func (d *duplex) Read(p []byte) (int, error)  { return d.in.Read(p) }
func (d *duplex) Write(p []byte) (int, error) { return d.out.Write(p) }

func TestNextBackoffDelayDeterministicNoJitter(t *testing.T) {
	testlog.Start(t)
	cfg := BackoffConfig{
		InitialDelay: 250 * time.Millisecond,
		Multiplier:   2.0,
		MaxDelay:     5 * time.Second,
		Jitter:       false,
	}
	if got := NextBackoffDelay(cfg, 1, nil); got != 250*time.Millisecond {
		t.Fatalf("attempt1 got=%v", got)
	}
	if got := NextBackoffDelay(cfg, 2, nil); got != 500*time.Millisecond {
		t.Fatalf("attempt2 got=%v", got)
	}
	if got := NextBackoffDelay(cfg, 3, nil); got != time.Second {
		t.Fatalf("attempt3 got=%v", got)
	}
	if got := NextBackoffDelay(cfg, 6, nil); got != 5*time.Second {
		t.Fatalf("attempt6 got=%v", got)
	}
}

func TestNextBackoffDelayJitterRange(t *testing.T) {
	testlog.Start(t)
	cfg := BackoffConfig{
		InitialDelay: 250 * time.Millisecond,
		Multiplier:   2.0,
		MaxDelay:     5 * time.Second,
		Jitter:       true,
	}
	rng := rand.New(rand.NewSource(7))
	got := NextBackoffDelay(cfg, 2, rng)
	if got < 250*time.Millisecond || got > 750*time.Millisecond {
		t.Fatalf("jitter out of range: %v", got)
	}
}

func TestShouldRetry(t *testing.T) {
	testlog.Start(t)
	cfg := DefaultConfig()
	if cfg.ShouldRetry(1) {
		t.Fatalf("default config must not retry")
	}
	cfg.MaxConnectAttempts = 3
	if !cfg.ShouldRetry(1) || !cfg.ShouldRetry(2) || cfg.ShouldRetry(3) {
		t.Fatalf("unexpected retry window for max=3")
	}
}

func TestSleepBackoffHonorsContext(t *testing.T) {
	testlog.Start(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := SleepBackoff(ctx, BackoffConfig{InitialDelay: time.Hour}, 1, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestClientHandshakeAccepts(t *testing.T) {
	testlog.Start(t)
	rw := &duplex{in: bytes.NewReader([]byte(protocol.ServerGreeting))}
	if err := ClientHandshake(rw); err != nil {
		t.Fatalf("handshake: %v", err)
	}
	if rw.out.String() != protocol.ClientGreeting {
		t.Fatalf("unexpected client greeting: %q", rw.out.String())
	}
}

func TestClientHandshakeMismatch(t *testing.T) {
	testlog.Start(t)
	rw := &duplex{in: bytes.NewReader([]byte("hello, world"))}
	if err := ClientHandshake(rw); !errors.Is(err, ErrHandshakeMismatch) {
		t.Fatalf("expected ErrHandshakeMismatch, got %v", err)
	}

	short := &duplex{in: bytes.NewReader([]byte("hello"))}
	if err := ClientHandshake(short); !errors.Is(err, ErrHandshakeMismatch) {
		t.Fatalf("expected ErrHandshakeMismatch for short reply, got %v", err)
	}
}

func TestServerHandshake(t *testing.T) {
	testlog.Start(t)
	rw := &duplex{in: bytes.NewReader([]byte(protocol.ClientGreeting + "trailing"))}
	if err := ServerHandshake(rw); err != nil {
		t.Fatalf("server handshake: %v", err)
	}
	if rw.out.String() != protocol.ServerGreeting {
		t.Fatalf("unexpected server greeting: %q", rw.out.String())
	}
	rest, _ := io.ReadAll(rw.in)
	if string(rest) != "trailing" {
		t.Fatalf("handshake consumed past greeting: %q", rest)
	}
}

func TestConfigWithDefaultsAndValidate(t *testing.T) {
	testlog.Start(t)
	cfg := Config{}.WithDefaults()
	if cfg.Address != DefaultAddress || cfg.PollTimeout != time.Millisecond || cfg.MaxConnectAttempts != 1 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}

	bad := cfg
	bad.Address = "no-port"
	if err := bad.Validate(); !errors.Is(err, ErrInvalidAddress) {
		t.Fatalf("expected ErrInvalidAddress, got %v", err)
	}
	bad = cfg
	bad.PollTimeout = -time.Second
	if err := bad.Validate(); !errors.Is(err, ErrInvalidTimeout) {
		t.Fatalf("expected ErrInvalidTimeout, got %v", err)
	}
	bad = cfg
	bad.Backoff.InitialDelay = time.Minute
	if err := bad.Validate(); !errors.Is(err, ErrInvalidBackoff) {
		t.Fatalf("expected ErrInvalidBackoff, got %v", err)
	}
	bad = cfg
	bad.Address = " "
	if err := bad.Validate(); !errors.Is(err, ErrAddressRequired) {
		t.Fatalf("expected ErrAddressRequired, got %v", err)
	}
}
