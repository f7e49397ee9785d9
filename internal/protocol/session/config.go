package session

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"
)

const DefaultAddress = "localhost:1338"

var (
	ErrAddressRequired = errors.New("session: address required")
	ErrInvalidAddress  = errors.New("session: invalid address")
	ErrInvalidTimeout  = errors.New("session: invalid timeout")
	ErrInvalidBackoff  = errors.New("session: invalid backoff")
)

// BackoffConfig defines retry backoff behavior.
type BackoffConfig struct {
	InitialDelay time.Duration
	Multiplier   float64
	MaxDelay     time.Duration
	Jitter       bool
}

// Config defines connection and polling defaults for one controller link.
type Config struct {
	Address          string
	ConnectTimeout   time.Duration
	HandshakeTimeout time.Duration
	WriteTimeout     time.Duration
	// PollTimeout bounds how long a single poll read may wait for bytes.
	PollTimeout time.Duration
	// MaxConnectAttempts <= 1 means a single dial with no retry.
	MaxConnectAttempts int
	Backoff            BackoffConfig
}

func DefaultConfig() Config {
	return Config{
		Address:            DefaultAddress,
		ConnectTimeout:     5 * time.Second,
		HandshakeTimeout:   5 * time.Second,
		WriteTimeout:       5 * time.Second,
		PollTimeout:        time.Millisecond,
		MaxConnectAttempts: 1,
		Backoff: BackoffConfig{
			InitialDelay: 250 * time.Millisecond,
			Multiplier:   2.0,
			MaxDelay:     5 * time.Second,
			Jitter:       true,
		},
	}
}

// WithDefaults fills zero-valued fields from DefaultConfig.
func (c Config) WithDefaults() Config {
	def := DefaultConfig()
	if strings.TrimSpace(c.Address) == "" {
		c.Address = def.Address
	}
	if c.ConnectTimeout == 0 {
		c.ConnectTimeout = def.ConnectTimeout
	}
	if c.HandshakeTimeout == 0 {
		c.HandshakeTimeout = def.HandshakeTimeout
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = def.WriteTimeout
	}
	if c.PollTimeout == 0 {
		c.PollTimeout = def.PollTimeout
	}
	if c.MaxConnectAttempts == 0 {
		c.MaxConnectAttempts = def.MaxConnectAttempts
	}
	if c.Backoff == (BackoffConfig{}) {
		c.Backoff = def.Backoff
	}
	return c
}

func (c Config) Validate() error {
	addr := strings.TrimSpace(c.Address)
	if addr == "" {
		return ErrAddressRequired
	}
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return fmt.Errorf("%w: %q: %v", ErrInvalidAddress, addr, err)
	}
	timeouts := []struct {
		name string
		d    time.Duration
	}{
		{"connect_timeout", c.ConnectTimeout},
		{"handshake_timeout", c.HandshakeTimeout},
		{"write_timeout", c.WriteTimeout},
		{"poll_timeout", c.PollTimeout},
	}
	for _, tt := range timeouts {
		if tt.d < 0 {
			return fmt.Errorf("%w: %s=%v", ErrInvalidTimeout, tt.name, tt.d)
		}
	}
	if c.Backoff.InitialDelay < 0 || c.Backoff.MaxDelay < 0 {
		return fmt.Errorf("%w: negative delay", ErrInvalidBackoff)
	}
	if c.Backoff.MaxDelay > 0 && c.Backoff.InitialDelay > c.Backoff.MaxDelay {
		return fmt.Errorf("%w: initial_delay %v exceeds max_delay %v", ErrInvalidBackoff, c.Backoff.InitialDelay, c.Backoff.MaxDelay)
	}
	return nil
}
