package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/danmuck/synctrack/internal/editor"
	"github.com/danmuck/synctrack/internal/protocol"
	"github.com/danmuck/synctrack/internal/protocol/session"
)

// Session maps the client file config onto connection settings. Unset
// fields keep session defaults.
func (c ClientConfig) Session() (session.Config, error) {
	out := session.Config{
		Address:            strings.TrimSpace(c.Address),
		MaxConnectAttempts: c.MaxConnectAttempts,
	}
	var err error
	if out.PollTimeout, err = parseDuration("poll_timeout", c.PollTimeout); err != nil {
		return session.Config{}, err
	}
	if out.ConnectTimeout, err = parseDuration("connect_timeout", c.ConnectTimeout); err != nil {
		return session.Config{}, err
	}
	out = out.WithDefaults()
	return out, out.Validate()
}

// Interval is the sleep between polls in the run loop.
func (c ClientConfig) Interval() (time.Duration, error) {
	return parseDuration("poll_interval", c.PollInterval)
}

func (c EditorConfig) Playback() (editor.Playback, error) {
	interp, err := ParseInterpolation(c.Interpolation)
	if err != nil {
		return editor.Playback{}, err
	}
	return editor.Playback{
		RowsPerSecond: c.RowsPerSecond,
		KeyEvery:      c.KeyEvery,
		Interpolation: interp,
	}, nil
}

// ParseInterpolation accepts the lowercase names; empty means step.
func ParseInterpolation(name string) (protocol.Interpolation, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "step":
		return protocol.Step, nil
	case "linear":
		return protocol.Linear, nil
	case "smooth":
		return protocol.Smooth, nil
	case "ramp":
		return protocol.Ramp, nil
	default:
		return protocol.Step, fmt.Errorf("unknown interpolation: %s", name)
	}
}
