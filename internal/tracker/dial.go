package tracker

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net"
	"time"

	"github.com/danmuck/synctrack/internal/protocol/session"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Dial connects to the controller, exchanges greetings and returns a ready
// Client. Dial failures are retried per cfg; a greeting mismatch is not.
func Dial(ctx context.Context, cfg session.Config, opts ...Option) (*Client, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	var attempt int
	for {
		attempt++
		conn, err := dialOnce(ctx, cfg)
		if err == nil {
			id := uuid.NewString()
			log.Info().
				Str("addr", cfg.Address).
				Str("session", id).
				Int("attempt", attempt).
				Msg("connected to controller")
			return New(conn, cfg, append([]Option{WithSessionID(id)}, opts...)...), nil
		}
		log.Warn().Err(err).Int("attempt", attempt).Str("addr", cfg.Address).Msg("controller dial failed")
		if errors.Is(err, session.ErrHandshakeMismatch) || !cfg.ShouldRetry(attempt) {
			return nil, err
		}
		if err := session.SleepBackoff(ctx, cfg.Backoff, attempt, rng); err != nil {
			return nil, err
		}
	}
}

func dialOnce(ctx context.Context, cfg session.Config) (net.Conn, error) {
	dialer := net.Dialer{Timeout: cfg.ConnectTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", cfg.Address)
	if err != nil {
		return nil, fmt.Errorf("tracker: dial %s: %w", cfg.Address, err)
	}
	_ = conn.SetDeadline(time.Now().Add(cfg.HandshakeTimeout))
	if err := session.ClientHandshake(conn); err != nil {
		_ = conn.Close()
		return nil, err
	}
	_ = conn.SetDeadline(time.Time{})
	return conn, nil
}
