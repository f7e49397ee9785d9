// Package session owns client<->controller link setup helpers.
//
// Ownership boundary:
// - connection/poll timeouts and defaults
// - greeting handshake (both sides)
// - dial retry backoff
//
// The steady-state command stream is handled by package frame and the
// tracker client; nothing here runs after the handshake completes.
package session
