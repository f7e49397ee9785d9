package editor

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"time"

	"github.com/danmuck/synctrack/internal/protocol"
	"github.com/rs/zerolog/log"
)

// Playback drives a demo session: unpause, then advance the row at a fixed
// rate and drop a key on every track every KeyEvery rows.
type Playback struct {
	RowsPerSecond int
	KeyEvery      uint32
	Interpolation protocol.Interpolation
}

func DefaultPlayback() Playback {
	return Playback{
		RowsPerSecond: 8,
		KeyEvery:      16,
		Interpolation: protocol.Linear,
	}
}

// Run streams playback to c until ctx ends or the client goes away. A
// SET_ROW from the client seeks the playhead.
func Run(ctx context.Context, c *Conn, p Playback) error {
	if p.RowsPerSecond <= 0 {
		p.RowsPerSecond = DefaultPlayback().RowsPerSecond
	}
	if p.KeyEvery == 0 {
		p.KeyEvery = DefaultPlayback().KeyEvery
	}

	var row atomic.Uint32
	readErr := make(chan error, 1)
	go func() {
		for {
			cmd, err := c.ReadRequest()
			if err != nil {
				readErr <- err
				return
			}
			switch req := cmd.(type) {
			case protocol.SetRow:
				row.Store(req.Row)
				log.Info().Uint32("row", req.Row).Msg("editor seek")
			case protocol.GetTrack:
				id, _ := c.TrackID(req.Name)
				key := protocol.Key{Row: 0, Value: 0, Interpolation: p.Interpolation}
				if err := c.Send(protocol.SetKey{TrackID: id, Key: key}); err != nil {
					readErr <- err
					return
				}
			}
		}
	}()

	if err := c.Send(protocol.Pause{Flag: 0}); err != nil {
		return err
	}

	ticker := time.NewTicker(max(time.Second/time.Duration(p.RowsPerSecond), time.Millisecond))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			_ = c.Send(protocol.Pause{Flag: 1})
			return nil
		case err := <-readErr:
			if errors.Is(err, io.EOF) {
				log.Info().Str("remote", c.RemoteAddr()).Msg("editor client disconnected")
				return nil
			}
			return err
		case <-ticker.C:
			r := row.Add(1)
			cmds := []protocol.Command{protocol.SetRow{Row: r}}
			if r%p.KeyEvery == 0 {
				for id, n := 0, c.Tracks().Len(); id < n; id++ {
					cmds = append(cmds, protocol.SetKey{
						TrackID: uint32(id),
						Key: protocol.Key{
							Row:           r,
							Value:         float32(r/p.KeyEvery) * float32(id+1),
							Interpolation: p.Interpolation,
						},
					})
				}
			}
			if err := c.Send(cmds...); err != nil {
				return err
			}
		}
	}
}
