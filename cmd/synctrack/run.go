package main

import (
	"context"
	"errors"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/danmuck/synctrack/internal/config"
	"github.com/danmuck/synctrack/internal/status"
	"github.com/danmuck/synctrack/internal/tracker"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newRunCommand() *cobra.Command {
	var (
		configPath string
		address    string
		statusAddr string
		tracks     []string
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Connect to the controller and follow playback",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadClientConfig(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("address") {
				cfg.Address = strings.TrimSpace(address)
			}
			if cmd.Flags().Changed("status") {
				cfg.StatusAddr = strings.TrimSpace(statusAddr)
			}
			if cmd.Flags().Changed("track") {
				cfg.Tracks = normalizeTracks(tracks)
			}
			if err := config.ValidateClientConfig(cfg); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return run(ctx, cfg)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to client TOML config")
	cmd.Flags().StringVar(&address, "address", "", "controller address (host:port)")
	cmd.Flags().StringVar(&statusAddr, "status", "", "status HTTP listen address (host:port)")
	cmd.Flags().StringArrayVarP(&tracks, "track", "t", nil, "track to request (repeatable)")
	return cmd
}

func run(ctx context.Context, cfg config.ClientConfig) error {
	sessCfg, err := cfg.Session()
	if err != nil {
		return err
	}
	interval, err := cfg.Interval()
	if err != nil {
		return err
	}

	store := status.NewStore()
	store.Publish(status.Snapshot{Address: sessCfg.Address, Paused: true})
	statusErr := make(chan error, 1)
	if cfg.StatusAddr != "" {
		srv := status.New(store, status.Options{Name: "synctrack", CORSOrigins: cfg.CorsOrigins})
		go func() { statusErr <- srv.ListenAndServe(ctx, cfg.StatusAddr) }()
	}

	client, err := tracker.Dial(ctx, sessCfg, tracker.WithHandler(tracker.Funcs{
		SaveTracks: func() { log.Info().Msg("controller asked to save tracks") },
	}))
	if err != nil {
		return err
	}
	defer client.Close()

	for _, name := range cfg.Tracks {
		if _, err := client.RequestTrack(name); err != nil {
			return err
		}
	}
	if err := client.SetRow(cfg.StartRow); err != nil {
		return err
	}

	var commands uint64
	publish := func(connected bool) {
		store.Publish(status.Snapshot{
			Address:   sessCfg.Address,
			SessionID: client.SessionID(),
			Connected: connected,
			Row:       client.Row(),
			Paused:    client.Paused(),
			Tracks:    client.TrackNames(),
			Commands:  commands,
		})
	}
	publish(true)
	log.Info().Strs("tracks", cfg.Tracks).Uint32("row", cfg.StartRow).Msg("following controller")

	for {
		select {
		case <-ctx.Done():
			publish(false)
			return nil
		case err := <-statusErr:
			return err
		default:
		}

		cmd, err := client.Poll()
		if cmd != nil {
			commands++
		}
		if err != nil {
			publish(false)
			if errors.Is(err, tracker.ErrConnectionClosed) {
				log.Info().Msg("controller went away")
				return nil
			}
			return err
		}
		if cmd == nil {
			time.Sleep(interval)
			continue
		}
		publish(true)
	}
}
