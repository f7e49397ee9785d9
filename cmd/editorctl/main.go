package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/danmuck/synctrack/internal/config"
	"github.com/danmuck/synctrack/internal/editor"
	"github.com/danmuck/synctrack/internal/observability"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func main() {
	observability.InitLogger("editorctl")

	var (
		configPath string
		addr       string
		once       bool
	)
	rootCmd := &cobra.Command{
		Use:   "editorctl",
		Short: "Demo sync-tracker controller",
		Long: `editorctl accepts synctrack clients, logs their track requests and streams
a playback row with periodic keys on every requested track.

Examples:
editorctl --addr localhost:1338
editorctl --config editor.toml --once`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.DefaultEditorConfig()
			if configPath != "" {
				loaded, err := config.LoadEditorConfig(configPath)
				if err != nil {
					return err
				}
				cfg = loaded
			}
			if cmd.Flags().Changed("addr") {
				cfg.Addr = strings.TrimSpace(addr)
			}
			if err := config.ValidateEditorConfig(cfg); err != nil {
				return err
			}
			playback, err := cfg.Playback()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg.Addr, playback, once)
		},
	}
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "path to editor TOML config")
	rootCmd.Flags().StringVar(&addr, "addr", "", "listen address (host:port)")
	rootCmd.Flags().BoolVar(&once, "once", false, "exit after the first client disconnects")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "editorctl: %v\n", err)
		os.Exit(1)
	}
}

// serve handles one client at a time, like a real editor.
func serve(ctx context.Context, addr string, playback editor.Playback, once bool) error {
	srv, err := editor.Listen(addr)
	if err != nil {
		return err
	}
	defer srv.Close()

	for {
		conn, err := srv.Accept(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, editor.ErrServerClosed) {
				return err
			}
			log.Warn().Err(err).Msg("editor accept failed")
			continue
		}
		err = editor.Run(ctx, conn, playback)
		_ = conn.Close()
		if err != nil {
			log.Warn().Err(err).Str("remote", conn.RemoteAddr()).Msg("editor session ended")
		}
		log.Info().Strs("tracks", conn.Tracks().Names()).Msg("editor session closed")
		if once || ctx.Err() != nil {
			return nil
		}
	}
}
