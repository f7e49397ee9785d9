package main

import (
	"fmt"
	"os"

	"github.com/danmuck/synctrack/internal/config"
	"github.com/danmuck/synctrack/internal/observability"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func main() {
	observability.InitLogger("configgen")

	var (
		kind   string
		output string
		input  string
		force  bool
	)
	rootCmd := &cobra.Command{
		Use:          "configgen",
		Short:        "Write or validate synctrack TOML configs",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&kind, "kind", "client", "config kind: client|editor")

	writeCmd := &cobra.Command{
		Use:   "write",
		Short: "Write a config template",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			target := output
			if target == "" {
				var err error
				if target, err = defaultPath(kind); err != nil {
					return err
				}
			}
			if err := config.WriteTemplate(target, kind, force); err != nil {
				return err
			}
			log.Info().Str("kind", kind).Str("path", target).Msg("wrote config template")
			return nil
		},
	}
	writeCmd.Flags().StringVarP(&output, "output", "o", "", "output path (defaults to per-kind cmd path)")
	writeCmd.Flags().BoolVar(&force, "force", false, "overwrite existing config file")

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate an existing config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := input
			if path == "" {
				var err error
				if path, err = defaultPath(kind); err != nil {
					return err
				}
			}
			var err error
			switch kind {
			case "client":
				_, err = config.LoadClientConfig(path)
			case "editor":
				_, err = config.LoadEditorConfig(path)
			default:
				err = fmt.Errorf("unknown kind: %s", kind)
			}
			if err != nil {
				return err
			}
			log.Info().Str("kind", kind).Str("path", path).Msg("validated config")
			return nil
		},
	}
	validateCmd.Flags().StringVarP(&input, "input", "i", "", "config path (defaults to per-kind cmd path)")

	rootCmd.AddCommand(writeCmd, validateCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "configgen: %v\n", err)
		os.Exit(1)
	}
}

func defaultPath(kind string) (string, error) {
	switch kind {
	case "client":
		return "cmd/synctrack/config.toml", nil
	case "editor":
		return "cmd/editorctl/config.toml", nil
	default:
		return "", fmt.Errorf("unknown kind: %s", kind)
	}
}
