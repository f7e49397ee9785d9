package main

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/synctrack/internal/config"
)

type fileConfig struct {
	Address            string   `toml:"address"`
	Tracks             []string `toml:"tracks"`
	StartRow           uint32   `toml:"start_row"`
	PollInterval       string   `toml:"poll_interval"`
	PollTimeout        string   `toml:"poll_timeout"`
	ConnectTimeout     string   `toml:"connect_timeout"`
	MaxConnectAttempts int      `toml:"max_connect_attempts"`
	StatusAddr         string   `toml:"status_addr"`
	CorsOrigins        []string `toml:"cors_origins"`
}

// loadClientConfig overlays the keys present in path onto the defaults. An
// empty path returns the defaults.
func loadClientConfig(path string) (config.ClientConfig, error) {
	cfg := config.DefaultClientConfig()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return config.ClientConfig{}, fmt.Errorf("load client config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return config.ClientConfig{}, fmt.Errorf("load client config: unknown key %q", undecoded[0].String())
	}

	if meta.IsDefined("address") {
		cfg.Address = strings.TrimSpace(raw.Address)
	}
	if meta.IsDefined("tracks") {
		cfg.Tracks = normalizeTracks(raw.Tracks)
	}
	if meta.IsDefined("start_row") {
		cfg.StartRow = raw.StartRow
	}
	if meta.IsDefined("poll_interval") {
		cfg.PollInterval = strings.TrimSpace(raw.PollInterval)
	}
	if meta.IsDefined("poll_timeout") {
		cfg.PollTimeout = strings.TrimSpace(raw.PollTimeout)
	}
	if meta.IsDefined("connect_timeout") {
		cfg.ConnectTimeout = strings.TrimSpace(raw.ConnectTimeout)
	}
	if meta.IsDefined("max_connect_attempts") {
		cfg.MaxConnectAttempts = raw.MaxConnectAttempts
	}
	if meta.IsDefined("status_addr") {
		cfg.StatusAddr = strings.TrimSpace(raw.StatusAddr)
	}
	if meta.IsDefined("cors_origins") {
		cfg.CorsOrigins = raw.CorsOrigins
	}

	if err := config.ValidateClientConfig(cfg); err != nil {
		return config.ClientConfig{}, err
	}
	return cfg, nil
}

func normalizeTracks(in []string) []string {
	if len(in) == 0 {
		return []string{}
	}
	out := make([]string, 0, len(in))
	for _, name := range in {
		v := strings.TrimSpace(name)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}
