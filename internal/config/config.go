package config

import (
	"bytes"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// ClientConfig is the on-disk configuration of the synctrack client.
// Durations are Go duration strings ("5s", "1ms").
type ClientConfig struct {
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

// EditorConfig drives the demo controller.
type EditorConfig struct {
	Addr          string `toml:"addr"`
	RowsPerSecond int    `toml:"rows_per_second"`
	KeyEvery      uint32 `toml:"key_every"`
	Interpolation string `toml:"interpolation"`
}

// MaxRowsPerSecond caps editor playback so the row interval stays above zero.
const MaxRowsPerSecond = 1000

func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Address:            "localhost:1338",
		Tracks:             []string{},
		PollInterval:       "10ms",
		PollTimeout:        "1ms",
		ConnectTimeout:     "5s",
		MaxConnectAttempts: 1,
	}
}

func DefaultEditorConfig() EditorConfig {
	return EditorConfig{
		Addr:          "localhost:1338",
		RowsPerSecond: 8,
		KeyEvery:      16,
		Interpolation: "linear",
	}
}

func LoadClientConfig(path string) (ClientConfig, error) {
	cfg := DefaultClientConfig()
	if err := loadToml(path, &cfg); err != nil {
		return ClientConfig{}, err
	}
	if err := ValidateClientConfig(cfg); err != nil {
		return ClientConfig{}, err
	}
	return cfg, nil
}

func LoadEditorConfig(path string) (EditorConfig, error) {
	cfg := DefaultEditorConfig()
	if err := loadToml(path, &cfg); err != nil {
		return EditorConfig{}, err
	}
	if err := ValidateEditorConfig(cfg); err != nil {
		return EditorConfig{}, err
	}
	return cfg, nil
}

func loadToml(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	return nil
}

func ValidateClientConfig(cfg ClientConfig) error {
	if err := validateHostPort("address", cfg.Address); err != nil {
		return err
	}
	durations := []struct {
		name  string
		value string
	}{
		{"poll_interval", cfg.PollInterval},
		{"poll_timeout", cfg.PollTimeout},
		{"connect_timeout", cfg.ConnectTimeout},
	}
	for _, d := range durations {
		if _, err := parseDuration(d.name, d.value); err != nil {
			return err
		}
	}
	if cfg.MaxConnectAttempts < 0 {
		return fmt.Errorf("client config max_connect_attempts must be >= 0")
	}
	seen := make(map[string]struct{}, len(cfg.Tracks))
	for i, name := range cfg.Tracks {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("track[%d] has empty name", i)
		}
		if _, ok := seen[name]; ok {
			return fmt.Errorf("track %q listed twice", name)
		}
		seen[name] = struct{}{}
	}
	if strings.TrimSpace(cfg.StatusAddr) != "" {
		if err := validateHostPort("status_addr", cfg.StatusAddr); err != nil {
			return err
		}
	}
	return nil
}

func ValidateEditorConfig(cfg EditorConfig) error {
	if err := validateHostPort("addr", cfg.Addr); err != nil {
		return err
	}
	if cfg.RowsPerSecond <= 0 || cfg.RowsPerSecond > MaxRowsPerSecond {
		return fmt.Errorf("editor config rows_per_second must be in 1..%d", MaxRowsPerSecond)
	}
	if cfg.KeyEvery == 0 {
		return fmt.Errorf("editor config key_every must be > 0")
	}
	if _, err := ParseInterpolation(cfg.Interpolation); err != nil {
		return err
	}
	return nil
}

func validateHostPort(field, addr string) error {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return fmt.Errorf("config missing %s", field)
	}
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return fmt.Errorf("config %s %q: %w", field, addr, err)
	}
	return nil
}

func parseDuration(field, value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", field, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s must not be negative", field)
	}
	return d, nil
}
