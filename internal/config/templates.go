package config

import (
	"fmt"
	"os"
	"strings"
)

func Template(kind string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "client":
		return clientTemplate, nil
	case "editor":
		return editorTemplate, nil
	default:
		return "", fmt.Errorf("unknown config kind: %s", kind)
	}
}

func WriteTemplate(path, kind string, overwrite bool) error {
	template, err := Template(kind)
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(template), 0o600)
}

const clientTemplate = `address = "localhost:1338"
tracks = ["camera:x", "camera:y", "camera:zoom", "fx:fade"]
start_row = 0
poll_interval = "10ms"
poll_timeout = "1ms"
connect_timeout = "5s"
max_connect_attempts = 5
status_addr = "127.0.0.1:9380"
cors_origins = ["http://localhost:3000"]
`

const editorTemplate = `addr = "localhost:1338"
rows_per_second = 8
key_every = 16
interpolation = "linear"
`
