package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	DefaultRooms  []string
	GateReset     string
	ExportEnabled bool
	ExportFile    string
}

func FromEnv() Config {
	// best-effort; a missing .env is fine
	_ = godotenv.Load()

	c := Config{}
	c.Port = getenv("PORT", "8080")
	c.DefaultRooms = splitList(getenv("DEFAULT_ROOMS", "room1,room2,room3,room4"))
	c.GateReset = getenv("GATE_RESET", "on-empty")
	c.ExportEnabled = getenv("EXPORT_ENABLED", "true") == "true"
	c.ExportFile = getenv("EXPORT_FILE", "./talltales-stories.txt")
	return c
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
