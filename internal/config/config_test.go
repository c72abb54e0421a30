package config

import (
	"testing"
)

func TestFromEnvDefaults(t *testing.T) {
	c := FromEnv()
	if c.Port != "8080" {
		t.Fatalf("expected default port 8080, got %s", c.Port)
	}
	if len(c.DefaultRooms) != 4 || c.DefaultRooms[0] != "room1" {
		t.Fatalf("expected default rooms room1..room4, got %v", c.DefaultRooms)
	}
	if c.GateReset != "on-empty" {
		t.Fatalf("expected default gate reset on-empty, got %s", c.GateReset)
	}
	if !c.ExportEnabled {
		t.Fatal("export should default to enabled")
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "3000")
	t.Setenv("DEFAULT_ROOMS", "den, attic ,")
	t.Setenv("GATE_RESET", "on-complete")
	t.Setenv("EXPORT_ENABLED", "false")

	c := FromEnv()
	if c.Port != "3000" {
		t.Fatalf("expected port 3000, got %s", c.Port)
	}
	if len(c.DefaultRooms) != 2 || c.DefaultRooms[0] != "den" || c.DefaultRooms[1] != "attic" {
		t.Fatalf("expected trimmed room list, got %v", c.DefaultRooms)
	}
	if c.GateReset != "on-complete" {
		t.Fatalf("expected gate reset on-complete, got %s", c.GateReset)
	}
	if c.ExportEnabled {
		t.Fatal("export should be disabled")
	}
}
