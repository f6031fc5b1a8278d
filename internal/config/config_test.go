package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoad_ConfigYAML(t *testing.T) {
	path := filepath.Join("..", "..", "config.yaml")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Database.Host == "" {
		t.Fatalf("expected database.host to be set")
	}
	if cfg.RabbitMQ.Port == 0 {
		t.Fatalf("expected rabbitmq.port to be set")
	}
	if cfg.Auth.JWTSecret == "" {
		t.Fatalf("expected auth.jwt_secret to be set")
	}
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
database:
  host: localhost
  port: 5432
  user: canteen
  password: canteen
  database: canteen
rabbitmq:
  host: localhost
  port: 5672
  user: guest
  password: guest
auth:
  jwt_secret: test-secret
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Slots.IntervalMinutes != 15 {
		t.Errorf("slots.interval_minutes default = %d, want 15", cfg.Slots.IntervalMinutes)
	}
	if cfg.Slots.Capacity != 150 {
		t.Errorf("slots.capacity default = %d, want 150", cfg.Slots.Capacity)
	}
	if cfg.Slots.OpeningHour != 8 || cfg.Slots.ClosingHour != 20 {
		t.Errorf("operating window default = %d..%d, want 8..20", cfg.Slots.OpeningHour, cfg.Slots.ClosingHour)
	}
}

func TestLoadMidnightOpeningHour(t *testing.T) {
	path := writeConfig(t, `
database:
  host: localhost
slots:
  opening_hour: 0
  closing_hour: 6
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Slots.OpeningHour != 0 {
		t.Errorf("slots.opening_hour = %d, want explicit 0 to be honored", cfg.Slots.OpeningHour)
	}
	if cfg.Slots.ClosingHour != 6 {
		t.Errorf("slots.closing_hour = %d, want 6", cfg.Slots.ClosingHour)
	}
}

func TestLoadPartialSlotsSection(t *testing.T) {
	path := writeConfig(t, `
database:
  host: localhost
slots:
  capacity: 40
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Slots.Capacity != 40 {
		t.Errorf("slots.capacity = %d, want 40", cfg.Slots.Capacity)
	}
	if cfg.Slots.IntervalMinutes != 15 || cfg.Slots.OpeningHour != 8 || cfg.Slots.ClosingHour != 20 {
		t.Errorf("unset slot fields lost their defaults: %+v", cfg.Slots)
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name  string
		slots string
	}{
		{name: "interval too large", slots: "slots:\n  interval_minutes: 90\n"},
		{name: "inverted window", slots: "slots:\n  opening_hour: 18\n  closing_hour: 9\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, "database:\n  host: localhost\n"+tt.slots)
			if _, err := Load(path); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestConnectionURLs(t *testing.T) {
	cfg := &Config{
		Database: DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", Database: "canteen"},
		RabbitMQ: RabbitMQConfig{Host: "mq", Port: 5672, User: "guest", Password: "guest"},
	}

	if got, want := cfg.DatabaseURL(), "postgres://u:p@db:5432/canteen?sslmode=disable"; got != want {
		t.Errorf("DatabaseURL() = %q, want %q", got, want)
	}
	if got, want := cfg.RabbitMQURL(), "amqp://guest:guest@mq:5672/"; got != want {
		t.Errorf("RabbitMQURL() = %q, want %q", got, want)
	}
}
