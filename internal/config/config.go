package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the canteen system.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	RabbitMQ RabbitMQConfig `yaml:"rabbitmq"`
	Auth     AuthConfig     `yaml:"auth"`
	Slots    SlotsConfig    `yaml:"slots"`
}

// DatabaseConfig holds database connection configuration.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// RabbitMQConfig holds RabbitMQ connection configuration.
type RabbitMQConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// AuthConfig holds the shared secret used to verify identity tokens.
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
}

// SlotsConfig describes the pickup-slot grid and default capacity.
type SlotsConfig struct {
	IntervalMinutes int `yaml:"interval_minutes"`
	Capacity        int `yaml:"capacity"`
	OpeningHour     int `yaml:"opening_hour"`
	ClosingHour     int `yaml:"closing_hour"`
}

// Load reads configuration from a YAML file. Defaults are set before
// decoding, so keys absent from the file keep them while an explicit value
// always wins, including explicit zeros such as a midnight opening hour.
func Load(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := &Config{
		Slots: SlotsConfig{
			IntervalMinutes: 15,
			Capacity:        150,
			OpeningHour:     8,
			ClosingHour:     20,
		},
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) validate() error {
	if c.Slots.Capacity < 1 {
		return fmt.Errorf("slots.capacity must be positive, got %d", c.Slots.Capacity)
	}
	if c.Slots.IntervalMinutes < 1 || c.Slots.IntervalMinutes > 60 {
		return fmt.Errorf("slots.interval_minutes must be between 1 and 60, got %d", c.Slots.IntervalMinutes)
	}
	if c.Slots.OpeningHour < 0 || c.Slots.ClosingHour > 24 || c.Slots.OpeningHour >= c.Slots.ClosingHour {
		return fmt.Errorf("invalid operating window %d..%d", c.Slots.OpeningHour, c.Slots.ClosingHour)
	}
	return nil
}

// DatabaseURL returns a PostgreSQL connection URL.
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.Database.User, c.Database.Password, c.Database.Host, c.Database.Port, c.Database.Database)
}

// RabbitMQURL returns an AMQP connection URL.
func (c *Config) RabbitMQURL() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%d/",
		c.RabbitMQ.User, c.RabbitMQ.Password, c.RabbitMQ.Host, c.RabbitMQ.Port)
}
