package config

import (
	"fmt"
	"strings"
	"time"
)

var DefaultConfig = []byte(`
application: "payout-console"

logger:
  level: "debug"

is_prod_mode: false

server:
  port: 8080

database:
  path: "payout.db"

payout:
  timezone: "Africa/Kampala"

monitor:
  warn_threshold: 90
  critical_threshold: 98

instant_win:
  enabled: true
  max_percentage: "30"
  base_probability: "0.15"
  min_amount: "50"
  max_amount: "500"
  win_message: "Congratulations! You won {amount}!"
  notify_enabled: true
`)

type Config struct {
	Application string     `koanf:"application"`
	Logger      Logger     `koanf:"logger"`
	IsProdMode  bool       `koanf:"is_prod_mode"`
	Server      Server     `koanf:"server"`
	Database    Database   `koanf:"database"`
	Payout      Payout     `koanf:"payout"`
	Monitor     Monitor    `koanf:"monitor"`
	InstantWin  InstantWin `koanf:"instant_win"`
}

type Logger struct {
	Level string `koanf:"level"`
}

type Server struct {
	Port int `koanf:"port"`
}

type Database struct {
	Path string `koanf:"path"`
}

type Payout struct {
	// IANA zone name of the operating region. Day windows, eligibility
	// and the instant-win pool are all computed in this zone.
	Timezone string `koanf:"timezone"`
}

type Monitor struct {
	WarnThreshold     float64 `koanf:"warn_threshold"`
	CriticalThreshold float64 `koanf:"critical_threshold"`
}

type InstantWin struct {
	Enabled         bool   `koanf:"enabled"`
	MaxPercentage   string `koanf:"max_percentage"`
	BaseProbability string `koanf:"base_probability"`
	MinAmount       string `koanf:"min_amount"`
	MaxAmount       string `koanf:"max_amount"`
	WinMessage      string `koanf:"win_message"`
	NotifyEnabled   bool   `koanf:"notify_enabled"`
}

// Validate validates the configuration
func (c *Config) Validate() error {
	var problems []string
	add := func(field, msg string) {
		problems = append(problems, fmt.Sprintf("%s: %s", field, msg))
	}

	if c.Application == "" {
		add("application", "cannot be empty")
	}
	if c.Logger.Level == "" {
		add("logger.level", "cannot be empty")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		add("server.port", "must be a valid port")
	}
	if c.Database.Path == "" {
		add("database.path", "cannot be empty")
	}
	if c.Payout.Timezone == "" {
		add("payout.timezone", "cannot be empty")
	} else if _, err := time.LoadLocation(c.Payout.Timezone); err != nil {
		add("payout.timezone", fmt.Sprintf("unknown IANA zone: %v", err))
	}
	if c.Monitor.WarnThreshold <= 0 || c.Monitor.WarnThreshold > 100 {
		add("monitor.warn_threshold", "must be in (0, 100]")
	}
	if c.Monitor.CriticalThreshold < c.Monitor.WarnThreshold || c.Monitor.CriticalThreshold > 100 {
		add("monitor.critical_threshold", "must be in [warn_threshold, 100]")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}
