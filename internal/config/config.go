package config

import (
	"fmt"
	"strings"
)

// Default locations
const (
	DefaultLabelsDir    = "/etc/iproute2"
	DefaultUdhcpcPIDDir = "/var/run"
	DefaultPIDFile      = "/var/run/udhcpc-monitor.pid"
)

// Config represents the configuration for nlroute commands
type Config struct {
	// Route display
	LabelsDir string
	Family    string // "", "inet" or "inet6"
	Table     string // "main", "all", a table id or a name from rt_tables
	JSON      bool

	// Carrier watch
	UdhcpcPIDDir string
	PIDFile      string
	Syslog       bool

	LogLevel  string
	LogFormat string // "text" or "json"
}

// NewConfig creates a new config with default values
func NewConfig() *Config {
	return &Config{
		LabelsDir:    DefaultLabelsDir,
		Table:        "main",
		UdhcpcPIDDir: DefaultUdhcpcPIDDir,
		PIDFile:      DefaultPIDFile,
		LogLevel:     "info",
		LogFormat:    "text",
	}
}

// Validate checks the option values that flags cannot constrain
func (c *Config) Validate() error {
	switch c.Family {
	case "", "inet", "inet6":
	default:
		return fmt.Errorf("invalid family: %s", c.Family)
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.LogLevel)
	}

	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format: %s", c.LogFormat)
	}

	if c.Table == "" {
		return fmt.Errorf("table selection cannot be empty")
	}

	return nil
}
