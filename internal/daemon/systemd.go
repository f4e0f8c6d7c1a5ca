//go:build linux

package daemon

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
)

const (
	// SystemdServiceTemplate is the template for the systemd service file
	SystemdServiceTemplate = `[Unit]
Description=Carrier detector requesting udhcpc lease renewal
After=network-pre.target

[Service]
Type=simple
ExecStart=%s carrier-watch --syslog --pidfile %s --udhcpc-pid-dir %s
Restart=always
RestartSec=5

[Install]
WantedBy=multi-user.target
`
	// SystemdServicePath is the path to the systemd service file
	SystemdServicePath = "/etc/systemd/system/" + ServiceName + ".service"
)

// SystemdService manages the carrier watcher unit
type SystemdService struct {
	execPath  string
	pidFile   string
	pidDir    string
	unitPath  string
	systemctl func(args ...string) ([]byte, error)
}

// NewSystemdService creates a new SystemdService
func NewSystemdService(execPath, pidFile, pidDir string) *SystemdService {
	return &SystemdService{
		execPath:  execPath,
		pidFile:   pidFile,
		pidDir:    pidDir,
		unitPath:  SystemdServicePath,
		systemctl: runSystemctl,
	}
}

func runSystemctl(args ...string) ([]byte, error) {
	return exec.Command("systemctl", args...).Output()
}

// Unit returns the content of the unit file
func (s *SystemdService) Unit() string {
	return fmt.Sprintf(SystemdServiceTemplate, s.execPath, s.pidFile, s.pidDir)
}

// Install writes and enables the unit
func (s *SystemdService) Install() error {
	if os.Getuid() != 0 {
		return fmt.Errorf("root privileges required to install systemd service")
	}

	if err := os.WriteFile(s.unitPath, []byte(s.Unit()), 0644); err != nil {
		return fmt.Errorf("failed to write service file: %w", err)
	}

	if _, err := s.systemctl("daemon-reload"); err != nil {
		return fmt.Errorf("failed to reload systemd: %w", err)
	}
	if _, err := s.systemctl("enable", ServiceName); err != nil {
		return fmt.Errorf("failed to enable service: %w", err)
	}
	return nil
}

// Uninstall stops, disables and removes the unit
func (s *SystemdService) Uninstall() error {
	if os.Getuid() != 0 {
		return fmt.Errorf("root privileges required to uninstall systemd service")
	}

	// The unit may already be stopped or disabled.
	s.systemctl("disable", ServiceName)
	s.systemctl("stop", ServiceName)

	if err := os.Remove(s.unitPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove service file: %w", err)
	}

	if _, err := s.systemctl("daemon-reload"); err != nil {
		return fmt.Errorf("failed to reload systemd: %w", err)
	}
	return nil
}

// Start starts the unit
func (s *SystemdService) Start() error {
	_, err := s.systemctl("start", ServiceName)
	return err
}

// Stop stops the unit
func (s *SystemdService) Stop() error {
	_, err := s.systemctl("stop", ServiceName)
	return err
}

// Status returns the unit state as reported by systemctl is-active
func (s *SystemdService) Status() (string, error) {
	output, err := s.systemctl("is-active", ServiceName)
	status := strings.TrimSpace(string(output))
	if status == "" {
		if err != nil {
			return "stopped", nil
		}
		return "unknown", nil
	}
	return status, nil
}

// IsInstalled checks if the unit file exists
func (s *SystemdService) IsInstalled() bool {
	_, err := os.Stat(s.unitPath)
	return err == nil
}
