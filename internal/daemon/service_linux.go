//go:build linux

package daemon

// NewPlatformService creates the systemd service of the carrier watcher
func NewPlatformService(execPath, pidFile, pidDir string) PlatformService {
	return NewSystemdService(execPath, pidFile, pidDir)
}
