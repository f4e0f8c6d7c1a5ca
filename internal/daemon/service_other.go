//go:build !linux

package daemon

import (
	"fmt"
	"runtime"
)

// unsupportedService reports that the carrier watcher cannot run here
type unsupportedService struct{}

// NewPlatformService returns a service whose operations all fail: carrier
// watching needs rtnetlink.
func NewPlatformService(execPath, pidFile, pidDir string) PlatformService {
	return unsupportedService{}
}

func (unsupportedService) err() error {
	return fmt.Errorf("service management is not supported on %s", runtime.GOOS)
}

func (s unsupportedService) Install() error          { return s.err() }
func (s unsupportedService) Uninstall() error        { return s.err() }
func (s unsupportedService) Start() error            { return s.err() }
func (s unsupportedService) Stop() error             { return s.err() }
func (s unsupportedService) Status() (string, error) { return "unsupported", s.err() }
func (s unsupportedService) IsInstalled() bool       { return false }
