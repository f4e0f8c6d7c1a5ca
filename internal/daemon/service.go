package daemon

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/wesleywu/nlroute/internal/config"
	"github.com/wesleywu/nlroute/internal/logger"
	"github.com/wesleywu/nlroute/internal/nlsession"
	"github.com/wesleywu/nlroute/internal/rtnl"
)

// ServiceName names the carrier watcher in syslog and systemd
const ServiceName = "udhcpc-monitor"

// PlatformService manages the system service running the carrier watcher
type PlatformService interface {
	Install() error
	Uninstall() error
	Start() error
	Stop() error
	Status() (string, error)
	IsInstalled() bool
}

// CarrierService runs the carrier watcher as a long-lived process with its
// own pid file.
type CarrierService struct {
	config  *config.Config
	logger  *logger.Logger
	version string
}

// NewCarrierService creates a CarrierService
func NewCarrierService(cfg *config.Config, log *logger.Logger, version string) *CarrierService {
	return &CarrierService{
		config:  cfg,
		logger:  log.WithComponent("service"),
		version: version,
	}
}

// Run watches links until ctx is done or SIGINT or SIGTERM arrives.
func (cs *CarrierService) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := WritePIDFile(cs.config.PIDFile, os.Getpid()); err != nil {
		return err
	}
	defer cs.removePIDFile()

	cs.logger.ServiceStart(cs.version, strconv.Itoa(os.Getpid()))
	defer cs.logger.ServiceStop()

	// Subscribe first so that changes during the dump are queued.
	events, err := nlsession.Dial(rtnl.RTMGRP_LINK)
	if err != nil {
		return err
	}
	defer events.Close()

	dumps, err := nlsession.Dial(0)
	if err != nil {
		return err
	}
	defer dumps.Close()

	watcher := NewCarrierWatcher(dumps, events, NewRenewer(cs.config.UdhcpcPIDDir), cs.logger)
	return watcher.Run(ctx)
}

func (cs *CarrierService) removePIDFile() {
	if cs.config.PIDFile == "" {
		return
	}
	if err := os.Remove(cs.config.PIDFile); err != nil && !os.IsNotExist(err) {
		cs.logger.Warn("failed to remove pid file", "path", cs.config.PIDFile, "error", err)
	}
}

// WritePIDFile writes pid to path. An empty path writes nothing.
func WritePIDFile(path string, pid int) error {
	if path == "" {
		return nil
	}
	if err := os.WriteFile(path, []byte(strconv.Itoa(pid)+"\n"), 0644); err != nil {
		return fmt.Errorf("failed to write pid file: %w", err)
	}
	return nil
}
