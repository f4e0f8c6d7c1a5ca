package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wesleywu/nlroute/internal/config"
	"github.com/wesleywu/nlroute/internal/daemon"
	"github.com/wesleywu/nlroute/internal/logger"
	"github.com/wesleywu/nlroute/internal/network"
	"github.com/wesleywu/nlroute/internal/nlsession"
	"github.com/wesleywu/nlroute/internal/routing"
	"github.com/wesleywu/nlroute/internal/routing/render"
	"github.com/wesleywu/nlroute/internal/routing/types"
	"github.com/wesleywu/nlroute/internal/rtlabel"
	"github.com/wesleywu/nlroute/internal/rtnl"
)

var (
	version = "1.0.0"

	cfg = config.NewConfig()

	ipv4Only    bool
	ipv6Only    bool
	verboseMode bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "nlroute",
		Short: "Show kernel routes over rtnetlink",
		Long:  `Dump or monitor the kernel routing tables in ip-route style text or JSON, and renew udhcpc leases on carrier changes.`,
		Run:   runShow,
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the routing table",
		Long:  `Request a dump of the kernel routing tables and print every selected route once.`,
		Run:   runShow,
	}

	monitorCmd := &cobra.Command{
		Use:   "monitor",
		Short: "Print route notifications",
		Long:  `Subscribe to IPv4 and IPv6 route notifications and print each new route until interrupted.`,
		Run:   runMonitor,
	}

	carrierCmd := &cobra.Command{
		Use:   "carrier-watch",
		Short: "Renew DHCP leases when a link gains carrier",
		Long:  `Watch link state and send SIGUSR1 to the udhcpc of every interface that gains carrier.`,
		Run:   runCarrierWatch,
	}

	installCmd := &cobra.Command{
		Use:   "install",
		Short: "Install the carrier watcher as a systemd service",
		Run:   installService,
	}

	uninstallCmd := &cobra.Command{
		Use:   "uninstall",
		Short: "Uninstall the carrier watcher service",
		Run:   uninstallService,
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show carrier watcher service status",
		Run:   showStatus,
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run:   showVersion,
	}

	testCmd := &cobra.Command{
		Use:   "test",
		Short: "Test label files and netlink access",
		Run:   testConfiguration,
	}

	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&ipv4Only, "ipv4", "4", false, "Show IPv4 routes only")
	flags.BoolVarP(&ipv6Only, "ipv6", "6", false, "Show IPv6 routes only")
	flags.BoolVarP(&cfg.JSON, "json", "j", false, "Print routes as a JSON array")
	flags.StringVarP(&cfg.Table, "table", "t", cfg.Table, `Routing table: "main", "all", a number or a name from rt_tables`)
	flags.StringVar(&cfg.LabelsDir, "labels-dir", cfg.LabelsDir, "Directory holding rt_protos, rt_scopes and rt_tables")
	flags.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, `Log format: "text" or "json"`)
	flags.BoolVarP(&verboseMode, "verbose", "v", false, "Verbose mode (debug level logging)")

	for _, cmd := range []*cobra.Command{carrierCmd, installCmd} {
		cmd.Flags().StringVar(&cfg.PIDFile, "pidfile", cfg.PIDFile, "PID file of the carrier watcher")
		cmd.Flags().StringVar(&cfg.UdhcpcPIDDir, "udhcpc-pid-dir", cfg.UdhcpcPIDDir, "Directory holding udhcpc.<link>.pid files")
	}
	carrierCmd.Flags().BoolVar(&cfg.Syslog, "syslog", false, "Log to the local syslog")

	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(monitorCmd)
	rootCmd.AddCommand(carrierCmd)
	rootCmd.AddCommand(installCmd)
	rootCmd.AddCommand(uninstallCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(testCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig applies the shorthand flags and validates the result
func loadConfig() {
	if ipv4Only && ipv6Only {
		fail("options -4 and -6 are mutually exclusive")
	}
	if ipv4Only {
		cfg.Family = "inet"
	}
	if ipv6Only {
		cfg.Family = "inet6"
	}
	if verboseMode {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		fail("invalid configuration: %v", err)
	}
}

func newLogger(out io.Writer) *logger.Logger {
	return logger.New(logger.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Output: out,
	})
}

func fail(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

// newLister wires the session, selection and renderer of a route command
func newLister(session *nlsession.Session, out io.Writer, log *logger.Logger) *routing.Lister {
	labels := rtlabel.Load(cfg.LabelsDir, log)

	family, err := routing.ParseFamily(cfg.Family)
	if err != nil {
		fail("%v", err)
	}
	table, err := routing.ParseTable(cfg.Table, labels)
	if err != nil {
		fail("%v", err)
	}

	devices := network.NewLinkNamer()
	if err := devices.Preload(); err != nil {
		log.Debug("link names unavailable", "error", err)
	}

	mode := render.Plain
	if cfg.JSON {
		mode = render.JSON
	}

	renderer := &render.Renderer{Mode: mode, Labels: labels, Devices: devices}
	selector := routing.Selector{Family: family, Table: table}
	return routing.NewLister(session, selector, renderer, out, log)
}

func runShow(_ *cobra.Command, _ []string) {
	loadConfig()
	log := newLogger(nil)

	session, err := nlsession.Dial(0)
	if err != nil {
		fail("%v", err)
	}
	defer session.Close()

	out := bufio.NewWriter(os.Stdout)
	lister := newLister(session, out, log)

	showErr := lister.Show(context.Background())
	if err := out.Flush(); err != nil && showErr == nil {
		showErr = fmt.Errorf("failed to write output: %w", err)
	}
	if showErr != nil {
		fail("%v", showErr)
	}
}

func runMonitor(_ *cobra.Command, _ []string) {
	loadConfig()
	log := newLogger(nil)

	groups := rtnl.RTMGRP_IPV4_ROUTE | rtnl.RTMGRP_IPV6_ROUTE
	switch cfg.Family {
	case "inet":
		groups = rtnl.RTMGRP_IPV4_ROUTE
	case "inet6":
		groups = rtnl.RTMGRP_IPV6_ROUTE
	}

	session, err := nlsession.Dial(groups)
	if err != nil {
		fail("%v", err)
	}
	defer session.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	lister := newLister(session, os.Stdout, log)
	if err := lister.Monitor(ctx); err != nil {
		fail("%v", err)
	}
}

func runCarrierWatch(_ *cobra.Command, _ []string) {
	loadConfig()

	var out io.Writer
	if cfg.Syslog {
		w, err := logger.SyslogWriter(daemon.ServiceName)
		if err != nil {
			fail("%v", err)
		}
		out = w
	}
	log := newLogger(out)

	service := daemon.NewCarrierService(cfg, log, version)
	if err := service.Run(context.Background()); err != nil {
		var te *types.TransportError
		if errors.As(err, &te) {
			log.TransportFailure(te.Op.String(), te.Cause)
		} else {
			log.Error("carrier watch failed", "error", err)
		}
		os.Exit(1)
	}
}

func installService(_ *cobra.Command, _ []string) {
	if os.Getuid() != 0 {
		fail("root privileges required for installation")
	}

	execPath, err := os.Executable()
	if err != nil {
		fail("failed to get executable path: %v", err)
	}

	service := daemon.NewPlatformService(execPath, cfg.PIDFile, cfg.UdhcpcPIDDir)
	if err := service.Install(); err != nil {
		fail("failed to install service: %v", err)
	}
	fmt.Printf("Service installed successfully (%s)\n", runtime.GOOS)
}

func uninstallService(_ *cobra.Command, _ []string) {
	if os.Getuid() != 0 {
		fail("root privileges required for uninstallation")
	}

	service := daemon.NewPlatformService("", cfg.PIDFile, cfg.UdhcpcPIDDir)
	if err := service.Uninstall(); err != nil {
		fail("failed to uninstall service: %v", err)
	}
	fmt.Println("Service uninstalled successfully")
}

func showStatus(_ *cobra.Command, _ []string) {
	service := daemon.NewPlatformService("", cfg.PIDFile, cfg.UdhcpcPIDDir)
	status, err := service.Status()
	if err != nil {
		fail("failed to get service status: %v", err)
	}
	fmt.Printf("Service status: %s\n", status)
	fmt.Printf("Service installed: %t\n", service.IsInstalled())
}

func showVersion(_ *cobra.Command, _ []string) {
	fmt.Printf("nlroute v%s\n", version)
	fmt.Printf("Runtime: %s\n", runtime.Version())
	fmt.Printf("Platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)
}

func testConfiguration(_ *cobra.Command, _ []string) {
	loadConfig()
	log := newLogger(nil)
	log.Debug("Starting configuration test")

	labels := rtlabel.Load(cfg.LabelsDir, log)
	protocols, scopes, tables := labels.Sizes()
	fmt.Printf("Labels loaded from %s: %d protocols, %d scopes, %d tables\n",
		cfg.LabelsDir, protocols, scopes, tables)

	if _, err := routing.ParseTable(cfg.Table, labels); err != nil {
		fail("table selection: %v", err)
	}
	fmt.Printf("Table selection: %s\n", cfg.Table)

	session, err := nlsession.Dial(0)
	if err != nil {
		fail("%v", err)
	}
	session.Close()
	fmt.Println("Netlink route socket available")

	if os.Getuid() != 0 {
		fmt.Println("Root privileges required for carrier-watch")
	}
	fmt.Println("All tests passed")
}
