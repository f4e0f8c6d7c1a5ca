package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

type Logger struct {
	*slog.Logger
}

// Options selects where and how log records are written
type Options struct {
	Level  string
	Format string    // "text" (default) or "json"
	Output io.Writer // os.Stderr when nil
}

func New(opts Options) *Logger {
	handlerOpts := &slog.HandlerOptions{
		Level:     parseLogLevel(opts.Level),
		AddSource: strings.ToLower(opts.Level) == "debug",
	}

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	var handler slog.Handler
	if opts.Format == "json" {
		handler = slog.NewJSONHandler(out, handlerOpts)
	} else {
		handler = slog.NewTextHandler(out, handlerOpts)
	}

	return &Logger{
		Logger: slog.New(handler),
	}
}

// Discard returns a logger that drops every record
func Discard() *Logger {
	return &Logger{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{
		Logger: l.Logger.With("component", component),
	}
}

func (l *Logger) WithFields(fields ...interface{}) *Logger {
	return &Logger{
		Logger: l.Logger.With(fields...),
	}
}

func (l *Logger) RouteDump(family, table string, received, shown int) {
	l.Debug("Route dump completed",
		slog.String("family", family),
		slog.String("table", table),
		slog.Int("received", received),
		slog.Int("shown", shown))
}

func (l *Logger) MessageSkipped(msgType uint16, reason string) {
	l.Debug("Netlink message skipped",
		slog.Int("type", int(msgType)),
		slog.String("reason", reason))
}

func (l *Logger) CarrierRenew(link string, pid int) {
	l.Info(link+": carrier detected, requested DHCP renew",
		slog.String("interface", link),
		slog.Int("pid", pid))
}

func (l *Logger) TransportFailure(op string, err error) {
	l.Error("netlink error",
		slog.String("op", op),
		slog.String("error", err.Error()))
}

func (l *Logger) ServiceStart(version, pid string) {
	l.Info("Service starting",
		slog.String("version", version),
		slog.String("pid", pid))
}

func (l *Logger) ServiceStop() {
	l.Info("Service stopping")
}

func (l *Logger) MonitorStart(groups string) {
	l.Info("Netlink monitor started",
		slog.String("groups", groups))
}

func (l *Logger) MonitorStop() {
	l.Info("Netlink monitor stopped")
}

func (l *Logger) Performance(operation string, metrics map[string]interface{}) {
	args := []interface{}{
		"operation", operation,
	}

	for k, v := range metrics {
		args = append(args, k, v)
	}

	l.Debug("performance metrics", args...)
}
