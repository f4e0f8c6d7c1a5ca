//go:build !windows && !plan9

package logger

import (
	"fmt"
	"io"
	"log/syslog"
)

// SyslogWriter opens the local syslog with the daemon facility
func SyslogWriter(tag string) (io.Writer, error) {
	w, err := syslog.New(syslog.LOG_NOTICE|syslog.LOG_DAEMON, tag)
	if err != nil {
		return nil, fmt.Errorf("failed to open syslog: %w", err)
	}
	return w, nil
}
