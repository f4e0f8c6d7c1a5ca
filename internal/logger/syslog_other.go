//go:build windows || plan9

package logger

import (
	"errors"
	"io"
)

// SyslogWriter is not available on this platform
func SyslogWriter(tag string) (io.Writer, error) {
	return nil, errors.New("syslog is not supported on this platform")
}
