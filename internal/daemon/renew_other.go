//go:build !unix

package daemon

import "errors"

func signalRenew(pid int) error {
	return errors.New("signals are not supported on this platform")
}
