//go:build unix

package daemon

import "golang.org/x/sys/unix"

func signalRenew(pid int) error {
	return unix.Kill(pid, unix.SIGUSR1)
}
