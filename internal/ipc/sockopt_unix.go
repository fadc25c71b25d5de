//go:build linux || darwin || dragonfly || freebsd || netbsd || openbsd

package ipc

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// exclusiveBind clears SO_REUSEPORT so no second listener can share the port.
//
// SO_REUSEADDR stays on as the Go runtime sets it. On these kernels it only
// lets a bind succeed over connections in TIME_WAIT and never over a live
// listener, so a restarted owner can rebind at once.
func exclusiveBind(_, _ string, c syscall.RawConn) error {
	var sockErr error
	err := c.Control(func(fd uintptr) {
		sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEPORT, 0)
	})
	if err != nil {
		return err
	}
	return sockErr
}
