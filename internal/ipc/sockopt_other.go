//go:build !linux && !darwin && !dragonfly && !freebsd && !netbsd && !openbsd && !windows

package ipc

import "syscall"

func exclusiveBind(_, _ string, _ syscall.RawConn) error {
	return nil
}
