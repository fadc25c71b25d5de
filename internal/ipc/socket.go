package ipc

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"net"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
)

// LoopbackHost is the only interface the rendezvous ever binds or dials.
const LoopbackHost = "127.0.0.1"

// ErrBindFailed reports that the rendezvous port could not be bound.
var ErrBindFailed = errors.New("rendezvous port unavailable")

// Handle is proof that this process owns the rendezvous port.
type Handle struct {
	listener net.Listener
	port     int

	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

// Address renders the loopback dial/bind address for port.
func Address(port int) string {
	return net.JoinHostPort(LoopbackHost, strconv.Itoa(port))
}

// Acquire makes one authoritative attempt to bind the rendezvous port.
//
// Port sharing is disabled on the listening socket so a second process can never
// bind the same port while the first is alive.
func Acquire(ctx context.Context, port int) (*Handle, error) {
	lc := net.ListenConfig{Control: exclusiveBind}
	listener, err := lc.Listen(ctx, "tcp4", Address(port))
	if err != nil {
		return nil, fmt.Errorf("%w: listen %s: %w", ErrBindFailed, Address(port), err)
	}

	bound := port
	if tcpAddr, ok := listener.Addr().(*net.TCPAddr); ok {
		bound = tcpAddr.Port
	}
	return &Handle{listener: listener, port: bound}, nil
}

// Port returns the bound port, which differs from the requested one only for port 0.
func (h *Handle) Port() int {
	return h.port
}

// Addr returns the listener address.
func (h *Handle) Addr() net.Addr {
	return h.listener.Addr()
}

// Accept yields inbound connections until the handle is closed.
//
// Each call starts a fresh iteration over the same listener. Consumers own every
// yielded connection and must close it.
func (h *Handle) Accept() iter.Seq2[net.Conn, net.Addr] {
	return func(yield func(net.Conn, net.Addr) bool) {
		for {
			conn, err := h.listener.Accept()
			if err != nil {
				var netErr net.Error
				if errors.As(err, &netErr) && netErr.Timeout() {
					continue
				}
				return
			}
			if !yield(conn, conn.RemoteAddr()) {
				return
			}
		}
	}
}

// Close releases the port. Repeated calls return the first result.
func (h *Handle) Close() error {
	h.closeOnce.Do(func() {
		h.closed.Store(true)
		h.closeErr = h.listener.Close()
	})
	return h.closeErr
}

// Closed reports whether Close has been called.
func (h *Handle) Closed() bool {
	return h.closed.Load()
}

// IsAddrInUse reports the expected bind failure: another process already owns the port.
func IsAddrInUse(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, syscall.EADDRINUSE) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "address already in use") ||
		strings.Contains(msg, "only one usage of each socket address")
}

func isConnectionRefused(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, syscall.ECONNREFUSED) ||
		strings.Contains(strings.ToLower(err.Error()), "connection refused")
}
