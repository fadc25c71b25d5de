package ipc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"
)

var (
	// ErrConnect reports that no connection reached the owner after every attempt.
	ErrConnect = errors.New("connect to rendezvous owner")
	// ErrWrite reports that the envelope was not fully delivered.
	ErrWrite = errors.New("write envelope")
)

// NotifyOptions bounds the duplicate-instance notification.
type NotifyOptions struct {
	Attempts     int
	Backoff      time.Duration
	DialTimeout  time.Duration
	WriteTimeout time.Duration
	Logger       *slog.Logger
}

// DefaultNotifyOptions returns three connect attempts with a fixed 100ms backoff.
func DefaultNotifyOptions() NotifyOptions {
	return NotifyOptions{
		Attempts:     3,
		Backoff:      100 * time.Millisecond,
		DialTimeout:  500 * time.Millisecond,
		WriteTimeout: time.Second,
	}
}

// dial is swapped in tests to observe connect attempts.
var dial = func(ctx context.Context, address string, timeout time.Duration) (net.Conn, error) {
	dialer := net.Dialer{Timeout: timeout}
	return dialer.DialContext(ctx, "tcp4", address)
}

// Notify delivers payload to the owner of port as a single envelope.
//
// Only the connect step is retried; once connected the write happens exactly once.
// The write side is half-closed before the connection is closed.
func Notify(ctx context.Context, port int, payload []byte, opts NotifyOptions) error {
	if opts.Attempts <= 0 {
		opts.Attempts = 1
	}

	conn, err := connectWithRetry(ctx, Address(port), opts)
	if err != nil {
		return err
	}
	defer conn.Close()

	if tcp, ok := conn.(*net.TCPConn); ok {
		_ = tcp.SetNoDelay(true)
	}
	if opts.WriteTimeout > 0 {
		if err := conn.SetWriteDeadline(time.Now().Add(opts.WriteTimeout)); err != nil {
			return fmt.Errorf("%w: set deadline: %w", ErrWrite, err)
		}
	}

	if _, err := (Envelope{Payload: payload}).WriteTo(conn); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}

	if tcp, ok := conn.(*net.TCPConn); ok {
		if err := tcp.CloseWrite(); err != nil {
			return fmt.Errorf("%w: half-close: %w", ErrWrite, err)
		}
	}
	return nil
}

// connectWithRetry sleeps Backoff after every failed attempt, including the last.
func connectWithRetry(ctx context.Context, address string, opts NotifyOptions) (net.Conn, error) {
	var lastErr error
	for attempt := 1; attempt <= opts.Attempts; attempt++ {
		conn, err := dial(ctx, address, opts.DialTimeout)
		if err == nil {
			return conn, nil
		}
		lastErr = err
		if opts.Logger != nil {
			opts.Logger.Debug("rendezvous connect attempt failed", "address", address, "attempt", attempt, "error", err.Error())
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w %s: %w", ErrConnect, address, ctx.Err())
		case <-time.After(opts.Backoff):
		}
	}
	return nil, fmt.Errorf("%w %s after %d attempts: %w", ErrConnect, address, opts.Attempts, lastErr)
}

// Probe reports whether something accepts connections on port.
//
// It sends no bytes, so an owner reads a truncated envelope and raises nothing.
func Probe(ctx context.Context, port int, timeout time.Duration) (bool, error) {
	conn, err := dial(ctx, Address(port), timeout)
	if err == nil {
		_ = conn.Close()
		return true, nil
	}
	if isConnectionRefused(err) {
		return false, nil
	}
	return false, fmt.Errorf("probe %s: %w", Address(port), err)
}
