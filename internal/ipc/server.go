package ipc

import (
	"context"
	"log/slog"
	"net"
	"time"
)

// Handler receives each complete envelope read by Serve.
type Handler interface {
	HandleEnvelope(Envelope, net.Addr)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(Envelope, net.Addr)

func (f HandlerFunc) HandleEnvelope(env Envelope, remote net.Addr) {
	f(env, remote)
}

// ServeOptions bounds how long one client may hold the accept loop.
type ServeOptions struct {
	ReadTimeout time.Duration
	MaxPayload  uint32
	Logger      *slog.Logger
}

// acceptRestartDelay spaces out accept restarts after a listener error.
const acceptRestartDelay = 50 * time.Millisecond

// Serve reads one envelope per accepted connection until ctx ends or the handle closes.
//
// Connections are read synchronously on the calling goroutine and always closed
// here. Truncated or oversized envelopes never reach handler.
func Serve(ctx context.Context, handle *Handle, handler Handler, opts ServeOptions) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	stop := context.AfterFunc(ctx, func() { _ = handle.Close() })
	defer stop()

	for {
		for conn, remote := range handle.Accept() {
			env, err := readConn(conn, opts)
			if err != nil {
				logger.Debug("rendezvous envelope dropped", "remote", remote.String(), "error", err.Error())
				continue
			}
			logger.Debug("rendezvous envelope received", "remote", remote.String(), "bytes", len(env.Payload))
			handler.HandleEnvelope(env, remote)
		}

		if handle.Closed() || ctx.Err() != nil {
			return
		}
		logger.Warn("rendezvous accept interrupted; restarting", "port", handle.Port())
		select {
		case <-ctx.Done():
			return
		case <-time.After(acceptRestartDelay):
		}
	}
}

// readConn reads exactly one envelope and closes conn.
func readConn(conn net.Conn, opts ServeOptions) (Envelope, error) {
	defer conn.Close()

	if opts.ReadTimeout > 0 {
		if err := conn.SetReadDeadline(time.Now().Add(opts.ReadTimeout)); err != nil {
			return Envelope{}, err
		}
	}
	return ReadEnvelope(conn, opts.MaxPayload)
}
