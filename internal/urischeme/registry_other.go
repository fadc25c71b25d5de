//go:build !windows

package urischeme

import "log/slog"

// New returns the registrar for this platform.
func New(logger *slog.Logger) Registrar {
	return XDG{Logger: logger}
}
