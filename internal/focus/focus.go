// Package focus provides the window focusers a running instance uses when a
// later launch redirects to it.
package focus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/rbright/director/internal/config"
)

// ErrUnsupported reports a backend that cannot run on this platform.
var ErrUnsupported = errors.New("focus backend unsupported on this platform")

// Focuser brings this process's window to the front.
type Focuser interface {
	BringToFront(context.Context) error
	Name() string
}

// New builds the focuser selected by cfg. A disabled config yields None.
func New(cfg config.FocusConfig, logger *slog.Logger) (Focuser, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if !cfg.Enable {
		return None{}, nil
	}

	switch cfg.Backend {
	case config.FocusHypr:
		return Hypr{Selector: cfg.Window, PID: os.Getpid()}, nil
	case config.FocusWin32:
		return &Win32{Title: cfg.Window, Logger: logger}, nil
	case config.FocusCommand:
		if len(cfg.Command.Argv) == 0 {
			return nil, errors.New("focus command is empty")
		}
		return Command{Argv: cfg.Command.Argv, PID: os.Getpid()}, nil
	case config.FocusNone, "":
		return None{}, nil
	default:
		return nil, fmt.Errorf("unknown focus backend %q", cfg.Backend)
	}
}

// None never moves any window.
type None struct{}

func (None) BringToFront(context.Context) error { return nil }
func (None) Name() string                       { return config.FocusNone }
