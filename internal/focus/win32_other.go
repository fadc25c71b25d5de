//go:build !windows

package focus

import (
	"context"
	"log/slog"

	"github.com/rbright/director/internal/config"
)

// Win32 is only functional on Windows.
type Win32 struct {
	Title  string
	Logger *slog.Logger
}

func (*Win32) BringToFront(context.Context) error { return ErrUnsupported }

func (*Win32) AllowForeground() error { return nil }

func (*Win32) Name() string { return config.FocusWin32 }
