// Package urischeme associates a deep-link URI scheme with the running executable.
package urischeme

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rbright/director/internal/launchargs"
)

// Status describes what the OS currently does with a scheme.
type Status struct {
	Scheme     string
	Registered bool
	// Handler is the desktop entry (XDG) or open command (Windows) bound to the scheme.
	Handler string
	// Current reports whether Handler points at this executable.
	Current bool
}

// Registrar writes and inspects OS scheme associations.
type Registrar interface {
	Register(ctx context.Context, scheme, friendlyName string) error
	Status(ctx context.Context, scheme string) (Status, error)
}

// Executable resolves the absolute path of the running binary with symlinks followed.
func Executable() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("resolve executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return exe, nil
}

func checkArgs(scheme, friendlyName string) error {
	if err := launchargs.ValidateScheme(scheme); err != nil {
		return err
	}
	if friendlyName == "" {
		return fmt.Errorf("friendly name for %q must not be empty", scheme)
	}
	return nil
}
