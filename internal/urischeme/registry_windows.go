//go:build windows

package urischeme

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sys/windows/registry"
)

const classesRoot = `Software\Classes\`

// Registry registers schemes under HKCU\Software\Classes.
type Registry struct {
	Executable string
	Logger     *slog.Logger
}

// New returns the registrar for this platform.
func New(logger *slog.Logger) Registrar {
	return Registry{Logger: logger}
}

func (r Registry) Register(_ context.Context, scheme, friendlyName string) error {
	if err := checkArgs(scheme, friendlyName); err != nil {
		return err
	}
	exe, err := r.executable()
	if err != nil {
		return err
	}

	root, _, err := registry.CreateKey(registry.CURRENT_USER, classesRoot+scheme, registry.SET_VALUE|registry.CREATE_SUB_KEY)
	if err != nil {
		return fmt.Errorf("create scheme key: %w", err)
	}
	defer root.Close()
	if err := root.SetStringValue("", "URL:"+friendlyName); err != nil {
		return fmt.Errorf("set scheme description: %w", err)
	}
	if err := root.SetStringValue("URL Protocol", ""); err != nil {
		return fmt.Errorf("set URL Protocol: %w", err)
	}

	command, _, err := registry.CreateKey(registry.CURRENT_USER, commandKey(scheme), registry.SET_VALUE)
	if err != nil {
		return fmt.Errorf("create open command key: %w", err)
	}
	defer command.Close()
	if err := command.SetStringValue("", openCommand(exe)); err != nil {
		return fmt.Errorf("set open command: %w", err)
	}

	if r.Logger != nil {
		r.Logger.Debug("scheme registered in HKCU", "scheme", scheme)
	}
	return nil
}

func (r Registry) Status(_ context.Context, scheme string) (Status, error) {
	status := Status{Scheme: scheme}
	key, err := registry.OpenKey(registry.CURRENT_USER, commandKey(scheme), registry.QUERY_VALUE)
	if err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return status, nil
		}
		return status, fmt.Errorf("open command key: %w", err)
	}
	defer key.Close()

	value, _, err := key.GetStringValue("")
	if err != nil {
		return status, fmt.Errorf("read open command: %w", err)
	}
	status.Registered = true
	status.Handler = value
	if exe, err := r.executable(); err == nil {
		status.Current = strings.EqualFold(value, openCommand(exe))
	}
	return status, nil
}

func (r Registry) executable() (string, error) {
	if r.Executable != "" {
		return r.Executable, nil
	}
	return Executable()
}

func commandKey(scheme string) string {
	return classesRoot + scheme + `\shell\open\command`
}

func openCommand(exe string) string {
	return `"` + exe + `" "%1"`
}
