package urischeme

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// XDG registers schemes through a desktop entry plus `xdg-mime default`.
type XDG struct {
	// Executable is launched with the URI; empty resolves the running binary.
	Executable string
	// DataHome overrides $XDG_DATA_HOME.
	DataHome string
	Logger   *slog.Logger
}

// DesktopFileName is the entry name used for scheme.
func DesktopFileName(scheme string) string {
	return strings.ToLower(scheme) + "-url-handler.desktop"
}

// MimeType is the XDG pseudo mime type for scheme.
func MimeType(scheme string) string {
	return "x-scheme-handler/" + strings.ToLower(scheme)
}

func (x XDG) Register(ctx context.Context, scheme, friendlyName string) error {
	if err := checkArgs(scheme, friendlyName); err != nil {
		return err
	}
	exe, err := x.executable()
	if err != nil {
		return err
	}
	dir, err := x.applicationsDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	name := DesktopFileName(scheme)
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(desktopEntry(exe, scheme, friendlyName)), 0o644); err != nil {
		return fmt.Errorf("write desktop entry: %w", err)
	}
	if x.Logger != nil {
		x.Logger.Debug("desktop entry written", "path", path)
	}

	if _, err := runXDGMime(ctx, "default", name, MimeType(scheme)); err != nil {
		return err
	}
	return nil
}

func (x XDG) Status(ctx context.Context, scheme string) (Status, error) {
	status := Status{Scheme: scheme}
	out, err := runXDGMime(ctx, "query", "default", MimeType(scheme))
	if err != nil {
		return status, err
	}
	status.Handler = strings.TrimSpace(string(out))
	status.Registered = status.Handler != ""
	if !status.Registered {
		return status, nil
	}

	dir, err := x.applicationsDir()
	if err != nil {
		return status, nil
	}
	content, err := os.ReadFile(filepath.Join(dir, status.Handler))
	if err != nil {
		return status, nil
	}
	exe, err := x.executable()
	if err != nil {
		return status, nil
	}
	status.Current = strings.Contains(string(content), "Exec="+quoteExec(exe)+" %u")
	return status, nil
}

func (x XDG) executable() (string, error) {
	if x.Executable != "" {
		return x.Executable, nil
	}
	return Executable()
}

func (x XDG) applicationsDir() (string, error) {
	if x.DataHome != "" {
		return filepath.Join(x.DataHome, "applications"), nil
	}
	if xdg := strings.TrimSpace(os.Getenv("XDG_DATA_HOME")); xdg != "" {
		return filepath.Join(xdg, "applications"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve data home: %w", err)
	}
	return filepath.Join(home, ".local", "share", "applications"), nil
}

func desktopEntry(exe, scheme, friendlyName string) string {
	var b strings.Builder
	b.WriteString("[Desktop Entry]\n")
	b.WriteString("Type=Application\n")
	b.WriteString("Name=" + friendlyName + "\n")
	b.WriteString("Exec=" + quoteExec(exe) + " %u\n")
	b.WriteString("Terminal=false\n")
	b.WriteString("NoDisplay=true\n")
	b.WriteString("MimeType=" + MimeType(scheme) + ";\n")
	return b.String()
}

// quoteExec quotes an Exec argument per the desktop entry spec.
func quoteExec(arg string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "`", "\\`", `$`, `\$`)
	return `"` + replacer.Replace(arg) + `"`
}

func runXDGMime(ctx context.Context, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "xdg-mime", args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		trimmed := strings.TrimSpace(string(out))
		if trimmed == "" {
			return nil, fmt.Errorf("xdg-mime %v failed: %w", args, err)
		}
		return nil, fmt.Errorf("xdg-mime %v failed: %w (%s)", args, err, trimmed)
	}
	return out, nil
}
