package config

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/rbright/director/internal/launchargs"
)

const maxPayloadCeiling = 64 << 20

// Validate enforces config invariants and returns non-fatal warnings.
func Validate(cfg Config) ([]Warning, error) {
	warnings := make([]Warning, 0)

	in := cfg.Instance
	if in.Port < 1024 || in.Port > 65535 {
		return nil, fmt.Errorf("instance.port must be in [1024, 65535], got %d", in.Port)
	}
	if in.ReadTimeoutMS <= 0 {
		return nil, fmt.Errorf("instance.read_timeout_ms must be > 0")
	}
	if in.MaxPayloadBytes <= 0 || in.MaxPayloadBytes > maxPayloadCeiling {
		return nil, fmt.Errorf("instance.max_payload_bytes must be in [1, %d]", maxPayloadCeiling)
	}
	if in.ConnectAttempts < 1 {
		return nil, fmt.Errorf("instance.connect_attempts must be >= 1")
	}
	if in.ConnectBackoffMS < 0 {
		return nil, fmt.Errorf("instance.connect_backoff_ms must be >= 0")
	}
	if in.ConnectTimeoutMS <= 0 {
		return nil, fmt.Errorf("instance.connect_timeout_ms must be > 0")
	}
	if !in.Enable {
		warnings = append(warnings, Warning{Message: "instance.enable=false; every launch runs standalone"})
	}

	if name := cfg.URIScheme.Name; name != "" {
		if err := launchargs.ValidateScheme(name); err != nil {
			return nil, fmt.Errorf("uri_scheme.name: %w", err)
		}
	} else if cfg.URIScheme.RegisterOnStartup {
		warnings = append(warnings, Warning{Message: "uri_scheme.register_on_startup is set but uri_scheme.name is empty; skipping registration"})
	}
	if strings.TrimSpace(cfg.URIScheme.FriendlyName) == "" {
		return nil, fmt.Errorf("uri_scheme.friendly_name must not be empty")
	}

	switch cfg.Focus.Backend {
	case FocusHypr, FocusNone:
	case FocusWin32:
		if runtime.GOOS != "windows" {
			warnings = append(warnings, Warning{Message: "focus.backend=win32 has no effect outside Windows"})
		}
	case FocusCommand:
		if len(cfg.Focus.Command.Argv) == 0 {
			return nil, fmt.Errorf("focus.command must not be empty when focus.backend=command")
		}
	default:
		return nil, fmt.Errorf("focus.backend must be one of: hypr, win32, command, none")
	}

	switch cfg.Indicator.Backend {
	case IndicatorHypr:
	case IndicatorDesktop:
		if cfg.Indicator.DesktopAppName == "" {
			return nil, fmt.Errorf("indicator.desktop_app_name must not be empty when indicator.backend=desktop")
		}
	default:
		return nil, fmt.Errorf("indicator.backend must be one of: hypr, desktop")
	}
	if cfg.Indicator.TimeoutMS < 0 {
		return nil, fmt.Errorf("indicator.timeout_ms must be >= 0")
	}

	switch cfg.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("log.level must be one of: debug, info, warn, error")
	}

	return warnings, nil
}
