package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/hjson/hjson-go/v4"

	"github.com/rbright/director/internal/launchargs"
)

type fileConfig struct {
	Instance  *fileInstance  `json:"instance"`
	URIScheme *fileURIScheme `json:"uri_scheme"`
	Focus     *fileFocus     `json:"focus"`
	Indicator *fileIndicator `json:"indicator"`
	Log       *fileLog       `json:"log"`
}

type fileInstance struct {
	Enable           *bool `json:"enable"`
	Port             *int  `json:"port"`
	ReadTimeoutMS    *int  `json:"read_timeout_ms"`
	MaxPayloadBytes  *int  `json:"max_payload_bytes"`
	ConnectAttempts  *int  `json:"connect_attempts"`
	ConnectBackoffMS *int  `json:"connect_backoff_ms"`
	ConnectTimeoutMS *int  `json:"connect_timeout_ms"`
}

type fileURIScheme struct {
	Name              *string `json:"name"`
	FriendlyName      *string `json:"friendly_name"`
	RegisterOnStartup *bool   `json:"register_on_startup"`
}

type fileFocus struct {
	Enable  *bool   `json:"enable"`
	Backend *string `json:"backend"`
	Window  *string `json:"window"`
	Command *string `json:"command"`
}

type fileIndicator struct {
	Enable         *bool   `json:"enable"`
	Backend        *string `json:"backend"`
	DesktopAppName *string `json:"desktop_app_name"`
	SoundEnable    *bool   `json:"sound_enable"`
	SoundFile      *string `json:"sound_file"`
	TimeoutMS      *int    `json:"timeout_ms"`
}

type fileLog struct {
	Level *string `json:"level"`
}

// Parse reads HJSON (or plain JSON) content over base and validates the result.
//
// HJSON is decoded into a generic map first, then re-encoded as JSON so the strict
// decoder can reject unknown keys.
func Parse(content string, base Config) (Config, []Warning, error) {
	if strings.TrimSpace(content) == "" {
		warnings, err := Validate(base)
		if err != nil {
			return Config{}, nil, err
		}
		return base, warnings, nil
	}

	var raw map[string]any
	if err := hjson.Unmarshal([]byte(content), &raw); err != nil {
		return Config{}, nil, fmt.Errorf("decode hjson: %w", err)
	}
	normalized, err := json.Marshal(raw)
	if err != nil {
		return Config{}, nil, fmt.Errorf("normalize hjson: %w", err)
	}

	decoder := json.NewDecoder(bytes.NewReader(normalized))
	decoder.DisallowUnknownFields()

	var payload fileConfig
	if err := decoder.Decode(&payload); err != nil {
		return Config{}, nil, fmt.Errorf("decode config: %w", err)
	}
	if err := decoder.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return Config{}, nil, errors.New("decode config: multiple top-level values")
	}

	cfg := base
	if err := payload.applyTo(&cfg); err != nil {
		return Config{}, nil, err
	}

	warnings, err := Validate(cfg)
	if err != nil {
		return Config{}, nil, err
	}
	return cfg, warnings, nil
}

func (payload fileConfig) applyTo(cfg *Config) error {
	if in := payload.Instance; in != nil {
		setBool(&cfg.Instance.Enable, in.Enable)
		setInt(&cfg.Instance.Port, in.Port)
		setInt(&cfg.Instance.ReadTimeoutMS, in.ReadTimeoutMS)
		setInt(&cfg.Instance.MaxPayloadBytes, in.MaxPayloadBytes)
		setInt(&cfg.Instance.ConnectAttempts, in.ConnectAttempts)
		setInt(&cfg.Instance.ConnectBackoffMS, in.ConnectBackoffMS)
		setInt(&cfg.Instance.ConnectTimeoutMS, in.ConnectTimeoutMS)
	}

	if scheme := payload.URIScheme; scheme != nil {
		setTrimmed(&cfg.URIScheme.Name, scheme.Name)
		setTrimmed(&cfg.URIScheme.FriendlyName, scheme.FriendlyName)
		setBool(&cfg.URIScheme.RegisterOnStartup, scheme.RegisterOnStartup)
	}

	if focus := payload.Focus; focus != nil {
		setBool(&cfg.Focus.Enable, focus.Enable)
		if focus.Backend != nil {
			cfg.Focus.Backend = strings.ToLower(strings.TrimSpace(*focus.Backend))
		}
		setTrimmed(&cfg.Focus.Window, focus.Window)
		if focus.Command != nil {
			raw := *focus.Command
			argv, err := launchargs.Split(raw)
			if err != nil {
				return fmt.Errorf("invalid focus.command: %w", err)
			}
			cfg.Focus.Command = CommandConfig{Raw: raw, Argv: argv}
		}
	}

	if ind := payload.Indicator; ind != nil {
		setBool(&cfg.Indicator.Enable, ind.Enable)
		if ind.Backend != nil {
			cfg.Indicator.Backend = strings.ToLower(strings.TrimSpace(*ind.Backend))
		}
		setTrimmed(&cfg.Indicator.DesktopAppName, ind.DesktopAppName)
		setBool(&cfg.Indicator.SoundEnable, ind.SoundEnable)
		setTrimmed(&cfg.Indicator.SoundFile, ind.SoundFile)
		setInt(&cfg.Indicator.TimeoutMS, ind.TimeoutMS)
	}

	if payload.Log != nil && payload.Log.Level != nil {
		cfg.Log.Level = strings.ToLower(strings.TrimSpace(*payload.Log.Level))
	}

	return nil
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}

func setTrimmed(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}
