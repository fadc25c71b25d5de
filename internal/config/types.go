// Package config resolves, parses, validates, and defaults director configuration.
package config

// Config is the fully materialized runtime configuration used by director.
type Config struct {
	Instance  InstanceConfig
	URIScheme URISchemeConfig
	Focus     FocusConfig
	Indicator IndicatorConfig
	Log       LogConfig
}

// InstanceConfig controls the loopback rendezvous that enforces a single instance.
type InstanceConfig struct {
	Enable           bool
	Port             int
	ReadTimeoutMS    int
	MaxPayloadBytes  int
	ConnectAttempts  int
	ConnectBackoffMS int
	ConnectTimeoutMS int
}

// URISchemeConfig controls deep-link scheme registration.
type URISchemeConfig struct {
	Name              string
	FriendlyName      string
	RegisterOnStartup bool
}

// FocusConfig selects how the owner brings its window to the front.
type FocusConfig struct {
	Enable  bool
	Backend string
	Window  string
	Command CommandConfig
}

// IndicatorConfig controls the redirect notification and audio cue.
type IndicatorConfig struct {
	Enable         bool
	Backend        string
	DesktopAppName string
	SoundEnable    bool
	SoundFile      string
	TimeoutMS      int
}

// LogConfig controls the JSONL logger.
type LogConfig struct {
	Level string
}

// CommandConfig stores a raw command string and its parsed argv form.
type CommandConfig struct {
	Raw  string
	Argv []string
}

// Warning is a non-fatal parse/validation message.
type Warning struct {
	Message string
}

// Focus backends.
const (
	FocusHypr    = "hypr"
	FocusWin32   = "win32"
	FocusCommand = "command"
	FocusNone    = "none"
)

// Indicator backends.
const (
	IndicatorHypr    = "hypr"
	IndicatorDesktop = "desktop"
)
