package config

import "runtime"

const (
	DefaultPort         = 64321
	DefaultFriendlyName = "Instance Director Application"
)

// Default returns the canonical runtime configuration used when no file is present.
func Default() Config {
	return Config{
		Instance: InstanceConfig{
			Enable:           true,
			Port:             DefaultPort,
			ReadTimeoutMS:    2000,
			MaxPayloadBytes:  1 << 20,
			ConnectAttempts:  3,
			ConnectBackoffMS: 100,
			ConnectTimeoutMS: 500,
		},
		URIScheme: URISchemeConfig{
			FriendlyName: DefaultFriendlyName,
		},
		Focus: FocusConfig{
			Enable:  true,
			Backend: defaultFocusBackend(runtime.GOOS),
		},
		Indicator: IndicatorConfig{
			Enable:         false,
			Backend:        IndicatorHypr,
			DesktopAppName: "director",
			SoundEnable:    true,
			TimeoutMS:      2500,
		},
		Log: LogConfig{Level: "info"},
	}
}

func defaultFocusBackend(goos string) string {
	if goos == "windows" {
		return FocusWin32
	}
	return FocusHypr
}
