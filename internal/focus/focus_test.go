package focus

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rbright/director/internal/config"
)

func TestNewSelectsBackend(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.FocusConfig
		want string
	}{
		{name: "disabled", cfg: config.FocusConfig{Enable: false, Backend: config.FocusHypr}, want: config.FocusNone},
		{name: "hypr", cfg: config.FocusConfig{Enable: true, Backend: config.FocusHypr}, want: config.FocusHypr},
		{name: "win32", cfg: config.FocusConfig{Enable: true, Backend: config.FocusWin32}, want: config.FocusWin32},
		{name: "command", cfg: config.FocusConfig{Enable: true, Backend: config.FocusCommand, Command: config.CommandConfig{Argv: []string{"true"}}}, want: config.FocusCommand},
		{name: "none", cfg: config.FocusConfig{Enable: true, Backend: config.FocusNone}, want: config.FocusNone},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			focuser, err := New(tc.cfg, nil)
			require.NoError(t, err)
			require.Equal(t, tc.want, focuser.Name())
		})
	}
}

func TestNewRejectsBadConfig(t *testing.T) {
	_, err := New(config.FocusConfig{Enable: true, Backend: config.FocusCommand}, nil)
	require.Error(t, err)

	_, err = New(config.FocusConfig{Enable: true, Backend: "x11"}, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown focus backend")
}

func TestCommandSubstitutesPID(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses a shell stub")
	}
	dir := t.TempDir()
	argsFile := filepath.Join(dir, "args.log")
	script := filepath.Join(dir, "raise")
	require.NoError(t, os.WriteFile(script, []byte("#!/usr/bin/env bash\nprintf '%s\\n' \"$*\" > \""+argsFile+"\"\n"), 0o755))

	focuser := Command{Argv: []string{script, "--pid={pid}", "{pid}"}, PID: 4242}
	require.NoError(t, focuser.BringToFront(context.Background()))

	data, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	require.Equal(t, "--pid=4242 4242", strings.TrimSpace(string(data)))
}

func TestCommandFailureIncludesOutput(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses a shell stub")
	}
	script := filepath.Join(t.TempDir(), "raise")
	require.NoError(t, os.WriteFile(script, []byte("#!/usr/bin/env bash\necho 'no such window' >&2\nexit 3\n"), 0o755))

	err := Command{Argv: []string{script}, PID: 1}.BringToFront(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "no such window")
}

func installHyprctlStub(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	argsFile := filepath.Join(dir, "hypr-args.log")
	stub := "#!/usr/bin/env bash\nprintf '%s\\n' \"$*\" >> \"" + argsFile + "\"\n" + body + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hyprctl"), []byte(stub), 0o755))
	t.Setenv("PATH", dir+":"+os.Getenv("PATH"))
	return argsFile
}

func TestHyprFocusesWindowOwnedByPID(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses a shell stub")
	}
	argsFile := installHyprctlStub(t, `
if [[ "${1:-}" == "-j" && "${2:-}" == "clients" ]]; then
  echo '[{"address":"0x1","pid":7,"mapped":true},{"address":"0x99","pid":`+strconv.Itoa(99)+`,"mapped":true}]'
fi`)

	require.NoError(t, Hypr{PID: 99}.BringToFront(context.Background()))
	require.NoError(t, Hypr{Selector: "class:editor", PID: 99}.BringToFront(context.Background()))

	data, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	require.Equal(t, []string{
		"-j clients",
		"--quiet dispatch focuswindow address:0x99",
		"--quiet dispatch focuswindow class:editor",
	}, strings.Split(strings.TrimSpace(string(data)), "\n"))
}

func TestHyprReportsMissingWindowWithoutDispatch(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses a shell stub")
	}
	argsFile := installHyprctlStub(t, `
if [[ "${1:-}" == "-j" ]]; then
  echo '[{"address":"0x1","pid":7,"mapped":true}]'
fi`)

	err := Hypr{PID: 42}.BringToFront(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "no mapped window for pid 42")

	data, readErr := os.ReadFile(argsFile)
	require.NoError(t, readErr)
	require.NotContains(t, string(data), "focuswindow")
}

func TestWin32OutsideWindows(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("exercises the non-Windows fallback")
	}
	w := &Win32{}
	require.ErrorIs(t, w.BringToFront(context.Background()), ErrUnsupported)
	require.NoError(t, w.AllowForeground())
}

func TestNoneIsNoop(t *testing.T) {
	require.NoError(t, None{}.BringToFront(context.Background()))
}
