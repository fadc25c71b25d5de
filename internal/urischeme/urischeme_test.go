package urischeme

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rbright/director/internal/launchargs"
)

func installXDGMimeStub(t *testing.T, body string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("uses a shell stub")
	}

	dir := t.TempDir()
	script := "#!/usr/bin/env bash\nset -euo pipefail\n" + body + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "xdg-mime"), []byte(script), 0o755))
	t.Setenv("PATH", dir+":"+os.Getenv("PATH"))
}

func TestXDGRegisterWritesDesktopEntryAndSetsDefault(t *testing.T) {
	argsFile := filepath.Join(t.TempDir(), "xdg-args.log")
	t.Setenv("XDG_ARGS_FILE", argsFile)
	installXDGMimeStub(t, `printf '%s\n' "$*" >> "${XDG_ARGS_FILE}"`)

	dataHome := t.TempDir()
	x := XDG{Executable: "/opt/My App/bin/app", DataHome: dataHome}
	require.NoError(t, x.Register(context.Background(), "MyApp", "My App"))

	entry, err := os.ReadFile(filepath.Join(dataHome, "applications", "myapp-url-handler.desktop"))
	require.NoError(t, err)
	require.Contains(t, string(entry), "Name=My App\n")
	require.Contains(t, string(entry), `Exec="/opt/My App/bin/app" %u`)
	require.Contains(t, string(entry), "MimeType=x-scheme-handler/myapp;\n")

	args, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	require.Equal(t, "default myapp-url-handler.desktop x-scheme-handler/myapp", strings.TrimSpace(string(args)))
}

func TestXDGRegisterRejectsBadInput(t *testing.T) {
	x := XDG{Executable: "/bin/app", DataHome: t.TempDir()}

	err := x.Register(context.Background(), "my app", "App")
	require.ErrorIs(t, err, launchargs.ErrInvalidScheme)

	err = x.Register(context.Background(), "myapp", "")
	require.Error(t, err)
	require.Contains(t, err.Error(), "friendly name")
}

func TestXDGRegisterSurfacesXDGMimeFailure(t *testing.T) {
	installXDGMimeStub(t, `echo 'no default app' >&2; exit 4`)

	x := XDG{Executable: "/bin/app", DataHome: t.TempDir()}
	err := x.Register(context.Background(), "myapp", "App")
	require.Error(t, err)
	require.Contains(t, err.Error(), "no default app")
}

func TestXDGStatus(t *testing.T) {
	installXDGMimeStub(t, `
if [[ "$1" == "query" && "$3" == "x-scheme-handler/myapp" ]]; then
  echo 'myapp-url-handler.desktop'
  exit 0
fi
if [[ "$1" == "query" ]]; then
  echo ''
  exit 0
fi
`)

	dataHome := t.TempDir()
	apps := filepath.Join(dataHome, "applications")
	require.NoError(t, os.MkdirAll(apps, 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(apps, "myapp-url-handler.desktop"),
		[]byte(desktopEntry("/bin/app", "myapp", "App")),
		0o644,
	))

	status, err := XDG{Executable: "/bin/app", DataHome: dataHome}.Status(context.Background(), "myapp")
	require.NoError(t, err)
	require.True(t, status.Registered)
	require.True(t, status.Current)
	require.Equal(t, "myapp-url-handler.desktop", status.Handler)

	status, err = XDG{Executable: "/usr/bin/other", DataHome: dataHome}.Status(context.Background(), "myapp")
	require.NoError(t, err)
	require.True(t, status.Registered)
	require.False(t, status.Current)

	status, err = XDG{Executable: "/bin/app", DataHome: dataHome}.Status(context.Background(), "unknown")
	require.NoError(t, err)
	require.False(t, status.Registered)
}

func TestQuoteExec(t *testing.T) {
	require.Equal(t, `"/bin/app"`, quoteExec("/bin/app"))
	require.Equal(t, `"/opt/a \"b\" \$HOME \\ \`+"`"+`x\`+"`"+`"`, quoteExec("/opt/a \"b\" $HOME \\ `x`"))
}
