// Package doctor runs readiness diagnostics for config, the rendezvous port,
// focus tooling, and scheme registration.
package doctor

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	ps "github.com/mitchellh/go-ps"

	"github.com/rbright/director/internal/config"
	"github.com/rbright/director/internal/hypr"
	"github.com/rbright/director/internal/ipc"
	"github.com/rbright/director/internal/urischeme"
)

// Check is one doctor assertion result.
type Check struct {
	Name    string
	Pass    bool
	Message string
}

// Report is the full doctor output contract.
type Report struct {
	Checks []Check
}

// OK returns true when all checks pass.
func (r Report) OK() bool {
	for _, check := range r.Checks {
		if !check.Pass {
			return false
		}
	}
	return true
}

// String renders the report as user-facing text output.
func (r Report) String() string {
	var b strings.Builder
	for _, check := range r.Checks {
		status := "OK"
		if !check.Pass {
			status = "FAIL"
		}
		b.WriteString(fmt.Sprintf("[%s] %s: %s\n", status, check.Name, check.Message))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// Options carries the collaborators doctor inspects.
type Options struct {
	Registrar urischeme.Registrar
	// Executable is the process name matched against running processes;
	// empty uses this binary's base name.
	Executable string
}

// listProcesses is swapped in tests.
var listProcesses = ps.Processes

// Run executes environment/config/runtime checks for a loaded config.
func Run(ctx context.Context, cfg config.Loaded, opts Options) Report {
	checks := []Check{}

	configMessage := fmt.Sprintf("loaded %q", cfg.Path)
	if !cfg.Exists {
		configMessage = fmt.Sprintf("using defaults (%q not found)", cfg.Path)
	}
	checks = append(checks, Check{Name: "config", Pass: true, Message: configMessage})

	if cfg.Config.Instance.Enable {
		checks = append(checks, checkRendezvous(ctx, cfg.Config.Instance.Port))
	} else {
		checks = append(checks, Check{Name: "rendezvous", Pass: true, Message: "single-instance check disabled"})
	}
	checks = append(checks, checkSiblings(opts.Executable))
	checks = append(checks, checkFocus(ctx, cfg.Config.Focus)...)

	if cfg.Config.Indicator.Enable {
		switch cfg.Config.Indicator.Backend {
		case config.IndicatorDesktop:
			checks = append(checks, checkBinary("busctl", "desktop notifications"))
		default:
			checks = append(checks, checkBinary("hyprctl", "hypr notifications"))
		}
	}

	if name := cfg.Config.URIScheme.Name; name != "" && opts.Registrar != nil {
		checks = append(checks, checkScheme(ctx, opts.Registrar, name))
	}

	return Report{Checks: checks}
}

// checkRendezvous connects without binding so an owner keeps the port.
func checkRendezvous(ctx context.Context, port int) Check {
	alive, err := ipc.Probe(ctx, port, 500*time.Millisecond)
	if err != nil {
		return Check{Name: "rendezvous", Pass: false, Message: err.Error()}
	}
	if alive {
		return Check{Name: "rendezvous", Pass: true, Message: fmt.Sprintf("%s owned by a running instance", ipc.Address(port))}
	}
	return Check{Name: "rendezvous", Pass: true, Message: fmt.Sprintf("%s is free", ipc.Address(port))}
}

// checkSiblings counts other processes running the same executable.
func checkSiblings(executable string) Check {
	if executable == "" {
		exe, err := os.Executable()
		if err != nil {
			return Check{Name: "instances", Pass: false, Message: err.Error()}
		}
		executable = filepath.Base(exe)
	}

	procs, err := listProcesses()
	if err != nil {
		return Check{Name: "instances", Pass: false, Message: fmt.Sprintf("list processes: %v", err)}
	}

	self := os.Getpid()
	var pids []string
	for _, p := range procs {
		if p.Pid() == self || !sameExecutable(p.Executable(), executable) {
			continue
		}
		pids = append(pids, fmt.Sprint(p.Pid()))
	}

	if len(pids) == 0 {
		return Check{Name: "instances", Pass: true, Message: fmt.Sprintf("no other %s processes", executable)}
	}
	return Check{Name: "instances", Pass: true, Message: fmt.Sprintf("%d other %s process(es): %s", len(pids), executable, strings.Join(pids, ", "))}
}

func sameExecutable(a, b string) bool {
	if runtime.GOOS == "windows" {
		return strings.EqualFold(strings.TrimSuffix(strings.ToLower(a), ".exe"), strings.TrimSuffix(strings.ToLower(b), ".exe"))
	}
	// Linux truncates comm to 15 bytes.
	if len(b) > 15 && len(a) == 15 {
		return strings.HasPrefix(b, a)
	}
	return a == b
}

func checkFocus(ctx context.Context, cfg config.FocusConfig) []Check {
	if !cfg.Enable || cfg.Backend == config.FocusNone {
		return []Check{{Name: "focus", Pass: true, Message: "disabled"}}
	}

	switch cfg.Backend {
	case config.FocusHypr:
		checks := []Check{
			checkEnv("HYPRLAND_INSTANCE_SIGNATURE", func(v string) bool {
				return strings.TrimSpace(v) != ""
			}, "Hyprland session detected", "HYPRLAND_INSTANCE_SIGNATURE is empty"),
			checkBinary("hyprctl", "focus backend"),
		}
		if checks[1].Pass {
			checks = append(checks, checkActiveWindow(ctx))
		}
		return checks
	case config.FocusCommand:
		return []Check{checkCommand(cfg.Command.Argv, "focus.command")}
	case config.FocusWin32:
		if runtime.GOOS != "windows" {
			return []Check{{Name: "focus", Pass: false, Message: "win32 backend requires Windows"}}
		}
		return []Check{{Name: "focus", Pass: true, Message: "win32 foreground API"}}
	default:
		return []Check{{Name: "focus", Pass: false, Message: fmt.Sprintf("unknown backend %q", cfg.Backend)}}
	}
}

// checkActiveWindow confirms hyprctl can reach the compositor and names the
// window a redirect would be raised over.
func checkActiveWindow(ctx context.Context) Check {
	queryCtx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	window, err := hypr.QueryActiveWindow(queryCtx)
	if err != nil {
		return Check{Name: "focus target", Pass: false, Message: err.Error()}
	}
	return Check{Name: "focus target", Pass: true, Message: fmt.Sprintf("active window %s (class=%s pid=%d)", window.Address, window.Class, window.PID)}
}

func checkScheme(ctx context.Context, registrar urischeme.Registrar, scheme string) Check {
	name := "uri_scheme." + scheme
	status, err := registrar.Status(ctx, scheme)
	if err != nil {
		return Check{Name: name, Pass: false, Message: err.Error()}
	}
	switch {
	case !status.Registered:
		return Check{Name: name, Pass: false, Message: "not registered; run `director register`"}
	case !status.Current:
		return Check{Name: name, Pass: false, Message: fmt.Sprintf("handled by %s, not this executable", status.Handler)}
	default:
		return Check{Name: name, Pass: true, Message: fmt.Sprintf("handled by %s", status.Handler)}
	}
}

// checkEnv validates an environment variable through a caller-supplied predicate.
func checkEnv(name string, predicate func(string) bool, okMsg, failMsg string) Check {
	value := os.Getenv(name)
	if predicate(value) {
		return Check{Name: name, Pass: true, Message: okMsg}
	}
	return Check{Name: name, Pass: false, Message: failMsg}
}

// checkCommand validates that argv contains a runnable command.
func checkCommand(argv []string, name string) Check {
	if len(argv) == 0 {
		return Check{Name: name, Pass: false, Message: "command is empty"}
	}
	return checkBinary(argv[0], fmt.Sprintf("%s command is available", name))
}

// checkBinary validates that a binary exists in PATH.
func checkBinary(bin string, okMsg string) Check {
	path, err := exec.LookPath(bin)
	if err != nil {
		return Check{Name: bin, Pass: false, Message: fmt.Sprintf("binary not found in PATH: %s", bin)}
	}
	return Check{Name: bin, Pass: true, Message: fmt.Sprintf("found at %s (%s)", path, okMsg)}
}
