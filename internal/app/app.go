package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rbright/director/internal/cli"
	"github.com/rbright/director/internal/config"
	"github.com/rbright/director/internal/coordinator"
	"github.com/rbright/director/internal/dispatch"
	"github.com/rbright/director/internal/doctor"
	"github.com/rbright/director/internal/focus"
	"github.com/rbright/director/internal/indicator"
	"github.com/rbright/director/internal/ipc"
	"github.com/rbright/director/internal/launchargs"
	"github.com/rbright/director/internal/logging"
	"github.com/rbright/director/internal/urischeme"
	"github.com/rbright/director/internal/version"
)

const binaryName = "director"

type Runner struct {
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger

	// Focuser and Registrar replace the configured backends when set.
	Focuser   coordinator.WindowFocuser
	Registrar urischeme.Registrar
	// Executable is reported as argv[0] to the coordinator. Defaults to os.Args[0].
	Executable string
}

func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	r := Runner{Stdout: stdout, Stderr: stderr}
	return r.Execute(ctx, args)
}

func (r Runner) Execute(ctx context.Context, args []string) int {
	parsed, err := cli.Parse(args)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n\n", err)
		fmt.Fprint(r.Stderr, cli.HelpText(binaryName))
		return 2
	}

	if parsed.ShowHelp {
		fmt.Fprint(r.Stdout, cli.HelpText(binaryName))
		return 0
	}

	if parsed.Command == cli.CommandVersion {
		fmt.Fprintln(r.Stdout, version.String())
		return 0
	}

	if parsed.Command == cli.CommandParse {
		return r.commandParse(parsed)
	}

	cfgLoaded, err := config.Load(parsed.ConfigPath)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	if err := applyOverrides(&cfgLoaded.Config, parsed); err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 2
	}

	logRuntime, err := logging.New(cfgLoaded.Config.Log.Level)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: setup logging: %v\n", err)
		return 1
	}
	defer func() { _ = logRuntime.Close() }()

	logger := r.Logger
	if logger == nil {
		logger = logRuntime.Logger
	}

	for _, w := range cfgLoaded.Warnings {
		fmt.Fprintf(r.Stderr, "warning: %s\n", w.Message)
		logger.Warn("config warning", "message", w.Message)
	}

	logger.Info("command start",
		"command", parsed.Command,
		"config", cfgLoaded.Path,
		"log", logRuntime.Path,
		"port", cfgLoaded.Config.Instance.Port,
	)

	switch parsed.Command {
	case cli.CommandRun:
		return r.commandRun(ctx, cfgLoaded.Config, parsed.Args, logger)
	case cli.CommandNotify:
		return r.commandNotify(ctx, cfgLoaded.Config, parsed.Args, logger)
	case cli.CommandStatus:
		return r.commandStatus(ctx, cfgLoaded.Config)
	case cli.CommandRegister:
		return r.commandRegister(ctx, cfgLoaded.Config, parsed, logger)
	case cli.CommandDoctor:
		report := doctor.Run(ctx, cfgLoaded, doctor.Options{Registrar: r.registrar(logger)})
		fmt.Fprintln(r.Stdout, report.String())
		if report.OK() {
			return 0
		}
		return 1
	default:
		fmt.Fprintf(r.Stderr, "error: unsupported command %q\n", parsed.Command)
		return 2
	}
}

// applyOverrides folds command-line flags into cfg and revalidates it.
func applyOverrides(cfg *config.Config, parsed cli.Parsed) error {
	if parsed.Debug {
		cfg.Log.Level = "debug"
	}
	if parsed.Port == 0 {
		return nil
	}
	cfg.Instance.Port = parsed.Port
	_, err := config.Validate(*cfg)
	return err
}

// commandRun is the host-style launch: own the instance and print redirects
// until ctx ends, or forward to the running owner and exit.
func (r Runner) commandRun(ctx context.Context, cfg config.Config, launch []string, logger *slog.Logger) int {
	focuser := r.Focuser
	if focuser == nil {
		configured, err := focus.New(cfg.Focus, logger)
		if err != nil {
			fmt.Fprintf(r.Stderr, "error: %v\n", err)
			return 1
		}
		focuser = configured
	}

	loop := dispatch.NewLoop()
	defer loop.Close()

	notifier := indicator.New(cfg.Indicator, logger)
	defer notifier.Wait()

	coord := coordinator.New(cfg, logger, coordinator.Collaborators{
		Focuser:    focuser,
		Dispatcher: loop,
		Registrar:  r.registrar(logger),
		Reporter:   notifier,
		Args:       append([]string{r.executable()}, launch...),
	})
	unsubscribeIndicator := coord.Events().Subscribe(notifier.Listener())
	defer unsubscribeIndicator()

	redirects, unsubscribe := coord.Events().SubscribeChan(64)
	defer unsubscribe()

	outcome, err := coord.Start(ctx)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	logger.Info("instance outcome", "outcome", outcome.String(), "state", coord.State())

	if outcome.ShouldExit() {
		fmt.Fprintf(r.Stderr, "forwarded to running instance on %s\n", ipc.Address(cfg.Instance.Port))
		return 0
	}

	printer := newEventPrinter(r.Stdout)
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		for event := range redirects {
			if err := printer.Print(event); err != nil {
				return fmt.Errorf("print redirect: %w", err)
			}
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		err := coord.Stop()
		unsubscribe()
		notifier.Hide(context.Background())
		return err
	})

	coord.CheckStartupArguments()

	if err := group.Wait(); err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		logger.Error("run failed", "error", err.Error())
		return 1
	}
	logger.Info("run complete", "outcome", outcome.String(), "dropped", coord.Events().Dropped())
	return 0
}

func (r Runner) commandNotify(ctx context.Context, cfg config.Config, launch []string, logger *slog.Logger) int {
	port := cfg.Instance.Port
	payload := launchargs.Join(launch)

	if err := ipc.Notify(ctx, port, []byte(payload), coordinator.NotifyOptions(cfg.Instance, logger)); err != nil {
		if errors.Is(err, ipc.ErrConnect) {
			fmt.Fprintf(r.Stderr, "error: no running instance on %s\n", ipc.Address(port))
		} else {
			fmt.Fprintf(r.Stderr, "error: %v\n", err)
		}
		logger.Warn("notify failed", "port", port, "error", err.Error())
		return 1
	}
	fmt.Fprintf(r.Stdout, "sent %d bytes to %s\n", len(payload), ipc.Address(port))
	return 0
}

func (r Runner) commandParse(parsed cli.Parsed) int {
	raw := launchargs.Join(parsed.Args)
	if len(parsed.Args) == 1 {
		raw = parsed.Args[0]
	}

	result := launchargs.ParseArguments(raw)
	if parsed.Full {
		result = launchargs.ParseCommandLine(raw)
	}

	if err := newEventPrinter(r.Stdout).PrintParsed(result); err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

func (r Runner) commandStatus(ctx context.Context, cfg config.Config) int {
	port := cfg.Instance.Port
	if !cfg.Instance.Enable {
		fmt.Fprintln(r.Stdout, "disabled")
		return 0
	}

	timeout := time.Duration(cfg.Instance.ConnectTimeoutMS) * time.Millisecond
	alive, err := ipc.Probe(ctx, port, timeout)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	if alive {
		fmt.Fprintf(r.Stdout, "running (%s)\n", ipc.Address(port))
		return 0
	}
	fmt.Fprintf(r.Stdout, "idle (%s)\n", ipc.Address(port))
	return 0
}

func (r Runner) commandRegister(ctx context.Context, cfg config.Config, parsed cli.Parsed, logger *slog.Logger) int {
	scheme := parsed.Scheme
	if scheme == "" {
		scheme = cfg.URIScheme.Name
	}
	if scheme == "" {
		fmt.Fprintln(r.Stderr, "error: no scheme: pass --scheme or set uri_scheme.name")
		return 2
	}
	friendlyName := parsed.FriendlyName
	if friendlyName == "" {
		friendlyName = cfg.URIScheme.FriendlyName
	}

	registrar := r.registrar(logger)
	coord := coordinator.New(cfg, logger, coordinator.Collaborators{Registrar: registrar})
	if err := coord.RegisterURIScheme(ctx, scheme, friendlyName); err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		if errors.Is(err, launchargs.ErrInvalidScheme) {
			return 2
		}
		return 1
	}

	status, err := registrar.Status(ctx, scheme)
	if err != nil {
		fmt.Fprintf(r.Stdout, "registered %s://\n", scheme)
		logger.Warn("scheme status unavailable", "scheme", scheme, "error", err.Error())
		return 0
	}
	fmt.Fprintf(r.Stdout, "registered %s:// -> %s\n", scheme, status.Handler)
	return 0
}

func (r Runner) registrar(logger *slog.Logger) urischeme.Registrar {
	if r.Registrar != nil {
		return r.Registrar
	}
	return urischeme.New(logger)
}

func (r Runner) executable() string {
	if r.Executable != "" {
		return r.Executable
	}
	if len(os.Args) > 0 {
		return os.Args[0]
	}
	return binaryName
}
