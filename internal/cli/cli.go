// Package cli maps director's argv onto a cobra command tree and returns the
// selected command as a plain Parsed value.
package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

type Command string

const (
	CommandRun      Command = "run"
	CommandNotify   Command = "notify"
	CommandParse    Command = "parse"
	CommandStatus   Command = "status"
	CommandRegister Command = "register"
	CommandDoctor   Command = "doctor"
	CommandVersion  Command = "version"
	CommandHelp     Command = "help"
)

var validCommands = map[string]Command{
	"run":      CommandRun,
	"notify":   CommandNotify,
	"parse":    CommandParse,
	"status":   CommandStatus,
	"register": CommandRegister,
	"doctor":   CommandDoctor,
	"version":  CommandVersion,
	"help":     CommandHelp,
}

func init() {
	// Scheme handlers are started by explorer.exe on Windows.
	cobra.MousetrapHelpText = ""
}

type Parsed struct {
	Command    Command
	ConfigPath string
	Port       int
	Debug      bool
	ShowHelp   bool

	// Args holds launch arguments for run and notify, or the command line words for parse.
	Args []string
	Full bool

	Scheme       string
	FriendlyName string
}

// Parse interprets args (without the program name).
//
// A first word that is neither a global flag nor a known command starts a
// host-style launch, so `director myapp://x` behaves like `director run -- myapp://x`.
// That is the shape the OS uses when it invokes a registered scheme handler.
func Parse(args []string) (Parsed, error) {
	parsed := Parsed{Command: CommandHelp, ShowHelp: true}

	root := newRootCmd(&parsed)
	root.SetArgs(normalize(args))
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)

	if err := root.Execute(); err != nil {
		return Parsed{}, err
	}
	return parsed, nil
}

func newRootCmd(parsed *Parsed) *cobra.Command {
	var showVersion bool

	selectCmd := func(cmd Command) {
		parsed.Command = cmd
		parsed.ShowHelp = false
	}

	rootCmd := &cobra.Command{
		Use:           "director",
		Short:         "Single-instance launcher and redirect coordinator",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			if showVersion {
				selectCmd(CommandVersion)
			}
			return nil
		},
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.SetHelpFunc(func(*cobra.Command, []string) {
		parsed.Command = CommandHelp
		parsed.ShowHelp = true
	})

	rootCmd.PersistentFlags().StringVar(&parsed.ConfigPath, "config", "", "config file path")
	rootCmd.PersistentFlags().IntVar(&parsed.Port, "port", 0, "rendezvous port (overrides instance.port)")
	rootCmd.PersistentFlags().BoolVar(&parsed.Debug, "debug", false, "force debug logging")
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "show version")

	launchCmd := func(cmd Command, short string) *cobra.Command {
		return &cobra.Command{
			Use:   string(cmd) + " [--] [args...]",
			Short: short,
			Args:  cobra.ArbitraryArgs,
			RunE: func(_ *cobra.Command, args []string) error {
				selectCmd(cmd)
				parsed.Args = append([]string(nil), args...)
				return nil
			},
		}
	}

	parseCmd := &cobra.Command{
		Use:   "parse [--full] <command line>",
		Short: "Print how a launch command line is interpreted",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			selectCmd(CommandParse)
			parsed.Args = append([]string(nil), args...)
			return nil
		},
	}
	parseCmd.Flags().BoolVar(&parsed.Full, "full", false, "treat the input as a full command line including the program")

	registerCmd := &cobra.Command{
		Use:   "register",
		Short: "Register the URI scheme handler for this executable",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			selectCmd(CommandRegister)
			return nil
		},
	}
	registerCmd.Flags().StringVar(&parsed.Scheme, "scheme", "", "scheme name (default: uri_scheme.name)")
	registerCmd.Flags().StringVar(&parsed.FriendlyName, "name", "", "friendly name (default: uri_scheme.friendly_name)")

	plainCmd := func(cmd Command, short string) *cobra.Command {
		return &cobra.Command{
			Use:   string(cmd),
			Short: short,
			Args:  cobra.NoArgs,
			RunE: func(*cobra.Command, []string) error {
				selectCmd(cmd)
				return nil
			},
		}
	}

	rootCmd.AddCommand(
		launchCmd(CommandRun, "Acquire the instance or forward arguments to the running one"),
		launchCmd(CommandNotify, "Forward arguments to the running instance"),
		parseCmd,
		plainCmd(CommandStatus, "Report whether an instance owns the rendezvous port"),
		registerCmd,
		plainCmd(CommandDoctor, "Run configuration and environment checks"),
		plainCmd(CommandVersion, "Print version information"),
	)

	return rootCmd
}

// normalize rewrites host-style launches into an explicit `run --` and makes
// every word after run or notify a launch argument.
func normalize(args []string) []string {
	out := make([]string, 0, len(args)+2)
	for i := 0; i < len(args); i++ {
		arg := args[i]
		name, _, hasValue := strings.Cut(arg, "=")

		switch {
		case arg == "--":
			return append(append(out, "run", "--"), args[i+1:]...)
		case name == "--config" || name == "--port":
			out = append(out, arg)
			if !hasValue && i+1 < len(args) {
				i++
				out = append(out, args[i])
			}
		case arg == "--debug" || arg == "-h" || arg == "--help" || arg == "--version":
			out = append(out, arg)
		default:
			cmd, ok := validCommands[arg]
			if !ok {
				return append(append(out, "run", "--"), args[i:]...)
			}
			out = append(out, arg)
			rest := args[i+1:]
			if cmd == CommandRun || cmd == CommandNotify {
				if len(rest) > 0 && rest[0] == "--" {
					rest = rest[1:]
				}
				out = append(out, "--")
			}
			return append(out, rest...)
		}
	}
	return out
}

func HelpText(binaryName string) string {
	return fmt.Sprintf(`Usage:
  %[1]s [flags] <command> [args]
  %[1]s [flags] <launch args...>     same as "run"

Commands:
  run [--] [args...]           Own the instance, or forward args to the running one and exit
  notify [--] [args...]        Forward args to the running instance without binding
  parse [--full] <cmdline>     Print how launch arguments are interpreted
  status                       Report whether an instance owns the rendezvous port
  register [--scheme S] [--name N]
                               Register the URI scheme handler for this executable
  doctor                       Run configuration and environment checks
  version                      Print version information
  help                         Show this help

Flags:
  --config PATH   Config file path (default: $XDG_CONFIG_HOME/director/config.hjson)
  --port N        Rendezvous port (overrides instance.port)
  --debug         Force debug logging
  -h, --help      Show help
  --version       Show version

Global flags go before the command. Everything after run or notify is a launch argument.
`, binaryName)
}
