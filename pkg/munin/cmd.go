package munin

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/hupe1980/gomunin/internal/logging"
	"github.com/hupe1980/gomunin/internal/version"
)

// ExitError wraps an error with a specific process exit code.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}

	return fmt.Sprintf("exit code %d", e.Code)
}

func (e *ExitError) Unwrap() error { return e.Err }

// Main runs the plugin against os.Args and maps the result to a process
// exit code: 0 on success, 1 on failure. This is the minimal entry point
// for plugin executables; Execute offers the full command tree with flags
// and a version subcommand.
func Main(p *Plugin) int {
	subcommand := ""
	if len(p.args) > 1 {
		subcommand = p.args[1]
	}

	ok, err := p.Run(subcommand)
	if err != nil {
		slog.Error("plugin run failed", slog.String("plugin", p.name), slog.Any("error", err))

		return 1
	}

	if !ok {
		return 1
	}

	return 0
}

// Execute builds the command tree for the plugin, runs it, and returns the
// exit code.
func Execute(p *Plugin) int {
	cmd := NewRootCommand(p)

	if len(p.args) > 1 {
		cmd.SetArgs(p.args[1:])
	} else {
		cmd.SetArgs([]string{})
	}

	if err := cmd.Execute(); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			return exitErr.Code
		}

		slog.Error("plugin run failed", slog.String("plugin", p.name), slog.Any("error", err))

		return 1
	}

	return 0
}

// NewRootCommand constructs the top-level cobra.Command for a plugin
// executable: one subcommand per operating mode, with fetch as the default
// when no subcommand is given.
func NewRootCommand(p *Plugin) *cobra.Command {
	cmd := &cobra.Command{
		Use:   p.name,
		Short: fmt.Sprintf("munin plugin %s", p.name),
		Long: fmt.Sprintf(`%s is a munin monitoring plugin.

The munin node daemon invokes it with one of the subcommands config,
fetch, autoconf or suggest and reads the plugin protocol from stdout.
Without a subcommand the plugin behaves like fetch.`, p.name),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level, _ := cmd.Flags().GetString("log-level")
			format, _ := cmd.Flags().GetString("log-format")
			logging.Setup(level, format)

			return nil
		},
		RunE: func(*cobra.Command, []string) error {
			return runSubcommand(p, CmdFetch)
		},
	}

	pf := cmd.PersistentFlags()
	pf.String("log-level", logging.LevelWarn, "log level: debug, info, warn, error")
	pf.String("log-format", logging.FormatText, "log format: text, json")

	// Flag parsing errors return exit code 2.
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &ExitError{Code: 2, Err: err}
	})

	cmd.AddCommand(
		newModeCommand(p, CmdConfig, "Print the graph configuration"),
		newModeCommand(p, CmdFetch, "Print the current values"),
		newModeCommand(p, CmdAutoconf, "Report whether the plugin can monitor this host"),
		newModeCommand(p, CmdSuggest, "List suggested wildcard plugin instances"),
		newVersionCommand(p),
	)

	return cmd
}

// newModeCommand wraps one plugin operating mode as a cobra subcommand.
func newModeCommand(p *Plugin, mode, short string) *cobra.Command {
	return &cobra.Command{
		Use:   mode,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return runSubcommand(p, mode)
		},
	}
}

func runSubcommand(p *Plugin, mode string) error {
	ok, err := p.Run(mode)
	if err != nil {
		return err
	}

	if !ok {
		return &ExitError{Code: 1}
	}

	return nil
}

func newVersionCommand(p *Plugin) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		// Version needs no logging setup.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := version.GetInfo(p.Name())

			if jsonOutput {
				j, err := info.JSON()
				if err != nil {
					return err
				}

				_, err = fmt.Fprintln(cmd.OutOrStdout(), j)

				return err
			}

			_, err := fmt.Fprintln(cmd.OutOrStdout(), info.String())

			return err
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output version info as JSON")

	return cmd
}
