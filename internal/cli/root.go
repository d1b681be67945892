// Package cli implements the satchel command-line interface: a cobra command
// tree over a record store whose fields come from a YAML schema file.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mesh-intelligence/satchel/internal/paths"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// exitError carries the process exit code of a failed command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

// userError marks err as caused by the invocation: bad arguments, unknown
// fields, missing records.
func userError(err error) error { return &exitError{code: exitUserError, err: err} }

// sysError marks err as an environment failure: I/O, database, config.
func sysError(err error) error { return &exitError{code: exitSysError, err: err} }

// exitCode returns the exit code for an error returned by a command.
// Errors not marked by userError or sysError are usage errors from cobra.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return exitUserError
}

// rootFlags holds global flag values.
type rootFlags struct {
	configDir  string
	dataDir    string
	schemaFile string
	jsonMode   bool
	verbose    bool
}

// app is the state shared by the subcommands of one root command.
type app struct {
	flags     rootFlags
	configDir string
	config    *viper.Viper
	log       *slog.Logger
}

// NewRootCmd creates the top-level "satchel" command with global flags and
// all subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:     "satchel",
		Short:   "Typed fields packed into string maps",
		Long:    "Satchel stores records whose typed fields are packed into string/string carrier\ncolumns, and queries them with predicates rendered for SQLite or Postgres.",
		Version: Version,
		// Do not print usage on errors returned by subcommands.
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	root.PersistentFlags().StringVar(&a.flags.dataDir, "data-dir", "", "data directory (default: $(CWD)/.satchel-db)")
	root.PersistentFlags().StringVar(&a.flags.schemaFile, "schema", "", "schema file (default: schema.yaml in the config dir)")
	root.PersistentFlags().BoolVar(&a.flags.jsonMode, "json", false, "output as JSON")
	root.PersistentFlags().BoolVarP(&a.flags.verbose, "verbose", "v", false, "log debug output to stderr")

	root.AddCommand(
		newVersionCmd(),
		newInitCmd(a),
		newFieldsCmd(a),
		newSetCmd(a),
		newGetCmd(a),
		newListCmd(a),
		newDeleteCmd(a),
		newWhereCmd(a),
	)
	return root
}

// setup installs the logger and loads config.yaml.
func (a *app) setup(cmd *cobra.Command) error {
	a.log = newLogger(cmd.ErrOrStderr(), a.flags.verbose)
	if cmd.Name() == "version" {
		return nil
	}

	dir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return sysError(fmt.Errorf("resolve config dir: %w", err))
	}
	v, err := loadConfig(dir)
	if err != nil {
		return sysError(err)
	}
	a.configDir = dir
	a.config = v
	a.log.Debug("loaded config", "dir", dir, "file", v.ConfigFileUsed())
	return nil
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// run executes the command tree with args and returns the exit code.
func run(root *cobra.Command, args []string) int {
	root.SetArgs(args)
	err := root.Execute()
	if err != nil {
		fmt.Fprintln(root.ErrOrStderr(), "satchel:", err)
	}
	return exitCode(err)
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	os.Exit(run(NewRootCmd(), os.Args[1:]))
}
