// Package cli implements the tabledb command-line interface.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mesh-intelligence/tabledb/internal/paths"
	"github.com/mesh-intelligence/tabledb/internal/storage"
	"github.com/mesh-intelligence/tabledb/pkg/tabledb"
	"github.com/mesh-intelligence/tabledb/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir  string
	projectDir string
	logLevel   string
	jsonMode   bool
}

// app is the state shared by the commands of one invocation.
type app struct {
	flags     rootFlags
	configDir string
	cfg       *viper.Viper
	log       *logrus.Logger
}

// NewRootCmd creates the top-level "tabledb" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{log: logrus.New()}
	a.log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	root := &cobra.Command{
		Use:     "tabledb",
		Short:   "Inspect and maintain tabledb project directories",
		Long:    "tabledb reads, repairs and queries the on-disk form of a table\ndatabase project: manifest, table schemas, rows, variants and documents.",
		Version: tabledb.Version,
		// Do not print usage on errors returned by subcommands; Execute
		// prints the error itself.
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	root.PersistentFlags().StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (default: $XDG_CONFIG_HOME/tabledb)")
	root.PersistentFlags().StringVar(&a.flags.projectDir, "project", "", "project directory (default: active project or nearest parent with project.json)")
	root.PersistentFlags().StringVar(&a.flags.logLevel, "log-level", "", "log level: debug, info, warn, error")
	root.PersistentFlags().BoolVar(&a.flags.jsonMode, "json", false, "output in JSON format")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd(a))
	root.AddCommand(newUseCmd(a))
	root.AddCommand(newInfoCmd(a))
	root.AddCommand(newCheckCmd(a))
	root.AddCommand(newNormalizeCmd(a))
	root.AddCommand(newQueryCmd(a))
	root.AddCommand(newExportCmd(a))
	root.AddCommand(newTableCmd(a))
	root.AddCommand(newDocCmd(a))

	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	root := NewRootCmd()
	err := root.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
	}
	os.Exit(exitCode(err))
}

// exitCode maps a command error to a process exit code. Problems the user
// can fix by pointing at another directory or changing input are user
// errors; everything else is a system error.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitSuccess
	case errors.Is(err, types.ErrProjectNotFound),
		errors.Is(err, types.ErrNoActiveProject),
		errors.Is(err, types.ErrInvalidProjectDir),
		errors.Is(err, types.ErrTableNotFound),
		errors.Is(err, types.ErrInvalidName),
		errors.Is(err, errDrift),
		errors.Is(err, errUsage):
		return exitUserError
	default:
		return exitSysError
	}
}

var errUsage = errors.New("usage")

// setup resolves the config directory, loads config.yaml and configures
// logging before any subcommand runs.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	a.log.SetOutput(cmd.ErrOrStderr())
	if cmd.Name() == "version" {
		return nil
	}

	configDir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(configDir)
	if err != nil {
		return err
	}
	a.configDir, a.cfg = configDir, cfg

	level := a.flags.logLevel
	if level == "" {
		level = cfg.GetString(cfgKeyLogLevel)
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("%w: log level %q", errUsage, level)
	}
	a.log.SetLevel(lvl)
	return nil
}

// projectDir returns the project root the command operates on.
func (a *app) projectDir() (string, error) {
	return paths.ResolveProjectDir(a.flags.projectDir, a.cfg.GetString(cfgKeyProjectDir), a.configDir)
}

func (a *app) storeOptions() storage.Options {
	return storage.Options{Logger: a.log}
}

// openProject resolves and loads the project.
func (a *app) openProject() (*storage.Store, *types.Project, error) {
	root, err := a.projectDir()
	if err != nil {
		return nil, nil, err
	}
	store := storage.NewStore(root, a.storeOptions())
	p, err := store.Load()
	if err != nil {
		return nil, nil, err
	}
	a.log.WithFields(logrus.Fields{"root": root, "tables": len(p.Tables), "documents": len(p.Documents)}).
		Debug("project loaded")
	return store, p, nil
}

// saveProject writes p back and drops the change signal for running editors.
func (a *app) saveProject(store *storage.Store, p *types.Project) error {
	if err := store.Save(p); err != nil {
		return err
	}
	if _, err := paths.SignalExternalChange(store.Root()); err != nil {
		a.log.WithError(err).Warn("writing change signal")
	}
	return nil
}
