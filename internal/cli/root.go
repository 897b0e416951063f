package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/evtracker/internal/buildinfo"
	"github.com/dmitrijs2005/evtracker/internal/config"
	"github.com/dmitrijs2005/evtracker/internal/migrations"
	"github.com/spf13/cobra"
)

// flags overrides configuration values when set.
type flags struct {
	configFile string
	envFile    string
	dbPath     string
	exportDir  string
	safetyDir  string
	logFormat  string
	logLevel   string
}

func (f *flags) apply(cfg *config.Config) {
	for dst, v := range map[*string]string{
		&cfg.DatabasePath:    f.dbPath,
		&cfg.ExportDir:       f.exportDir,
		&cfg.SafetyBackupDir: f.safetyDir,
		&cfg.LogFormat:       f.logFormat,
		&cfg.LogLevel:        f.logLevel,
	} {
		if v != "" {
			*dst = v
		}
	}
}

// Run executes the command line args. Confirmations are read from in,
// results printed to out, and logs and progress written to errOut.
func Run(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) (err error) {
	root, closeApp := newRootCommand(in, out, errOut)
	defer func() {
		err = errors.Join(err, closeApp())
	}()
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// newRootCommand returns the command tree and a func that closes whatever
// the executed command opened.
func newRootCommand(in io.Reader, out, errOut io.Writer) (*cobra.Command, func() error) {
	var (
		f   flags
		app *App
	)

	root := &cobra.Command{
		Use:   "evtracker",
		Short: "Back up and restore EV expense data",
		Long: `evtracker exports the local car expense store to a JSON snapshot and
imports snapshots back. Every import first saves a safety backup of the
current data and rolls back to it if anything goes wrong.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(config.LoadOptions{ConfigFile: f.configFile, EnvFile: f.envFile})
			if err != nil {
				return err
			}
			f.apply(cfg)
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			app, err = NewApp(cmd.Context(), cfg, in, out, errOut)
			return err
		},
	}
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	pf := root.PersistentFlags()
	pf.StringVar(&f.configFile, "config", "", "JSON configuration file")
	pf.StringVar(&f.envFile, "env-file", ".env", "dotenv file with EVTRACKER_* variables")
	pf.StringVar(&f.dbPath, "db", "", "database file")
	pf.StringVar(&f.exportDir, "export-dir", "", "directory for exports")
	pf.StringVar(&f.safetyDir, "safety-dir", "", "directory for safety backups")
	pf.StringVar(&f.logFormat, "log-format", "", "log format: text, json, zerolog or console")
	pf.StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn or error")

	appFn := func() *App { return app }
	root.AddCommand(
		newExportCommand(appFn),
		newImportCommand(appFn),
		newListCommand(appFn),
		newSafetyCommand(appFn),
		newRemoteCommand(appFn),
		newVersionCommand(out),
	)

	closeApp := func() error {
		if app == nil {
			return nil
		}
		return app.Close()
	}
	return root, closeApp
}

func newVersionCommand(out io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		// No store is needed.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			buildinfo.PrintBuildData(out)
			_, err := fmt.Fprintf(out, "Snapshot schema: %d\n", migrations.SchemaVersion)
			return err
		},
	}
}
