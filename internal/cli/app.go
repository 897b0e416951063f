package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/dmitrijs2005/evtracker/internal/backup"
	"github.com/dmitrijs2005/evtracker/internal/buildinfo"
	"github.com/dmitrijs2005/evtracker/internal/config"
	"github.com/dmitrijs2005/evtracker/internal/filex"
	"github.com/dmitrijs2005/evtracker/internal/logging"
	"github.com/dmitrijs2005/evtracker/internal/migrations"
	"github.com/dmitrijs2005/evtracker/internal/remote"
	"github.com/dmitrijs2005/evtracker/internal/store"
)

// App holds everything a command needs.
type App struct {
	config  *config.Config
	store   *store.Store
	manager *backup.Manager
	log     logging.Logger
	reader  *bufio.Reader
	out     io.Writer
	errOut  io.Writer
}

// NewApp opens the store and builds the backup manager described by cfg.
// Log output and import progress go to errOut.
func NewApp(ctx context.Context, cfg *config.Config, in io.Reader, out, errOut io.Writer) (*App, error) {
	log, err := logging.New(cfg.LogFormat, cfg.LogLevel, errOut)
	if err != nil {
		return nil, err
	}

	safetyDir, err := filex.EnsureDir(cfg.SafetyBackupDir)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare safety backup directory: %w", err)
	}
	exportDir, err := filex.EnsureDir(cfg.ExportDir)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare export directory: %w", err)
	}

	st, err := store.Open(ctx, cfg.DatabasePath)
	if err != nil {
		log.Error(ctx, "error initializing database", "path", cfg.DatabasePath, "error", err)
		return nil, err
	}

	a := &App{
		config: cfg,
		store:  st,
		log:    log,
		reader: bufio.NewReader(in),
		out:    out,
		errOut: errOut,
	}

	opts := []backup.Option{
		backup.WithLogger(log),
		backup.WithPhaseHook(a.showProgress),
	}
	rs, err := newRemoteStore(ctx, cfg.Remote)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	if rs != nil {
		opts = append(opts, backup.WithRemote(rs, nil))
	}

	// Local snapshot files are marked to be skipped by OS-level backups.
	a.manager = backup.NewManager(backup.StoreRepositories(st), filex.NewLocalFS(true), backup.Config{
		ExportDir:       exportDir,
		SafetyBackupDir: safetyDir,
		DeviceName:      cfg.DeviceName,
		AppVersion:      buildinfo.Version,
		SchemaVersion:   migrations.SchemaVersion,
	}, opts...)
	return a, nil
}

func (a *App) Close() error {
	return a.store.Close()
}

// newRemoteStore returns nil when remote backups are disabled.
func newRemoteStore(ctx context.Context, rc config.RemoteConfig) (remote.Store, error) {
	if !rc.Enabled {
		return nil, nil
	}
	if rc.Dir != "" {
		return remote.NewDirStore(rc.Dir), nil
	}
	return remote.NewS3Store(ctx, remote.S3Options{
		Bucket:       rc.Bucket,
		Region:       rc.Region,
		BaseEndpoint: rc.BaseEndpoint,
		UsePathStyle: rc.UsePathStyle,
		AccessKey:    rc.AccessKey,
		SecretKey:    rc.SecretKey,
		Prefix:       rc.Prefix,
		Timeout:      rc.Timeout,
	})
}

func (a *App) showProgress(s backup.State) {
	if s.Activity == backup.Importing && s.Phase != backup.PhaseNone {
		fmt.Fprintf(a.errOut, "import: %s\n", s.Phase)
	}
}
