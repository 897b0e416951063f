package backup

import (
	"context"
	"fmt"
	"path/filepath"
)

// Export writes a snapshot of the store to a new file in the export
// directory and returns its path. The store is only read.
func (m *Manager) Export(ctx context.Context) (string, error) {
	if err := m.begin(Exporting); err != nil {
		return "", err
	}
	defer m.end()

	path, err := m.writeLocalSnapshot(ctx, m.cfg.ExportDir, exportPrefix)
	if err != nil {
		return "", err
	}
	m.log.Info(ctx, "export written", "path", path)
	return path, nil
}

// ListExports describes the exports in the export directory, newest first.
func (m *Manager) ListExports(ctx context.Context) ([]Descriptor, error) {
	return m.listDescriptors(ctx, "local", m.fs, m.cfg.ExportDir, exportPrefix)
}

// ListSafetyBackups describes the safety snapshots, newest first.
func (m *Manager) ListSafetyBackups(ctx context.Context) ([]Descriptor, error) {
	return m.listDescriptors(ctx, "local", m.fs, m.cfg.SafetyBackupDir, safetyPrefix)
}

// Snapshot reads the whole store.
func (m *Manager) Snapshot(ctx context.Context) (*Snapshot, error) {
	s := &Snapshot{
		Metadata: Metadata{
			CreatedAt:     m.now().UTC(),
			AppVersion:    m.cfg.AppVersion,
			DeviceName:    m.cfg.DeviceName,
			SchemaVersion: m.cfg.SchemaVersion,
		},
	}

	var err error
	if s.Cars, err = m.repos.Cars.GetAll(ctx); err != nil {
		return nil, fmt.Errorf("failed to read cars: %w", err)
	}
	if s.Expenses, err = m.repos.Expenses.FetchAll(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to read expenses: %w", err)
	}
	if s.Maintenance, err = m.repos.Maintenance.GetAll(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to read planned maintenance: %w", err)
	}
	if s.Notifications, err = m.repos.Notifications.GetAll(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to read delayed notifications: %w", err)
	}

	currency, err := m.repos.Settings.FetchCurrency(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read currency: %w", err)
	}
	language, err := m.repos.Settings.FetchLanguage(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read language: %w", err)
	}
	s.Settings = Settings{Currency: &currency, Language: &language}
	return s, nil
}

func (m *Manager) encodeStore(ctx context.Context) ([]byte, error) {
	s, err := m.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return Encode(s)
}

// writeLocalSnapshot encodes the store into a new file under dir. The file
// is synced to disk before it returns.
func (m *Manager) writeLocalSnapshot(ctx context.Context, dir, prefix string) (string, error) {
	data, err := m.encodeStore(ctx)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, backupFileName(prefix, m.now()))
	if err := m.fs.WriteFile(ctx, path, data); err != nil {
		return "", &IOError{Op: "write", Path: path, Err: err}
	}
	return path, nil
}
