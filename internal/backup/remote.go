package backup

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/evtracker/internal/filex"
)

// remoteDir is the directory of remote backups relative to the store root.
const remoteDir = ""

// CheckRemoteAvailability returns nil, or an error wrapping
// ErrRemoteUnavailable or ErrNetworkUnavailable.
func (m *Manager) CheckRemoteAvailability(ctx context.Context) error {
	if m.remote == nil {
		return fmt.Errorf("%w: remote backups are not configured", ErrRemoteUnavailable)
	}
	return m.remote.CheckAvailability(ctx)
}

// CreateRemoteBackup uploads a snapshot of the store and then applies
// RemoteRetention. A failed prune is logged and does not fail the backup.
func (m *Manager) CreateRemoteBackup(ctx context.Context) (Descriptor, error) {
	if err := m.begin(Exporting); err != nil {
		return Descriptor{}, err
	}
	defer m.end()

	if err := m.CheckRemoteAvailability(ctx); err != nil {
		return Descriptor{}, err
	}

	data, err := m.encodeStore(ctx)
	if err != nil {
		return Descriptor{}, err
	}
	name := backupFileName(exportPrefix, m.now())
	if err := m.remoteFS.WriteFile(ctx, name, data); err != nil {
		return Descriptor{}, &IOError{Op: "upload", Path: name, Err: err}
	}
	m.log.Info(ctx, "remote backup written", "name", name, "bytes", len(data))

	desc, err := describe(filex.FileInfo{Name: name, Path: name, Size: int64(len(data))}, data)
	if err != nil {
		return Descriptor{}, err
	}

	if _, err := m.pruneRemote(ctx); err != nil {
		m.log.Warn(ctx, "failed to prune remote backups", "error", err)
	}
	return desc, nil
}

// ListRemoteBackups describes the remote backups, newest first.
func (m *Manager) ListRemoteBackups(ctx context.Context) ([]Descriptor, error) {
	if err := m.CheckRemoteAvailability(ctx); err != nil {
		return nil, err
	}
	return m.listDescriptors(ctx, "remote", m.remoteFS, remoteDir, exportPrefix)
}

// RestoreRemoteBackup imports the remote backup called name, with the same
// guarantees as Import.
func (m *Manager) RestoreRemoteBackup(ctx context.Context, name string) error {
	if err := m.begin(Importing); err != nil {
		return err
	}
	defer m.end()

	if err := m.CheckRemoteAvailability(ctx); err != nil {
		return err
	}
	data, err := m.remoteFS.ReadFile(ctx, name)
	if err != nil {
		return &IOError{Op: "download", Path: name, Err: err}
	}
	return m.importData(ctx, data, "remote:"+name)
}

// DeleteRemoteBackup removes one remote backup. It returns ErrBusy while
// another operation holds the manager.
func (m *Manager) DeleteRemoteBackup(ctx context.Context, name string) error {
	if err := m.begin(Exporting); err != nil {
		return err
	}
	defer m.end()

	if err := m.CheckRemoteAvailability(ctx); err != nil {
		return err
	}
	if err := m.remoteFS.Delete(ctx, name); err != nil {
		return &IOError{Op: "delete", Path: name, Err: err}
	}
	m.cache.forget("remote", name)
	m.log.Info(ctx, "remote backup deleted", "name", name)
	return nil
}

// PruneRemoteBackups applies RemoteRetention and returns what was deleted.
func (m *Manager) PruneRemoteBackups(ctx context.Context) ([]Descriptor, error) {
	if err := m.begin(Exporting); err != nil {
		return nil, err
	}
	defer m.end()

	if err := m.CheckRemoteAvailability(ctx); err != nil {
		return nil, err
	}
	return m.pruneRemote(ctx)
}

func (m *Manager) pruneRemote(ctx context.Context) ([]Descriptor, error) {
	list, err := m.listDescriptors(ctx, "remote", m.remoteFS, remoteDir, exportPrefix)
	if err != nil {
		return nil, err
	}

	var (
		deleted []Descriptor
		errs    []error
	)
	for _, d := range RemoteRetention.SelectForDeletion(list, m.now()) {
		if err := m.remoteFS.Delete(ctx, d.Path); err != nil {
			errs = append(errs, &IOError{Op: "delete", Path: d.Path, Err: err})
			continue
		}
		m.cache.forget("remote", d.Path)
		deleted = append(deleted, d)
		m.log.Info(ctx, "pruned remote backup", "name", d.Name, "created_at", d.CreatedAt)
	}
	return deleted, errors.Join(errs...)
}
