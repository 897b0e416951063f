package backup

import (
	"context"
	"errors"
	"fmt"
)

// Import replaces the store with the snapshot in the file at path.
//
// Nothing is changed until the file has been decoded, validated and a
// safety snapshot of the current store has been written. Cancelling ctx
// before the wipe aborts cleanly; once the wipe starts the import runs to
// completion or rollback regardless of ctx.
//
// Errors before the wipe are returned as-is (*MalformedDocumentError,
// *ValidationError, *IOError, ctx errors). Failures after it yield
// *ImportError when the rollback worked and *RollbackError when it did not.
func (m *Manager) Import(ctx context.Context, path string) error {
	if err := m.begin(Importing); err != nil {
		return err
	}
	defer m.end()

	data, err := m.fs.ReadFile(ctx, path)
	if err != nil {
		return &IOError{Op: "read", Path: path, Err: err}
	}
	return m.importData(ctx, data, path)
}

func (m *Manager) importData(ctx context.Context, data []byte, source string) error {
	m.setPhase(ctx, PhaseValidating)
	snap, err := Decode(data)
	if err != nil {
		return err
	}
	if err := m.validator().Validate(snap); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m.setPhase(ctx, PhaseBackingUp)
	safety, err := m.writeLocalSnapshot(ctx, m.cfg.SafetyBackupDir, safetyPrefix)
	if err != nil {
		return fmt.Errorf("failed to create safety backup: %w", err)
	}
	m.log.Info(ctx, "safety backup written", "path", safety)
	if err := ctx.Err(); err != nil {
		return err
	}

	// Past this point the store is modified; finish regardless of ctx.
	ctx = context.WithoutCancel(ctx)

	if err := m.replaceAll(ctx, snap, true); err != nil {
		m.setPhase(ctx, PhaseRollingBack)
		return m.rollback(ctx, safety, err)
	}

	m.log.Info(ctx, "import finished", "source", source, "cars", len(snap.Cars), "expenses", len(snap.Expenses))
	m.pruneSafetyBackups(ctx)
	return nil
}

func (m *Manager) rollback(ctx context.Context, safety string, cause error) error {
	m.log.Warn(ctx, "import failed, restoring safety backup", "error", cause, "safety_backup", safety)

	restore := func() error {
		data, err := m.fs.ReadFile(ctx, safety)
		if err != nil {
			return &IOError{Op: "read", Path: safety, Err: err}
		}
		snap, err := Decode(data)
		if err != nil {
			return err
		}
		return m.replaceAll(ctx, snap, false)
	}

	if err := restore(); err != nil {
		m.log.Error(ctx, "automatic restore failed, store state is undefined",
			"error", cause, "rollback_error", err, "safety_backup", safety)
		return &RollbackError{Cause: cause, RollbackCause: err, SafetyBackup: safety}
	}
	m.log.Info(ctx, "previous data restored", "safety_backup", safety)
	return &ImportError{Cause: cause, SafetyBackup: safety}
}

// replaceAll wipes the store and inserts snap. Stored ids are fresh; the
// ids embedded in snap are only used to rewire references. trackPhases is
// false while rolling back so the reported phase stays rolling-back.
func (m *Manager) replaceAll(ctx context.Context, snap *Snapshot, trackPhases bool) error {
	if trackPhases {
		m.setPhase(ctx, PhaseWiping)
	}
	if err := m.repos.Wiper.DeleteAllData(ctx); err != nil {
		return fmt.Errorf("failed to wipe store: %w", err)
	}
	if trackPhases {
		m.setPhase(ctx, PhaseRestoringNew)
	}

	carIDs := make(map[int64]int64, len(snap.Cars))
	for _, c := range snap.Cars {
		oldID := c.ID
		c.ID = nil
		newID, err := m.repos.Cars.Insert(ctx, c)
		if err != nil {
			return fmt.Errorf("failed to restore car %q: %w", c.Name, err)
		}
		if oldID != nil {
			carIDs[*oldID] = newID
		}
	}

	for _, e := range snap.Expenses {
		// The car binding is being rewritten, so the write-once guard does
		// not apply. An unknown car leaves the expense unbound.
		var carID *int64
		if old := e.CarID(); old != nil {
			if id, ok := carIDs[*old]; ok {
				carID = &id
			}
		}
		e = e.WithCarIDUnchecked(carID)
		e.ID = nil
		if _, err := m.repos.Expenses.Insert(ctx, e); err != nil {
			return fmt.Errorf("failed to restore expense: %w", err)
		}
	}

	maintenanceIDs := make(map[int64]int64, len(snap.Maintenance))
	for _, rec := range snap.Maintenance {
		carID, ok := carIDs[rec.CarID]
		if !ok {
			return &CorruptedDataError{Type: "plannedMaintenance", ID: rec.ID, CarID: rec.CarID}
		}
		oldID := rec.ID
		rec.ID = nil
		rec.CarID = carID
		newID, err := m.repos.Maintenance.Insert(ctx, rec)
		if err != nil {
			return fmt.Errorf("failed to restore planned maintenance %q: %w", rec.Name, err)
		}
		if oldID != nil {
			maintenanceIDs[*oldID] = newID
		}
	}

	for _, n := range snap.Notifications {
		carID, ok := carIDs[n.CarID]
		if !ok {
			return &CorruptedDataError{Type: "delayedNotification", ID: n.ID, CarID: n.CarID}
		}
		var recID *int64
		if n.MaintenanceRecord != nil {
			if id, ok := maintenanceIDs[*n.MaintenanceRecord]; ok {
				recID = &id
			}
		}
		n.ID = nil
		n.CarID = carID
		n.MaintenanceRecord = recID
		if _, err := m.repos.Notifications.Insert(ctx, n); err != nil {
			return fmt.Errorf("failed to restore delayed notification: %w", err)
		}
	}

	return m.applySettings(ctx, snap.Settings)
}

func (m *Manager) applySettings(ctx context.Context, s Settings) error {
	if s.Currency != nil {
		if _, err := m.repos.Settings.UpsertCurrency(ctx, *s.Currency); err != nil {
			return fmt.Errorf("failed to restore currency: %w", err)
		}
	}
	if s.Language != nil {
		if _, err := m.repos.Settings.UpsertLanguage(ctx, *s.Language); err != nil {
			return fmt.Errorf("failed to restore language: %w", err)
		}
	}
	return nil
}

// pruneSafetyBackups applies SafetyRetention. Failures are logged only;
// the import itself has already succeeded.
func (m *Manager) pruneSafetyBackups(ctx context.Context) {
	list, err := m.ListSafetyBackups(ctx)
	if err != nil {
		m.log.Warn(ctx, "failed to list safety backups", "error", err)
		return
	}
	var errs []error
	for _, d := range SafetyRetention.SelectForDeletion(list, m.now()) {
		if err := m.fs.Delete(ctx, d.Path); err != nil {
			errs = append(errs, err)
			continue
		}
		m.cache.forget("local", d.Path)
		m.log.Debug(ctx, "pruned safety backup", "path", d.Path)
	}
	if err := errors.Join(errs...); err != nil {
		m.log.Warn(ctx, "failed to prune safety backups", "error", err)
	}
}
