package backup

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/evtracker/internal/remote"
)

var (
	ErrMalformedDocument = errors.New("malformed backup document")
	ErrValidation        = errors.New("backup validation failed")
	ErrCorruptedData     = errors.New("corrupted backup data")
	ErrIO                = errors.New("backup i/o failed")
	// ErrBusy is returned when an export or import is already running.
	ErrBusy = errors.New("another backup operation is in progress")

	ErrRemoteUnavailable  = remote.ErrRemoteUnavailable
	ErrNetworkUnavailable = remote.ErrNetworkUnavailable
	ErrChecksumMismatch   = remote.ErrChecksumMismatch
)

// MalformedDocumentError is returned when a document cannot be decoded as a
// snapshot.
type MalformedDocumentError struct {
	// Field is the dotted path of the offending key, when known.
	Field string
	Err   error
}

func (e *MalformedDocumentError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%v: %v", ErrMalformedDocument, e.Err)
	}
	return fmt.Sprintf("%v: %s: %v", ErrMalformedDocument, e.Field, e.Err)
}

func (e *MalformedDocumentError) Unwrap() []error {
	return []error{ErrMalformedDocument, e.Err}
}

// ValidationKind names the check that rejected a snapshot.
type ValidationKind string

const (
	NewerSchemaVersion  ValidationKind = "newer_schema_version"
	InvalidDate         ValidationKind = "invalid_date"
	InvalidNumericValue ValidationKind = "invalid_numeric_value"
	InvalidCurrency     ValidationKind = "invalid_currency"
	InvalidEnumValue    ValidationKind = "invalid_enum_value"
	InvalidReference    ValidationKind = "invalid_reference"
)

// ValidationError describes the first problem found in a snapshot. Which
// fields are set depends on Kind.
type ValidationError struct {
	Kind ValidationKind
	// Type is the record kind ("car", "expense", ...) or, for
	// InvalidEnumValue, the enum name.
	Type  string
	Field string
	Value string
	// ID is the record id, or the dangling id for InvalidReference.
	ID *int64

	// Current and File are the schema versions for NewerSchemaVersion.
	Current int
	File    int
}

func (e *ValidationError) Error() string {
	switch e.Kind {
	case NewerSchemaVersion:
		return fmt.Sprintf("backup was made with a newer schema version (%d, this build supports %d)", e.File, e.Current)
	case InvalidDate:
		return fmt.Sprintf("%s%s has %s %s in the future", e.Type, idSuffix(e.ID), e.Field, e.Value)
	case InvalidNumericValue:
		return fmt.Sprintf("%s%s has invalid %s %q", e.Type, idSuffix(e.ID), e.Field, e.Value)
	case InvalidCurrency:
		return fmt.Sprintf("%s%s has unknown currency %q", e.Type, idSuffix(e.ID), e.Value)
	case InvalidEnumValue:
		return fmt.Sprintf("unknown %s value %q", e.Type, e.Value)
	case InvalidReference:
		return fmt.Sprintf("%s refers to car%s which is not in the backup", e.Type, idSuffix(e.ID))
	default:
		return fmt.Sprintf("%v: %s", ErrValidation, e.Kind)
	}
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func idSuffix(id *int64) string {
	if id == nil {
		return ""
	}
	return fmt.Sprintf(" %d", *id)
}

// CorruptedDataError is raised mid-restore when a required car reference
// has no remapped id.
type CorruptedDataError struct {
	Type  string
	ID    *int64
	CarID int64
}

func (e *CorruptedDataError) Error() string {
	return fmt.Sprintf("%v: %s%s refers to unknown car %d", ErrCorruptedData, e.Type, idSuffix(e.ID), e.CarID)
}

func (e *CorruptedDataError) Unwrap() error { return ErrCorruptedData }

// IOError wraps a file read, write, list or delete failure.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() []error { return []error{ErrIO, e.Err} }

// ImportError reports an import that failed after the store was wiped and
// was then rolled back. The store holds its pre-import data.
type ImportError struct {
	Cause        error
	SafetyBackup string
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("import failed, your data was restored: %v", e.Cause)
}

func (e *ImportError) Unwrap() error { return e.Cause }

// RollbackError reports an import whose rollback failed as well. The store
// may be empty or partially filled; SafetyBackup holds the previous data.
type RollbackError struct {
	Cause         error
	RollbackCause error
	SafetyBackup  string
}

func (e *RollbackError) Error() string {
	return fmt.Sprintf("import failed and automatic restore failed; your previous data is saved in %s: %v; restore: %v",
		e.SafetyBackup, e.Cause, e.RollbackCause)
}

func (e *RollbackError) Unwrap() []error { return []error{e.Cause, e.RollbackCause} }
