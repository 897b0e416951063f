package remote

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/evtracker/internal/filex"
	"github.com/dmitrijs2005/evtracker/internal/netx"
	"golang.org/x/crypto/blake2b"
)

var (
	// ErrRemoteUnavailable means the remote location is reachable in
	// principle but cannot be used: not configured, missing, or access denied.
	ErrRemoteUnavailable = errors.New("remote storage unavailable")
	// ErrNetworkUnavailable means the remote could not be reached at all.
	ErrNetworkUnavailable = errors.New("network unavailable")
	// ErrChecksumMismatch is returned when a downloaded object does not match
	// the checksum recorded at upload time.
	ErrChecksumMismatch = errors.New("remote object checksum mismatch")
)

// Store is a remote backup location.
type Store interface {
	filex.FileSystem
	// CheckAvailability returns nil when the store can be used right now.
	CheckAvailability(ctx context.Context) error
}

// Checksum returns the hex BLAKE2b-256 digest of data.
func Checksum(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// classify wraps err with ErrNetworkUnavailable when it is a connectivity
// failure and leaves it unchanged otherwise.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if netx.IsNetworkError(err) {
		return fmt.Errorf("%s: %w: %w", op, ErrNetworkUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
