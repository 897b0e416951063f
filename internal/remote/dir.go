package remote

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/evtracker/internal/filex"
)

// DirStore keeps remote backups in a directory that some other tool
// (Syncthing, a cloud drive client, a network mount) replicates.
type DirStore struct {
	root string
	fs   *filex.LocalFS
}

var _ Store = (*DirStore)(nil)

func NewDirStore(root string) *DirStore {
	return &DirStore{root: root, fs: filex.NewLocalFS(false)}
}

func (d *DirStore) resolve(p string) (string, error) {
	if p == "" {
		return d.root, nil
	}
	if !filepath.IsLocal(p) {
		return "", fmt.Errorf("path %q escapes remote directory", p)
	}
	return filepath.Join(d.root, p), nil
}

// CheckAvailability requires the root to exist and be a directory; it is
// not created on demand because a missing mount must not be mistaken for an
// empty one.
func (d *DirStore) CheckAvailability(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	fi, err := os.Stat(d.root)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRemoteUnavailable, err)
	}
	if !fi.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrRemoteUnavailable, d.root)
	}
	return nil
}

func (d *DirStore) ReadFile(ctx context.Context, p string) ([]byte, error) {
	full, err := d.resolve(p)
	if err != nil {
		return nil, err
	}
	return d.fs.ReadFile(ctx, full)
}

func (d *DirStore) WriteFile(ctx context.Context, p string, data []byte) error {
	full, err := d.resolve(p)
	if err != nil {
		return err
	}
	return d.fs.WriteFile(ctx, full, data)
}

// ListDirectory returns entries with paths relative to the store root.
func (d *DirStore) ListDirectory(ctx context.Context, dir string) ([]filex.FileInfo, error) {
	full, err := d.resolve(dir)
	if err != nil {
		return nil, err
	}
	list, err := d.fs.ListDirectory(ctx, full)
	if err != nil {
		return nil, err
	}
	for i := range list {
		list[i].Path = filepath.Join(dir, list[i].Name)
	}
	return list, nil
}

func (d *DirStore) Delete(ctx context.Context, p string) error {
	full, err := d.resolve(p)
	if err != nil {
		return err
	}
	return d.fs.Delete(ctx, full)
}
