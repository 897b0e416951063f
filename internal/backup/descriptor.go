package backup

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/evtracker/internal/filex"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

const (
	exportPrefix = "evtracker-backup-"
	safetyPrefix = "evtracker-safety-"
	fileExt      = ".json"

	nameTimeLayout = "20060102T150405Z"
)

// backupFileName returns a unique name such as
// evtracker-backup-20250102T150405Z-1f0c2a9e.json.
func backupFileName(prefix string, t time.Time) string {
	return prefix + t.UTC().Format(nameTimeLayout) + "-" + uuid.NewString()[:8] + fileExt
}

func isBackupName(prefix, name string) bool {
	return strings.HasPrefix(name, prefix) && strings.HasSuffix(name, fileExt)
}

// Descriptor summarises a stored snapshot without holding its records.
type Descriptor struct {
	Name string
	// Path locates the file within its store: a local path, or a key
	// relative to the remote root.
	Path      string
	Size      int64
	CreatedAt time.Time

	AppVersion    string
	DeviceName    string
	SchemaVersion int

	Cars          int
	Expenses      int
	Maintenance   int
	Notifications int
}

// peekDocument decodes metadata and counts records without materialising
// them.
type peekDocument struct {
	Cars                 []json.RawMessage `json:"cars"`
	DelayedNotifications []json.RawMessage `json:"delayedNotifications"`
	Expenses             []json.RawMessage `json:"expenses"`
	Metadata             *wireMetadata     `json:"metadata"`
	PlannedMaintenance   []json.RawMessage `json:"plannedMaintenance"`
}

func describe(info filex.FileInfo, data []byte) (Descriptor, error) {
	var doc peekDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return Descriptor{}, malformed(err)
	}
	if doc.Metadata == nil {
		return Descriptor{}, &MalformedDocumentError{Field: "metadata", Err: errMissing}
	}

	d := &decoder{}
	desc := Descriptor{
		Name:          info.Name,
		Path:          info.Path,
		Size:          info.Size,
		CreatedAt:     d.time("metadata.createdAt", doc.Metadata.CreatedAt),
		AppVersion:    need(d, "metadata.appVersion", doc.Metadata.AppVersion),
		DeviceName:    need(d, "metadata.deviceName", doc.Metadata.DeviceName),
		SchemaVersion: need(d, "metadata.schemaVersion", doc.Metadata.SchemaVersion),
		Cars:          len(doc.Cars),
		Expenses:      len(doc.Expenses),
		Maintenance:   len(doc.PlannedMaintenance),
		Notifications: len(doc.DelayedNotifications),
	}
	if d.err != nil {
		return Descriptor{}, d.err
	}
	return desc, nil
}

type cacheKey struct {
	scope   string
	path    string
	size    int64
	modTime int64
}

// descriptorCache remembers descriptors per file version so listing does
// not re-read unchanged files.
type descriptorCache struct {
	mu      sync.Mutex
	entries map[cacheKey]Descriptor
}

func newDescriptorCache() *descriptorCache {
	return &descriptorCache{entries: make(map[cacheKey]Descriptor)}
}

func (c *descriptorCache) key(scope string, info filex.FileInfo) cacheKey {
	return cacheKey{scope: scope, path: info.Path, size: info.Size, modTime: info.ModTime.UnixNano()}
}

func (c *descriptorCache) get(k cacheKey) (Descriptor, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.entries[k]
	return d, ok
}

func (c *descriptorCache) put(k cacheKey, d Descriptor) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[k] = d
}

// forget drops every entry for path, whatever its version.
func (c *descriptorCache) forget(scope, path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if k.scope == scope && k.path == path {
			delete(c.entries, k)
		}
	}
}

// listDescriptors describes every backup file in dir whose name has prefix,
// newest first. Files that cannot be read or parsed are skipped and
// logged.
func (m *Manager) listDescriptors(ctx context.Context, scope string, fs filex.FileSystem, dir, prefix string) ([]Descriptor, error) {
	files, err := fs.ListDirectory(ctx, dir)
	if err != nil {
		return nil, &IOError{Op: "list", Path: dir, Err: err}
	}

	var result []Descriptor
	for _, f := range files {
		if !isBackupName(prefix, f.Name) {
			continue
		}
		k := m.cache.key(scope, f)
		if d, ok := m.cache.get(k); ok {
			result = append(result, d)
			continue
		}

		data, err := fs.ReadFile(ctx, f.Path)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			m.log.Warn(ctx, "skipping unreadable backup", "path", f.Path, "error", err)
			continue
		}
		d, err := describe(f, data)
		if err != nil {
			m.log.Warn(ctx, "skipping invalid backup", "path", f.Path, "error", err)
			continue
		}
		m.cache.put(k, d)
		result = append(result, d)
	}

	sortNewestFirst(result)
	return result, nil
}

func (d Descriptor) String() string {
	return fmt.Sprintf("%s (%s, schema %d, %d cars, %d expenses)",
		d.Name, d.CreatedAt.Format(time.RFC3339), d.SchemaVersion, d.Cars, d.Expenses)
}
