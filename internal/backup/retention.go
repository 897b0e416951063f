package backup

import (
	"sort"
	"time"
)

// RetentionPolicy bounds how many stored snapshots are kept. A zero field
// disables that limit.
type RetentionPolicy struct {
	MaxCount int
	MaxAge   time.Duration
}

var (
	// SafetyRetention applies to local safety snapshots, which only need to
	// outlive the import that created them.
	SafetyRetention = RetentionPolicy{MaxCount: 3}
	// RemoteRetention applies to remote backups.
	RemoteRetention = RetentionPolicy{MaxCount: 5, MaxAge: 30 * 24 * time.Hour}
)

// SelectForDeletion returns the descriptors that violate p: everything
// older than MaxAge plus everything beyond the MaxCount newest. A
// descriptor violating both limits appears once. The result is ordered
// newest first.
func (p RetentionPolicy) SelectForDeletion(backups []Descriptor, now time.Time) []Descriptor {
	sorted := make([]Descriptor, len(backups))
	copy(sorted, backups)
	sortNewestFirst(sorted)

	deleteSet := make(map[string]bool)

	if p.MaxAge > 0 {
		cutoff := now.Add(-p.MaxAge)
		for _, b := range sorted {
			if b.CreatedAt.Before(cutoff) {
				deleteSet[b.Path] = true
			}
		}
	}
	if p.MaxCount > 0 {
		for i := p.MaxCount; i < len(sorted); i++ {
			deleteSet[sorted[i].Path] = true
		}
	}

	var result []Descriptor
	for _, b := range sorted {
		if deleteSet[b.Path] {
			result = append(result, b)
			delete(deleteSet, b.Path)
		}
	}
	return result
}

func sortNewestFirst(backups []Descriptor) {
	sort.SliceStable(backups, func(i, j int) bool {
		if !backups[i].CreatedAt.Equal(backups[j].CreatedAt) {
			return backups[i].CreatedAt.After(backups[j].CreatedAt)
		}
		return backups[i].Name > backups[j].Name
	})
}
