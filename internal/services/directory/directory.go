package directory

import (
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/mcoot/tallyledger/internal/model"
)

// Entry maps a host identity id to the person or device name it acts as
type Entry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Directory resolves host identity ids to display names
type Directory struct {
	logger *slog.Logger

	mu    sync.RWMutex
	names map[string]string
}

// New creates a directory seeded with entries. Entries with an empty id
// or name are skipped; a later entry for the same id wins.
func New(entries []Entry, logger *slog.Logger) *Directory {
	d := &Directory{
		logger: logger.With(slog.String("component", "directory")),
		names:  make(map[string]string, len(entries)),
	}
	for _, e := range entries {
		if err := d.Register(e.ID, e.Name); err != nil {
			d.logger.Warn("skipping directory entry", slog.String("id", e.ID), slog.String("name", e.Name))
		}
	}
	return d
}

// Resolve returns the identity for id
func (d *Directory) Resolve(id string) (model.Identity, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	name, ok := d.names[strings.TrimSpace(id)]
	if !ok {
		return model.Identity{}, model.ErrIdentityUnknown
	}
	return model.Identity{ID: id, Name: name}, nil
}

// Register adds or renames an identity
func (d *Directory) Register(id, name string) error {
	id, name = strings.TrimSpace(id), strings.TrimSpace(name)
	if id == "" || name == "" {
		return model.ErrIdentityUnknown
	}
	d.mu.Lock()
	d.names[id] = name
	d.mu.Unlock()
	return nil
}

// Remove forgets an identity
func (d *Directory) Remove(id string) {
	d.mu.Lock()
	delete(d.names, strings.TrimSpace(id))
	d.mu.Unlock()
}

// Entries returns all identities sorted by id
func (d *Directory) Entries() []Entry {
	d.mu.RLock()
	defer d.mu.RUnlock()

	entries := make([]Entry, 0, len(d.names))
	for id, name := range d.names {
		entries = append(entries, Entry{ID: id, Name: name})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
	return entries
}
