package catalog

import (
	"context"
	"strings"
	"sync"

	"github.com/goliatone/go-lfg-client/pkg/domain"
	"github.com/goliatone/go-lfg-client/pkg/interfaces/logger"
)

// Dungeon is one entry of the static dungeon dataset. Names are keyed by
// locale code.
type Dungeon struct {
	ID    domain.ID         `json:"id"`
	Names map[string]string `json:"name"`
}

// Loader fetches the dungeon dataset, typically from a static asset.
type Loader interface {
	LoadDungeons(ctx context.Context) ([]Dungeon, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context) ([]Dungeon, error)

func (f LoaderFunc) LoadDungeons(ctx context.Context) ([]Dungeon, error) {
	if f == nil {
		return nil, nil
	}
	return f(ctx)
}

// Directory maps dungeon identifiers to localized display names. A failed
// load leaves the table empty; name resolution then falls back to whatever
// the event payload carried.
type Directory struct {
	mu     sync.RWMutex
	byID   map[string]Dungeon
	logger logger.Logger
}

// NewDirectory constructs an empty directory.
func NewDirectory(l logger.Logger) *Directory {
	if l == nil {
		l = &logger.Nop{}
	}
	return &Directory{byID: make(map[string]Dungeon), logger: l}
}

// Load populates the table from the loader. Errors are tolerated: the table
// stays empty and the failure is logged.
func (d *Directory) Load(ctx context.Context, loader Loader) {
	if loader == nil {
		return
	}
	entries, err := loader.LoadDungeons(ctx)
	if err != nil {
		d.logger.Warn("dungeon dataset load failed, names degrade to payload values",
			logger.Field{Key: "error", Value: err})
		return
	}
	table := make(map[string]Dungeon, len(entries))
	for _, entry := range entries {
		if id := entry.ID.String(); id != "" {
			table[id] = entry
		}
	}
	d.mu.Lock()
	d.byID = table
	d.mu.Unlock()
	d.logger.Debug("dungeon dataset loaded", logger.Field{Key: "entries", Value: len(table)})
}

// Len returns the number of loaded entries.
func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.byID)
}

// Resolve returns the display name for a dungeon id in the requested locale,
// falling back through es, en, then any available name.
func (d *Directory) Resolve(id, locale string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return ""
	}
	d.mu.RLock()
	entry, ok := d.byID[id]
	d.mu.RUnlock()
	if !ok {
		return ""
	}
	return pickName(entry.Names, locale)
}

// DisplayName resolves the dungeon referenced by a notification payload:
// the id lookup wins, the payload's own name field is the fallback.
func (d *Directory) DisplayName(p domain.Payload, locale string) string {
	if name := d.Resolve(p.DungeonID, locale); name != "" {
		return name
	}
	return p.DungeonName
}

func pickName(names map[string]string, locale string) string {
	if len(names) == 0 {
		return ""
	}
	for _, candidate := range []string{locale, "es", "en"} {
		if candidate == "" {
			continue
		}
		if name := names[candidate]; name != "" {
			return name
		}
	}
	for _, name := range names {
		if name != "" {
			return name
		}
	}
	return ""
}
