// Package recent persists the lists of recently opened A2L and ELF files.
package recent

import (
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/peterbourgon/diskv/v3"
	"github.com/pkg/errors"
)

// Kind scopes a recent list.
type Kind string

const (
	KindA2L Kind = "a2l"
	KindELF Kind = "elf"
)

// MaxEntries is the length a list is truncated to.
const MaxEntries = 8

// Entry is one previously opened location.
type Entry struct {
	Name     string    `json:"name"`
	Location string    `json:"location"`
	OpenedAt time.Time `json:"opened_at"`
}

// ParseKind accepts "a2l" or "elf" in any case.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindA2L, KindELF:
		return k, nil
	}
	return "", errors.Errorf("unknown recent kind %q", s)
}

// Registry keeps one list per kind in a diskv store.
type Registry struct {
	mu  sync.Mutex
	d   *diskv.Diskv
	now func() time.Time
}

// Open creates a registry rooted at dir.
func Open(dir string) *Registry {
	return &Registry{
		d: diskv.New(diskv.Options{
			BasePath:     dir,
			CacheSizeMax: 64 * 1024,
		}),
		now: time.Now,
	}
}

func key(kind Kind) string {
	return "recent-" + string(kind)
}

// List returns the entries of kind, most recent first. Absent or malformed
// data reads as an empty list.
func (r *Registry) List(kind Kind) []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.read(kind)
}

func (r *Registry) read(kind Kind) []Entry {
	data, err := r.d.Read(key(kind))
	if err != nil {
		return []Entry{}
	}
	var list []Entry
	if err := json.Unmarshal(data, &list); err != nil {
		return []Entry{}
	}
	out := list[:0]
	for _, e := range list {
		if strings.TrimSpace(e.Location) != "" {
			out = append(out, e)
		}
	}
	if out == nil {
		return []Entry{}
	}
	return out
}

// Record moves e to the front of the kind's list, dropping any entry with
// the same name and location, and truncates the list to MaxEntries. Entries
// without a location are ignored.
func (r *Registry) Record(kind Kind, e Entry) ([]Entry, error) {
	if _, err := ParseKind(string(kind)); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.read(kind)
	if strings.TrimSpace(e.Location) == "" {
		return list, nil
	}
	if e.OpenedAt.IsZero() {
		e.OpenedAt = r.now().UTC()
	}

	next := make([]Entry, 0, len(list)+1)
	next = append(next, e)
	for _, old := range list {
		if old.Name == e.Name && old.Location == e.Location {
			continue
		}
		next = append(next, old)
	}
	if len(next) > MaxEntries {
		next = next[:MaxEntries]
	}

	data, err := json.Marshal(next)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode recent list")
	}
	if err := r.d.Write(key(kind), data); err != nil {
		return nil, errors.Wrapf(err, "failed to store recent %s list", kind)
	}
	return next, nil
}
