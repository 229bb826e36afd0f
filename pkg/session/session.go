// Package session holds the editor's client-side state: the last fetched
// tree, the selection, the open edit and the dirty and saving flags. All
// dataset access goes through a command.Client.
package session

import (
	"context"
	"io"
	"log"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"

	"github.com/marjoballabani/lazya2l/pkg/calib"
	"github.com/marjoballabani/lazya2l/pkg/command"
	"github.com/marjoballabani/lazya2l/pkg/recent"
	"github.com/marjoballabani/lazya2l/pkg/search"
)

// DefaultPageSize is the number of items per section materialized by a
// refresh and added by each ShowMore.
const DefaultPageSize = 200

var (
	// ErrBusy rejects a BeginEdit while an edit is open or being fetched,
	// and a selection change while editing.
	ErrBusy = errors.New("an edit is already open")
	// ErrNotEditing rejects CommitEdit without an open edit.
	ErrNotEditing = errors.New("no edit in progress")
	// ErrStale reports a response that arrived after the state it was
	// requested for was replaced. It was discarded.
	ErrStale = errors.New("stale response discarded")
)

// State is the edit state of a session.
type State int

const (
	Viewing State = iota
	Editing
)

func (s State) String() string {
	if s == Editing {
		return "editing"
	}
	return "viewing"
}

// Edit is an open edit buffer.
type Edit struct {
	ID         calib.ItemID
	Buffer     calib.Entity
	Err        error
	Committing bool
}

// Options configures a session.
type Options struct {
	PageSize int
	Recents  *recent.Registry
	Logger   *log.Logger
}

// Session is safe for concurrent use. Methods that talk to the store block
// until the reply arrives; none of them holds the lock while waiting.
type Session struct {
	client   *command.Client
	recents  *recent.Registry
	logger   *log.Logger
	pageSize int

	mu         sync.Mutex
	meta       *calib.Metadata
	path       string
	tree       []calib.Container
	generation uint64
	selected   calib.ItemID
	query      string
	edit       *Edit
	editToken  uint64
	fetching   bool
	fetchID    calib.ItemID
	dirty      bool
	saving     bool
	symbols    []calib.ImportSymbol
}

// New creates a session over client.
func New(client *command.Client, opts Options) *Session {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard, "", 0)
	}
	return &Session{
		client:   client,
		recents:  opts.Recents,
		logger:   opts.Logger,
		pageSize: opts.PageSize,
	}
}

// Open loads the A2L file at path and fetches its tree.
func (s *Session) Open(ctx context.Context, path string) error {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	md, err := s.client.OpenFile(ctx, path)
	if err != nil {
		return err
	}
	s.replaced(md, path)
	s.record(recent.KindA2L, path)
	s.logger.Printf("session: opened %s", path)
	return s.Refresh(ctx)
}

// OpenContent loads A2L text that has no file location.
func (s *Session) OpenContent(ctx context.Context, name, content string) error {
	md, err := s.client.OpenContent(ctx, name, content)
	if err != nil {
		return err
	}
	s.replaced(md, "")
	s.logger.Printf("session: opened %s from content", name)
	return s.Refresh(ctx)
}

// CreateEmpty starts a new dataset.
func (s *Session) CreateEmpty(ctx context.Context) error {
	md, err := s.client.CreateEmpty(ctx)
	if err != nil {
		return err
	}
	s.replaced(md, "")
	s.logger.Printf("session: created empty dataset")
	return s.Refresh(ctx)
}

// replaced resets state tied to the previous dataset. The selection is
// kept and reconciled by the next refresh.
func (s *Session) replaced(md calib.Metadata, path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.meta = &md
	s.path = path
	s.dirty = false
	s.edit = nil
	s.fetching = false
	s.editToken++
}

func (s *Session) record(kind recent.Kind, path string) {
	if s.recents == nil || path == "" {
		return
	}
	if _, err := s.recents.Record(kind, recent.Entry{Name: filepath.Base(path), Location: path}); err != nil {
		s.logger.Printf("session: recording recent %s: %v", kind, err)
	}
}

// Recents lists recently used locations of kind.
func (s *Session) Recents(kind recent.Kind) []recent.Entry {
	if s.recents == nil {
		return nil
	}
	return s.recents.List(kind)
}

// Refresh fetches a new projection and replaces the tree wholesale. Section
// windows reset to one page. If another refresh starts before this one
// returns, this one's result is dropped with ErrStale.
func (s *Session) Refresh(ctx context.Context) error {
	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.mu.Unlock()

	tree, err := s.client.Projection(ctx, s.pageSize)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return ErrStale
	}
	if err != nil {
		if calib.CodeOf(err) == calib.CodeNoDatasetLoaded {
			s.tree = nil
			s.selected = calib.ItemID{}
		}
		return err
	}
	s.tree = tree
	s.reconcileLocked()
	return nil
}

// reconcileLocked keeps the selection if it still exists, otherwise falls
// back to the first item, or to nothing.
func (s *Session) reconcileLocked() {
	if !s.selected.IsZero() {
		if _, ok := calib.Find(s.tree, s.selected); ok {
			return
		}
	}
	if first, ok := calib.First(s.tree); ok {
		s.selected = first.ID
		return
	}
	s.selected = calib.ItemID{}
}

// ShowMore materializes the next page of a section. Windows only grow; a
// page that no longer lines up with the section is dropped with ErrStale.
func (s *Session) ShowMore(ctx context.Context, id calib.SectionID) error {
	s.mu.Lock()
	sec, ok := s.sectionLocked(id)
	if !ok {
		s.mu.Unlock()
		return calib.Errorf(calib.CodeEntityNotFound, "section %s not in view", id)
	}
	if sec.Remaining() == 0 {
		s.mu.Unlock()
		return nil
	}
	gen := s.generation
	offset := len(sec.Items)
	s.mu.Unlock()

	page, err := s.client.SectionItems(ctx, id, offset, s.pageSize)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		return err
	}
	cur, ok := s.sectionLocked(id)
	if gen != s.generation || !ok || len(cur.Items) != offset {
		return ErrStale
	}
	items := make([]calib.Item, 0, offset+len(page.Items))
	items = append(items, cur.Items...)
	items = append(items, page.Items...)
	cur.Items = items
	cur.Total = page.Total
	s.tree = withSection(s.tree, cur)
	return nil
}

func (s *Session) sectionLocked(id calib.SectionID) (calib.Section, bool) {
	for _, c := range s.tree {
		if c.ID != id.Container {
			continue
		}
		for _, sec := range c.Sections {
			if sec.ID == id {
				return sec, true
			}
		}
	}
	return calib.Section{}, false
}

// withSection returns a copy of tree with sec replaced. Slices handed out by
// earlier snapshots are never written.
func withSection(tree []calib.Container, sec calib.Section) []calib.Container {
	out := make([]calib.Container, len(tree))
	copy(out, tree)
	for i, c := range out {
		if c.ID != sec.ID.Container {
			continue
		}
		sections := make([]calib.Section, len(c.Sections))
		copy(sections, c.Sections)
		for j := range sections {
			if sections[j].ID == sec.ID {
				sections[j] = sec
			}
		}
		out[i].Sections = sections
	}
	return out
}

// Select makes id the current item. An id missing from the projection
// selects the first item instead, or nothing when there are no items. Any
// entity fetch still in flight for another item is abandoned. Selection
// cannot change while an edit is open.
func (s *Session) Select(id calib.ItemID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.edit != nil && s.edit.ID != id {
		return ErrBusy
	}
	s.selected = id
	if _, ok := calib.Find(s.tree, id); !ok {
		s.selected = calib.ItemID{}
		s.reconcileLocked()
	}
	if s.fetching && s.fetchID != s.selected {
		s.editToken++
		s.fetching = false
	}
	return nil
}

// BeginEdit fetches the record of id into a new edit buffer and selects it. It is
// rejected with ErrBusy while another edit is open or being fetched. A fetch
// overtaken by Select, CancelEdit or a dataset change returns ErrStale and
// leaves the session untouched.
func (s *Session) BeginEdit(ctx context.Context, id calib.ItemID) error {
	s.mu.Lock()
	if s.edit != nil || s.fetching {
		s.mu.Unlock()
		return ErrBusy
	}
	if !id.Kind.Editable() {
		s.mu.Unlock()
		return calib.Errorf(calib.CodeValidation, "%s items are read-only", id.Kind)
	}
	s.editToken++
	token := s.editToken
	s.fetching = true
	s.fetchID = id
	s.mu.Unlock()

	e, err := s.client.Entity(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	if token != s.editToken {
		return ErrStale
	}
	s.fetching = false
	if err != nil {
		s.logger.Printf("session: fetching %s: %v", id, err)
		return err
	}
	s.edit = &Edit{ID: id, Buffer: e}
	s.selected = id
	return nil
}

// CommitEdit submits e as the new value of the entity being edited. On
// success the edit closes, the tree is refreshed and the selection follows
// a rename. On failure the session stays in Editing with e kept as the
// buffer and the error attached.
func (s *Session) CommitEdit(ctx context.Context, e calib.Entity) error {
	if e == nil {
		return calib.Errorf(calib.CodeValidation, "no entity given")
	}
	s.mu.Lock()
	if s.edit == nil {
		s.mu.Unlock()
		return ErrNotEditing
	}
	if s.edit.Committing {
		s.mu.Unlock()
		return ErrBusy
	}
	if e.Kind() != s.edit.ID.Kind {
		err := calib.Errorf(calib.CodeValidation, "%s cannot be replaced by a %s", s.edit.ID, e.Kind())
		s.edit.Err = err
		s.mu.Unlock()
		return err
	}
	s.edit.Buffer = e.Clone()
	s.edit.Committing = true
	s.edit.Err = nil
	id := s.edit.ID
	token := s.editToken
	s.mu.Unlock()

	err := s.client.UpdateEntity(ctx, id, e)

	s.mu.Lock()
	if token != s.editToken {
		if err == nil {
			s.dirty = true
		}
		s.mu.Unlock()
		return ErrStale
	}
	s.edit.Committing = false
	if err != nil {
		s.edit.Err = err
		s.mu.Unlock()
		s.logger.Printf("session: updating %s: %v", id, err)
		return err
	}
	s.edit = nil
	s.editToken++
	s.dirty = true
	s.selected = calib.ItemID{Container: id.Container, Kind: e.Kind(), Name: e.Base().Name}
	s.mu.Unlock()

	s.logger.Printf("session: updated %s", id)
	if err := s.Refresh(ctx); err != nil && !errors.Is(err, ErrStale) {
		return err
	}
	return nil
}

// CancelEdit discards the edit buffer and abandons any pending fetch.
func (s *Session) CancelEdit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.edit = nil
	s.fetching = false
	s.editToken++
}

// Save writes the dataset to path, or to the location it was opened from
// when path is empty.
func (s *Session) Save(ctx context.Context, path string) error {
	s.mu.Lock()
	if path == "" {
		path = s.path
	}
	if path == "" {
		s.mu.Unlock()
		return calib.Errorf(calib.CodeValidation, "no save location")
	}
	if s.saving {
		s.mu.Unlock()
		return ErrBusy
	}
	s.saving = true
	s.mu.Unlock()

	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	err := s.client.Save(ctx, path)

	s.mu.Lock()
	s.saving = false
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.dirty = false
	s.path = path
	s.mu.Unlock()

	s.record(recent.KindA2L, path)
	s.logger.Printf("session: saved %s", path)
	return nil
}

// LoadSymbols reads the symbols of an ELF file and keeps them for import.
func (s *Session) LoadSymbols(ctx context.Context, path string) ([]calib.ImportSymbol, error) {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	symbols, err := s.client.LoadSymbols(ctx, path)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.symbols = symbols
	s.mu.Unlock()
	s.record(recent.KindELF, path)
	s.logger.Printf("session: loaded %d symbols from %s", len(symbols), path)
	return symbols, nil
}

// ImportSymbols merges symbols into container and refreshes the tree. It
// returns the number of measurements created.
func (s *Session) ImportSymbols(ctx context.Context, container string, symbols []calib.ImportSymbol) (int, error) {
	res, err := s.client.MergeSymbols(ctx, container, symbols)
	if err != nil {
		return 0, err
	}
	s.mu.Lock()
	md := res.Metadata
	s.meta = &md
	if res.Created > 0 {
		s.dirty = true
	}
	s.mu.Unlock()

	s.logger.Printf("session: imported %d of %d symbols", res.Created, len(symbols))
	if err := s.Refresh(ctx); err != nil && !errors.Is(err, ErrStale) {
		return res.Created, err
	}
	return res.Created, nil
}

// UpdateProject changes the project metadata.
func (s *Session) UpdateProject(ctx context.Context, name, longIdentifier string, headerComment *string) error {
	md, err := s.client.UpdateProject(ctx, name, longIdentifier, headerComment)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.meta = &md
	s.dirty = true
	s.mu.Unlock()
	return nil
}

// UpdateModule renames module name to newName and sets its long identifier.
// The selection moves along with a renamed module. It is rejected with
// ErrBusy while an edit is open or being fetched.
func (s *Session) UpdateModule(ctx context.Context, name, newName, longIdentifier string) error {
	s.mu.Lock()
	busy := s.edit != nil || s.fetching
	s.mu.Unlock()
	if busy {
		return ErrBusy
	}

	md, err := s.client.UpdateModule(ctx, name, newName, longIdentifier)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.meta = &md
	s.dirty = true
	if s.selected.Container == name {
		s.selected.Container = newName
	}
	s.mu.Unlock()

	s.logger.Printf("session: updated module %s", newName)
	if err := s.Refresh(ctx); err != nil && !errors.Is(err, ErrStale) {
		return err
	}
	return nil
}

// Export renders the current dataset as A2L text.
func (s *Session) Export(ctx context.Context) (string, error) {
	return s.client.Export(ctx)
}

// SetQuery sets the filter applied by View.
func (s *Session) SetQuery(q string) {
	s.mu.Lock()
	s.query = q
	s.mu.Unlock()
}

// View returns the tree filtered by the current query.
func (s *Session) View() []calib.Container {
	s.mu.Lock()
	tree, q := s.tree, s.query
	s.mu.Unlock()
	return search.Filter(tree, q)
}

// Snapshot is a consistent copy of the session state for rendering.
type Snapshot struct {
	Metadata *calib.Metadata
	Path     string
	Tree     []calib.Container
	View     []calib.Container
	Query    string
	Selected calib.ItemID
	Item     *calib.Item
	State    State
	Fetching bool
	Edit     *Edit
	Dirty    bool
	Saving   bool
	Symbols  []calib.ImportSymbol
}

// Snapshot returns the current state. Tree data is shared and must not be
// modified.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		Path:     s.path,
		Tree:     s.tree,
		Query:    s.query,
		Selected: s.selected,
		Fetching: s.fetching,
		Dirty:    s.dirty,
		Saving:   s.saving,
		Symbols:  s.symbols,
	}
	if s.meta != nil {
		md := *s.meta
		snap.Metadata = &md
	}
	if it, ok := calib.Find(s.tree, s.selected); ok {
		snap.Item = &it
	}
	if s.edit != nil {
		ed := *s.edit
		ed.Buffer = s.edit.Buffer.Clone()
		snap.Edit = &ed
		snap.State = Editing
	}
	snap.View = search.Filter(s.tree, s.query)
	return snap
}
