// Package store owns the canonical in-memory A2L dataset and answers every
// command the editor issues against it.
package store

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/marjoballabani/lazya2l/pkg/a2l"
	"github.com/marjoballabani/lazya2l/pkg/calib"
)

// Store is the single writer of dataset state. All methods are safe for
// concurrent use; each runs under one lock so callers observe a serially
// consistent store.
type Store struct {
	mu       sync.Mutex
	file     *a2l.File
	warnings int
	logger   *log.Logger
}

// New creates an empty store. A nil logger discards output.
func New(logger *log.Logger) *Store {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Store{logger: logger}
}

// OpenContent parses content and makes it the current dataset. On failure
// the previous dataset stays loaded.
func (s *Store) OpenContent(name, content string) (calib.Metadata, error) {
	f, warnings, err := a2l.Parse(content)
	if err != nil {
		return calib.Metadata{}, calib.Errorf(calib.CodeParse, "%s: %v", name, err)
	}
	for _, w := range warnings {
		s.logger.Printf("store: %s: warning: %s", name, w)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.file = f
	s.warnings = len(warnings)
	s.logger.Printf("store: loaded %s (%d modules, %d warnings)", name, len(f.Project.Modules), len(warnings))
	return s.metadataLocked(), nil
}

// OpenFile reads and parses the file at path.
func (s *Store) OpenFile(path string) (calib.Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return calib.Metadata{}, calib.Errorf(calib.CodeIO, "%v", err)
	}
	return s.OpenContent(filepath.Base(path), string(data))
}

// CreateEmpty replaces the dataset with a minimal skeleton.
func (s *Store) CreateEmpty() calib.Metadata {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.file = a2l.NewFile()
	s.warnings = 0
	s.logger.Printf("store: created empty dataset")
	return s.metadataLocked()
}

// Metadata returns the summary of the current dataset.
func (s *Store) Metadata() (calib.Metadata, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return calib.Metadata{}, calib.ErrNoDatasetLoaded
	}
	return s.metadataLocked(), nil
}

func (s *Store) metadataLocked() calib.Metadata {
	f := s.file
	md := calib.Metadata{
		ProjectName:           f.Project.Name,
		ProjectLongIdentifier: f.Project.LongIdentifier,
		ModuleNames:           make([]string, 0, len(f.Project.Modules)),
		WarningCount:          s.warnings,
	}
	for _, m := range f.Project.Modules {
		md.ModuleNames = append(md.ModuleNames, m.Name)
	}
	if f.Project.Header != nil {
		if c := strings.TrimSpace(f.Project.Header.Comment); c != "" {
			md.HeaderComment = &c
		}
	}
	if f.Version != nil {
		v := fmt.Sprintf("%d.%d", f.Version.Major, f.Version.Minor)
		md.ASAP2Version = &v
	}
	return md
}

// UpdateProject changes the project name, long identifier and header
// comment. A blank comment removes the header.
func (s *Store) UpdateProject(name, longIdentifier string, headerComment *string) (calib.Metadata, error) {
	if !a2l.ValidIdent(name) {
		return calib.Metadata{}, calib.Errorf(calib.CodeValidation, "invalid project name %q", name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return calib.Metadata{}, calib.ErrNoDatasetLoaded
	}
	p := &s.file.Project
	p.Name = name
	p.LongIdentifier = longIdentifier

	comment := ""
	if headerComment != nil {
		comment = strings.TrimSpace(*headerComment)
	}
	switch {
	case comment == "":
		p.Header = nil
	case p.Header != nil:
		p.Header.Comment = comment
	default:
		p.Header = &a2l.Header{Comment: comment}
	}
	return s.metadataLocked(), nil
}

// UpdateModule renames the module called name to newName and sets its long
// identifier. The new name must not belong to another module.
func (s *Store) UpdateModule(name, newName, longIdentifier string) (calib.Metadata, error) {
	if !a2l.ValidIdent(newName) {
		return calib.Metadata{}, calib.Errorf(calib.CodeValidation, "invalid module name %q", newName)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return calib.Metadata{}, calib.ErrNoDatasetLoaded
	}
	m := s.file.Module(name)
	if m == nil {
		return calib.Metadata{}, calib.Errorf(calib.CodeEntityNotFound, "module %q not found", name)
	}
	if newName != name && s.file.Module(newName) != nil {
		return calib.Metadata{}, calib.Errorf(calib.CodeValidation, "module %q already exists", newName)
	}
	m.Name = newName
	m.LongIdentifier = longIdentifier
	if newName != name {
		s.logger.Printf("store: renamed module %s to %s", name, newName)
	}
	return s.metadataLocked(), nil
}

// Export renders the current dataset as A2L text.
func (s *Store) Export() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return "", calib.ErrNoDatasetLoaded
	}
	return a2l.Write(s.file), nil
}

// Save validates the dataset and writes it to path.
func (s *Store) Save(path string) error {
	if strings.TrimSpace(path) == "" {
		return calib.Errorf(calib.CodeValidation, "no save location given")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return calib.ErrNoDatasetLoaded
	}
	if problems := validate(s.file); len(problems) > 0 {
		return calib.Errorf(calib.CodeValidation, "%s", strings.Join(problems, "; "))
	}
	if err := os.WriteFile(path, []byte(a2l.Write(s.file)), 0o644); err != nil {
		return calib.Errorf(calib.CodeIO, "%v", err)
	}
	s.logger.Printf("store: saved %s", path)
	return nil
}

// validate lists constraint violations that would make the written file
// ambiguous.
func validate(f *a2l.File) []string {
	var problems []string
	for _, m := range f.Project.Modules {
		check := func(kind calib.Kind, names []string) {
			seen := make(map[string]bool, len(names))
			for _, n := range names {
				if seen[n] {
					problems = append(problems, fmt.Sprintf("duplicate %s %s in module %s", kind, n, m.Name))
				}
				seen[n] = true
			}
		}
		check(calib.KindMeasurement, namesOf(m.Measurements, func(x *a2l.Measurement) string { return x.Name }))
		check(calib.KindCharacteristic, namesOf(m.Characteristics, func(x *a2l.Characteristic) string { return x.Name }))
		check(calib.KindAxisPts, namesOf(m.AxisPts, func(x *a2l.AxisPts) string { return x.Name }))
	}
	return problems
}

func namesOf[T any](items []T, name func(T) string) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = name(it)
	}
	return out
}

// moduleLocked resolves a container name; "" means the first module.
func (s *Store) moduleLocked(name string) (*a2l.Module, error) {
	mods := s.file.Project.Modules
	if name == "" {
		if len(mods) == 0 {
			return nil, calib.Errorf(calib.CodeValidation, "dataset has no modules")
		}
		return mods[0], nil
	}
	if m := s.file.Module(name); m != nil {
		return m, nil
	}
	return nil, calib.Errorf(calib.CodeValidation, "module %q not found", name)
}
