// Package elfsym reads the symbol table of an ELF binary as import candidates.
package elfsym

import (
	"debug/elf"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/marjoballabani/lazya2l/pkg/calib"
)

// Load reads the named symbols of the ELF file at path, sorted by name.
func Load(path string) ([]calib.ImportSymbol, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, calib.Errorf(calib.CodeIO, "%v", err)
	}
	defer f.Close()
	return Read(f)
}

// Read parses ELF content from r.
func Read(r io.ReaderAt) ([]calib.ImportSymbol, error) {
	ef, err := elf.NewFile(r)
	if err != nil {
		return nil, calib.Errorf(calib.CodeUnsupportedFormat, "not an ELF file: %v", err)
	}
	defer ef.Close()

	syms, err := ef.Symbols()
	if err != nil {
		if errors.Is(err, elf.ErrNoSymbols) {
			return []calib.ImportSymbol{}, nil
		}
		return nil, calib.Errorf(calib.CodeUnsupportedFormat, "read symbol table: %v", err)
	}

	out := make([]calib.ImportSymbol, 0, len(syms))
	for _, s := range syms {
		if s.Name == "" {
			continue
		}
		out = append(out, calib.ImportSymbol{
			Name:    s.Name,
			Address: s.Value,
			Size:    s.Size,
			Bind:    strings.TrimPrefix(elf.ST_BIND(s.Info).String(), "STB_"),
			Type:    strings.TrimPrefix(elf.ST_TYPE(s.Info).String(), "STT_"),
			Section: sectionName(ef, s.Section),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func sectionName(ef *elf.File, idx elf.SectionIndex) string {
	if idx == elf.SHN_UNDEF || int(idx) >= len(ef.Sections) {
		return ""
	}
	return ef.Sections[idx].Name
}
