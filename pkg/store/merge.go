package store

import (
	"math"

	"github.com/marjoballabani/lazya2l/pkg/a2l"
	"github.com/marjoballabani/lazya2l/pkg/calib"
)

// DatatypeForSymbol picks the storage type of a measurement created from a
// binary symbol. Data objects map by byte size; anything else, including
// functions and sizes with no integer type, falls back to UBYTE.
func DatatypeForSymbol(sym calib.ImportSymbol) a2l.DataType {
	switch sym.Type {
	case "FUNC", "SECTION", "FILE", "TLS":
		return a2l.UByte
	}
	switch sym.Size {
	case 1:
		return a2l.UByte
	case 2:
		return a2l.UWord
	case 4:
		return a2l.ULong
	case 8:
		return a2l.AUint64
	}
	return a2l.UByte
}

// MergeSymbols creates a measurement for every symbol whose name is not yet a
// measurement in the target module. Existing measurements are never touched.
// An empty container targets the first module.
//
// Symbols that cannot become measurements (names that are not A2L
// identifiers, addresses beyond 32 bits) are skipped like duplicates.
func (s *Store) MergeSymbols(container string, symbols []calib.ImportSymbol) (calib.MergeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return calib.MergeResult{}, calib.ErrNoDatasetLoaded
	}
	m, err := s.moduleLocked(container)
	if err != nil {
		return calib.MergeResult{}, err
	}

	existing := make(map[string]bool, len(m.Measurements)+len(symbols))
	for _, x := range m.Measurements {
		existing[x.Name] = true
	}

	created, skipped := 0, 0
	for _, sym := range symbols {
		if existing[sym.Name] || !a2l.ValidIdent(sym.Name) || sym.Address > math.MaxUint32 {
			skipped++
			continue
		}
		x := a2l.NewMeasurement(sym.Name, DatatypeForSymbol(sym))
		addr := uint32(sym.Address)
		x.ECUAddress = &addr
		m.Measurements = append(m.Measurements, x)
		existing[sym.Name] = true
		created++
	}

	s.logger.Printf("store: merged %d symbols into %s (%d created, %d skipped)", len(symbols), m.Name, created, skipped)
	return calib.MergeResult{Metadata: s.metadataLocked(), Created: created}, nil
}
