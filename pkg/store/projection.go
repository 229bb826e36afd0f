package store

import (
	"fmt"
	"hash/fnv"
	"strconv"

	"github.com/marjoballabani/lazya2l/pkg/a2l"
	"github.com/marjoballabani/lazya2l/pkg/calib"
)

// absent is shown for optional values that are not set.
const absent = "—"

// blockKinds maps raw module-level block keywords to their tree kind.
var blockKinds = map[string]calib.Kind{
	"COMPU_TAB":              calib.KindCompuTab,
	"COMPU_VTAB":             calib.KindCompuVtab,
	"COMPU_VTAB_RANGE":       calib.KindCompuVtabRange,
	"RECORD_LAYOUT":          calib.KindRecordLayout,
	"FUNCTION":               calib.KindFunction,
	"GROUP":                  calib.KindGroup,
	"UNIT":                   calib.KindUnit,
	"FRAME":                  calib.KindFrame,
	"BLOB":                   calib.KindBlob,
	"INSTANCE":               calib.KindInstance,
	"TRANSFORMER":            calib.KindTransformer,
	"TYPEDEF_AXIS":           calib.KindTypedefAxis,
	"TYPEDEF_BLOB":           calib.KindTypedefBlob,
	"TYPEDEF_CHARACTERISTIC": calib.KindTypedefCharacteristic,
	"TYPEDEF_MEASUREMENT":    calib.KindTypedefMeasurement,
	"TYPEDEF_STRUCTURE":      calib.KindTypedefStructure,
	"MOD_COMMON":             calib.KindModCommon,
	"MOD_PAR":                calib.KindModPar,
	"VARIANT_CODING":         calib.KindVariantCoding,
	"A2ML":                   calib.KindA2ML,
	"IF_DATA":                calib.KindIfData,
	"USER_RIGHTS":            calib.KindUserRights,
}

// ProjectionOptions bounds the size of a projection.
type ProjectionOptions struct {
	// ItemLimit caps the items returned per section. Zero means no cap.
	ItemLimit int
}

// Projection renders the dataset as containers of sections of items.
// The result depends only on the dataset: container order is load order,
// sections follow calib.Kinds and items keep definition order.
func (s *Store) Projection(opts ProjectionOptions) ([]calib.Container, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return nil, calib.ErrNoDatasetLoaded
	}

	containers := make([]calib.Container, 0, len(s.file.Project.Modules))
	for _, m := range s.file.Project.Modules {
		c := calib.Container{
			ID:             m.Name,
			Name:           m.Name,
			LongIdentifier: m.LongIdentifier,
			Sections:       []calib.Section{},
		}
		for _, kind := range calib.Kinds() {
			src := sourceFor(m, kind)
			if src.total == 0 {
				continue
			}
			n := src.total
			if opts.ItemLimit > 0 && n > opts.ItemLimit {
				n = opts.ItemLimit
			}
			c.Sections = append(c.Sections, calib.Section{
				ID:    src.id,
				Title: kind.Title(),
				Kind:  kind,
				Total: src.total,
				Items: src.items(0, n),
			})
		}
		containers = append(containers, c)
	}
	return containers, nil
}

// SectionItems returns up to limit items of one section starting at offset.
// A limit of zero returns everything after offset.
func (s *Store) SectionItems(id calib.SectionID, offset, limit int) (calib.SectionPage, error) {
	if offset < 0 || limit < 0 {
		return calib.SectionPage{}, calib.Errorf(calib.CodeValidation, "invalid page %d+%d", offset, limit)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return calib.SectionPage{}, calib.ErrNoDatasetLoaded
	}
	m := s.file.Module(id.Container)
	if m == nil {
		return calib.SectionPage{}, calib.Errorf(calib.CodeEntityNotFound, "module %q not found", id.Container)
	}
	if !id.Kind.Valid() {
		return calib.SectionPage{}, calib.Errorf(calib.CodeValidation, "unknown kind %q", id.Kind)
	}

	src := sourceFor(m, id.Kind)
	page := calib.SectionPage{Section: id, Offset: offset, Total: src.total, Items: []calib.Item{}}
	if offset >= src.total {
		return page, nil
	}
	end := src.total
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	page.Items = src.items(offset, end)
	return page, nil
}

// section is a lazily rendered list of items of one kind in one module.
type section struct {
	id    calib.SectionID
	total int
	item  func(i int) calib.Item
}

func (s section) items(from, to int) []calib.Item {
	out := make([]calib.Item, 0, to-from)
	for i := from; i < to; i++ {
		out = append(out, s.item(i))
	}
	return out
}

func sourceFor(m *a2l.Module, kind calib.Kind) section {
	id := calib.SectionID{Container: m.Name, Kind: kind}
	newItem := func(name, longID string, details []calib.DetailPair) calib.Item {
		it := calib.Item{
			ID:      calib.NewItemID(id, name),
			Name:    name,
			Kind:    kind,
			Details: details,
		}
		if longID != "" {
			desc := longID
			it.Description = &desc
		}
		return it
	}

	switch kind {
	case calib.KindMeasurement:
		return section{id, len(m.Measurements), func(i int) calib.Item {
			x := m.Measurements[i]
			return newItem(x.Name, x.LongIdentifier, measurementDetails(x))
		}}
	case calib.KindCharacteristic:
		return section{id, len(m.Characteristics), func(i int) calib.Item {
			x := m.Characteristics[i]
			return newItem(x.Name, x.LongIdentifier, characteristicDetails(x))
		}}
	case calib.KindAxisPts:
		return section{id, len(m.AxisPts), func(i int) calib.Item {
			x := m.AxisPts[i]
			return newItem(x.Name, x.LongIdentifier, axisPtsDetails(x))
		}}
	case calib.KindCompuMethod:
		return section{id, len(m.CompuMethods), func(i int) calib.Item {
			x := m.CompuMethods[i]
			return newItem(x.Name, x.LongIdentifier, []calib.DetailPair{
				detail("Long identifier", x.LongIdentifier),
				detail("Conversion type", x.ConversionType),
				detail("Format", x.Format),
				detail("Unit", x.Unit),
			})
		}}
	}

	var blocks []*a2l.Block
	for _, b := range m.Blocks {
		if blockKinds[b.Keyword] == kind {
			blocks = append(blocks, b)
		}
	}
	names := blockNames(blocks, kind.Title())
	return section{id, len(blocks), func(i int) calib.Item {
		b := blocks[i]
		longID := blockDescription(b)
		return newItem(names[i], longID, []calib.DetailPair{
			detail("Long identifier", orAbsent(longID)),
			detail("Keyword", b.Keyword),
			count("Entries", len(b.Body)),
			count("Nested blocks", countBlocks(b.Body, "")),
		})
	}}
}

// blockNames derives a unique item name per raw block: its leading identifier
// when it has one, otherwise the section title. Names shared by several blocks
// get a suffix hashed from the block's content, so ids do not move when
// other blocks are added or removed. Byte-identical blocks are numbered in
// order.
func blockNames(blocks []*a2l.Block, title string) []string {
	names := make([]string, len(blocks))
	shared := make(map[string]int, len(blocks))
	for i, b := range blocks {
		name, ok := b.Name()
		if !ok {
			name = title
		}
		names[i] = name
		shared[name]++
	}

	seen := make(map[string]int)
	for i, b := range blocks {
		if shared[names[i]] < 2 {
			continue
		}
		name := fmt.Sprintf("%s %08x", names[i], contentHash(b))
		seen[name]++
		if n := seen[name]; n > 1 {
			name = fmt.Sprintf("%s-%d", name, n)
		}
		names[i] = name
	}
	return names
}

func contentHash(b *a2l.Block) uint32 {
	h := fnv.New32a()
	var walk func(b *a2l.Block)
	walk = func(b *a2l.Block) {
		fmt.Fprintf(h, "/begin %s\n", b.Keyword)
		for _, el := range b.Body {
			if el.Block != nil {
				walk(el.Block)
				continue
			}
			for _, tok := range el.Tokens {
				fmt.Fprintf(h, "%d:%s ", tok.Kind, tok.Text)
			}
			h.Write([]byte{'\n'})
		}
		fmt.Fprintf(h, "/end %s\n", b.Keyword)
	}
	walk(b)
	return h.Sum32()
}

// blockDescription is the block's long identifier, or its leading string for
// blocks such as MOD_PAR that start with a comment.
func blockDescription(b *a2l.Block) string {
	if d := b.LongIdentifier(); d != "" {
		return d
	}
	if len(b.Body) > 0 && len(b.Body[0].Tokens) > 0 && b.Body[0].Tokens[0].Kind == a2l.TokString {
		return b.Body[0].Tokens[0].Text
	}
	return ""
}

func measurementDetails(x *a2l.Measurement) []calib.DetailPair {
	return []calib.DetailPair{
		detail("Long identifier", x.LongIdentifier),
		detail("Datatype", string(x.Datatype)),
		detail("Conversion", x.Conversion),
		detail("Resolution", strconv.Itoa(x.Resolution)),
		detail("Accuracy", number(x.Accuracy)),
		limits(x.LowerLimit, x.UpperLimit),
		optHex("ECU address", u32ptr(x.ECUAddress)),
		optHex("Bit mask", x.BitMask),
		optString("Phys unit", x.PhysUnit),
		optString("Format", x.Format),
		count("Annotations", countBlocks(x.Extra, "ANNOTATION")),
		count("IF_DATA blocks", countBlocks(x.Extra, "IF_DATA")),
	}
}

func characteristicDetails(x *a2l.Characteristic) []calib.DetailPair {
	return []calib.DetailPair{
		detail("Long identifier", x.LongIdentifier),
		detail("Type", string(x.Type)),
		detail("Address", a2l.FormatHex(uint64(x.Address))),
		detail("Deposit", x.Deposit),
		detail("Max diff", number(x.MaxDiff)),
		detail("Conversion", x.Conversion),
		limits(x.LowerLimit, x.UpperLimit),
		optHex("Bit mask", x.BitMask),
		optString("Phys unit", x.PhysUnit),
		optString("Format", x.Format),
		count("Axis descriptors", countBlocks(x.Extra, "AXIS_DESCR")),
		count("Annotations", countBlocks(x.Extra, "ANNOTATION")),
		count("IF_DATA blocks", countBlocks(x.Extra, "IF_DATA")),
	}
}

func axisPtsDetails(x *a2l.AxisPts) []calib.DetailPair {
	return []calib.DetailPair{
		detail("Long identifier", x.LongIdentifier),
		detail("Address", a2l.FormatHex(uint64(x.Address))),
		detail("Input quantity", x.InputQuantity),
		detail("Deposit record", x.DepositRecord),
		detail("Max diff", number(x.MaxDiff)),
		detail("Conversion", x.Conversion),
		detail("Max axis points", strconv.Itoa(int(x.MaxAxisPoints))),
		limits(x.LowerLimit, x.UpperLimit),
		optString("Phys unit", x.PhysUnit),
		optString("Format", x.Format),
		count("Annotations", countBlocks(x.Extra, "ANNOTATION")),
		count("IF_DATA blocks", countBlocks(x.Extra, "IF_DATA")),
	}
}

func detail(label, value string) calib.DetailPair {
	return calib.DetailPair{Label: label, Value: value}
}

func count(label string, n int) calib.DetailPair {
	return detail(label, strconv.Itoa(n))
}

// number renders a float without exponent and without trailing zeros, so
// 8000 reads "8000" and 0.25 reads "0.25".
func number(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func limits(lower, upper float64) calib.DetailPair {
	return detail("Limits", number(lower)+" .. "+number(upper))
}

func orAbsent(s string) string {
	if s == "" {
		return absent
	}
	return s
}

func optString(label string, v *string) calib.DetailPair {
	if v == nil {
		return detail(label, absent)
	}
	return detail(label, *v)
}

func optHex(label string, v *uint64) calib.DetailPair {
	if v == nil {
		return detail(label, absent)
	}
	return detail(label, a2l.FormatHex(*v))
}

func u32ptr(v *uint32) *uint64 {
	if v == nil {
		return nil
	}
	w := uint64(*v)
	return &w
}

// countBlocks counts nested blocks with the given keyword, or all nested
// blocks when keyword is empty.
func countBlocks(els []a2l.Element, keyword string) int {
	n := 0
	for _, el := range els {
		if el.Block != nil && (keyword == "" || el.Block.Keyword == keyword) {
			n++
		}
	}
	return n
}
