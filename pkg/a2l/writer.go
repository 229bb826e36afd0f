package a2l

import (
	"fmt"
	"strconv"
	"strings"
)

const indentUnit = "  "

// Write renders the file in a canonical layout. Raw elements are written
// token by token in their original order.
func Write(f *File) string {
	w := &writer{}
	if f.Version != nil {
		w.line(0, fmt.Sprintf("ASAP2_VERSION %d %d", f.Version.Major, f.Version.Minor))
	}
	w.elements(0, f.Preamble)
	w.project(&f.Project)
	return w.b.String()
}

type writer struct {
	b strings.Builder
}

func (w *writer) line(depth int, s string) {
	w.b.WriteString(strings.Repeat(indentUnit, depth))
	w.b.WriteString(s)
	w.b.WriteByte('\n')
}

func (w *writer) begin(depth int, keyword string, args ...string) {
	parts := append([]string{"/begin", keyword}, args...)
	w.line(depth, strings.Join(parts, " "))
}

func (w *writer) end(depth int, keyword string) {
	w.line(depth, "/end "+keyword)
}

func (w *writer) project(p *Project) {
	w.begin(0, "PROJECT", p.Name, quote(p.LongIdentifier))
	if p.Header != nil {
		w.begin(1, "HEADER", quote(p.Header.Comment))
		w.elements(2, p.Header.Extra)
		w.end(1, "HEADER")
	}
	w.elements(1, p.Extra)
	for _, m := range p.Modules {
		w.module(1, m)
	}
	w.end(0, "PROJECT")
}

func (w *writer) module(depth int, m *Module) {
	w.begin(depth, "MODULE", m.Name, quote(m.LongIdentifier))
	in := depth + 1
	w.elements(in, m.Extra)
	for _, b := range m.Blocks {
		w.block(in, b)
	}
	for _, x := range m.CompuMethods {
		w.begin(in, "COMPU_METHOD", x.Name, quote(x.LongIdentifier))
		w.line(in+1, strings.Join([]string{x.ConversionType, quote(x.Format), quote(x.Unit)}, " "))
		w.elements(in+1, x.Extra)
		w.end(in, "COMPU_METHOD")
	}
	for _, x := range m.Measurements {
		w.begin(in, "MEASUREMENT", x.Name, quote(x.LongIdentifier))
		w.line(in+1, strings.Join([]string{
			string(x.Datatype), x.Conversion, strconv.Itoa(x.Resolution),
			FormatFloat(x.Accuracy), FormatFloat(x.LowerLimit), FormatFloat(x.UpperLimit),
		}, " "))
		if x.ECUAddress != nil {
			w.line(in+1, "ECU_ADDRESS "+FormatHex(uint64(*x.ECUAddress)))
		}
		w.options(in+1, x.BitMask, x.PhysUnit, x.Format)
		w.elements(in+1, x.Extra)
		w.end(in, "MEASUREMENT")
	}
	for _, x := range m.Characteristics {
		w.begin(in, "CHARACTERISTIC", x.Name, quote(x.LongIdentifier))
		w.line(in+1, strings.Join([]string{
			string(x.Type), FormatHex(uint64(x.Address)), x.Deposit, FormatFloat(x.MaxDiff),
			x.Conversion, FormatFloat(x.LowerLimit), FormatFloat(x.UpperLimit),
		}, " "))
		w.options(in+1, x.BitMask, x.PhysUnit, x.Format)
		w.elements(in+1, x.Extra)
		w.end(in, "CHARACTERISTIC")
	}
	for _, x := range m.AxisPts {
		w.begin(in, "AXIS_PTS", x.Name, quote(x.LongIdentifier))
		w.line(in+1, strings.Join([]string{
			FormatHex(uint64(x.Address)), x.InputQuantity, x.DepositRecord, FormatFloat(x.MaxDiff),
			x.Conversion, strconv.Itoa(int(x.MaxAxisPoints)), FormatFloat(x.LowerLimit), FormatFloat(x.UpperLimit),
		}, " "))
		w.options(in+1, nil, x.PhysUnit, x.Format)
		w.elements(in+1, x.Extra)
		w.end(in, "AXIS_PTS")
	}
	w.end(depth, "MODULE")
}

func (w *writer) options(depth int, bitMask *uint64, physUnit, format *string) {
	if bitMask != nil {
		w.line(depth, "BIT_MASK "+FormatHex(*bitMask))
	}
	if physUnit != nil {
		w.line(depth, "PHYS_UNIT "+quote(*physUnit))
	}
	if format != nil {
		w.line(depth, "FORMAT "+quote(*format))
	}
}

// block keeps a leading token line on the /begin line, where the block name
// and long identifier usually sit.
func (w *writer) block(depth int, b *Block) {
	body := b.Body
	if len(body) > 0 && body[0].Block == nil {
		w.line(depth, "/begin "+b.Keyword+" "+tokensText(body[0].Tokens))
		body = body[1:]
	} else {
		w.line(depth, "/begin "+b.Keyword)
	}
	w.elements(depth+1, body)
	w.end(depth, b.Keyword)
}

func (w *writer) elements(depth int, els []Element) {
	for _, el := range els {
		if el.Block != nil {
			w.block(depth, el.Block)
			continue
		}
		w.line(depth, tokensText(el.Tokens))
	}
}

func tokensText(toks []Token) string {
	parts := make([]string, len(toks))
	for i, tok := range toks {
		if tok.Kind == TokString {
			parts[i] = quote(tok.Text)
		} else {
			parts[i] = tok.Text
		}
	}
	return strings.Join(parts, " ")
}

// FormatFloat renders a number in its shortest form, without a trailing ".0".
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// FormatHex renders an address as 0x followed by uppercase hex digits.
func FormatHex(v uint64) string {
	return fmt.Sprintf("0x%X", v)
}
