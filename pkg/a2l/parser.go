package a2l

import (
	"fmt"
	"strconv"
	"strings"
)

// Parse reads A2L content. Warnings describe problems that did not stop the
// parse, such as duplicate names.
func Parse(src string) (*File, []string, error) {
	toks, err := tokenize(src)
	if err != nil {
		return nil, nil, err
	}
	p := &parser{toks: toks}
	f, err := p.parseFile()
	if err != nil {
		return nil, nil, err
	}
	return f, p.warnings, nil
}

type parser struct {
	toks     []Token
	pos      int
	warnings []string
}

func (p *parser) warnf(format string, args ...any) {
	p.warnings = append(p.warnings, fmt.Sprintf(format, args...))
}

func (p *parser) eof() bool {
	return p.pos >= len(p.toks)
}

func (p *parser) peek() Token {
	if p.eof() {
		return Token{}
	}
	return p.toks[p.pos]
}

func (p *parser) last() Token {
	if len(p.toks) == 0 {
		return Token{}
	}
	return p.toks[len(p.toks)-1]
}

func (p *parser) errorf(tok Token, format string, args ...any) error {
	return &ParseError{Line: tok.Line, Col: tok.Col, Message: fmt.Sprintf(format, args...)}
}

func (p *parser) next(what string) (Token, error) {
	if p.eof() {
		return Token{}, p.errorf(p.last(), "unexpected end of input, expected %s", what)
	}
	tok := p.toks[p.pos]
	p.pos++
	return tok, nil
}

func (p *parser) ident(what string) (string, error) {
	tok, err := p.next(what)
	if err != nil {
		return "", err
	}
	if tok.Kind != TokIdent {
		return "", p.errorf(tok, "expected %s, got %q", what, tok.Text)
	}
	return tok.Text, nil
}

func (p *parser) str(what string) (string, error) {
	tok, err := p.next(what)
	if err != nil {
		return "", err
	}
	if tok.Kind != TokString {
		return "", p.errorf(tok, "expected %s string, got %q", what, tok.Text)
	}
	return tok.Text, nil
}

func (p *parser) float(what string) (float64, error) {
	tok, err := p.next(what)
	if err != nil {
		return 0, err
	}
	if tok.Kind != TokNumber {
		return 0, p.errorf(tok, "expected %s number, got %q", what, tok.Text)
	}
	if isHex(tok.Text) {
		v, err := strconv.ParseUint(tok.Text[2:], 16, 64)
		if err != nil {
			return 0, p.errorf(tok, "invalid %s %q", what, tok.Text)
		}
		return float64(v), nil
	}
	v, err := strconv.ParseFloat(tok.Text, 64)
	if err != nil {
		return 0, p.errorf(tok, "invalid %s %q", what, tok.Text)
	}
	return v, nil
}

func (p *parser) uint(what string, bits int) (uint64, error) {
	tok, err := p.next(what)
	if err != nil {
		return 0, err
	}
	if tok.Kind != TokNumber {
		return 0, p.errorf(tok, "expected %s number, got %q", what, tok.Text)
	}
	v, err := ParseUint(tok.Text, bits)
	if err != nil {
		return 0, p.errorf(tok, "invalid %s %q", what, tok.Text)
	}
	return v, nil
}

func isHex(s string) bool {
	return strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X")
}

// ParseUint reads a decimal or 0x-prefixed hexadecimal integer.
func ParseUint(s string, bits int) (uint64, error) {
	s = strings.TrimSpace(s)
	if isHex(s) {
		return strconv.ParseUint(s[2:], 16, bits)
	}
	return strconv.ParseUint(s, 10, bits)
}

// expectEnd consumes "/end KEYWORD".
func (p *parser) expectEnd(keyword string) error {
	tok, err := p.next("/end " + keyword)
	if err != nil {
		return err
	}
	if tok.Kind != TokEnd {
		return p.errorf(tok, "expected /end %s, got %q", keyword, tok.Text)
	}
	name, err := p.next(keyword)
	if err != nil {
		return err
	}
	if name.Text != keyword {
		return p.errorf(name, "mismatched /end: expected %s, got %s", keyword, name.Text)
	}
	return nil
}

func (p *parser) atEnd() bool {
	return !p.eof() && p.peek().Kind == TokEnd
}

func (p *parser) parseFile() (*File, error) {
	f := &File{}
	sawProject := false

	for !p.eof() {
		tok := p.peek()
		switch {
		case tok.Kind == TokIdent && tok.Text == "ASAP2_VERSION":
			p.pos++
			major, err := p.uint("version number", 16)
			if err != nil {
				return nil, err
			}
			minor, err := p.uint("upgrade number", 16)
			if err != nil {
				return nil, err
			}
			f.Version = &Version{Major: int(major), Minor: int(minor)}

		case tok.Kind == TokBegin:
			p.pos++
			kw, err := p.ident("block keyword")
			if err != nil {
				return nil, err
			}
			if kw != "PROJECT" {
				b, err := p.rawBlock(kw)
				if err != nil {
					return nil, err
				}
				f.Preamble = append(f.Preamble, Element{Block: b})
				continue
			}
			if sawProject {
				return nil, p.errorf(tok, "more than one PROJECT")
			}
			if err := p.parseProject(&f.Project); err != nil {
				return nil, err
			}
			sawProject = true

		case tok.Kind == TokEnd:
			return nil, p.errorf(tok, "unexpected /end")

		default:
			line := p.looseLine(nil)
			if first := line.Tokens[0]; first.Text != "A2ML_VERSION" {
				p.warnf("line %d: unexpected %q at top level", first.Line, first.Text)
			}
			f.Preamble = append(f.Preamble, line)
		}
	}

	if !sawProject {
		return nil, &ParseError{Message: "missing PROJECT block"}
	}
	if f.Version == nil {
		p.warnf("missing ASAP2_VERSION")
	}
	return f, nil
}

// looseLine collects consecutive plain tokens that share a source line,
// stopping at block delimiters and at any keyword in stop.
func (p *parser) looseLine(stop map[string]bool) Element {
	first := p.toks[p.pos]
	p.pos++
	el := Element{Tokens: []Token{first}}
	for !p.eof() {
		tok := p.peek()
		if tok.Line != first.Line || tok.Kind == TokBegin || tok.Kind == TokEnd {
			break
		}
		if tok.Kind == TokIdent && stop[tok.Text] {
			break
		}
		el.Tokens = append(el.Tokens, tok)
		p.pos++
	}
	return el
}

// rawBlock reads the body of a block whose /begin and keyword were consumed.
func (p *parser) rawBlock(keyword string) (*Block, error) {
	b := &Block{Keyword: keyword}
	for {
		if p.eof() {
			return nil, p.errorf(p.last(), "unterminated block %s", keyword)
		}
		tok := p.peek()
		switch tok.Kind {
		case TokEnd:
			if err := p.expectEnd(keyword); err != nil {
				return nil, err
			}
			return b, nil
		case TokBegin:
			p.pos++
			kw, err := p.ident("block keyword")
			if err != nil {
				return nil, err
			}
			child, err := p.rawBlock(kw)
			if err != nil {
				return nil, err
			}
			b.Body = append(b.Body, Element{Block: child})
		default:
			b.Body = append(b.Body, p.looseLine(nil))
		}
	}
}

func (p *parser) parseProject(proj *Project) error {
	var err error
	if proj.Name, err = p.ident("project name"); err != nil {
		return err
	}
	if proj.LongIdentifier, err = p.str("project long identifier"); err != nil {
		return err
	}

	for !p.atEnd() {
		if p.eof() {
			return p.errorf(p.last(), "unterminated block PROJECT")
		}
		if p.peek().Kind != TokBegin {
			proj.Extra = append(proj.Extra, p.looseLine(nil))
			continue
		}
		p.pos++
		kw, err := p.ident("block keyword")
		if err != nil {
			return err
		}
		switch kw {
		case "HEADER":
			h := &Header{}
			if h.Comment, err = p.str("header comment"); err != nil {
				return err
			}
			if err := p.tail("HEADER", &h.Extra, nil, nil); err != nil {
				return err
			}
			proj.Header = h
		case "MODULE":
			m, err := p.parseModule()
			if err != nil {
				return err
			}
			proj.Modules = append(proj.Modules, m)
		default:
			b, err := p.rawBlock(kw)
			if err != nil {
				return err
			}
			proj.Extra = append(proj.Extra, Element{Block: b})
		}
	}
	return p.expectEnd("PROJECT")
}

func (p *parser) parseModule() (*Module, error) {
	m := &Module{}
	var err error
	if m.Name, err = p.ident("module name"); err != nil {
		return nil, err
	}
	if m.LongIdentifier, err = p.str("module long identifier"); err != nil {
		return nil, err
	}

	seen := map[string]map[string]bool{}
	dup := func(kind, name string, tok Token) {
		if seen[kind] == nil {
			seen[kind] = map[string]bool{}
		}
		if seen[kind][name] {
			p.warnf("line %d: duplicate %s %s in module %s", tok.Line, kind, name, m.Name)
		}
		seen[kind][name] = true
	}

	for !p.atEnd() {
		if p.eof() {
			return nil, p.errorf(p.last(), "unterminated block MODULE")
		}
		if p.peek().Kind != TokBegin {
			m.Extra = append(m.Extra, p.looseLine(nil))
			continue
		}
		p.pos++
		kw, err := p.ident("block keyword")
		if err != nil {
			return nil, err
		}
		at := p.peek()
		switch kw {
		case "MEASUREMENT":
			x, err := p.parseMeasurement()
			if err != nil {
				return nil, err
			}
			dup(kw, x.Name, at)
			m.Measurements = append(m.Measurements, x)
		case "CHARACTERISTIC":
			x, err := p.parseCharacteristic()
			if err != nil {
				return nil, err
			}
			dup(kw, x.Name, at)
			m.Characteristics = append(m.Characteristics, x)
		case "AXIS_PTS":
			x, err := p.parseAxisPts()
			if err != nil {
				return nil, err
			}
			dup(kw, x.Name, at)
			m.AxisPts = append(m.AxisPts, x)
		case "COMPU_METHOD":
			x, err := p.parseCompuMethod()
			if err != nil {
				return nil, err
			}
			dup(kw, x.Name, at)
			m.CompuMethods = append(m.CompuMethods, x)
		default:
			b, err := p.rawBlock(kw)
			if err != nil {
				return nil, err
			}
			if name, ok := b.Name(); ok {
				dup(kw, name, at)
			}
			m.Blocks = append(m.Blocks, b)
		}
	}
	if err := p.expectEnd("MODULE"); err != nil {
		return nil, err
	}
	return m, nil
}

// Optional keywords extracted per entity kind. Anything else stays raw.
var (
	measurementOptions    = map[string]bool{"ECU_ADDRESS": true, "BIT_MASK": true, "PHYS_UNIT": true, "FORMAT": true}
	characteristicOptions = map[string]bool{"BIT_MASK": true, "PHYS_UNIT": true, "FORMAT": true}
	axisPtsOptions        = map[string]bool{"PHYS_UNIT": true, "FORMAT": true}
)

// options holds the optional keywords an entity body may carry.
type options struct {
	ecuAddress *uint32
	bitMask    *uint64
	physUnit   *string
	format     *string
}

// tail reads the remainder of an entity block up to its /end, extracting
// the keywords in known into opts and keeping everything else raw.
func (p *parser) tail(keyword string, extra *[]Element, known map[string]bool, opts *options) error {
	for {
		if p.eof() {
			return p.errorf(p.last(), "unterminated block %s", keyword)
		}
		tok := p.peek()
		switch {
		case tok.Kind == TokEnd:
			return p.expectEnd(keyword)

		case tok.Kind == TokBegin:
			p.pos++
			kw, err := p.ident("block keyword")
			if err != nil {
				return err
			}
			b, err := p.rawBlock(kw)
			if err != nil {
				return err
			}
			*extra = append(*extra, Element{Block: b})

		case tok.Kind == TokIdent && known[tok.Text]:
			p.pos++
			if err := p.option(tok.Text, opts); err != nil {
				return err
			}

		default:
			*extra = append(*extra, p.looseLine(known))
		}
	}
}

func (p *parser) option(keyword string, opts *options) error {
	switch keyword {
	case "ECU_ADDRESS":
		v, err := p.uint("ECU address", 32)
		if err != nil {
			return err
		}
		a := uint32(v)
		opts.ecuAddress = &a
	case "BIT_MASK":
		v, err := p.uint("bit mask", 64)
		if err != nil {
			return err
		}
		opts.bitMask = &v
	case "PHYS_UNIT":
		s, err := p.str("physical unit")
		if err != nil {
			return err
		}
		opts.physUnit = &s
	case "FORMAT":
		s, err := p.str("format")
		if err != nil {
			return err
		}
		opts.format = &s
	}
	return nil
}

func (p *parser) dataType() (DataType, error) {
	tok := p.peek()
	s, err := p.ident("datatype")
	if err != nil {
		return "", err
	}
	dt, ok := ParseDataType(s)
	if !ok {
		return "", p.errorf(tok, "unknown datatype %q", s)
	}
	return dt, nil
}

func (p *parser) parseMeasurement() (*Measurement, error) {
	x := &Measurement{}
	var err error
	if x.Name, err = p.ident("measurement name"); err != nil {
		return nil, err
	}
	if x.LongIdentifier, err = p.str("long identifier"); err != nil {
		return nil, err
	}
	if x.Datatype, err = p.dataType(); err != nil {
		return nil, err
	}
	if x.Conversion, err = p.ident("conversion"); err != nil {
		return nil, err
	}
	res, err := p.uint("resolution", 16)
	if err != nil {
		return nil, err
	}
	x.Resolution = int(res)
	if x.Accuracy, err = p.float("accuracy"); err != nil {
		return nil, err
	}
	if x.LowerLimit, err = p.float("lower limit"); err != nil {
		return nil, err
	}
	if x.UpperLimit, err = p.float("upper limit"); err != nil {
		return nil, err
	}
	var opts options
	if err := p.tail("MEASUREMENT", &x.Extra, measurementOptions, &opts); err != nil {
		return nil, err
	}
	x.ECUAddress, x.BitMask, x.PhysUnit, x.Format = opts.ecuAddress, opts.bitMask, opts.physUnit, opts.format
	return x, nil
}

func (p *parser) parseCharacteristic() (*Characteristic, error) {
	x := &Characteristic{}
	var err error
	if x.Name, err = p.ident("characteristic name"); err != nil {
		return nil, err
	}
	if x.LongIdentifier, err = p.str("long identifier"); err != nil {
		return nil, err
	}
	tok := p.peek()
	typ, err := p.ident("characteristic type")
	if err != nil {
		return nil, err
	}
	ct, ok := ParseCharacteristicType(typ)
	if !ok {
		return nil, p.errorf(tok, "unknown characteristic type %q", typ)
	}
	x.Type = ct
	addr, err := p.uint("address", 32)
	if err != nil {
		return nil, err
	}
	x.Address = uint32(addr)
	if x.Deposit, err = p.ident("deposit"); err != nil {
		return nil, err
	}
	if x.MaxDiff, err = p.float("max diff"); err != nil {
		return nil, err
	}
	if x.Conversion, err = p.ident("conversion"); err != nil {
		return nil, err
	}
	if x.LowerLimit, err = p.float("lower limit"); err != nil {
		return nil, err
	}
	if x.UpperLimit, err = p.float("upper limit"); err != nil {
		return nil, err
	}
	var opts options
	if err := p.tail("CHARACTERISTIC", &x.Extra, characteristicOptions, &opts); err != nil {
		return nil, err
	}
	x.BitMask, x.PhysUnit, x.Format = opts.bitMask, opts.physUnit, opts.format
	return x, nil
}

func (p *parser) parseAxisPts() (*AxisPts, error) {
	x := &AxisPts{}
	var err error
	if x.Name, err = p.ident("axis points name"); err != nil {
		return nil, err
	}
	if x.LongIdentifier, err = p.str("long identifier"); err != nil {
		return nil, err
	}
	addr, err := p.uint("address", 32)
	if err != nil {
		return nil, err
	}
	x.Address = uint32(addr)
	if x.InputQuantity, err = p.ident("input quantity"); err != nil {
		return nil, err
	}
	if x.DepositRecord, err = p.ident("deposit record"); err != nil {
		return nil, err
	}
	if x.MaxDiff, err = p.float("max diff"); err != nil {
		return nil, err
	}
	if x.Conversion, err = p.ident("conversion"); err != nil {
		return nil, err
	}
	n, err := p.uint("max axis points", 16)
	if err != nil {
		return nil, err
	}
	x.MaxAxisPoints = uint16(n)
	if x.LowerLimit, err = p.float("lower limit"); err != nil {
		return nil, err
	}
	if x.UpperLimit, err = p.float("upper limit"); err != nil {
		return nil, err
	}
	var opts options
	if err := p.tail("AXIS_PTS", &x.Extra, axisPtsOptions, &opts); err != nil {
		return nil, err
	}
	x.PhysUnit, x.Format = opts.physUnit, opts.format
	return x, nil
}

func (p *parser) parseCompuMethod() (*CompuMethod, error) {
	x := &CompuMethod{}
	var err error
	if x.Name, err = p.ident("compu method name"); err != nil {
		return nil, err
	}
	if x.LongIdentifier, err = p.str("long identifier"); err != nil {
		return nil, err
	}
	if x.ConversionType, err = p.ident("conversion type"); err != nil {
		return nil, err
	}
	if x.Format, err = p.str("format"); err != nil {
		return nil, err
	}
	if x.Unit, err = p.str("unit"); err != nil {
		return nil, err
	}
	if err := p.tail("COMPU_METHOD", &x.Extra, nil, nil); err != nil {
		return nil, err
	}
	return x, nil
}
