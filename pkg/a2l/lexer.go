package a2l

import (
	"fmt"
	"strings"
	"unicode"
)

// TokenKind classifies a lexical token.
type TokenKind int

const (
	TokIdent TokenKind = iota
	TokString
	TokNumber
	TokBegin
	TokEnd
)

// Token is one lexical element. Text holds the decoded value for strings and
// the source spelling for everything else.
type Token struct {
	Kind TokenKind
	Text string
	Line int
	Col  int
}

// ParseError reports a lexical or structural error in A2L content.
type ParseError struct {
	Line    int
	Col     int
	Message string
}

func (e *ParseError) Error() string {
	if e.Line == 0 {
		return e.Message
	}
	return fmt.Sprintf("line %d:%d: %s", e.Line, e.Col, e.Message)
}

type lexer struct {
	src  []rune
	pos  int
	line int
	col  int
}

func tokenize(src string) ([]Token, error) {
	lx := &lexer{src: []rune(src), line: 1, col: 1}
	var toks []Token
	for {
		if err := lx.skipSpaceAndComments(); err != nil {
			return nil, err
		}
		if lx.pos >= len(lx.src) {
			return toks, nil
		}
		tok, err := lx.next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
	}
}

func (lx *lexer) peek(off int) rune {
	if lx.pos+off >= len(lx.src) {
		return 0
	}
	return lx.src[lx.pos+off]
}

func (lx *lexer) advance() rune {
	r := lx.src[lx.pos]
	lx.pos++
	if r == '\n' {
		lx.line++
		lx.col = 1
	} else {
		lx.col++
	}
	return r
}

func (lx *lexer) errorf(format string, args ...any) error {
	return &ParseError{Line: lx.line, Col: lx.col, Message: fmt.Sprintf(format, args...)}
}

func (lx *lexer) skipSpaceAndComments() error {
	for lx.pos < len(lx.src) {
		r := lx.peek(0)
		switch {
		case unicode.IsSpace(r):
			lx.advance()
		case r == '/' && lx.peek(1) == '*':
			line, col := lx.line, lx.col
			lx.advance()
			lx.advance()
			for {
				if lx.pos >= len(lx.src) {
					return &ParseError{Line: line, Col: col, Message: "unterminated comment"}
				}
				if lx.peek(0) == '*' && lx.peek(1) == '/' {
					lx.advance()
					lx.advance()
					break
				}
				lx.advance()
			}
		case r == '/' && lx.peek(1) == '/':
			for lx.pos < len(lx.src) && lx.peek(0) != '\n' {
				lx.advance()
			}
		default:
			return nil
		}
	}
	return nil
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || r == '.' || r == '[' || r == ']' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isNumberPart(r rune) bool {
	return r == '.' || r == '+' || r == '-' || r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func (lx *lexer) next() (Token, error) {
	line, col := lx.line, lx.col
	r := lx.peek(0)

	switch {
	case r == '"':
		s, err := lx.readString()
		if err != nil {
			return Token{}, err
		}
		return Token{Kind: TokString, Text: s, Line: line, Col: col}, nil

	case r == '/':
		word := lx.readWhile(func(r rune) bool { return r == '/' || unicode.IsLetter(r) })
		switch word {
		case "/begin":
			return Token{Kind: TokBegin, Text: word, Line: line, Col: col}, nil
		case "/end":
			return Token{Kind: TokEnd, Text: word, Line: line, Col: col}, nil
		}
		return Token{}, &ParseError{Line: line, Col: col, Message: fmt.Sprintf("unexpected %q", word)}

	case unicode.IsDigit(r) || ((r == '-' || r == '+' || r == '.') && (unicode.IsDigit(lx.peek(1)) || lx.peek(1) == '.')):
		lx.advance()
		rest := lx.readWhile(isNumberPart)
		return Token{Kind: TokNumber, Text: string(r) + rest, Line: line, Col: col}, nil

	case isIdentStart(r):
		word := lx.readWhile(isIdentPart)
		return Token{Kind: TokIdent, Text: word, Line: line, Col: col}, nil
	}

	return Token{}, lx.errorf("unexpected character %q", r)
}

func (lx *lexer) readWhile(ok func(rune) bool) string {
	var b strings.Builder
	for lx.pos < len(lx.src) && ok(lx.peek(0)) {
		b.WriteRune(lx.advance())
	}
	return b.String()
}

// readString consumes a quoted string. Both \" and "" escape a quote.
func (lx *lexer) readString() (string, error) {
	line, col := lx.line, lx.col
	lx.advance()
	var b strings.Builder
	for {
		if lx.pos >= len(lx.src) {
			return "", &ParseError{Line: line, Col: col, Message: "unterminated string"}
		}
		r := lx.advance()
		switch r {
		case '\\':
			if lx.pos >= len(lx.src) {
				continue
			}
			esc := lx.advance()
			switch esc {
			case 'n':
				b.WriteRune('\n')
			case 't':
				b.WriteRune('\t')
			case '"', '\\', '\'':
				b.WriteRune(esc)
			default:
				b.WriteRune('\\')
				b.WriteRune(esc)
			}
		case '"':
			if lx.peek(0) == '"' {
				lx.advance()
				b.WriteRune('"')
				continue
			}
			return b.String(), nil
		default:
			b.WriteRune(r)
		}
	}
}

func quote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// ValidIdent reports whether s can be written as an A2L identifier.
func ValidIdent(s string) bool {
	for i, r := range s {
		if i == 0 && !isIdentStart(r) {
			return false
		}
		if !isIdentPart(r) {
			return false
		}
	}
	return s != ""
}
