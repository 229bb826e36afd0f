package gui

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// colorizer highlights JSON for the details panel.
type colorizer struct {
	lexer     chroma.Lexer
	style     *chroma.Style
	formatter chroma.Formatter
}

func newColorizer(styleName string) *colorizer {
	lexer := lexers.Get("json")
	if lexer == nil {
		lexer = lexers.Fallback
	}
	style := styles.Get(styleName)
	if style == nil {
		style = styles.Fallback
	}
	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}
	return &colorizer{
		lexer:     chroma.Coalesce(lexer),
		style:     style,
		formatter: formatter,
	}
}

// JSON returns src with ANSI colors. On failure src is returned unchanged.
func (c *colorizer) JSON(src string) string {
	if src == "" {
		return ""
	}
	it, err := c.lexer.Tokenise(nil, src)
	if err != nil {
		return src
	}
	var b strings.Builder
	if err := c.formatter.Format(&b, c.style, it); err != nil {
		return src
	}
	return strings.TrimSuffix(b.String(), "\n")
}
