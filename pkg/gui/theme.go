package gui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jesseduffield/gocui"
	"github.com/marjoballabani/lazya2l/pkg/config"
)

// Theme holds the parsed colors of the tree and details panels. Border
// colors change with the panel state: focused, filtered or editing.
type Theme struct {
	ActiveBorderColor   gocui.Attribute
	InactiveBorderColor gocui.Attribute
	OptionsTextColor    gocui.Attribute
	SelectedLineBgColor gocui.Attribute
	FilterBorderColor   gocui.Attribute
	EditBorderColor     gocui.Attribute
}

// NewTheme parses cfg. Colors left empty fall back to the terminal default,
// except the filter and edit borders which keep yellow and magenta.
func NewTheme(cfg config.ThemeConfig) *Theme {
	return &Theme{
		ActiveBorderColor:   parseColor(cfg.ActiveBorderColor),
		InactiveBorderColor: parseColor(cfg.InactiveBorderColor),
		OptionsTextColor:    parseColor(cfg.OptionsTextColor),
		SelectedLineBgColor: parseColor(cfg.SelectedLineBgColor),
		FilterBorderColor:   parseColorOr(cfg.FilterBorderColor, gocui.ColorYellow),
		EditBorderColor:     parseColorOr(cfg.EditBorderColor, gocui.ColorMagenta),
	}
}

// BorderFor picks the border color of a panel.
func (t *Theme) BorderFor(focused, filtering, editing bool) gocui.Attribute {
	switch {
	case editing:
		return t.EditBorderColor
	case filtering:
		return t.FilterBorderColor
	case focused:
		return t.ActiveBorderColor
	}
	return t.InactiveBorderColor
}

func parseColorOr(colorSpec []string, fallback gocui.Attribute) gocui.Attribute {
	if len(colorSpec) == 0 {
		return fallback
	}
	return parseColor(colorSpec)
}

func parseColor(colorSpec []string) gocui.Attribute {
	if len(colorSpec) == 0 {
		return gocui.ColorDefault
	}

	var attr gocui.Attribute
	for _, spec := range colorSpec {
		spec = strings.ToLower(strings.TrimSpace(spec))
		switch spec {
		case "bold":
			attr |= gocui.AttrBold
		case "underline":
			attr |= gocui.AttrUnderline
		case "reverse":
			attr |= gocui.AttrReverse
		default:
			attr |= parseColorValue(spec)
		}
	}
	return attr
}

var namedColors = map[string]gocui.Attribute{
	"default": gocui.ColorDefault,
	"black":   gocui.ColorBlack,
	"red":     gocui.ColorRed,
	"green":   gocui.ColorGreen,
	"yellow":  gocui.ColorYellow,
	"blue":    gocui.ColorBlue,
	"magenta": gocui.ColorMagenta,
	"cyan":    gocui.ColorCyan,
	"white":   gocui.ColorWhite,
}

func parseColorValue(color string) gocui.Attribute {
	if strings.HasPrefix(color, "#") {
		return parseHexColor(color)
	}
	if attr, ok := namedColors[color]; ok {
		return attr
	}
	// 256 color palette index
	if n, err := strconv.Atoi(color); err == nil && n >= 0 && n < 256 {
		return gocui.Attribute(n) | gocui.AttrIsValidColor
	}
	return gocui.ColorDefault
}

func parseHexColor(hex string) gocui.Attribute {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return gocui.ColorDefault
	}
	rgb, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return gocui.ColorDefault
	}
	return gocui.NewRGBColor(int32(rgb>>16&0xFF), int32(rgb>>8&0xFF), int32(rgb&0xFF))
}

// GetAnsiColorCode returns the escape code of the active border color, used
// for the selection marker in the tree.
func (t *Theme) GetAnsiColorCode() string {
	return attributeToAnsi(t.ActiveBorderColor)
}

// EditAnsi returns the escape code used for edit form headings.
func (t *Theme) EditAnsi() string {
	return attributeToAnsi(t.EditBorderColor)
}

// FilterAnsi returns the escape code used for filter labels.
func (t *Theme) FilterAnsi() string {
	return attributeToAnsi(t.FilterBorderColor)
}

var basicAnsi = map[gocui.Attribute]string{
	gocui.ColorBlack:   "\033[30m",
	gocui.ColorRed:     "\033[31m",
	gocui.ColorGreen:   "\033[32m",
	gocui.ColorYellow:  "\033[33m",
	gocui.ColorBlue:    "\033[34m",
	gocui.ColorMagenta: "\033[35m",
	gocui.ColorCyan:    "\033[36m",
	gocui.ColorWhite:   "\033[37m",
}

func attributeToAnsi(attr gocui.Attribute) string {
	color := attr &^ (gocui.AttrBold | gocui.AttrUnderline | gocui.AttrReverse)
	if code, ok := basicAnsi[color]; ok {
		return code
	}
	if color&gocui.AttrIsRGBColor != 0 {
		rgb := uint32(color & 0xFFFFFF)
		return fmt.Sprintf("\033[38;2;%d;%d;%dm", rgb>>16&0xFF, rgb>>8&0xFF, rgb&0xFF)
	}
	if color&gocui.AttrIsValidColor != 0 {
		return fmt.Sprintf("\033[38;5;%dm", uint32(color&0xFF))
	}
	// Terminal default reads as cyan, the usual highlight
	return "\033[36m"
}
