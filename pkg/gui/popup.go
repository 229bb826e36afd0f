package gui

import (
	"fmt"

	"github.com/jesseduffield/gocui"
)

// PopupItem represents an item in a popup list
type PopupItem struct {
	Key      string       // Shortcut key or short name to display
	Label    string       // Item label/description
	IsHeader bool         // Headers are non-selectable section titles
	Action   func() error // Executed on Enter (optional)
}

// Popup represents a modal popup with selectable items
type Popup struct {
	Title       string
	Items       []PopupItem
	SelectedIdx int
	Theme       *Theme
	viewName    string
}

func NewPopup(title string, items []PopupItem, theme *Theme, viewName string) *Popup {
	p := &Popup{
		Title:    title,
		Items:    items,
		Theme:    theme,
		viewName: viewName,
	}
	p.SelectedIdx = p.findNextSelectable(-1, 1)
	return p
}

// findNextSelectable finds the next selectable item in the given direction
func (p *Popup) findNextSelectable(from int, direction int) int {
	for i := from + direction; i >= 0 && i < len(p.Items); i += direction {
		if !p.Items[i].IsHeader {
			return i
		}
	}
	return from
}

func (p *Popup) MoveUp() {
	if idx := p.findNextSelectable(p.SelectedIdx, -1); idx >= 0 {
		p.SelectedIdx = idx
	}
}

func (p *Popup) MoveDown() {
	if idx := p.findNextSelectable(p.SelectedIdx, 1); idx < len(p.Items) {
		p.SelectedIdx = idx
	}
}

// GetSelectedItem returns the currently selected item, or nil when the popup
// has nothing selectable.
func (p *Popup) GetSelectedItem() *PopupItem {
	if p.SelectedIdx >= 0 && p.SelectedIdx < len(p.Items) && !p.Items[p.SelectedIdx].IsHeader {
		return &p.Items[p.SelectedIdx]
	}
	return nil
}

// Select moves the selection to line if it holds a selectable item.
func (p *Popup) Select(line int) {
	if line >= 0 && line < len(p.Items) && !p.Items[line].IsHeader {
		p.SelectedIdx = line
	}
}

// Height is the number of lines Render writes.
func (p *Popup) Height() int {
	return len(p.Items) + 2
}

// Render draws the popup content to the view using gocui's native highlighting
func (p *Popup) Render(v *gocui.View) {
	v.Clear()
	v.Highlight = true
	v.SelBgColor = p.Theme.SelectedLineBgColor
	v.SelFgColor = gocui.ColorDefault

	for _, item := range p.Items {
		if item.IsHeader {
			fmt.Fprintf(v, "\033[36m ─── %s ───\033[0m\n", item.Label)
		} else {
			fmt.Fprintf(v, "  \033[33m%-12s\033[0m %s\n", item.Key, item.Label)
		}
	}

	fmt.Fprintf(v, "\n\033[90m  Enter to execute · Esc to close\033[0m")

	v.FocusPoint(0, p.SelectedIdx, true)
}

// SelectableCount returns the number of selectable (non-header) items
func (p *Popup) SelectableCount() int {
	count := 0
	for _, item := range p.Items {
		if !item.IsHeader {
			count++
		}
	}
	return count
}
