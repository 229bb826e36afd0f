package gui

import (
	"github.com/jesseduffield/gocui"
)

// Actions - handler functions without state checks.
// State checks are handled by the binding system's GetDisabledReason.

func (g *Gui) doQuit() error {
	return gocui.ErrQuit
}

// doEscape closes the topmost thing: popups, the input bar, the edit form,
// then a committed filter.
func (g *Gui) doEscape() error {
	switch {
	case g.helpOpen:
		g.helpOpen = false
		g.helpPopup = nil
	case g.pickerOpen:
		g.pickerOpen = false
		g.picker = nil
	case g.modalOpen:
		g.modalOpen = false
	case g.inputActive:
		return g.cancelInput()
	case g.form != nil:
		g.cancelEdit()
	case g.preview != "":
		g.preview = ""
		g.detailsScrollPos = 0
	case g.hasActiveFilter(g.currentColumn):
		return g.clearCurrentFilter()
	}
	return g.Layout(g.g)
}

func (g *Gui) doToggleHelp() error {
	if g.helpOpen {
		g.helpOpen = false
		g.helpPopup = nil
	} else {
		g.buildHelpPopup()
		g.helpOpen = true
	}
	return g.Layout(g.g)
}

func (g *Gui) doToggleModal() error {
	g.modalOpen = !g.modalOpen
	return g.Layout(g.g)
}

func (g *Gui) helpMoveUp() error {
	if g.helpPopup != nil {
		g.helpPopup.MoveUp()
	}
	return g.Layout(g.g)
}

func (g *Gui) helpMoveDown() error {
	if g.helpPopup != nil {
		g.helpPopup.MoveDown()
	}
	return g.Layout(g.g)
}

func (g *Gui) helpClose() error {
	var action func() error
	if g.helpPopup != nil {
		if item := g.helpPopup.GetSelectedItem(); item != nil {
			action = item.Action
		}
	}
	g.helpOpen = false
	g.helpPopup = nil
	if action != nil {
		return action()
	}
	return g.Layout(g.g)
}

func (g *Gui) pickerMoveUp() error {
	if g.picker != nil {
		g.picker.MoveUp()
	}
	return g.Layout(g.g)
}

func (g *Gui) pickerMoveDown() error {
	if g.picker != nil {
		g.picker.MoveDown()
	}
	return g.Layout(g.g)
}

func (g *Gui) pickerClose() error {
	var action func() error
	if g.picker != nil {
		if item := g.picker.GetSelectedItem(); item != nil {
			action = item.Action
		}
	}
	g.pickerOpen = false
	g.picker = nil
	if action != nil {
		return action()
	}
	return g.Layout(g.g)
}

func (g *Gui) inputCursorLeft() error {
	if g.inputCursor > 0 {
		r := []rune(g.inputText[:g.inputCursor])
		g.inputCursor -= len(string(r[len(r)-1]))
	}
	return g.Layout(g.g)
}

func (g *Gui) inputCursorRight() error {
	if g.inputCursor < len(g.inputText) {
		r := []rune(g.inputText[g.inputCursor:])
		g.inputCursor += len(string(r[0]))
	}
	return g.Layout(g.g)
}

func (g *Gui) blockAction() error {
	return nil
}

// Edit form

func (g *Gui) formInsert(ch rune) error {
	g.form.insert(ch)
	return g.Layout(g.g)
}

func (g *Gui) formBackspace() error {
	g.form.backspace()
	return g.Layout(g.g)
}

func (g *Gui) formNext() error {
	g.form.next()
	return g.Layout(g.g)
}

func (g *Gui) formPrev() error {
	g.form.prev()
	return g.Layout(g.g)
}

func (g *Gui) doCommitEdit() error {
	g.commitEdit()
	return g.Layout(g.g)
}

// Navigation

func (g *Gui) doColumnLeft() error {
	g.currentColumn = "tree"
	return g.Layout(g.g)
}

func (g *Gui) doColumnRight() error {
	g.currentColumn = "details"
	return g.Layout(g.g)
}

func (g *Gui) doNextColumn() error {
	if g.currentColumn == "tree" {
		g.currentColumn = "details"
	} else {
		g.currentColumn = "tree"
	}
	return g.Layout(g.g)
}

func (g *Gui) doCursorUp() error {
	if g.currentColumn == "details" {
		return g.doScrollUp()
	}
	if g.cursor > 0 {
		g.cursor--
	}
	g.followSel = false
	return g.Layout(g.g)
}

func (g *Gui) doCursorDown() error {
	if g.currentColumn == "details" {
		return g.doScrollDown()
	}
	if g.cursor < len(g.rows)-1 {
		g.cursor++
	}
	g.followSel = false
	return g.Layout(g.g)
}

func (g *Gui) doScrollUp() error {
	if g.detailsScrollPos > 0 {
		g.detailsScrollPos--
	}
	return g.Layout(g.g)
}

func (g *Gui) doScrollDown() error {
	g.detailsScrollPos++
	return g.Layout(g.g)
}

func (g *Gui) currentRow() (treeRow, bool) {
	if g.cursor < 0 || g.cursor >= len(g.rows) {
		return treeRow{}, false
	}
	return g.rows[g.cursor], true
}

// doSpace selects an item, toggles a container or section, or loads more
// items of a section.
func (g *Gui) doSpace() error {
	if g.currentColumn != "tree" {
		return nil
	}
	r, ok := g.currentRow()
	if !ok {
		return nil
	}
	switch r.Kind {
	case rowContainer, rowSection:
		g.exp.toggle(r)
	case rowItem:
		g.selectItem(r.Item)
	case rowMore:
		g.showMore(r.Section)
	}
	return g.Layout(g.g)
}

// doEnter selects like space and moves to the details panel.
func (g *Gui) doEnter() error {
	if g.currentColumn != "tree" {
		return nil
	}
	r, ok := g.currentRow()
	if ok && r.Kind == rowItem {
		g.selectItem(r.Item)
		g.currentColumn = "details"
		return g.Layout(g.g)
	}
	return g.doSpace()
}

func (g *Gui) doStartFilter() error {
	return g.startFilter()
}

// doBeginEdit edits the item under the cursor, or the selection when the
// details panel is focused. On a module row it renames the module.
func (g *Gui) doBeginEdit() error {
	id := g.snap.Selected
	if g.currentColumn == "tree" {
		if r, ok := g.currentRow(); ok {
			switch r.Kind {
			case rowItem:
				id = r.Item
			case rowContainer:
				g.inputModule = r.Container
				return g.startInput(inputModuleName, r.Container)
			}
		}
	}
	if id.IsZero() {
		return nil
	}
	if !id.Kind.Editable() {
		g.logCommand("edit", string(id.Kind)+" items are read-only", "error")
		return g.Layout(g.g)
	}
	g.beginEdit(id)
	return g.Layout(g.g)
}

func (g *Gui) doShowMore() error {
	r, ok := g.currentRow()
	if !ok || r.Kind == rowContainer {
		return nil
	}
	g.showMore(r.Section)
	return g.Layout(g.g)
}

func (g *Gui) doRefresh() error {
	g.refresh()
	return g.Layout(g.g)
}

func (g *Gui) doSave() error {
	if g.snap.Path == "" {
		return g.startInput(inputSavePath, "")
	}
	g.saveFile("")
	return g.Layout(g.g)
}

func (g *Gui) doSaveAs() error {
	return g.startInput(inputSavePath, g.snap.Path)
}

func (g *Gui) doNew() error {
	g.createEmpty()
	return g.Layout(g.g)
}

func (g *Gui) doOpenPicker() error {
	g.buildOpenPicker()
	g.pickerOpen = true
	return g.Layout(g.g)
}

func (g *Gui) doImportPicker() error {
	g.buildImportPicker()
	g.pickerOpen = true
	return g.Layout(g.g)
}

func (g *Gui) doPreview() error {
	g.previewExport()
	return g.Layout(g.g)
}

func (g *Gui) doDescribeProject() error {
	if g.snap.Metadata == nil {
		return nil
	}
	return g.startInput(inputProjectDescription, g.snap.Metadata.ProjectLongIdentifier)
}

// doDescribeModule edits the description of the module under the cursor,
// or of the selected item's module.
func (g *Gui) doDescribeModule() error {
	module := g.snap.Selected.Container
	if r, ok := g.currentRow(); ok && g.currentColumn == "tree" {
		module = r.Container
	}
	if module == "" {
		return nil
	}
	g.inputModule = module
	return g.startInput(inputModuleDescription, g.containerLongIdentifier(module))
}

func (g *Gui) doCopyJSON() error {
	return g.copyJSONAction()
}

// Mouse click handlers

func (g *Gui) clickedLine(view string) (int, bool) {
	v, _ := g.g.View(view)
	if v == nil {
		return 0, false
	}
	_, cy := v.Cursor()
	_, oy := v.Origin()
	return cy + oy, true
}

func (g *Gui) doHelpClick() error {
	if line, ok := g.clickedLine("helpModal"); ok && g.helpPopup != nil {
		g.helpPopup.Select(line)
	}
	return g.Layout(g.g)
}

func (g *Gui) doPickerClick() error {
	if line, ok := g.clickedLine("picker"); ok && g.picker != nil {
		g.picker.Select(line)
	}
	return g.Layout(g.g)
}

func (g *Gui) doTreeClick() error {
	if g.isModalOpen() {
		return g.doOutsideClick()
	}
	g.currentColumn = "tree"
	if line, ok := g.clickedLine("tree"); ok && line < len(g.rows) {
		g.cursor = line
		g.followSel = false
	}
	return g.Layout(g.g)
}

func (g *Gui) doDetailsClick() error {
	if g.isModalOpen() {
		return g.doOutsideClick()
	}
	g.currentColumn = "details"
	return g.Layout(g.g)
}

func (g *Gui) doOutsideClick() error {
	g.helpOpen = false
	g.helpPopup = nil
	g.pickerOpen = false
	g.picker = nil
	g.modalOpen = false
	return g.Layout(g.g)
}
