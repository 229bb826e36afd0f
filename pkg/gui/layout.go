package gui

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jesseduffield/gocui"
	"github.com/marjoballabani/lazya2l/pkg/calib"
	"github.com/marjoballabani/lazya2l/pkg/gui/icons"
	"github.com/marjoballabani/lazya2l/pkg/recent"
	"github.com/marjoballabani/lazya2l/pkg/search"
	"github.com/marjoballabani/lazya2l/pkg/session"
)

// sync pulls the session state the frame is drawn from.
func (g *Gui) sync() {
	g.snap = g.sess.Snapshot()
	if g.form != nil && g.snap.State != session.Editing {
		g.form = nil
	}
	if g.followSel {
		g.exp.reveal(g.snap.Selected)
	}
	g.rows = buildRows(g.snap.View, g.exp, g.snap.Query != "")
	if g.followSel {
		if i := rowIndex(g.rows, g.snap.Selected); i >= 0 {
			g.cursor = i
		}
		g.followSel = false
	}
	g.cursor = clampIndex(g.cursor, len(g.rows))
}

func (g *Gui) Layout(gui *gocui.Gui) error {
	g.sync()
	maxX, maxY := gui.Size()

	if v, err := gui.SetView(g.views.background, -1, -1, maxX, maxY, 0); err != nil {
		if !errors.Is(err, gocui.ErrUnknownView) {
			return err
		}
		v.Frame = false
		v.BgColor = gocui.ColorDefault
		v.FgColor = gocui.ColorDefault
	}

	leftWidth := maxX / 3
	commandsHeight := 3

	// Tree panel (left, full height)
	if v, err := gui.SetView(g.views.tree, 0, 0, leftWidth-1, maxY-3, 0); err != nil {
		if !errors.Is(err, gocui.ErrUnknownView) {
			return err
		}
		g.initPanel(v)
	}
	if v, err := gui.View(g.views.tree); err == nil {
		g.stylePanel(gui, v, "tree")
		v.Title = " " + icons.TREE_ICON + " " + g.treeTitle() + " "
		switch {
		case g.hasActiveFilter("tree"):
			v.Footer = fmt.Sprintf("%d/%d matched", calib.CountItems(g.snap.View), calib.CountItems(g.snap.Tree))
		case len(g.rows) > 0:
			v.Footer = fmt.Sprintf("%d of %d", g.cursor+1, len(g.rows))
		default:
			v.Footer = "0 of 0"
		}
		g.updateTreeView(v)
	}

	// Details panel (top-right, big)
	if v, err := gui.SetView(g.views.details, leftWidth, 0, maxX-1, maxY-commandsHeight-3, 0); err != nil {
		if !errors.Is(err, gocui.ErrUnknownView) {
			return err
		}
		g.initPanel(v)
		v.Wrap = true
		v.SelBgColor = gocui.ColorDefault
	}
	if v, err := gui.View(g.views.details); err == nil {
		g.stylePanel(gui, v, "details")
		v.Title = " " + icons.DETAILS_ICON + " " + g.getPanelName() + " "
		if g.form != nil {
			v.Title = " " + icons.EDIT + " Edit " + g.form.ID.Name + " "
		}
		g.updateDetailsView(v)
		v.SetOrigin(0, g.detailsScrollPos)
	}

	// Commands panel (bottom-right, single row)
	if v, err := gui.SetView(g.views.commands, leftWidth, maxY-commandsHeight-2, maxX-1, maxY-3, 0); err != nil {
		if !errors.Is(err, gocui.ErrUnknownView) {
			return err
		}
		g.initPanel(v)
		v.Title = " " + icons.COMMAND_ICON + " Commands "
		v.SelBgColor = gocui.ColorDefault
	}
	if v, err := gui.View(g.views.commands); err == nil {
		g.updateCommandsView(v)
	}

	// Help bar (bottom, full width)
	if v, err := gui.SetView(g.views.help, 0, maxY-2, maxX-1, maxY, 0); err != nil {
		if !errors.Is(err, gocui.ErrUnknownView) {
			return err
		}
		v.Frame = false
		v.BgColor = gocui.ColorDefault
		v.FgColor = gocui.ColorDefault
	}
	if v, err := gui.View(g.views.help); err == nil {
		g.updateHelpView(v)
	}

	if g.helpOpen && g.helpPopup != nil {
		return g.layoutPopup(gui, g.views.helpModal, " "+icons.KEYBOARD_ICON+" Keyboard Shortcuts ", g.helpPopup, 50)
	}
	gui.DeleteView(g.views.helpModal)

	if g.pickerOpen && g.picker != nil {
		return g.layoutPopup(gui, g.views.picker, " "+g.picker.Title+" ", g.picker, maxX*2/3)
	}
	gui.DeleteView(g.views.picker)

	if g.modalOpen {
		return g.layoutCommandLog(gui)
	}
	gui.DeleteView(g.views.modal)

	viewName := g.views.tree
	if g.currentColumn == "details" {
		viewName = g.views.details
	}
	if _, err := gui.SetCurrentView(viewName); err != nil {
		return fmt.Errorf("failed to set current view '%s': %w", viewName, err)
	}
	return nil
}

func (g *Gui) initPanel(v *gocui.View) {
	v.TitleColor = g.theme.InactiveBorderColor
	v.BgColor = gocui.ColorDefault
	v.FgColor = gocui.ColorDefault
	v.SelBgColor = g.theme.SelectedLineBgColor
	v.SelFgColor = gocui.ColorDefault
	v.FrameRunes = g.roundedFrameRunes
}

// stylePanel colors the frame by panel state; the details panel takes the
// edit color while the form is open.
func (g *Gui) stylePanel(gui *gocui.Gui, v *gocui.View, panel string) {
	focused := g.currentColumn == panel
	filtering := g.isFilteringPanel(panel) || focused && g.hasActiveFilter(panel)
	editing := panel == "details" && g.form != nil
	color := g.theme.BorderFor(focused, filtering, editing)
	if focused {
		// gocui uses the global colors for the focused view
		gui.SelFrameColor = color
		gui.SelFgColor = color
	}
	v.TitleColor = color
	v.FrameColor = color
}

func (g *Gui) layoutPopup(gui *gocui.Gui, name, title string, p *Popup, width int) error {
	maxX, maxY := gui.Size()
	height := p.Height() + 1
	if height > maxY-4 {
		height = maxY - 4
	}
	if width > maxX-4 {
		width = maxX - 4
	}
	x := (maxX - width) / 2
	y := (maxY - height) / 2

	if v, err := gui.SetView(name, x, y, x+width, y+height, 0); err != nil {
		if !errors.Is(err, gocui.ErrUnknownView) {
			return err
		}
		v.Title = title
		v.TitleColor = g.theme.ActiveBorderColor
		v.FrameColor = g.theme.ActiveBorderColor
		v.FrameRunes = g.roundedFrameRunes
	}
	if v, err := gui.View(name); err == nil {
		p.Render(v)
		if _, err := gui.SetCurrentView(name); err != nil {
			return fmt.Errorf("failed to set %s view: %w", name, err)
		}
	}
	return nil
}

func (g *Gui) layoutCommandLog(gui *gocui.Gui) error {
	maxX, maxY := gui.Size()
	width := maxX - 10
	height := maxCommandHistory + 5
	if height > maxY-6 {
		height = maxY - 6
	}
	x := (maxX - width) / 2
	y := (maxY - height) / 2

	if v, err := gui.SetView(g.views.modal, x, y, x+width, y+height, 0); err != nil {
		if !errors.Is(err, gocui.ErrUnknownView) {
			return err
		}
		v.Title = " Command Log "
		v.BgColor = gocui.ColorDefault
		v.FgColor = gocui.ColorDefault
		v.FrameRunes = g.roundedFrameRunes
		v.Wrap = true
	}
	if v, err := gui.View(g.views.modal); err == nil {
		v.Clear()
		if len(g.commandHistory) == 0 {
			fmt.Fprintln(v, "  No commands yet")
		}
		for _, cmd := range g.commandHistory {
			fmt.Fprintf(v, "  [%s] %s%s\033[0m: %s\n", cmd.Timestamp, statusColor(cmd.Status), cmd.Command, cmd.Description)
		}
		fmt.Fprintln(v, "")
		fmt.Fprintln(v, "  \033[36mPress Esc or @ to close\033[0m")
		if _, err := gui.SetCurrentView(g.views.modal); err != nil {
			return fmt.Errorf("failed to set modal view: %w", err)
		}
	}
	return nil
}

func (g *Gui) treeTitle() string {
	if g.snap.Metadata == nil {
		return "Tree"
	}
	title := g.snap.Metadata.ProjectName
	if title == "" {
		title = "Project"
	}
	if g.snap.Dirty {
		title += " [+]"
	}
	return title
}

func (g *Gui) updateTreeView(v *gocui.View) {
	v.Clear()
	if g.snap.Metadata == nil {
		v.Highlight = false
		fmt.Fprint(v, "\033[90mNo dataset open\033[0m")
		return
	}
	if len(g.rows) == 0 {
		v.Highlight = false
		if g.snap.Query != "" {
			fmt.Fprint(v, "\033[90mNothing matches\033[0m")
		}
		return
	}

	v.Highlight = g.currentColumn == "tree"
	for _, r := range g.rows {
		fmt.Fprintln(v, g.treeLine(r))
	}
	v.FocusPoint(0, g.cursor, true)
}

// treeLine renders one tree row.
func (g *Gui) treeLine(r treeRow) string {
	indent := strings.Repeat("  ", r.Depth)
	marker := " "
	if r.Kind == rowItem && r.Item == g.snap.Selected {
		marker = g.getActiveColorCode() + "*\033[0m"
	}

	switch r.Kind {
	case rowContainer, rowSection:
		icon := icons.FOLDER_CLOSED
		arrow := icons.ARROW_EXPAND
		if r.Expanded {
			icon = icons.FOLDER_OPEN
			arrow = icons.ARROW_COLLAPSE
		}
		label := r.Label
		if r.Kind == rowContainer {
			label = "\033[1m" + label + "\033[0m"
		}
		return fmt.Sprintf("%s%s%s %s", marker, indent, arrow, withIcon(icon, label))
	case rowMore:
		return fmt.Sprintf("%s%s\033[90m%s (m)\033[0m", marker, indent, r.Label)
	}
	label := r.Label
	if !r.Item.Kind.Editable() {
		label = "\033[90m" + label + "\033[0m"
	}
	return fmt.Sprintf("%s%s└─%s", marker, indent, withIcon(icons.DOCUMENT, label))
}

func withIcon(icon, label string) string {
	if icon == "" {
		return label
	}
	return icon + " " + label
}

func (g *Gui) updateDetailsView(v *gocui.View) {
	switch {
	case g.form != nil:
		v.SetContent(renderForm(g.form, g.snap.Edit != nil && g.snap.Edit.Committing))
	case g.snap.Metadata == nil:
		v.SetContent(g.welcome())
	case g.preview != "":
		v.SetContent(g.preview)
	case g.snap.Item == nil:
		v.SetContent(g.datasetDetails())
	case g.detailsFilter != "":
		doc, _ := g.detailsDocument()
		g.renderFilteredDetails(v, doc)
	default:
		v.SetContent(g.itemDetails(*g.snap.Item))
	}
}

func (g *Gui) itemDetails(it calib.Item) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\033[36m─── %s ───\033[0m\n", it.Name)
	fmt.Fprintf(&b, "\033[90m%s in %s\033[0m\n\n", it.Kind, it.ID.Container)
	if it.Description != nil && *it.Description != "" {
		fmt.Fprintf(&b, "  %s\n\n", *it.Description)
	}
	b.WriteString(renderDetailPairs(it.Details))

	if data, err := json.MarshalIndent(search.Document(it), "", "  "); err == nil {
		b.WriteString("\n\033[36m─── JSON ───\033[0m\n")
		b.WriteString(g.colors.JSON(string(data)))
		b.WriteString("\n")
	}
	if g.snap.Fetching {
		b.WriteString("\n" + g.getLoadingText("Fetching entity...") + "\n")
	} else if it.Kind.Editable() {
		b.WriteString("\n\033[90m  Press e to edit\033[0m\n")
	}
	return b.String()
}

// renderDetailPairs aligns label/value pairs in two columns.
func renderDetailPairs(pairs []calib.DetailPair) string {
	width := 0
	for _, p := range pairs {
		if len(p.Label) > width {
			width = len(p.Label)
		}
	}
	var b strings.Builder
	for _, p := range pairs {
		fmt.Fprintf(&b, "  \033[33m%-*s\033[0m  %s\n", width+1, p.Label+":", p.Value)
	}
	return b.String()
}

// renderForm draws the edit form. The active field carries a cursor.
func renderForm(f *editForm, committing bool) string {
	width := 0
	for _, fd := range f.Fields {
		if len(fd.Label) > width {
			width = len(fd.Label)
		}
	}
	var b strings.Builder
	fmt.Fprintf(&b, "\033[35m─── %s %s ───\033[0m\n\n", f.kind, f.ID.Name)
	for i, fd := range f.Fields {
		pointer, value := "  ", fd.Value
		if i == f.Active {
			pointer = "\033[35m>\033[0m "
			value += "\033[7m \033[0m"
		}
		fmt.Fprintf(&b, "%s\033[33m%-*s\033[0m  %s\n", pointer, width+1, fd.Label+":", value)
	}
	b.WriteString("\n")
	switch {
	case committing:
		b.WriteString("\033[33m  Applying...\033[0m\n")
	case f.Err != "":
		fmt.Fprintf(&b, "\033[31m  %s\033[0m\n", f.Err)
	}
	b.WriteString("\033[90m  Tab next field · Ctrl+S apply · Esc discard\033[0m\n")
	return b.String()
}

func (g *Gui) datasetDetails() string {
	md := g.snap.Metadata
	var b strings.Builder
	b.WriteString("\033[36m─── Project ───\033[0m\n\n")
	pairs := []calib.DetailPair{
		{Label: "Name", Value: md.ProjectName},
		{Label: "Description", Value: md.ProjectLongIdentifier},
		{Label: "Modules", Value: strings.Join(md.ModuleNames, ", ")},
	}
	if md.ASAP2Version != nil {
		pairs = append(pairs, calib.DetailPair{Label: "ASAP2 version", Value: *md.ASAP2Version})
	}
	if md.HeaderComment != nil {
		pairs = append(pairs, calib.DetailPair{Label: "Header", Value: *md.HeaderComment})
	}
	if md.WarningCount > 0 {
		pairs = append(pairs, calib.DetailPair{Label: "Warnings", Value: fmt.Sprint(md.WarningCount)})
	}
	if g.snap.Path != "" {
		pairs = append(pairs, calib.DetailPair{Label: "File", Value: g.snap.Path})
	}
	pairs = append(pairs, calib.DetailPair{Label: "Items", Value: fmt.Sprint(calib.CountItems(g.snap.Tree))})
	if n := len(g.snap.Symbols); n > 0 {
		pairs = append(pairs, calib.DetailPair{Label: "Symbols read", Value: fmt.Sprint(n)})
	}
	b.WriteString(renderDetailPairs(pairs))
	b.WriteString("\n\033[90m  Select an item in the tree\033[0m\n")
	return b.String()
}

func (g *Gui) welcome() string {
	var b strings.Builder
	b.WriteString("\n\033[36m  L A Z Y A 2 L\033[0m\n\n")
	b.WriteString("\033[90m  o  open an A2L file\033[0m\n")
	b.WriteString("\033[90m  n  start an empty dataset\033[0m\n")
	b.WriteString("\033[90m  ?  all keys\033[0m\n")
	if rec := g.sess.Recents(recent.KindA2L); len(rec) > 0 {
		b.WriteString("\n\033[36m─── Recent ───\033[0m\n")
		for _, e := range rec {
			fmt.Fprintf(&b, "  \033[33m%s\033[0m  %s\n", e.Name, filepath.Dir(e.Location))
		}
	}
	return b.String()
}

func statusColor(status string) string {
	switch status {
	case "error":
		return "\033[31m"
	case "running":
		return "\033[33m"
	}
	return "\033[32m"
}

func (g *Gui) updateCommandsView(v *gocui.View) {
	v.Clear()
	if len(g.commandHistory) == 0 {
		return
	}
	cmd := g.commandHistory[len(g.commandHistory)-1]

	var statusIcon string
	switch cmd.Status {
	case "running":
		statusIcon = icons.LOADING
	case "error":
		statusIcon = icons.ERROR
	case "success":
		statusIcon = icons.SUCCESS
	default:
		statusIcon = "•"
	}
	if g.isAnyLoading() {
		fmt.Fprint(v, g.getLoadingText(""))
	}
	fmt.Fprintf(v, "%s%s %s\033[0m %s", statusColor(cmd.Status), statusIcon, cmd.Command, cmd.Description)
}

func (g *Gui) updateHelpView(v *gocui.View) {
	v.Clear()

	if g.inputActive {
		before := g.inputText[:g.inputCursor]
		after := g.inputText[g.inputCursor:]
		cursorChar, rest := " ", ""
		if r := []rune(after); len(r) > 0 {
			cursorChar, rest = string(r[0]), string(r[1:])
		}
		fmt.Fprintf(v, " \033[33m%s:\033[0m %s\033[7m%s\033[0m%s  \033[90m(Enter to apply, Esc to cancel)\033[0m",
			g.inputPrompt(), before, cursorChar, rest)
		return
	}

	if g.form != nil {
		fmt.Fprintf(v, " %s-- EDIT --\033[0m  \033[90mTab/↑↓ fields · Ctrl+S apply · Esc discard\033[0m", g.theme.EditAnsi())
		return
	}

	if g.preview != "" {
		fmt.Fprint(v, " \033[36m-- A2L PREVIEW --\033[0m  \033[90mj/k scroll · Esc close\033[0m")
		return
	}

	if filter := g.getFilterForPanel(g.currentColumn); filter != "" {
		fmt.Fprintf(v, " %s%s filtered:\033[0m '%s'  \033[90m(Esc to clear filter)\033[0m", g.theme.FilterAnsi(), g.getPanelName(), filter)
		return
	}

	helpText := " \033[36mj/k\033[0m move  \033[33mspace\033[0m select  \033[33me\033[0m edit  \033[32mw\033[0m save  \033[32mo\033[0m open  \033[32mi\033[0m import  \033[35m/\033[0m filter  \033[35m?\033[0m help  \033[31mq\033[0m quit"
	versionText := fmt.Sprintf("\033[90mv%s\033[0m ", g.version)

	width, _ := v.Size()
	helpLen := 88 // visible length without ANSI codes
	padding := width - helpLen - len(g.version) - 2
	if padding < 1 {
		padding = 1
	}
	fmt.Fprintf(v, "%s%*s%s", helpText, padding, "", versionText)
}
