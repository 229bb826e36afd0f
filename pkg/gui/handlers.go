package gui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/marjoballabani/lazya2l/pkg/calib"
	"github.com/marjoballabani/lazya2l/pkg/recent"
	"github.com/marjoballabani/lazya2l/pkg/session"
	"github.com/pkg/errors"
)

func (g *Gui) isModalOpen() bool {
	return g.helpOpen || g.modalOpen || g.pickerOpen
}

func (g *Gui) openFile(path string) {
	g.async("open", fmt.Sprintf("Opening %s", filepath.Base(path)), func(ctx context.Context) error {
		return g.sess.Open(ctx, path)
	}, func(err error) {
		if err != nil {
			g.report("open", "", err)
			return
		}
		g.form = nil
		g.preview = ""
		g.followSel = true
		g.detailsScrollPos = 0
		g.report("open", g.datasetSummary(), nil)
	})
}

func (g *Gui) createEmpty() {
	g.async("new", "Creating empty dataset", g.sess.CreateEmpty, func(err error) {
		g.form = nil
		g.preview = ""
		g.report("new", "Created empty dataset", err)
	})
}

func (g *Gui) saveFile(path string) {
	g.async("save", "Saving", func(ctx context.Context) error {
		return g.sess.Save(ctx, path)
	}, func(err error) {
		g.report("save", fmt.Sprintf("Saved %s", g.sess.Snapshot().Path), err)
	})
}

func (g *Gui) previewExport() {
	var text string
	g.async("preview", "Rendering A2L", func(ctx context.Context) error {
		var err error
		text, err = g.sess.Export(ctx)
		return err
	}, func(err error) {
		if err == nil {
			g.preview = text
			g.detailsScrollPos = 0
			g.currentColumn = "details"
		}
		g.report("preview", fmt.Sprintf("%d lines", strings.Count(text, "\n")), err)
	})
}

// updateProjectDescription keeps the project name and header comment.
func (g *Gui) updateProjectDescription(text string) {
	md := g.snap.Metadata
	if md == nil {
		return
	}
	name, comment := md.ProjectName, md.HeaderComment
	g.async("project", "Updating project", func(ctx context.Context) error {
		return g.sess.UpdateProject(ctx, name, text, comment)
	}, func(err error) {
		g.preview = ""
		g.report("project", fmt.Sprintf("Described %s as %q", name, text), err)
	})
}

// updateModule renames a module and sets its description.
func (g *Gui) updateModule(name, newName, longIdentifier string) {
	g.async("module", fmt.Sprintf("Updating module %s", name), func(ctx context.Context) error {
		return g.sess.UpdateModule(ctx, name, newName, longIdentifier)
	}, func(err error) {
		if errors.Is(err, session.ErrBusy) {
			g.logCommand("module", "Finish or cancel the open edit first", "error")
			return
		}
		g.report("module", fmt.Sprintf("Updated module %s", newName), err)
	})
}

// containerLongIdentifier returns the description of the module with id.
func (g *Gui) containerLongIdentifier(id string) string {
	for _, c := range g.snap.Tree {
		if c.ID == id {
			return c.LongIdentifier
		}
	}
	return ""
}

func (g *Gui) refresh() {
	g.async("refresh", "Refreshing tree", g.sess.Refresh, func(err error) {
		g.followSel = true
		g.report("refresh", fmt.Sprintf("%d items", calib.CountItems(g.sess.Snapshot().Tree)), err)
	})
}

func (g *Gui) showMore(id calib.SectionID) {
	g.async("more", fmt.Sprintf("Loading more of %s", id), func(ctx context.Context) error {
		return g.sess.ShowMore(ctx, id)
	}, func(err error) {
		g.report("more", fmt.Sprintf("Loaded more of %s", id), err)
	})
}

func (g *Gui) selectItem(id calib.ItemID) {
	if err := g.sess.Select(id); err != nil {
		if errors.Is(err, session.ErrBusy) {
			g.logCommand("select", "Finish or cancel the open edit first", "error")
			return
		}
		g.report("select", "", err)
		return
	}
	g.preview = ""
	g.detailsScrollPos = 0
}

func (g *Gui) beginEdit(id calib.ItemID) {
	g.async("edit", fmt.Sprintf("Fetching %s", id.Name), func(ctx context.Context) error {
		return g.sess.BeginEdit(ctx, id)
	}, func(err error) {
		if err != nil {
			g.report("edit", "", err)
			return
		}
		snap := g.sess.Snapshot()
		if snap.Edit == nil {
			return
		}
		g.form = newEditForm(snap.Edit.ID, snap.Edit.Buffer)
		g.currentColumn = "details"
		g.detailsScrollPos = 0
		g.logCommand("edit", fmt.Sprintf("Editing %s", id.Name), "success")
	})
}

func (g *Gui) commitEdit() {
	if g.form == nil {
		return
	}
	e, err := g.form.entity()
	if err != nil {
		g.form.Err = err.Error()
		return
	}
	form := g.form
	g.async("commit", fmt.Sprintf("Saving %s", form.ID.Name), func(ctx context.Context) error {
		return g.sess.CommitEdit(ctx, e)
	}, func(err error) {
		if err != nil {
			form.Err = err.Error()
			g.report("commit", "", err)
			return
		}
		if g.form == form {
			g.form = nil
			g.currentColumn = "tree"
		}
		g.followSel = true
		g.report("commit", fmt.Sprintf("Updated %s", e.Base().Name), nil)
	})
}

func (g *Gui) cancelEdit() {
	g.sess.CancelEdit()
	g.form = nil
	g.currentColumn = "tree"
	g.logCommand("edit", "Edit cancelled", "success")
}

// importSymbols reads an ELF file and merges its symbols into the module
// of the current selection, or the first module.
func (g *Gui) importSymbols(path string) {
	container := g.snap.Selected.Container
	g.async("import", fmt.Sprintf("Reading symbols from %s", filepath.Base(path)), func(ctx context.Context) error {
		symbols, err := g.sess.LoadSymbols(ctx, path)
		if err != nil {
			return err
		}
		created, err := g.sess.ImportSymbols(ctx, container, symbols)
		if err != nil {
			return err
		}
		g.logger.Printf("gui: imported %d of %d symbols from %s", created, len(symbols), path)
		return nil
	}, func(err error) {
		g.report("import", fmt.Sprintf("Imported symbols from %s", filepath.Base(path)), err)
	})
}

func (g *Gui) datasetSummary() string {
	snap := g.sess.Snapshot()
	if snap.Metadata == nil {
		return "No dataset"
	}
	md := snap.Metadata
	s := fmt.Sprintf("%s: %d modules", md.ProjectName, len(md.ModuleNames))
	if md.WarningCount > 0 {
		s += fmt.Sprintf(", %d warnings", md.WarningCount)
	}
	return s
}

// Popups

func (g *Gui) buildHelpPopup() {
	items := []PopupItem{
		{Label: "Global", IsHeader: true},
		{Key: "←/→ h/l", Label: "Switch panels"},
		{Key: "↑/↓ j/k", Label: "Move up/down"},
		{Key: "/", Label: "Filter", Action: g.doStartFilter},
		{Key: "o", Label: "Open file", Action: g.doOpenPicker},
		{Key: "w", Label: "Save file", Action: g.doSave},
		{Key: "W", Label: "Save as", Action: g.doSaveAs},
		{Key: "n", Label: "New empty dataset", Action: g.doNew},
		{Key: "i", Label: "Import ELF symbols", Action: g.doImportPicker},
		{Key: "p", Label: "Describe project", Action: g.doDescribeProject},
		{Key: "x", Label: "Preview A2L", Action: g.doPreview},
		{Key: "r", Label: "Refresh", Action: g.doRefresh},
		{Key: "@", Label: "Command log", Action: g.doToggleModal},
		{Key: "?", Label: "This help"},
		{Key: "q", Label: "Quit", Action: g.doQuit},
		{Label: g.getPanelName(), IsHeader: true},
	}

	switch {
	case g.form != nil:
		items = append(items,
			PopupItem{Key: "Tab / ↓", Label: "Next field"},
			PopupItem{Key: "↑", Label: "Previous field"},
			PopupItem{Key: "Ctrl+S", Label: "Apply changes", Action: g.doCommitEdit},
			PopupItem{Key: "Esc", Label: "Discard changes", Action: g.doEscape},
		)
	case g.currentColumn == "tree":
		items = append(items,
			PopupItem{Key: "Space", Label: "Select / Expand", Action: g.doSpace},
			PopupItem{Key: "e", Label: "Edit entity / rename module", Action: g.doBeginEdit},
			PopupItem{Key: "d", Label: "Describe module", Action: g.doDescribeModule},
			PopupItem{Key: "m", Label: "Show more items", Action: g.doShowMore},
			PopupItem{Key: "c", Label: "Copy JSON to clipboard", Action: g.doCopyJSON},
		)
	case g.currentColumn == "details":
		items = append(items,
			PopupItem{Key: "j/k", Label: "Scroll content"},
			PopupItem{Key: "e", Label: "Edit entity", Action: g.doBeginEdit},
			PopupItem{Key: "c", Label: "Copy JSON to clipboard", Action: g.doCopyJSON},
		)
	}

	g.helpPopup = NewPopup("Keyboard Shortcuts", items, g.theme, g.views.helpModal)
}

func (g *Gui) recentItems(kind recent.Kind, open func(path string)) []PopupItem {
	var items []PopupItem
	for _, e := range g.sess.Recents(kind) {
		path := e.Location
		items = append(items, PopupItem{
			Key:   e.Name,
			Label: path,
			Action: func() error {
				open(path)
				return nil
			},
		})
	}
	return items
}

func (g *Gui) buildOpenPicker() {
	items := []PopupItem{
		{Label: "Open", IsHeader: true},
		{Key: "path", Label: "Type a path…", Action: func() error { return g.startInput(inputOpenPath, "") }},
		{Key: "new", Label: "Empty dataset", Action: g.doNew},
	}
	if rec := g.recentItems(recent.KindA2L, g.openFile); len(rec) > 0 {
		items = append(items, PopupItem{Label: "Recent", IsHeader: true})
		items = append(items, rec...)
	}
	g.picker = NewPopup("Open A2L", items, g.theme, g.views.picker)
}

func (g *Gui) buildImportPicker() {
	items := []PopupItem{
		{Label: "Import", IsHeader: true},
		{Key: "path", Label: "Type a path…", Action: func() error { return g.startInput(inputImportPath, "") }},
	}
	if rec := g.recentItems(recent.KindELF, g.importSymbols); len(rec) > 0 {
		items = append(items, PopupItem{Label: "Recent", IsHeader: true})
		items = append(items, rec...)
	}
	g.picker = NewPopup("Import ELF symbols", items, g.theme, g.views.picker)
}

func (g *Gui) getPanelName() string {
	return g.getPanelNameFor(g.currentColumn)
}

func (g *Gui) getPanelNameFor(panel string) string {
	switch panel {
	case "tree":
		return "Tree"
	case "details":
		if g.form != nil {
			return "Edit"
		}
		return "Details"
	default:
		return "Panel"
	}
}
