package gui

import (
	"fmt"

	"github.com/marjoballabani/lazya2l/pkg/calib"
)

type rowKind int

const (
	rowContainer rowKind = iota
	rowSection
	rowItem
	rowMore
)

// treeRow is one line of the tree panel.
type treeRow struct {
	Kind      rowKind
	Depth     int
	Label     string
	Container string
	Section   calib.SectionID
	Item      calib.ItemID
	Expanded  bool
	Remaining int
}

// expansion tracks which containers and sections are open. Containers start
// open, sections start closed.
type expansion struct {
	closedContainers map[string]bool
	openSections     map[calib.SectionID]bool
}

func newExpansion() *expansion {
	return &expansion{
		closedContainers: make(map[string]bool),
		openSections:     make(map[calib.SectionID]bool),
	}
}

func (e *expansion) containerOpen(id string) bool { return !e.closedContainers[id] }

func (e *expansion) sectionOpen(id calib.SectionID) bool { return e.openSections[id] }

func (e *expansion) toggle(r treeRow) {
	switch r.Kind {
	case rowContainer:
		e.closedContainers[r.Container] = !e.closedContainers[r.Container]
	case rowSection:
		e.openSections[r.Section] = !e.openSections[r.Section]
	}
}

// reveal opens the path down to id.
func (e *expansion) reveal(id calib.ItemID) {
	if id.IsZero() {
		return
	}
	delete(e.closedContainers, id.Container)
	e.openSections[id.Section()] = true
}

// buildRows flattens containers into tree rows. With expandAll every
// container and section is shown open, which is how filter results are
// displayed.
func buildRows(containers []calib.Container, exp *expansion, expandAll bool) []treeRow {
	var rows []treeRow
	for _, c := range containers {
		open := expandAll || exp.containerOpen(c.ID)
		rows = append(rows, treeRow{
			Kind:      rowContainer,
			Label:     c.Name,
			Container: c.ID,
			Expanded:  open,
		})
		if !open {
			continue
		}
		for _, s := range c.Sections {
			secOpen := expandAll || exp.sectionOpen(s.ID)
			rows = append(rows, treeRow{
				Kind:      rowSection,
				Depth:     1,
				Label:     fmt.Sprintf("%s (%d)", s.Title, s.Total),
				Container: c.ID,
				Section:   s.ID,
				Expanded:  secOpen,
				Remaining: s.Remaining(),
			})
			if !secOpen {
				continue
			}
			for _, it := range s.Items {
				rows = append(rows, treeRow{
					Kind:      rowItem,
					Depth:     2,
					Label:     it.Name,
					Container: c.ID,
					Section:   s.ID,
					Item:      it.ID,
				})
			}
			if n := s.Remaining(); n > 0 {
				rows = append(rows, treeRow{
					Kind:      rowMore,
					Depth:     2,
					Label:     fmt.Sprintf("… %d more", n),
					Container: c.ID,
					Section:   s.ID,
					Remaining: n,
				})
			}
		}
	}
	return rows
}

// rowIndex returns the row holding id, or -1.
func rowIndex(rows []treeRow, id calib.ItemID) int {
	if id.IsZero() {
		return -1
	}
	for i, r := range rows {
		if r.Kind == rowItem && r.Item == id {
			return i
		}
	}
	return -1
}

func clampIndex(i, n int) int {
	if n == 0 || i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
