package gui

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/itchyny/gojq"
	"github.com/jesseduffield/gocui"
	"github.com/marjoballabani/lazya2l/pkg/search"
)

// startInput opens the bottom bar for typing. Filters start from their
// current value so they can be refined.
func (g *Gui) startInput(purpose inputPurpose, initial string) error {
	g.inputActive = true
	g.inputPurpose = purpose
	g.inputText = initial
	g.inputCursor = len(initial)
	return g.Layout(g.g)
}

func (g *Gui) startFilter() error {
	if g.currentColumn == "details" {
		return g.startInput(inputDetailsFilter, g.detailsFilter)
	}
	return g.startInput(inputTreeFilter, g.snap.Query)
}

// commitInput acts on the typed text and closes the bar.
func (g *Gui) commitInput() error {
	text := strings.TrimSpace(g.inputText)
	purpose := g.inputPurpose
	g.closeInput()

	switch purpose {
	case inputTreeFilter:
		g.sess.SetQuery(text)
		g.cursor = 0
		g.followSel = true
	case inputDetailsFilter:
		g.detailsFilter = text
		g.detailsScrollPos = 0
	case inputOpenPath:
		if text != "" {
			g.openFile(text)
		}
	case inputSavePath:
		if text != "" {
			g.saveFile(text)
		}
	case inputImportPath:
		if text != "" {
			g.importSymbols(text)
		}
	case inputProjectDescription:
		g.updateProjectDescription(text)
	case inputModuleName:
		if text != "" && text != g.inputModule {
			g.updateModule(g.inputModule, text, g.containerLongIdentifier(g.inputModule))
		}
	case inputModuleDescription:
		g.updateModule(g.inputModule, g.inputModule, text)
	}
	return g.Layout(g.g)
}

func (g *Gui) closeInput() {
	g.inputActive = false
	g.inputText = ""
	g.inputCursor = 0
}

func (g *Gui) cancelInput() error {
	g.closeInput()
	return g.Layout(g.g)
}

func (g *Gui) isFilteringPanel(panel string) bool {
	if !g.inputActive {
		return false
	}
	switch g.inputPurpose {
	case inputTreeFilter:
		return panel == "tree"
	case inputDetailsFilter:
		return panel == "details"
	}
	return false
}

func (g *Gui) getFilterForPanel(panel string) string {
	switch panel {
	case "tree":
		return g.snap.Query
	case "details":
		return g.detailsFilter
	}
	return ""
}

func (g *Gui) hasActiveFilter(panel string) bool {
	return g.getFilterForPanel(panel) != ""
}

func (g *Gui) clearCurrentFilter() error {
	switch g.currentColumn {
	case "tree":
		g.sess.SetQuery("")
		g.followSel = true
	case "details":
		g.detailsFilter = ""
		g.detailsScrollPos = 0
	}
	return g.Layout(g.g)
}

func (g *Gui) inputBackspace() error {
	if g.inputCursor > 0 {
		r := []rune(g.inputText)
		pos := len([]rune(g.inputText[:g.inputCursor]))
		g.inputText = string(append(r[:pos-1], r[pos:]...))
		g.inputCursor = len(string(r[:pos-1]))
	}
	return g.Layout(g.g)
}

// insertInputChar inserts a character at the cursor position
func (g *Gui) insertInputChar(ch rune) error {
	s := string(ch)
	g.inputText = g.inputText[:g.inputCursor] + s + g.inputText[g.inputCursor:]
	g.inputCursor += len(s)
	return g.Layout(g.g)
}

func (g *Gui) inputPrompt() string {
	switch g.inputPurpose {
	case inputTreeFilter:
		return "Filter tree"
	case inputDetailsFilter:
		return "Filter details"
	case inputOpenPath:
		return "Open A2L"
	case inputSavePath:
		return "Save as"
	case inputImportPath:
		return "Import ELF"
	case inputProjectDescription:
		return "Project description"
	case inputModuleName:
		return "Rename module " + g.inputModule
	case inputModuleDescription:
		return "Describe module " + g.inputModule
	}
	return ""
}

// MatchesFilter checks if text contains the filter string (case-insensitive)
func MatchesFilter(text, filter string) bool {
	if filter == "" {
		return true
	}
	return strings.Contains(strings.ToLower(text), strings.ToLower(filter))
}

// detailsDocument is what the details filter and clipboard copy work on:
// the projection of the selected item.
func (g *Gui) detailsDocument() (map[string]any, bool) {
	if g.snap.Item == nil {
		return nil, false
	}
	return search.Document(*g.snap.Item), true
}

// renderFilteredDetails shows only JSON lines that match the filter.
// A filter starting with "." is run as a jq query.
func (g *Gui) renderFilteredDetails(v *gocui.View, doc map[string]any) {
	if strings.HasPrefix(g.detailsFilter, ".") {
		v.SetContent(g.jqDetails(doc, g.detailsFilter))
		return
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		v.SetContent(fmt.Sprintf("Error formatting data: %v\n", err))
		return
	}

	var content strings.Builder
	content.WriteString(fmt.Sprintf("\033[36m─── %s (filtered) ───\033[0m\n\n", g.snap.Selected))

	var matched []string
	for _, line := range strings.Split(string(data), "\n") {
		if MatchesFilter(line, g.detailsFilter) {
			matched = append(matched, line)
		}
	}
	if len(matched) == 0 {
		content.WriteString("\033[90mNo matching lines\033[0m\n")
	} else {
		content.WriteString(g.colors.JSON(strings.Join(matched, "\n")))
		content.WriteString("\n")
	}
	v.SetContent(content.String())
}

func (g *Gui) jqDetails(doc map[string]any, query string) string {
	var content strings.Builder
	content.WriteString(fmt.Sprintf("\033[36m─── %s (jq: %s) ───\033[0m\n\n", g.snap.Selected, query))

	results, err := runJQ(doc, query)
	if err != nil {
		content.WriteString(fmt.Sprintf("\033[31mjq: %v\033[0m\n", err))
		return content.String()
	}
	if len(results) == 0 {
		content.WriteString("\033[90mnull\033[0m\n")
		return content.String()
	}
	for _, r := range results {
		data, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			content.WriteString(fmt.Sprintf("%v\n", r))
			continue
		}
		content.WriteString(g.colors.JSON(string(data)))
		content.WriteString("\n")
	}
	return content.String()
}

// runJQ evaluates query against doc and collects every result.
func runJQ(doc map[string]any, query string) ([]any, error) {
	q, err := gojq.Parse(query)
	if err != nil {
		return nil, err
	}
	var out []any
	iter := q.Run(doc)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := v.(error); isErr {
			return out, err
		}
		out = append(out, v)
	}
	return out, nil
}
