package gui

import (
	"strings"
	"testing"

	"github.com/marjoballabani/lazya2l/pkg/calib"
)

func testTree() []calib.Container {
	meas := calib.SectionID{Container: "ECU", Kind: calib.KindMeasurement}
	chars := calib.SectionID{Container: "ECU", Kind: calib.KindCharacteristic}
	return []calib.Container{{
		ID:   "ECU",
		Name: "ECU",
		Sections: []calib.Section{
			{
				ID:    meas,
				Title: "Measurements",
				Kind:  calib.KindMeasurement,
				Total: 3,
				Items: []calib.Item{
					{ID: calib.NewItemID(meas, "EngineSpeed"), Name: "EngineSpeed", Kind: calib.KindMeasurement},
					{ID: calib.NewItemID(meas, "CoolantTemp"), Name: "CoolantTemp", Kind: calib.KindMeasurement},
				},
			},
			{
				ID:    chars,
				Title: "Characteristics",
				Kind:  calib.KindCharacteristic,
				Total: 1,
				Items: []calib.Item{
					{ID: calib.NewItemID(chars, "IdleTarget"), Name: "IdleTarget", Kind: calib.KindCharacteristic},
				},
			},
		},
	}}
}

func rowLabels(rows []treeRow) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Label
	}
	return out
}

func TestBuildRows(t *testing.T) {
	tree := testTree()
	meas := tree[0].Sections[0].ID

	tests := []struct {
		name      string
		setup     func(e *expansion)
		expandAll bool
		expected  []string
	}{
		{
			name:     "sections start closed",
			expected: []string{"ECU", "Measurements (3)", "Characteristics (1)"},
		},
		{
			name:     "open section shows items and a more row",
			setup:    func(e *expansion) { e.openSections[meas] = true },
			expected: []string{"ECU", "Measurements (3)", "EngineSpeed", "CoolantTemp", "… 1 more", "Characteristics (1)"},
		},
		{
			name:     "closed container hides sections",
			setup:    func(e *expansion) { e.closedContainers["ECU"] = true },
			expected: []string{"ECU"},
		},
		{
			name:      "expand all ignores expansion state",
			setup:     func(e *expansion) { e.closedContainers["ECU"] = true },
			expandAll: true,
			expected:  []string{"ECU", "Measurements (3)", "EngineSpeed", "CoolantTemp", "… 1 more", "Characteristics (1)", "IdleTarget"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exp := newExpansion()
			if tt.setup != nil {
				tt.setup(exp)
			}
			got := rowLabels(buildRows(tree, exp, tt.expandAll))
			if strings.Join(got, "|") != strings.Join(tt.expected, "|") {
				t.Errorf("buildRows() = %q, expected %q", got, tt.expected)
			}
		})
	}
}

func TestRevealOpensPathToItem(t *testing.T) {
	tree := testTree()
	exp := newExpansion()
	exp.closedContainers["ECU"] = true
	id := tree[0].Sections[1].Items[0].ID

	exp.reveal(id)
	rows := buildRows(tree, exp, false)

	i := rowIndex(rows, id)
	if i < 0 {
		t.Fatalf("item %s not in rows %q", id, rowLabels(rows))
	}
	if rows[i].Kind != rowItem || rows[i].Label != "IdleTarget" {
		t.Errorf("unexpected row %+v", rows[i])
	}
	if rowIndex(rows, calib.ItemID{}) != -1 {
		t.Error("zero id should not be found")
	}
}

func TestToggle(t *testing.T) {
	tree := testTree()
	exp := newExpansion()
	rows := buildRows(tree, exp, false)

	exp.toggle(rows[1]) // Measurements
	if n := len(buildRows(tree, exp, false)); n != 6 {
		t.Errorf("after opening a section expected 6 rows, got %d", n)
	}
	exp.toggle(rows[0]) // ECU
	if n := len(buildRows(tree, exp, false)); n != 1 {
		t.Errorf("after closing the container expected 1 row, got %d", n)
	}
}

func TestClampIndex(t *testing.T) {
	tests := []struct {
		i, n, expected int
	}{
		{i: 0, n: 0, expected: 0},
		{i: 5, n: 0, expected: 0},
		{i: -1, n: 3, expected: 0},
		{i: 2, n: 3, expected: 2},
		{i: 7, n: 3, expected: 2},
	}
	for _, tt := range tests {
		if got := clampIndex(tt.i, tt.n); got != tt.expected {
			t.Errorf("clampIndex(%d, %d) = %d, expected %d", tt.i, tt.n, got, tt.expected)
		}
	}
}

func TestRenderDetailPairsAligns(t *testing.T) {
	out := stripANSI(renderDetailPairs([]calib.DetailPair{
		{Label: "Datatype", Value: "UWORD"},
		{Label: "ECU address", Value: "0x1234"},
	}))
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %q", out)
	}
	if strings.Index(lines[0], "UWORD") != strings.Index(lines[1], "0x1234") {
		t.Errorf("values not aligned:\n%s", out)
	}
}

func TestRenderForm(t *testing.T) {
	meas := calib.SectionID{Container: "ECU", Kind: calib.KindMeasurement}
	f := newEditForm(calib.NewItemID(meas, "EngineSpeed"), &calib.Measurement{
		Common:   calib.Common{Name: "EngineSpeed", Conversion: "NO_COMPU_METHOD", UpperLimit: 8000},
		Datatype: "UWORD",
	})

	tests := []struct {
		name       string
		err        string
		committing bool
		contains   string
	}{
		{name: "fields", contains: "Upper limit:"},
		{name: "error", err: "ValidationError: bad", contains: "ValidationError: bad"},
		{name: "committing", committing: true, contains: "Applying..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f.Err = tt.err
			out := stripANSI(renderForm(f, tt.committing))
			if !strings.Contains(out, tt.contains) {
				t.Errorf("form does not contain %q:\n%s", tt.contains, out)
			}
			if !strings.Contains(out, "> Name:") {
				t.Errorf("active field not marked:\n%s", out)
			}
		})
	}
}
