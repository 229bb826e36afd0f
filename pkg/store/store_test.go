package store

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marjoballabani/lazya2l/pkg/calib"
)

const editModule = `ASAP2_VERSION 1 71
/begin PROJECT demo "Demo"
  /begin HEADER "  header text  "
  /end HEADER
  /begin MODULE edit_module "Edit module"
    /begin MEASUREMENT EngineSpeed "Engine speed"
      UWORD NO_COMPU_METHOD 1 0 0 8000
      ECU_ADDRESS 0x1234
    /end MEASUREMENT
  /end MODULE
/end PROJECT
`

const twoModules = `ASAP2_VERSION 1 60
/begin PROJECT p "two"
  /begin MODULE TargetModule "target"
    /begin MOD_PAR "parameters"
    /end MOD_PAR
    /begin MEASUREMENT Existing "" UBYTE NO_COMPU_METHOD 1 0 0 255 /end MEASUREMENT
    /begin MEASUREMENT Second "second" SWORD NO_COMPU_METHOD 1 0 -5 5 /end MEASUREMENT
    /begin CHARACTERISTIC Gain "gain" VALUE 0x4000 RL_WORD 0 NO_COMPU_METHOD 0 100
      BIT_MASK 0xF0
    /end CHARACTERISTIC
    /begin AXIS_PTS Ax "axis" 0x5000 Existing RL_AXIS 0 NO_COMPU_METHOD 4 0 255 /end AXIS_PTS
    /begin COMPU_METHOD CM "cm" IDENTICAL "%4.0" "rpm" /end COMPU_METHOD
    /begin RECORD_LAYOUT RL_WORD FNC_VALUES 1 UWORD COLUMN_DIR DIRECT /end RECORD_LAYOUT
    /begin RECORD_LAYOUT RL_AXIS AXIS_PTS_X 1 UBYTE INDEX_INCR DIRECT /end RECORD_LAYOUT
  /end MODULE
  /begin MODULE Other ""
    /begin CHARACTERISTIC Existing "" VALUE 0x10 RL_WORD 0 NO_COMPU_METHOD 0 1 /end CHARACTERISTIC
  /end MODULE
/end PROJECT
`

func openStore(t *testing.T, content string) *Store {
	t.Helper()
	s := New(nil)
	_, err := s.OpenContent("test.a2l", content)
	require.NoError(t, err)
	return s
}

func TestNoDatasetLoaded(t *testing.T) {
	s := New(nil)

	_, err := s.Projection(ProjectionOptions{})
	assert.True(t, errors.Is(err, calib.ErrNoDatasetLoaded))
	_, err = s.GetEntity("", calib.KindMeasurement, "x")
	assert.True(t, errors.Is(err, calib.ErrNoDatasetLoaded))
	_, err = s.MergeSymbols("", []calib.ImportSymbol{{Name: "x"}})
	assert.True(t, errors.Is(err, calib.ErrNoDatasetLoaded))
	_, err = s.Export()
	assert.True(t, errors.Is(err, calib.ErrNoDatasetLoaded))
	assert.True(t, errors.Is(s.Save(filepath.Join(t.TempDir(), "x.a2l")), calib.ErrNoDatasetLoaded))
}

func TestOpenContentMetadata(t *testing.T) {
	s := New(nil)
	md, err := s.OpenContent("edit.a2l", editModule)
	require.NoError(t, err)

	assert.Equal(t, "demo", md.ProjectName)
	assert.Equal(t, []string{"edit_module"}, md.ModuleNames)
	require.NotNil(t, md.HeaderComment)
	assert.Equal(t, "header text", *md.HeaderComment)
	require.NotNil(t, md.ASAP2Version)
	assert.Equal(t, "1.71", *md.ASAP2Version)
	assert.Zero(t, md.WarningCount)
}

func TestOpenParseErrorKeepsPreviousDataset(t *testing.T) {
	s := openStore(t, editModule)

	_, err := s.OpenContent("bad.a2l", "/begin PROJECT")
	require.Error(t, err)
	assert.True(t, errors.Is(err, calib.ErrParse))

	md, err := s.Metadata()
	require.NoError(t, err)
	assert.Equal(t, "demo", md.ProjectName)
}

func TestOpenFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "edit.a2l")
	require.NoError(t, os.WriteFile(path, []byte(editModule), 0o644))

	s := New(nil)
	md, err := s.OpenFile(path)
	require.NoError(t, err)
	assert.Equal(t, "demo", md.ProjectName)

	_, err = s.OpenFile(filepath.Join(dir, "missing.a2l"))
	assert.True(t, errors.Is(err, calib.ErrIO))
}

func TestProjectionScenario(t *testing.T) {
	s := openStore(t, editModule)

	tree, err := s.Projection(ProjectionOptions{})
	require.NoError(t, err)
	require.Len(t, tree, 1)
	assert.Equal(t, "edit_module", tree[0].Name)
	require.Len(t, tree[0].Sections, 1)

	sec := tree[0].Sections[0]
	assert.Equal(t, "Measurements", sec.Title)
	assert.Equal(t, 1, sec.Total)
	require.Len(t, sec.Items, 1)

	item := sec.Items[0]
	assert.Equal(t, "edit_module::Measurement::EngineSpeed", item.ID.String())
	limits, ok := item.Detail("Limits")
	require.True(t, ok)
	assert.Equal(t, "0 .. 8000", limits)
	addr, _ := item.Detail("ECU address")
	assert.Equal(t, "0x1234", addr)
	mask, _ := item.Detail("Bit mask")
	assert.Equal(t, absent, mask)

	m, err := s.GetEntity("", calib.KindMeasurement, "EngineSpeed")
	require.NoError(t, err)
	m.Base().UpperLimit = 12000
	require.NoError(t, s.UpdateEntity("edit_module", calib.KindMeasurement, "EngineSpeed", m))

	tree, err = s.Projection(ProjectionOptions{})
	require.NoError(t, err)
	limits, _ = tree[0].Sections[0].Items[0].Detail("Limits")
	assert.Equal(t, "0 .. 12000", limits)
}

func TestProjectionDeterministic(t *testing.T) {
	s := openStore(t, twoModules)

	first, err := s.Projection(ProjectionOptions{})
	require.NoError(t, err)
	second, err := s.Projection(ProjectionOptions{})
	require.NoError(t, err)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))

	var kinds []calib.Kind
	for _, sec := range first[0].Sections {
		kinds = append(kinds, sec.Kind)
	}
	assert.Equal(t, []calib.Kind{
		calib.KindMeasurement, calib.KindCharacteristic, calib.KindAxisPts,
		calib.KindCompuMethod, calib.KindRecordLayout, calib.KindModPar,
	}, kinds)
	assert.Equal(t, "Existing", first[0].Sections[0].Items[0].Name)
	assert.Equal(t, "Second", first[0].Sections[0].Items[1].Name)

	modPar := first[0].Sections[5].Items[0]
	assert.Equal(t, "Mod Par", modPar.Name)
	require.NotNil(t, modPar.Description)
	assert.Equal(t, "parameters", *modPar.Description)
}

func TestRawBlockNamesIgnorePosition(t *testing.T) {
	module := func(blocks string) string {
		return "ASAP2_VERSION 1 60\n/begin PROJECT p \"\"\n  /begin MODULE M \"\"\n" +
			blocks + "  /end MODULE\n/end PROJECT\n"
	}
	const (
		first  = "    /begin MOD_COMMON \"first\" BYTE_ORDER MSB_LAST\n    /end MOD_COMMON\n"
		second = "    /begin MOD_COMMON \"second\" BYTE_ORDER MSB_FIRST\n    /end MOD_COMMON\n"
	)

	names := func(content string) []string {
		t.Helper()
		s := openStore(t, content)
		tree, err := s.Projection(ProjectionOptions{})
		require.NoError(t, err)
		for _, sec := range tree[0].Sections {
			if sec.Kind == calib.KindModCommon {
				var out []string
				for _, it := range sec.Items {
					out = append(out, it.Name)
				}
				return out
			}
		}
		t.Fatal("no Mod Common section")
		return nil
	}

	single := names(module(second))
	assert.Equal(t, []string{"Mod Common"}, single)

	before := names(module(first + second))
	after := names(module(second + first))
	require.Len(t, before, 2)
	assert.NotEqual(t, before[0], before[1])
	assert.Equal(t, before[1], after[0])
	assert.Equal(t, before[0], after[1])

	twins := names(module(first + first + second))
	require.Len(t, twins, 3)
	assert.Equal(t, before[0], twins[0])
	assert.Equal(t, before[0]+"-2", twins[1])
	assert.Equal(t, before[1], twins[2])
}

func TestProjectionItemLimitKeepsTotal(t *testing.T) {
	s := openStore(t, twoModules)

	tree, err := s.Projection(ProjectionOptions{ItemLimit: 1})
	require.NoError(t, err)
	sec := tree[0].Sections[0]
	assert.Equal(t, 2, sec.Total)
	assert.Len(t, sec.Items, 1)
	assert.Equal(t, 1, sec.Remaining())

	page, err := s.SectionItems(sec.ID, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Second", page.Items[0].Name)

	page, err = s.SectionItems(sec.ID, 5, 10)
	require.NoError(t, err)
	assert.Empty(t, page.Items)

	_, err = s.SectionItems(calib.SectionID{Container: "nope", Kind: calib.KindMeasurement}, 0, 1)
	assert.True(t, errors.Is(err, calib.ErrEntityNotFound))
}

func TestGetEntityKinds(t *testing.T) {
	s := openStore(t, twoModules)

	c, err := s.GetEntity("", calib.KindCharacteristic, "Gain")
	require.NoError(t, err)
	ch := c.(*calib.Characteristic)
	assert.Equal(t, "0x4000", ch.Address)
	assert.Equal(t, "0xF0", ch.BitMask)
	assert.Equal(t, "VALUE", ch.CharacteristicType)

	a, err := s.GetEntity("", calib.KindAxisPts, "Ax")
	require.NoError(t, err)
	assert.Equal(t, uint16(4), a.(*calib.AxisPts).MaxAxisPoints)

	_, err = s.GetEntity("", calib.KindMeasurement, "Gain")
	assert.True(t, errors.Is(err, calib.ErrEntityNotFound))

	// Existing is a measurement in TargetModule and a characteristic in Other.
	e, err := s.GetEntity("Other", calib.KindCharacteristic, "Existing")
	require.NoError(t, err)
	assert.Equal(t, calib.KindCharacteristic, e.Kind())

	_, err = s.GetEntity("", calib.KindUnit, "x")
	assert.True(t, errors.Is(err, calib.ErrValidation))
}

func TestUpdateEntityRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		target string
		entity calib.Entity
	}{
		{
			name:   "measurement",
			target: "Second",
			entity: &calib.Measurement{
				Common:   calib.Common{Name: "Second", LongIdentifier: "updated", Conversion: "CM", LowerLimit: -100, UpperLimit: 100},
				Datatype: "SLONG", Resolution: 2, Accuracy: 0.5, ECUAddress: "0xDEAD",
			},
		},
		{
			name:   "characteristic renamed",
			target: "Gain",
			entity: &calib.Characteristic{
				Common:             calib.Common{Name: "GainRenamed", Conversion: "NO_COMPU_METHOD", LowerLimit: 0, UpperLimit: 10},
				CharacteristicType: "CURVE", Address: "0x4100", Deposit: "RL_WORD", MaxDiff: 1,
			},
		},
		{
			name:   "axis points",
			target: "Ax",
			entity: &calib.AxisPts{
				Common:  calib.Common{Name: "Ax", LongIdentifier: "x", Conversion: "NO_COMPU_METHOD", UpperLimit: 1000},
				Address: "0x5100", InputQuantity: "Second", DepositRecord: "RL_AXIS", MaxAxisPoints: 16,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := openStore(t, twoModules)
			require.NoError(t, s.UpdateEntity("TargetModule", tt.entity.Kind(), tt.target, tt.entity))

			got, err := s.GetEntity("TargetModule", tt.entity.Kind(), tt.entity.Base().Name)
			require.NoError(t, err)
			assert.Equal(t, tt.entity, got)
		})
	}
}

func TestUpdateEntityRejections(t *testing.T) {
	valid := func() *calib.Measurement {
		return &calib.Measurement{
			Common:   calib.Common{Name: "Second", Conversion: "NO_COMPU_METHOD", LowerLimit: 0, UpperLimit: 1},
			Datatype: "UBYTE", Resolution: 1,
		}
	}

	tests := []struct {
		name   string
		target string
		mutate func(m *calib.Measurement)
		want   *calib.Error
	}{
		{"missing entity", "Nope", func(m *calib.Measurement) {}, calib.ErrEntityNotFound},
		{"kind mismatch", "Gain", func(m *calib.Measurement) { m.Name = "Gain" }, calib.ErrValidation},
		{"rename collision", "Second", func(m *calib.Measurement) { m.Name = "Existing" }, calib.ErrValidation},
		{"bad datatype", "Second", func(m *calib.Measurement) { m.Datatype = "WORDY" }, calib.ErrValidation},
		{"bad address", "Second", func(m *calib.Measurement) { m.ECUAddress = "0xZZ" }, calib.ErrValidation},
		{"inverted limits", "Second", func(m *calib.Measurement) { m.LowerLimit = 10 }, calib.ErrValidation},
		{"fractional resolution", "Second", func(m *calib.Measurement) { m.Resolution = 1.5 }, calib.ErrValidation},
		{"invalid name", "Second", func(m *calib.Measurement) { m.Name = "has space" }, calib.ErrValidation},
		{"infinite upper limit", "Second", func(m *calib.Measurement) { m.UpperLimit = math.Inf(1) }, calib.ErrValidation},
		{"infinite lower limit", "Second", func(m *calib.Measurement) { m.LowerLimit = math.Inf(-1) }, calib.ErrValidation},
		{"NaN limit", "Second", func(m *calib.Measurement) { m.UpperLimit = math.NaN() }, calib.ErrValidation},
		{"infinite accuracy", "Second", func(m *calib.Measurement) { m.Accuracy = math.Inf(1) }, calib.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := openStore(t, twoModules)
			before, err := s.Export()
			require.NoError(t, err)

			m := valid()
			tt.mutate(m)
			err = s.UpdateEntity("TargetModule", calib.KindMeasurement, tt.target, m)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)

			after, err := s.Export()
			require.NoError(t, err)
			assert.Equal(t, before, after)
		})
	}
}

func TestUpdateEntityRejectsInfiniteMaxDiff(t *testing.T) {
	tests := []struct {
		name   string
		target string
		entity calib.Entity
	}{
		{
			name:   "characteristic",
			target: "Gain",
			entity: &calib.Characteristic{
				Common:             calib.Common{Name: "Gain", Conversion: "NO_COMPU_METHOD", UpperLimit: 10},
				CharacteristicType: "VALUE", Address: "0x4000", Deposit: "RL_WORD", MaxDiff: math.Inf(1),
			},
		},
		{
			name:   "axis points",
			target: "Ax",
			entity: &calib.AxisPts{
				Common:  calib.Common{Name: "Ax", Conversion: "NO_COMPU_METHOD", UpperLimit: 255},
				Address: "0x5000", InputQuantity: "Existing", DepositRecord: "RL_AXIS", MaxDiff: math.Inf(-1), MaxAxisPoints: 4,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := openStore(t, twoModules)
			err := s.UpdateEntity("TargetModule", tt.entity.Kind(), tt.target, tt.entity)
			assert.True(t, errors.Is(err, calib.ErrValidation), "got %v", err)
		})
	}
}

func TestSavedLimitsReopen(t *testing.T) {
	s := openStore(t, editModule)
	m, err := s.GetEntity("", calib.KindMeasurement, "EngineSpeed")
	require.NoError(t, err)
	m.Base().UpperLimit = math.Inf(1)
	require.Error(t, s.UpdateEntity("edit_module", calib.KindMeasurement, "EngineSpeed", m))

	path := filepath.Join(t.TempDir(), "out.a2l")
	require.NoError(t, s.Save(path))
	_, err = New(nil).OpenFile(path)
	require.NoError(t, err)
}

const sharedName = `ASAP2_VERSION 1 71
/begin PROJECT p ""
  /begin MODULE M ""
    /begin MEASUREMENT X "measured" UBYTE NO_COMPU_METHOD 1 0 0 255 /end MEASUREMENT
    /begin CHARACTERISTIC X "tuned" VALUE 0x4000 RL_WORD 0 NO_COMPU_METHOD 0 100 /end CHARACTERISTIC
  /end MODULE
/end PROJECT
`

func TestUpdateModule(t *testing.T) {
	s := openStore(t, twoModules)

	md, err := s.UpdateModule("TargetModule", "Engine", "engine control")
	require.NoError(t, err)
	assert.Equal(t, []string{"Engine", "Other"}, md.ModuleNames)

	tree, err := s.Projection(ProjectionOptions{})
	require.NoError(t, err)
	assert.Equal(t, "Engine", tree[0].ID)
	assert.Equal(t, "engine control", tree[0].LongIdentifier)
	_, err = s.GetEntity("Engine", calib.KindMeasurement, "Second")
	require.NoError(t, err)

	// Same name, new description only.
	_, err = s.UpdateModule("Other", "Other", "described")
	require.NoError(t, err)
	tree, err = s.Projection(ProjectionOptions{})
	require.NoError(t, err)
	assert.Equal(t, "described", tree[1].LongIdentifier)

	tests := []struct {
		name    string
		module  string
		newName string
		want    *calib.Error
	}{
		{"missing module", "TargetModule", "X", calib.ErrEntityNotFound},
		{"name taken", "Engine", "Other", calib.ErrValidation},
		{"invalid name", "Engine", "two words", calib.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.UpdateModule(tt.module, tt.newName, "")
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}

	_, err = New(nil).UpdateModule("a", "b", "")
	assert.True(t, errors.Is(err, calib.ErrNoDatasetLoaded))
}

func TestUpdateEntityKindMustMatch(t *testing.T) {
	s := openStore(t, sharedName)
	before, err := s.Export()
	require.NoError(t, err)

	c := &calib.Characteristic{
		Common:             calib.Common{Name: "X", Conversion: "NO_COMPU_METHOD", UpperLimit: 1},
		CharacteristicType: "VALUE", Address: "0x9999", Deposit: "RL_WORD",
	}
	err = s.UpdateEntity("M", calib.KindMeasurement, "X", c)
	assert.True(t, errors.Is(err, calib.ErrValidation), "got %v", err)

	after, err := s.Export()
	require.NoError(t, err)
	assert.Equal(t, before, after)

	require.NoError(t, s.UpdateEntity("M", calib.KindCharacteristic, "X", c))
	got, err := s.GetEntity("M", calib.KindCharacteristic, "X")
	require.NoError(t, err)
	assert.Equal(t, "0x9999", got.(*calib.Characteristic).Address)
	m, err := s.GetEntity("M", calib.KindMeasurement, "X")
	require.NoError(t, err)
	assert.Equal(t, "measured", m.Base().LongIdentifier)
}

func TestMergeSymbolsScenario(t *testing.T) {
	s := openStore(t, twoModules)

	res, err := s.MergeSymbols("TargetModule", []calib.ImportSymbol{
		{Name: "New_Variable_A", Address: 0x1000, Size: 4, Bind: "GLOBAL", Type: "OBJECT", Section: ".bss"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Created)
	assert.Equal(t, []string{"TargetModule", "Other"}, res.Metadata.ModuleNames)

	e, err := s.GetEntity("TargetModule", calib.KindMeasurement, "New_Variable_A")
	require.NoError(t, err)
	m := e.(*calib.Measurement)
	assert.Equal(t, "0x1000", m.ECUAddress)
	assert.Equal(t, "ULONG", m.Datatype)
	assert.Equal(t, "NO_COMPU_METHOD", m.Conversion)
	assert.Equal(t, 0.0, m.LowerLimit)
	assert.Equal(t, 4294967295.0, m.UpperLimit)
}

func TestMergeSymbolsSkipsExisting(t *testing.T) {
	s := openStore(t, twoModules)
	symbols := []calib.ImportSymbol{
		{Name: "Existing", Address: 0x1},
		{Name: "Second", Address: 0x2},
		{Name: "Fresh_1", Address: 0x3, Size: 1},
		{Name: "Fresh_2", Address: 0x4, Size: 2},
		{Name: "Fresh_1", Address: 0x5, Size: 1},
	}

	res, err := s.MergeSymbols("", symbols)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Created)

	e, err := s.GetEntity("TargetModule", calib.KindMeasurement, "Existing")
	require.NoError(t, err)
	assert.Empty(t, e.(*calib.Measurement).ECUAddress, "existing measurement must not be overwritten")

	tree, err := s.Projection(ProjectionOptions{})
	require.NoError(t, err)
	assert.Equal(t, 4, tree[0].Sections[0].Total)

	_, err = s.MergeSymbols("Missing", symbols)
	assert.True(t, errors.Is(err, calib.ErrValidation))
}

func TestDatatypeForSymbol(t *testing.T) {
	tests := []struct {
		name string
		sym  calib.ImportSymbol
		want string
	}{
		{"byte", calib.ImportSymbol{Size: 1, Type: "OBJECT"}, "UBYTE"},
		{"word", calib.ImportSymbol{Size: 2, Type: "OBJECT"}, "UWORD"},
		{"long", calib.ImportSymbol{Size: 4, Type: "OBJECT"}, "ULONG"},
		{"quad", calib.ImportSymbol{Size: 8, Type: "OBJECT"}, "A_UINT64"},
		{"odd size", calib.ImportSymbol{Size: 3, Type: "OBJECT"}, "UBYTE"},
		{"unknown size", calib.ImportSymbol{Size: 0, Type: "NOTYPE"}, "UBYTE"},
		{"function", calib.ImportSymbol{Size: 4, Type: "FUNC"}, "UBYTE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, string(DatatypeForSymbol(tt.sym)))
		})
	}
}

func TestUpdateProject(t *testing.T) {
	s := openStore(t, editModule)

	comment := "  new comment "
	md, err := s.UpdateProject("renamed", "Renamed project", &comment)
	require.NoError(t, err)
	assert.Equal(t, "renamed", md.ProjectName)
	require.NotNil(t, md.HeaderComment)
	assert.Equal(t, "new comment", *md.HeaderComment)

	blank := "   "
	md, err = s.UpdateProject("renamed", "", &blank)
	require.NoError(t, err)
	assert.Nil(t, md.HeaderComment)

	_, err = s.UpdateProject("has space", "", nil)
	assert.True(t, errors.Is(err, calib.ErrValidation))
}

func TestSaveAndReopen(t *testing.T) {
	s := openStore(t, twoModules)
	path := filepath.Join(t.TempDir(), "out.a2l")
	require.NoError(t, s.Save(path))

	again := New(nil)
	_, err := again.OpenFile(path)
	require.NoError(t, err)

	a, err := s.Projection(ProjectionOptions{})
	require.NoError(t, err)
	b, err := again.Projection(ProjectionOptions{})
	require.NoError(t, err)
	assert.Equal(t, a, b)

	err = s.Save(filepath.Join(t.TempDir(), "missing", "dir", "out.a2l"))
	assert.True(t, errors.Is(err, calib.ErrIO))
	assert.True(t, errors.Is(s.Save(""), calib.ErrValidation))
}

func TestSaveRejectsDuplicates(t *testing.T) {
	src := `ASAP2_VERSION 1 71
/begin PROJECT p ""
  /begin MODULE m ""
    /begin MEASUREMENT A "" UBYTE NO_COMPU_METHOD 1 0 0 255 /end MEASUREMENT
    /begin MEASUREMENT A "" UBYTE NO_COMPU_METHOD 1 0 0 255 /end MEASUREMENT
  /end MODULE
/end PROJECT`
	s := New(nil)
	md, err := s.OpenContent("dup.a2l", src)
	require.NoError(t, err)
	assert.Equal(t, 1, md.WarningCount)

	err = s.Save(filepath.Join(t.TempDir(), "dup.a2l"))
	assert.True(t, errors.Is(err, calib.ErrValidation))
}

func TestCreateEmpty(t *testing.T) {
	s := New(nil)
	md := s.CreateEmpty()
	assert.Equal(t, "NewProject", md.ProjectName)
	assert.Equal(t, []string{"NewModule"}, md.ModuleNames)

	tree, err := s.Projection(ProjectionOptions{})
	require.NoError(t, err)
	require.Len(t, tree, 1)
	assert.Empty(t, tree[0].Sections)
}
