package calib

import (
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemIDText(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    ItemID
		wantErr bool
	}{
		{"measurement", "edit_module::Measurement::EngineSpeed", ItemID{"edit_module", KindMeasurement, "EngineSpeed"}, false},
		{"name with brackets", "m::AxisPts::ax[0]", ItemID{"m", KindAxisPts, "ax[0]"}, false},
		{"missing name", "m::Measurement", ItemID{}, true},
		{"empty kind", "m::::x", ItemID{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseItemID(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.input, got.String())
		})
	}
}

func TestItemIDKeysDoNotCollideAcrossKinds(t *testing.T) {
	a := ItemID{"m", KindMeasurement, "X"}
	b := ItemID{"m", KindCharacteristic, "X"}
	seen := map[ItemID]int{a: 1, b: 2}
	assert.Len(t, seen, 2)
	assert.Equal(t, SectionID{"m", KindMeasurement}, a.Section())
}

func TestItemJSONUsesStringIDs(t *testing.T) {
	it := Item{ID: ItemID{"m", KindMeasurement, "X"}, Name: "X", Kind: KindMeasurement}
	b, err := json.Marshal(it)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"id":"m::Measurement::X"`)

	var back Item
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, it.ID, back.ID)
}

func TestEntityValueRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		entity Entity
	}{
		{"measurement", &Measurement{Common: Common{Name: "EngineSpeed", UpperLimit: 8000}, Datatype: "UWORD", ECUAddress: "0x1000"}},
		{"characteristic", &Characteristic{Common: Common{Name: "Gain"}, CharacteristicType: "VALUE", Address: "0x20", BitMask: "0xFF"}},
		{"axis points", &AxisPts{Common: Common{Name: "Ax"}, Address: "0x30", MaxAxisPoints: 8}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := json.Marshal(EntityValue{tt.entity})
			require.NoError(t, err)

			var back EntityValue
			require.NoError(t, json.Unmarshal(b, &back))
			assert.Equal(t, tt.entity, back.Entity)
		})
	}
}

func TestEntityValueRejectsReadOnlyKind(t *testing.T) {
	var v EntityValue
	err := json.Unmarshal([]byte(`{"kind":"CompuMethod","data":{}}`), &v)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestCloneIsIndependent(t *testing.T) {
	m := &Measurement{Common: Common{Name: "A"}}
	cp := m.Clone()
	cp.Base().Name = "B"
	assert.Equal(t, "A", m.Name)
}

func TestErrorCodes(t *testing.T) {
	err := errors.Wrap(Errorf(CodeEntityNotFound, "measurement %q not found", "X"), "get entity")

	assert.True(t, errors.Is(err, ErrEntityNotFound))
	assert.False(t, errors.Is(err, ErrValidation))
	assert.Equal(t, CodeEntityNotFound, CodeOf(err))
	assert.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
	assert.Equal(t, Code(""), CodeOf(nil))
}

func TestKindOrder(t *testing.T) {
	kinds := Kinds()
	require.GreaterOrEqual(t, len(kinds), 4)
	assert.Equal(t, []Kind{KindMeasurement, KindCharacteristic, KindAxisPts, KindCompuMethod}, kinds[:4])
	assert.Equal(t, "Axis Points", KindAxisPts.Title())
	assert.True(t, KindAxisPts.Editable())
	assert.False(t, KindUnit.Editable())
	assert.False(t, Kind("Nope").Valid())
}
