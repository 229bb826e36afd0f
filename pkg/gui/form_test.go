package gui

import (
	"reflect"
	"testing"

	"github.com/marjoballabani/lazya2l/pkg/calib"
)

func formFor(e calib.Entity) *editForm {
	id := calib.ItemID{Container: "ECU", Kind: e.Kind(), Name: e.Base().Name}
	return newEditForm(id, e)
}

func setField(t *testing.T, f *editForm, label, value string) {
	t.Helper()
	for i := range f.Fields {
		if f.Fields[i].Label == label {
			f.Fields[i].Value = value
			return
		}
	}
	t.Fatalf("no field %q", label)
}

func TestEditFormRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		entity calib.Entity
	}{
		{
			name: "measurement",
			entity: &calib.Measurement{
				Common:     calib.Common{Name: "EngineSpeed", LongIdentifier: "speed", Conversion: "CM", LowerLimit: 0, UpperLimit: 8000},
				Datatype:   "UWORD",
				Resolution: 1,
				Accuracy:   0.5,
				ECUAddress: "0x1234",
			},
		},
		{
			name: "characteristic",
			entity: &calib.Characteristic{
				Common:             calib.Common{Name: "Gain", Conversion: "NO_COMPU_METHOD", LowerLimit: -1.5, UpperLimit: 2.25},
				CharacteristicType: "VALUE",
				Address:            "0x4000",
				Deposit:            "RL_WORD",
				MaxDiff:            0,
				BitMask:            "0xFF",
			},
		},
		{
			name: "axis points",
			entity: &calib.AxisPts{
				Common:        calib.Common{Name: "Ax", Conversion: "CM", UpperLimit: 100},
				Address:       "0x5000",
				InputQuantity: "EngineSpeed",
				DepositRecord: "RL_AXIS",
				MaxDiff:       1,
				MaxAxisPoints: 8,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := formFor(tt.entity).entity()
			if err != nil {
				t.Fatalf("entity() error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.entity) {
				t.Errorf("entity() = %+v, expected %+v", got, tt.entity)
			}
		})
	}
}

func TestEditFormTyping(t *testing.T) {
	f := formFor(&calib.Measurement{Common: calib.Common{Name: "EngineSpeed", UpperLimit: 8000}, Datatype: "UWORD"})

	for f.Fields[f.Active].Label != "Upper limit" {
		f.next()
	}
	for range "8000" {
		f.backspace()
	}
	for _, ch := range "12000" {
		f.insert(ch)
	}

	e, err := f.entity()
	if err != nil {
		t.Fatalf("entity() error: %v", err)
	}
	if e.Base().UpperLimit != 12000 {
		t.Errorf("upper limit = %v, expected 12000", e.Base().UpperLimit)
	}

	f.next()
	if f.Fields[f.Active].Label != "Name" {
		t.Errorf("next() after the last field should wrap to Name, got %q", f.Fields[f.Active].Label)
	}
	f.prev()
	if f.Fields[f.Active].Label != "Upper limit" {
		t.Errorf("prev() from the first field should wrap to the last, got %q", f.Fields[f.Active].Label)
	}
}

func TestEditFormRejectsBadNumbers(t *testing.T) {
	tests := []struct {
		name   string
		entity calib.Entity
		label  string
		value  string
	}{
		{name: "limit", entity: &calib.Measurement{Common: calib.Common{Name: "M"}}, label: "Lower limit", value: "low"},
		{name: "resolution", entity: &calib.Measurement{Common: calib.Common{Name: "M"}}, label: "Resolution", value: "1x"},
		{name: "max diff", entity: &calib.Characteristic{Common: calib.Common{Name: "C"}}, label: "Max diff", value: "?"},
		{name: "axis point count", entity: &calib.AxisPts{Common: calib.Common{Name: "A"}}, label: "Max axis points", value: "70000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := formFor(tt.entity)
			setField(t, f, tt.label, tt.value)
			if _, err := f.entity(); err == nil {
				t.Errorf("expected an error for %s = %q", tt.label, tt.value)
			}
		})
	}
}

func TestEditFormBlankNumberIsZero(t *testing.T) {
	f := formFor(&calib.Measurement{Common: calib.Common{Name: "M", LowerLimit: 5}})
	setField(t, f, "Lower limit", "  ")
	e, err := f.entity()
	if err != nil {
		t.Fatalf("entity() error: %v", err)
	}
	if e.Base().LowerLimit != 0 {
		t.Errorf("blank lower limit = %v, expected 0", e.Base().LowerLimit)
	}
}
