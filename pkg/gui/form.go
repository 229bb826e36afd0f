package gui

import (
	"strconv"
	"strings"

	"github.com/marjoballabani/lazya2l/pkg/calib"
	"github.com/pkg/errors"
)

type fieldKind int

const (
	fieldText fieldKind = iota
	fieldNumber
	fieldCount
)

type formField struct {
	Label string
	Kind  fieldKind
	Value string
}

// editForm is the text buffer behind the details panel while an entity is
// being edited. Every field is held as text until the form is submitted.
type editForm struct {
	ID     calib.ItemID
	kind   calib.Kind
	Fields []formField
	Active int
	Err    string
}

func newEditForm(id calib.ItemID, e calib.Entity) *editForm {
	c := e.Base()
	f := &editForm{ID: id, kind: e.Kind()}
	f.add("Name", fieldText, c.Name)
	f.add("Long identifier", fieldText, c.LongIdentifier)

	switch v := e.(type) {
	case *calib.Measurement:
		f.add("Datatype", fieldText, v.Datatype)
		f.add("Resolution", fieldNumber, formatFloat(v.Resolution))
		f.add("Accuracy", fieldNumber, formatFloat(v.Accuracy))
		f.add("ECU address", fieldText, v.ECUAddress)
	case *calib.Characteristic:
		f.add("Type", fieldText, v.CharacteristicType)
		f.add("Address", fieldText, v.Address)
		f.add("Deposit", fieldText, v.Deposit)
		f.add("Max diff", fieldNumber, formatFloat(v.MaxDiff))
		f.add("Bit mask", fieldText, v.BitMask)
	case *calib.AxisPts:
		f.add("Address", fieldText, v.Address)
		f.add("Input quantity", fieldText, v.InputQuantity)
		f.add("Deposit record", fieldText, v.DepositRecord)
		f.add("Max diff", fieldNumber, formatFloat(v.MaxDiff))
		f.add("Max axis points", fieldCount, strconv.Itoa(int(v.MaxAxisPoints)))
	}

	f.add("Conversion", fieldText, c.Conversion)
	f.add("Lower limit", fieldNumber, formatFloat(c.LowerLimit))
	f.add("Upper limit", fieldNumber, formatFloat(c.UpperLimit))
	return f
}

func (f *editForm) add(label string, kind fieldKind, value string) {
	f.Fields = append(f.Fields, formField{Label: label, Kind: kind, Value: value})
}

func (f *editForm) next() { f.Active = (f.Active + 1) % len(f.Fields) }

func (f *editForm) prev() { f.Active = (f.Active - 1 + len(f.Fields)) % len(f.Fields) }

func (f *editForm) insert(ch rune) {
	f.Fields[f.Active].Value += string(ch)
	f.Err = ""
}

func (f *editForm) backspace() {
	v := []rune(f.Fields[f.Active].Value)
	if len(v) > 0 {
		f.Fields[f.Active].Value = string(v[:len(v)-1])
	}
	f.Err = ""
}

func (f *editForm) value(label string) string {
	for _, fd := range f.Fields {
		if fd.Label == label {
			return strings.TrimSpace(fd.Value)
		}
	}
	return ""
}

func (f *editForm) number(label string) (float64, error) {
	s := f.value(label)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.Errorf("%s: %q is not a number", strings.ToLower(label), s)
	}
	return n, nil
}

// entity parses the form back into an entity. Only numeric syntax is checked
// here; everything else is validated by the store.
func (f *editForm) entity() (calib.Entity, error) {
	var errs []error
	num := func(label string) float64 {
		n, err := f.number(label)
		if err != nil {
			errs = append(errs, err)
		}
		return n
	}

	common := calib.Common{
		Name:           f.value("Name"),
		LongIdentifier: f.value("Long identifier"),
		Conversion:     f.value("Conversion"),
		LowerLimit:     num("Lower limit"),
		UpperLimit:     num("Upper limit"),
	}

	var e calib.Entity
	switch f.kind {
	case calib.KindMeasurement:
		e = &calib.Measurement{
			Common:     common,
			Datatype:   f.value("Datatype"),
			Resolution: num("Resolution"),
			Accuracy:   num("Accuracy"),
			ECUAddress: f.value("ECU address"),
		}
	case calib.KindCharacteristic:
		e = &calib.Characteristic{
			Common:             common,
			CharacteristicType: f.value("Type"),
			Address:            f.value("Address"),
			Deposit:            f.value("Deposit"),
			MaxDiff:            num("Max diff"),
			BitMask:            f.value("Bit mask"),
		}
	case calib.KindAxisPts:
		points, err := strconv.ParseUint(f.value("Max axis points"), 10, 16)
		if err != nil {
			errs = append(errs, errors.Errorf("max axis points: %q is not a count", f.value("Max axis points")))
		}
		e = &calib.AxisPts{
			Common:        common,
			Address:       f.value("Address"),
			InputQuantity: f.value("Input quantity"),
			DepositRecord: f.value("Deposit record"),
			MaxDiff:       num("Max diff"),
			MaxAxisPoints: uint16(points),
		}
	default:
		return nil, errors.Errorf("kind %s cannot be edited", f.kind)
	}

	if len(errs) > 0 {
		return nil, errs[0]
	}
	return e, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
