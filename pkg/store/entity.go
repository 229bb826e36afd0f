package store

import (
	"math"
	"strings"

	"github.com/marjoballabani/lazya2l/pkg/a2l"
	"github.com/marjoballabani/lazya2l/pkg/calib"
)

// located is an entity found in a module, of exactly one kind.
type located struct {
	module         *a2l.Module
	measurement    *a2l.Measurement
	characteristic *a2l.Characteristic
	axisPts        *a2l.AxisPts
}

func (l located) kind() calib.Kind {
	switch {
	case l.measurement != nil:
		return calib.KindMeasurement
	case l.characteristic != nil:
		return calib.KindCharacteristic
	case l.axisPts != nil:
		return calib.KindAxisPts
	}
	return ""
}

// findLocked looks name up among the editable kinds. With an empty container
// every module is searched in order and the first match wins. When kind is
// set, a match of that kind is preferred over matches of other kinds.
func (s *Store) findLocked(container string, kind calib.Kind, name string) (located, bool) {
	var fallback located
	found := false
	for _, m := range s.file.Project.Modules {
		if container != "" && m.Name != container {
			continue
		}
		candidates := []located{
			{module: m, measurement: m.Measurement(name)},
			{module: m, characteristic: m.Characteristic(name)},
			{module: m, axisPts: m.AxisPt(name)},
		}
		for _, c := range candidates {
			k := c.kind()
			if k == "" {
				continue
			}
			if kind == "" || k == kind {
				return c, true
			}
			if !found {
				fallback, found = c, true
			}
		}
	}
	return fallback, found
}

// GetEntity returns the editable record of the named entity.
func (s *Store) GetEntity(container string, kind calib.Kind, name string) (calib.Entity, error) {
	if !kind.Editable() {
		return nil, calib.Errorf(calib.CodeValidation, "kind %q has no editable record", kind)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return nil, calib.ErrNoDatasetLoaded
	}
	loc, ok := s.findLocked(container, kind, name)
	if !ok || loc.kind() != kind {
		return nil, calib.Errorf(calib.CodeEntityNotFound, "%s %q not found", kind, name)
	}

	switch kind {
	case calib.KindMeasurement:
		return measurementEntity(loc.measurement), nil
	case calib.KindCharacteristic:
		return characteristicEntity(loc.characteristic), nil
	case calib.KindAxisPts:
		return axisPtsEntity(loc.axisPts), nil
	}
	return nil, calib.Errorf(calib.CodeInternal, "unhandled kind %q", kind)
}

// UpdateEntity replaces every field of the named entity of kind with e. An
// empty kind means the kind of e. The entity may be renamed; the new name must
// be free within its kind and module. Nothing is changed when validation
// fails.
func (s *Store) UpdateEntity(container string, kind calib.Kind, name string, e calib.Entity) error {
	if e == nil {
		return calib.Errorf(calib.CodeValidation, "no entity given")
	}
	if kind != "" && kind != e.Kind() {
		return calib.Errorf(calib.CodeValidation, "%s %q cannot be replaced by a %s", kind, name, e.Kind())
	}
	if err := validateCommon(e.Base()); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return calib.ErrNoDatasetLoaded
	}
	loc, ok := s.findLocked(container, e.Kind(), name)
	if !ok {
		return calib.Errorf(calib.CodeEntityNotFound, "%s %q not found", e.Kind(), name)
	}
	if loc.kind() != e.Kind() {
		return calib.Errorf(calib.CodeValidation, "%q is a %s, not a %s", name, loc.kind(), e.Kind())
	}
	newName := e.Base().Name
	if newName != name && s.nameTaken(loc.module, e.Kind(), newName) {
		return calib.Errorf(calib.CodeValidation, "%s %q already exists in module %s", e.Kind(), newName, loc.module.Name)
	}

	switch v := e.(type) {
	case *calib.Measurement:
		return applyMeasurement(loc.measurement, v)
	case *calib.Characteristic:
		return applyCharacteristic(loc.characteristic, v)
	case *calib.AxisPts:
		return applyAxisPts(loc.axisPts, v)
	}
	return calib.Errorf(calib.CodeInternal, "unhandled entity %T", e)
}

func (s *Store) nameTaken(m *a2l.Module, kind calib.Kind, name string) bool {
	switch kind {
	case calib.KindMeasurement:
		return m.Measurement(name) != nil
	case calib.KindCharacteristic:
		return m.Characteristic(name) != nil
	case calib.KindAxisPts:
		return m.AxisPt(name) != nil
	}
	return false
}

func validateCommon(c *calib.Common) error {
	if !a2l.ValidIdent(c.Name) {
		return calib.Errorf(calib.CodeValidation, "invalid name %q", c.Name)
	}
	if !a2l.ValidIdent(c.Conversion) {
		return calib.Errorf(calib.CodeValidation, "invalid conversion %q", c.Conversion)
	}
	if !finite(c.LowerLimit) || !finite(c.UpperLimit) {
		return calib.Errorf(calib.CodeValidation, "limits must be finite numbers")
	}
	if c.LowerLimit > c.UpperLimit {
		return calib.Errorf(calib.CodeValidation, "lower limit %s exceeds upper limit %s", number(c.LowerLimit), number(c.UpperLimit))
	}
	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func parseHex(label, s string, bits int) (uint64, error) {
	v, err := a2l.ParseUint(hexPrefixed(s), bits)
	if err != nil {
		return 0, calib.Errorf(calib.CodeValidation, "invalid hex %s %q", label, s)
	}
	return v, nil
}

// hexPrefixed makes bare digits parse as hexadecimal.
func hexPrefixed(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return s
	}
	return "0x" + s
}

func optionalHex(label, s string, bits int) (*uint64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	v, err := parseHex(label, s, bits)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func measurementEntity(x *a2l.Measurement) *calib.Measurement {
	out := &calib.Measurement{
		Common: calib.Common{
			Name:           x.Name,
			LongIdentifier: x.LongIdentifier,
			Conversion:     x.Conversion,
			LowerLimit:     x.LowerLimit,
			UpperLimit:     x.UpperLimit,
		},
		Datatype:   string(x.Datatype),
		Resolution: float64(x.Resolution),
		Accuracy:   x.Accuracy,
	}
	if x.ECUAddress != nil {
		out.ECUAddress = a2l.FormatHex(uint64(*x.ECUAddress))
	}
	return out
}

func applyMeasurement(x *a2l.Measurement, v *calib.Measurement) error {
	dt, ok := a2l.ParseDataType(v.Datatype)
	if !ok {
		return calib.Errorf(calib.CodeValidation, "invalid data type %q", v.Datatype)
	}
	if v.Resolution < 0 || v.Resolution > math.MaxUint16 || v.Resolution != math.Trunc(v.Resolution) {
		return calib.Errorf(calib.CodeValidation, "resolution must be a whole number between 0 and %d", math.MaxUint16)
	}
	if !finite(v.Accuracy) {
		return calib.Errorf(calib.CodeValidation, "accuracy must be a finite number")
	}
	addr, err := optionalHex("ECU address", v.ECUAddress, 32)
	if err != nil {
		return err
	}

	x.Name = v.Name
	x.LongIdentifier = v.LongIdentifier
	x.Datatype = dt
	x.Conversion = v.Conversion
	x.Resolution = int(v.Resolution)
	x.Accuracy = v.Accuracy
	x.LowerLimit = v.LowerLimit
	x.UpperLimit = v.UpperLimit
	x.ECUAddress = nil
	if addr != nil {
		a := uint32(*addr)
		x.ECUAddress = &a
	}
	return nil
}

func characteristicEntity(x *a2l.Characteristic) *calib.Characteristic {
	out := &calib.Characteristic{
		Common: calib.Common{
			Name:           x.Name,
			LongIdentifier: x.LongIdentifier,
			Conversion:     x.Conversion,
			LowerLimit:     x.LowerLimit,
			UpperLimit:     x.UpperLimit,
		},
		CharacteristicType: string(x.Type),
		Address:            a2l.FormatHex(uint64(x.Address)),
		Deposit:            x.Deposit,
		MaxDiff:            x.MaxDiff,
	}
	if x.BitMask != nil {
		out.BitMask = a2l.FormatHex(*x.BitMask)
	}
	return out
}

func applyCharacteristic(x *a2l.Characteristic, v *calib.Characteristic) error {
	ct, ok := a2l.ParseCharacteristicType(v.CharacteristicType)
	if !ok {
		return calib.Errorf(calib.CodeValidation, "invalid characteristic type %q", v.CharacteristicType)
	}
	addr, err := parseHex("address", v.Address, 32)
	if err != nil {
		return err
	}
	mask, err := optionalHex("bit mask", v.BitMask, 64)
	if err != nil {
		return err
	}
	if !a2l.ValidIdent(v.Deposit) {
		return calib.Errorf(calib.CodeValidation, "invalid deposit %q", v.Deposit)
	}
	if !finite(v.MaxDiff) {
		return calib.Errorf(calib.CodeValidation, "max diff must be a finite number")
	}

	x.Name = v.Name
	x.LongIdentifier = v.LongIdentifier
	x.Type = ct
	x.Address = uint32(addr)
	x.Deposit = v.Deposit
	x.MaxDiff = v.MaxDiff
	x.Conversion = v.Conversion
	x.LowerLimit = v.LowerLimit
	x.UpperLimit = v.UpperLimit
	x.BitMask = mask
	return nil
}

func axisPtsEntity(x *a2l.AxisPts) *calib.AxisPts {
	return &calib.AxisPts{
		Common: calib.Common{
			Name:           x.Name,
			LongIdentifier: x.LongIdentifier,
			Conversion:     x.Conversion,
			LowerLimit:     x.LowerLimit,
			UpperLimit:     x.UpperLimit,
		},
		Address:       a2l.FormatHex(uint64(x.Address)),
		InputQuantity: x.InputQuantity,
		DepositRecord: x.DepositRecord,
		MaxDiff:       x.MaxDiff,
		MaxAxisPoints: x.MaxAxisPoints,
	}
}

func applyAxisPts(x *a2l.AxisPts, v *calib.AxisPts) error {
	addr, err := parseHex("address", v.Address, 32)
	if err != nil {
		return err
	}
	if !a2l.ValidIdent(v.InputQuantity) {
		return calib.Errorf(calib.CodeValidation, "invalid input quantity %q", v.InputQuantity)
	}
	if !a2l.ValidIdent(v.DepositRecord) {
		return calib.Errorf(calib.CodeValidation, "invalid deposit record %q", v.DepositRecord)
	}
	if !finite(v.MaxDiff) {
		return calib.Errorf(calib.CodeValidation, "max diff must be a finite number")
	}

	x.Name = v.Name
	x.LongIdentifier = v.LongIdentifier
	x.Address = uint32(addr)
	x.InputQuantity = v.InputQuantity
	x.DepositRecord = v.DepositRecord
	x.MaxDiff = v.MaxDiff
	x.Conversion = v.Conversion
	x.MaxAxisPoints = v.MaxAxisPoints
	x.LowerLimit = v.LowerLimit
	x.UpperLimit = v.UpperLimit
	return nil
}
