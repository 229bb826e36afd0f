package calib

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// Common is the capability set every editable entity shares.
type Common struct {
	Name           string  `json:"name"`
	LongIdentifier string  `json:"long_identifier"`
	Conversion     string  `json:"conversion"`
	LowerLimit     float64 `json:"lower_limit"`
	UpperLimit     float64 `json:"upper_limit"`
}

// Entity is the full editable record of one entity. The set of
// implementations is closed: *Measurement, *Characteristic, *AxisPts.
type Entity interface {
	Kind() Kind
	Base() *Common
	Clone() Entity
	isEntity()
}

type Measurement struct {
	Common
	Datatype   string  `json:"datatype"`
	Resolution float64 `json:"resolution"`
	Accuracy   float64 `json:"accuracy"`
	ECUAddress string  `json:"ecu_address,omitempty"`
}

type Characteristic struct {
	Common
	CharacteristicType string  `json:"characteristic_type"`
	Address            string  `json:"address"`
	Deposit            string  `json:"deposit"`
	MaxDiff            float64 `json:"max_diff"`
	BitMask            string  `json:"bit_mask,omitempty"`
}

type AxisPts struct {
	Common
	Address       string  `json:"address"`
	InputQuantity string  `json:"input_quantity"`
	DepositRecord string  `json:"deposit_record"`
	MaxDiff       float64 `json:"max_diff"`
	MaxAxisPoints uint16  `json:"max_axis_points"`
}

func (*Measurement) Kind() Kind    { return KindMeasurement }
func (*Characteristic) Kind() Kind { return KindCharacteristic }
func (*AxisPts) Kind() Kind        { return KindAxisPts }

func (m *Measurement) Base() *Common    { return &m.Common }
func (c *Characteristic) Base() *Common { return &c.Common }
func (a *AxisPts) Base() *Common        { return &a.Common }

func (m *Measurement) Clone() Entity    { cp := *m; return &cp }
func (c *Characteristic) Clone() Entity { cp := *c; return &cp }
func (a *AxisPts) Clone() Entity        { cp := *a; return &cp }

func (*Measurement) isEntity()    {}
func (*Characteristic) isEntity() {}
func (*AxisPts) isEntity()        {}

// NewEntity returns an empty entity of kind k.
func NewEntity(k Kind) (Entity, error) {
	switch k {
	case KindMeasurement:
		return &Measurement{}, nil
	case KindCharacteristic:
		return &Characteristic{}, nil
	case KindAxisPts:
		return &AxisPts{}, nil
	}
	return nil, Errorf(CodeValidation, "kind %q has no editable record", k)
}

type entityEnvelope struct {
	Kind Kind            `json:"kind"`
	Data json.RawMessage `json:"data"`
}

// EntityValue carries an Entity through JSON as {"kind": ..., "data": {...}}.
type EntityValue struct {
	Entity
}

func (v EntityValue) MarshalJSON() ([]byte, error) {
	if v.Entity == nil {
		return []byte("null"), nil
	}
	data, err := json.Marshal(v.Entity)
	if err != nil {
		return nil, err
	}
	return json.Marshal(entityEnvelope{Kind: v.Entity.Kind(), Data: data})
}

func (v *EntityValue) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		v.Entity = nil
		return nil
	}
	var env entityEnvelope
	if err := json.Unmarshal(b, &env); err != nil {
		return errors.Wrap(err, "decode entity envelope")
	}
	e, err := NewEntity(env.Kind)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(env.Data, e); err != nil {
		return errors.Wrapf(err, "decode %s", env.Kind)
	}
	v.Entity = e
	return nil
}
