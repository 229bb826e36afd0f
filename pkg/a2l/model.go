// Package a2l reads and writes the subset of the ASAP2 (A2L) format the editor
// works with. Blocks it does not model are kept as raw elements and written
// back unchanged.
package a2l

import (
	"math"
	"strings"
)

// File is a parsed A2L document.
type File struct {
	Version  *Version
	Preamble []Element
	Project  Project
}

type Version struct {
	Major int
	Minor int
}

type Project struct {
	Name           string
	LongIdentifier string
	Header         *Header
	Modules        []*Module
	Extra          []Element
}

type Header struct {
	Comment string
	Extra   []Element
}

// Module holds the typed entity lists plus every other block in source order.
type Module struct {
	Name            string
	LongIdentifier  string
	Measurements    []*Measurement
	Characteristics []*Characteristic
	AxisPts         []*AxisPts
	CompuMethods    []*CompuMethod
	Blocks          []*Block
	Extra           []Element
}

type Measurement struct {
	Name           string
	LongIdentifier string
	Datatype       DataType
	Conversion     string
	Resolution     int
	Accuracy       float64
	LowerLimit     float64
	UpperLimit     float64
	ECUAddress     *uint32
	BitMask        *uint64
	PhysUnit       *string
	Format         *string
	Extra          []Element
}

type Characteristic struct {
	Name           string
	LongIdentifier string
	Type           CharacteristicType
	Address        uint32
	Deposit        string
	MaxDiff        float64
	Conversion     string
	LowerLimit     float64
	UpperLimit     float64
	BitMask        *uint64
	PhysUnit       *string
	Format         *string
	Extra          []Element
}

type AxisPts struct {
	Name           string
	LongIdentifier string
	Address        uint32
	InputQuantity  string
	DepositRecord  string
	MaxDiff        float64
	Conversion     string
	MaxAxisPoints  uint16
	LowerLimit     float64
	UpperLimit     float64
	PhysUnit       *string
	Format         *string
	Extra          []Element
}

type CompuMethod struct {
	Name           string
	LongIdentifier string
	ConversionType string
	Format         string
	Unit           string
	Extra          []Element
}

// Block is a /begin KEYWORD ... /end KEYWORD block kept as raw content.
type Block struct {
	Keyword string
	Body    []Element
}

// Name returns the block's leading identifier, if it has one.
func (b *Block) Name() (string, bool) {
	if len(b.Body) == 0 || len(b.Body[0].Tokens) == 0 {
		return "", false
	}
	tok := b.Body[0].Tokens[0]
	if tok.Kind != TokIdent {
		return "", false
	}
	return tok.Text, true
}

// LongIdentifier returns the quoted string that follows the block name.
func (b *Block) LongIdentifier() string {
	if len(b.Body) == 0 || len(b.Body[0].Tokens) < 2 {
		return ""
	}
	if tok := b.Body[0].Tokens[1]; tok.Kind == TokString {
		return tok.Text
	}
	return ""
}

// Element is either a nested block or a run of loose tokens from one line.
type Element struct {
	Block  *Block
	Tokens []Token
}

// Module returns the module with the given name.
func (f *File) Module(name string) *Module {
	for _, m := range f.Project.Modules {
		if m.Name == name {
			return m
		}
	}
	return nil
}

func (m *Module) Measurement(name string) *Measurement {
	for _, x := range m.Measurements {
		if x.Name == name {
			return x
		}
	}
	return nil
}

func (m *Module) Characteristic(name string) *Characteristic {
	for _, x := range m.Characteristics {
		if x.Name == name {
			return x
		}
	}
	return nil
}

func (m *Module) AxisPt(name string) *AxisPts {
	for _, x := range m.AxisPts {
		if x.Name == name {
			return x
		}
	}
	return nil
}

// NewMeasurement returns a measurement with the defaults of an empty record.
func NewMeasurement(name string, dt DataType) *Measurement {
	lo, hi := dt.Range()
	return &Measurement{
		Name:       name,
		Datatype:   dt,
		Conversion: "NO_COMPU_METHOD",
		Resolution: 1,
		LowerLimit: lo,
		UpperLimit: hi,
	}
}

// NewFile returns the minimal skeleton used for a new dataset.
func NewFile() *File {
	return &File{
		Version: &Version{Major: 1, Minor: 71},
		Project: Project{
			Name:           "NewProject",
			LongIdentifier: "New A2L project",
			Modules: []*Module{
				{Name: "NewModule", LongIdentifier: "New module"},
			},
		},
	}
}

// DataType is an A2L storage type.
type DataType string

const (
	UByte       DataType = "UBYTE"
	SByte       DataType = "SBYTE"
	UWord       DataType = "UWORD"
	SWord       DataType = "SWORD"
	ULong       DataType = "ULONG"
	SLong       DataType = "SLONG"
	AUint64     DataType = "A_UINT64"
	AInt64      DataType = "A_INT64"
	Float16IEEE DataType = "FLOAT16_IEEE"
	Float32IEEE DataType = "FLOAT32_IEEE"
	Float64IEEE DataType = "FLOAT64_IEEE"
)

var dataTypes = []DataType{UByte, SByte, UWord, SWord, ULong, SLong, AUint64, AInt64, Float16IEEE, Float32IEEE, Float64IEEE}

// DataTypes lists every storage type.
func DataTypes() []DataType {
	return append([]DataType(nil), dataTypes...)
}

// ParseDataType accepts any case and the A_ prefix dropped for 64-bit types.
func ParseDataType(s string) (DataType, bool) {
	u := strings.ToUpper(strings.TrimSpace(s))
	switch u {
	case "AUINT64":
		return AUint64, true
	case "AINT64":
		return AInt64, true
	}
	for _, dt := range dataTypes {
		if string(dt) == u {
			return dt, true
		}
	}
	return "", false
}

// Size is the storage width in bytes.
func (d DataType) Size() int {
	switch d {
	case UByte, SByte:
		return 1
	case UWord, SWord, Float16IEEE:
		return 2
	case ULong, SLong, Float32IEEE:
		return 4
	case AUint64, AInt64, Float64IEEE:
		return 8
	}
	return 0
}

// Range is the full numeric range the type can hold.
func (d DataType) Range() (float64, float64) {
	switch d {
	case UByte:
		return 0, math.MaxUint8
	case SByte:
		return math.MinInt8, math.MaxInt8
	case UWord:
		return 0, math.MaxUint16
	case SWord:
		return math.MinInt16, math.MaxInt16
	case ULong:
		return 0, math.MaxUint32
	case SLong:
		return math.MinInt32, math.MaxInt32
	case AUint64:
		return 0, math.MaxUint64
	case AInt64:
		return math.MinInt64, math.MaxInt64
	case Float16IEEE:
		return -65504, 65504
	case Float32IEEE:
		return -math.MaxFloat32, math.MaxFloat32
	case Float64IEEE:
		return -math.MaxFloat64, math.MaxFloat64
	}
	return 0, 0
}

// CharacteristicType is the value layout of a characteristic.
type CharacteristicType string

const (
	Ascii  CharacteristicType = "ASCII"
	Curve  CharacteristicType = "CURVE"
	Map    CharacteristicType = "MAP"
	Cuboid CharacteristicType = "CUBOID"
	Cube4  CharacteristicType = "CUBE_4"
	Cube5  CharacteristicType = "CUBE_5"
	ValBlk CharacteristicType = "VAL_BLK"
	Value  CharacteristicType = "VALUE"
)

var characteristicTypes = []CharacteristicType{Ascii, Curve, Map, Cuboid, Cube4, Cube5, ValBlk, Value}

// ParseCharacteristicType accepts any case and the underscore-less spellings.
func ParseCharacteristicType(s string) (CharacteristicType, bool) {
	u := strings.ToUpper(strings.TrimSpace(s))
	switch u {
	case "CUBE4":
		return Cube4, true
	case "CUBE5":
		return Cube5, true
	case "VALBLK":
		return ValBlk, true
	}
	for _, ct := range characteristicTypes {
		if string(ct) == u {
			return ct, true
		}
	}
	return "", false
}
