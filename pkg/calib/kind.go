package calib

// Kind tags the entity category an item or section belongs to.
type Kind string

// Editable entity kinds.
const (
	KindMeasurement    Kind = "Measurement"
	KindCharacteristic Kind = "Characteristic"
	KindAxisPts        Kind = "AxisPts"
)

// Read-only kinds shown in the tree but never edited.
const (
	KindCompuMethod           Kind = "CompuMethod"
	KindCompuTab              Kind = "CompuTab"
	KindCompuVtab             Kind = "CompuVtab"
	KindCompuVtabRange        Kind = "CompuVtabRange"
	KindRecordLayout          Kind = "RecordLayout"
	KindFunction              Kind = "Function"
	KindGroup                 Kind = "Group"
	KindUnit                  Kind = "Unit"
	KindFrame                 Kind = "Frame"
	KindBlob                  Kind = "Blob"
	KindInstance              Kind = "Instance"
	KindTransformer           Kind = "Transformer"
	KindTypedefAxis           Kind = "TypedefAxis"
	KindTypedefBlob           Kind = "TypedefBlob"
	KindTypedefCharacteristic Kind = "TypedefCharacteristic"
	KindTypedefMeasurement    Kind = "TypedefMeasurement"
	KindTypedefStructure      Kind = "TypedefStructure"
	KindModCommon             Kind = "ModCommon"
	KindModPar                Kind = "ModPar"
	KindVariantCoding         Kind = "VariantCoding"
	KindA2ML                  Kind = "A2ML"
	KindIfData                Kind = "IfData"
	KindUserRights            Kind = "UserRights"
)

type kindInfo struct {
	kind  Kind
	title string
}

// kindOrder is the canonical section order inside a container.
var kindOrder = []kindInfo{
	{KindMeasurement, "Measurements"},
	{KindCharacteristic, "Characteristics"},
	{KindAxisPts, "Axis Points"},
	{KindCompuMethod, "Compu Methods"},
	{KindCompuTab, "Compu Tables"},
	{KindCompuVtab, "Compu VTabs"},
	{KindCompuVtabRange, "Compu VTab Ranges"},
	{KindRecordLayout, "Record Layouts"},
	{KindFunction, "Functions"},
	{KindGroup, "Groups"},
	{KindUnit, "Units"},
	{KindFrame, "Frames"},
	{KindBlob, "Blobs"},
	{KindInstance, "Instances"},
	{KindTransformer, "Transformers"},
	{KindTypedefAxis, "Typedef Axis"},
	{KindTypedefBlob, "Typedef Blob"},
	{KindTypedefCharacteristic, "Typedef Characteristic"},
	{KindTypedefMeasurement, "Typedef Measurement"},
	{KindTypedefStructure, "Typedef Structure"},
	{KindModCommon, "Mod Common"},
	{KindModPar, "Mod Par"},
	{KindVariantCoding, "Variant Coding"},
	{KindA2ML, "A2ML"},
	{KindIfData, "IF_DATA"},
	{KindUserRights, "User Rights"},
}

// Kinds returns every kind in canonical section order.
func Kinds() []Kind {
	out := make([]Kind, len(kindOrder))
	for i, info := range kindOrder {
		out[i] = info.kind
	}
	return out
}

// Title returns the section title for the kind.
func (k Kind) Title() string {
	for _, info := range kindOrder {
		if info.kind == k {
			return info.title
		}
	}
	return string(k)
}

// Rank is the position of k in the canonical order, or -1.
func (k Kind) Rank() int {
	for i, info := range kindOrder {
		if info.kind == k {
			return i
		}
	}
	return -1
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k.Rank() >= 0
}

// Editable reports whether entities of this kind have an editable detail record.
func (k Kind) Editable() bool {
	switch k {
	case KindMeasurement, KindCharacteristic, KindAxisPts:
		return true
	}
	return false
}
