// Package command defines the closed set of requests the editor sends to the
// calibration store and the channels that carry them.
package command

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/marjoballabani/lazya2l/pkg/calib"
)

// Request is one command. The set is closed: only the types in this file
// implement it.
type Request interface {
	// Command is the wire type tag.
	Command() string
	// decodeResult turns a wire reply into the command's result type.
	decodeResult(data json.RawMessage) (any, error)
}

// OpenContent parses A2L text that did not come from a file.
type OpenContent struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// OpenFile reads and parses the A2L file at Path.
type OpenFile struct {
	Path string `json:"path"`
}

// CreateEmpty replaces the dataset with an empty skeleton.
type CreateEmpty struct{}

// GetProjection returns the tree. ItemLimit caps items per section.
type GetProjection struct {
	ItemLimit int `json:"item_limit"`
}

// GetSectionItems returns one page of a section.
type GetSectionItems struct {
	Section calib.SectionID `json:"section"`
	Offset  int             `json:"offset"`
	Limit   int             `json:"limit"`
}

// GetEntity fetches the editable record of one entity. An empty Container
// searches every module.
type GetEntity struct {
	Container string     `json:"container,omitempty"`
	Kind      calib.Kind `json:"kind"`
	Name      string     `json:"name"`
}

// UpdateEntity replaces the entity of Kind currently called Name. An empty
// Kind accepts the kind of the submitted entity.
type UpdateEntity struct {
	Container string            `json:"container,omitempty"`
	Kind      calib.Kind        `json:"kind,omitempty"`
	Name      string            `json:"name"`
	Entity    calib.EntityValue `json:"entity"`
}

// UpdateProject changes project metadata.
type UpdateProject struct {
	Name           string  `json:"name"`
	LongIdentifier string  `json:"long_identifier"`
	HeaderComment  *string `json:"header_comment,omitempty"`
}

// UpdateModule renames a module and sets its long identifier.
type UpdateModule struct {
	Name           string `json:"name"`
	NewName        string `json:"new_name"`
	LongIdentifier string `json:"long_identifier"`
}

// Export renders the dataset as A2L text.
type Export struct{}

// SaveFile writes the dataset to Path.
type SaveFile struct {
	Path string `json:"path"`
}

// LoadSymbols reads the symbol table of the ELF file at Path.
type LoadSymbols struct {
	Path string `json:"path"`
}

// MergeSymbols creates measurements for symbols not yet in Container.
type MergeSymbols struct {
	Container string               `json:"container,omitempty"`
	Symbols   []calib.ImportSymbol `json:"symbols"`
}

func (OpenContent) Command() string     { return "open_content" }
func (OpenFile) Command() string        { return "open_file" }
func (CreateEmpty) Command() string     { return "create_empty" }
func (GetProjection) Command() string   { return "get_projection" }
func (GetSectionItems) Command() string { return "get_section_items" }
func (GetEntity) Command() string       { return "get_entity" }
func (UpdateEntity) Command() string    { return "update_entity" }
func (UpdateProject) Command() string   { return "update_project" }
func (UpdateModule) Command() string    { return "update_module" }
func (Export) Command() string          { return "export" }
func (SaveFile) Command() string        { return "save_file" }
func (LoadSymbols) Command() string     { return "load_symbols" }
func (MergeSymbols) Command() string    { return "merge_symbols" }

func (OpenContent) decodeResult(d json.RawMessage) (any, error) { return decodeAs[calib.Metadata](d) }
func (OpenFile) decodeResult(d json.RawMessage) (any, error)    { return decodeAs[calib.Metadata](d) }
func (CreateEmpty) decodeResult(d json.RawMessage) (any, error) { return decodeAs[calib.Metadata](d) }
func (GetProjection) decodeResult(d json.RawMessage) (any, error) {
	return decodeAs[[]calib.Container](d)
}
func (GetSectionItems) decodeResult(d json.RawMessage) (any, error) {
	return decodeAs[calib.SectionPage](d)
}
func (GetEntity) decodeResult(d json.RawMessage) (any, error)     { return decodeAs[calib.EntityValue](d) }
func (UpdateEntity) decodeResult(json.RawMessage) (any, error)    { return nil, nil }
func (UpdateProject) decodeResult(d json.RawMessage) (any, error) { return decodeAs[calib.Metadata](d) }
func (UpdateModule) decodeResult(d json.RawMessage) (any, error)  { return decodeAs[calib.Metadata](d) }
func (Export) decodeResult(d json.RawMessage) (any, error)        { return decodeAs[string](d) }
func (SaveFile) decodeResult(json.RawMessage) (any, error)        { return nil, nil }
func (LoadSymbols) decodeResult(d json.RawMessage) (any, error) {
	return decodeAs[[]calib.ImportSymbol](d)
}
func (MergeSymbols) decodeResult(d json.RawMessage) (any, error) {
	return decodeAs[calib.MergeResult](d)
}

func decodeAs[T any](data json.RawMessage) (any, error) {
	var v T
	if len(data) == 0 {
		return v, nil
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, errors.Wrapf(err, "decode %T", v)
	}
	return v, nil
}

// decodeRequest builds the request named typ from its wire payload.
func decodeRequest(typ string, data json.RawMessage) (Request, error) {
	switch typ {
	case OpenContent{}.Command():
		return decodeReq[OpenContent](data)
	case OpenFile{}.Command():
		return decodeReq[OpenFile](data)
	case CreateEmpty{}.Command():
		return CreateEmpty{}, nil
	case GetProjection{}.Command():
		return decodeReq[GetProjection](data)
	case GetSectionItems{}.Command():
		return decodeReq[GetSectionItems](data)
	case GetEntity{}.Command():
		return decodeReq[GetEntity](data)
	case UpdateEntity{}.Command():
		return decodeReq[UpdateEntity](data)
	case UpdateProject{}.Command():
		return decodeReq[UpdateProject](data)
	case UpdateModule{}.Command():
		return decodeReq[UpdateModule](data)
	case Export{}.Command():
		return Export{}, nil
	case SaveFile{}.Command():
		return decodeReq[SaveFile](data)
	case LoadSymbols{}.Command():
		return decodeReq[LoadSymbols](data)
	case MergeSymbols{}.Command():
		return decodeReq[MergeSymbols](data)
	}
	return nil, calib.Errorf(calib.CodeValidation, "unknown command %q", typ)
}

func decodeReq[T Request](data json.RawMessage) (Request, error) {
	var req T
	if len(data) == 0 {
		return req, nil
	}
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, calib.Errorf(calib.CodeValidation, "invalid %s payload: %v", req.Command(), err)
	}
	return req, nil
}
