// Package calib holds the data model shared by the calibration store, the
// command channel and the editor session.
package calib

// Metadata summarizes an open dataset.
type Metadata struct {
	ProjectName           string   `json:"project_name"`
	ProjectLongIdentifier string   `json:"project_long_identifier"`
	ModuleNames           []string `json:"module_names"`
	HeaderComment         *string  `json:"header_comment,omitempty"`
	ASAP2Version          *string  `json:"asap2_version,omitempty"`
	WarningCount          int      `json:"warning_count"`
}

// Container is a module of the dataset.
type Container struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	LongIdentifier string    `json:"long_identifier"`
	Sections       []Section `json:"sections"`
}

// Section groups the items of one kind. Total is the number of entities the
// store holds for the section; Items may hold fewer when paged.
type Section struct {
	ID    SectionID `json:"id"`
	Title string    `json:"title"`
	Kind  Kind      `json:"kind"`
	Total int       `json:"total"`
	Items []Item    `json:"items"`
}

// Remaining is how many items the store holds beyond those materialized.
func (s Section) Remaining() int {
	if n := s.Total - len(s.Items); n > 0 {
		return n
	}
	return 0
}

// Item is the read projection of one entity.
type Item struct {
	ID          ItemID       `json:"id"`
	Name        string       `json:"name"`
	Kind        Kind         `json:"kind"`
	Description *string      `json:"description,omitempty"`
	Details     []DetailPair `json:"details"`
}

// DetailPair is one label/value line shown next to an item.
type DetailPair struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Detail returns the value for label, if present.
func (it Item) Detail(label string) (string, bool) {
	for _, d := range it.Details {
		if d.Label == label {
			return d.Value, true
		}
	}
	return "", false
}

// SectionPage is a window of one section's items.
type SectionPage struct {
	Section SectionID `json:"section"`
	Offset  int       `json:"offset"`
	Total   int       `json:"total"`
	Items   []Item    `json:"items"`
}

// ImportSymbol is a symbol read from a compiled binary.
type ImportSymbol struct {
	Name    string `json:"name"`
	Address uint64 `json:"address"`
	Size    uint64 `json:"size"`
	Bind    string `json:"bind"`
	Type    string `json:"type"`
	Section string `json:"section"`
}

// MergeResult reports the outcome of a symbol merge.
type MergeResult struct {
	Metadata Metadata `json:"metadata"`
	Created  int      `json:"created"`
}

// Find returns the item with the given id.
func Find(containers []Container, id ItemID) (Item, bool) {
	for _, c := range containers {
		if c.ID != id.Container {
			continue
		}
		for _, s := range c.Sections {
			if s.Kind != id.Kind {
				continue
			}
			for _, it := range s.Items {
				if it.ID == id {
					return it, true
				}
			}
		}
	}
	return Item{}, false
}

// First returns the first item of the first non-empty section.
func First(containers []Container) (Item, bool) {
	for _, c := range containers {
		for _, s := range c.Sections {
			if len(s.Items) > 0 {
				return s.Items[0], true
			}
		}
	}
	return Item{}, false
}

// CountItems returns the number of materialized items.
func CountItems(containers []Container) int {
	n := 0
	for _, c := range containers {
		for _, s := range c.Sections {
			n += len(s.Items)
		}
	}
	return n
}
