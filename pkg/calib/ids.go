package calib

import (
	"strings"

	"github.com/pkg/errors"
)

const idSeparator = "::"

// SectionID identifies one section of one container.
type SectionID struct {
	Container string
	Kind      Kind
}

func (id SectionID) String() string {
	return id.Container + idSeparator + string(id.Kind)
}

// MarshalText renders the id as "container::Kind".
func (id SectionID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText parses "container::Kind".
func (id *SectionID) UnmarshalText(b []byte) error {
	parts := strings.SplitN(string(b), idSeparator, 2)
	if len(parts) != 2 || parts[1] == "" {
		return errors.Errorf("invalid section id %q", string(b))
	}
	id.Container = parts[0]
	id.Kind = Kind(parts[1])
	return nil
}

// ItemID identifies one item. It is derived from the entity name so it survives
// a projection refresh as long as the entity keeps its name.
type ItemID struct {
	Container string
	Kind      Kind
	Name      string
}

// NewItemID builds the id of an item in the given section.
func NewItemID(section SectionID, name string) ItemID {
	return ItemID{Container: section.Container, Kind: section.Kind, Name: name}
}

func (id ItemID) String() string {
	return id.Container + idSeparator + string(id.Kind) + idSeparator + id.Name
}

// Section returns the id of the section holding the item.
func (id ItemID) Section() SectionID {
	return SectionID{Container: id.Container, Kind: id.Kind}
}

// IsZero reports whether the id is unset.
func (id ItemID) IsZero() bool {
	return id == ItemID{}
}

// MarshalText renders the id as "container::Kind::name".
func (id ItemID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText parses "container::Kind::name". Names may not contain "::"
// but anything after the second separator is taken as the name verbatim.
func (id *ItemID) UnmarshalText(b []byte) error {
	parts := strings.SplitN(string(b), idSeparator, 3)
	if len(parts) != 3 || parts[1] == "" {
		return errors.Errorf("invalid item id %q", string(b))
	}
	id.Container = parts[0]
	id.Kind = Kind(parts[1])
	id.Name = parts[2]
	return nil
}

// ParseItemID parses the wire form of an item id.
func ParseItemID(s string) (ItemID, error) {
	var id ItemID
	err := id.UnmarshalText([]byte(s))
	return id, err
}
