package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Position is a court role a player can fill.
type Position string

const (
	Guard   Position = "G"
	Forward Position = "F"
	Center  Position = "C"
)

// positionOrder fixes the canonical G-F-C ordering of combined codes.
var positionOrder = []Position{Guard, Forward, Center}

// PositionSet is the set of positions a player is listed at. The set is
// kept in canonical order so its code is stable ("G-F", never "F-G").
type PositionSet []Position

// NewPositionSet builds a canonical set from role flags.
func NewPositionSet(guard, forward, center bool) PositionSet {
	var set PositionSet
	if guard {
		set = append(set, Guard)
	}
	if forward {
		set = append(set, Forward)
	}
	if center {
		set = append(set, Center)
	}
	return set
}

// ParsePositionSet parses a hyphenated code such as "G-F" into a set.
// Unknown letters are rejected; an empty string yields an empty set.
func ParsePositionSet(code string) (PositionSet, error) {
	if code == "" {
		return nil, nil
	}
	seen := map[Position]bool{}
	for _, part := range strings.Split(code, "-") {
		switch p := Position(strings.ToUpper(strings.TrimSpace(part))); p {
		case Guard, Forward, Center:
			seen[p] = true
		default:
			return nil, fmt.Errorf("unknown position %q in code %q", part, code)
		}
	}
	var set PositionSet
	for _, p := range positionOrder {
		if seen[p] {
			set = append(set, p)
		}
	}
	return set, nil
}

// Contains reports set membership.
func (s PositionSet) Contains(p Position) bool {
	for _, member := range s {
		if member == p {
			return true
		}
	}
	return false
}

// Primary returns the player's primary position, the first member of the
// canonical ordering. Empty sets have no primary position.
func (s PositionSet) Primary() (Position, bool) {
	if len(s) == 0 {
		return "", false
	}
	return s[0], true
}

// Code renders the hyphenated form used in cache documents, e.g. "G-F".
func (s PositionSet) Code() string {
	parts := make([]string, len(s))
	for i, p := range s {
		parts[i] = string(p)
	}
	return strings.Join(parts, "-")
}

func (s PositionSet) IsEmpty() bool {
	return len(s) == 0
}

func (s PositionSet) Equal(other PositionSet) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the set as its hyphenated code, or null when the
// position is unknown, matching the persisted cache document schema.
func (s PositionSet) MarshalJSON() ([]byte, error) {
	if len(s) == 0 {
		return []byte("null"), nil
	}
	return json.Marshal(s.Code())
}

func (s *PositionSet) UnmarshalJSON(data []byte) error {
	var code *string
	if err := json.Unmarshal(data, &code); err != nil {
		return err
	}
	if code == nil {
		*s = nil
		return nil
	}
	parsed, err := ParsePositionSet(*code)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
