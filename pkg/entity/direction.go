package entity

import (
	"fmt"
	"slices"
)

// Direction is the orientation of a relationship candidate relative to its
// known endpoint. Outbound means the endpoint is the source, Inbound means it
// is the target.
type Direction string

const (
	Outbound Direction = "outbound"
	Inbound  Direction = "inbound"
)

// Directions lists every accepted direction literal
var Directions = []Direction{Outbound, Inbound}

// Valid reports whether d is one of the enumerated literals. Matching is exact.
func (d Direction) Valid() bool {
	return slices.Contains(Directions, d)
}

func (d Direction) String() string {
	return string(d)
}

// ParseDirection accepts exactly "outbound" or "inbound"
func ParseDirection(s string) (Direction, error) {
	d := Direction(s)
	if !d.Valid() {
		return "", fmt.Errorf("unknown direction %q (want one of %v)", s, Directions)
	}
	return d, nil
}

// MarshalText implements encoding.TextMarshaler
func (d Direction) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("unknown direction %q", string(d))
	}
	return []byte(d), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Direction) UnmarshalText(text []byte) error {
	parsed, err := ParseDirection(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
