package pagination

import (
	"fmt"
	"strings"
)

// Area is where the pagination bar is placed relative to the table.
type Area string

const (
	AreaNone  Area = "none"
	AreaAbove Area = "above"
	AreaBelow Area = "below"
)

// ParseArea parses an area name. The empty string means AreaNone.
func ParseArea(s string) (Area, error) {
	switch Area(strings.ToLower(strings.TrimSpace(s))) {
	case "", AreaNone:
		return AreaNone, nil
	case AreaAbove:
		return AreaAbove, nil
	case AreaBelow:
		return AreaBelow, nil
	default:
		return AreaNone, fmt.Errorf("unknown pagination area %q", s)
	}
}

// Enabled reports whether the area shows a pagination bar.
func (a Area) Enabled() bool {
	return a == AreaAbove || a == AreaBelow
}

// Direction is the way the link window moved on a page change.
type Direction int

const (
	Still Direction = iota
	Increase
	Decrease
)

func (d Direction) String() string {
	switch d {
	case Increase:
		return "increase"
	case Decrease:
		return "decrease"
	default:
		return "still"
	}
}
