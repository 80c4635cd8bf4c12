package core

import "fmt"

// Year is a calendar year in the panel. All temporal arithmetic in the
// pipeline runs on whole years; there is deliberately no finer resolution.
type Year int

func (y Year) Int() int { return int(y) }

func (y Year) String() string { return fmt.Sprintf("%d", int(y)) }

// Before returns true if y is strictly before u
func (y Year) Before(u Year) bool { return y < u }

// After returns true if y is strictly after u
func (y Year) After(u Year) bool { return y > u }

// YearRange is an inclusive range of years
type YearRange struct {
	Start Year `json:"start" toml:"start"`
	End   Year `json:"end" toml:"end"`
}

// Contains reports whether the year falls inside the range (inclusive bounds)
func (r YearRange) Contains(y Year) bool {
	return y >= r.Start && y <= r.End
}

// Overlaps reports whether two inclusive ranges share any year
func (r YearRange) Overlaps(other YearRange) bool {
	return r.Start <= other.End && other.Start <= r.End
}

// Span returns the number of years covered, inclusive of both bounds
func (r YearRange) Span() int {
	if r.End < r.Start {
		return 0
	}
	return int(r.End-r.Start) + 1
}

// Valid reports whether the range is well-formed
func (r YearRange) Valid() bool {
	return r.End >= r.Start
}

func (r YearRange) String() string {
	return fmt.Sprintf("%d-%d", int(r.Start), int(r.End))
}
