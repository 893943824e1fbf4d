package domain

import (
	"fmt"
	"slices"
)

// DefaultCases is the initial case count applied to an area whenever the
// source omits it: a table without a cases column, an empty cell, or a code
// enumerated from the national directory.
const DefaultCases = 5

// DuplicatePolicy decides what Insert does when an area code is already present.
type DuplicatePolicy string

const (
	// DuplicateError rejects the second occurrence.
	DuplicateError DuplicatePolicy = "error"
	// DuplicateOverwrite keeps the last occurrence.
	DuplicateOverwrite DuplicatePolicy = "overwrite"
	// DuplicateSum adds the counts together.
	DuplicateSum DuplicatePolicy = "sum"
)

// IsValid returns true if the policy is one of the defined constants.
func (p DuplicatePolicy) IsValid() bool {
	switch p {
	case DuplicateError, DuplicateOverwrite, DuplicateSum:
		return true
	default:
		return false
	}
}

// String implements fmt.Stringer.
func (p DuplicatePolicy) String() string {
	return string(p)
}

// DuplicateAreaError is returned by Insert under DuplicateError.
type DuplicateAreaError struct {
	Code AreaCode
}

func (e *DuplicateAreaError) Error() string {
	return fmt.Sprintf("duplicate area code %s", e.Code)
}

// InitialConditions maps each area to its initial case count. Iteration is
// always in area-code order so anything derived from it is deterministic.
type InitialConditions struct {
	policy DuplicatePolicy
	cases  map[AreaCode]int
}

// NewInitialConditions returns an empty mapping with the given duplicate
// policy. An empty policy means DuplicateError.
func NewInitialConditions(policy DuplicatePolicy) *InitialConditions {
	if policy == "" {
		policy = DuplicateError
	}
	return &InitialConditions{
		policy: policy,
		cases:  make(map[AreaCode]int),
	}
}

// Insert records cases for code. Negative counts and zero-value codes are
// rejected.
func (ic *InitialConditions) Insert(code AreaCode, cases int) error {
	if code.IsZero() {
		return fmt.Errorf("%w: empty area code", ErrInvalidAreaCode)
	}
	if cases < 0 {
		return fmt.Errorf("%w: cases for %s must be non-negative, got %d", ErrValidation, code, cases)
	}

	prev, exists := ic.cases[code]
	if !exists {
		ic.cases[code] = cases
		return nil
	}

	switch ic.policy {
	case DuplicateOverwrite:
		ic.cases[code] = cases
	case DuplicateSum:
		ic.cases[code] = prev + cases
	case DuplicateError:
		return &DuplicateAreaError{Code: code}
	default:
		panic(fmt.Sprintf("domain: unhandled duplicate policy %q", string(ic.policy)))
	}
	return nil
}

// Cases returns the count for code and whether it is present.
func (ic *InitialConditions) Cases(code AreaCode) (int, bool) {
	n, ok := ic.cases[code]
	return n, ok
}

// Len returns the number of areas.
func (ic *InitialConditions) Len() int {
	return len(ic.cases)
}

// Codes returns every area code in ascending order.
func (ic *InitialConditions) Codes() []AreaCode {
	codes := make([]AreaCode, 0, len(ic.cases))
	for c := range ic.cases {
		codes = append(codes, c)
	}
	slices.SortFunc(codes, AreaCode.Compare)
	return codes
}

// Each calls fn for every area in ascending code order.
func (ic *InitialConditions) Each(fn func(code AreaCode, cases int)) {
	for _, c := range ic.Codes() {
		fn(c, ic.cases[c])
	}
}

// TotalCases sums the counts of every area.
func (ic *InitialConditions) TotalCases() int {
	total := 0
	for _, n := range ic.cases {
		total += n
	}
	return total
}
