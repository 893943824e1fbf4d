package domain

import "fmt"

// Sex of a synthesized person.
type Sex uint8

const (
	SexMale Sex = iota
	SexFemale
)

// String implements fmt.Stringer.
func (s Sex) String() string {
	switch s {
	case SexMale:
		return "male"
	case SexFemale:
		return "female"
	default:
		return fmt.Sprintf("sex(%d)", uint8(s))
	}
}

// IsValid reports whether s is a known value.
func (s Sex) IsValid() bool {
	return s == SexMale || s == SexFemale
}

// Area is one statistical area in a population, with the cases it started with.
type Area struct {
	Code         AreaCode
	InitialCases int
}

// Household groups people living at one address. Area indexes Population.Areas.
type Household struct {
	ID   uint32
	Area uint32
}

// Person is one synthesized individual. Household and Area index the
// corresponding Population slices.
type Person struct {
	ID        uint32
	Household uint32
	Area      uint32
	Age       uint16
	Sex       Sex
	Infected  bool
}

// Population is the artifact produced by the init stage and consumed by every
// downstream stage. Slices are ordered by ID, and Areas by code.
type Population struct {
	Region     Region
	Areas      []Area
	Households []Household
	People     []Person
}

// Validate checks field ranges and the cross references between slices.
func (p *Population) Validate() error {
	fields := make(map[string]string)

	if !p.Region.IsValid() {
		fields["region"] = fmt.Sprintf("invalid: %q", p.Region)
	}
	for i, a := range p.Areas {
		if a.Code.IsZero() {
			fields["areas"] = fmt.Sprintf("area %d has no code", i)
			break
		}
		if a.InitialCases < 0 {
			fields["areas"] = fmt.Sprintf("area %d (%s) has %d initial cases", i, a.Code, a.InitialCases)
			break
		}
	}
	for i, h := range p.Households {
		if int(h.ID) != i {
			fields["households"] = fmt.Sprintf("household %d has id %d", i, h.ID)
			break
		}
		if int(h.Area) >= len(p.Areas) {
			fields["households"] = fmt.Sprintf("household %d references area %d of %d", i, h.Area, len(p.Areas))
			break
		}
	}
	for i, person := range p.People {
		if int(person.ID) != i {
			fields["people"] = fmt.Sprintf("person %d has id %d", i, person.ID)
			break
		}
		if int(person.Household) >= len(p.Households) {
			fields["people"] = fmt.Sprintf("person %d references household %d of %d", i, person.Household, len(p.Households))
			break
		}
		if int(person.Area) >= len(p.Areas) {
			fields["people"] = fmt.Sprintf("person %d references area %d of %d", i, person.Area, len(p.Areas))
			break
		}
		if !person.Sex.IsValid() {
			fields["people"] = fmt.Sprintf("person %d has %s", i, person.Sex)
			break
		}
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// InfectedCount returns the number of initially infected people.
func (p *Population) InfectedCount() int {
	n := 0
	for _, person := range p.People {
		if person.Infected {
			n++
		}
	}
	return n
}
