package domain

import "fmt"

// areaCodeLen is the length of a GSS statistical area code, e.g. E02000001.
const areaCodeLen = 9

// AreaCode identifies a statistical sub-area (MSOA). The zero value is not a
// valid code; construct with ParseAreaCode.
type AreaCode struct {
	code string
}

// ParseAreaCode validates s as a GSS code: one upper-case letter followed by
// eight digits. The input is not normalised, so a parsed code always renders
// back to the exact input text.
func ParseAreaCode(s string) (AreaCode, error) {
	if len(s) != areaCodeLen {
		return AreaCode{}, fmt.Errorf("%w: %q has length %d, want %d", ErrInvalidAreaCode, s, len(s), areaCodeLen)
	}
	if s[0] < 'A' || s[0] > 'Z' {
		return AreaCode{}, fmt.Errorf("%w: %q must start with an upper-case letter", ErrInvalidAreaCode, s)
	}
	for i := 1; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return AreaCode{}, fmt.Errorf("%w: %q has non-digit at position %d", ErrInvalidAreaCode, s, i)
		}
	}
	return AreaCode{code: s}, nil
}

// MustAreaCode is ParseAreaCode for literals known to be valid.
func MustAreaCode(s string) AreaCode {
	c, err := ParseAreaCode(s)
	if err != nil {
		panic(err)
	}
	return c
}

// String implements fmt.Stringer.
func (c AreaCode) String() string {
	return c.code
}

// IsZero reports whether c was never parsed.
func (c AreaCode) IsZero() bool {
	return c.code == ""
}

// Compare orders codes by their text.
func (c AreaCode) Compare(other AreaCode) int {
	switch {
	case c.code < other.code:
		return -1
	case c.code > other.code:
		return 1
	default:
		return 0
	}
}

// MarshalText implements encoding.TextMarshaler.
func (c AreaCode) MarshalText() ([]byte, error) {
	return []byte(c.code), nil
}

// UnmarshalText implements encoding.TextUnmarshaler with validation.
func (c *AreaCode) UnmarshalText(b []byte) error {
	parsed, err := ParseAreaCode(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
