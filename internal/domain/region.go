package domain

import (
	"fmt"
	"strings"
)

// Region is the closed set of geographic scopes the pipeline can run on. The
// underlying string is the CLI selector.
type Region string

const (
	RegionWestYorkshireSmall Region = "west-yorkshire-small"
	RegionWestYorkshireLarge Region = "west-yorkshire-large"
	RegionDevon              Region = "devon"
	RegionTwoCounties        Region = "two-counties"
	RegionNational           Region = "national"
)

// Regions returns every supported region in declaration order.
func Regions() []Region {
	return []Region{
		RegionWestYorkshireSmall,
		RegionWestYorkshireLarge,
		RegionDevon,
		RegionTwoCounties,
		RegionNational,
	}
}

// ParseRegion converts a CLI selector into a Region.
func ParseRegion(s string) (Region, error) {
	r := Region(strings.ToLower(strings.TrimSpace(s)))
	if !r.IsValid() {
		return "", fmt.Errorf("%w: %q (want one of %s)", ErrInvalidRegion, s, strings.Join(regionSelectors(), ", "))
	}
	return r, nil
}

// IsValid returns true if the region is one of the defined constants.
func (r Region) IsValid() bool {
	switch r {
	case RegionWestYorkshireSmall, RegionWestYorkshireLarge, RegionDevon, RegionTwoCounties, RegionNational:
		return true
	default:
		return false
	}
}

// String implements fmt.Stringer.
func (r Region) String() string {
	return string(r)
}

// Name returns the identifier used in artifact file names, e.g.
// "WestYorkshireSmall". Downstream Python tooling expects these names.
func (r Region) Name() string {
	switch r {
	case RegionWestYorkshireSmall:
		return "WestYorkshireSmall"
	case RegionWestYorkshireLarge:
		return "WestYorkshireLarge"
	case RegionDevon:
		return "Devon"
	case RegionTwoCounties:
		return "TwoCounties"
	case RegionNational:
		return "National"
	default:
		panic(fmt.Sprintf("domain: unhandled region %q", string(r)))
	}
}

// Table returns the bundled input table for the region. ok is false for
// regions that are enumerated from the national area directory instead.
func (r Region) Table() (name string, ok bool) {
	switch r {
	case RegionWestYorkshireSmall:
		return "Input_Test_3.csv", true
	case RegionWestYorkshireLarge:
		return "Input_WestYorkshire.csv", true
	case RegionDevon:
		return "Input_Devon.csv", true
	case RegionTwoCounties:
		return "Input_Test_accross.csv", true
	case RegionNational:
		return "", false
	default:
		panic(fmt.Sprintf("domain: unhandled region %q", string(r)))
	}
}

func regionSelectors() []string {
	regions := Regions()
	out := make([]string, len(regions))
	for i, r := range regions {
		out[i] = r.String()
	}
	return out
}
