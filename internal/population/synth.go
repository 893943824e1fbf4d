// Package population is the baseline population synthesizer. It turns
// initial conditions into households and people whose structure depends only
// on the conditions and the random generator it is given, so a fixed seed
// always yields the same population.
package population

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/jsamuelsen11/ramp-pipeline/internal/domain"
	"github.com/jsamuelsen11/ramp-pipeline/internal/platform/logging"
	"github.com/jsamuelsen11/ramp-pipeline/internal/ports"
)

// Compile-time interface check.
var _ ports.Synthesizer = (*Synthesizer)(nil)

const (
	defaultMinHouseholds = 20
	defaultMaxHouseholds = 60
)

// Synthesizer implements ports.Synthesizer.
type Synthesizer struct {
	minHouseholds int
	maxHouseholds int
}

// Option customizes a Synthesizer.
type Option func(*Synthesizer)

// WithHouseholdsPerArea sets the inclusive range of households drawn per area.
func WithHouseholdsPerArea(lo, hi int) Option {
	return func(s *Synthesizer) {
		if lo >= 1 && hi >= lo {
			s.minHouseholds, s.maxHouseholds = lo, hi
		}
	}
}

// New returns a Synthesizer with the default household range.
func New(opts ...Option) *Synthesizer {
	s := &Synthesizer{
		minHouseholds: defaultMinHouseholds,
		maxHouseholds: defaultMaxHouseholds,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Synthesize builds a population. Areas are visited in code order and every
// random draw comes from r. In each area, min(cases, residents) people are
// marked initially infected. The caller sets Population.Region.
func (s *Synthesizer) Synthesize(ctx context.Context, ic *domain.InitialConditions, r *rand.Rand) (*domain.Population, error) {
	if r == nil {
		return nil, fmt.Errorf("population: nil random source")
	}

	pop := &domain.Population{
		Areas: make([]domain.Area, 0, ic.Len()),
	}

	for _, code := range ic.Codes() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cases, _ := ic.Cases(code)
		areaIdx := uint32(len(pop.Areas))
		pop.Areas = append(pop.Areas, domain.Area{Code: code, InitialCases: cases})

		first := len(pop.People)
		households := s.minHouseholds + r.IntN(s.maxHouseholds-s.minHouseholds+1)
		for range households {
			s.addHousehold(pop, areaIdx, r)
		}
		infect(pop.People[first:], cases, r)
	}

	logging.FromContext(ctx).DebugContext(ctx, "population synthesized",
		slog.Int("areas", len(pop.Areas)),
		slog.Int("households", len(pop.Households)),
		slog.Int("people", len(pop.People)),
		slog.Int("infected", pop.InfectedCount()),
	)
	return pop, nil
}

func (s *Synthesizer) addHousehold(pop *domain.Population, area uint32, r *rand.Rand) {
	hid := uint32(len(pop.Households))
	pop.Households = append(pop.Households, domain.Household{ID: hid, Area: area})

	size := householdSizes.Choose(r) + 1
	for range size {
		sex := domain.SexMale
		if r.Float64() < femaleShare {
			sex = domain.SexFemale
		}
		age := ageBands.Choose(r)*10 + r.IntN(10)
		pop.People = append(pop.People, domain.Person{
			ID:        uint32(len(pop.People)),
			Household: hid,
			Area:      area,
			Age:       uint16(age),
			Sex:       sex,
		})
	}
}

// infect marks n distinct people as infected with a partial Fisher-Yates
// shuffle over their indices.
func infect(people []domain.Person, n int, r *rand.Rand) {
	n = min(n, len(people))
	idx := make([]int, len(people))
	for i := range idx {
		idx[i] = i
	}
	for i := range n {
		j := i + r.IntN(len(idx)-i)
		idx[i], idx[j] = idx[j], idx[i]
		people[idx[i]].Infected = true
	}
}
