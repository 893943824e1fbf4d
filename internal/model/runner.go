package model

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"

	"github.com/jsamuelsen11/ramp-pipeline/internal/artifact"
	"github.com/jsamuelsen11/ramp-pipeline/internal/domain"
	"github.com/jsamuelsen11/ramp-pipeline/internal/platform/logging"
	"github.com/jsamuelsen11/ramp-pipeline/internal/ports"
)

// DailyFile is the per-iteration summary written when output is enabled.
const DailyFile = "daily.csv"

// Compile-time interface check.
var _ ports.ModelRunner = (*Runner)(nil)

type state uint8

const (
	susceptible state = iota
	infected
	recovered
)

// Runner is a household-and-area SIR model. It stands in for the external
// simulation so the run-model stage can be exercised end to end.
type Runner struct {
	params Parameters
}

// NewRunner returns a Runner for validated parameters.
func NewRunner(params Parameters) *Runner {
	return &Runner{params: params}
}

// Parameters returns the parameters the runner was built with.
func (m *Runner) Parameters() Parameters {
	return m.params
}

// Day is one row of the daily summary.
type Day struct {
	Iteration   int
	Susceptible int
	Infected    int
	Recovered   int
}

// Run simulates Iterations steps over pop. Each step, every infected person
// exposes their household members and one random resident of their area,
// then recovers with the recovery probability. Nothing is written unless
// output is enabled.
func (m *Runner) Run(ctx context.Context, pop *domain.Population, outDir string, r *rand.Rand) error {
	mp := m.params.Microsim
	logger := logging.FromContext(ctx)

	states := make([]state, len(pop.People))
	for i, p := range pop.People {
		if p.Infected {
			states[i] = infected
		}
	}
	members := groupBy(len(pop.Households), pop.People, func(p domain.Person) uint32 { return p.Household })
	residents := groupBy(len(pop.Areas), pop.People, func(p domain.Person) uint32 { return p.Area })

	days := make([]Day, 0, mp.Iterations+1)
	days = append(days, summarise(0, states))

	if mp.Output {
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return &domain.ArtifactError{Kind: domain.ErrWriteFailure, Path: outDir, Err: err}
		}
	}

	for iter := 1; iter <= mp.Iterations; iter++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		next := step(pop, states, members, residents, mp, r)
		states = next
		days = append(days, summarise(iter, states))

		if mp.OutputEveryIteration {
			if err := writeAreaCounts(ctx, outDir, iter, pop, states); err != nil {
				return err
			}
		}
	}

	last := days[len(days)-1]
	logger.InfoContext(ctx, "simulation finished",
		slog.Int("iterations", mp.Iterations),
		slog.Int("infected", last.Infected),
		slog.Int("recovered", last.Recovered),
	)

	if !mp.Output {
		return nil
	}
	path := filepath.Join(outDir, DailyFile)
	var buf bytes.Buffer
	if err := writeCSV(&buf, []string{"iteration", "susceptible", "infected", "recovered"}, dailyRows(days)); err != nil {
		return &domain.ArtifactError{Kind: domain.ErrWriteFailure, Path: path, Err: err}
	}
	if err := artifact.WriteFile(ctx, path, buf.Bytes()); err != nil {
		return &domain.ArtifactError{Kind: domain.ErrWriteFailure, Path: path, Err: err}
	}
	return nil
}

// step advances one iteration. Draws happen in person order so a seed fixes
// the whole trajectory.
func step(pop *domain.Population, cur []state, members, residents [][]uint32, mp Microsim, r *rand.Rand) []state {
	next := make([]state, len(cur))
	copy(next, cur)

	expose := func(target uint32) {
		if cur[target] == susceptible && next[target] == susceptible && r.Float64() < mp.TransmissionProb {
			next[target] = infected
		}
	}

	for i, p := range pop.People {
		if cur[i] != infected {
			continue
		}
		for _, hm := range members[p.Household] {
			if int(hm) != i {
				expose(hm)
			}
		}
		if area := residents[p.Area]; len(area) > 0 {
			expose(area[r.IntN(len(area))])
		}
		if r.Float64() < mp.RecoveryProb {
			next[i] = recovered
		}
	}
	return next
}

func groupBy(n int, people []domain.Person, key func(domain.Person) uint32) [][]uint32 {
	groups := make([][]uint32, n)
	for _, p := range people {
		k := key(p)
		groups[k] = append(groups[k], p.ID)
	}
	return groups
}

func summarise(iter int, states []state) Day {
	d := Day{Iteration: iter}
	for _, s := range states {
		switch s {
		case susceptible:
			d.Susceptible++
		case infected:
			d.Infected++
		case recovered:
			d.Recovered++
		}
	}
	return d
}

func dailyRows(days []Day) [][]string {
	rows := make([][]string, len(days))
	for i, d := range days {
		rows[i] = []string{
			strconv.Itoa(d.Iteration),
			strconv.Itoa(d.Susceptible),
			strconv.Itoa(d.Infected),
			strconv.Itoa(d.Recovered),
		}
	}
	return rows
}

// writeCSV writes header and rows to w and reports any write or flush error.
func writeCSV(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}

func writeAreaCounts(ctx context.Context, outDir string, iter int, pop *domain.Population, states []state) error {
	counts := make([]int, len(pop.Areas))
	for i, p := range pop.People {
		if states[i] == infected {
			counts[p.Area]++
		}
	}
	rows := make([][]string, len(pop.Areas))
	for i, a := range pop.Areas {
		rows[i] = []string{a.Code.String(), strconv.Itoa(counts[i])}
	}

	path := filepath.Join(outDir, fmt.Sprintf("areas_%04d.csv", iter))
	var buf bytes.Buffer
	if err := writeCSV(&buf, []string{"MSOA11CD", "infected"}, rows); err != nil {
		return &domain.ArtifactError{Kind: domain.ErrWriteFailure, Path: path, Err: err}
	}
	if err := artifact.WriteFile(ctx, path, buf.Bytes()); err != nil {
		return &domain.ArtifactError{Kind: domain.ErrWriteFailure, Path: path, Err: err}
	}
	return nil
}
