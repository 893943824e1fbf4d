package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/jsamuelsen11/ramp-pipeline/internal/adapters/ledger"
	"github.com/jsamuelsen11/ramp-pipeline/internal/app"
	"github.com/jsamuelsen11/ramp-pipeline/internal/artifact"
	"github.com/jsamuelsen11/ramp-pipeline/internal/domain"
	"github.com/jsamuelsen11/ramp-pipeline/internal/input"
	"github.com/jsamuelsen11/ramp-pipeline/internal/platform/health"
	"github.com/jsamuelsen11/ramp-pipeline/internal/rng"
)

const seedFlag = "rng-seed"

// globalFlags are shared by every command.
type globalFlags struct {
	seed           uint64
	profile        string
	configDir      string
	parametersFile string
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:           "ramp",
		Short:         "Build and run regional population models",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.Uint64Var(&flags.seed, seedFlag, 0, "seed for the random generator; drawn from entropy when omitted")
	pf.StringVar(&flags.profile, "profile", "", "configuration profile (default $RAMP_PROFILE, then local)")
	pf.StringVar(&flags.configDir, "config-dir", "", "directory holding base.yaml and profile files (default configs)")

	for _, action := range domain.Actions() {
		root.AddCommand(newStageCmd(flags, action, stderr))
	}
	root.AddCommand(
		newRegionsCmd(flags, stdout, stderr),
		newDoctorCmd(flags, stdout, stderr),
		newHistoryCmd(flags, stdout, stderr),
	)
	return root
}

func newStageCmd(flags *globalFlags, action domain.Action, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:       action.String() + " <region>",
		Short:     stageSummary(action),
		Args:      cobra.ExactArgs(1),
		ValidArgs: regionSelectors(),
		RunE: func(cmd *cobra.Command, args []string) error {
			region, err := domain.ParseRegion(args[0])
			if err != nil {
				return err
			}
			src, err := newSource(cmd, flags)
			if err != nil {
				return err
			}

			env, err := bootstrap(cmd.Context(), flags, stderr)
			if err != nil {
				return err
			}
			defer env.close()

			pipeline, err := do.Invoke[*app.Pipeline](env.injector)
			if err != nil {
				return fmt.Errorf("resolving pipeline: %w", err)
			}
			return pipeline.Dispatch(cmd.Context(), action, region, src)
		},
	}
	if action == domain.ActionRunModel {
		cmd.Flags().StringVar(&flags.parametersFile, "parameters-file", "", "model parameters YAML (default model.parameters_file)")
	}
	return cmd
}

func stageSummary(action domain.Action) string {
	switch action {
	case domain.ActionInit:
		return "Synthesize and store the population for a region"
	case domain.ActionPythonCache:
		return "Write the python cache files from a stored population"
	case domain.ActionSnapshot:
		return "Write the npz snapshot from a stored population"
	case domain.ActionRunModel:
		return "Run the simulation over a stored population"
	default:
		panic(fmt.Sprintf("ramp: unhandled action %q", string(action)))
	}
}

// newSource builds the invocation's only random source.
func newSource(cmd *cobra.Command, flags *globalFlags) (*rng.Source, error) {
	if cmd.Flags().Changed(seedFlag) {
		seed := flags.seed
		return rng.New(&seed)
	}
	return rng.New(nil)
}

func newRegionsCmd(flags *globalFlags, stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "regions",
		Short: "List regions with their input source and stored population state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := bootstrap(cmd.Context(), flags, stderr)
			if err != nil {
				return err
			}
			defer env.close()

			resolver := do.MustInvoke[*input.Resolver](env.injector)
			store := do.MustInvoke[*artifact.Store](env.injector)

			w := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "REGION\tSOURCE\tPOPULATION")
			for _, region := range domain.Regions() {
				source := "area directory " + env.cfg.Directory.BaseURL
				if path, ok := resolver.TablePath(region); ok {
					source = path
				}
				check := store.Check(artifact.PopulationKey(region))
				state := string(check.State)
				if check.Err != nil {
					state += " (" + check.Err.Error() + ")"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", region, source, state)
			}
			return w.Flush()
		},
	}
}

func newDoctorCmd(flags *globalFlags, stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Run preflight checks against inputs, the area directory and the ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := bootstrap(cmd.Context(), flags, stderr)
			if err != nil {
				return err
			}
			defer env.close()

			registry := do.MustInvoke[*health.Registry](env.injector)
			results := registry.Report(cmd.Context())

			w := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "CHECK\tSTATUS\tDURATION\tDETAIL")
			for _, res := range results {
				status, detail := "ok", ""
				if res.Err != nil {
					status, detail = "FAIL", res.Err.Error()
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", res.Name, status, res.Duration.Round(time.Millisecond), detail)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			if !health.Healthy(results) {
				return errors.New("preflight checks failed")
			}
			return nil
		},
	}
}

func newHistoryCmd(flags *globalFlags, stdout, stderr io.Writer) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:       "history [region]",
		Short:     "List recorded runs, newest first",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: regionSelectors(),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := domain.RunFilter{Limit: limit}
			if len(args) == 1 {
				region, err := domain.ParseRegion(args[0])
				if err != nil {
					return err
				}
				filter.Region = region
			}

			env, err := bootstrap(cmd.Context(), flags, stderr)
			if err != nil {
				return err
			}
			defer env.close()

			if !env.cfg.Ledger.Enabled {
				return errors.New("run ledger is disabled (ledger.enabled: false)")
			}
			store, err := do.Invoke[*ledger.Store](env.injector)
			if err != nil {
				return fmt.Errorf("opening run ledger: %w", err)
			}
			runs, err := store.List(cmd.Context(), filter)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "STARTED\tRUN\tREGION\tACTION\tSTATUS\tSEED\tDURATION\tERROR")
			for _, r := range runs {
				seed := fmt.Sprintf("%d", r.Seed)
				if !r.Deterministic {
					seed += "*"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
					r.StartedAt.Local().Format(time.DateTime),
					r.ID, r.Region, r.Action, r.Status, seed,
					r.Duration().Round(time.Millisecond), oneLine(r.Error),
				)
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of runs to list")
	return cmd
}

func regionSelectors() []string {
	regions := domain.Regions()
	out := make([]string, len(regions))
	for i, r := range regions {
		out[i] = r.String()
	}
	return out
}

func oneLine(s string) string {
	return strings.ReplaceAll(s, "\n", " ")
}
