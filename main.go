package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ltlab/golasso/ltl"
	"github.com/ltlab/golasso/solver"
)

type options struct {
	file    string
	depth   uint64
	prob    uint32
	useSAT  bool
	seed    int64
	models  int
	check   bool
	verbose bool
}

func main() {
	var opts options

	cmd := &cobra.Command{
		Use:   "golasso [flags] <formula>",
		Short: "golasso decides satisfiability of LTL formulas",
		Long: `golasso decides satisfiability of a Linear Temporal Logic formula and,
when it is satisfiable, prints an ultimately periodic model: a sequence of
states followed by a loop. Formulas use !, X, G, F, &, |, U, -> and <->:

  golasso 'G(request -> F grant)'`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			input, err := readFormula(args, opts.file)
			if err != nil {
				return err
			}
			return run(input, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.file, "file", "f", "", "read the formula from a file instead of the command line")
	flags.Uint64Var(&opts.depth, "depth", 100, "maximum search depth per branch")
	flags.Uint32Var(&opts.prob, "prob", 100, "probability (0-100) of running the loop check before a step")
	flags.BoolVar(&opts.useSAT, "sat", false, "resolve disjunctions with the embedded SAT solver")
	flags.Int64Var(&opts.seed, "seed", 0, "seed for the lookback heuristic")
	flags.IntVar(&opts.models, "models", 1, "maximum number of models to enumerate")
	flags.BoolVar(&opts.check, "check", false, "re-evaluate every model against the formula")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "sets verbose mode on")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func readFormula(args []string, file string) (string, error) {
	if file != "" {
		content, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("could not read formula file: %v", err)
		}
		return string(content), nil
	}
	if len(args) == 1 {
		return args[0], nil
	}
	content, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("could not read formula from stdin: %v", err)
	}
	return string(content), nil
}

func run(input string, opts options) error {
	f, err := ltl.ParseString(strings.TrimSpace(input))
	if err != nil {
		return fmt.Errorf("could not parse formula: %v", err)
	}

	log := logrus.New()
	log.SetOutput(os.Stderr)
	if opts.verbose {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.WarnLevel)
	}

	s := solver.New(f, solver.Options{
		MaximumDepth:         opts.depth,
		BacktrackProbability: opts.prob,
		UseSAT:               opts.useSAT,
		Seed:                 opts.seed,
		Logger:               log,
	})

	sat := color.New(color.FgGreen, color.Bold)
	unsat := color.New(color.FgRed, color.Bold)

	found := 0
	for found < opts.models {
		result := s.Solve()
		if result != solver.Satisfiable {
			break
		}
		m := s.Model()
		if m == nil {
			break
		}
		found++

		sat.Println(result.String())
		fmt.Println(m)
		fmt.Printf("loop state: %d\n", m.LoopState)
		if opts.check {
			if m.Satisfies(f) {
				fmt.Println("model check: ok")
			} else {
				unsat.Println("model check: FAILED")
			}
		}
	}

	if found == 0 {
		unsat.Println(solver.Unsatisfiable.String())
	}
	return nil
}
