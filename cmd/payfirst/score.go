package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/Dan9191/payfirst/internal/health"
	"github.com/Dan9191/payfirst/internal/models"
)

type scoreOptions struct {
	in        health.Input
	history   string
	file      string
	breakdown bool
}

func newScoreCmd() *cobra.Command {
	var opts scoreOptions

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score a financial snapshot offline",
		Example: `  payfirst score --income 100000 --expense 40000 --history 40000,42000,45000 \
    --liquid 300000 --emi 10000 --outstanding 20000 --limit 200000
  payfirst score --file snapshot.json --breakdown`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := opts.input(cmd.Flags(), cmd.InOrStdin())
			if err != nil {
				return err
			}
			return runScore(cmd.OutOrStdout(), in, opts.breakdown, time.Now())
		},
	}

	f := cmd.Flags()
	f.Float64Var(&opts.in.MonthlyIncome, "income", 0, "monthly income")
	f.Float64Var(&opts.in.MonthlyExpense, "expense", 0, "current month expense")
	f.StringVar(&opts.history, "history", "", "comma-separated expenses of the last months, newest first")
	f.Float64Var(&opts.in.LiquidAssets, "liquid", 0, "liquid assets")
	f.Float64Var(&opts.in.TotalMonthlyEMI, "emi", 0, "total monthly loan installments")
	f.Float64Var(&opts.in.TotalCreditOutstanding, "outstanding", 0, "total credit card outstanding")
	f.Float64Var(&opts.in.TotalCreditLimit, "limit", 0, "total credit card limit")
	f.StringVarP(&opts.file, "file", "f", "", "read the snapshot from a JSON file (- for stdin)")
	f.BoolVar(&opts.breakdown, "breakdown", false, "include per-bucket points")

	return cmd
}

// amountFlags must be set explicitly when the snapshot comes from flags.
var amountFlags = []string{"income", "expense", "liquid", "emi", "outstanding", "limit"}

func (o scoreOptions) input(flags *pflag.FlagSet, stdin io.Reader) (health.Input, error) {
	if o.file != "" {
		return readInput(o.file, stdin)
	}
	for _, name := range amountFlags {
		if !flags.Changed(name) {
			return health.Input{}, fmt.Errorf("%w: --%s is required (or use --file)", health.ErrInvalidInput, name)
		}
	}
	in := o.in
	history, err := parseHistory(o.history)
	if err != nil {
		return health.Input{}, err
	}
	in.Last3MonthsExpenses = history
	return in, nil
}

func readInput(path string, stdin io.Reader) (health.Input, error) {
	var r io.Reader = stdin
	if path != "-" {
		file, err := os.Open(path)
		if err != nil {
			return health.Input{}, fmt.Errorf("opening snapshot: %w", err)
		}
		defer file.Close()
		r = file
	}

	var req models.ScoreRequest
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return health.Input{}, fmt.Errorf("decoding snapshot: %w", err)
	}
	return req.Input()
}

func parseHistory(s string) ([]float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return []float64{}, nil
	}
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid history value %q", p)
		}
		out = append(out, v)
	}
	return out, nil
}

// runScore prints the report with the fallback narrative; the CLI never calls the narrative service.
func runScore(w io.Writer, in health.Input, withBreakdown bool, at time.Time) error {
	res, err := health.Compute(in)
	if err != nil {
		return err
	}
	report := models.NewHealthReport(res, models.FallbackNarrative(), false, withBreakdown, at)
	report.Input = &in

	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}
