package cmd

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"costcalc/adapters/project"
	"costcalc/core/export"
	"costcalc/core/pricing"
	"costcalc/core/runner"
	"costcalc/core/types"
	"costcalc/internal/errors"
)

var (
	estimateCalculator string
	estimateRegion     string
	estimateFormat     string
	estimateOutput     string
	estimateSets       []string
	estimateOverrides  []string
)

// estimateCmd runs one calculator from flags, or a whole project file
var estimateCmd = &cobra.Command{
	Use:   "estimate [project-file]",
	Short: "Run a cost estimate",
	Long: `Run a single calculator from --set flags, or every calculation in an
HCL project file.

Examples:
  costcalc estimate --calculator concrete --set length_ft=20 --set width_ft=10 --set thickness_in=4
  costcalc estimate --calculator paint --set wall_area_sqft=800 --region west
  costcalc estimate ./remodel.hcl
  costcalc estimate ./remodel.hcl --format csv --output estimates.csv`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEstimate,
}

func init() {
	estimateCmd.Flags().StringVarP(&estimateCalculator, "calculator", "c", "", "calculator key (required without a project file)")
	estimateCmd.Flags().StringVarP(&estimateRegion, "region", "r", "", "pricing region (overrides the saved preference)")
	estimateCmd.Flags().StringVarP(&estimateFormat, "format", "f", "summary", "output format (summary, csv, html)")
	estimateCmd.Flags().StringVarP(&estimateOutput, "output", "o", "", "write output to a file instead of stdout")
	estimateCmd.Flags().StringArrayVar(&estimateSets, "set", nil, "input field as name=value (repeatable)")
	estimateCmd.Flags().StringArrayVar(&estimateOverrides, "override", nil, "price override as calculator.field=amount (repeatable)")
}

func runEstimate(cmd *cobra.Command, args []string) error {
	r := buildRunner()

	if err := applyOverrides(r, estimateOverrides); err != nil {
		return err
	}

	var records []*types.CalculationRecord
	var err error
	if len(args) == 1 {
		records, err = estimateProject(r, args[0])
	} else {
		records, err = estimateSingle(r)
	}
	if err != nil {
		return err
	}

	out := os.Stdout
	if estimateOutput != "" {
		f, ferr := os.Create(estimateOutput)
		if ferr != nil {
			return fmt.Errorf("creating output file: %w", ferr)
		}
		defer f.Close()
		out = f
	}

	for _, rec := range records {
		switch estimateFormat {
		case "csv":
			if err := export.ToCSV(out, rec); err != nil {
				return err
			}
		case "html":
			fmt.Fprintln(out, export.PrintHTML(rec))
		default:
			fmt.Fprintln(out, export.SummaryText(rec))
		}
	}

	if len(records) > 1 && estimateFormat == "summary" {
		printGrandTotal(out, records)
	}
	return nil
}

func estimateSingle(r *runner.Runner) ([]*types.CalculationRecord, error) {
	if estimateCalculator == "" {
		return nil, errors.New(errors.TypeValidation,
			"either a project file or --calculator is required")
	}

	inputs := make(types.RawInputs, len(estimateSets))
	for _, set := range estimateSets {
		name, value, ok := strings.Cut(set, "=")
		if !ok {
			return nil, errors.Newf(errors.TypeValidation,
				"invalid --set %q, expected name=value", set)
		}
		inputs[strings.TrimSpace(name)] = strings.TrimSpace(value)
	}

	rec, err := runCalculation(r, estimateCalculator, "", "", inputs)
	if err != nil {
		return nil, err
	}
	return []*types.CalculationRecord{rec}, nil
}

func estimateProject(r *runner.Runner, path string) ([]*types.CalculationRecord, error) {
	proj, err := project.NewScanner().ScanFile(path)
	if err != nil {
		return nil, err
	}
	if proj.Name != "" {
		fmt.Fprintf(os.Stderr, "Project: %s\n\n", proj.Name)
	}

	records := make([]*types.CalculationRecord, 0, len(proj.Calculations))
	for _, calc := range proj.Calculations {
		rec, err := runCalculation(r, calc.Calculator, calc.Title, proj.Region, calc.Inputs)
		if err != nil {
			return nil, errors.Wrap(errors.TypeCompute,
				fmt.Sprintf("calculation %q (line %d)", calc.Calculator, calc.Line), err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// runCalculation drives one panel through the full cycle. Region
// precedence: the --region flag, then the calculation's own region input,
// then the project-level region.
func runCalculation(r *runner.Runner, key, title, projectRegion string, inputs types.RawInputs) (*types.CalculationRecord, error) {
	panel, err := r.NewPanel(key)
	if err != nil {
		return nil, err
	}

	for name, value := range inputs {
		panel.SetField(name, value)
	}
	if projectRegion != "" && inputs["region"] == "" {
		panel.SetField("region", pricing.NormalizeRegion(projectRegion))
	}
	if estimateRegion != "" {
		panel.SetRegion(context.Background(), estimateRegion)
	}

	rec, err := panel.Calculate()
	if err != nil {
		if errors.IsType(err, errors.TypeValidation) {
			printFieldErrors(key, panel.ErrorSummary())
		}
		return nil, err
	}
	if title != "" {
		rec.Title = title
	}
	return rec, nil
}

func printFieldErrors(key string, fieldErrs map[string]string) {
	fmt.Fprintf(os.Stderr, "Invalid inputs for %s:\n", key)
	names := make([]string, 0, len(fieldErrs))
	for name := range fieldErrs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(os.Stderr, "  %s: %s\n", name, fieldErrs[name])
	}
}

// applyOverrides applies --override flags to the resolver before any
// calculation runs.
func applyOverrides(r *runner.Runner, overrides []string) error {
	for _, ov := range overrides {
		target, amount, ok := strings.Cut(ov, "=")
		if !ok {
			return errors.Newf(errors.TypeValidation,
				"invalid --override %q, expected calculator.field=amount", ov)
		}
		calc, field, ok := strings.Cut(target, ".")
		if !ok {
			return errors.Newf(errors.TypeValidation,
				"invalid --override target %q, expected calculator.field", target)
		}
		value, err := decimal.NewFromString(strings.TrimSpace(amount))
		if err != nil {
			return errors.Newf(errors.TypeValidation,
				"invalid --override amount %q", amount)
		}
		r.Resolver().OverrideRate(strings.TrimSpace(calc), strings.TrimSpace(field), value)
	}
	return nil
}

func printGrandTotal(out *os.File, records []*types.CalculationRecord) {
	total := decimal.Zero
	for _, rec := range records {
		if v, ok := rec.Results.Get("total"); ok {
			total = total.Add(v)
		}
	}
	fmt.Fprintf(out, "Project total: $%s\n", total.StringFixed(2))
}
