package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var (
	pricingCalculator string
	pricingOverrides  []string
)

// pricingCmd shows the resolved pricing for a region
var pricingCmd = &cobra.Command{
	Use:   "pricing [region]",
	Short: "Show the resolved pricing table for a region",
	Long: `Show the rates one calculator would use in a region, after the region
multiplier and any replacement rates are applied. Without a region the
default region is shown.

Examples:
  costcalc pricing midwest --calculator concrete
  costcalc pricing --calculator paint`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r := buildRunner()

		if err := applyOverrides(r, pricingOverrides); err != nil {
			return err
		}

		region := ""
		if len(args) == 1 {
			region = args[0]
		}

		snap := r.Resolver().GetPricing(cmd.Context(), pricingCalculator, region)
		fmt.Printf("Calculator: %s\n", snap.Calculator)
		fmt.Printf("Region:     %s (multiplier %s)\n", snap.Region, snap.Multiplier.String())
		fmt.Printf("Table:      %s, version %s\n\n", snap.TableSource, r.Resolver().TableVersion())

		if len(snap.Data) == 0 {
			fmt.Println("No table rates; calculator fallback constants apply.")
			return nil
		}

		fields := make([]string, 0, len(snap.Data))
		for field := range snap.Data {
			fields = append(fields, field)
		}
		sort.Strings(fields)
		for _, field := range fields {
			price := snap.Data[field]
			fmt.Printf("  %-24s %12s  [%s]\n", field, price.Amount.StringFixed(2), price.Source)
		}
		return nil
	},
}

func init() {
	pricingCmd.Flags().StringVarP(&pricingCalculator, "calculator", "c", "concrete", "calculator whose rates to show")
	pricingCmd.Flags().StringArrayVar(&pricingOverrides, "override", nil, "price override as calculator.field=amount (repeatable)")
}
