package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"costcalc/core/validation"
	"costcalc/internal/errors"
)

// calculatorsCmd lists the registered calculators and their input fields
var calculatorsCmd = &cobra.Command{
	Use:   "calculators [key]",
	Short: "List calculators, or show one calculator's input schema",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r := buildRunner()

		if len(args) == 1 {
			def, ok := r.Registry().Get(args[0])
			if !ok {
				return errors.NotFound("calculator", args[0])
			}
			fmt.Printf("%s (%s)\n\n", def.Title(), def.Key())
			printSchema(def.Schema())
			return nil
		}

		for _, def := range r.Registry().List() {
			fmt.Printf("  %-10s %s\n", def.Key(), def.Title())
		}
		return nil
	},
}

func printSchema(schema validation.Schema) {
	for _, field := range schema {
		var notes []string
		if field.Required {
			notes = append(notes, "required")
		}
		if field.Min != nil && field.Max != nil {
			notes = append(notes, fmt.Sprintf("%g to %g", *field.Min, *field.Max))
		} else if field.Min != nil {
			notes = append(notes, fmt.Sprintf("min %g", *field.Min))
		}
		if len(field.Options) > 0 {
			notes = append(notes, "one of "+strings.Join(field.Options, ", "))
		}

		suffix := ""
		if len(notes) > 0 {
			suffix = " (" + strings.Join(notes, "; ") + ")"
		}
		fmt.Printf("  %-16s %-8s %s%s\n", field.Name, field.Type, field.Label, suffix)
	}
}
