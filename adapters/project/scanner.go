// Package project provides HCL project-file parsing.
// A project file describes a batch of calculations to estimate together:
//
//	project {
//	  name   = "backyard remodel"
//	  region = "midwest"
//	}
//
//	calculation "concrete" {
//	  title = "Patio slab"
//	  inputs = {
//	    length_ft    = 16
//	    width_ft     = 12
//	    thickness_in = 4
//	  }
//	}
package project

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"costcalc/core/types"
	"costcalc/internal/errors"
)

// Project is a parsed project file
type Project struct {
	// Name is the project display name
	Name string

	// Region is the pricing region applied to every calculation that does
	// not set its own
	Region string

	// Calculations are the estimates to run, in file order
	Calculations []Calculation
}

// Calculation is one estimate request in a project file
type Calculation struct {
	// Calculator is the registry key (the block label)
	Calculator string

	// Title is an optional display title
	Title string

	// Inputs are the raw input values
	Inputs types.RawInputs

	// Line is the source line for error reporting
	Line int
}

// Scanner parses project files
type Scanner struct {
	parser *hclparse.Parser
}

// NewScanner creates a project file scanner
func NewScanner() *Scanner {
	return &Scanner{parser: hclparse.NewParser()}
}

var fileSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "project"},
		{Type: "calculation", LabelNames: []string{"calculator"}},
	},
}

var projectSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "name"},
		{Name: "region"},
	},
}

var calculationSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "title"},
		{Name: "inputs", Required: true},
	},
}

// ScanFile parses a project file from disk
func (s *Scanner) ScanFile(path string) (*Project, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.TypeNotFound, "cannot read project file", err)
	}
	return s.Scan(src, path)
}

// Scan parses project file source
func (s *Scanner) Scan(src []byte, filename string) (*Project, error) {
	hclFile, diags := s.parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, errors.Parsing("invalid project file", diags)
	}

	content, diags := hclFile.Body.Content(fileSchema)
	if diags.HasErrors() {
		return nil, errors.Parsing("unexpected project file structure", diags)
	}

	proj := &Project{}
	for _, block := range content.Blocks {
		switch block.Type {
		case "project":
			if err := s.parseProject(block, proj); err != nil {
				return nil, err
			}
		case "calculation":
			calc, err := s.parseCalculation(block)
			if err != nil {
				return nil, err
			}
			proj.Calculations = append(proj.Calculations, *calc)
		}
	}

	if len(proj.Calculations) == 0 {
		return nil, errors.New(errors.TypeParsing, "project file has no calculation blocks")
	}
	return proj, nil
}

func (s *Scanner) parseProject(block *hcl.Block, proj *Project) error {
	content, diags := block.Body.Content(projectSchema)
	if diags.HasErrors() {
		return errors.Parsing("invalid project block", diags)
	}

	if attr, ok := content.Attributes["name"]; ok {
		if v, err := stringValue(attr); err == nil {
			proj.Name = v
		}
	}
	if attr, ok := content.Attributes["region"]; ok {
		v, err := stringValue(attr)
		if err != nil {
			return errors.Parsing("project region must be a string", err)
		}
		proj.Region = v
	}
	return nil
}

func (s *Scanner) parseCalculation(block *hcl.Block) (*Calculation, error) {
	content, diags := block.Body.Content(calculationSchema)
	if diags.HasErrors() {
		return nil, errors.Parsing(
			fmt.Sprintf("invalid calculation block %q", block.Labels[0]), diags)
	}

	calc := &Calculation{
		Calculator: block.Labels[0],
		Inputs:     make(types.RawInputs),
		Line:       block.DefRange.Start.Line,
	}

	if attr, ok := content.Attributes["title"]; ok {
		if v, err := stringValue(attr); err == nil {
			calc.Title = v
		}
	}

	inputsAttr := content.Attributes["inputs"]
	val, diags := inputsAttr.Expr.Value(nil)
	if diags.HasErrors() {
		return nil, errors.Parsing("calculation inputs must be literal values", diags)
	}
	if !val.Type().IsObjectType() && !val.Type().IsMapType() {
		return nil, errors.Newf(errors.TypeParsing,
			"calculation %q: inputs must be an object", calc.Calculator)
	}

	for it := val.ElementIterator(); it.Next(); {
		k, v := it.Element()
		name := k.AsString()
		raw, err := ctyToString(v)
		if err != nil {
			return nil, errors.Newf(errors.TypeParsing,
				"calculation %q: input %s: %v", calc.Calculator, name, err)
		}
		calc.Inputs[name] = raw
	}

	return calc, nil
}

// stringValue evaluates an attribute expecting a string literal
func stringValue(attr *hcl.Attribute) (string, error) {
	val, diags := attr.Expr.Value(nil)
	if diags.HasErrors() {
		return "", diags
	}
	return ctyToString(val)
}

// ctyToString renders a cty literal as a raw input string
func ctyToString(val cty.Value) (string, error) {
	if val.IsNull() {
		return "", nil
	}
	switch val.Type() {
	case cty.String:
		return val.AsString(), nil
	case cty.Number:
		return val.AsBigFloat().Text('f', -1), nil
	case cty.Bool:
		if val.True() {
			return "true", nil
		}
		return "false", nil
	default:
		return "", fmt.Errorf("unsupported value type %s", val.Type().FriendlyName())
	}
}
