// Package export produces CSV, print-ready HTML, and clipboard summaries
// from a finished CalculationRecord. Every function is a no-op, not a
// crash, when handed a nil record.
package export

import (
	"encoding/csv"
	"fmt"
	"html/template"
	"io"
	"sort"
	"strings"

	"costcalc/core/types"
	"costcalc/internal/errors"
)

// ToCSV writes a record as CSV: a metadata header, the inputs, then the
// result lines. A nil record writes nothing and returns nil.
func ToCSV(w io.Writer, rec *types.CalculationRecord) error {
	if rec == nil {
		return nil
	}

	cw := csv.NewWriter(w)

	rows := [][]string{
		{"calculator", rec.Type},
		{"title", rec.Title},
		{"generated", rec.Timestamp.Format("2006-01-02 15:04:05 MST")},
		{},
		{"section", "field", "value", "unit"},
	}
	for _, name := range sortedKeys(rec.Inputs) {
		rows = append(rows, []string{"input", name, rec.Inputs[name], ""})
	}
	for _, line := range rec.Results {
		rows = append(rows, []string{"result", line.Key, line.Value.String(), line.Unit})
	}

	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return errors.Export("csv write failed", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.Export("csv flush failed", err)
	}
	return nil
}

// CSVString renders a record to a CSV string; empty for a nil record
func CSVString(rec *types.CalculationRecord) string {
	if rec == nil {
		return ""
	}
	var b strings.Builder
	// Writing to a strings.Builder cannot fail.
	_ = ToCSV(&b, rec)
	return b.String()
}

// Filename suggests a download filename for a record
func Filename(rec *types.CalculationRecord, ext string) string {
	if rec == nil {
		return "estimate." + ext
	}
	return fmt.Sprintf("%s-estimate-%s.%s", rec.Type, rec.Timestamp.Format("20060102-150405"), ext)
}

var printTemplate = template.Must(template.New("print").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: Georgia, serif; margin: 2rem; color: #222; }
h1 { font-size: 1.4rem; border-bottom: 2px solid #444; padding-bottom: .3rem; }
table { border-collapse: collapse; margin: 1rem 0; }
td, th { border: 1px solid #999; padding: .3rem .8rem; text-align: left; }
th { background: #eee; }
pre { background: #f7f7f7; padding: 1rem; white-space: pre-wrap; }
.total { font-weight: bold; }
footer { margin-top: 2rem; font-size: .8rem; color: #666; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<p>Generated {{.Generated}}</p>
<h2>Inputs</h2>
<table>
<tr><th>Field</th><th>Value</th></tr>
{{range .Inputs}}<tr><td>{{.Name}}</td><td>{{.Value}}</td></tr>
{{end}}</table>
<h2>Results</h2>
<table>
<tr><th>Item</th><th>Value</th></tr>
{{range .Results}}<tr{{if eq .Key "total"}} class="total"{{end}}><td>{{.Label}}</td><td>{{.Display}}</td></tr>
{{end}}</table>
{{if .Explanation}}<h2>Show Your Math</h2>
<pre>{{.Explanation}}</pre>
{{end}}<footer>Planning-grade (ROM) estimate. Not a contractor quote.</footer>
</body>
</html>
`))

type printInput struct {
	Name  string
	Value string
}

type printResult struct {
	Key     string
	Label   string
	Display string
}

type printData struct {
	Title       string
	Generated   string
	Inputs      []printInput
	Results     []printResult
	Explanation string
}

// PrintHTML renders a self-contained printable document for a record.
// Empty for a nil record.
func PrintHTML(rec *types.CalculationRecord) string {
	if rec == nil {
		return ""
	}

	data := printData{
		Title:       rec.Title,
		Generated:   rec.Timestamp.Format("January 2, 2006 15:04 MST"),
		Explanation: rec.Explanation,
	}
	for _, name := range sortedKeys(rec.Inputs) {
		data.Inputs = append(data.Inputs, printInput{Name: name, Value: rec.Inputs[name]})
	}
	for _, line := range rec.Results {
		data.Results = append(data.Results, printResult{
			Key:     line.Key,
			Label:   line.Label,
			Display: displayValue(line),
		})
	}

	var b strings.Builder
	if err := printTemplate.Execute(&b, data); err != nil {
		// The template is compiled in; execution over plain data should not
		// fail, and a print document is best-effort output anyway.
		return ""
	}
	return b.String()
}

// SummaryText builds the clipboard payload for a record: a compact plain
// text summary. Empty for a nil record.
func SummaryText(rec *types.CalculationRecord) string {
	if rec == nil {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", rec.Title)
	fmt.Fprintf(&b, "Generated %s\n\n", rec.Timestamp.Format("2006-01-02 15:04"))

	for _, line := range rec.Results {
		fmt.Fprintf(&b, "%-24s %s\n", line.Label+":", displayValue(line))
	}

	b.WriteString("\nPlanning-grade (ROM) estimate. Not a contractor quote.\n")
	return b.String()
}

// displayValue formats one result line for humans
func displayValue(line types.ResultLine) string {
	if line.Kind == types.KindCurrency {
		return "$" + line.Value.StringFixed(2)
	}
	if line.Unit != "" {
		return line.Value.String() + " " + line.Unit
	}
	return line.Value.String()
}

// sortedKeys returns map keys in a stable order
func sortedKeys(m types.RawInputs) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
