package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"sigs.k8s.io/yaml"
)

type outputFormat string

const (
	outputTable outputFormat = "table"
	outputJSON  outputFormat = "json"
	outputYAML  outputFormat = "yaml"
)

// printer renders command results in the format selected by --output or
// --template.
type printer struct {
	out      io.Writer
	format   outputFormat
	template string
}

func newPrinter(out io.Writer) printer {
	return printer{
		out:      out,
		format:   outputFormat(flags.OutputFormat),
		template: flags.Template,
	}
}

// Print writes data. In table mode, fill populates the table; when fill is
// nil the value is printed as plain text.
func (p printer) Print(data any, fill func(t table.Writer)) error {
	if p.template != "" {
		return p.printTemplate(data)
	}

	switch p.format {
	case outputJSON:
		out, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to format JSON: %w", err)
		}
		_, err = fmt.Fprintln(p.out, string(out))
		return err

	case outputYAML:
		// sigs.k8s.io/yaml goes through encoding/json, so json tags apply.
		out, err := yaml.Marshal(data)
		if err != nil {
			return fmt.Errorf("failed to format YAML: %w", err)
		}
		_, err = p.out.Write(out)
		return err

	case outputTable, "":
		if fill == nil {
			_, err := fmt.Fprintln(p.out, data)
			return err
		}
		t := table.NewWriter()
		t.SetOutputMirror(p.out)
		t.SetStyle(table.StyleRounded)
		fill(t)
		t.Render()
		return nil

	default:
		return fmt.Errorf("unsupported output format %q (use table, json or yaml)", p.format)
	}
}

func (p printer) printTemplate(data any) error {
	tmpl, err := template.New("output").Funcs(sprig.TxtFuncMap()).Parse(p.template)
	if err != nil {
		return fmt.Errorf("invalid template: %w", err)
	}

	// Templates see the JSON view of the result so field names match -o json.
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to prepare template data: %w", err)
	}
	var view any
	if err := json.Unmarshal(raw, &view); err != nil {
		return fmt.Errorf("failed to prepare template data: %w", err)
	}

	if err := tmpl.Execute(p.out, view); err != nil {
		return fmt.Errorf("failed to render template: %w", err)
	}
	_, err = fmt.Fprintln(p.out)
	return err
}

// keyValueTable fills t with a KEY/VALUE header and the given rows.
func keyValueTable(rows [][2]any) func(t table.Writer) {
	return func(t table.Writer) {
		t.AppendHeader(table.Row{
			text.FgHiCyan.Sprint("KEY"),
			text.FgHiCyan.Sprint("VALUE"),
		})
		for _, row := range rows {
			t.AppendRow(table.Row{row[0], row[1]})
		}
	}
}
