package cmd

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

// instanceInfo is one row of the instances listing.
type instanceInfo struct {
	Name     string `json:"name"`
	Endpoint string `json:"endpoint"`
	Default  bool   `json:"default"`
}

func newInstancesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "instances",
		Short: "List the configured plugin instances",
		Long: `Lists the plugin instances from the configuration file together with
the GraphQL endpoint each one currently points at.`,
		Args: cobra.NoArgs,
		RunE: runInstances,
	}
}

func runInstances(cmd *cobra.Command, args []string) error {
	s, err := loadSession(cmd)
	if err != nil {
		return err
	}

	defaultName := s.config.ResolveInstanceName("")
	instances := make([]instanceInfo, 0, len(s.config.Instances))
	for _, inst := range s.config.Instances {
		instances = append(instances, instanceInfo{
			Name:     inst.Name,
			Endpoint: inst.Endpoint,
			Default:  inst.Name == defaultName,
		})
	}

	p := newPrinter(cmd.OutOrStdout())
	if len(instances) == 0 && p.format == outputTable && p.template == "" {
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", text.FgYellow.Sprint("No instances configured in"), s.configPath)
		return nil
	}

	return p.Print(instances, func(t table.Writer) {
		t.AppendHeader(table.Row{
			text.FgHiCyan.Sprint("NAME"),
			text.FgHiCyan.Sprint("ENDPOINT"),
			text.FgHiCyan.Sprint("DEFAULT"),
		})
		for _, inst := range instances {
			marker := ""
			if inst.Default {
				marker = text.FgGreen.Sprint("*")
			}
			t.AppendRow(table.Row{inst.Name, inst.Endpoint, marker})
		}
	})
}
