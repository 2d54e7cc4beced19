package main

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"modelbridge/internal/deps"
	"modelbridge/internal/preflight"
)

type appRow struct {
	Name          string   `json:"name"`
	Command       string   `json:"command"`
	Installed     bool     `json:"installed"`
	Path          string   `json:"path,omitempty"`
	Formats       []string `json:"formats"`
	SourceFormats []string `json:"source_formats,omitempty"`
}

func newAppsCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "apps",
		Short: "List configured external applications",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			statuses := make(map[string]deps.Status)
			for _, status := range preflight.CheckApps(cfg) {
				statuses[status.Name] = status
			}

			rows := make([]appRow, 0, len(cfg.Apps))
			for _, app := range cfg.Apps {
				status := statuses[app.Name]
				formats := make([]string, 0, len(app.Formats))
				for format := range app.Formats {
					formats = append(formats, format)
				}
				rows = append(rows, appRow{
					Name:          app.Name,
					Command:       app.Command,
					Installed:     status.Available,
					Path:          status.Path,
					Formats:       sortedStrings(formats),
					SourceFormats: app.SourceFormats,
				})
			}

			if jsonOutput {
				return writeJSON(cmd, rows)
			}
			if len(rows) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No applications configured")
				return nil
			}
			colors := newPalette(cmd.OutOrStdout())
			table := make([][]string, 0, len(rows))
			for _, row := range rows {
				installed := colors.paint(yesNo(row.Installed), text.FgGreen)
				if !row.Installed {
					installed = colors.paint(yesNo(row.Installed), text.FgRed)
				}
				sources := strings.Join(row.SourceFormats, ", ")
				if sources == "" {
					sources = "any"
				}
				table = append(table, []string{
					displayName(row.Name),
					row.Command,
					installed,
					strings.Join(row.Formats, ", "),
					sources,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"App", "Command", "Installed", "Exports", "Opens"},
				table,
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}
