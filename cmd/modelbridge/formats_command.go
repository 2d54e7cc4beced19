package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"modelbridge/internal/bridge"
	"modelbridge/internal/meshio"
)

type formatsOutput struct {
	Readers     []bridge.ReaderInfo `json:"readers"`
	HostFormats []meshio.FormatInfo `json:"host_formats"`
}

func newFormatsCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "formats",
		Short: "List foreign formats and the intermediate formats the host can read",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(func(svc *bridge.Service) error {
				out := formatsOutput{Readers: svc.Readers(), HostFormats: svc.HostFormats()}
				if jsonOutput {
					return writeJSON(cmd, out)
				}

				w := cmd.OutOrStdout()
				readerRows := make([][]string, 0, len(out.Readers))
				for _, reader := range out.Readers {
					apps := make([]string, 0, len(reader.Apps))
					for _, app := range reader.Apps {
						apps = append(apps, displayName(app))
					}
					readerRows = append(readerRows, []string{
						reader.Name,
						strings.Join(reader.Extensions, ", "),
						strings.Join(apps, " → "),
						strings.Join(reader.PreferredFormats, ", "),
					})
				}
				fmt.Fprintln(w, renderTable(
					[]string{"Reader", "Extensions", "Apps", "Preferred"},
					readerRows,
				))

				hostRows := make([][]string, 0, len(out.HostFormats))
				for _, info := range out.HostFormats {
					hostRows = append(hostRows, []string{info.Format, info.ReaderID, yesNo(info.Available)})
				}
				fmt.Fprintln(w, renderTable([]string{"Format", "Host reader", "Enabled"}, hostRows))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func sortedStrings(values []string) []string {
	out := append([]string(nil), values...)
	sort.Strings(out)
	return out
}
