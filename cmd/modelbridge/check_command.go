package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"modelbridge/internal/bridge"
	"modelbridge/internal/preflight"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var probe bool
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check scratch directory, host readers and external applications",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			return ctx.withService(func(svc *bridge.Service) error {
				var available []string
				for _, info := range svc.HostFormats() {
					if info.Available {
						available = append(available, info.Format)
					}
				}
				results := preflight.RunAll(cmd.Context(), cfg, preflight.Options{Probe: probe, HostFormats: available})
				if jsonOutput {
					return writeJSON(cmd, results)
				}

				w := cmd.OutOrStdout()
				colors := newPalette(w)
				lines := colors.sectionHeader("Preflight")
				if ctx.configPath != "" {
					source := ctx.configPath
					if !ctx.configSeen {
						source += " (not found; defaults)"
					}
					lines = append(lines, colors.statusLine("Config", stateInfo, source))
				}
				failed := 0
				for _, result := range results {
					state := stateOK
					if !result.Passed {
						state = stateFail
						if strings.HasPrefix(result.Name, "App ") || strings.HasPrefix(result.Name, "Probe ") {
							state = stateWarn
						} else {
							failed++
						}
					}
					lines = append(lines, colors.statusLine(result.Name, state, result.Detail))
				}
				fmt.Fprintln(w, strings.Join(lines, "\n"))
				if failed > 0 {
					return fmt.Errorf("%d preflight check(s) failed", failed)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&probe, "probe", false, "Run each installed application's probe command")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}
