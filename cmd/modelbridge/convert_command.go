package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"modelbridge/internal/bridge"
	"modelbridge/internal/config"
	"modelbridge/internal/conversion"
	"modelbridge/internal/metrics"
	"modelbridge/internal/scene"
)

type nodeSummary struct {
	Name       string        `json:"name"`
	SourceFile string        `json:"source_file,omitempty"`
	Vertices   int           `json:"vertices"`
	Children   []nodeSummary `json:"children,omitempty"`
}

type convertOutput struct {
	Source    string               `json:"source"`
	RequestID string               `json:"request_id,omitempty"`
	Reader    string               `json:"reader,omitempty"`
	App       string               `json:"app,omitempty"`
	Format    string               `json:"format,omitempty"`
	Reason    conversion.Reason    `json:"reason,omitempty"`
	Nodes     []nodeSummary        `json:"nodes,omitempty"`
	Attempts  []conversion.Attempt `json:"attempts,omitempty"`
	Error     string               `json:"error,omitempty"`
}

type convertReport struct {
	Results []convertOutput  `json:"results"`
	Metrics []metrics.Sample `json:"metrics,omitempty"`
}

func newConvertCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	var showMetrics bool

	cmd := &cobra.Command{
		Use:   "convert <file>...",
		Short: "Convert foreign model files into scene nodes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(func(svc *bridge.Service) error {
				report := convertReport{Results: make([]convertOutput, 0, len(args))}
				failed := 0
				for _, arg := range args {
					out := convertOne(cmd, svc, arg)
					if out.Reason != conversion.ReasonConverted {
						failed++
					}
					report.Results = append(report.Results, out)
				}
				if showMetrics {
					samples, err := svc.Metrics().Snapshot()
					if err != nil {
						return err
					}
					report.Metrics = samples
				}

				if jsonOutput {
					if err := writeJSON(cmd, report); err != nil {
						return err
					}
				} else {
					printConvertReport(cmd.OutOrStdout(), report)
				}
				if failed > 0 {
					return fmt.Errorf("%d of %d file(s) could not be opened", failed, len(args))
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output results as JSON")
	cmd.Flags().BoolVar(&showMetrics, "metrics", false, "Include conversion metrics")
	return cmd
}

func convertOne(cmd *cobra.Command, svc *bridge.Service, arg string) convertOutput {
	path, err := config.ExpandPath(strings.TrimSpace(arg))
	if err != nil {
		return convertOutput{Source: arg, Error: err.Error()}
	}
	res, err := svc.Convert(cmd.Context(), path)
	out := convertOutput{
		Source:    path,
		RequestID: res.RequestID,
		Reader:    res.Reader,
		App:       res.App,
		Format:    res.Format,
		Reason:    res.Reason,
		Attempts:  res.Attempts,
	}
	if err != nil {
		out.Error = err.Error()
		if errors.Is(err, bridge.ErrUnsupportedFormat) {
			out.Error = fmt.Sprintf("no reader handles %s", path)
		}
		return out
	}
	for _, node := range res.All() {
		out.Nodes = append(out.Nodes, summarizeNode(node))
	}
	return out
}

func summarizeNode(node *scene.Node) nodeSummary {
	summary := nodeSummary{
		Name:       node.Name,
		SourceFile: node.SourceFile(),
		Vertices:   node.Mesh.VertexCount(),
	}
	for _, child := range node.Children {
		summary.Children = append(summary.Children, summarizeNode(child))
	}
	return summary
}

func printConvertReport(w io.Writer, report convertReport) {
	for _, out := range report.Results {
		switch {
		case out.Error != "":
			fmt.Fprintf(w, "Could not open %s: %s\n", out.Source, out.Error)
		case out.Reason == conversion.ReasonConverted:
			fmt.Fprintf(w, "Converted %s via %s (%s)\n", out.Source, displayName(out.App), strings.ToUpper(out.Format))
			printNodes(w, out.Nodes, "  ")
		default:
			fmt.Fprintf(w, "Could not open %s: %s\n", out.Source, describeReason(out.Reason))
			for _, attempt := range out.Attempts {
				label := attempt.App
				if attempt.Format != "" {
					label += " (" + strings.ToUpper(attempt.Format) + ")"
				}
				fmt.Fprintf(w, "  %s: %s at %s\n", label, attempt.Kind, attempt.Stage)
			}
		}
	}
	if len(report.Metrics) > 0 {
		rows := make([][]string, 0, len(report.Metrics))
		for _, sample := range report.Metrics {
			rows = append(rows, []string{sample.Key(), fmt.Sprintf("%g", sample.Value)})
		}
		fmt.Fprintln(w, renderTable([]string{"Metric", "Value"}, rows, 2))
	}
}

func printNodes(w io.Writer, nodes []nodeSummary, indent string) {
	for _, node := range nodes {
		fmt.Fprintf(w, "%s%s: %d vertices", indent, node.Name, node.Vertices)
		if node.SourceFile != "" {
			fmt.Fprintf(w, " [%s]", node.SourceFile)
		}
		fmt.Fprintln(w)
		printNodes(w, node.Children, indent+"  ")
	}
}

func describeReason(reason conversion.Reason) string {
	switch reason {
	case conversion.ReasonNoApps:
		return "no application is configured for this file type"
	case conversion.ReasonNoReader:
		return "no host reader is enabled for any intermediate format"
	case conversion.ReasonExhausted:
		return "every application and format failed"
	default:
		return string(reason)
	}
}
