package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/l3aro/go-sdg/pkg/pdg"
	"github.com/l3aro/go-sdg/pkg/sdg"
)

var depsCmd = &cobra.Command{
	Use:   "deps <file> --line N [--json]",
	Short: "Show the dependences of the statements on one line",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		line, _ := cmd.Flags().GetInt("line")
		if line <= 0 {
			return fmt.Errorf("line number must be positive: %d", line)
		}
		info, err := extract(cmd, args[0])
		if err != nil {
			return err
		}
		deps := pdg.GetDependencies(info, line)

		out := cmd.OutOrStdout()
		if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
			return printJSON(out, depsOutput{
				Line:       line,
				ControlIn:  edgesJSON(deps.ControlIn),
				ControlOut: edgesJSON(deps.ControlOut),
				DataIn:     edgesJSON(deps.DataIn),
				DataOut:    edgesJSON(deps.DataOut),
			})
		}

		fmt.Fprintf(out, "=== Dependences of line %d ===\n", line)
		printEdges(out, "Control in", deps.ControlIn)
		printEdges(out, "Control out", deps.ControlOut)
		printEdges(out, "Data in", deps.DataIn)
		printEdges(out, "Data out", deps.DataOut)
		return nil
	},
}

type edgeOutput struct {
	Kind       sdg.EdgeKind `json:"kind"`
	Source     int          `json:"source"`
	SourceLine int          `json:"source_line"`
	Target     int          `json:"target"`
	TargetLine int          `json:"target_line"`
	Variable   string       `json:"variable,omitempty"`
}

type depsOutput struct {
	Line       int          `json:"line"`
	ControlIn  []edgeOutput `json:"control_in"`
	ControlOut []edgeOutput `json:"control_out"`
	DataIn     []edgeOutput `json:"data_in"`
	DataOut    []edgeOutput `json:"data_out"`
}

func edgesJSON(edges []sdg.Edge) []edgeOutput {
	out := make([]edgeOutput, 0, len(edges))
	for _, e := range edges {
		o := edgeOutput{
			Kind:       e.Kind,
			Source:     e.Source.ID,
			SourceLine: e.Source.StartLine,
			Target:     e.Target.ID,
			TargetLine: e.Target.StartLine,
		}
		if e.Kind == sdg.EdgeData {
			o.Variable = e.Source.Def
		}
		out = append(out, o)
	}
	return out
}

func printEdges(w io.Writer, title string, edges []sdg.Edge) {
	fmt.Fprintf(w, "\n%s (%d):\n", title, len(edges))
	for _, e := range edges {
		fmt.Fprintf(w, "  %-10s %s -> %s", e.Kind, e.Source, e.Target)
		if e.Kind == sdg.EdgeData {
			fmt.Fprintf(w, " [%s]", e.Source.Def)
		}
		fmt.Fprintln(w)
	}
}

func init() {
	depsCmd.Flags().IntP("line", "l", 0, "Line number (required)")
	depsCmd.Flags().BoolP("json", "j", false, "Output as JSON")
	_ = depsCmd.MarkFlagRequired("line")

	RootCmd.AddCommand(depsCmd)
}
