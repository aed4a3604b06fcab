package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/l3aro/go-sdg/pkg/pdg"
	"github.com/l3aro/go-sdg/pkg/sdg"
)

// cfgCmd represents the cfg command
var cfgCmd = &cobra.Command{
	Use:   "cfg <file> <procedure>",
	Short: "Print the control flow graph of a procedure",
	Long: `Prints the control flow graph the reaching-definitions analysis runs on
for one procedure: its vertices and the flow edges between them.
Methods are named Type.Method; "` + sdg.TopLevel + `" selects package-level code.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		info, err := extract(cmd, args[0])
		if err != nil {
			return err
		}
		fg, err := pdg.FlowGraph(info, args[1])
		if err != nil {
			if names := procedureNames(info.Graph); len(names) > 0 {
				return fmt.Errorf("%w\navailable: %v", err, names)
			}
			return err
		}

		out := cmd.OutOrStdout()
		if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
			return printJSON(out, flowJSON(fg))
		}
		printFlowGraph(out, fg)
		return nil
	},
}

type flowGraphOutput struct {
	Procedure string        `json:"procedure"`
	Vertices  []*sdg.Vertex `json:"vertices"`
	Edges     [][2]int      `json:"edges"`
}

func flowJSON(fg *sdg.FlowGraph) flowGraphOutput {
	out := flowGraphOutput{Procedure: fg.Name, Vertices: fg.Vertices(), Edges: [][2]int{}}
	for _, e := range fg.Edges() {
		out.Edges = append(out.Edges, [2]int{e[0].ID, e[1].ID})
	}
	return out
}

func printFlowGraph(w io.Writer, fg *sdg.FlowGraph) {
	fmt.Fprintf(w, "=== Control flow graph: %s ===\n", fg.Name)
	fmt.Fprintf(w, "Vertices: %d\n\n", fg.Len())
	for _, v := range fg.Vertices() {
		succ := fg.Successors(v)
		ids := make([]int, len(succ))
		for i, s := range succ {
			ids[i] = s.ID
		}
		fmt.Fprintf(w, "%4d  %-12s line %-4d %s", v.ID, v.Kind, v.StartLine, v.Label)
		if len(ids) > 0 {
			fmt.Fprintf(w, "  -> %v", ids)
		}
		fmt.Fprintln(w)
	}
}

func procedureNames(g *sdg.Graph) []string {
	var names []string
	for _, fg := range g.FlowGraphs() {
		names = append(names, fg.Name)
	}
	return names
}

func init() {
	cfgCmd.Flags().BoolP("json", "j", false, "Output as JSON")

	RootCmd.AddCommand(cfgCmd)
}
