package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/l3aro/go-sdg/pkg/engine"
	"github.com/l3aro/go-sdg/pkg/sdg"
)

var procsCmd = &cobra.Command{
	Use:   "procs <file>",
	Short: "List procedures, their parameters and call sites",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		info, err := extract(cmd, args[0])
		if err != nil {
			return err
		}
		procs := procedureTable(info.Graph)

		out := cmd.OutOrStdout()
		if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
			return printJSON(out, procs)
		}
		for _, p := range procs {
			fmt.Fprintf(out, "%s (line %d)\n", p.Name, p.Line)
			fmt.Fprintf(out, "  params: %v\n", p.Params)
			if p.HasResult {
				fmt.Fprintln(out, "  returns a result")
			}
			fmt.Fprintf(out, "  called from %d site(s)\n", len(p.Callers))
		}
		return nil
	},
}

type procedureOutput struct {
	Name      string   `json:"name"`
	Line      int      `json:"line"`
	Params    []string `json:"params"`
	HasResult bool     `json:"has_result"`
	Callers   []int    `json:"callers"` // Call vertex ids
}

func procedureTable(g *sdg.Graph) []procedureOutput {
	index := make(map[string]int)
	var procs []procedureOutput
	for _, p := range g.Procedures() {
		o := procedureOutput{Name: p.Name, Line: p.Entry.StartLine, Params: []string{}, Callers: []int{}}
		for _, f := range p.FormalIns() {
			o.Params = append(o.Params, f.Label)
		}
		_, o.HasResult = p.FormalOut()
		index[p.Name] = len(procs)
		procs = append(procs, o)
	}
	for _, cs := range g.CallSites() {
		if p, ok := engine.Resolve(g, cs.Callee); ok {
			i := index[p.Name]
			procs[i].Callers = append(procs[i].Callers, cs.Call.ID)
		}
	}
	return procs
}

func init() {
	procsCmd.Flags().BoolP("json", "j", false, "Output as JSON")

	RootCmd.AddCommand(procsCmd)
}
