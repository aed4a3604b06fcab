package commands

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/l3aro/go-sdg/pkg/pdg"
	"github.com/l3aro/go-sdg/pkg/sdg"
)

var sliceCmd = &cobra.Command{
	Use:   "slice <file> (--line N | --vertex ID) [--forward] [--var NAME] [--kind K] [--json]",
	Short: "Backward or forward slice from a line or a vertex",
	Long: `Slices the dependence graph of a file.

Backward slice: every line that may affect the statement at the target.
Forward slice: every line that may be affected by it.

--line starts from the statements beginning on a source line; --var then
restricts data edges to one variable. --vertex starts from a single vertex
id (see "sdg cfg"); --kind restricts the edges followed, for example
--kind data --kind param_in.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filePath := args[0]

		line, _ := cmd.Flags().GetInt("line")
		vertex, _ := cmd.Flags().GetInt("vertex")
		byVertex := cmd.Flags().Changed("vertex")
		if byVertex == cmd.Flags().Changed("line") {
			return fmt.Errorf("exactly one of --line or --vertex is required")
		}
		if !byVertex && line <= 0 {
			return fmt.Errorf("line number must be positive: %d", line)
		}
		forward, _ := cmd.Flags().GetBool("forward")

		var varFilter *string
		if cmd.Flags().Changed("var") {
			if byVertex {
				return fmt.Errorf("--var applies to --line slices; use --kind with --vertex")
			}
			name, _ := cmd.Flags().GetString("var")
			varFilter = &name
		}
		kinds, err := edgeKinds(cmd)
		if err != nil {
			return err
		}

		info, err := extract(cmd, filePath)
		if err != nil {
			return err
		}

		out := sliceOutput{File: filePath, Direction: "backward", Variable: varFilter}
		if forward {
			out.Direction = "forward"
		}
		if byVertex {
			v := info.Graph.Vertex(vertex)
			if v == nil {
				return fmt.Errorf("no vertex %d in %s", vertex, filePath)
			}
			out.Vertex = &vertex
			var vs []*sdg.Vertex
			if forward {
				vs = sdg.ForwardSlice(info.Graph, []*sdg.Vertex{v}, kinds...)
			} else {
				vs = sdg.BackwardSlice(info.Graph, []*sdg.Vertex{v}, kinds...)
			}
			out.Vertices = vs
			out.Lines = sdg.Lines(vs)
		} else {
			out.Line = line
			if forward {
				out.Lines = pdg.ForwardSlice(info, line, varFilter)
			} else {
				out.Lines = pdg.BackwardSlice(info, line, varFilter)
			}
		}
		if out.Lines == nil {
			out.Lines = []int{}
		}

		w := cmd.OutOrStdout()
		if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
			return printJSON(w, out)
		}
		printSliceInfo(w, out)
		return nil
	},
}

type sliceOutput struct {
	File      string        `json:"file"`
	Line      int           `json:"line,omitempty"`
	Vertex    *int          `json:"vertex,omitempty"`
	Direction string        `json:"direction"`
	Variable  *string       `json:"variable,omitempty"`
	Lines     []int         `json:"slice_lines"`
	Vertices  []*sdg.Vertex `json:"vertices,omitempty"`
}

func edgeKinds(cmd *cobra.Command) ([]sdg.EdgeKind, error) {
	names, _ := cmd.Flags().GetStringSlice("kind")
	var kinds []sdg.EdgeKind
	for _, n := range names {
		k := sdg.EdgeKind(n)
		known := false
		for _, e := range sdg.EdgeKinds {
			if e == k {
				known = true
				break
			}
		}
		if !known {
			return nil, fmt.Errorf("unknown edge kind %q (want one of %v)", n, sdg.EdgeKinds)
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}

func printSliceInfo(w io.Writer, out sliceOutput) {
	if out.Vertex != nil {
		fmt.Fprintf(w, "=== Slice for %s (vertex %d, %s) ===\n", out.File, *out.Vertex, out.Direction)
	} else {
		fmt.Fprintf(w, "=== Slice for %s (line %d, %s) ===\n", out.File, out.Line, out.Direction)
	}
	if out.Variable != nil {
		fmt.Fprintf(w, "Variable filter: %s\n", *out.Variable)
	}

	fmt.Fprintf(w, "\nSlice lines (%d): ", len(out.Lines))
	if len(out.Lines) == 0 {
		fmt.Fprintln(w, "none")
		return
	}
	fmt.Fprintln(w, formatLineRanges(out.Lines))

	fmt.Fprintln(w, "\n--- Source code with slice lines highlighted ---")
	if err := printSourceWithHighlights(w, out.File, out.Lines); err != nil {
		fmt.Fprintf(w, "(source unavailable: %v)\n", err)
	}
}

func formatLineRanges(lines []int) string {
	if len(lines) == 0 {
		return "none"
	}

	var ranges []string
	start := lines[0]
	end := lines[0]
	flush := func() {
		if start == end {
			ranges = append(ranges, fmt.Sprintf("%d", start))
		} else {
			ranges = append(ranges, fmt.Sprintf("%d-%d", start, end))
		}
	}

	for i := 1; i < len(lines); i++ {
		if lines[i] == end+1 {
			end = lines[i]
			continue
		}
		flush()
		start = lines[i]
		end = lines[i]
	}
	flush()

	return strings.Join(ranges, ", ")
}

// printSourceWithHighlights prints the source lines from the first to the
// last slice line, marking the ones in the slice.
func printSourceWithHighlights(w io.Writer, path string, sliceLines []int) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	lineSet := make(map[int]bool, len(sliceLines))
	for _, line := range sliceLines {
		lineSet[line] = true
	}
	first, last := sliceLines[0], sliceLines[len(sliceLines)-1]

	sc := bufio.NewScanner(f)
	for n := 1; sc.Scan() && n <= last; n++ {
		if n < first {
			continue
		}
		highlight := "    "
		if lineSet[n] {
			highlight = " >>>"
		}
		fmt.Fprintf(w, "%5d:%s %s\n", n, highlight, sc.Text())
	}
	return sc.Err()
}

func init() {
	sliceCmd.Flags().IntP("line", "l", 0, "Line number to slice from")
	sliceCmd.Flags().Int("vertex", 0, "Vertex id to slice from")
	sliceCmd.Flags().BoolP("forward", "f", false, "Forward slice (default backward)")
	sliceCmd.Flags().String("var", "", "Variable name to filter data edges (--line only)")
	sliceCmd.Flags().StringSliceP("kind", "k", nil, "Edge kinds to follow (--vertex only, repeatable)")
	sliceCmd.Flags().BoolP("json", "j", false, "Output as JSON")

	RootCmd.AddCommand(sliceCmd)
}
