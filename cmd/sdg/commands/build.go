package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/l3aro/go-sdg/internal/scanner"
	"github.com/l3aro/go-sdg/pkg/pdg"
	"github.com/l3aro/go-sdg/pkg/sdg"
)

// buildCmd represents the build command
var buildCmd = &cobra.Command{
	Use:   "build <file|dir>",
	Short: "Build dependence graphs and print a summary",
	Long: `Builds the system dependence graph of each Go file under the given path
and prints vertex and edge counts per file, with any diagnostics.
Test files are skipped unless --tests is set.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		logger := cfg.Logger()
		defer logger.Sync()

		opts := scanner.DefaultOptions()
		opts.Exclude = cfg.Exclude
		opts.IncludeTests, _ = cmd.Flags().GetBool("tests")
		files, err := scanner.New(opts).Scan(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if len(files) == 0 {
			return fmt.Errorf("no Go files found under %s", args[0])
		}

		noCache, _ := cmd.Flags().GetBool("no-cache")
		c := openCache(cfg, logger)
		if noCache {
			c = nil
		}
		bopts := buildOptions(cfg, logger)

		results := make([]buildResult, len(files))
		g, ctx := errgroup.WithContext(cmd.Context())
		g.SetLimit(cfg.Workers)
		for i, f := range files {
			g.Go(func() error {
				info, err := pdg.ExtractFileCached(ctx, f.FullPath, c, bopts)
				if err != nil {
					// One bad file does not stop the others
					logger.Warn("skipping file", "file", f.Path, "error", err)
					results[i] = buildResult{File: f.Path, Error: err.Error()}
					return nil
				}
				info.Name = f.Path
				results[i] = buildResult{File: f.Path, Summary: info.Summarize(), Cached: info.Cached}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
		if c != nil {
			if err := c.Flush(); err != nil {
				logger.Warn("failed to write graph cache", "error", err)
			}
		}

		out := cmd.OutOrStdout()
		if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
			return printJSON(out, results)
		}
		printBuildResults(out, results)
		return nil
	},
}

// buildResult is one file's outcome.
type buildResult struct {
	File    string      `json:"file"`
	Summary pdg.Summary `json:"summary"`
	Cached  bool        `json:"cached,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func printBuildResults(w io.Writer, results []buildResult) {
	var vertices, edges, failed int
	for _, r := range results {
		if r.Error != "" {
			failed++
			fmt.Fprintf(w, "%s: error: %s\n", r.File, r.Error)
			continue
		}
		n := edgeTotal(r.Summary.Edges)
		vertices += r.Summary.Vertices
		edges += n

		cached := ""
		if r.Cached {
			cached = " (cached)"
		}
		fmt.Fprintf(w, "%s: %d vertices, %d edges, %d procedures%s\n",
			r.File, r.Summary.Vertices, n, len(r.Summary.Procedures), cached)
		fmt.Fprintf(w, "  edges: %s\n", formatEdgeCounts(r.Summary.Edges))
		if l := r.Summary.Link; l.CallSites > 0 {
			fmt.Fprintf(w, "  calls: %d sites, %d resolved, %d unresolved, %d arity mismatches\n",
				l.CallSites, l.Resolved, l.Unresolved, l.Mismatched)
		}
		for _, d := range r.Summary.Diagnostics {
			fmt.Fprintf(w, "  warning: %s\n", d)
		}
	}
	fmt.Fprintf(w, "\n%d files, %d vertices, %d edges", len(results)-failed, vertices, edges)
	if failed > 0 {
		fmt.Fprintf(w, ", %d failed", failed)
	}
	fmt.Fprintln(w)
}

func edgeTotal(counts map[sdg.EdgeKind]int) int {
	total := 0
	for _, n := range counts {
		total += n
	}
	return total
}

// formatEdgeCounts prints counts as "kind=n" pairs in edge kind order.
func formatEdgeCounts(counts map[sdg.EdgeKind]int) string {
	var parts []string
	for _, k := range sdg.EdgeKinds {
		if n := counts[k]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s=%d", k, n))
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, " ")
}

func init() {
	buildCmd.Flags().BoolP("json", "j", false, "Output as JSON")
	buildCmd.Flags().Bool("tests", false, "Include _test.go files")
	buildCmd.Flags().Bool("no-cache", false, "Do not read or write the graph cache")

	RootCmd.AddCommand(buildCmd)
}

