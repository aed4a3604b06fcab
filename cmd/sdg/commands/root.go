// Package commands provides the CLI commands for the sdg tool.
package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/l3aro/go-sdg/internal/config"
	"github.com/l3aro/go-sdg/internal/log"
	"github.com/l3aro/go-sdg/pkg/cache"
	"github.com/l3aro/go-sdg/pkg/dfg"
	"github.com/l3aro/go-sdg/pkg/pdg"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "sdg",
	Short: "sdg - System dependence graphs for Go source",
	Long: `sdg builds system dependence graphs for Go source files: control and
data dependences inside each function plus call and parameter edges between
them.

Commands:
  build       Build graphs for a file or directory and print a summary
  cfg         Print the control flow graph of one function
  slice       Backward or forward slice from a line or vertex
  deps        Show the dependences of one line
  procs       List procedures and their parameters
  init        Write a configuration file interactively

Use "sdg [command] --help" for more information about a command.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() error {
	return RootCmd.Execute()
}

func init() {
	RootCmd.PersistentFlags().String("config", "", "Config file path (default: ~/.sdg and ./.sdg)")
	RootCmd.PersistentFlags().BoolP("verbose", "v", false, "Debug logging")
}

// loadConfig reads the configuration named by --config, or the layered
// default, and applies --verbose.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		cfg, err = config.LoadFromFile(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

// buildOptions maps configuration onto pipeline options.
func buildOptions(cfg *config.Config, logger log.Logger) pdg.Options {
	return pdg.Options{
		Logger: logger,
		Dataflow: dfg.Options{
			MaxIterations: cfg.MaxIterations,
			Workers:       cfg.Workers,
			InitialState:  cfg.InitialState,
		},
	}
}

// openCache returns the configured graph cache, or nil when caching is off.
func openCache(cfg *config.Config, logger log.Logger) *cache.GraphCache {
	if cfg.CacheSize == 0 {
		return nil
	}
	if cfg.CachePath == "" {
		return cache.NewGraphCache(cfg.CacheSize)
	}
	c, err := cache.Open(cfg.CachePath, cfg.CacheSize)
	if err != nil {
		logger.Warn("ignoring unreadable graph cache", "path", cfg.CachePath, "error", err)
		return cache.NewGraphCache(cfg.CacheSize)
	}
	return c
}

// extract builds the graph of one file with the command's configuration.
func extract(cmd *cobra.Command, path string) (*pdg.PDGInfo, error) {
	if err := requireFile(path); err != nil {
		return nil, err
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger := cfg.Logger()
	defer logger.Sync()

	c := openCache(cfg, logger)
	info, err := pdg.ExtractFileCached(cmd.Context(), path, c, buildOptions(cfg, logger))
	if err != nil {
		return nil, err
	}
	if c != nil {
		if err := c.Flush(); err != nil {
			logger.Warn("failed to write graph cache", "error", err)
		}
	}
	return info, nil
}

func requireFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("path is a directory, expected a file: %s", path)
	}
	return nil
}

func printJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}
