package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/l3aro/go-sdg/internal/config"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize sdg configuration interactively",
	Long: `Guides you through setting up sdg configuration step by step and writes
it to the global (~/.sdg/config.yaml) or project (./.sdg/config.yaml) file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInit()
	},
}

func positiveInt(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return fmt.Errorf("enter a positive number")
	}
	return nil
}

func nonNegativeInt(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return fmt.Errorf("enter zero or a positive number")
	}
	return nil
}

func runInit() error {
	cfg := config.DefaultConfig()

	// === SECTION 1: Analysis ===
	workers := strconv.Itoa(cfg.Workers)
	maxIterations := strconv.Itoa(cfg.MaxIterations)
	initialState := cfg.InitialState
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Workers").
				Description("Procedures analyzed in parallel").
				Placeholder(workers).
				Validate(positiveInt).
				Value(&workers),
			huh.NewInput().
				Title("Maximum fixpoint sweeps").
				Description("Reaching-definitions sweeps per procedure before giving up").
				Placeholder(maxIterations).
				Validate(positiveInt).
				Value(&maxIterations),
			huh.NewConfirm().
				Title("Link reads of undefined variables?").
				Description("Adds an initial-state vertex per procedure and variable").
				Affirmative("Yes").
				Negative("No").
				Value(&initialState),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("interactive prompt failed: %w", err)
	}
	cfg.Workers, _ = strconv.Atoi(workers)
	cfg.MaxIterations, _ = strconv.Atoi(maxIterations)
	cfg.InitialState = initialState

	// === SECTION 2: Cache and logging ===
	cacheSize := strconv.Itoa(cfg.CacheSize)
	cachePath := cfg.CachePath
	logLevel := cfg.LogLevel
	logJSON := cfg.LogJSON
	form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Graph cache size").
				Description("Graphs kept in the cache, 0 disables it").
				Placeholder(cacheSize).
				Validate(nonNegativeInt).
				Value(&cacheSize),
			huh.NewInput().
				Title("Graph cache file (empty keeps it in memory)").
				Placeholder(cachePath).
				Value(&cachePath),
			huh.NewSelect[string]().
				Title("Log level").
				Options(
					huh.NewOption("Debug", "debug"),
					huh.NewOption("Info", "info"),
					huh.NewOption("Warn", "warn"),
					huh.NewOption("Error", "error"),
				).
				Value(&logLevel),
			huh.NewConfirm().
				Title("JSON logs?").
				Value(&logJSON),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("interactive prompt failed: %w", err)
	}
	cfg.CacheSize, _ = strconv.Atoi(cacheSize)
	cfg.CachePath = cachePath
	cfg.LogLevel = logLevel
	cfg.LogJSON = logJSON

	// === SECTION 3: Config Location ===
	var saveLocationChoice string
	form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Save Configuration").
				Description("Where to save the configuration file?").
				Options(
					huh.NewOption("Global (~/.sdg/config.yaml)", "global"),
					huh.NewOption("Project (./.sdg/config.yaml)", "project"),
				).
				Value(&saveLocationChoice),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("interactive prompt failed: %w", err)
	}

	configPath := config.ProjectConfigFilePath()
	if saveLocationChoice == "global" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("getting home directory: %w", err)
		}
		configPath = filepath.Join(home, ".sdg", "config.yaml")
	}

	if _, err := os.Stat(configPath); err == nil {
		var overwrite bool
		form = huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title("Config file exists").
					Description(fmt.Sprintf("Overwrite existing config at %s?", configPath)).
					Affirmative("Overwrite").
					Negative("Cancel").
					Value(&overwrite),
			),
		)
		if err := form.Run(); err != nil {
			return fmt.Errorf("interactive prompt failed: %w", err)
		}
		if !overwrite {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	fmt.Println("\n=== Configuration Preview ===")
	fmt.Printf("Config path: %s\n", configPath)
	fmt.Printf("Workers: %d\n", cfg.Workers)
	fmt.Printf("Max iterations: %d\n", cfg.MaxIterations)
	fmt.Printf("Initial state: %t\n", cfg.InitialState)
	if cfg.CacheSize == 0 {
		fmt.Println("Cache: disabled")
	} else {
		fmt.Printf("Cache: %d graphs at %q\n", cfg.CacheSize, cfg.CachePath)
	}
	fmt.Printf("Logging: %s (json=%t)\n", cfg.LogLevel, cfg.LogJSON)
	fmt.Println("================================")

	if err := cfg.Save(configPath); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	fmt.Printf("Configuration saved to: %s\n", configPath)
	return nil
}

func init() {
	RootCmd.AddCommand(initCmd)
}
