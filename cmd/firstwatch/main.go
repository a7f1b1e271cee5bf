package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"firstwatch/internal/anchor"
	"firstwatch/internal/assemble"
	"firstwatch/internal/config"
	"firstwatch/internal/database"
	"firstwatch/internal/ingest"
	"firstwatch/internal/location"
	"firstwatch/internal/server"
)

var version = "dev"

var (
	verbose    bool
	configPath string
	cfg        *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "firstwatch",
	Short:   "Public-safety incident monitoring",
	Long:    "Firstwatch collects social-media posts about public-safety events, anchors them into incidents, and narrates each one with cited summaries.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			log.SetFlags(log.LstdFlags | log.Lshortfile)
		} else {
			log.SetFlags(log.LstdFlags)
		}

		// Skip config loading for init, version, and locate
		if cmd.Name() == "init" || cmd.Name() == "version" || cmd.Name() == "locate" {
			return nil
		}

		path, err := config.ResolveConfigPath(configPath)
		if err != nil {
			return err
		}
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(locateCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("firstwatch", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in ~/.config/firstwatch/",
	RunE: func(cmd *cobra.Command, args []string) error {
		target := filepath.Join(config.ConfigDir(), "config.yaml")
		if _, err := os.Stat(target); err == nil {
			fmt.Printf("Config already exists: %s\n", target)
			return nil
		}

		if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		if err := os.WriteFile(target, config.DefaultConfigYAML, 0o644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Printf("Created config: %s\n", target)
		fmt.Println("Edit it to configure queries, cities, alert feeds, and the search API token.")
		return nil
	},
}

// --- run command ---

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Collect posts, anchor incidents, and store the run",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		client := ingest.NewClient(cfg.Search)
		if !client.IsConfigured() {
			fmt.Printf("Warning: %s is not set; search queries will fail.\n", cfg.Search.TokenEnv)
		}
		feeds := ingest.NewFeedSource(cfg.Feeds)
		window := time.Duration(cfg.Anchoring.WindowHours) * time.Hour
		collector := ingest.NewCollector(client, feeds, cfg.Search.PageSize, window)
		engine := anchor.NewEngine(nil, window, cfg.Anchoring.MinClusterSize)
		assembler := assemble.New(collector, engine, cfg.Catalogue)

		fmt.Println("Collecting posts and assembling incidents...")
		result := assembler.Assemble(context.Background(), cfg.Queries, cfg.Cities)

		runID, err := db.InsertRun(result.Incidents)
		if err != nil {
			return fmt.Errorf("storing run: %w", err)
		}

		fmt.Printf("\nRun %d complete:\n", runID)
		fmt.Printf("  Incidents: %d (%d catalogue, %d live)\n", len(result.Incidents), result.Catalogue, result.Live)
		for _, inc := range result.Incidents {
			fmt.Printf("  [%s] %s (%s)\n", inc.Severity, inc.Title, inc.Location)
		}
		fmt.Println("\nRun 'firstwatch serve' to browse the incidents.")
		return nil
	},
}

// --- serve command ---

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local web server",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}
		fmt.Printf("Starting server at http://localhost:%d\n", port)
		fmt.Println("Press Ctrl+C to stop")
		return server.Serve(db, port)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to run server on (default from config)")
}

// --- status command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show database and system status",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		stats, err := db.GetStats()
		if err != nil {
			return fmt.Errorf("getting stats: %w", err)
		}

		fmt.Println("Store:")
		fmt.Printf("  Runs: %d\n", stats.Runs)
		fmt.Printf("  Incidents: %d\n", stats.Incidents)
		fmt.Printf("  Posts: %d\n", stats.Posts)
		if stats.LastRunAt != nil {
			fmt.Printf("  Last run: %s\n", *stats.LastRunAt)
		} else {
			fmt.Println("  Last run: never")
		}
		fmt.Println("\nConfig:")
		fmt.Printf("  Queries: %d\n", len(cfg.Queries))
		fmt.Printf("  Cities: %d\n", len(cfg.Cities))
		fmt.Printf("  Feeds: %d\n", len(cfg.Feeds))
		fmt.Printf("  Catalogue entries: %d\n", len(cfg.Catalogue))
		return nil
	},
}

// --- locate command ---

var locateCmd = &cobra.Command{
	Use:   "locate [text]",
	Short: "Run the location extractor over a piece of text",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text := strings.Join(args, " ")
		match := location.NewExtractor().Extract(text)
		if match.Name == "" {
			fmt.Println("No location found.")
			return nil
		}
		fmt.Printf("%s (confidence %.2f)\n", match.Name, match.Confidence)
		return nil
	},
}

func openDB() (*database.DB, error) {
	dataDir := cfg.GetDataDir()
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return database.Open(filepath.Join(dataDir, "firstwatch.db"))
}
