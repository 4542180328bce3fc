package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/s0up4200/moviescout/config"
	"github.com/s0up4200/moviescout/filter"
	"github.com/s0up4200/moviescout/library"
	"github.com/s0up4200/moviescout/omdb"
	"github.com/s0up4200/moviescout/search"
)

var (
	cfgFile       string
	cfg           *config.Config
	logger        zerolog.Logger
	omdbClient    *omdb.Client
	aggregator    *search.Aggregator
	libraryClient *library.Client
	filterManager *filter.Manager

	version   = "dev"
	buildTime = "unknown"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "moviescout",
	Short: "Search OMDb for movies and their Rotten Tomatoes ratings",
	Long: `moviescout is a CLI tool that searches the OMDb catalog by title, fetches
the details of every match concurrently and shows each movie with its
Rotten Tomatoes rating. Results can be filtered with expressions and
checked against a Radarr library.`,
	PersistentPreRunE: initializeApp,
	SilenceUsage:      true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// SetVersion records the build information reported by the version and update commands
func SetVersion(v, built string) {
	version = v
	buildTime = built
	rootCmd.Version = v
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")

	// Add subcommands
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(testCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(versionCmd)
}

// initializeApp initializes the configuration and clients
func initializeApp(cmd *cobra.Command, args []string) error {
	// Load configuration
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Setup logger
	logger = setupLogger(cfg.Logging)

	// One search page holds ten ids, so the cap decides how far a search may walk
	maxPages := (cfg.Search.MaxResultsCap + 9) / 10

	omdbClient, err = omdb.NewClient(cfg.OMDb.URL, cfg.OMDb.APIKey, logger,
		omdb.WithTimeout(cfg.OMDb.Timeout),
		omdb.WithMaxPages(maxPages),
		omdb.WithUserAgent("moviescout/"+version),
	)
	if err != nil {
		return fmt.Errorf("failed to create OMDb client: %w", err)
	}

	aggregator, err = search.NewAggregator(omdbClient, search.Options{
		MaxResultsCap: cfg.Search.MaxResultsCap,
		Concurrency:   cfg.Search.Concurrency,
		TaskTimeout:   cfg.Search.TaskTimeout,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to create search aggregator: %w", err)
	}

	filterManager = filter.NewManager()
	if err := filterManager.RegisterFilters(cfg.Filter.PresetExpressions()); err != nil {
		return fmt.Errorf("invalid filter preset: %w", err)
	}

	// Create Radarr client if enabled
	libraryClient = nil
	if cfg.Radarr.Enabled {
		libraryClient, err = library.NewClient(cfg.Radarr.URL, cfg.Radarr.APIKey, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to create Radarr client, continuing without library status")
			libraryClient = nil
		} else {
			logger.Info().Msg("Radarr integration enabled")
		}
	}

	return nil
}

// setupLogger configures the zerolog logger
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	// Set log level
	level := zerolog.InfoLevel
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	zerolog.SetGlobalLevel(level)

	// Configure output format
	if cfg.Format == "json" {
		return zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	// Console format, no color codes when stderr is redirected
	fd := os.Stderr.Fd()
	tty := isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)

	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    !cfg.Color || !tty,
	}

	return zerolog.New(output).With().Timestamp().Logger()
}

// skipInit replaces the root pre-run for commands that need no configuration
func skipInit(*cobra.Command, []string) {}
