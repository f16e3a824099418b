package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/s0up4200/marquee/browse"
	"github.com/s0up4200/marquee/catalog"
	"github.com/s0up4200/marquee/config"
	"github.com/s0up4200/marquee/filter"
	"github.com/s0up4200/marquee/library"
	"github.com/s0up4200/marquee/tmdb"
)

var (
	cfgFile    string
	cfg        *config.Config
	logger     zerolog.Logger
	tmdbClient *tmdb.Client
	service    *browse.Service
	filters    *filter.Manager
	store      *library.Store

	// Global flags
	listName string
	logLevel string

	version   = "dev"
	buildTime = "unknown"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "marquee",
	Short: "Browse TMDB movie lists and keep a personal movie register",
	Long: `marquee pages through the popular, top rated and upcoming movie lists
of The Movie Database, filters what it finds, and keeps a local register
of movies with ratings, categories and notes.`,
	PersistentPreRunE:  initializeApp,
	PersistentPostRunE: shutdownApp,
	SilenceUsage:       true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// SetVersion records build information shown by the version command
func SetVersion(v, built string) {
	version = v
	buildTime = built
	rootCmd.Version = v
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&listName, "list", "l", "", "movie list: popular, top-rated or upcoming")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the configured log level")

	rootCmd.AddCommand(testCmd)
	rootCmd.AddCommand(versionCmd)
}

// initializeApp initializes the configuration and clients
func initializeApp(cmd *cobra.Command, args []string) error {
	if cmd.Name() == versionCmd.Name() {
		return nil
	}

	// Load configuration
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}

	// Setup logger
	logger = setupLogger(cfg.Logging)

	// Create TMDB client
	tmdbClient, err = tmdb.NewClient(cfg.TMDB.APIKey, logger,
		tmdb.WithBaseURL(cfg.TMDB.BaseURL),
		tmdb.WithImageBaseURL(cfg.TMDB.ImageBaseURL),
		tmdb.WithLanguage(cfg.TMDB.Language),
		tmdb.WithTimeout(cfg.TMDB.Timeout),
		tmdb.WithRetryCount(cfg.TMDB.RetryCount),
	)
	if err != nil {
		return fmt.Errorf("failed to create TMDB client: %w", err)
	}

	service = browse.New(tmdbClient, logger.With().Str("component", "browse").Logger(),
		browse.WithPrefetchThreshold(cfg.Browse.PrefetchThreshold),
		browse.WithMaxPages(cfg.Browse.MaxPages),
		browse.WithWorkers(cfg.Browse.Workers),
		browse.WithPosterSizes(cfg.Browse.PosterSize, cfg.Browse.DetailPosterSize),
	)

	filters = filter.NewManager()
	if err := filters.RegisterFilters(cfg.Filter); err != nil {
		return fmt.Errorf("invalid filter in config: %w", err)
	}

	return nil
}

// shutdownApp stops the browsing service and closes open resources
func shutdownApp(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if service != nil {
		if err := service.Close(ctx); err != nil {
			logger.Warn().Err(err).Msg("Browse service did not stop cleanly")
		}
	}
	if store != nil {
		if err := store.Close(); err != nil {
			logger.Warn().Err(err).Msg("Failed to close library")
		}
	}
	if tmdbClient != nil {
		tmdbClient.Close()
	}
	return nil
}

// openLibrary opens the local register on first use
func openLibrary() (*library.Store, error) {
	if store != nil {
		return store, nil
	}

	var err error
	store, err = library.Open(cfg.Library.Path, logger.With().Str("component", "library").Logger())
	if err != nil {
		return nil, err
	}
	return store, nil
}

// selectedList returns the list from --list, falling back to the configured one
func selectedList() (catalog.ListKind, error) {
	name := listName
	if name == "" {
		name = cfg.Browse.InitialList
	}
	return catalog.ParseListKind(name)
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

	// Console format
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    !cfg.Color || !isatty.IsTerminal(os.Stderr.Fd()),
	}

	return zerolog.New(output).With().Timestamp().Logger()
}

// testCmd represents the test command
var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Test the TMDB API key",
	Long:  `Verify the configured API key by loading the movie genre taxonomy.`,
	RunE:  runTest,
}

func runTest(cmd *cobra.Command, args []string) error {
	fmt.Printf("Testing connection to TMDB at %s...\n", cfg.TMDB.BaseURL)

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	if err := tmdbClient.TestConnection(ctx); err != nil {
		return fmt.Errorf("connection failed: %s", catalog.UserMessage(err))
	}
	fmt.Println("✓ Connection successful!")

	genres := service.Genres()
	if len(genres) == 0 {
		genres, _ = service.LoadGenres(ctx)
	}

	fmt.Printf("\nTMDB Statistics:\n")
	fmt.Printf("- Genres: %d\n", len(genres))
	fmt.Printf("- Language: %s\n", cfg.TMDB.Language)
	fmt.Printf("- Named filters: %d\n", len(filters.ListFilters()))

	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("marquee %s (built %s)\n", version, buildTime)
	},
}
