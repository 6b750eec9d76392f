package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/kosarica/grooming-service/config"
	"github.com/kosarica/grooming-service/internal/app"
	"github.com/kosarica/grooming-service/internal/database"
)

var (
	cfgFile string
	cfg     *config.Config
	logger  zerolog.Logger
	db      *database.DB
)

var rootCmd = &cobra.Command{
	Use:   "grooming",
	Short: "Grooming Service CLI - business analytics for a pet grooming shop",
	Long: `Operator tool for the grooming service. Offline commands analyze an
exported JSON dataset; database commands run against DATABASE_URL.`,
	PersistentPreRunE:  persistentPreRun,
	PersistentPostRunE: persistentPostRun,
	SilenceUsage:       true,
}

// commands that need a database connection
var dbCommands = map[string]bool{
	"backfill": true,
	"report":   true,
	"migrate":  true,
	"import":   true,
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config/config.yaml or ./config.yaml)")
}

func initConfig() {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
	}
}

func persistentPreRun(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "help" || cmd.Name() == "completion" {
		return nil
	}

	logging := config.LoggingConfig{Level: "info", Format: "console"}
	if cfg != nil {
		logging = cfg.Logging
		logging.Format = "console"
	}
	logger = app.NewLogger(logging, os.Stderr, "grooming-cli")
	log.Logger = logger

	if cfg == nil {
		return fmt.Errorf("config required for %s but not loaded", cmd.Name())
	}
	if !dbCommands[cmd.Name()] {
		return nil
	}
	if cfg.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL not set")
	}
	var err error
	db, err = database.Connect(cmd.Context(), cfg.Database)
	if err != nil {
		return fmt.Errorf("database initialization failed: %w", err)
	}
	logger.Debug().Msg("Database connected")
	return nil
}

func persistentPostRun(cmd *cobra.Command, args []string) error {
	if db != nil {
		db.Close()
	}
	return nil
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
