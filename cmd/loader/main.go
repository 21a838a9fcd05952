package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/rsignoret/road-accidents-db/internal/config"
	"github.com/rsignoret/road-accidents-db/internal/database"
	"github.com/rsignoret/road-accidents-db/internal/ingestion"
	"github.com/rsignoret/road-accidents-db/internal/models"
	"github.com/rsignoret/road-accidents-db/internal/retry"
	"github.com/rsignoret/road-accidents-db/pkg/checksum"
)

var (
	flagDir  string
	flagOnce bool
)

var rootCmd = &cobra.Command{
	Use:   "accidents-loader",
	Short: "Load the raw road-accident CSV files into PostgreSQL, exactly once per file content",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return run(cmd.Context())
	},
}

func init() {
	rootCmd.Flags().StringVar(&flagDir, "dir", "", "raw files root directory (overrides RAW_FILES_ROOT_DIR)")
	rootCmd.Flags().BoolVar(&flagOnce, "once", false, "exit after the run instead of idling")
}

func run(ctx context.Context) error {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: could not load .env file: %v", err)
	}

	cfg, err := config.New()
	if err != nil {
		return err
	}
	if flagDir != "" {
		cfg.RawFilesRootDir = flagDir
	}

	checksumFn, err := checksum.ForAlgorithm(cfg.ChecksumAlgorithm)
	if err != nil {
		return err
	}

	executor := retry.NewExecutor(retry.NewPostgresClassifier(), cfg.RetryInterval, retry.Unlimited)

	dbpool, err := database.Connect(ctx, cfg.DatabaseURL(), executor)
	if err != nil {
		return err
	}
	defer dbpool.Close()

	dbManager := database.NewPostgresDBManager(ctx, dbpool, executor)
	if err := dbManager.InitSchema(); err != nil {
		return err
	}

	files, err := ingestion.NewScanner(checksumFn).Scan(cfg.RawFilesRootDir)
	if err != nil {
		return err
	}

	if err := ingestion.NewRegistry(dbManager).Reconcile(files); err != nil {
		return err
	}

	writer := ingestion.NewTableWriter(dbManager)
	results := ingestion.NewOrchestrator(dbManager, writer).Run(files)

	for _, result := range results {
		switch result.Status {
		case models.StatusProcessed:
			log.Printf("%s: processed (%d rows)", result.Type, result.Rows)
		case models.StatusFailed:
			log.Printf("%s: failed (%s)", result.Type, result.Reason)
		}
	}

	if flagOnce {
		return nil
	}

	// The loader runs under a supervisor that expects it to stay alive
	// after a completed run.
	log.Println("Done populating the database, taking a long siesta...")
	for {
		time.Sleep(2 * time.Minute)
	}
}

func main() {
	startTime := time.Now()

	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error during ingestion: %v", err)
	}

	log.Printf("Execution time: %s", time.Since(startTime))
}
