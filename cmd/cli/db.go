package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/kosarica/grooming-service/internal/analytics"
	"github.com/kosarica/grooming-service/internal/app"
	"github.com/kosarica/grooming-service/internal/database"
	"github.com/kosarica/grooming-service/internal/report"
)

var (
	backfillLimit int
	reportFrom    string
	reportTo      string
	reportFormat  string
	reportOut     string
	reportRole    string
)

var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Classify stored transactions that were never classified",
	RunE:  runBackfill,
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Write the comprehensive report for a period",
	Example: `  grooming report --from 2024-06-01 --to 2024-06-30 --format xlsx --out junio.xlsx
  grooming report --role staff`,
	RunE: runReport,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE:  runMigrate,
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Upsert an exported dataset into the database",
	RunE:  runImport,
}

func init() {
	backfillCmd.Flags().IntVar(&backfillLimit, "limit", 500, "maximum transactions to classify")

	reportCmd.Flags().StringVar(&reportFrom, "from", "", "start date YYYY-MM-DD (default 30 days before --to)")
	reportCmd.Flags().StringVar(&reportTo, "to", "", "end date YYYY-MM-DD, inclusive (default today)")
	reportCmd.Flags().StringVar(&reportFormat, "format", "json", "json, xlsx or pdf")
	reportCmd.Flags().StringVar(&reportOut, "out", "", "output file (default stdout for json)")
	reportCmd.Flags().StringVar(&reportRole, "role", "admin", "role the report is built for")

	importCmd.Flags().StringVar(&inputFile, "input", "", "dataset JSON file")
	_ = importCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(backfillCmd, reportCmd, migrateCmd, importCmd)
}

func dbService(cmd *cobra.Command) (*analytics.Service, func(), error) {
	collector, closeCache, err := app.NewCollector(cmd.Context(), cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	svc, err := app.NewService(cfg, database.NewStore(db), collector, logger)
	if err != nil {
		closeCache()
		return nil, nil, err
	}
	return svc, closeCache, nil
}

func runBackfill(cmd *cobra.Command, args []string) error {
	svc, closeFn, err := dbService(cmd)
	if err != nil {
		return err
	}
	defer closeFn()

	res, err := svc.Backfill(cmd.Context(), backfillLimit)
	if err != nil {
		return err
	}
	pterm.Success.Printfln("Classified %d transactions (%d grooming, %d store)", res.Processed, res.Grooming, res.Store)
	if res.Failed > 0 {
		pterm.Warning.Printfln("%d transactions could not be updated", res.Failed)
	}
	return nil
}

func reportPeriod(loc *time.Location) (analytics.Period, error) {
	now := time.Now().In(loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	p := analytics.Period{To: today.AddDate(0, 0, 1)}
	if reportTo != "" {
		t, err := time.ParseInLocation("2006-01-02", reportTo, loc)
		if err != nil {
			return p, fmt.Errorf("invalid --to: %w", err)
		}
		p.To = t.AddDate(0, 0, 1)
	}
	p.From = p.To.Add(-analytics.DefaultLookback)
	if reportFrom != "" {
		t, err := time.ParseInLocation("2006-01-02", reportFrom, loc)
		if err != nil {
			return p, fmt.Errorf("invalid --from: %w", err)
		}
		p.From = t
	}
	return p, p.Validate()
}

func runReport(cmd *cobra.Command, args []string) error {
	format := strings.ToLower(reportFormat)
	if format != "json" && format != "xlsx" && format != "pdf" {
		return fmt.Errorf("invalid format: %s (use json, xlsx or pdf)", reportFormat)
	}
	if format != "json" && reportOut == "" {
		return fmt.Errorf("--out is required for %s", format)
	}

	svc, closeFn, err := dbService(cmd)
	if err != nil {
		return err
	}
	defer closeFn()

	p, err := reportPeriod(svc.Location())
	if err != nil {
		return err
	}
	r, err := svc.Report(cmd.Context(), p, report.ParseRole(reportRole))
	if err != nil {
		return err
	}

	if reportOut == "" {
		return printJSON(r)
	}
	f, err := os.Create(filepath.Clean(reportOut))
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", reportOut, err)
	}
	defer f.Close()

	switch format {
	case "xlsx":
		err = report.WriteXLSX(f, r)
	case "pdf":
		err = report.WritePDF(f, r)
	default:
		enc := jsonEncoder(f)
		err = enc.Encode(r)
	}
	if err != nil {
		return err
	}
	pterm.Success.Printfln("Report written to %s", reportOut)
	return nil
}

func runMigrate(cmd *cobra.Command, args []string) error {
	if err := db.EnsureSchema(cmd.Context()); err != nil {
		return err
	}
	pterm.Success.Println("Schema is up to date")
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	ds, err := loadDataset(inputFile)
	if err != nil {
		return err
	}
	if err := db.EnsureSchema(cmd.Context()); err != nil {
		return err
	}
	store := database.NewStore(db)
	stats, err := store.Import(cmd.Context(), ds)
	if err != nil {
		return err
	}
	if len(ds.Rules) > 0 {
		if err := store.ReplaceRules(cmd.Context(), ds.Rules); err != nil {
			return err
		}
	}
	pterm.Success.Printfln("Imported %d clients, %d employees, %d products, %d transactions, %d rules",
		stats.Clients, stats.Employees, stats.Products, stats.Transactions, len(ds.Rules))
	return nil
}
