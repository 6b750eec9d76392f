package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/kosarica/grooming-service/internal/analytics"
	"github.com/kosarica/grooming-service/internal/app"
	"github.com/kosarica/grooming-service/internal/classification"
	"github.com/kosarica/grooming-service/internal/segmentation"
	"github.com/kosarica/grooming-service/internal/types"
)

var (
	inputFile  string
	rulesFile  string
	outputJSON bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run the dashboard over an exported dataset",
	Long: `Loads a JSON dataset (transactions, clients, products, optional rules and
appointments) and prints the forecast, segments, busiest block and alerts.
The analysis window ends at the latest transaction.`,
	Example: `  grooming analyze --input export.json
  grooming analyze --input export.json --json`,
	RunE: runAnalyze,
}

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Print the seven day revenue forecast of a dataset",
	RunE:  runForecast,
}

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Classify the transactions of a dataset",
	Long: `Classifies every transaction of the dataset as grooming, store or both.
Rules come from --rules (YAML) when given, otherwise from the dataset.`,
	Example: `  grooming classify --input export.json --rules rules.yaml`,
	RunE:    runClassify,
}

func init() {
	for _, cmd := range []*cobra.Command{analyzeCmd, forecastCmd, classifyCmd} {
		cmd.Flags().StringVar(&inputFile, "input", "", "dataset JSON file")
		cmd.Flags().BoolVar(&outputJSON, "json", false, "print JSON instead of tables")
		_ = cmd.MarkFlagRequired("input")
		rootCmd.AddCommand(cmd)
	}
	classifyCmd.Flags().StringVar(&rulesFile, "rules", "", "classification rules YAML file")
}

func loadDataset(path string) (types.Dataset, error) {
	var ds types.Dataset
	raw, err := os.ReadFile(path)
	if err != nil {
		return ds, fmt.Errorf("failed to read dataset: %w", err)
	}
	if err := json.Unmarshal(raw, &ds); err != nil {
		return ds, fmt.Errorf("failed to parse dataset: %w", err)
	}
	return ds, nil
}

// datasetPeriod is the lookback window ending just after the latest
// transaction
func datasetPeriod(ds types.Dataset) analytics.Period {
	var latest time.Time
	for _, tx := range ds.Transactions {
		if tx.CreatedAt.After(latest) {
			latest = tx.CreatedAt
		}
	}
	if latest.IsZero() {
		latest = time.Now()
	}
	to := latest.Add(time.Second)
	return analytics.Period{From: to.Add(-analytics.DefaultLookback), To: to}
}

func offlineService(cmd *cobra.Command, ds types.Dataset) (*analytics.Service, func(), error) {
	collector, closeCache, err := app.NewCollector(cmd.Context(), cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	svc, err := app.NewService(cfg, analytics.NewMemoryStore(ds), collector, logger)
	if err != nil {
		closeCache()
		return nil, nil, err
	}
	return svc, closeCache, nil
}

func jsonEncoder(w io.Writer) *json.Encoder {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc
}

func printJSON(v interface{}) error {
	return jsonEncoder(os.Stdout).Encode(v)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ds, err := loadDataset(inputFile)
	if err != nil {
		return err
	}
	svc, closeFn, err := offlineService(cmd, ds)
	if err != nil {
		return err
	}
	defer closeFn()

	spinner, _ := pterm.DefaultSpinner.Start("Analyzing dataset...")
	d, err := svc.Dashboard(cmd.Context(), datasetPeriod(ds))
	if err != nil {
		spinner.Fail(err.Error())
		return err
	}
	spinner.Success(fmt.Sprintf("Analyzed %d transactions", len(ds.Transactions)))

	if outputJSON {
		return printJSON(d)
	}

	pterm.DefaultSection.Println("Segments")
	segRows := pterm.TableData{{"Segment", "Clients", "Spend"}}
	for _, seg := range []types.Segment{types.SegmentVIP, types.SegmentLoyal, types.SegmentPromising, types.SegmentNew, types.SegmentAtRisk, types.SegmentLost} {
		segRows = append(segRows, []string{
			string(seg),
			fmt.Sprintf("%d", d.Summary[seg]),
			fmt.Sprintf("$%.2f", segmentation.SpendOf(d.Segments, seg)),
		})
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(segRows).Render(); err != nil {
		return err
	}

	printForecast(d.Forecast.Forecast)

	if d.Busiest != nil {
		pterm.Info.Printfln("Busiest block: %s %s ($%.2f)", d.Busiest.Weekday, d.Busiest.Block, d.Busiest.Amount)
	}

	pterm.DefaultSection.Println("Alerts")
	if len(d.Alerts) == 0 {
		pterm.Success.Println("No alerts")
	}
	for _, a := range d.Alerts {
		switch a.Severity {
		case types.SeverityCritical:
			pterm.Error.Printfln("%s: %s", a.Title, a.Message)
		case types.SeverityWarning:
			pterm.Warning.Printfln("%s: %s", a.Title, a.Message)
		default:
			pterm.Info.Printfln("%s: %s", a.Title, a.Message)
		}
	}
	return nil
}

func printForecast(points []types.ForecastPoint) {
	pterm.DefaultSection.Println("Forecast")
	rows := pterm.TableData{{"Date", "Predicted"}}
	for _, p := range points {
		rows = append(rows, []string{p.Date, fmt.Sprintf("$%.2f", p.Predicted)})
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(rows).Render(); err != nil {
		pterm.Error.Println(err.Error())
	}
}

func runForecast(cmd *cobra.Command, args []string) error {
	ds, err := loadDataset(inputFile)
	if err != nil {
		return err
	}
	svc, closeFn, err := offlineService(cmd, ds)
	if err != nil {
		return err
	}
	defer closeFn()

	res, err := svc.Forecast(cmd.Context(), datasetPeriod(ds))
	if err != nil {
		return err
	}
	if outputJSON {
		return printJSON(res)
	}
	pterm.Info.Printfln("Trend: %.2f per day", res.Slope)
	printForecast(res.Forecast)
	return nil
}

func runClassify(cmd *cobra.Command, args []string) error {
	ds, err := loadDataset(inputFile)
	if err != nil {
		return err
	}
	rules := ds.Rules
	if rulesFile != "" {
		f, err := os.Open(rulesFile)
		if err != nil {
			return fmt.Errorf("failed to open rules: %w", err)
		}
		defer f.Close()
		rules, err = classification.LoadRulesYAML(f)
		if err != nil {
			return err
		}
	}
	if err := classification.ValidateRules(rules); err != nil {
		return err
	}

	engine := classification.NewEngine(rules)
	type result struct {
		ID string `json:"id"`
		classification.Flags
	}
	results := make([]result, 0, len(ds.Transactions))
	var grooming, store int
	for _, tx := range ds.Transactions {
		flags := engine.Classify(tx.Items)
		results = append(results, result{ID: tx.ID, Flags: flags})
		if flags.IsGrooming {
			grooming++
		}
		if flags.IsStore {
			store++
		}
	}

	if outputJSON {
		return printJSON(results)
	}
	rows := pterm.TableData{{"Transaction", "Grooming", "Store"}}
	for _, r := range results {
		rows = append(rows, []string{r.ID, fmt.Sprintf("%t", r.IsGrooming), fmt.Sprintf("%t", r.IsStore)})
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(rows).Render(); err != nil {
		return err
	}
	pterm.Success.Printfln("%d transactions: %d grooming, %d store", len(results), grooming, store)
	return nil
}
