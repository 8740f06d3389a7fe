package cmd

import (
	"context"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"cloudcost/core/analysis"
	"cloudcost/core/catalog"
	"cloudcost/core/collect"
	"cloudcost/core/engine"
	"cloudcost/core/output"
	"cloudcost/core/rightsizing"
	"cloudcost/core/types"
	"cloudcost/core/ui"
	"cloudcost/internal/config"
	"cloudcost/internal/errors"
	"cloudcost/internal/logging"
)

var (
	analyzeFormat     string
	analyzeSnapshot   string
	analyzeGroupBy    string
	analyzeMinSavings float64
	analyzeMax        int
	analyzeDays       int
	analyzeNoDetails  bool
	analyzeNoColor    bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze cloud costs and produce recommendations",
	Long: `Analyze collects billing and resource data for the configured
project, runs cost trend, anomaly, forecast, and rightsizing analysis,
and prints a prioritized list of optimization recommendations.`,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeFormat, "format", "f", "", "output format (cli, json)")
	analyzeCmd.Flags().StringVar(&analyzeSnapshot, "snapshot", "", "analyze a snapshot file instead of the configured source")
	analyzeCmd.Flags().StringVar(&analyzeGroupBy, "group-by", "service", "cost grouping dimension (service, project, resource)")
	analyzeCmd.Flags().Float64Var(&analyzeMinSavings, "min-savings", -1, "hide recommendations below this monthly amount")
	analyzeCmd.Flags().IntVar(&analyzeMax, "max", 0, "limit the number of recommendations (0 = no limit)")
	analyzeCmd.Flags().IntVar(&analyzeDays, "days", 0, "billing lookback window in days")
	analyzeCmd.Flags().BoolVar(&analyzeNoDetails, "no-details", false, "hide per-recommendation detail")
	analyzeCmd.Flags().BoolVar(&analyzeNoColor, "no-color", false, "disable colored output")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	start := time.Now()
	cfg := config.Get()
	log := logging.Named("analyze")

	if analyzeSnapshot != "" {
		cfg.Collector.Source = "file"
		cfg.Collector.SnapshotPath = analyzeSnapshot
	}
	if analyzeDays > 0 {
		cfg.Collector.LookbackDays = analyzeDays
	}
	if analyzeMax > 0 {
		cfg.Analysis.MaxRecommendations = analyzeMax
	}
	if analyzeMinSavings >= 0 {
		cfg.Analysis.MinSavings = analyzeMinSavings
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	groupBy, err := parseGroupBy(analyzeGroupBy)
	if err != nil {
		return err
	}

	format := output.Format(analyzeFormat)
	if analyzeFormat == "" {
		format = output.Format(cfg.Output.DefaultFormat)
	}
	if format != output.FormatCLI && format != output.FormatJSON {
		return errors.Newf(errors.TypeInput, "unknown output format: %s", format)
	}

	cat, costs, err := loadCatalogs(cfg)
	if err != nil {
		return err
	}

	collector, err := buildCollector(cfg)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	end := time.Now().UTC()
	windowStart := end.AddDate(0, 0, -cfg.Collector.LookbackDays)

	log.Sugar().Infow("collecting data",
		"source", cfg.Collector.Source,
		"lookback_days", cfg.Collector.LookbackDays)

	records, resources, instances := collectAll(ctx, collector, windowStart, end, log.Sugar())

	log.Sugar().Infow("collected data",
		"billing_records", len(records),
		"resources", len(resources),
		"instances", len(instances))

	report := buildReport(cfg, cat, costs, groupBy, records, resources, instances, windowStart, end)
	report.Metadata = output.Metadata{
		GeneratedAt: time.Now().UTC(),
		Duration:    time.Since(start).Round(time.Millisecond).String(),
		Version:     version,
	}

	if format == output.FormatJSON {
		return report.RenderJSON(os.Stdout)
	}
	w := ui.NewWriter(os.Stdout, analyzeNoColor || cfg.Output.NoColor)
	w.RenderReport(report, cfg.Output.ShowDetails && !analyzeNoDetails)
	return nil
}

// collectAll gathers the three data scopes. A scope that fails to
// collect is logged and reported empty; the remaining scopes still feed
// the analysis, so a partial report beats no report.
func collectAll(
	ctx context.Context,
	collector collect.Collector,
	start, end time.Time,
	log *zap.SugaredLogger,
) ([]types.BillingRecord, []types.ResourceRecord, []types.Instance) {
	records, err := collector.BillingRecords(ctx, start, end)
	if err != nil {
		log.Warnw("failed to collect billing records", "error", err)
		records = nil
	}
	resources, err := collector.Resources(ctx)
	if err != nil {
		log.Warnw("failed to collect resources", "error", err)
		resources = nil
	}
	instances, err := collector.Instances(ctx)
	if err != nil {
		log.Warnw("failed to collect instances", "error", err)
		instances = nil
	}
	return records, resources, instances
}

// buildReport runs every analysis stage over the collected data.
func buildReport(
	cfg *config.Config,
	cat *catalog.Catalog,
	costs *catalog.CostTable,
	groupBy types.GroupBy,
	records []types.BillingRecord,
	resources []types.ResourceRecord,
	instances []types.Instance,
	windowStart, end time.Time,
) *output.Report {
	report := &output.Report{ProjectID: cfg.Project.ProjectID}

	report.Trends = analysis.AnalyzeCostTrends(records, groupBy)
	report.Anomalies = analysis.IdentifyAnomalies(records, cfg.Analysis.AnomalyThresholdPct)
	report.Forecast = analysis.GenerateBudgetForecast(records, cfg.Analysis.ForecastDays)

	current, previous := splitWindow(records, windowStart, end)
	if len(current) > 0 || len(previous) > 0 {
		cmp := analysis.ComparePeriods(current, previous)
		report.Comparison = &cmp
	}

	idle := collect.IdleInstances(instances)
	report.Efficiency = analysis.CalculateResourceEfficiency(resources, idle)

	var source rightsizing.UtilizationSource
	if cfg.Analysis.SimulateMetrics {
		source = rightsizing.NewSimulatedSource()
	}
	sizer := rightsizing.New(cat, source)
	report.Rightsizing = sizer.AnalyzeInstances(instances)

	eng := engine.New(costs)
	eng.AddIdleInstances(idle)
	eng.AddRightsizing(report.Rightsizing)
	eng.AddUnusedResources(collect.UnusedResources(resources))
	eng.AddCostAnomalies(report.Anomalies)

	minSavings := decimal.NewFromFloat(cfg.Analysis.MinSavings)
	report.Recommendations = eng.Prioritized(cfg.Analysis.MaxRecommendations, minSavings)
	report.Summary = eng.Summarize()

	return report
}

// splitWindow divides billing records into the first and second half of
// the collection window, newest half first, for period comparison.
func splitWindow(records []types.BillingRecord, start, end time.Time) (current, previous []types.BillingRecord) {
	mid := start.Add(end.Sub(start) / 2).Format("2006-01-02")
	for _, r := range records {
		day, ok := r.Day()
		if !ok {
			current = append(current, r)
			continue
		}
		if day >= mid {
			current = append(current, r)
		} else {
			previous = append(previous, r)
		}
	}
	return current, previous
}

func loadCatalogs(cfg *config.Config) (*catalog.Catalog, *catalog.CostTable, error) {
	cat := catalog.Default()
	if cfg.Catalog.MachineTypesPath != "" {
		loaded, err := catalog.LoadFile(cfg.Catalog.MachineTypesPath)
		if err != nil {
			return nil, nil, err
		}
		cat = loaded
	}

	costs := catalog.DefaultCostTable()
	if cfg.Catalog.CostTablePath != "" {
		loaded, err := catalog.LoadCostTable(cfg.Catalog.CostTablePath)
		if err != nil {
			return nil, nil, err
		}
		costs = loaded
	}
	return cat, costs, nil
}

func buildCollector(cfg *config.Config) (collect.Collector, error) {
	switch cfg.Collector.Source {
	case "file":
		return collect.NewFileCollector(cfg.Collector.SnapshotPath), nil
	case "gcp":
		return collect.NewGCPCollector(cfg.Project.ProjectID, cfg.Project.ServiceAccountPath)
	default:
		return nil, errors.Newf(errors.TypeConfig, "unknown collector source: %s", cfg.Collector.Source)
	}
}

func parseGroupBy(s string) (types.GroupBy, error) {
	switch types.GroupBy(s) {
	case types.GroupByService, types.GroupByProject, types.GroupByResource:
		return types.GroupBy(s), nil
	}
	return "", errors.Newf(errors.TypeInput, "unknown group-by dimension: %s", s)
}
