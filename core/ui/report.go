// Package ui - terminal report rendering
package ui

import (
	"fmt"

	"github.com/shopspring/decimal"

	"cloudcost/core/analysis"
	"cloudcost/core/output"
	"cloudcost/core/types"
)

func money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

// RenderReport prints a full analysis report to the terminal.
func (w *Writer) RenderReport(r *output.Report, showDetails bool) {
	w.Header("Cloud Cost Optimizer")
	if r.ProjectID != "" {
		w.Text(w.color(Dim, "Project: "+r.ProjectID))
	}

	w.renderTrends(&r.Trends)
	if r.Comparison != nil {
		w.renderComparison(r.Comparison)
	}
	w.renderAnomalies(r.Anomalies)
	w.renderForecast(&r.Forecast)
	w.renderEfficiency(&r.Efficiency)
	w.renderRecommendations(r.Recommendations, showDetails)
	w.renderSummary(r)
}

func (w *Writer) renderTrends(t *analysis.TrendAnalysis) {
	w.Header("Cost Breakdown")
	if t.Status != analysis.StatusSuccess {
		w.Warning("%s", t.Message)
		return
	}

	table := w.NewTable("NAME", "COST", "SHARE")
	for _, entry := range t.Breakdown {
		table.AddRow(entry.Name, money(entry.Cost), fmt.Sprintf("%.2f%%", entry.Percentage))
	}
	table.Render()

	w.Println("")
	w.Println("Total cost: %s", w.color(Bold, money(t.TotalCost)))
	if t.TopCostDriver != "" {
		w.Println("Top cost driver: %s", t.TopCostDriver)
	}
}

func (w *Writer) renderComparison(c *analysis.PeriodComparison) {
	w.Header("Period Comparison")
	w.Println("Current period:  %s", money(c.CurrentPeriodCost))
	w.Println("Previous period: %s", money(c.PreviousPeriodCost))

	arrow := w.color(Green, "▼")
	if c.Trend == analysis.TrendIncreasing {
		arrow = w.color(Red, "▲")
	}
	w.Println("Change: %s %s (%.2f%%)", arrow, money(c.AbsoluteChange), c.PercentageChange)
}

func (w *Writer) renderAnomalies(anomalies []types.Anomaly) {
	w.Header("Cost Anomalies")
	if len(anomalies) == 0 {
		w.Success("No cost anomalies detected")
		return
	}

	table := w.NewTable("DATE", "COST", "AVERAGE", "DEVIATION", "SEVERITY")
	for _, a := range anomalies {
		severity := string(a.Severity)
		if a.Severity == types.SeverityHigh {
			severity = w.color(Red, severity)
		} else {
			severity = w.color(Yellow, severity)
		}
		table.AddRow(a.Date, money(a.Cost), money(a.AverageCost),
			fmt.Sprintf("%+.1f%%", a.DeviationPct), severity)
	}
	table.Render()
}

func (w *Writer) renderForecast(f *analysis.BudgetForecast) {
	w.Header("Budget Forecast")
	if f.Status != analysis.StatusSuccess {
		w.Warning("%s", f.Message)
		return
	}
	w.Println("Daily average:   %s", money(f.DailyAverage))
	w.Println("Next %d days:    %s", f.ForecastDays, w.color(Bold, money(f.ForecastedTotal)))
	w.Text(w.color(Dim, fmt.Sprintf("Method: %s (confidence: %s)", f.Method, f.Confidence)))
}

func (w *Writer) renderEfficiency(e *analysis.ResourceEfficiency) {
	w.Header("Resource Efficiency")
	w.Println("Total resources:  %d", e.TotalResources)
	w.Println("Active resources: %d", e.ActiveResources)
	w.Println("Idle resources:   %d", e.IdleResources)
	w.Println("Utilization rate: %.2f%%", e.UtilizationRate)

	gradeColor := Green
	if e.Grade == "D" || e.Grade == "F" {
		gradeColor = Red
	} else if e.Grade == "C" {
		gradeColor = Yellow
	}
	w.Println("Efficiency grade: %s", w.color(Bold+gradeColor, string(e.Grade)))
}

func (w *Writer) renderRecommendations(recs []*types.Recommendation, showDetails bool) {
	w.Header("Recommendations")
	if len(recs) == 0 {
		w.Success("No optimization opportunities found")
		return
	}

	table := w.NewTable("#", "PRIORITY", "TYPE", "RESOURCE", "MONTHLY SAVINGS")
	for _, rec := range recs {
		name := rec.ResourceName
		if name == "" {
			name = rec.Date
		}
		table.AddRow(
			fmt.Sprintf("%d", rec.Rank),
			w.priorityLabel(rec.Priority),
			string(rec.Kind),
			name,
			money(rec.EstimatedMonthlySavings),
		)
	}
	table.Render()

	if !showDetails {
		return
	}

	w.Println("")
	for _, rec := range recs {
		w.SubHeader(fmt.Sprintf("%d. %s", rec.Rank, rec.Reason))
		w.Println("   Action: %s", rec.Action)
		if rec.EstimatedMonthlyIncrease.IsPositive() {
			w.Println("   Monthly increase: %s", money(rec.EstimatedMonthlyIncrease))
		}
		w.Text(w.color(Dim, fmt.Sprintf("   confidence: %s · risk: %s · effort: %s",
			rec.Confidence, rec.Risk, rec.Effort)))
	}
}

func (w *Writer) priorityLabel(p types.Priority) string {
	label := p.String()
	switch p {
	case types.PriorityCritical:
		return w.color(Bold+Red, label)
	case types.PriorityHigh:
		return w.color(Red, label)
	case types.PriorityMedium:
		return w.color(Yellow, label)
	}
	return w.color(Dim, label)
}

func (w *Writer) renderSummary(r *output.Report) {
	s := r.Summary
	w.Header("Savings Summary")

	w.Text(w.color(Bold, "╭─────────────────────────────────────────╮"))
	w.Text(w.color(Bold, "│")+w.color(Green, fmt.Sprintf("  Monthly savings: %-21s", money(s.TotalMonthlySavings)))+w.color(Bold, "│"))
	w.Text(w.color(Bold, "│")+w.color(Dim, fmt.Sprintf("  Annual savings:  %-21s", money(s.TotalAnnualSavings)))+w.color(Bold, "│"))
	w.Text(w.color(Bold, "╰─────────────────────────────────────────╯"))
	w.Println("")

	if s.TotalMonthlyIncreases.IsPositive() {
		w.Println("Monthly increases (upsizing): %s", money(s.TotalMonthlyIncreases))
		w.Println("Net monthly impact: %s", w.color(Bold, money(s.NetMonthlyImpact)))
	}

	w.Println("Recommendations: %d (%.1f%% automatable)", s.TotalRecommendations, s.AutomationPct)
	for _, p := range types.Priorities {
		if count, ok := s.ByPriority[p.String()]; ok {
			w.Println("  %s: %d", w.priorityLabel(p), count)
		}
	}

	w.Println("")
	w.Text(w.color(Dim, "Generated in "+r.Metadata.Duration))
}
