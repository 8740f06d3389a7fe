// Package types - recommendation and anomaly types
package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Kind identifies the category of a recommendation
type Kind string

const (
	KindIdleInstance   Kind = "idle_instance"
	KindRightsizing    Kind = "rightsizing"
	KindUnusedResource Kind = "unused_resource"
	KindCostAnomaly    Kind = "cost_anomaly"
)

// Priority is an ordinal urgency rank; lower value = higher urgency
type Priority int

const (
	PriorityCritical Priority = 1
	PriorityHigh     Priority = 2
	PriorityMedium   Priority = 3
	PriorityLow      Priority = 4
)

// String returns the human-readable priority label
func (p Priority) String() string {
	switch p {
	case PriorityCritical:
		return "CRITICAL"
	case PriorityHigh:
		return "HIGH"
	case PriorityMedium:
		return "MEDIUM"
	case PriorityLow:
		return "LOW"
	}
	return "UNKNOWN"
}

// Priorities lists all priority levels in ordinal order
var Priorities = []Priority{PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow}

// Confidence qualifies how much trust to place in an estimate
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// RiskLevel qualifies the operational risk of applying a recommendation
type RiskLevel string

const (
	RiskNone   RiskLevel = "none"
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Effort qualifies the implementation effort of a recommendation
type Effort string

const (
	EffortEasy          Effort = "easy"
	EffortModerate      Effort = "moderate"
	EffortInvestigation Effort = "investigation_required"
)

// Recommendation is a single prioritized cost-optimization action.
// Rank and PriorityLabel are assigned by the final ranking pass and the
// recommendation is not mutated afterward.
type Recommendation struct {
	// ID uniquely identifies this recommendation
	ID string `json:"id"`

	// Kind is the recommendation category
	Kind Kind `json:"kind"`

	// ResourceType describes the affected resource class
	ResourceType string `json:"resource_type"`

	// ResourceName is the affected resource name
	ResourceName string `json:"resource_name,omitempty"`

	// ResourceID is the provider-assigned resource ID
	ResourceID string `json:"resource_id,omitempty"`

	// Status is an optional lifecycle state (idle instances)
	Status string `json:"status,omitempty"`

	// CurrentType and RecommendedType carry machine types for rightsizing
	CurrentType     string `json:"current_type,omitempty"`
	RecommendedType string `json:"recommended_type,omitempty"`

	// Date carries the anomalous day for cost anomalies
	Date string `json:"date,omitempty"`

	// Reason is the human-readable finding
	Reason string `json:"reason"`

	// Action is the suggested remediation
	Action string `json:"action"`

	// EstimatedMonthlySavings is the projected monthly saving, >= 0
	EstimatedMonthlySavings decimal.Decimal `json:"estimated_monthly_savings"`

	// EstimatedMonthlyIncrease is the projected monthly increase for
	// upsize recommendations, >= 0
	EstimatedMonthlyIncrease decimal.Decimal `json:"estimated_monthly_increase"`

	// Priority is the urgency ordinal
	Priority Priority `json:"priority"`

	// PriorityLabel is the human-readable priority, set by ranking
	PriorityLabel string `json:"priority_label,omitempty"`

	// Rank is the 1-based position after prioritization, 0 before
	Rank int `json:"rank,omitempty"`

	// Confidence qualifies the estimate
	Confidence Confidence `json:"confidence"`

	// Risk qualifies the operational risk of acting
	Risk RiskLevel `json:"risk_level"`

	// Effort qualifies the implementation effort
	Effort Effort `json:"implementation_effort"`

	// Automatable reports whether the action can be automated
	Automatable bool `json:"automation_possible"`

	// Utilization carries the metrics behind a rightsizing finding
	Utilization *UtilizationMetrics `json:"utilization_metrics,omitempty"`

	// AnomalyDetails carries the figures behind a cost anomaly finding
	AnomalyDetails *AnomalyDetails `json:"anomaly_details,omitempty"`

	// CreatedAt is when the recommendation was produced
	CreatedAt time.Time `json:"created_at"`
}

// AnomalyDetails captures the numbers behind a cost anomaly recommendation
type AnomalyDetails struct {
	// ActualCost is the day's observed cost
	ActualCost decimal.Decimal `json:"actual_cost"`

	// ExpectedCost is the historical average
	ExpectedCost decimal.Decimal `json:"expected_cost"`

	// DeviationPct is the deviation from the average, in percent
	DeviationPct float64 `json:"deviation_percentage"`
}

// Severity grades how far an anomaly deviates from the average
type Severity string

const (
	// SeverityHigh marks deviations beyond 50%
	SeverityHigh Severity = "high"

	// SeverityMedium marks deviations beyond the configured threshold
	SeverityMedium Severity = "medium"
)

// Anomaly is a day whose cost deviates from the historical average
// beyond the detection threshold. Derived and transient.
type Anomaly struct {
	// Date is the anomalous calendar date (YYYY-MM-DD)
	Date string `json:"date"`

	// Cost is the day's total cost
	Cost decimal.Decimal `json:"cost"`

	// AverageCost is the mean daily cost across the analyzed window
	AverageCost decimal.Decimal `json:"average_cost"`

	// DeviationPct is the deviation from the average, in percent
	DeviationPct float64 `json:"deviation_percentage"`

	// Severity grades the deviation
	Severity Severity `json:"severity"`
}
