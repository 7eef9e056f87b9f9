package operations

import (
	"time"
)

// Pipeline step identifiers
const (
	StepIDLoad      = "load"
	StepIDClean     = "clean"
	StepIDPlot      = "plot"
	StepIDMerge     = "merge"
	StepIDCorrelate = "correlate"
	StepIDSummarize = "summarize"
	StepIDExport    = "export"
)

// Pipeline step names
const (
	StepNameLoad      = "Load Datasets"
	StepNameClean     = "Clean Datasets"
	StepNamePlot      = "Plot Time Series"
	StepNameMerge     = "Merge Indicators"
	StepNameCorrelate = "Correlate Indicators"
	StepNameSummarize = "Summarize Indicators"
	StepNameExport    = "Export Reports"
)

// Context keys for operation state
const (
	ContextKeyTables      = "tables"      // map[string]*dataprocessing.Table
	ContextKeySources     = "sources"     // map[string]string, indicator key to file path
	ContextKeyIndicators  = "indicators"  // map[string]*dataprocessing.Indicator
	ContextKeyCleanStats  = "clean_stats" // map[string]dataprocessing.CleanStats
	ContextKeyCharts      = "charts"      // []string
	ContextKeyMerged      = "merged"      // *dataprocessing.Merged
	ContextKeyCorrelation = "correlation" // *dataprocessing.CorrelationMatrix
	ContextKeySummaries   = "summaries"   // []*dataprocessing.Summary
	ContextKeyReports     = "reports"     // []string
)

// Default timeouts
const (
	DefaultStageTimeout = 10 * time.Minute
)

// OperationRequest represents a request to execute a operation
type OperationRequest struct {
	ID         string                 `json:"id"`
	Parameters map[string]interface{} `json:"parameters,omitempty"`
}

// OperationResponse represents the response from a operation execution
type OperationResponse struct {
	ID       string                `json:"id"`
	Status   OperationStatusValue  `json:"status"`
	Duration time.Duration         `json:"duration"`
	Steps    map[string]*StepState `json:"steps"`
	Error    string                `json:"error,omitempty"`

	// State gives access to the values the steps produced
	State *OperationState `json:"-"`
}
