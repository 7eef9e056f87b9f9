package config

// Application constants
const (
	AppName    = "energyreport"
	AppVersion = "1.0.0"

	// DefaultSkipRows is the number of preamble lines above the header row
	// in a World Bank indicator download.
	DefaultSkipRows = 4

	// Well-known column names of an indicator table.
	ColumnCountryName   = "Country Name"
	ColumnCountryCode   = "Country Code"
	ColumnIndicatorName = "Indicator Name"
	ColumnIndicatorCode = "Indicator Code"

	// UnnamedColumnPrefix labels header cells that were left empty.
	UnnamedColumnPrefix = "Unnamed: "

	// Report file names inside the output directory.
	ChartsDirName         = "charts"
	ReportsDirName        = "reports"
	HeatmapBaseName       = "correlation_heatmap"
	CorrelationCSVName    = "correlation_matrix.csv"
	CombinedCSVName       = "combined_indicators.csv"
	WorkbookName          = "energy_report.xlsx"
	CorrelationSheetName  = "Correlation"
	HeatmapTitle          = "Correlation Between these Indicators By Heatmap"
	TimeSeriesXLabel      = "Year"
	TimeSeriesLegendTitle = "Country"
)

// Indicator describes one of the analysed datasets: where it is read from
// and how it is labelled in charts, tables and merged column names.
type Indicator struct {
	Key          string // suffix used for merged columns, e.g. "access"
	Code         string // World Bank indicator code
	FileName     string // CSV file name inside the data directory
	ChartTitle   string
	YLabel       string
	SummaryTitle string
}

// Indicators lists the datasets in pipeline order. Merge order, the column
// order of the correlation matrix and the order of the printed summaries
// all follow this slice.
var Indicators = []Indicator{
	{
		Key:          "access",
		Code:         "EG.ELC.ACCS.ZS",
		FileName:     "Access to Electricity (% of Population).csv",
		ChartTitle:   "Access to Electricity (% of Population) Over Time",
		YLabel:       "Access to Electricity (%)",
		SummaryTitle: "Access to Electricity (% of Population)",
	},
	{
		Key:          "co2",
		Code:         "EN.ATM.CO2E.PC",
		FileName:     "CO2 Emissions (Metric Tons per Capita).csv",
		ChartTitle:   "CO2 Emissions (Metric Tons per Capita) Over Time",
		YLabel:       "CO2 Emissions (Metric Tons per Capita)",
		SummaryTitle: "CO2 Emissions (Metric Tons per Capita)",
	},
	{
		Key:          "electric",
		Code:         "EG.USE.ELEC.KH.PC",
		FileName:     "Electric Power Consumption (kWh per Capita).csv",
		ChartTitle:   "Electric Power Consumption (kWh per Capita) Over Time",
		YLabel:       "Electric Power Consumption (kWh per Capita)",
		SummaryTitle: "Electric Power Consumption (kWh per Capita)",
	},
	{
		Key:          "energy",
		Code:         "EG.USE.PCAP.KG.OE",
		FileName:     "Total Energy Use (kg of Oil Equivalent per Capita).csv",
		ChartTitle:   "Total Energy Use (kg of Oil Equivalent per Capita) Over Time",
		YLabel:       "Total Energy Use (kg of Oil Equivalent per Capita)",
		SummaryTitle: "Total Energy Use (kg of Oil Equivalent per Capita)",
	},
}

// IndicatorByKey looks up an indicator by its merge suffix.
func IndicatorByKey(key string) (Indicator, bool) {
	for _, ind := range Indicators {
		if ind.Key == key {
			return ind, true
		}
	}
	return Indicator{}, false
}
