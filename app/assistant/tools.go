package assistant

import (
	"context"
	"encoding/json"
	"fmt"

	"datalens/app/analysis"
	"datalens/domain/core"
	"datalens/ports"
)

// Tool names offered to the model
const (
	toolPerformEDA    = "perform_eda"
	toolForecastData  = "forecast_data"
	toolGetColumnInfo = "get_column_info"
)

var edaParameters = json.RawMessage(`{
	"type": "object",
	"properties": {
		"type": {
			"type": "string",
			"enum": ["summary", "correlation", "distribution", "missing", "full"],
			"description": "Kind of analysis to run. Defaults to full."
		}
	}
}`)

var forecastParameters = json.RawMessage(`{
	"type": "object",
	"properties": {
		"target_column": {
			"type": "string",
			"description": "Numeric column to forecast."
		},
		"periods": {
			"type": "integer",
			"description": "Number of future points to produce. Defaults to 30."
		},
		"method": {
			"type": "string",
			"enum": ["auto", "linear", "moving_average"],
			"description": "Forecasting method. auto picks a linear trend."
		}
	},
	"required": ["target_column"]
}`)

var columnInfoParameters = json.RawMessage(`{
	"type": "object",
	"properties": {}
}`)

// Toolset bridges model tool calls to the analysis service. The dataset a
// call runs against is always passed in explicitly by the caller.
type Toolset struct {
	analysis *analysis.Service
}

// NewToolset creates the tool registry over an analysis service
func NewToolset(analysisService *analysis.Service) *Toolset {
	return &Toolset{analysis: analysisService}
}

// Definitions returns the tool schemas advertised to the model
func (t *Toolset) Definitions() []ports.ToolDefinition {
	return []ports.ToolDefinition{
		{
			Name:        toolPerformEDA,
			Description: "Perform exploratory data analysis on the dataset: summary statistics, correlations, distributions, and missing values.",
			Parameters:  edaParameters,
		},
		{
			Name:        toolForecastData,
			Description: "Forecast future values of a numeric column using a linear trend or moving average.",
			Parameters:  forecastParameters,
		},
		{
			Name:        toolGetColumnInfo,
			Description: "Get names, types, null counts, and sample values for every column in the dataset.",
			Parameters:  columnInfoParameters,
		},
	}
}

// Run executes one tool call against the given dataset and returns the
// result as raw JSON ready to feed back to the model.
func (t *Toolset) Run(ctx context.Context, datasetID string, call ports.ToolCallRequest) (json.RawMessage, error) {
	switch call.Name {
	case toolPerformEDA:
		return t.runEDA(ctx, datasetID, call.Arguments)
	case toolForecastData:
		return t.runForecast(ctx, datasetID, call.Arguments)
	case toolGetColumnInfo:
		result, err := t.analysis.ColumnInfo(ctx, datasetID)
		if err != nil {
			return nil, err
		}
		return json.Marshal(result)
	default:
		return nil, fmt.Errorf("%w: unknown tool %q", core.ErrInvalidInput, call.Name)
	}
}

type edaArgs struct {
	Type string `json:"type"`
}

func (t *Toolset) runEDA(ctx context.Context, datasetID string, raw json.RawMessage) (json.RawMessage, error) {
	var args edaArgs
	if err := unmarshalArgs(raw, &args); err != nil {
		return nil, err
	}
	edaType, err := analysis.ParseEDAType(args.Type)
	if err != nil {
		return nil, err
	}
	result, err := t.analysis.EDA(ctx, datasetID, edaType)
	if err != nil {
		return nil, err
	}
	return json.Marshal(result)
}

// forecastArgs uses float64 for periods because some providers send integer
// arguments as JSON floats.
type forecastArgs struct {
	TargetColumn string  `json:"target_column"`
	Periods      float64 `json:"periods"`
	Method       string  `json:"method"`
}

func (t *Toolset) runForecast(ctx context.Context, datasetID string, raw json.RawMessage) (json.RawMessage, error) {
	var args forecastArgs
	if err := unmarshalArgs(raw, &args); err != nil {
		return nil, err
	}
	if args.TargetColumn == "" {
		return nil, core.NewValidationError("target_column", "target_column is required")
	}
	result, err := t.analysis.Forecast(ctx, datasetID, args.TargetColumn, int(args.Periods), analysis.ForecastMethod(args.Method))
	if err != nil {
		return nil, err
	}
	return json.Marshal(result)
}

// unmarshalArgs decodes tool arguments, treating absent arguments as empty
func unmarshalArgs(raw json.RawMessage, v interface{}) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return core.NewValidationError("arguments", fmt.Sprintf("malformed tool arguments: %v", err))
	}
	return nil
}
