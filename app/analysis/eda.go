package analysis

import (
	"context"
	"fmt"
	"strconv"

	"datalens/adapters/tabular"
	"datalens/domain/core"

	"github.com/montanaflynn/stats"
	"golang.org/x/sync/errgroup"
)

// EDAType selects which slice of the exploratory analysis to compute
type EDAType string

const (
	EDASummary      EDAType = "summary"
	EDACorrelation  EDAType = "correlation"
	EDADistribution EDAType = "distribution"
	EDAMissing      EDAType = "missing"
	EDAFull         EDAType = "full"
)

// ParseEDAType resolves a query value; empty selects the full analysis
func ParseEDAType(s string) (EDAType, error) {
	switch EDAType(s) {
	case "", EDAFull:
		return EDAFull, nil
	case EDASummary:
		return EDASummary, nil
	case EDACorrelation:
		return EDACorrelation, nil
	case EDADistribution:
		return EDADistribution, nil
	case EDAMissing:
		return EDAMissing, nil
	}
	return "", core.NewValidationError("type", fmt.Sprintf("unknown analysis type %q", s))
}

// Histogram distributions cover at most this many numeric columns
const maxDistributionColumns = 5

// DatasetInfo is the shape header included in every EDA result
type DatasetInfo struct {
	Rows        int      `json:"rows"`
	Columns     int      `json:"columns"`
	ColumnNames []string `json:"column_names"`
}

// ColumnSummary holds describe-style statistics for one numeric column
type ColumnSummary struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Q25    float64 `json:"q25"`
	Q75    float64 `json:"q75"`
}

// Histogram is an equal-width binned distribution. Edges has one more entry
// than Counts.
type Histogram struct {
	Edges  []float64 `json:"edges"`
	Counts []int     `json:"counts"`
}

// EDAResult carries the slices of analysis selected by the type
type EDAResult struct {
	Type          EDAType                  `json:"analysis_type"`
	DatasetInfo   DatasetInfo              `json:"dataset_info"`
	Statistics    map[string]ColumnSummary `json:"statistics,omitempty"`
	MissingValues map[string]int           `json:"missing_values,omitempty"`
	Correlation   *CorrelationMatrix       `json:"correlation,omitempty"`
	Distributions map[string]Histogram     `json:"distributions,omitempty"`
}

// EDA computes the requested exploratory analysis over a stored dataset
func (s *Service) EDA(ctx context.Context, datasetID string, edaType EDAType) (*EDAResult, error) {
	_, tbl, err := s.loadReady(ctx, datasetID)
	if err != nil {
		return nil, err
	}

	result := &EDAResult{
		Type: edaType,
		DatasetInfo: DatasetInfo{
			Rows:        tbl.RowCount(),
			Columns:     tbl.ColumnCount(),
			ColumnNames: tbl.Headers,
		},
	}
	numeric := numericColumns(tbl)

	switch edaType {
	case EDASummary:
		result.Statistics, err = columnStatistics(ctx, tbl, numeric)
	case EDAMissing:
		result.MissingValues = missingValues(tbl)
	case EDACorrelation:
		result.Correlation, err = correlationMatrix(tbl, numeric)
	case EDADistribution:
		result.Distributions = distributions(tbl, numeric)
	case EDAFull:
		result.Statistics, err = columnStatistics(ctx, tbl, numeric)
		if err == nil {
			result.MissingValues = missingValues(tbl)
			result.Distributions = distributions(tbl, numeric)
			// Correlation needs two numeric columns; skip quietly otherwise
			if len(numeric) >= 2 {
				result.Correlation, err = correlationMatrix(tbl, numeric)
			}
		}
	default:
		return nil, core.NewValidationError("type", fmt.Sprintf("unknown analysis type %q", edaType))
	}
	if err != nil {
		return nil, err
	}

	s.logger.Debug("EDA %s computed for dataset %s (%d numeric columns)", edaType, datasetID, len(numeric))
	return result, nil
}

// numericColumns returns headers whose every non-empty cell parses as a
// number, matching how a dataframe would type them. Columns with no values
// at all are excluded.
func numericColumns(tbl *tabular.Table) []string {
	var out []string
	for _, header := range tbl.Headers {
		nonEmpty := 0
		allNumeric := true
		for _, row := range tbl.Rows {
			cell := row[header]
			if cell == "" {
				continue
			}
			nonEmpty++
			if _, err := strconv.ParseFloat(cell, 64); err != nil {
				allNumeric = false
				break
			}
		}
		if nonEmpty > 0 && allNumeric {
			out = append(out, header)
		}
	}
	return out
}

// columnStatistics summarizes every numeric column, one goroutine per column
func columnStatistics(ctx context.Context, tbl *tabular.Table, numeric []string) (map[string]ColumnSummary, error) {
	summaries := make([]ColumnSummary, len(numeric))
	valid := make([]bool, len(numeric))

	g, ctx := errgroup.WithContext(ctx)
	for i, name := range numeric {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			values := tbl.NumericColumn(name)
			if len(values) == 0 {
				return nil
			}
			summary, err := summarize(values)
			if err != nil {
				return nil
			}
			summaries[i] = summary
			valid[i] = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]ColumnSummary, len(numeric))
	for i, name := range numeric {
		if valid[i] {
			out[name] = summaries[i]
		}
	}
	return out, nil
}

// summarize computes the describe statistics for one value slice
func summarize(values []float64) (ColumnSummary, error) {
	mean, err := stats.Mean(values)
	if err != nil {
		return ColumnSummary{}, err
	}
	median, err := stats.Median(values)
	if err != nil {
		return ColumnSummary{}, err
	}
	stdDev, err := stats.StandardDeviation(values)
	if err != nil {
		return ColumnSummary{}, err
	}
	min, err := stats.Min(values)
	if err != nil {
		return ColumnSummary{}, err
	}
	max, err := stats.Max(values)
	if err != nil {
		return ColumnSummary{}, err
	}
	q25, err := stats.Percentile(values, 25)
	if err != nil {
		return ColumnSummary{}, err
	}
	q75, err := stats.Percentile(values, 75)
	if err != nil {
		return ColumnSummary{}, err
	}

	return ColumnSummary{
		Count:  len(values),
		Mean:   mean,
		Median: median,
		StdDev: stdDev,
		Min:    min,
		Max:    max,
		Q25:    q25,
		Q75:    q75,
	}, nil
}

// missingValues counts empty cells per column, reporting only columns that
// have at least one missing value
func missingValues(tbl *tabular.Table) map[string]int {
	out := make(map[string]int)
	for _, header := range tbl.Headers {
		missing := 0
		for _, row := range tbl.Rows {
			if cell, exists := row[header]; !exists || cell == "" {
				missing++
			}
		}
		if missing > 0 {
			out[header] = missing
		}
	}
	return out
}

// distributions builds equal-width histograms for the first few numeric columns
func distributions(tbl *tabular.Table, numeric []string) map[string]Histogram {
	out := make(map[string]Histogram)
	for i, name := range numeric {
		if i >= maxDistributionColumns {
			break
		}
		values := tbl.NumericColumn(name)
		if len(values) == 0 {
			continue
		}
		out[name] = histogram(values, 10)
	}
	return out
}

// histogram bins values into equal-width buckets over [min, max]
func histogram(values []float64, bins int) Histogram {
	min, max := values[0], values[0]
	for _, v := range values {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	if min == max {
		return Histogram{Edges: []float64{min, max}, Counts: []int{len(values)}}
	}

	width := (max - min) / float64(bins)
	edges := make([]float64, bins+1)
	for i := range edges {
		edges[i] = min + float64(i)*width
	}
	edges[bins] = max

	counts := make([]int, bins)
	for _, v := range values {
		idx := int((v - min) / width)
		if idx >= bins {
			idx = bins - 1
		}
		counts[idx]++
	}

	return Histogram{Edges: edges, Counts: counts}
}
