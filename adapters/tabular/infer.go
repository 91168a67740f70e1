package tabular

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Column type labels produced by schema inference
const (
	TypeNumeric     = "numeric"
	TypeCategorical = "categorical"
	TypeBoolean     = "boolean"
	TypeDatetime    = "datetime"
	TypeText        = "text"
)

// Ratio of parseable values a column needs before it is assigned a type
const (
	numericThreshold  = 0.8
	booleanThreshold  = 0.9
	datetimeThreshold = 0.8
)

// Sample size cap for inference on large tables
const maxSampleSize = 500

var datetimeFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
	"2006/01/02",
	"02-Jan-2006",
}

// InferColumnTypes analyzes sampled values to infer a type for each column
func InferColumnTypes(t *Table) map[string]string {
	columnTypes := make(map[string]string)
	sampleIndices := stratifiedSample(len(t.Rows), maxSampleSize)

	for _, header := range t.Headers {
		columnTypes[header] = inferColumn(t, header, sampleIndices)
	}

	return columnTypes
}

// inferColumn classifies one column from its sampled values
func inferColumn(t *Table, header string, sampleIndices []int) string {
	uniqueValues := make(map[string]bool)
	numericCount := 0
	booleanCount := 0
	datetimeCount := 0
	validCount := 0

	for _, idx := range sampleIndices {
		value, exists := t.Rows[idx][header]
		if !exists || value == "" {
			continue
		}
		validCount++
		uniqueValues[value] = true

		if isNumeric(value) {
			numericCount++
		}
		if isBoolean(value) {
			booleanCount++
		}
		if isDatetime(value) {
			datetimeCount++
		}
	}

	if validCount == 0 {
		return TypeText
	}

	uniqueRatio := float64(len(uniqueValues)) / float64(validCount)
	lowCardinality := uniqueRatio < 0.1 && len(uniqueValues) <= 20

	// Boolean is checked before numeric so 0/1 columns are not swallowed
	if float64(booleanCount)/float64(validCount) >= booleanThreshold {
		return TypeBoolean
	}
	if float64(numericCount)/float64(validCount) >= numericThreshold {
		if lowCardinality {
			return TypeCategorical
		}
		return TypeNumeric
	}
	if float64(datetimeCount)/float64(validCount) >= datetimeThreshold {
		return TypeDatetime
	}
	if lowCardinality {
		return TypeCategorical
	}
	return TypeText
}

func isNumeric(value string) bool {
	val, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return false
	}
	return !math.IsInf(val, 0) && !math.IsNaN(val)
}

func isBoolean(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "1", "yes", "y", "on", "false", "0", "no", "n", "off":
		return true
	}
	return false
}

func isDatetime(value string) bool {
	trimmed := strings.TrimSpace(value)
	for _, format := range datetimeFormats {
		if _, err := time.Parse(format, trimmed); err == nil {
			return true
		}
	}
	return false
}

// stratifiedSample returns evenly distributed row indices across the dataset
func stratifiedSample(totalRows, sampleSize int) []int {
	if sampleSize >= totalRows {
		indices := make([]int, totalRows)
		for i := range indices {
			indices[i] = i
		}
		return indices
	}

	indices := make([]int, 0, sampleSize)
	step := float64(totalRows) / float64(sampleSize)

	for i := 0; i < sampleSize; i++ {
		idx := int(math.Round(float64(i) * step))
		if idx < totalRows {
			indices = append(indices, idx)
		}
	}

	return indices
}
