package training

import (
	"strconv"

	"datalens/adapters/tabular"
	"datalens/domain/core"
)

// featureMatrix extracts the feature matrix and target column from a table.
// Rows with a missing or unparseable feature cell, or an empty target cell,
// are skipped rather than failing the whole run. The target comes back raw;
// when numericTarget is set it is also parsed, and rows whose target fails
// to parse are skipped too.
func featureMatrix(tbl *tabular.Table, features []string, target string, numericTarget bool) ([][]float64, []float64, []string, error) {
	for _, name := range features {
		if !tbl.HasColumn(name) {
			return nil, nil, nil, core.NewColumnError(name, core.ErrColumnNotFound)
		}
	}
	if !tbl.HasColumn(target) {
		return nil, nil, nil, core.NewColumnError(target, core.ErrColumnNotFound)
	}

	var (
		x    [][]float64
		yNum []float64
		yRaw []string
	)

	for _, row := range tbl.Rows {
		targetCell := row[target]
		if targetCell == "" {
			continue
		}

		var targetVal float64
		if numericTarget {
			val, err := strconv.ParseFloat(targetCell, 64)
			if err != nil {
				continue
			}
			targetVal = val
		}

		vec, ok := parseFeatureRow(row, features)
		if !ok {
			continue
		}

		x = append(x, vec)
		yRaw = append(yRaw, targetCell)
		if numericTarget {
			yNum = append(yNum, targetVal)
		}
	}

	return x, yNum, yRaw, nil
}

// parseFeatureRow parses one row's feature cells into a float vector
func parseFeatureRow(row tabular.RowData, features []string) ([]float64, bool) {
	vec := make([]float64, len(features))
	for j, name := range features {
		cell := row[name]
		if cell == "" {
			return nil, false
		}
		val, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return nil, false
		}
		vec[j] = val
	}
	return vec, true
}
