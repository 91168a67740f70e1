package analysis

import (
	"context"

	"datalens/adapters/tabular"
	"datalens/domain/core"
)

// ColumnDetail describes one column the way a dataframe inspection would
type ColumnDetail struct {
	Dtype        string   `json:"dtype"`
	NonNullCount int      `json:"non_null_count"`
	NullCount    int      `json:"null_count"`
	UniqueValues int      `json:"unique_values"`
	SampleValues []string `json:"sample_values"`
}

// ColumnInfoResult covers every column of the dataset
type ColumnInfoResult struct {
	Columns      map[string]ColumnDetail `json:"columns"`
	TotalRows    int                     `json:"total_rows"`
	TotalColumns int                     `json:"total_columns"`
}

// Column sample values are capped at this many entries
const maxSampleValues = 3

// ColumnInfo inspects every column of a stored dataset
func (s *Service) ColumnInfo(ctx context.Context, datasetID string) (*ColumnInfoResult, error) {
	ds, tbl, err := s.loadReady(ctx, datasetID)
	if err != nil {
		return nil, err
	}

	// Prefer the types profiled at ingest; fall back to fresh inference for
	// records that predate profiling.
	types := make(map[string]string, len(ds.Columns))
	for _, col := range ds.Columns {
		types[col.Name] = string(col.Type)
	}
	if len(types) == 0 {
		types = tabular.InferColumnTypes(tbl)
	}

	columns := make(map[string]ColumnDetail, len(tbl.Headers))
	for _, header := range tbl.Headers {
		columns[header] = inspectColumn(tbl, header, types[header])
	}

	return &ColumnInfoResult{
		Columns:      columns,
		TotalRows:    tbl.RowCount(),
		TotalColumns: tbl.ColumnCount(),
	}, nil
}

// Column inspects a single named column of a stored dataset
func (s *Service) Column(ctx context.Context, datasetID, name string) (*ColumnDetail, error) {
	ds, tbl, err := s.loadReady(ctx, datasetID)
	if err != nil {
		return nil, err
	}
	if !tbl.HasColumn(name) {
		return nil, core.NewColumnError(name, core.ErrColumnNotFound)
	}

	dtype := ""
	for _, col := range ds.Columns {
		if col.Name == name {
			dtype = string(col.Type)
			break
		}
	}
	if dtype == "" {
		dtype = tabular.InferColumnTypes(tbl)[name]
	}

	detail := inspectColumn(tbl, name, dtype)
	return &detail, nil
}

// inspectColumn gathers the null/unique/sample profile of one column
func inspectColumn(tbl *tabular.Table, header, dtype string) ColumnDetail {
	unique := make(map[string]bool)
	nonNull := 0
	var samples []string

	for _, row := range tbl.Rows {
		cell, exists := row[header]
		if !exists || cell == "" {
			continue
		}
		nonNull++
		unique[cell] = true
		if len(samples) < maxSampleValues {
			samples = append(samples, cell)
		}
	}

	if dtype == "" {
		dtype = tabular.TypeText
	}

	return ColumnDetail{
		Dtype:        dtype,
		NonNullCount: nonNull,
		NullCount:    tbl.RowCount() - nonNull,
		UniqueValues: len(unique),
		SampleValues: samples,
	}
}
