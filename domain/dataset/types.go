package dataset

import (
	"datalens/domain/core"
)

// Status represents the processing state of a dataset
type Status string

const (
	StatusProcessing Status = "processing"
	StatusReady      Status = "ready"
	StatusFailed     Status = "failed"
)

// ColumnType classifies what a column holds after type inference.
type ColumnType string

const (
	ColumnNumeric     ColumnType = "numeric"
	ColumnCategorical ColumnType = "categorical"
	ColumnBoolean     ColumnType = "boolean"
	ColumnDatetime    ColumnType = "datetime"
	ColumnText        ColumnType = "text"
)

// Column is the profiled description of one dataset column.
type Column struct {
	Name    string     `json:"name"`
	Type    ColumnType `json:"type"`
	NonNull int        `json:"nonNull"`
	Unique  int        `json:"unique"`
	Sample  []string   `json:"sample,omitempty"`
}

// Dataset represents an uploaded tabular dataset and its profile. The raw
// rows stay in the stored file; only the profile lives in the state store.
type Dataset struct {
	ID         core.DatasetID `json:"id"`
	Name       string         `json:"name"`
	Filename   string         `json:"filename"`
	Path       string         `json:"path"`
	Size       int64          `json:"size"`
	Checksum   core.Hash      `json:"checksum,omitempty"`
	Rows       int            `json:"rows"`
	Columns    []Column       `json:"columns"`
	Status     Status         `json:"status"`
	Error      string         `json:"error,omitempty"`
	UploadedAt core.Timestamp `json:"uploadedAt"`
}

// NumericColumns returns the names of columns inferred as numeric.
func (d Dataset) NumericColumns() []string {
	var out []string
	for _, c := range d.Columns {
		if c.Type == ColumnNumeric {
			out = append(out, c.Name)
		}
	}
	return out
}

// ColumnNames returns all column names in order.
func (d Dataset) ColumnNames() []string {
	out := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		out[i] = c.Name
	}
	return out
}

// HasColumn reports whether the dataset contains the named column.
func (d Dataset) HasColumn(name string) bool {
	for _, c := range d.Columns {
		if c.Name == name {
			return true
		}
	}
	return false
}

// ColumnByName returns the profile for the named column.
func (d Dataset) ColumnByName(name string) (Column, bool) {
	for _, c := range d.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}
