package tabular

import (
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// Reader handles reading Excel and CSV files into tables
type Reader struct {
	filePath string
	fileType string // "xlsx" or "csv"
}

// NewReader creates a new data reader that handles both Excel and CSV files
func NewReader(filePath string) *Reader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "xlsx"
	if ext == ".csv" {
		fileType = "csv"
	}
	return &Reader{filePath: filePath, fileType: fileType}
}

// Read reads data from Excel or CSV files into a structured table
func (r *Reader) Read() (*Table, error) {
	log.Printf("[TableReader] Starting to read %s file: %s", r.fileType, r.filePath)

	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath)
	}

	switch r.fileType {
	case "csv":
		return r.readCSV()
	case "xlsx":
		return r.readExcel()
	default:
		return nil, fmt.Errorf("unsupported file type: %s", r.fileType)
	}
}

// readExcel reads Excel data from the first worksheet into a table
func (r *Reader) readExcel() (*Table, error) {
	startTime := time.Now()
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()
	fileOpenTime := time.Since(startTime)
	log.Printf("[TableReader] Excel file opened in %.2fms", float64(fileOpenTime.Nanoseconds())/1e6)

	sheetName := "Sheet1"
	readStart := time.Now()
	rows, err := f.GetRows(sheetName)
	if err != nil {
		// Fall back to whatever the first worksheet is named
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("Excel file has no worksheets")
		}
		sheetName = sheets[0]
		rows, err = f.GetRows(sheetName)
		if err != nil {
			return nil, fmt.Errorf("failed to read worksheet %s: %w", sheetName, err)
		}
	}
	readTime := time.Since(readStart)
	log.Printf("[TableReader] Worksheet %s read in %.2fms (%d rows)", sheetName, float64(readTime.Nanoseconds())/1e6, len(rows))

	if len(rows) < 2 {
		return nil, fmt.Errorf("Excel file must have at least a header row and one data row")
	}

	return r.processRows(rows)
}

// readCSV reads CSV data into a table
func (r *Reader) readCSV() (*Table, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	readStart := time.Now()
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	readTime := time.Since(readStart)
	log.Printf("[TableReader] CSV file read in %.2fms (%d rows)", float64(readTime.Nanoseconds())/1e6, len(rows))

	if len(rows) < 2 {
		return nil, fmt.Errorf("CSV file must have at least a header row and one data row")
	}

	return r.processRows(rows)
}

// processRows converts raw string rows into Table format
func (r *Reader) processRows(rows [][]string) (*Table, error) {
	headerRow := rows[0]
	headers := make([]string, len(headerRow))
	for i, header := range headerRow {
		headers[i] = strings.TrimSpace(header)
	}

	var dataRows []RowData
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		rowData := make(RowData)

		for j, cell := range row {
			if j < len(headers) {
				rowData[headers[j]] = strings.TrimSpace(cell)
			}
		}

		dataRows = append(dataRows, rowData)
	}

	log.Printf("[TableReader] %s file processed (%d columns, %d rows)",
		strings.ToUpper(r.fileType), len(headers), len(dataRows))

	return &Table{
		Headers: headers,
		Rows:    dataRows,
	}, nil
}

// Loader reads tables from disk paths. It satisfies the table loader
// interfaces declared by the app packages.
type Loader struct{}

// NewLoader creates a table loader
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads the table stored at path
func (l *Loader) Load(ctx context.Context, path string) (*Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return NewReader(path).Read()
}
