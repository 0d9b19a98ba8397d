// Package excel loads time-course matrices and annotation sets from .xlsx
// and .csv files.
package excel

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"goclue/domain/annotation"
	"goclue/domain/core"
	"goclue/domain/matrix"
)

// DataReader handles reading Excel and CSV files
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
}

// NewDataReader creates a reader that handles both Excel and CSV files,
// dispatching on the file extension
func NewDataReader(filePath string) *DataReader {
	fileType := "xlsx"
	if strings.ToLower(filepath.Ext(filePath)) == ".csv" {
		fileType = "csv"
	}
	return &DataReader{filePath: filePath, fileType: fileType}
}

// ReadMatrix reads a time-course matrix: one header row (entity column plus
// one label per time point), then one row per entity with the identifier in
// the first column and numeric measurements in the rest.
func (r *DataReader) ReadMatrix() (*matrix.TimeCourseMatrix, error) {
	rows, err := r.readRows()
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("%s has no data rows", r.filePath)
	}

	header := rows[0]
	if len(header) < 2 {
		return nil, fmt.Errorf("%s needs an entity column and at least one measurement column", r.filePath)
	}
	width := len(header) - 1

	entities := make([]core.EntityID, 0, len(rows)-1)
	data := make([][]float64, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			continue // blank line
		}
		if len(row) != width+1 {
			return nil, fmt.Errorf("row %d has %d columns, want %d", i+2, len(row), width+1)
		}
		values := make([]float64, width)
		for j, cell := range row[1:] {
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				return nil, fmt.Errorf("row %d column %d: %w", i+2, j+2, err)
			}
			values[j] = v
		}
		entities = append(entities, core.EntityID(strings.TrimSpace(row[0])))
		data = append(data, values)
	}

	return matrix.New(entities, data)
}

// ReadAnnotation reads an annotation set: one row per group, group
// identifier in the first column and one member per remaining column. No
// header row.
func (r *DataReader) ReadAnnotation() (annotation.Set, error) {
	rows, err := r.readRows()
	if err != nil {
		return nil, err
	}

	groups := make(map[string][]string)
	for _, row := range rows {
		if len(row) < 2 || strings.TrimSpace(row[0]) == "" {
			continue
		}
		name := strings.TrimSpace(row[0])
		for _, cell := range row[1:] {
			if member := strings.TrimSpace(cell); member != "" {
				groups[name] = append(groups[name], member)
			}
		}
	}
	if len(groups) == 0 {
		return nil, fmt.Errorf("%s contains no annotation groups", r.filePath)
	}
	return annotation.NewSet(groups), nil
}

func (r *DataReader) readRows() ([][]string, error) {
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath)
	}

	switch r.fileType {
	case "csv":
		return r.readCSVRows()
	default:
		return r.readExcelRows()
	}
}

func (r *DataReader) readCSVRows() ([][]string, error) {
	f, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // annotation rows are ragged by design
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV file: %w", err)
	}
	return rows, nil
}

func (r *DataReader) readExcelRows() ([][]string, error) {
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%s has no sheets", r.filePath)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	return rows, nil
}
