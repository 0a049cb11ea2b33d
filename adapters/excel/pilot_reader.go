// Package excel reads observed pilot data from spreadsheets so design
// parameters can be estimated from it. It handles both .xlsx and .csv files.
package excel

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"powersim/domain/core"
	"powersim/domain/design"
)

// Expected header names, case-insensitive
const (
	colSubject   = "subject"
	colCondition = "condition"
	colValue     = "value"
)

// PilotReader reads subject/condition/value observation tables
type PilotReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
}

// NewPilotReader creates a reader; the file type follows the extension
func NewPilotReader(filePath string) *PilotReader {
	fileType := "xlsx"
	if strings.ToLower(filepath.Ext(filePath)) == ".csv" {
		fileType = "csv"
	}
	return &PilotReader{filePath: filePath, fileType: fileType}
}

// Read loads every observation row. The first row must be a header
// containing subject, condition, and value columns in any order.
func (r *PilotReader) Read() ([]design.Observation, error) {
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("pilot file not found: %s", r.filePath)
	}

	var rows [][]string
	var err error
	switch r.fileType {
	case "csv":
		rows, err = r.readCSVRows()
	default:
		rows, err = r.readExcelRows()
	}
	if err != nil {
		return nil, err
	}
	return parseRows(rows)
}

func (r *PilotReader) readExcelRows() ([][]string, error) {
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("workbook %s has no sheets", r.filePath)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	return rows, nil
}

func (r *PilotReader) readCSVRows() ([][]string, error) {
	f, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	var rows [][]string
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

func parseRows(rows [][]string) ([]design.Observation, error) {
	if len(rows) < 2 {
		return nil, core.NewParameterError("pilot", "file needs a header row and at least one observation")
	}

	subjectIdx, conditionIdx, valueIdx := -1, -1, -1
	for i, h := range rows[0] {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case colSubject:
			subjectIdx = i
		case colCondition:
			conditionIdx = i
		case colValue:
			valueIdx = i
		}
	}
	if subjectIdx < 0 || conditionIdx < 0 || valueIdx < 0 {
		return nil, core.NewParameterError("pilot", "header must contain subject, condition, and value columns")
	}

	obs := make([]design.Observation, 0, len(rows)-1)
	for n, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		need := max(subjectIdx, max(conditionIdx, valueIdx))
		if len(row) <= need {
			return nil, core.NewParameterError("pilot", fmt.Sprintf("row %d has %d cells, need %d", n+2, len(row), need+1))
		}
		subject, err := strconv.Atoi(strings.TrimSpace(row[subjectIdx]))
		if err != nil {
			return nil, core.NewParameterError("pilot", fmt.Sprintf("row %d: bad subject %q", n+2, row[subjectIdx]))
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(row[valueIdx]), 64)
		if err != nil {
			return nil, core.NewParameterError("pilot", fmt.Sprintf("row %d: bad value %q", n+2, row[valueIdx]))
		}
		cond := design.Condition(strings.TrimSpace(row[conditionIdx]))
		if cond == "" {
			return nil, core.NewParameterError("pilot", fmt.Sprintf("row %d: empty condition", n+2))
		}
		obs = append(obs, design.Observation{Subject: subject, Condition: cond, Value: value})
	}
	if len(obs) == 0 {
		return nil, core.NewParameterError("pilot", "no observation rows")
	}
	return obs, nil
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
