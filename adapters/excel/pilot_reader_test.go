package excel

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"powersim/domain/core"
	"powersim/domain/design"
)

func writeXLSX(t *testing.T, rows [][]interface{}) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	path := filepath.Join(t.TempDir(), "pilot.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	return path
}

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pilot.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return path
}

func TestPilotReader_XLSX(t *testing.T) {
	path := writeXLSX(t, [][]interface{}{
		{"subject", "condition", "value"},
		{1, "congruent", 510.5},
		{1, "incongruent", 590},
		{2, "congruent", 455},
	})

	obs, err := NewPilotReader(path).Read()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	want := []design.Observation{
		{Subject: 1, Condition: "congruent", Value: 510.5},
		{Subject: 1, Condition: "incongruent", Value: 590},
		{Subject: 2, Condition: "congruent", Value: 455},
	}
	if len(obs) != len(want) {
		t.Fatalf("got %d observations, want %d", len(obs), len(want))
	}
	for i := range want {
		if obs[i] != want[i] {
			t.Fatalf("observation %d: got %+v, want %+v", i, obs[i], want[i])
		}
	}
}

func TestPilotReader_CSV(t *testing.T) {
	path := writeCSV(t, "subject,condition,value\n1,congruent,510.5\n2,incongruent,602\n")
	obs, err := NewPilotReader(path).Read()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(obs) != 2 {
		t.Fatalf("got %d observations, want 2", len(obs))
	}
	if obs[1] != (design.Observation{Subject: 2, Condition: "incongruent", Value: 602}) {
		t.Fatalf("unexpected observation %+v", obs[1])
	}
}

func TestPilotReader_HeaderOrderAndCase(t *testing.T) {
	path := writeCSV(t, "Value, Condition ,SUBJECT\n3.5,fast,7\n")
	obs, err := NewPilotReader(path).Read()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if obs[0] != (design.Observation{Subject: 7, Condition: "fast", Value: 3.5}) {
		t.Fatalf("columns mapped wrong: %+v", obs[0])
	}
}

func TestPilotReader_SkipsBlankRows(t *testing.T) {
	path := writeCSV(t, "subject,condition,value\n1,a,1\n,,\n2,a,2\n")
	obs, err := NewPilotReader(path).Read()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(obs) != 2 {
		t.Fatalf("blank row not skipped, got %d observations", len(obs))
	}
}

func TestPilotReader_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing column", "subject,value\n1,2\n"},
		{"no data rows", "subject,condition,value\n"},
		{"bad subject", "subject,condition,value\nseven,a,1\n"},
		{"bad value", "subject,condition,value\n1,a,fast\n"},
		{"empty condition", "subject,condition,value\n1,,2\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPilotReader(writeCSV(t, tt.content)).Read()
			if !core.IsInvalidParameter(err) {
				t.Fatalf("expected ErrInvalidParameter, got %v", err)
			}
		})
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := NewPilotReader(filepath.Join(t.TempDir(), "nope.xlsx")).Read()
		if err == nil {
			t.Fatal("expected an error for a missing file")
		}
	})
}
