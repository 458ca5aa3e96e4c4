package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/ikhlasbhojani/learnme/internal/types"
)

func sampleResult() types.ExtractionResult {
	return types.ExtractionResult{
		Topics: []types.Topic{
			{ID: "guide-intro", Title: "Intro", URL: "https://d.example.com/guide/intro", Section: "Guide", Depth: 1},
			{ID: "guide-setup", Title: "Setup", URL: "https://d.example.com/guide/setup", Section: "Guide", Depth: 1},
		},
		MainURL:        "https://d.example.com/",
		TotalPages:     2,
		MaxDepth:       1,
		ExtractionMode: types.ModeHTTP,
	}
}

func TestExportJSON(t *testing.T) {
	dir := t.TempDir()
	exporter, err := NewExporter(dir)
	if err != nil {
		t.Fatalf("NewExporter() error = %v", err)
	}

	if err := exporter.ExportJSON(sampleResult(), "topics.json"); err != nil {
		t.Fatalf("ExportJSON() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "topics.json"))
	if err != nil {
		t.Fatal(err)
	}
	var got types.ExtractionResult
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("exported file is not valid JSON: %v", err)
	}
	if len(got.Topics) != 2 || got.MainURL != "https://d.example.com/" {
		t.Errorf("round trip = %+v", got)
	}
}

func TestExportCSV(t *testing.T) {
	dir := t.TempDir()
	exporter, err := NewExporter(dir)
	if err != nil {
		t.Fatalf("NewExporter() error = %v", err)
	}

	if err := exporter.ExportCSV(sampleResult(), "topics.csv"); err != nil {
		t.Fatalf("ExportCSV() error = %v", err)
	}

	file, err := os.Open(filepath.Join(dir, "topics.csv"))
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("exported file is not valid CSV: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want header + 2 topics", len(rows))
	}
	if rows[1][0] != "guide-intro" || rows[1][4] != "1" {
		t.Errorf("row = %v", rows[1])
	}
}

func TestNewExporterCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	if _, err := NewExporter(dir); err != nil {
		t.Fatalf("NewExporter() error = %v", err)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("output dir not created: %v", err)
	}
}
