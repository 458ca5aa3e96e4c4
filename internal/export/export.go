// Package export writes extraction results to files.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/ikhlasbhojani/learnme/internal/types"
)

type Exporter struct {
	outputDir string
}

func NewExporter(outputDir string) (*Exporter, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	return &Exporter{
		outputDir: outputDir,
	}, nil
}

// ExportJSON writes the full extraction result, topics and diagnostics
// included, as pretty-printed JSON.
func (e *Exporter) ExportJSON(result types.ExtractionResult, filename string) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	path := filepath.Join(e.outputDir, filename)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write JSON file: %w", err)
	}

	return nil
}

// ExportCSV writes the topic list as a flat CSV, one topic per row.
func (e *Exporter) ExportCSV(result types.ExtractionResult, filename string) error {
	path := filepath.Join(e.outputDir, filename)
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	headers := []string{"ID", "Title", "URL", "Section", "Depth"}
	if err := writer.Write(headers); err != nil {
		return fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, topic := range result.Topics {
		record := []string{
			topic.ID,
			topic.Title,
			topic.URL,
			topic.Section,
			strconv.Itoa(topic.Depth),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	return nil
}
