// ABOUTME: Export functionality for lexeme tables
// ABOUTME: Supports YAML and JSON export formats
package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/harper/trigrambot/internal/models"
	"gopkg.in/yaml.v3"
)

// ExportData represents the complete exportable data structure
type ExportData struct {
	Version    string      `yaml:"version" json:"version"`
	ExportedAt string      `yaml:"exported_at" json:"exported_at"`
	Tool       string      `yaml:"tool" json:"tool"`
	Table      string      `yaml:"table" json:"table"`
	Rows       []ExportRow `yaml:"rows" json:"rows"`
}

// ExportRow represents one trigram for export
type ExportRow struct {
	Lexeme1 string `yaml:"lexeme1" json:"lexeme1"`
	Lexeme2 string `yaml:"lexeme2" json:"lexeme2"`
	Lexeme3 string `yaml:"lexeme3" json:"lexeme3"`
	Count   int64  `yaml:"count" json:"count"`
}

// Export exports every row of t
func (s *Storage) Export(ctx context.Context, t models.Table) (*ExportData, error) {
	rows, err := s.chains.Rows(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("failed to list rows: %w", err)
	}

	data := &ExportData{
		Version:    "1.0",
		ExportedAt: time.Now().Format(time.RFC3339),
		Tool:       "trigrambot",
		Table:      t.Name(),
		Rows:       make([]ExportRow, 0, len(rows)),
	}
	for _, r := range rows {
		data.Rows = append(data.Rows, ExportRow{
			Lexeme1: r.Lexeme1,
			Lexeme2: r.Lexeme2,
			Lexeme3: r.Lexeme3,
			Count:   r.Count,
		})
	}
	return data, nil
}

// EncodeExport writes data to w as "yaml" or "json"
func EncodeExport(w io.Writer, data *ExportData, format string) error {
	switch format {
	case "yaml", "yml", "":
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(data); err != nil {
			return fmt.Errorf("failed to encode YAML: %w", err)
		}
		return encoder.Close()
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(data); err != nil {
			return fmt.Errorf("failed to encode JSON: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

// ExportToFile exports t to outputPath in the given format
func (s *Storage) ExportToFile(ctx context.Context, t models.Table, outputPath, format string) (err error) {
	data, err := s.Export(ctx, t)
	if err != nil {
		return err
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	file, err := os.Create(outputPath) // #nosec G304
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close output file: %w", cerr)
		}
	}()

	return EncodeExport(file, data, format)
}
