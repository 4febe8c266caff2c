package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"orgtree/internal"
)

// WriteDocument writes doc as indented JSON. The file is replaced atomically
// so a failed run never leaves a partial document behind.
func WriteDocument(doc internal.Document, outputPath string) error {
	blob, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	dir := filepath.Dir(outputPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".orgtree-*.json")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(append(blob, '\n')); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), outputPath)
}

func ExportTeamsToXLSX(doc internal.Document, outputPath string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), "Teams"); err != nil {
		return err
	}
	headers := []any{"id", "name", "parent", "level", "mention_count", "category", "children", "children_ids"}
	if err := setRow(f, "Teams", 1, headers); err != nil {
		return err
	}
	for i, t := range doc.Teams {
		row := []any{t.ID, t.Name, t.Parent, t.Level, t.MentionCount, string(t.Category), len(t.Children), strings.Join(t.Children, ",")}
		if err := setRow(f, "Teams", i+2, row); err != nil {
			return err
		}
	}

	if _, err := f.NewSheet("Categories"); err != nil {
		return err
	}
	if err := setRow(f, "Categories", 1, []any{"category", "teams", "mentions"}); err != nil {
		return err
	}
	r := 2
	for _, c := range internal.Categories {
		members, ok := doc.Categories[c]
		if !ok {
			continue
		}
		mentions := 0
		for _, t := range members {
			mentions += t.MentionCount
		}
		if err := setRow(f, "Categories", r, []any{string(c), len(members), mentions}); err != nil {
			return err
		}
		r++
	}

	if _, err := f.NewSheet("Metadata"); err != nil {
		return err
	}
	meta := [][]any{
		{"key", "value"},
		{"processed_at", doc.Metadata.ProcessedAt},
		{"total_teams", doc.Metadata.TotalTeams},
		{"total_mentions", doc.Metadata.TotalMentions},
		{"raw_data_size", doc.Metadata.RawDataSize},
	}
	for i, row := range meta {
		if err := setRow(f, "Metadata", i+1, row); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	if err := f.SaveAs(outputPath); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}
