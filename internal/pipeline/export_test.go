package pipeline

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"orgtree/internal"
)

func sampleDocument() internal.Document {
	return Run(node(entry("WW Ops"), entry("WW Sales"), entry("WW Retail"), entry("Platform Engineering")), fixedNow)
}

func TestWriteDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "public", "processed_org_structure.json")
	doc := sampleDocument()
	if err := WriteDocument(doc, path); err != nil {
		t.Fatal(err)
	}

	blob, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]json.RawMessage
	if err := json.Unmarshal(blob, &decoded); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"teams", "topLevelTeams", "categories", "metadata"} {
		if _, ok := decoded[key]; !ok {
			t.Fatalf("missing key %s", key)
		}
	}

	var back internal.Document
	if err := json.Unmarshal(blob, &back); err != nil {
		t.Fatal(err)
	}
	if len(back.Teams) != len(doc.Teams) || back.Metadata != doc.Metadata {
		t.Fatalf("round trip mismatch: %+v", back.Metadata)
	}
	if !strings.Contains(string(blob), `"processedAt": "2026-03-01T12:00:00.005Z"`) {
		t.Fatal("processedAt not serialized")
	}
	// top-level teams have no parent key at all
	if strings.Contains(string(blob), `"parent": ""`) {
		t.Fatal("empty parent serialized")
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Fatalf("temp files left behind: %d entries", len(entries))
	}
}

func TestExportTeamsToXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "teams.xlsx")
	doc := sampleDocument()
	if err := ExportTeamsToXLSX(doc, path); err != nil {
		t.Fatal(err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 3 || sheets[0] != "Teams" || sheets[1] != "Categories" || sheets[2] != "Metadata" {
		t.Fatalf("sheets=%v", sheets)
	}
	rows, err := f.GetRows("Teams")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != len(doc.Teams)+1 {
		t.Fatalf("rows=%d", len(rows))
	}
	if rows[1][0] != doc.Teams[0].ID {
		t.Fatalf("first row id=%s", rows[1][0])
	}
	cats, _ := f.GetRows("Categories")
	if len(cats) != len(doc.Categories)+1 {
		t.Fatalf("category rows=%d", len(cats))
	}
}

func TestWriteSummary(t *testing.T) {
	var buf bytes.Buffer
	WriteSummary(&buf, sampleDocument())
	out := buf.String()
	for _, want := range []string{"CATEGORY", "Engineering", "TOTAL"} {
		if !strings.Contains(out, want) {
			t.Fatalf("summary missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	WriteTeams(&buf, sampleDocument().Teams[:1])
	if !strings.Contains(buf.String(), "Ww") {
		t.Fatalf("teams table:\n%s", buf.String())
	}
}
