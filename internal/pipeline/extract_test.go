package pipeline

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"orgtree/internal"
)

func labels(n internal.RawNode) []string {
	out := make([]string, 0, len(n))
	for _, e := range n {
		out = append(out, e.Label)
	}
	return out
}

func sameLabels(t *testing.T, n internal.RawNode, want ...string) {
	t.Helper()
	got := labels(n)
	if len(got) != len(want) {
		t.Fatalf("labels=%v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("labels=%v want %v", got, want)
		}
	}
}

func mkXLSX(rows [][]any) []byte {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for r, row := range rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+1)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}
	buf := bytes.NewBuffer(nil)
	_, _ = f.WriteTo(buf)
	return buf.Bytes()
}

func TestParseJSONKeepsKeyOrder(t *testing.T) {
	blob := []byte(`{"b": {"x": {}}, "a": [1, {"ignored": {}}], "c": "leaf", "b": {"y": {"z": null}}}`)
	raw, err := parseJSON(blob)
	if err != nil {
		t.Fatal(err)
	}
	sameLabels(t, raw, "b", "a", "c")
	sameLabels(t, raw[0].Children, "y")
	sameLabels(t, raw[0].Children[0].Children, "z")
	if len(raw[1].Children) != 0 || len(raw[2].Children) != 0 {
		t.Fatal("arrays and scalars must be leaves")
	}
}

func TestParseJSONRejectsMalformed(t *testing.T) {
	for _, blob := range []string{``, `[]`, `"x"`, `{"a": }`, `{} {}`, `null`} {
		if _, err := parseJSON([]byte(blob)); !errors.Is(err, ErrMalformedInput) {
			t.Fatalf("%q: err=%v", blob, err)
		}
	}
}

func TestParseHTMLOutline(t *testing.T) {
	html := `<html><body>
<ul>
  <li>Engineering
    <ul><li>Platform</li><li> Tools  Team </li></ul>
  </li>
  <li>Marketing</li>
</ul>
<ol><li>Engineering<ul><li>Design</li></ul></li></ol>
</body></html>`
	raw, err := parseHTMLOutline([]byte(html))
	if err != nil {
		t.Fatal(err)
	}
	sameLabels(t, raw, "Engineering", "Marketing")
	sameLabels(t, raw[0].Children, "Platform", "Tools Team", "Design")
}

func TestParseHTMLOutlineWithoutLists(t *testing.T) {
	if _, err := parseHTMLOutline([]byte(`<p>nothing here</p>`)); !errors.Is(err, ErrMalformedInput) {
		t.Fatalf("err=%v", err)
	}
}

func TestParseXLSXPaths(t *testing.T) {
	blob := mkXLSX([][]any{
		{"Level 1", "Level 2", "Level 3"},
		{"Engineering", "Platform", "Core"},
		{"Engineering", "Tools"},
		{"Marketing"},
		{},
	})
	raw, err := parseXLSXPaths(blob)
	if err != nil {
		t.Fatal(err)
	}
	sameLabels(t, raw, "Engineering", "Marketing")
	sameLabels(t, raw[0].Children, "Platform", "Tools")
	sameLabels(t, raw[0].Children[0].Children, "Core")
}

func TestParseXLSXRejectsGarbage(t *testing.T) {
	if _, err := parseXLSXPaths([]byte("not a workbook")); !errors.Is(err, ErrMalformedInput) {
		t.Fatalf("err=%v", err)
	}
}

type stubFetcher struct {
	body        []byte
	contentType string
	calls       int
}

func (s *stubFetcher) FetchDump(_ context.Context, _ string) ([]byte, string, error) {
	s.calls++
	return s.body, s.contentType, nil
}

func TestLoadRaw(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dump.json")
	if err := os.WriteFile(path, []byte(`{"Design": {}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	raw, err := LoadRaw(context.Background(), nil, path, "")
	if err != nil {
		t.Fatal(err)
	}
	sameLabels(t, raw, "Design")

	fetcher := &stubFetcher{body: []byte(`<ul><li>Design</li></ul>`), contentType: "text/html; charset=utf-8"}
	raw, err = LoadRaw(context.Background(), fetcher, "https://example.test/org", "")
	if err != nil {
		t.Fatal(err)
	}
	sameLabels(t, raw, "Design")
	if fetcher.calls != 1 {
		t.Fatalf("calls=%d", fetcher.calls)
	}

	if _, err := LoadRaw(context.Background(), nil, filepath.Join(dir, "missing.json"), ""); err == nil {
		t.Fatal("expected error for missing file")
	}
	if _, err := ReadRaw("yaml", nil); !errors.Is(err, ErrUnsupportedInput) {
		t.Fatalf("err=%v", err)
	}
}
