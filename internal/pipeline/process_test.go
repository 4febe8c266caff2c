package pipeline

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"orgtree/internal/logging"
	"orgtree/internal/metrics"
	"orgtree/internal/storage"
)

func TestProcessWritesEveryOutput(t *testing.T) {
	tmp := t.TempDir()
	input := filepath.Join(tmp, "org_structure.json")
	raw := `{"WW Ops": {}, "WW Sales": {"and": {"Ignored Team": {}}}, "WW Retail": {}, "Platform Engineering": {"Platform Tools": {}}}`
	if err := os.WriteFile(input, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}

	db, err := storage.Open(filepath.Join(tmp, "orgtree.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	var logs bytes.Buffer
	logger := logging.New(&logs, logging.Config{Level: "debug", Format: "json"})
	rec := metrics.NewRecorder()
	svc := NewProcessingService(db, nil, rec, logger).WithClock(func() time.Time { return fixedNow })

	output := filepath.Join(tmp, "public", "processed_org_structure.json")
	xlsx := filepath.Join(tmp, "out", "teams.xlsx")
	res, err := svc.Process(context.Background(), Request{Input: input, Output: output, XLSX: xlsx})
	if err != nil {
		t.Fatal(err)
	}
	if res.TraceID == "" {
		t.Fatal("missing trace id")
	}
	if res.Document.Metadata.RawDataSize != 4 {
		t.Fatalf("rawDataSize=%d", res.Document.Metadata.RawDataSize)
	}
	for _, stage := range []string{StageLoad, StageBuild, StageConsolidate, StageAggregate, "write", "xlsx"} {
		if _, ok := res.Timings[stage]; !ok {
			t.Fatalf("missing timing %s", stage)
		}
	}
	for _, path := range []string{output, xlsx} {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("%s: %v", path, err)
		}
	}

	stored, err := db.LoadSnapshot()
	if err != nil {
		t.Fatal(err)
	}
	if stored == nil || len(stored.Teams) != len(res.Document.Teams) {
		t.Fatalf("stored snapshot mismatch")
	}
	if stored.Metadata != res.Document.Metadata {
		t.Fatalf("stored meta=%+v", stored.Metadata)
	}
	traceID, _ := db.GetMetadata("traceId")
	if traceID == nil || *traceID != res.TraceID {
		t.Fatalf("trace id not stored")
	}

	for _, want := range []string{`"msg":"stage done"`, `"msg":"run complete"`, res.TraceID} {
		if !strings.Contains(logs.String(), want) {
			t.Fatalf("logs missing %s:\n%s", want, logs.String())
		}
	}
}

func TestProcessMalformedInputWritesNothing(t *testing.T) {
	tmp := t.TempDir()
	input := filepath.Join(tmp, "org_structure.json")
	if err := os.WriteFile(input, []byte(`["not", "an", "object"]`), 0o644); err != nil {
		t.Fatal(err)
	}
	output := filepath.Join(tmp, "public", "out.json")

	svc := NewProcessingService(nil, nil, nil, nil)
	_, err := svc.Process(context.Background(), Request{Input: input, Output: output})
	if !errors.Is(err, ErrMalformedInput) {
		t.Fatalf("err=%v", err)
	}
	if _, statErr := os.Stat(output); !os.IsNotExist(statErr) {
		t.Fatalf("output written despite failure: %v", statErr)
	}
}
