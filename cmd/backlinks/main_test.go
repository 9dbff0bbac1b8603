package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hamed0406/backlinkmonitor/internal/config"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	dir := t.TempDir()
	return config.Config{
		LogDir:      filepath.Join(dir, "logs"),
		TargetsFile: filepath.Join(dir, "missing.yaml"),
		OutputCSV:   filepath.Join(dir, "statuses.csv"),
		HTTPTimeout: time.Second,
		Concurrency: 1,
	}
}

func firstFieldIsRFC3339(t *testing.T, out string) {
	t.Helper()
	ts, _, _ := strings.Cut(out, " ")
	if _, err := time.Parse(time.RFC3339, ts); err != nil {
		t.Fatalf("output should start with an RFC3339 timestamp: %q", out)
	}
}

func TestExecute_FlagErrorIsReported(t *testing.T) {
	for _, args := range [][]string{
		{"--concurrency", "abc"},
		{"--no-such-flag"},
		{"unexpected-arg"},
	} {
		var out bytes.Buffer
		if code := execute(context.Background(), testConfig(t), args, &out); code != 1 {
			t.Fatalf("%v: want exit 1, got %d", args, code)
		}
		if out.Len() == 0 {
			t.Fatalf("%v: failure must be printed", args)
		}
		firstFieldIsRFC3339(t, out.String())
	}

	var out bytes.Buffer
	execute(context.Background(), testConfig(t), []string{"--concurrency", "abc"}, &out)
	if !strings.Contains(out.String(), `invalid argument "abc"`) {
		t.Fatalf("want the flag error in output, got %q", out.String())
	}
}

func TestExecute_RunFailureReportedOnce(t *testing.T) {
	var out bytes.Buffer
	if code := execute(context.Background(), testConfig(t), nil, &out); code != 1 {
		t.Fatalf("want exit 1, got %d", code)
	}
	got := out.String()
	firstFieldIsRFC3339(t, got)
	if !strings.Contains(got, "load targets") {
		t.Fatalf("want the run error in output, got %q", got)
	}
	if n := strings.Count(got, "run_failed"); n != 1 {
		t.Fatalf("want one run_failed log line, got %d in %q", n, got)
	}
}
