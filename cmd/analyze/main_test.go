package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func createBoardDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "analyze-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := newCommand(&out).Run(context.Background(), append([]string{"analyze"}, args...))
	return out.String(), err
}

func TestAnalyzeDirectory(t *testing.T) {
	dir := createBoardDir(t, map[string]string{
		"open.txt":  "3 3\n0 0 0\n0 0 0\n0 0 1\n",
		"dense.txt": "2 2\n1 1\n1 0\n",
	})

	out, err := run(t, "--dir", dir)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	for _, want := range []string{
		"=== dense (dense.txt) ===",
		"=== open (open.txt) ===",
		"Size: 3 columns x 3 rows",
		"Bombs: 3 (75.0%)",
		"Openings: 1",
		"WARNING: no openings",
		"WARNING: bomb density above 40%",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output:\n%s", want, out)
		}
	}
	if strings.Index(out, "dense") > strings.Index(out, "open (") {
		t.Error("Expected boards sorted by name")
	}
}

func TestAnalyzeFilesReportsInvalid(t *testing.T) {
	dir := createBoardDir(t, map[string]string{
		"good.txt": "1 1\n0\n",
		"bad.txt":  "2 1\n0 2\n",
	})

	out, err := run(t, filepath.Join(dir, "good.txt"), filepath.Join(dir, "bad.txt"))
	if err == nil {
		t.Fatal("Expected an error when a board fails to parse")
	}
	if !strings.Contains(out, "INVALID:") || !strings.Contains(out, "=== good (good.txt) ===") {
		t.Errorf("Unexpected output:\n%s", out)
	}
}

func TestAnalyzeJSON(t *testing.T) {
	dir := createBoardDir(t, map[string]string{
		"split.txt": "5 1\n0 0 1 0 0\n",
	})

	out, err := run(t, "--json", "--dir", dir)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	var result struct {
		Boards []struct {
			Name     string `json:"name"`
			Analysis struct {
				Openings   int `json:"openings"`
				Difficulty int `json:"difficulty"`
			} `json:"analysis"`
		} `json:"boards"`
		Failures map[string]string `json:"failures"`
	}
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("Failed to decode output: %v\n%s", err, out)
	}
	if len(result.Boards) != 1 || result.Boards[0].Name != "split" {
		t.Fatalf("Unexpected boards %+v", result.Boards)
	}
	if a := result.Boards[0].Analysis; a.Openings != 2 || a.Difficulty != 2 {
		t.Errorf("Expected 2 openings and difficulty 2, got %+v", a)
	}
	if len(result.Failures) != 0 {
		t.Errorf("Expected no failures, got %v", result.Failures)
	}
}

func TestAnalyzeMissingDirectory(t *testing.T) {
	if _, err := run(t, "--dir", "/nonexistent/boards"); err == nil {
		t.Error("Expected error for a missing directory")
	}
}
