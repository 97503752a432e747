package logger

import (
	"bytes"
	"os"
	"strings"
	"sync"
	"testing"
)

// capture redirects log output for the duration of a test.
func capture(t *testing.T, verboseMode bool) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(verboseMode)
	t.Cleanup(func() {
		SetVerbose(false)
		SetOutput(os.Stderr)
	})
	return &buf
}

func TestSetVerbose(t *testing.T) {
	capture(t, false)
	if IsVerbose() {
		t.Fatal("expected verbose off")
	}
	SetVerbose(true)
	if !IsVerbose() {
		t.Fatal("expected verbose on")
	}
}

func TestLevels(t *testing.T) {
	tests := []struct {
		name    string
		log     func()
		verbose string
		quiet   string
	}{
		{
			name:    "debug",
			log:     func() { Debug("chunk %d embedded", 3) },
			verbose: "[DEBUG] chunk 3 embedded\n",
		},
		{
			name:    "info",
			log:     func() { Info("indexed %s", "doc-1") },
			verbose: "[INFO] indexed doc-1\n",
		},
		{
			name:    "section",
			log:     func() { Section("Analysis") },
			verbose: "\n=== Analysis ===\n",
		},
		{
			name:    "warn",
			log:     func() { Warn("fragment %s malformed", "risks") },
			verbose: "[WARN] fragment risks malformed\n",
			quiet:   "[WARN] fragment risks malformed\n",
		},
		{
			name:    "error",
			log:     func() { Error("store: %v", "disk full") },
			verbose: "[ERROR] store: disk full\n",
			quiet:   "[ERROR] store: disk full\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name+"/verbose", func(t *testing.T) {
			buf := capture(t, true)
			tt.log()
			if buf.String() != tt.verbose {
				t.Errorf("got %q, want %q", buf.String(), tt.verbose)
			}
		})
		t.Run(tt.name+"/quiet", func(t *testing.T) {
			buf := capture(t, false)
			tt.log()
			if buf.String() != tt.quiet {
				t.Errorf("got %q, want %q", buf.String(), tt.quiet)
			}
		})
	}
}

func TestConcurrentWritesDoNotInterleave(t *testing.T) {
	buf := capture(t, true)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			Debug("worker %02d finished", n)
		}(i)
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 20 {
		t.Fatalf("expected 20 lines, got %d", len(lines))
	}
	for _, line := range lines {
		if !strings.HasPrefix(line, "[DEBUG] worker ") || !strings.HasSuffix(line, " finished") {
			t.Errorf("interleaved line: %q", line)
		}
	}
}
