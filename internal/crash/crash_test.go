/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package crash

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type fakeSummary []string

func (f fakeSummary) CrashSummary() []string { return f }

func TestWriteReportIncludesSummary(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	path, err := writeReport(fakeSummary{"Placements: 7", "History: 3/2"}, "boom", []byte("stacktrace"))
	if err != nil {
		t.Fatalf("writeReport error: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	s := string(b)
	for _, want := range []string{"Go Sticker Planner Crash Report", "Placements: 7", "History: 3/2", "Panic: boom", "stacktrace"} {
		if !strings.Contains(s, want) {
			t.Fatalf("report missing %q:\n%s", want, s)
		}
	}
}

func TestWriteReportWithoutReporter(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	path, err := writeReport(nil, "kaboom", nil)
	if err != nil {
		t.Fatalf("writeReport error: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("report file missing: %v", err)
	}
}

// Recover handles a panic, writes a report and calls the injected exitFn instead of terminating.
func TestRecover_Panicking(t *testing.T) {
	cache := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", cache)

	oldStderr := os.Stderr
	r, w, _ := os.Pipe()
	os.Stderr = w
	defer func() {
		_ = w.Close()
		os.Stderr = oldStderr
		_, _ = io.Copy(io.Discard, r)
	}()

	called := 0
	oldExit := exitFn
	exitFn = func(code int) { called = code }
	defer func() { exitFn = oldExit }()

	func() {
		defer Recover(fakeSummary{"Pages: 1"})
		panic("boom")
	}()

	dir := filepath.Join(cache, "gostickerplanner", "crash")
	files, _ := os.ReadDir(dir)
	var found string
	for _, f := range files {
		if strings.HasPrefix(f.Name(), "crash-") && strings.HasSuffix(f.Name(), ".log") {
			found = filepath.Join(dir, f.Name())
		}
	}
	if found == "" {
		t.Fatalf("expected crash report under %s", dir)
	}
	b, _ := os.ReadFile(found)
	if !strings.Contains(string(b), "Panic: boom") || !strings.Contains(string(b), "Pages: 1") {
		t.Fatalf("unexpected report: %s", b)
	}
	if called != 2 {
		t.Fatalf("expected exit code 2, got %d", called)
	}
}
