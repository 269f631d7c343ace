// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package chunkedfile

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type testReporter struct {
	reported []string
}

func (r *testReporter) Errorf(format string, args ...interface{}) {
	r.reported = append(r.reported, fmt.Sprintf(format, args...))
}

// take returns the reports since the last call.
func (r *testReporter) take() []string {
	list := r.reported
	r.reported = nil
	return list
}

const testFile = `var x: int = "s" ### "Cannot assign"
---
func f():
	var unused = 1 #!# "UNUSED_VARIABLE"
	pass
`

func readTestFile(t *testing.T, r Reporter) (string, []Chunk) {
	filename := filepath.Join(t.TempDir(), "test.gd")
	if err := os.WriteFile(filename, []byte(testFile), 0666); err != nil {
		t.Fatal(err)
	}
	return filename, Read(filename, r)
}

func TestChunkedFile(t *testing.T) {
	reporter := &testReporter{}
	filename, chunks := readTestFile(t, reporter)
	if got := reporter.take(); got != nil {
		t.Fatalf("Read reported %q", got)
	}
	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2", len(chunks))
	}

	// Line numbers of the second chunk continue those of the file.
	want := "\n\nfunc f():\n\tvar unused = 1 #!# \"UNUSED_VARIABLE\"\n\tpass\n"
	if chunks[1].Source != want {
		t.Errorf("second chunk source = %q, want %q", chunks[1].Source, want)
	}

	first := &chunks[0]
	first.GotError(1, `Cannot assign a value of type "String" to variable "x" with specified type "int".`)
	first.Done()
	if got := reporter.take(); got != nil {
		t.Errorf("expected error reported %q", got)
	}

	// The expectation is consumed by the first match.
	first.GotError(1, "Cannot assign again")
	wantReports := []string{"\n" + filename + ":1: unexpected error: Cannot assign again"}
	if diff := cmp.Diff(wantReports, reporter.take()); diff != "" {
		t.Errorf("repeated error (-want +got):\n%s", diff)
	}

	second := &chunks[1]
	second.GotError(4, "UNUSED_VARIABLE")
	second.GotWarning(5, "UNREACHABLE_CODE")
	second.Done()
	wantReports = []string{
		"\n" + filename + ":4: unexpected error: UNUSED_VARIABLE",
		"\n" + filename + ":5: unexpected warning: UNREACHABLE_CODE",
		"\n" + filename + `:4: expected warning matching "UNUSED_VARIABLE"`,
	}
	if diff := cmp.Diff(wantReports, reporter.take()); diff != "" {
		t.Errorf("second chunk (-want +got):\n%s", diff)
	}
}

func TestChunkedFileMismatch(t *testing.T) {
	reporter := &testReporter{}
	filename, chunks := readTestFile(t, reporter)
	second := &chunks[1]
	second.GotWarning(4, `The local variable "unused" is declared but never used in the block.`)
	second.Done()
	want := []string{"\n" + filename + `:4: warning "The local variable \"unused\" is declared but never used in the block." does not match pattern "UNUSED_VARIABLE"`}
	if diff := cmp.Diff(want, reporter.take()); diff != "" {
		t.Errorf("mismatched warning (-want +got):\n%s", diff)
	}
}

func TestChunkedFileBadPattern(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "bad.gd")
	if err := os.WriteFile(filename, []byte("pass ### unquoted\n"), 0666); err != nil {
		t.Fatal(err)
	}
	reporter := &testReporter{}
	chunks := Read(filename, reporter)
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
	want := []string{"\n" + filename + ":1: not a quoted regexp: unquoted"}
	if diff := cmp.Diff(want, reporter.take()); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}
