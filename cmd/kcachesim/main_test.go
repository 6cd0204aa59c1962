/*
Copyright 2026 Vimeo Inc.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

     http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestRunPrintsOneRowPerPolicy(t *testing.T) {
	var out bytes.Buffer
	args := []string{"-policies", "lru,lruk", "-capacity", "32", "-pattern", "uniform"}
	if err := run(args, &out); err != nil {
		t.Fatalf("run(%q): %s", args, err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines of output; want a header and 2 rows:\n%s", len(lines), out.String())
	}
	if !strings.HasPrefix(lines[1], "lru ") || !strings.HasPrefix(lines[2], "lruk ") {
		t.Errorf("unexpected rows:\n%s", out.String())
	}
}

func TestRunRejectsUnknownPolicy(t *testing.T) {
	var out bytes.Buffer
	err := run([]string{"-policies", "mru"}, &out)
	if err == nil || !strings.Contains(err.Error(), "mru") {
		t.Errorf("run with unknown policy returned %v", err)
	}
}
