package main

import (
	"strings"
	"testing"
)

func TestLintFile(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{
			name: "marked statement",
			src:  "package q\nconst QGet = `--sql 0b7a6c1e-3f0e-4c55-9a60-2f3f6f1d9a10\nselect value from kv where key = $1;`\n",
		},
		{
			name: "unmarked statement",
			src:  "package q\nconst QGet = `select value from kv where key = $1`\n",
			want: []string{"missing or invalid --sql <uuid> marker"},
		},
		{
			name: "malformed marker",
			src:  "package q\nconst QGet = \"--sql not-a-uuid\\ndelete from kv where key = $1\"\n",
			want: []string{"missing or invalid --sql <uuid> marker"},
		},
		{
			name: "marker only",
			src:  "package q\nconst QGet = `--sql 0b7a6c1e-3f0e-4c55-9a60-2f3f6f1d9a10\n`\n",
			want: []string{"marker without a statement"},
		},
		{
			name: "prose is ignored",
			src:  "package q\nconst usage = `delete one sketch and its image`\nvar help = \"select a style first\"\n",
		},
		{
			name: "create table",
			src:  "package q\nconst QCreate = `create table if not exists kv (key text primary key)`\n",
			want: []string{"missing or invalid --sql <uuid> marker"},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			l := newLinter()
			if err := l.lintFile("q.go", tc.src); err != nil {
				t.Fatalf("lintFile: %v", err)
			}
			if len(l.violations) != len(tc.want) {
				t.Fatalf("violations = %v, want %v", l.violations, tc.want)
			}
			for i, v := range l.violations {
				if v.message != tc.want[i] {
					t.Fatalf("violation %d = %q, want %q", i, v.message, tc.want[i])
				}
			}
		})
	}
}

func TestLintDuplicateMarkerAcrossFiles(t *testing.T) {
	l := newLinter()
	first := "package q\nconst QA = `--sql 0b7a6c1e-3f0e-4c55-9a60-2f3f6f1d9a10\nselect 1;`\n"
	second := "package q\nconst QB = `--sql 0b7a6c1e-3f0e-4c55-9a60-2f3f6f1d9a10\nselect 2;`\n"
	if err := l.lintFile("a.go", first); err != nil {
		t.Fatalf("lint a.go: %v", err)
	}
	if err := l.lintFile("b.go", second); err != nil {
		t.Fatalf("lint b.go: %v", err)
	}
	if len(l.violations) != 1 {
		t.Fatalf("violations = %v", l.violations)
	}
	v := l.violations[0]
	if v.file != "b.go" || v.name != "QB" || !strings.Contains(v.message, "QA at a.go:2") {
		t.Fatalf("violation = %+v", v)
	}
}

func TestLintRepositoryQueries(t *testing.T) {
	l := newLinter()
	if err := l.lintPath("../../sqlinline"); err != nil {
		t.Fatalf("lintPath: %v", err)
	}
	if len(l.violations) != 0 {
		t.Fatalf("repository queries have violations: %v", l.violations)
	}
}
