package main

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

var (
	statementPattern  = regexp.MustCompile(`(?is)^(select\s.*\bfrom\b|insert\s+into\s|update\s+\S+\s+set\s|delete\s+from\s|with\s+\w+\s+as\s*\(|create\s+(table|index|unique\s+index)\s)`)
	uuidMarkerPattern = regexp.MustCompile(`^--sql [0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)
)

type violation struct {
	file    string
	name    string
	line    int
	message string
}

func (v violation) String() string {
	return fmt.Sprintf("%s:%d %s (%s)", v.file, v.line, v.message, v.name)
}

type markerSite struct {
	file string
	line int
	name string
}

// linter collects violations across files so a marker reused in a second
// file is still reported.
type linter struct {
	seen       map[string]markerSite
	violations []violation
}

func newLinter() *linter {
	return &linter{seen: make(map[string]markerSite)}
}

func (l *linter) lintPath(target string) error {
	info, err := os.Stat(target)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		if filepath.Ext(target) != ".go" {
			return nil
		}
		return l.lintFile(target, nil)
	}
	return filepath.WalkDir(target, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != target && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") || name == "vendor" || name == "node_modules" || name == "testdata") {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".go" {
			return nil
		}
		return l.lintFile(path, nil)
	})
}

// lintFile checks every string constant or variable in a Go file. src may
// be nil, in which case the file is read from disk.
func (l *linter) lintFile(path string, src any) error {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, src, 0)
	if err != nil {
		return err
	}
	ast.Inspect(file, func(n ast.Node) bool {
		vs, ok := n.(*ast.ValueSpec)
		if !ok {
			return true
		}
		for i, value := range vs.Values {
			bl, ok := value.(*ast.BasicLit)
			if !ok || bl.Kind != token.STRING {
				continue
			}
			raw, err := unquote(bl.Value)
			if err != nil {
				continue
			}
			name := joinNames(vs.Names)
			if i < len(vs.Names) && vs.Names[i] != nil {
				name = vs.Names[i].Name
			}
			l.check(path, fset.Position(bl.Pos()).Line, name, raw)
		}
		return true
	})
	return nil
}

func (l *linter) check(path string, line int, name, raw string) {
	first, body := splitFirstLine(raw)
	marked := strings.HasPrefix(first, "--sql")
	if !marked && !statementPattern.MatchString(strings.TrimSpace(raw)) {
		return
	}
	if !uuidMarkerPattern.MatchString(first) {
		l.violations = append(l.violations, violation{file: path, line: line, name: name, message: "missing or invalid --sql <uuid> marker"})
		return
	}
	if strings.TrimSpace(body) == "" {
		l.violations = append(l.violations, violation{file: path, line: line, name: name, message: "marker without a statement"})
		return
	}
	marker := strings.TrimPrefix(first, "--sql ")
	if prev, dup := l.seen[marker]; dup {
		l.violations = append(l.violations, violation{
			file:    path,
			line:    line,
			name:    name,
			message: fmt.Sprintf("marker %s already used by %s at %s:%d", marker, prev.name, prev.file, prev.line),
		})
		return
	}
	l.seen[marker] = markerSite{file: path, line: line, name: name}
}

func splitFirstLine(s string) (string, string) {
	s = strings.TrimLeft(s, "\n\r \t")
	if idx := strings.IndexAny(s, "\n\r"); idx >= 0 {
		return strings.TrimSpace(s[:idx]), s[idx+1:]
	}
	return strings.TrimSpace(s), ""
}

func unquote(v string) (string, error) {
	if len(v) == 0 {
		return v, nil
	}
	if v[0] == '`' {
		return v[1 : len(v)-1], nil
	}
	return strconv.Unquote(v)
}

func joinNames(idents []*ast.Ident) string {
	parts := make([]string, 0, len(idents))
	for _, ident := range idents {
		if ident == nil {
			continue
		}
		parts = append(parts, ident.Name)
	}
	return strings.Join(parts, ",")
}
