package architecture_test

import (
	"bufio"
	"fmt"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"testing"
)

// layers maps a source prefix to the internal packages it may not import.
// Dependencies point inward: http -> services -> data -> domain, with
// platform and generation usable from the layers above them. Platform never
// reaches into generation.
var layers = []struct {
	prefix string
	banned []string
}{
	{"internal/domain/", []string{"app", "http/", "services", "data/", "platform/", "generation/"}},
	{"internal/platform/", []string{"app", "http/", "services", "data/", "generation/"}},
	{"internal/pkg/", []string{"app", "http/", "services", "data/", "generation/"}},
	{"internal/generation/", []string{"app", "http/", "services", "data/"}},
	{"internal/data/", []string{"app", "http/", "services", "generation/"}},
	{"internal/services/", []string{"app", "http/"}},
	{"internal/http/", []string{"app", "data/"}},
}

func TestImportBoundaries(t *testing.T) {
	root := moduleRoot(t)
	modulePath, err := readModulePath(filepath.Join(root, "go.mod"))
	if err != nil {
		t.Fatalf("read module path: %v", err)
	}

	var violations []string
	fset := token.NewFileSet()
	err = filepath.WalkDir(filepath.Join(root, "internal"), func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		// tests may reach across layers to build fixtures
		if !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		banned := bannedFor(modulePath, rel)
		if len(banned) == 0 {
			return nil
		}

		f, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
		if err != nil {
			return err
		}
		for _, is := range f.Imports {
			imp, err := strconv.Unquote(is.Path.Value)
			if err != nil {
				continue
			}
			for _, b := range banned {
				if strings.HasPrefix(imp, b) {
					violations = append(violations, fmt.Sprintf("%s imports %s", rel, imp))
					break
				}
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walk internal/: %v", err)
	}

	if len(violations) > 0 {
		sort.Strings(violations)
		t.Fatalf("import boundary violations:\n  %s", strings.Join(violations, "\n  "))
	}
}

func bannedFor(modulePath, rel string) []string {
	for _, l := range layers {
		if !strings.HasPrefix(rel, l.prefix) {
			continue
		}
		out := make([]string, 0, len(l.banned))
		for _, b := range l.banned {
			out = append(out, modulePath+"/internal/"+b)
		}
		return out
	}
	return nil
}

func moduleRoot(t *testing.T) string {
	t.Helper()
	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatalf("go.mod not found above working directory")
		}
		dir = parent
	}
}

func readModulePath(goModPath string) (string, error) {
	f, err := os.Open(goModPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if mp, ok := strings.CutPrefix(strings.TrimSpace(sc.Text()), "module "); ok {
			return strings.TrimSpace(mp), nil
		}
	}
	if err := sc.Err(); err != nil {
		return "", err
	}
	return "", fmt.Errorf("module directive not found in %s", goModPath)
}
