package architecture_test

import (
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

const modulePath = "github.com/yungbote/supplesafe-backend"

// layerRule forbids packages under dir from importing any of the listed internal trees.
type layerRule struct {
	dir    string
	forbid []string
}

var layerRules = []layerRule{
	{dir: "internal/domain", forbid: []string{"data", "modules", "services", "http", "app", "clients", "realtime"}},
	{dir: "internal/pkg", forbid: []string{"data", "modules", "services", "http", "app", "clients", "realtime"}},
	{dir: "internal/platform", forbid: []string{"data", "modules", "services", "http", "app"}},
	{dir: "internal/data", forbid: []string{"modules", "services", "http", "app", "clients", "realtime"}},
	{dir: "internal/clients", forbid: []string{"data", "modules", "services", "http", "app", "realtime"}},
	{dir: "internal/realtime", forbid: []string{"data", "modules", "services", "http", "app"}},
	{dir: "internal/modules", forbid: []string{"data", "services", "http", "app"}},
	{dir: "internal/services", forbid: []string{"http", "app"}},
	{dir: "internal/http", forbid: []string{"app", "data"}},
	{dir: "internal/observability", forbid: []string{"data", "modules", "services", "http", "app"}},
}

func TestLayerImports(t *testing.T) {
	root := moduleRoot(t)
	fset := token.NewFileSet()

	var problems []string
	for _, rule := range layerRules {
		base := filepath.Join(root, filepath.FromSlash(rule.dir))
		if _, err := os.Stat(base); os.IsNotExist(err) {
			continue
		}
		err := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() || !strings.HasSuffix(path, ".go") {
				return err
			}
			// tests may wire across layers
			if strings.HasSuffix(path, "_test.go") {
				return nil
			}
			f, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
			if err != nil {
				return err
			}
			rel, _ := filepath.Rel(root, path)
			for _, spec := range f.Imports {
				imp, err := strconv.Unquote(spec.Path.Value)
				if err != nil {
					continue
				}
				if tree := forbiddenTree(imp, rule.forbid); tree != "" {
					problems = append(problems, filepath.ToSlash(rel)+" imports "+imp+" (internal/"+tree+" is off limits)")
				}
			}
			return nil
		})
		if err != nil {
			t.Fatalf("walk %s: %v", rule.dir, err)
		}
	}

	if len(problems) > 0 {
		sort.Strings(problems)
		t.Fatalf("layer violations:\n  %s", strings.Join(problems, "\n  "))
	}
}

func TestModulePathMatchesGoMod(t *testing.T) {
	raw, err := os.ReadFile(filepath.Join(moduleRoot(t), "go.mod"))
	if err != nil {
		t.Fatalf("read go.mod: %v", err)
	}
	first := strings.SplitN(string(raw), "\n", 2)[0]
	if strings.TrimSpace(strings.TrimPrefix(first, "module")) != modulePath {
		t.Fatalf("go.mod declares %q, rules assume %q", first, modulePath)
	}
}

func forbiddenTree(imp string, forbid []string) string {
	prefix := modulePath + "/internal/"
	if !strings.HasPrefix(imp, prefix) {
		return ""
	}
	rest := strings.TrimPrefix(imp, prefix)
	for _, tree := range forbid {
		if rest == tree || strings.HasPrefix(rest, tree+"/") {
			return tree
		}
	}
	return ""
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
			t.Fatalf("go.mod not found above %s", dir)
		}
		dir = parent
	}
}
