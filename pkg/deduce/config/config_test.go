package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/cognicore/deduce/pkg/deduce/internalerr"
	"github.com/cognicore/deduce/pkg/deduce/prover"
	"github.com/cognicore/deduce/pkg/deduce/rewrite"
)

const miuYAML = `
name: miu-yaml
max_depth: 8
axioms: [MI]
rules:
  - name: "1"
    pattern: "^(.*I)$"
    replace: "${1}U"
  - name: "2"
    pattern: "^M(.*)$"
    replace: "M${1}${1}"
  - name: "3"
    pattern: "III"
    replace: "U"
  - name: "4"
    pattern: "UU"
    replace: ""
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadSystem(t *testing.T) {
	sf, err := LoadSystem(writeFile(t, "miu.yaml", miuYAML))
	if err != nil {
		t.Fatalf("LoadSystem: %v", err)
	}

	if sf.Name != "miu-yaml" || sf.MaxDepth != 8 {
		t.Errorf("Unexpected header: %+v", sf)
	}
	if len(sf.Rules) != 4 {
		t.Fatalf("Expected 4 rules, got %d", len(sf.Rules))
	}

	sys, err := sf.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	res, err := sys.Prover().FindProof("MIIU", sf.MaxDepth)
	if err != nil {
		t.Fatalf("FindProof: %v", err)
	}
	if !res.Found() {
		t.Errorf("Expected MIIU to be derivable, got %v", res.Status)
	}
}

func TestLoadSystemMissingFile(t *testing.T) {
	if _, err := LoadSystem(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Expected error for a missing file")
	}
}

func TestBuildRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"no axioms":      "rules: []",
		"duplicate rule": "axioms: [A]\nrules:\n  - {name: r, pattern: a, replace: b}\n  - {name: r, pattern: b, replace: c}",
		"unnamed rule":   "axioms: [A]\nrules:\n  - {pattern: a, replace: b}",
		"bad pattern":    "axioms: [A]\nrules:\n  - {name: r, pattern: '(', replace: b}",
		"negative depth": "axioms: [A]\nmax_depth: -1",
	}

	for name, doc := range cases {
		sf, err := ParseSystem([]byte(doc))
		if err != nil {
			t.Fatalf("%s: ParseSystem: %v", name, err)
		}
		if _, err := sf.Build(); !errors.Is(err, internalerr.ErrInvalidConfig) {
			t.Errorf("%s: expected ErrInvalidConfig, got %v", name, err)
		}
	}
}

func TestParseSystemBadYAML(t *testing.T) {
	if _, err := ParseSystem([]byte("axioms: [")); !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
}

func TestLoaderDefaults(t *testing.T) {
	comp, err := (&Loader{}).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if comp.System.Name != "miu" {
		t.Errorf("Expected built-in MIU system, got %q", comp.System.Name)
	}
	if comp.MaxDepth != rewrite.MIUMaxDepth {
		t.Errorf("MaxDepth = %d, want the MIU bound %d", comp.MaxDepth, rewrite.MIUMaxDepth)
	}
	if comp.KBMaxDepth != prover.DefaultMaxDepth {
		t.Errorf("KBMaxDepth = %d, want %d", comp.KBMaxDepth, prover.DefaultMaxDepth)
	}

	comp, err = (&Loader{MaxDepth: 3}).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if comp.MaxDepth != 3 {
		t.Errorf("MaxDepth = %d, want the override 3", comp.MaxDepth)
	}
}

func TestLoaderSystemWithoutDepth(t *testing.T) {
	loader := Loader{SystemPath: writeFile(t, "s.yaml", "axioms: [A]\nrules:\n  - {name: r, pattern: A, replace: AB}\n")}
	comp, err := loader.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if comp.MaxDepth != prover.DefaultMaxDepth {
		t.Errorf("MaxDepth = %d, want %d", comp.MaxDepth, prover.DefaultMaxDepth)
	}
	if len(comp.Inference.Facts()) != 0 {
		t.Error("Expected empty knowledge base")
	}
}

func TestLoaderFiles(t *testing.T) {
	loader := Loader{
		SystemPath: writeFile(t, "miu.yaml", miuYAML),
		RulesPath:  writeFile(t, "kb.rules", "is_a(bert, transformer)\nis_a(transformer, model)\n"),
		DBPath:     "proofs.db",
	}

	comp, err := loader.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if comp.MaxDepth != 8 {
		t.Errorf("MaxDepth = %d, want the file's 8", comp.MaxDepth)
	}
	if comp.DBPath != "proofs.db" {
		t.Errorf("DBPath = %q", comp.DBPath)
	}
	if ok, _ := comp.Inference.Query("is_a", "bert", "model"); !ok {
		t.Error("Expected rules file to be loaded")
	}

	loader.MaxDepth = 3
	comp, err = loader.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if comp.MaxDepth != 3 {
		t.Errorf("MaxDepth = %d, want the override 3", comp.MaxDepth)
	}
}

func TestLoaderBadRules(t *testing.T) {
	loader := Loader{RulesPath: writeFile(t, "kb.rules", "not a fact\n")}
	if _, err := loader.Load(); err == nil {
		t.Error("Expected rules parse error")
	}
}
