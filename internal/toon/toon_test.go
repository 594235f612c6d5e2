package toon

import (
	"strings"
	"testing"

	"github.com/phobologic/pyscip/internal/model"
)

func TestEncodeValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", `""`},
		{"simple", "hello", "hello"},
		{"leading space", " hello", `" hello"`},
		{"trailing space", "hello ", `"hello "`},
		{"newline", "a\nb", `"a\nb"`},
		{"tab", "a\tb", `"a\tb"`},
		{"carriage return", "a\rb", `"a\rb"`},
		{"true keyword", "true", `"true"`},
		{"True keyword", "True", `"True"`},
		{"false keyword", "false", `"false"`},
		{"null keyword", "null", `"null"`},
		{"integer", "42", "42"},
		{"negative integer", "-1", "-1"},
		{"float", "3.14", "3.14"},
		{"zero", "0", "0"},
		{"leading zero invalid", "01", "01"},
		{"comma", "a,b", `"a,b"`},
		{"colon", "a:b", `"a:b"`},
		{"quote", `a"b`, `"a\"b"`},
		{"backslash", `a\b`, `"a\\b"`},
		{"bracket", "a[b", `"a[b"`},
		{"brace", "a{b", `"a{b"`},
		{"dash prefix", "-foo", `"-foo"`},
		{"path", "src/main.py", "src/main.py"},
		{"dotted name", "Foo.__init__", "Foo.__init__"},
		{"signature no special", "run(self) -> None", "run(self) -> None"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := encodeValue(tt.in)
			if got != tt.want {
				t.Errorf("encodeValue(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestEncodeIndex(t *testing.T) {
	t.Parallel()

	doc := model.NewDocument("shop/models.py", "shop.models")
	doc.AddSymbol(model.SymbolInformation{
		Symbol:        "shop.models unknown Cart#",
		Documentation: []string{"```python\nclass Cart\n```", "A cart.\n\nHolds items."},
	})
	doc.AddOccurrence(model.Occurrence{
		Symbol: "shop.models unknown Cart#",
		Range:  model.Range{Start: model.Position{Line: 0, Character: 6}, End: model.Position{Line: 0, Character: 10}},
		Role:   model.Definition,
	})
	idx := &model.Index{
		Metadata:  model.Metadata{ProjectName: "shop", ProjectVersion: "1.2.0", PythonVersion: "3.9"},
		Documents: []*model.Document{doc},
		Failures:  []model.Failure{{Path: "shop/bad.py", Reason: "unbalanced scope: x"}},
	}

	lines := strings.Split(EncodeIndex(idx), "\n")
	want := []string{
		"project: shop",
		"version: 1.2.0",
		"python: 3.9",
		"documents[1]{path,module,symbols,occurrences,diagnostics}:",
		"  shop/models.py,shop.models,1,1,0",
		"symbols[1]{file,symbol,summary}:",
		`  shop/models.py,shop.models unknown Cart#,A cart.`,
		"occurrences[1]{file,line,col,role,symbol}:",
		`  shop/models.py,1,6,definition,shop.models unknown Cart#`,
		"failures[1]{path,reason}:",
		`  shop/bad.py,"unbalanced scope: x"`,
	}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d:\n%s", len(lines), len(want), strings.Join(lines, "\n"))
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d: got %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestEncodeIndexEmpty(t *testing.T) {
	t.Parallel()

	got := EncodeIndex(&model.Index{})
	if !strings.Contains(got, "documents[0]{path,module,symbols,occurrences,diagnostics}:") {
		t.Errorf("expected empty documents section, got:\n%s", got)
	}
	if strings.Contains(got, "failures") {
		t.Errorf("failures section should be omitted, got:\n%s", got)
	}
}

func TestEncodeDepMap(t *testing.T) {
	t.Parallel()

	dm := &model.DepMap{
		Project: "shop",
		Files: []model.FileRank{
			{Path: "shop/models.py", Rank: 0.6},
			{Path: "shop/views.py", Rank: 0.4},
		},
		Dependencies: []model.Dependency{{
			Source:  "shop/views.py",
			Target:  "shop/models.py",
			Symbols: []string{"shop.models unknown Cart#", "shop.models unknown total()."},
		}},
	}

	want := `project: shop
files[2]{path,rank}:
  shop/models.py,0.6000
  shop/views.py,0.4000
dependencies[1]{source,target,symbols}:
  shop/views.py,shop/models.py,shop.models unknown Cart# | shop.models unknown total().`
	if got := EncodeDepMap(dm); got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}
