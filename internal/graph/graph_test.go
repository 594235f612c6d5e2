package graph

import (
	"math"
	"testing"

	"github.com/phobologic/pyscip/internal/model"
)

func occ(sym string, role model.Role, line int) model.Occurrence {
	return model.Occurrence{
		Symbol: sym,
		Role:   role,
		Range: model.Range{
			Start: model.Position{Line: line},
			End:   model.Position{Line: line, Character: 1},
		},
	}
}

func doc(path string, occs ...model.Occurrence) *model.Document {
	d := model.NewDocument(path, path)
	for _, o := range occs {
		d.AddOccurrence(o)
	}
	return d
}

func TestBuildGraphCrossFileRef(t *testing.T) {
	t.Parallel()

	idx := &model.Index{Documents: []*model.Document{
		doc("a.py", occ("b unknown foo().", model.ReadAccess, 0)),
		doc("b.py", occ("b unknown foo().", model.Definition, 0)),
	}}

	deps := BuildGraph(idx)
	if len(deps) != 1 {
		t.Fatalf("expected 1 dep, got %d", len(deps))
	}
	if deps[0].Source != "a.py" || deps[0].Target != "b.py" {
		t.Errorf("dep: %+v", deps[0])
	}
	if len(deps[0].Symbols) != 1 || deps[0].Symbols[0] != "b unknown foo()." {
		t.Errorf("symbols: %v", deps[0].Symbols)
	}
}

func TestBuildGraphNoSelfEdge(t *testing.T) {
	t.Parallel()

	idx := &model.Index{Documents: []*model.Document{
		doc("a.py",
			occ("a unknown foo().", model.Definition, 0),
			occ("a unknown foo().", model.ReadAccess, 1)),
	}}

	if deps := BuildGraph(idx); len(deps) != 0 {
		t.Errorf("expected 0 deps (no self-edges), got %d", len(deps))
	}
}

func TestBuildGraphIgnoresLocalsAndExternals(t *testing.T) {
	t.Parallel()

	idx := &model.Index{Documents: []*model.Document{
		doc("a.py",
			occ("local 0", model.ReadAccess, 0),
			occ("requests 2.31.0 get.", model.ReadAccess, 1)),
		doc("b.py", occ("local 0", model.Definition, 0)),
	}}

	if deps := BuildGraph(idx); len(deps) != 0 {
		t.Errorf("expected 0 deps, got %+v", deps)
	}
}

func TestRankUniform(t *testing.T) {
	t.Parallel()

	idx := &model.Index{Documents: []*model.Document{doc("c.py"), doc("a.py"), doc("b.py")}}
	ranks := Rank(idx, nil)

	expected := 1.0 / 3.0
	for _, r := range ranks {
		if math.Abs(r.Rank-expected) > 1e-9 {
			t.Errorf("%s rank = %f, want %f", r.Path, r.Rank, expected)
		}
	}
	if ranks[0].Path != "a.py" || ranks[2].Path != "c.py" {
		t.Errorf("ties should sort by path, got %+v", ranks)
	}
}

func TestRankWithEdges(t *testing.T) {
	t.Parallel()

	idx := &model.Index{Documents: []*model.Document{doc("a.py"), doc("b.py"), doc("c.py")}}
	deps := []model.Dependency{
		{Source: "a.py", Target: "b.py", Symbols: []string{"x"}},
		{Source: "c.py", Target: "b.py", Symbols: []string{"y"}},
	}

	ranks := Rank(idx, deps)

	// b.py should have highest rank (referenced by both a and c)
	if ranks[0].Path != "b.py" {
		t.Errorf("expected b.py first, got %s", ranks[0].Path)
	}

	var sum float64
	for _, r := range ranks {
		sum += r.Rank
	}
	if math.Abs(sum-1.0) > 0.01 {
		t.Errorf("ranks sum to %f, expected ~1.0", sum)
	}
	if ranks[0].Rank <= ranks[1].Rank {
		t.Errorf("b.py rank (%f) should be > second file rank (%f)", ranks[0].Rank, ranks[1].Rank)
	}
}

func TestRankEmpty(t *testing.T) {
	t.Parallel()
	if ranks := Rank(&model.Index{}, nil); ranks != nil {
		t.Errorf("expected nil, got %+v", ranks)
	}
}

func TestDefinitionsAndReferences(t *testing.T) {
	t.Parallel()

	const cart = "shop.models unknown Cart#"
	idx := &model.Index{Documents: []*model.Document{
		doc("shop/models.py", occ(cart, model.Definition, 3)),
		doc("shop/views.py",
			occ(cart, model.ReadAccess, 7),
			occ(cart, model.ReadAccess, 2),
			occ("local 1", model.Definition, 4)),
	}}

	defs := Definitions(idx, cart)
	if len(defs) != 1 || defs[0].Path != "shop/models.py" || defs[0].Range.Start.Line != 3 {
		t.Errorf("definitions: %+v", defs)
	}

	refs := References(idx, cart)
	if len(refs) != 3 {
		t.Fatalf("expected 3 references, got %d", len(refs))
	}
	if refs[1].Range.Start.Line != 2 || refs[2].Range.Start.Line != 7 {
		t.Errorf("references not in position order: %+v", refs)
	}

	if locs := References(idx, "local 1"); locs != nil {
		t.Errorf("local symbols should not be looked up, got %+v", locs)
	}
}
