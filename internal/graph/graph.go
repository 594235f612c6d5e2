// Package graph builds the file dependency graph of an index, ranks files
// with PageRank and answers definition and reference lookups.
package graph

import (
	"math"
	"sort"

	"github.com/phobologic/pyscip/internal/model"
	"github.com/phobologic/pyscip/internal/symbol"
)

// BuildGraph creates dependency edges from cross-file symbol references:
// a file depends on every other file that defines a symbol it references.
// Local symbols never create edges.
func BuildGraph(idx *model.Index) []model.Dependency {
	// Build definition index: symbol → set of files that define it
	defines := make(map[string]map[string]struct{})
	for _, doc := range idx.Documents {
		for _, occ := range doc.Occurrences {
			if !occ.Role.Has(model.Definition) || symbol.IsLocalString(occ.Symbol) {
				continue
			}
			if defines[occ.Symbol] == nil {
				defines[occ.Symbol] = make(map[string]struct{})
			}
			defines[occ.Symbol][doc.RelativePath] = struct{}{}
		}
	}

	// Build edges: source → target → list of symbols
	type edgeKey struct{ src, tgt string }
	edgeSymbols := make(map[edgeKey][]string)

	for _, doc := range idx.Documents {
		for _, occ := range doc.Occurrences {
			if occ.Role.Has(model.Definition) {
				continue
			}
			defFiles := defines[occ.Symbol]
			if defFiles == nil {
				continue
			}
			// Iterate in sorted order for determinism
			for _, defFile := range sortedKeys(defFiles) {
				if defFile == doc.RelativePath {
					continue // no self-edges
				}
				key := edgeKey{doc.RelativePath, defFile}
				if !contains(edgeSymbols[key], occ.Symbol) {
					edgeSymbols[key] = append(edgeSymbols[key], occ.Symbol)
				}
			}
		}
	}

	var deps []model.Dependency
	for key, syms := range edgeSymbols {
		deps = append(deps, model.Dependency{
			Source:  key.src,
			Target:  key.tgt,
			Symbols: syms,
		})
	}

	// Sort for deterministic output
	sort.Slice(deps, func(i, j int) bool {
		if deps[i].Source != deps[j].Source {
			return deps[i].Source < deps[j].Source
		}
		return deps[i].Target < deps[j].Target
	})

	return deps
}

// Rank applies PageRank over the documents of idx and returns every file
// sorted by rank descending, ties broken by path.
func Rank(idx *model.Index, deps []model.Dependency) []model.FileRank {
	if len(idx.Documents) == 0 {
		return nil
	}

	ranks := make([]model.FileRank, len(idx.Documents))
	for i, doc := range idx.Documents {
		ranks[i].Path = doc.RelativePath
	}

	if len(deps) == 0 {
		uniform := 1.0 / float64(len(ranks))
		for i := range ranks {
			ranks[i].Rank = uniform
		}
		sortRanks(ranks)
		return ranks
	}

	// Edge from source to target means source references target.
	outEdges := make(map[string][]string) // node → list of targets (with repeats for multi-edges)
	outDegree := make(map[string]int)     // total out-edges per node
	nodes := make(map[string]struct{})

	for i := range ranks {
		nodes[ranks[i].Path] = struct{}{}
	}

	for _, d := range deps {
		// Each symbol is an edge
		for range d.Symbols {
			outEdges[d.Source] = append(outEdges[d.Source], d.Target)
			outDegree[d.Source]++
		}
	}

	scores := pageRank(nodes, outEdges, outDegree, 0.85, 100, 1e-6)
	for i := range ranks {
		ranks[i].Rank = scores[ranks[i].Path]
	}
	sortRanks(ranks)
	return ranks
}

func sortRanks(ranks []model.FileRank) {
	sort.SliceStable(ranks, func(i, j int) bool {
		if ranks[i].Rank != ranks[j].Rank {
			return ranks[i].Rank > ranks[j].Rank
		}
		return ranks[i].Path < ranks[j].Path
	})
}

func pageRank(
	nodes map[string]struct{},
	outEdges map[string][]string,
	outDegree map[string]int,
	alpha float64,
	maxIter int,
	tol float64,
) map[string]float64 {
	n := len(nodes)
	if n == 0 {
		return nil
	}

	rank := make(map[string]float64, n)
	initial := 1.0 / float64(n)
	for node := range nodes {
		rank[node] = initial
	}

	teleport := (1.0 - alpha) / float64(n)

	for iter := 0; iter < maxIter; iter++ {
		newRank := make(map[string]float64, n)

		// Dangling node contribution (nodes with no outgoing edges)
		var danglingSum float64
		for node := range nodes {
			if outDegree[node] == 0 {
				danglingSum += rank[node]
			}
		}
		danglingContrib := alpha * danglingSum / float64(n)

		for node := range nodes {
			newRank[node] = teleport + danglingContrib
		}

		// Distribute rank through edges
		for src, targets := range outEdges {
			deg := float64(outDegree[src])
			contrib := alpha * rank[src] / deg
			for _, tgt := range targets {
				newRank[tgt] += contrib
			}
		}

		// Check convergence
		var diff float64
		for node := range nodes {
			diff += math.Abs(newRank[node] - rank[node])
		}

		rank = newRank

		if diff < tol {
			break
		}
	}

	return rank
}

// Definitions returns the definition occurrences of sym across idx.
func Definitions(idx *model.Index, sym string) []model.Location {
	return lookup(idx, sym, true)
}

// References returns every occurrence of sym across idx, definitions
// included, in path and position order.
func References(idx *model.Index, sym string) []model.Location {
	return lookup(idx, sym, false)
}

func lookup(idx *model.Index, sym string, defsOnly bool) []model.Location {
	if symbol.IsLocalString(sym) {
		return nil
	}
	var locs []model.Location
	for _, doc := range idx.Documents {
		for _, occ := range doc.Occurrences {
			if occ.Symbol != sym || defsOnly && !occ.Role.Has(model.Definition) {
				continue
			}
			locs = append(locs, model.Location{Path: doc.RelativePath, Range: occ.Range, Role: occ.Role})
		}
	}
	sort.SliceStable(locs, func(i, j int) bool {
		a, b := locs[i], locs[j]
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		if a.Range.Start.Line != b.Range.Start.Line {
			return a.Range.Start.Line < b.Range.Start.Line
		}
		return a.Range.Start.Character < b.Range.Start.Character
	})
	return locs
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func contains(slice []string, s string) bool {
	for _, v := range slice {
		if v == s {
			return true
		}
	}
	return false
}
