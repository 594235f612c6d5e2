// Package ranking narrows a ranked dependency map to the files that matter.
package ranking

import (
	"strings"

	"github.com/phobologic/pyscip/internal/model"
)

// SelectFiles returns a new DepMap with only the top-ranked files.
// If maxFiles is <= 0 or >= len(files), dm is returned unchanged.
func SelectFiles(dm *model.DepMap, maxFiles int) *model.DepMap {
	if maxFiles <= 0 || maxFiles >= len(dm.Files) {
		return dm
	}

	selected := dm.Files[:maxFiles]
	selectedPaths := make(map[string]struct{}, maxFiles)
	for i := range selected {
		selectedPaths[selected[i].Path] = struct{}{}
	}

	var deps []model.Dependency
	for i := range dm.Dependencies {
		d := &dm.Dependencies[i]
		_, srcOK := selectedPaths[d.Source]
		_, tgtOK := selectedPaths[d.Target]
		if srcOK && tgtOK {
			deps = append(deps, *d)
		}
	}

	return &model.DepMap{
		Project:      dm.Project,
		Files:        selected,
		Dependencies: deps,
	}
}

// FilterByFile returns a new DepMap containing only files whose path
// contains substr (case-insensitive), with all dependency edges touching
// those files.
func FilterByFile(dm *model.DepMap, substr string) *model.DepMap {
	lower := strings.ToLower(substr)

	matched := make(map[string]struct{})
	var files []model.FileRank
	for i := range dm.Files {
		if strings.Contains(strings.ToLower(dm.Files[i].Path), lower) {
			matched[dm.Files[i].Path] = struct{}{}
			files = append(files, dm.Files[i])
		}
	}

	var deps []model.Dependency
	for i := range dm.Dependencies {
		d := &dm.Dependencies[i]
		_, srcOK := matched[d.Source]
		_, tgtOK := matched[d.Target]
		if srcOK || tgtOK {
			deps = append(deps, *d)
		}
	}

	return &model.DepMap{
		Project:      dm.Project,
		Files:        files,
		Dependencies: deps,
	}
}

// FilterBySymbol returns a new DepMap containing the edges that carry a
// symbol containing substr (case-sensitive, as symbols are), each edge
// trimmed to the matching symbols, and the files those edges touch.
func FilterBySymbol(dm *model.DepMap, substr string) *model.DepMap {
	touched := make(map[string]struct{})
	var deps []model.Dependency
	for i := range dm.Dependencies {
		d := &dm.Dependencies[i]
		var syms []string
		for _, s := range d.Symbols {
			if strings.Contains(s, substr) {
				syms = append(syms, s)
			}
		}
		if len(syms) == 0 {
			continue
		}
		deps = append(deps, model.Dependency{Source: d.Source, Target: d.Target, Symbols: syms})
		touched[d.Source] = struct{}{}
		touched[d.Target] = struct{}{}
	}

	var files []model.FileRank
	for i := range dm.Files {
		if _, ok := touched[dm.Files[i].Path]; ok {
			files = append(files, dm.Files[i])
		}
	}

	return &model.DepMap{
		Project:      dm.Project,
		Files:        files,
		Dependencies: deps,
	}
}
