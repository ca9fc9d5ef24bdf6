package project

import (
	"fpm/internal/modules"
)

// DefaultModules derives one module description per build system of the
// project that flatpak-builder supports, each building the main repository
// from git. Build systems Flatpak cannot drive are skipped.
func (p *Project) DefaultModules() []modules.Description {
	source := modules.Source{
		Type: modules.SourceGit,
		URL:  p.VCSURL,
	}
	if p.MainBranch != nil {
		source.Branch = *p.MainBranch
	}

	var derived []modules.Description
	for _, name := range p.BuildSystems.Sorted() {
		buildSystem, ok := modules.ParseBuildSystem(name)
		if !ok {
			continue
		}
		derived = append(derived, modules.Description{
			Name:        p.ID,
			BuildSystem: buildSystem,
			Sources:     []modules.Source{source},
		})
	}
	return derived
}
