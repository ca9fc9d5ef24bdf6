package testutil

import (
	"fpm/internal/modules"
	"fpm/internal/project"
)

// SampleProject returns a project hosted at https://example.org/<id>.git
// with the given root hashes.
func SampleProject(id string, rootHashes ...string) *project.Project {
	p := project.New(id, "https://example.org/"+id+".git", id)
	p.RootHashes = append([]string{}, rootHashes...)
	return p
}

// SampleModule returns a meson module building name from git.
func SampleModule(name string) *modules.Module {
	return modules.NewModule(modules.Description{
		Name:        name,
		BuildSystem: modules.BuildSystemMeson,
		Sources: []modules.Source{{
			Type: modules.SourceGit,
			URL:  "https://example.org/" + name + ".git",
			Tag:  "v1.0.0",
		}},
	}, "")
}
