package modules

// Module is a stored build module. Modules form a shared, content-addressed
// pool: a module is identified by the fingerprint of its description, and
// ProjectID is only a provenance hint.
type Module struct {
	// ProjectID is the ID of the project the module was discovered in, if known
	ProjectID *string `yaml:"project_id,omitempty" json:"projectId,omitempty"`

	// FlatpakModule is the module description itself
	FlatpakModule Description `yaml:"flatpak_module" json:"flatpakModule"`
}

// Description is a Flatpak module definition.
type Description struct {
	Name          string        `yaml:"name" json:"name"`
	BuildSystem   string        `yaml:"buildsystem,omitempty" json:"buildsystem,omitempty"`
	ConfigOpts    []string      `yaml:"config-opts,omitempty" json:"config-opts,omitempty"`
	BuildCommands []string      `yaml:"build-commands,omitempty" json:"build-commands,omitempty"`
	Cleanup       []string      `yaml:"cleanup,omitempty" json:"cleanup,omitempty"`
	Sources       []Source      `yaml:"sources,omitempty" json:"sources,omitempty"`
	Modules       []Description `yaml:"modules,omitempty" json:"modules,omitempty"`
}

// Source is one source item of a module description.
type Source struct {
	Type         string                 `yaml:"type" json:"type"`
	URL          string                 `yaml:"url,omitempty" json:"url,omitempty"`
	Branch       string                 `yaml:"branch,omitempty" json:"branch,omitempty"`
	Tag          string                 `yaml:"tag,omitempty" json:"tag,omitempty"`
	Commit       string                 `yaml:"commit,omitempty" json:"commit,omitempty"`
	SHA256       string                 `yaml:"sha256,omitempty" json:"sha256,omitempty"`
	Path         string                 `yaml:"path,omitempty" json:"path,omitempty"`
	XCheckerData map[string]interface{} `yaml:"x-checker-data,omitempty" json:"x-checker-data,omitempty"`
}

// Source types
const (
	SourceGit     = "git"
	SourceArchive = "archive"
	SourceFile    = "file"
	SourceDir     = "dir"
	SourcePatch   = "patch"
	SourceScript  = "script"
)

// NewModule wraps a description into a module record.
func NewModule(description Description, projectID string) *Module {
	m := &Module{FlatpakModule: description}
	if projectID != "" {
		m.ProjectID = &projectID
	}
	return m
}

// Name returns the module name
func (m *Module) Name() string {
	return m.FlatpakModule.Name
}

// UsesExternalDataChecker reports whether any source, including those of
// nested modules, carries x-checker-data and can therefore be updated
// automatically.
func (m *Module) UsesExternalDataChecker() bool {
	return m.FlatpakModule.usesExternalDataChecker()
}

func (d *Description) usesExternalDataChecker() bool {
	for _, source := range d.Sources {
		if len(source.XCheckerData) > 0 {
			return true
		}
	}
	for i := range d.Modules {
		if d.Modules[i].usesExternalDataChecker() {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the module.
func (m *Module) Clone() *Module {
	if m == nil {
		return nil
	}
	clone := &Module{FlatpakModule: m.FlatpakModule.Clone()}
	if m.ProjectID != nil {
		id := *m.ProjectID
		clone.ProjectID = &id
	}
	return clone
}

// Clone returns a deep copy of the description.
func (d Description) Clone() Description {
	clone := Description{
		Name:          d.Name,
		BuildSystem:   d.BuildSystem,
		ConfigOpts:    cloneStrings(d.ConfigOpts),
		BuildCommands: cloneStrings(d.BuildCommands),
		Cleanup:       cloneStrings(d.Cleanup),
	}
	if d.Sources != nil {
		clone.Sources = make([]Source, len(d.Sources))
		for i, source := range d.Sources {
			clone.Sources[i] = source
			if source.XCheckerData != nil {
				clone.Sources[i].XCheckerData = cloneValue(source.XCheckerData).(map[string]interface{})
			}
		}
	}
	if d.Modules != nil {
		clone.Modules = make([]Description, len(d.Modules))
		for i, nested := range d.Modules {
			clone.Modules[i] = nested.Clone()
		}
	}
	return clone
}

func cloneStrings(values []string) []string {
	if values == nil {
		return nil
	}
	return append([]string(nil), values...)
}

// cloneValue copies the generic values produced by decoding free-form YAML
func cloneValue(v interface{}) interface{} {
	switch value := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(value))
		for k, item := range value {
			out[k] = cloneValue(item)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(value))
		for i, item := range value {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return value
	}
}
