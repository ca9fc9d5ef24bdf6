package modules

import "strings"

// Build systems understood by flatpak-builder
const (
	BuildSystemAutotools  = "autotools"
	BuildSystemCMake      = "cmake"
	BuildSystemCMakeNinja = "cmake-ninja"
	BuildSystemMeson      = "meson"
	BuildSystemQMake      = "qmake"
	BuildSystemSimple     = "simple"
)

var flatpakBuildSystems = map[string]bool{
	BuildSystemAutotools:  true,
	BuildSystemCMake:      true,
	BuildSystemCMakeNinja: true,
	BuildSystemMeson:      true,
	BuildSystemQMake:      true,
	BuildSystemSimple:     true,
}

// ParseBuildSystem normalizes name and reports whether flatpak-builder supports it.
func ParseBuildSystem(name string) (string, bool) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	if !flatpakBuildSystems[normalized] {
		return "", false
	}
	return normalized, true
}
