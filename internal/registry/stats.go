package registry

// Stats summarizes the database.
type Stats struct {
	Modules          int `json:"modules"`
	UpdatableModules int `json:"updatableModules"`
	Projects         int `json:"projects"`

	// Unmined projects have neither root hashes nor a last update: nobody
	// looked at their repository yet.
	Unmined int `json:"unmined"`
	// Inaccessible projects were looked at but yielded no root hashes.
	Inaccessible int `json:"inaccessible"`

	WithBuildSystem int            `json:"withBuildSystem"`
	BuildSystems    map[string]int `json:"buildSystems"`
	SupportsFlatpak int            `json:"supportsFlatpak"`

	RootSignatures int `json:"rootSignatures"`
	WithSiblings   int `json:"withSiblings"`

	// RecordBytes is the size of the record data loaded or written
	RecordBytes int64 `json:"recordBytes"`
}

// Stats computes statistics over the current index.
func (s *Store) Stats() Stats {
	stats := Stats{
		Modules:      len(s.modules),
		Projects:     len(s.projects),
		BuildSystems: make(map[string]int),
		RecordBytes:  s.recordBytes,
	}

	for _, m := range s.modules {
		if m.UsesExternalDataChecker() {
			stats.UpdatableModules++
		}
	}

	signatures := make(map[string]struct{})
	for _, p := range s.projects {
		if len(p.RootHashes) == 0 {
			if p.LastUpdated != nil {
				stats.Inaccessible++
			} else {
				stats.Unmined++
			}
		}
		if p.BuildSystems.Len() != 0 {
			stats.WithBuildSystem++
		}
		for buildSystem := range p.BuildSystems {
			stats.BuildSystems[buildSystem]++
		}
		if p.SupportsFlatpak() {
			stats.SupportsFlatpak++
		}

		signature := p.RootSignature()
		if signature == "" {
			continue
		}
		signatures[signature] = struct{}{}
		if p.HasSiblings() {
			stats.WithSiblings++
		}
	}
	stats.RootSignatures = len(signatures)
	return stats
}

// Percent returns part as a percentage of the project count, 0 when empty.
func (st Stats) Percent(part int) float64 {
	if st.Projects == 0 {
		return 0
	}
	return float64(part) / float64(st.Projects) * 100
}
