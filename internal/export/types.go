// Package export writes the database out of its record tree: as a SQLite
// snapshot for querying, or as a zstd-compressed tar archive for backups.
package export

// Entry is one file of an archive
type Entry struct {
	// Path is relative to the database root, with forward slashes
	Path string `json:"path"`
	Size int64  `json:"size"`
}

// ArchiveResult summarizes an archive write or restore
type ArchiveResult struct {
	Path    string  `json:"path,omitempty"`
	Entries []Entry `json:"entries"`
	Bytes   int64   `json:"bytes"`
}

// Files returns the number of archived files
func (r *ArchiveResult) Files() int {
	return len(r.Entries)
}
