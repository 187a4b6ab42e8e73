package fingerprint

// Occurrence records one file carrying a fingerprint. Author and Date are
// attached later, only for fingerprints that turn out to be duplicated.
type Occurrence struct {
	Project string `json:"project"`
	File    string `json:"file"`
	Author  string `json:"author,omitempty"`
	Date    string `json:"date,omitempty"`
}

// Entry accumulates every occurrence of one fingerprint during a scan.
type Entry struct {
	Fingerprint string
	LineCount   int
	Occurrences []Occurrence
}

// Frequency is the number of occurrences sharing the fingerprint.
func (e *Entry) Frequency() int { return len(e.Occurrences) }

// Index maps fingerprints to entries and remembers the order in which
// fingerprints were first seen. It is not safe for concurrent use; scans
// serialize all Add calls.
type Index struct {
	byFingerprint map[string]*Entry
	order         []*Entry
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{byFingerprint: make(map[string]*Entry)}
}

// Add appends occ under fp, creating the entry on first sight. The line
// count of an entry is fixed by its first insertion.
func (idx *Index) Add(fp string, lineCount int, occ Occurrence) {
	e, ok := idx.byFingerprint[fp]
	if !ok {
		e = &Entry{Fingerprint: fp, LineCount: lineCount}
		idx.byFingerprint[fp] = e
		idx.order = append(idx.order, e)
	}
	e.Occurrences = append(e.Occurrences, occ)
}

// Get returns the entry for fp, or nil.
func (idx *Index) Get(fp string) *Entry {
	return idx.byFingerprint[fp]
}

// Entries returns all entries in discovery order.
func (idx *Index) Entries() []*Entry {
	out := make([]*Entry, len(idx.order))
	copy(out, idx.order)
	return out
}

// Len returns the number of distinct fingerprints.
func (idx *Index) Len() int { return len(idx.order) }

// Projects returns the distinct project identifiers seen across the index.
func (idx *Index) Projects() []string {
	seen := make(map[string]bool)
	var projects []string
	for _, e := range idx.order {
		for _, o := range e.Occurrences {
			if !seen[o.Project] {
				seen[o.Project] = true
				projects = append(projects, o.Project)
			}
		}
	}
	return projects
}
