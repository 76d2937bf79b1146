package dedup

// Entry is one derived identity at a record ordinal.
type Entry struct {
	Identity string
	Ordinal  int
}

// Index groups identities across the whole dataset. Entries arrive in
// ascending ordinal order; Claim reports, per entry, whether it is the first
// occurrence of its identity and therefore survives.
type Index interface {
	Claim(batch []Entry) ([]bool, error)
	// Size returns the number of distinct identities seen so far.
	Size() int
	Close() error
}

// IndexFactory opens a fresh Index for one deduplication run.
type IndexFactory func() (Index, error)

// MemoryIndex keeps identities in a map.
type MemoryIndex struct {
	first map[string]int
}

// NewMemoryIndex returns an empty in-memory index.
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{first: make(map[string]int)}
}

// MemoryIndexFactory opens in-memory indexes.
func MemoryIndexFactory() (Index, error) {
	return NewMemoryIndex(), nil
}

// Claim implements Index.
func (m *MemoryIndex) Claim(batch []Entry) ([]bool, error) {
	out := make([]bool, len(batch))
	for i, e := range batch {
		if _, seen := m.first[e.Identity]; seen {
			continue
		}
		m.first[e.Identity] = e.Ordinal
		out[i] = true
	}
	return out, nil
}

// Size implements Index.
func (m *MemoryIndex) Size() int { return len(m.first) }

// Close implements Index.
func (m *MemoryIndex) Close() error {
	m.first = nil
	return nil
}
