// ABOUTME: Buffer entries and ordered buffer lists captured from the host
// ABOUTME: Provides lookup helpers and the initial cursor computation for the picker

package buffers

// Entry is one open buffer as reported by the host.
type Entry struct {
	Number int    `json:"number" yaml:"number"`
	Name   string `json:"name" yaml:"name"`
}

// List is an ordered sequence of entries in host enumeration order.
// It is never re-sorted or de-duplicated; the host guarantees unique names.
type List []Entry

// Snapshot is the result of a single listing: the buffers plus the name of
// the buffer that was active at listing time (empty when unknown).
type Snapshot struct {
	Buffers List   `json:"buffers" yaml:"buffers"`
	Current string `json:"current" yaml:"current"`
}

// Names returns the buffer names in list order.
func (l List) Names() []string {
	names := make([]string, len(l))
	for i, e := range l {
		names[i] = e.Name
	}
	return names
}

// Index returns the position of the named buffer, or -1 when it is absent.
func (l List) Index(name string) int {
	for i, e := range l {
		if e.Name == name {
			return i
		}
	}
	return -1
}

// Lookup returns the entry with the given name.
func (l List) Lookup(name string) (Entry, bool) {
	if i := l.Index(name); i >= 0 {
		return l[i], true
	}
	return Entry{}, false
}

// Contains reports whether a buffer with the given name is in the list.
func (l List) Contains(name string) bool {
	return l.Index(name) >= 0
}

// InitialIndex returns the cursor position offered to the picker: the list
// position of current, or 0 when current is empty or not in the list.
func InitialIndex(list List, current string) int {
	if current == "" {
		return 0
	}
	if i := list.Index(current); i >= 0 {
		return i
	}
	return 0
}

// InitialIndex is the snapshot's starting cursor position.
func (s Snapshot) InitialIndex() int {
	return InitialIndex(s.Buffers, s.Current)
}
