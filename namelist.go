package authzone

import (
	"sort"
	"sync"

	"github.com/milodns/authzone/names"
	"github.com/twotwotwo/sorts"
)

// NameList is a canonical-sorted, deduplicated set of owner names: the
// set of names that carry an NSEC record in a zone. It backs NSEC
// denial-of-existence proofs, which need the immediate predecessor of
// a non-existent name in canonical DNS order.
//
// A sorted []string with binary search is deliberately used here
// instead of a trie: the list is built once from a static zone and is
// small relative to the full record set (see DESIGN.md).
type NameList struct {
	mu    sync.RWMutex
	names []string
}

// NewNameList returns an empty NameList.
func NewNameList() *NameList {
	return &NameList{}
}

// Insert adds name in its canonically sorted position. A name already
// present is a no-op.
func (l *NameList) Insert(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.insertLocked(name)
}

func (l *NameList) insertLocked(name string) {
	i := sort.Search(len(l.names), func(i int) bool {
		return names.Compare(l.names[i], name) >= 0
	})
	if i < len(l.names) && names.Equal(l.names[i], name) {
		return
	}
	l.names = append(l.names, "")
	copy(l.names[i+1:], l.names[i:])
	l.names[i] = name
}

// Load bulk-inserts every name in ns in one pass: it deduplicates,
// sorts with a parallel string sort rather than one binary-search
// insertion per name, and replaces the current contents. Intended for
// one-shot population while parsing a zone file (see Zone.FromString).
func (l *NameList) Load(ns []string) {
	cp := make([]string, len(ns))
	copy(cp, ns)
	sorts.Strings(cp)

	out := cp[:0]
	var prev string
	for i, n := range cp {
		if i == 0 || !names.Equal(n, prev) {
			out = append(out, n)
			prev = n
		}
	}
	// sorts.Strings orders byte-wise on the raw string, which for FQDNs
	// does not match canonical (rightmost-label-first) order, so a
	// final canonical-order pass is required.
	sort.Slice(out, func(i, j int) bool { return names.Compare(out[i], out[j]) < 0 })

	l.mu.Lock()
	defer l.mu.Unlock()
	l.names = out
}

// Lower returns the canonically greatest stored name strictly less
// than name. If name is itself present, that is caller misuse of the
// NSEC proof API and Lower returns ErrNotAnNXDomain. If no stored name
// is less than name, Lower returns ("", false, nil).
func (l *NameList) Lower(name string) (string, bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	i := sort.Search(len(l.names), func(i int) bool {
		return names.Compare(l.names[i], name) >= 0
	})
	if i < len(l.names) && names.Equal(l.names[i], name) {
		return "", false, newZoneError(ErrNotAnNXDomain, name)
	}
	if i == 0 {
		return "", false, nil
	}
	return l.names[i-1], true, nil
}

// Clear truncates the list to empty.
func (l *NameList) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.names = nil
}

// Len reports the number of names currently stored.
func (l *NameList) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.names)
}
