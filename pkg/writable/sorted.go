package writable

import (
	"io"
	"slices"
)

// SortedEntry is a key/value pair of a SortedMap.
type SortedEntry struct {
	Key   Ordered
	Value Record
}

// SortedMap keeps its entries ordered by Compare on the keys.
type SortedMap struct {
	entries []SortedEntry
}

// NewSortedMap creates an empty sorted map.
func NewSortedMap() *SortedMap {
	return &SortedMap{}
}

func (*SortedMap) Kind() Kind { return KindSortedMap }

func (m *SortedMap) search(key Ordered) (int, bool) {
	return slices.BinarySearchFunc(m.entries, key, func(e SortedEntry, k Ordered) int {
		return Compare(e.Key, k)
	})
}

// Put stores value under key, replacing the value of an equal key.
func (m *SortedMap) Put(key Ordered, value Record) {
	if key == nil {
		key = Null{}
	}
	if value == nil {
		value = Null{}
	}
	i, found := m.search(key)
	if found {
		m.entries[i].Value = value
		return
	}
	m.entries = slices.Insert(m.entries, i, SortedEntry{Key: key, Value: value})
}

// Get returns the value stored under key.
func (m *SortedMap) Get(key Ordered) (Record, bool) {
	if m == nil {
		return nil, false
	}
	i, found := m.search(key)
	if !found {
		return nil, false
	}
	return m.entries[i].Value, true
}

// Len returns the number of entries.
func (m *SortedMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.entries)
}

// Entries returns a copy of the entries in key order.
func (m *SortedMap) Entries() []SortedEntry {
	if m == nil {
		return nil
	}
	return append([]SortedEntry(nil), m.entries...)
}

// Keys returns the keys in order.
func (m *SortedMap) Keys() []Ordered {
	keys := make([]Ordered, 0, m.Len())
	for _, e := range m.Entries() {
		keys = append(keys, e.Key)
	}
	return keys
}

func (m *SortedMap) Write(w io.Writer) error {
	entries := make([]Entry, 0, m.Len())
	for _, e := range m.Entries() {
		entries = append(entries, Entry{Key: e.Key, Value: e.Value})
	}
	return writeMapEntries(w, entries)
}
