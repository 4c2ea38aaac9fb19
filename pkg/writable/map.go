package writable

import (
	"fmt"
	"io"
)

// Entry is a key/value pair of a Map.
type Entry struct {
	Key   Record
	Value Record
}

// Map is an unordered record map. Keys are unique by content: putting a key
// equal to an existing one replaces that entry's value.
// Entries are written in first-insertion order.
type Map struct {
	entries []Entry
	index   map[string]int
}

// NewMap creates an empty map.
func NewMap() *Map {
	return &Map{index: make(map[string]int)}
}

func (*Map) Kind() Kind { return KindMap }

// Put stores value under key. Nil records are stored as Null.
func (m *Map) Put(key, value Record) {
	if key == nil {
		key = Null{}
	}
	if value == nil {
		value = Null{}
	}
	if m.index == nil {
		m.index = make(map[string]int)
	}

	k := contentKey(key)
	if i, ok := m.index[k]; ok {
		m.entries[i].Value = value
		return
	}
	m.index[k] = len(m.entries)
	m.entries = append(m.entries, Entry{Key: key, Value: value})
}

// Get returns the value stored under a key equal to key.
func (m *Map) Get(key Record) (Record, bool) {
	if m == nil || m.index == nil {
		return nil, false
	}
	i, ok := m.index[contentKey(key)]
	if !ok {
		return nil, false
	}
	return m.entries[i].Value, true
}

// Len returns the number of entries.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.entries)
}

// Entries returns a copy of the entries.
func (m *Map) Entries() []Entry {
	if m == nil {
		return nil
	}
	return append([]Entry(nil), m.entries...)
}

func (m *Map) Write(w io.Writer) error {
	if m == nil {
		return writeMapEntries(w, nil)
	}
	return writeMapEntries(w, m.entries)
}

// predefinedIDs are the class ids every AbstractMapWritable knows without
// a class table entry.
var predefinedIDs = map[Kind]int8{
	KindArray:     -127,
	KindBool:      -126,
	KindBytes:     -125,
	KindFloat32:   -124,
	KindInt32:     -123,
	KindInt64:     -122,
	KindMap:       -121,
	KindNull:      -119,
	KindSortedMap: -117,
	KindText:      -116,
	KindVInt32:    -114,
	KindVInt64:    -113,
}

// classTable assigns ids to classes that are not predefined, starting at 1
// in first-seen order.
type classTable struct {
	ids   map[string]int8
	names []string
}

func (t *classTable) id(r Record) (int8, error) {
	if k, ok := builtinKind(r); ok {
		if id, ok := predefinedIDs[k]; ok {
			return id, nil
		}
	}

	name := ClassName(r)
	if id, ok := t.ids[name]; ok {
		return id, nil
	}
	if name == "" {
		return 0, fmt.Errorf("record %T has no class name", r)
	}
	if len(t.names) == 127 {
		return 0, fmt.Errorf("too many classes in map")
	}
	if t.ids == nil {
		t.ids = make(map[string]int8)
	}
	t.names = append(t.names, name)
	id := int8(len(t.names))
	t.ids[name] = id
	return id, nil
}

func writeMapEntries(w io.Writer, entries []Entry) error {
	var table classTable
	ids := make([]int8, 0, 2*len(entries))
	for _, e := range entries {
		kid, err := table.id(e.Key)
		if err != nil {
			return err
		}
		vid, err := table.id(e.Value)
		if err != nil {
			return err
		}
		ids = append(ids, kid, vid)
	}

	if err := writeByte(w, byte(len(table.names))); err != nil {
		return err
	}
	for i, name := range table.names {
		if err := writeByte(w, byte(i+1)); err != nil {
			return err
		}
		if err := writeUTF(w, name); err != nil {
			return err
		}
	}

	if err := writeInt32(w, int32(len(entries))); err != nil {
		return err
	}
	for i, e := range entries {
		if err := writeByte(w, byte(ids[2*i])); err != nil {
			return err
		}
		if err := e.Key.Write(w); err != nil {
			return fmt.Errorf("key %d: %w", i, err)
		}
		if err := writeByte(w, byte(ids[2*i+1])); err != nil {
			return err
		}
		if err := e.Value.Write(w); err != nil {
			return fmt.Errorf("value %d: %w", i, err)
		}
	}
	return nil
}

func readMapEntries(r io.Reader) ([]Entry, error) {
	classes := make(map[int8]Kind, len(predefinedIDs))
	for k, id := range predefinedIDs {
		classes[id] = k
	}

	n, err := readByte(r)
	if err != nil {
		return nil, err
	}
	for i := 0; i < int(int8(n)); i++ {
		id, err := readByte(r)
		if err != nil {
			return nil, err
		}
		name, err := readUTF(r)
		if err != nil {
			return nil, err
		}
		k, ok := KindOf(name)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownClass, name)
		}
		classes[int8(id)] = k
	}

	size, err := readInt32(r)
	if err != nil {
		return nil, err
	}
	if size < 0 {
		return nil, fmt.Errorf("negative map size: %d", size)
	}

	readOne := func() (Record, error) {
		id, err := readByte(r)
		if err != nil {
			return nil, err
		}
		k, ok := classes[int8(id)]
		if !ok {
			return nil, fmt.Errorf("%w: id %d", ErrUnknownClass, int8(id))
		}
		return Read(r, TypeOf(k))
	}

	entries := make([]Entry, 0, min(int(size), 1024))
	for i := int32(0); i < size; i++ {
		key, err := readOne()
		if err != nil {
			return nil, fmt.Errorf("key %d: %w", i, err)
		}
		value, err := readOne()
		if err != nil {
			return nil, fmt.Errorf("value %d: %w", i, err)
		}
		entries = append(entries, Entry{Key: key, Value: value})
	}
	return entries, nil
}
