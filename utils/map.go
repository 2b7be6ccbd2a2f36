// Package utils provides a small hash map keyed by Hashable values. The
// builder uses it to deduplicate expressions: cached internal signals and
// already-recorded boolean/zero assertions.
package utils

type Hashable interface {
	HashCode() uint64
	EqualI(Hashable) bool
}

// Map is a bucketed hash map; collisions are resolved by EqualI.
type Map map[uint64][]mapEntry

type mapEntry struct {
	k Hashable
	v interface{}
}

func (m Map) Find(k Hashable) (interface{}, bool) {
	for _, x := range m[k.HashCode()] {
		if x.k.EqualI(k) {
			return x.v, true
		}
	}
	return nil, false
}

func (m Map) Set(k Hashable, v interface{}) {
	h := k.HashCode()
	s := m[h]
	for i := range s {
		if s[i].k.EqualI(k) {
			s[i].v = v
			return
		}
	}
	m[h] = append(s, mapEntry{k: k, v: v})
}

// Add inserts only if the key is absent and returns the stored value.
func (m Map) Add(k Hashable, v interface{}) interface{} {
	h := k.HashCode()
	s := m[h]
	for i := range s {
		if s[i].k.EqualI(k) {
			return s[i].v
		}
	}
	m[h] = append(s, mapEntry{k: k, v: v})
	return v
}
