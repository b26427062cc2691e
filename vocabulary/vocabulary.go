// Package vocabulary provides the bijective mapping between arbitrary string
// keys and dense integer ids shared by node identifiers, node types, and
// edge types. Insertion order defines the id assignment. Construction is
// single-writer; once the graph build freezes the vocabulary, reads are safe
// for unlimited concurrent readers.
package vocabulary

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
)

// OutOfRangeError is returned by Translate for ids beyond the vocabulary.
type OutOfRangeError struct {
	ID   uint32
	Size uint32
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("vocabulary: id %d out of range [0, %d)", e.ID, e.Size)
}

// Vocabulary maps keys to dense ids and back. The zero value is not usable;
// call New.
type Vocabulary struct {
	ids  map[string]uint32
	keys []string
}

// New creates an empty vocabulary.
func New() *Vocabulary {
	return NewWithCapacity(0)
}

// NewWithCapacity creates an empty vocabulary pre-sized for n keys.
func NewWithCapacity(n int) *Vocabulary {
	return &Vocabulary{
		ids:  make(map[string]uint32, n),
		keys: make([]string, 0, n),
	}
}

// Insert returns the id for key, assigning the next dense id on first
// insertion. Repeated insertion of an equal key returns the previously
// assigned id and does not grow the vocabulary.
func (v *Vocabulary) Insert(key string) uint32 {
	if id, ok := v.ids[key]; ok {
		return id
	}
	id := uint32(len(v.keys))
	v.ids[key] = id
	v.keys = append(v.keys, key)
	return id
}

// Get returns the id assigned to key, if any.
func (v *Vocabulary) Get(key string) (uint32, bool) {
	id, ok := v.ids[key]
	return id, ok
}

// Translate returns the key assigned to id.
func (v *Vocabulary) Translate(id uint32) (string, error) {
	if id >= uint32(len(v.keys)) {
		return "", &OutOfRangeError{ID: id, Size: uint32(len(v.keys))}
	}
	return v.keys[id], nil
}

// MustTranslate returns the key assigned to id. The caller guarantees the id
// is in range.
func (v *Vocabulary) MustTranslate(id uint32) string {
	return v.keys[id]
}

// Len returns the number of assigned ids.
func (v *Vocabulary) Len() int {
	return len(v.keys)
}

// Keys returns the keys in id order. Callers must not mutate the returned
// slice.
func (v *Vocabulary) Keys() []string {
	return v.keys
}

// Clone returns an independent copy.
func (v *Vocabulary) Clone() *Vocabulary {
	c := NewWithCapacity(len(v.keys))
	for _, key := range v.keys {
		c.Insert(key)
	}
	return c
}

// SameKeys reports whether both vocabularies hold exactly the same key set,
// regardless of id assignment.
func (v *Vocabulary) SameKeys(other *Vocabulary) bool {
	if v.Len() != other.Len() {
		return false
	}
	for key := range v.ids {
		if _, ok := other.ids[key]; !ok {
			return false
		}
	}
	return true
}

// Equal reports whether both vocabularies assign identical ids to identical
// keys.
func (v *Vocabulary) Equal(other *Vocabulary) bool {
	if v.Len() != other.Len() {
		return false
	}
	for i, key := range v.keys {
		if other.keys[i] != key {
			return false
		}
	}
	return true
}

// Save persists the vocabulary to w.
// Format: [Count: 8 bytes] then per key [Len: 4 bytes][Bytes...], all
// little-endian, in id order.
func (v *Vocabulary) Save(w io.Writer) error {
	bw := bufio.NewWriter(w)

	if err := binary.Write(bw, binary.LittleEndian, uint64(len(v.keys))); err != nil {
		return err
	}
	for _, key := range v.keys {
		if err := binary.Write(bw, binary.LittleEndian, uint32(len(key))); err != nil {
			return err
		}
		if _, err := bw.WriteString(key); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Load populates the vocabulary from r, replacing any existing content.
func (v *Vocabulary) Load(r io.Reader) error {
	br := bufio.NewReader(r)

	var count uint64
	if err := binary.Read(br, binary.LittleEndian, &count); err != nil {
		return err
	}

	v.ids = make(map[string]uint32, count)
	v.keys = make([]string, 0, count)

	for i := uint64(0); i < count; i++ {
		var keyLen uint32
		if err := binary.Read(br, binary.LittleEndian, &keyLen); err != nil {
			return err
		}
		buf := make([]byte, keyLen)
		if _, err := io.ReadFull(br, buf); err != nil {
			return err
		}
		key := string(buf)
		if _, ok := v.ids[key]; ok {
			return fmt.Errorf("vocabulary: duplicate key %q at id %d", key, i)
		}
		v.ids[key] = uint32(len(v.keys))
		v.keys = append(v.keys, key)
	}
	return nil
}
