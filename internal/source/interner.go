package source

import (
	"fmt"
	"slices"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

type StringID uint32

const NoStringID StringID = 0

// Interner maps strings to stable IDs. Identifiers of the analysed language are
// case-insensitive, so the interner also keeps a folded key per string: two
// spellings of the same identifier share a Fold result.
//
// Interner is safe for concurrent use; files resolved in parallel intern
// synthesized names into the same instance.
type Interner struct {
	mu     sync.RWMutex
	byID   []string            // индекс -> строка (byID[0] = "" для NoStringID)
	index  map[string]StringID // строка -> ID
	folded []StringID          // индекс -> ID свёрнутой формы
	caser  cases.Caser
}

func NewInterner() *Interner {
	return &Interner{
		byID:   []string{""},
		index:  map[string]StringID{"": 0},
		folded: []StringID{NoStringID},
		caser:  cases.Fold(),
	}
}

// Intern вставляет строку в иннер и возвращает её ID.
// Если строка уже есть, возвращает её ID.
func (i *Interner) Intern(s string) StringID {
	i.mu.RLock()
	id, ok := i.index[s]
	i.mu.RUnlock()
	if ok {
		return id
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.internLocked(s)
}

func (i *Interner) internLocked(s string) StringID {
	if id, ok := i.index[s]; ok {
		return id
	}
	// Создаём собственную копию строки, чтобы не зависеть от исходного буфера.
	cpy := string([]byte(s))
	id := StringID(len(i.byID))
	i.byID = append(i.byID, cpy)
	i.index[cpy] = id
	i.folded = append(i.folded, NoStringID)

	key := i.caser.String(norm.NFC.String(cpy))
	if key == cpy {
		i.folded[id] = id
		return id
	}
	fid, ok := i.index[key]
	if !ok {
		fid = StringID(len(i.byID))
		i.byID = append(i.byID, key)
		i.index[key] = fid
		i.folded = append(i.folded, fid)
	}
	i.folded[id] = fid
	return id
}

// Fold returns the ID of the case-folded spelling of id. Lookups by
// identifier must compare Fold results, never raw IDs.
func (i *Interner) Fold(id StringID) StringID {
	i.mu.RLock()
	defer i.mu.RUnlock()
	if int(id) >= len(i.folded) {
		return NoStringID
	}
	return i.folded[id]
}

// FoldString interns s and returns its folded ID.
func (i *Interner) FoldString(s string) StringID {
	return i.Fold(i.Intern(s))
}

// SameName reports whether a and b spell the same identifier.
func (i *Interner) SameName(a, b StringID) bool {
	if a == b {
		return true
	}
	return i.Fold(a) == i.Fold(b)
}

// Lookup возвращает строку по ID.
// Если ID не валиден, возвращает пустую строку и false.
func (i *Interner) Lookup(id StringID) (string, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	if int(id) >= len(i.byID) {
		return "", false
	}
	return i.byID[id], true
}

// MustLookup возвращает строку по ID.
// Если ID не валиден, паникует.
func (i *Interner) MustLookup(id StringID) string {
	s, ok := i.Lookup(id)
	if !ok {
		panic(fmt.Sprintf("invalid string ID %d", id))
	}
	return s
}

// Has проверяет, валиден ли ID.
func (i *Interner) Has(id StringID) bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return int(id) < len(i.byID)
}

// Len возвращает количество строк в иннер.
// NoStringID тоже учитывается. Не может быть меньше 1.
func (i *Interner) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.byID)
}

// Snapshot возвращает копию всех строк в иннер.
func (i *Interner) Snapshot() []string {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return slices.Clone(i.byID)
}

// EncodeMsgpack stores the strings in ID order; folded keys are recomputed on decode.
func (i *Interner) EncodeMsgpack(enc *msgpack.Encoder) error {
	return enc.Encode(i.Snapshot())
}

// DecodeMsgpack rebuilds the interner so that every string keeps its ID.
func (i *Interner) DecodeMsgpack(dec *msgpack.Decoder) error {
	var strs []string
	if err := dec.Decode(&strs); err != nil {
		return err
	}
	fresh := NewInterner()
	fresh.mu.Lock()
	for idx, s := range strs {
		if idx == 0 {
			continue
		}
		if got := fresh.internLocked(s); int(got) != idx {
			fresh.mu.Unlock()
			return fmt.Errorf("interner snapshot: string %q decoded as %d, want %d", s, got, idx)
		}
	}
	fresh.mu.Unlock()

	i.mu.Lock()
	defer i.mu.Unlock()
	i.byID = fresh.byID
	i.index = fresh.index
	i.folded = fresh.folded
	i.caser = fresh.caser
	return nil
}
