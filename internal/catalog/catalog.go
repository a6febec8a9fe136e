// Package catalog models a localization collection: an ordered set of
// language tables sharing one key space. Tables are plain keyed mappings;
// entry text is read through Get and written through Upsert so callers never
// hold references into table internals.
package catalog

import (
	"sync"

	"github.com/irakli/algebras-go/internal/langcode"
)

// Entry is one key/source-text pair selected for translation.
type Entry struct {
	Key  string
	Text string
}

// Table holds the strings of one language. Upsert and Get are safe for
// concurrent use; batch merges for one language run in parallel.
type Table struct {
	code string

	mu     sync.RWMutex
	values map[string]string
}

// NewTable creates an empty table for a language code.
func NewTable(code string) *Table {
	return &Table{
		code:   code,
		values: make(map[string]string),
	}
}

// Code returns the table's language code.
func (t *Table) Code() string {
	return t.code
}

// Get returns the text stored for key and whether the key is present.
func (t *Table) Get(key string) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	text, ok := t.values[key]
	return text, ok
}

// Upsert stores text under key, creating or overwriting the entry.
func (t *Table) Upsert(key, text string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.values[key] = text
}

// Len returns the number of entries in the table.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.values)
}

// Collection is an ordered list of language tables plus the shared key set.
// Collections are mutated from one goroutine at a time; per-table writes may
// happen concurrently through Table.Upsert.
type Collection struct {
	keys   []string
	keySet map[string]struct{}
	tables []*Table
	byCode map[string]*Table
}

// NewCollection creates an empty collection.
func NewCollection() *Collection {
	return &Collection{
		keySet: make(map[string]struct{}),
		byCode: make(map[string]*Table),
	}
}

// AddKey registers a key in the shared key space. Keys keep insertion order
// so batch contents are reproducible across runs.
func (c *Collection) AddKey(key string) {
	if _, ok := c.keySet[key]; ok {
		return
	}
	c.keySet[key] = struct{}{}
	c.keys = append(c.keys, key)
}

// Keys returns the shared key set in stable insertion order.
func (c *Collection) Keys() []string {
	out := make([]string, len(c.keys))
	copy(out, c.keys)
	return out
}

// Tables returns the language tables in declared order.
func (c *Collection) Tables() []*Table {
	out := make([]*Table, len(c.tables))
	copy(out, c.tables)
	return out
}

// Table finds a table by language code.
func (c *Collection) Table(code string) (*Table, bool) {
	if t, ok := c.byCode[code]; ok {
		return t, true
	}
	// Codes on disk may differ in form (pt-br vs pt-BR).
	for _, t := range c.tables {
		if langcode.Equal(t.code, code) {
			return t, true
		}
	}
	return nil, false
}

// EnsureTable returns the table for code, creating and appending it to the
// declared order if it does not exist yet.
func (c *Collection) EnsureTable(code string) *Table {
	if t, ok := c.Table(code); ok {
		return t
	}
	t := NewTable(code)
	c.tables = append(c.tables, t)
	c.byCode[code] = t
	return t
}

// Languages returns the declared-order list of language codes.
func (c *Collection) Languages() []string {
	out := make([]string, 0, len(c.tables))
	for _, t := range c.tables {
		out = append(out, t.code)
	}
	return out
}
