package catalog

import (
	"fmt"

	"github.com/irakli/algebras-go/internal/langcode"
	"github.com/irakli/algebras-go/internal/logger"
)

// ResolveSource determines the table source text is read from. An empty or
// "auto" code selects the first table in declared order. A code with no
// matching table also falls back to the first table; the fallback is logged
// as a warning, never an error. Resolution happens once per run and stays
// stable for the whole run.
func ResolveSource(c *Collection, configured string) (*Table, error) {
	tables := c.Tables()
	if len(tables) == 0 {
		return nil, fmt.Errorf("collection has no language tables")
	}
	if langcode.IsAuto(configured) {
		return tables[0], nil
	}
	if t, ok := c.Table(configured); ok {
		return t, nil
	}
	logger.Warn("Configured source language not found in collection; falling back to first table",
		"configured", configured, "fallback", tables[0].Code())
	return tables[0], nil
}

// Pending returns the entries that need translation for targetCode, in the
// shared key order. Keys with empty source text are always skipped. With
// onlyMissing, keys whose target entry already carries non-empty text are
// skipped too.
func Pending(c *Collection, source *Table, targetCode string, onlyMissing bool) []Entry {
	target, hasTarget := c.Table(targetCode)

	var entries []Entry
	for _, key := range c.Keys() {
		text, ok := source.Get(key)
		if !ok || text == "" {
			continue
		}
		if onlyMissing && hasTarget {
			if existing, ok := target.Get(key); ok && existing != "" {
				continue
			}
		}
		entries = append(entries, Entry{Key: key, Text: text})
	}
	return entries
}
