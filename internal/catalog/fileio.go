package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/irakli/algebras-go/internal/files"
	"gopkg.in/yaml.v3"
)

// ManifestName is the optional per-collection manifest declaring table order.
const ManifestName = "collection.yaml"

type manifest struct {
	Languages []string `yaml:"languages"`
}

// LoadDir reads a collection from a directory of <lang>.yaml table files.
// A collection.yaml manifest fixes the declared language order; without one,
// table files are taken in sorted filename order. Key order inside each file
// is preserved, and the shared key set is the union of table keys in declared
// table order.
func LoadDir(dir string) (*Collection, error) {
	codes, err := tableOrder(dir)
	if err != nil {
		return nil, err
	}
	if len(codes) == 0 {
		return nil, fmt.Errorf("no language tables found in %s", dir)
	}

	c := NewCollection()
	for _, code := range codes {
		path := filepath.Join(dir, code+".yaml")
		entries, err := loadTableFile(path)
		if err != nil {
			return nil, fmt.Errorf("table %s: %w", code, err)
		}
		t := c.EnsureTable(code)
		for _, e := range entries {
			c.AddKey(e.Key)
			t.Upsert(e.Key, e.Text)
		}
	}
	return c, nil
}

// SaveDir writes every table back to dir, keys in shared key order, through
// an atomic temp-file rename. The manifest is rewritten so tables created
// during a run keep their position on the next load.
func SaveDir(c *Collection, dir string) error {
	for _, t := range c.Tables() {
		path := filepath.Join(dir, t.Code()+".yaml")
		data, err := encodeTable(c, t)
		if err != nil {
			return fmt.Errorf("table %s: %w", t.Code(), err)
		}
		if err := files.AtomicWrite(path, data, 0644); err != nil {
			return fmt.Errorf("table %s: %w", t.Code(), err)
		}
	}

	m := manifest{Languages: c.Languages()}
	data, err := yaml.Marshal(&m)
	if err != nil {
		return fmt.Errorf("manifest: %w", err)
	}
	if err := files.AtomicWrite(filepath.Join(dir, ManifestName), data, 0644); err != nil {
		return fmt.Errorf("manifest: %w", err)
	}
	return nil
}

func tableOrder(dir string) ([]string, error) {
	manifestPath := filepath.Join(dir, ManifestName)
	if data, err := os.ReadFile(manifestPath); err == nil {
		var m manifest
		if err := yaml.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("manifest: %w", err)
		}
		if len(m.Languages) > 0 {
			return m.Languages, nil
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("manifest: %w", err)
	}

	names, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var codes []string
	for _, entry := range names {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if name == ManifestName || !strings.HasSuffix(name, ".yaml") {
			continue
		}
		codes = append(codes, strings.TrimSuffix(name, ".yaml"))
	}
	sort.Strings(codes)
	return codes, nil
}

// loadTableFile parses one table file into ordered entries. Decoding through
// yaml.Node keeps the document's key order, which plain map unmarshaling
// would lose.
func loadTableFile(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, nil
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("expected a key/text mapping, got %s", nodeKindName(root.Kind))
	}

	entries := make([]Entry, 0, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		keyNode, valNode := root.Content[i], root.Content[i+1]
		if valNode.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("key %q: expected scalar text, got %s (line %d)",
				keyNode.Value, nodeKindName(valNode.Kind), valNode.Line)
		}
		entries = append(entries, Entry{Key: keyNode.Value, Text: valNode.Value})
	}
	return entries, nil
}

func encodeTable(c *Collection, t *Table) ([]byte, error) {
	root := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, key := range c.Keys() {
		text, ok := t.Get(key)
		if !ok {
			continue
		}
		root.Content = append(root.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: text},
		)
	}
	return yaml.Marshal(root)
}

func nodeKindName(kind yaml.Kind) string {
	switch kind {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	default:
		return "unknown"
	}
}
