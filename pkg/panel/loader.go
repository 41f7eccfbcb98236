package panel

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

type documentFile struct {
	Panels []Panel `json:"panels" yaml:"panels"`
}

// LoadFS walks fsys and parses every JSON/YAML panel document in lexical path
// order. A nil filesystem yields no panels.
func LoadFS(fsys fs.FS) ([]Panel, error) {
	if fsys == nil {
		return nil, nil
	}

	var paths []string
	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isPanelFile(path) {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	seen := make(map[string]string)
	var out []Panel
	for _, path := range paths {
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return nil, fmt.Errorf("panel: read %s: %w", path, err)
		}
		doc, err := parseDocument(data, path)
		if err != nil {
			return nil, err
		}
		for _, p := range doc.Panels {
			p.ID = strings.TrimSpace(p.ID)
			if prev, dup := seen[p.ID]; dup {
				return nil, fmt.Errorf("%w: panel %q defined in %s and %s", ErrInvalidCatalog, p.ID, prev, path)
			}
			if err := Validate(p); err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
			seen[p.ID] = path
			out = append(out, p)
		}
	}
	return out, nil
}

// LoadCatalog merges the panel documents found in fsys over base.
func LoadCatalog(base *Catalog, fsys fs.FS) (*Catalog, error) {
	overrides, err := LoadFS(fsys)
	if err != nil {
		return nil, err
	}
	if base == nil {
		return NewCatalog(overrides...)
	}
	return base.Merge(overrides...)
}

func parseDocument(data []byte, source string) (documentFile, error) {
	var doc documentFile
	if len(strings.TrimSpace(string(data))) == 0 {
		return documentFile{}, fmt.Errorf("panel: file %s is empty", source)
	}

	if strings.EqualFold(filepath.Ext(source), ".json") {
		if err := json.Unmarshal(data, &doc); err != nil {
			return documentFile{}, fmt.Errorf("panel: parse %s: %w", source, err)
		}
		return doc, nil
	}

	if err := yaml.Unmarshal(data, &doc); err != nil {
		return documentFile{}, fmt.Errorf("panel: parse %s: %w", source, err)
	}
	return doc, nil
}

func isPanelFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}
