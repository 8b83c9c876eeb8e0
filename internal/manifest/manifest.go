// Package manifest reads an extension's requirement manifest.
//
// A manifest is a plugin.toml, plugin.yaml or plugin.yml file next to the
// extension's code:
//
//	title = "Demo"
//	php   = "7.4"
//	wp    = "5.8"
//	main  = "demo.php"
//
// Versions should be quoted in TOML; an unquoted 5.10 is a float and loses
// its trailing zero. YAML scalars are read verbatim, so quoting is optional.
package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// FileNames are the manifest names Find looks for, in order.
var FileNames = []string{"plugin.toml", "plugin.yaml", "plugin.yml"}

// ErrUnsupportedFormat is returned for manifests with an unknown extension.
var ErrUnsupportedFormat = errors.New("manifest: unsupported format")

// ErrNotFound is returned by Find when a directory has no manifest.
var ErrNotFound = errors.New("manifest: not found")

// Load reads the manifest at path into a settings mapping suitable for
// gate.ConfigFromMap. A relative "file" is resolved against the manifest's
// directory; without "file", it is derived from "main" or, failing that,
// set to the manifest's directory.
func Load(path string) (map[string]interface{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var m map[string]interface{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if m, err = parseYAML(data); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	if m == nil {
		m = map[string]interface{}{}
	}

	resolveFile(m, filepath.Dir(path))
	return m, nil
}

// Find returns the path of the first manifest found in dir.
func Find(dir string) (string, error) {
	for _, name := range FileNames {
		p := filepath.Join(dir, name)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w in %s", ErrNotFound, dir)
}

func resolveFile(m map[string]interface{}, dir string) {
	if f, ok := m["file"].(string); ok && f != "" {
		if !filepath.IsAbs(f) {
			m["file"] = filepath.Join(dir, f)
		}
		return
	}
	if main, ok := m["main"].(string); ok && main != "" {
		m["file"] = filepath.Join(dir, main)
		return
	}
	m["file"] = dir
}

// parseYAML keeps top-level scalars as their literal text so that 5.10
// stays "5.10".
func parseYAML(data []byte) (map[string]interface{}, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, errors.New("top level must be a mapping")
	}

	m := make(map[string]interface{}, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, val := root.Content[i], root.Content[i+1]
		if val.Kind == yaml.ScalarNode {
			if val.Tag == "!!null" {
				continue
			}
			m[key.Value] = val.Value
			continue
		}
		var v interface{}
		if err := val.Decode(&v); err != nil {
			return nil, fmt.Errorf("key %s: %w", key.Value, err)
		}
		m[key.Value] = v
	}
	return m, nil
}
