// Package locale looks up display strings by key with named parameters.
//
// Templates reference parameters as { $name }, for example
// "Integrity: { $integrity }%".
package locale

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

//go:embed en.yaml
var defaultCatalogYAML []byte

// Arg is one named substitution parameter.
type Arg struct {
	Name  string
	Value any
}

// Catalog maps message keys to templates.
type Catalog struct {
	messages map[string]string
}

var placeholder = regexp.MustCompile(`\{\s*\$([A-Za-z0-9_-]+)\s*\}`)

// Default returns the embedded English catalog.
func Default() *Catalog {
	c, err := Parse(defaultCatalogYAML)
	if err != nil {
		panic(fmt.Sprintf("locale: embedded catalog invalid: %v", err))
	}
	return c
}

// Load reads a catalog file and layers it over the embedded catalog.
// An empty path returns the embedded catalog.
func Load(path string) (*Catalog, error) {
	c := Default()
	if path == "" {
		return c, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading locale file: %w", err)
	}
	extra, err := Parse(data)
	if err != nil {
		return nil, err
	}
	for k, v := range extra.messages {
		c.messages[k] = v
	}
	return c, nil
}

// Parse decodes a flat YAML mapping of key to template.
func Parse(data []byte) (*Catalog, error) {
	messages := make(map[string]string)
	if err := yaml.Unmarshal(data, &messages); err != nil {
		return nil, fmt.Errorf("parsing locale catalog: %w", err)
	}
	return &Catalog{messages: messages}, nil
}

// Has reports whether key is defined.
func (c *Catalog) Has(key string) bool {
	_, ok := c.messages[key]
	return ok
}

// Get renders key with args. Unknown keys render as the key itself and
// unknown parameters are left in place, so a missing translation is
// visible rather than fatal.
func (c *Catalog) Get(key string, args ...Arg) string {
	tmpl, ok := c.messages[key]
	if !ok {
		return key
	}
	if len(args) == 0 {
		return tmpl
	}
	return placeholder.ReplaceAllStringFunc(tmpl, func(m string) string {
		name := placeholder.FindStringSubmatch(m)[1]
		for _, a := range args {
			if a.Name == name {
				return fmt.Sprint(a.Value)
			}
		}
		return m
	})
}
