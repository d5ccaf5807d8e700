// Package monument presents the monument progress panel: glyphs to draw,
// influences to buy and the entropy that pays for them.
package monument

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed prototypes.yaml
var defaultPrototypesYAML []byte

// ErrUnknownPrototype is returned when an id names no glyph or influence.
var ErrUnknownPrototype = errors.New("monument: unknown prototype")

// Glyph is a drawable glyph prototype.
type Glyph struct {
	ID      string `yaml:"id"`
	Name    string `yaml:"name"`
	Tooltip string `yaml:"tooltip"`
	Icon    string `yaml:"icon"`
	Stage   int    `yaml:"stage"`
}

// Influence is a purchasable influence prototype.
type Influence struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Icon        string `yaml:"icon"`
	Cost        int    `yaml:"cost"`
	Stage       int    `yaml:"stage"`
}

// Prototypes is the full set of glyph and influence definitions.
// It is loaded once and never changes while the game runs.
type Prototypes struct {
	Glyphs     []Glyph     `yaml:"glyphs"`
	Influences []Influence `yaml:"influences"`

	glyphIndex     map[string]int
	influenceIndex map[string]int
}

// DefaultPrototypes returns the embedded prototype set.
func DefaultPrototypes() *Prototypes {
	p, err := ParsePrototypes(defaultPrototypesYAML)
	if err != nil {
		panic(fmt.Sprintf("monument: embedded prototypes invalid: %v", err))
	}
	return p
}

// LoadPrototypes reads prototypes from path, or the embedded set when
// path is empty.
func LoadPrototypes(path string) (*Prototypes, error) {
	if path == "" {
		return DefaultPrototypes(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading prototypes: %w", err)
	}
	return ParsePrototypes(data)
}

// ParsePrototypes decodes and indexes a prototype document.
func ParsePrototypes(data []byte) (*Prototypes, error) {
	var p Prototypes
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing prototypes: %w", err)
	}
	if err := p.index(); err != nil {
		return nil, err
	}
	return &p, nil
}

func (p *Prototypes) index() error {
	p.glyphIndex = make(map[string]int, len(p.Glyphs))
	for i, g := range p.Glyphs {
		if g.ID == "" {
			return fmt.Errorf("glyph %d has no id", i)
		}
		if _, dup := p.glyphIndex[g.ID]; dup {
			return fmt.Errorf("duplicate glyph id %q", g.ID)
		}
		p.glyphIndex[g.ID] = i
	}
	p.influenceIndex = make(map[string]int, len(p.Influences))
	for i, inf := range p.Influences {
		if inf.ID == "" {
			return fmt.Errorf("influence %d has no id", i)
		}
		if _, dup := p.influenceIndex[inf.ID]; dup {
			return fmt.Errorf("duplicate influence id %q", inf.ID)
		}
		if inf.Cost < 0 {
			return fmt.Errorf("influence %q: negative cost %d", inf.ID, inf.Cost)
		}
		p.influenceIndex[inf.ID] = i
	}
	return nil
}

// Glyph looks up a glyph by id.
func (p *Prototypes) Glyph(id string) (Glyph, error) {
	i, ok := p.glyphIndex[id]
	if !ok {
		return Glyph{}, fmt.Errorf("glyph %q: %w", id, ErrUnknownPrototype)
	}
	return p.Glyphs[i], nil
}

// Influence looks up an influence by id.
func (p *Prototypes) Influence(id string) (Influence, error) {
	i, ok := p.influenceIndex[id]
	if !ok {
		return Influence{}, fmt.Errorf("influence %q: %w", id, ErrUnknownPrototype)
	}
	return p.Influences[i], nil
}
