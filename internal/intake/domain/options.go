package domain

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed options.yaml
var optionsYAML []byte

type Option struct {
	Value string `yaml:"value" json:"value"`
	Label string `yaml:"label" json:"label"`
}

// Catalog lists the selectable industries and project categories.
type Catalog struct {
	Industries []Option `yaml:"industries" json:"industries"`
	Categories []Option `yaml:"categories" json:"categories"`
}

// ParseCatalog decodes a catalogue document and rejects empty option lists.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse option catalog: %w", err)
	}
	if len(c.Industries) == 0 || len(c.Categories) == 0 {
		return nil, fmt.Errorf("option catalog needs at least one industry and one category")
	}
	return &c, nil
}

// DefaultCatalog returns the embedded catalogue.
func DefaultCatalog() *Catalog {
	c, err := ParseCatalog(optionsYAML)
	if err != nil {
		panic(err)
	}
	return c
}

// DefaultIndustry is the only industry when exactly one is offered.
func (c *Catalog) DefaultIndustry() (string, bool) {
	if len(c.Industries) == 1 {
		return c.Industries[0].Value, true
	}
	return "", false
}

func (c *Catalog) IndustryLabel(value string) string {
	return labelFor(c.Industries, value)
}

// CategoryLabel prefers the free text when the category is "other".
func (c *Catalog) CategoryLabel(value, otherText string) string {
	if value == CategoryOther && otherText != "" {
		return otherText
	}
	return labelFor(c.Categories, value)
}

func (c *Catalog) HasIndustry(value string) bool {
	return hasOption(c.Industries, value)
}

func (c *Catalog) HasCategory(value string) bool {
	return hasOption(c.Categories, value)
}

func hasOption(options []Option, value string) bool {
	for _, opt := range options {
		if opt.Value == value {
			return true
		}
	}
	return false
}

func labelFor(options []Option, value string) string {
	for _, opt := range options {
		if opt.Value == value {
			return opt.Label
		}
	}
	return value
}
