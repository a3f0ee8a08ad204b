// Package catalog holds the target roles users can pick during onboarding.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed roles.yaml
var rolesYAML []byte

var (
	// ErrUnknownCategory is returned for a category not in the catalog.
	ErrUnknownCategory = errors.New("unknown role category")
	// ErrUnknownRole is returned for a role not listed under its category.
	ErrUnknownRole = errors.New("unknown role")
)

// Category groups related roles.
type Category struct {
	Name  string   `yaml:"name" json:"name"`
	Roles []string `yaml:"roles" json:"roles"`
}

// TimeOption is a suggested daily time budget.
type TimeOption struct {
	Minutes     int    `yaml:"minutes" json:"minutes"`
	Label       string `yaml:"label" json:"label"`
	Description string `yaml:"description" json:"description"`
}

// Catalog is the full set of categories and time options.
type Catalog struct {
	IT          []Category   `yaml:"it" json:"it"`
	NonIT       []Category   `yaml:"non_it" json:"non_it"`
	TimeOptions []TimeOption `yaml:"time_options" json:"time_options"`
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// Default returns the embedded catalog, parsed once.
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCatalog, defaultErr = Parse(rolesYAML)
	})
	return defaultCatalog, defaultErr
}

// MustDefault is Default for callers that cannot continue without it.
func MustDefault() *Catalog {
	c, err := Default()
	if err != nil {
		panic(err)
	}
	return c
}

// Parse decodes a catalog document and checks it is usable.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse role catalog: %w", err)
	}
	if len(c.IT)+len(c.NonIT) == 0 {
		return nil, fmt.Errorf("role catalog has no categories")
	}
	seen := make(map[string]bool)
	for _, cat := range c.Categories() {
		key := strings.ToLower(cat.Name)
		if seen[key] {
			return nil, fmt.Errorf("role catalog lists category %q twice", cat.Name)
		}
		seen[key] = true
		if len(cat.Roles) == 0 {
			return nil, fmt.Errorf("role catalog category %q has no roles", cat.Name)
		}
	}
	return &c, nil
}

// Categories returns IT categories followed by non-IT ones.
func (c *Catalog) Categories() []Category {
	out := make([]Category, 0, len(c.IT)+len(c.NonIT))
	out = append(out, c.IT...)
	return append(out, c.NonIT...)
}

// Category finds a category by name, ignoring case.
func (c *Catalog) Category(name string) (Category, bool) {
	for _, cat := range c.Categories() {
		if strings.EqualFold(cat.Name, strings.TrimSpace(name)) {
			return cat, true
		}
	}
	return Category{}, false
}

// Validate checks that role belongs to category. It returns the canonical
// spelling of both.
func (c *Catalog) Validate(category, role string) (string, string, error) {
	cat, ok := c.Category(category)
	if !ok {
		return "", "", fmt.Errorf("%q: %w", category, ErrUnknownCategory)
	}
	for _, r := range cat.Roles {
		if strings.EqualFold(r, strings.TrimSpace(role)) {
			return cat.Name, r, nil
		}
	}
	return "", "", fmt.Errorf("%q in %q: %w", role, cat.Name, ErrUnknownRole)
}

// CategoryOf returns the first category listing role.
func (c *Catalog) CategoryOf(role string) (string, bool) {
	for _, cat := range c.Categories() {
		for _, r := range cat.Roles {
			if strings.EqualFold(r, strings.TrimSpace(role)) {
				return cat.Name, true
			}
		}
	}
	return "", false
}
