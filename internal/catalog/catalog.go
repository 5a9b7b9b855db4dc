// Package catalog loads the static item bank and answers lookups and list
// filters over it.
package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed sample.yaml
var sampleYAML []byte

// Item is one question of the bank. Items are never mutated after loading.
type Item struct {
	Number      int    `json:"number" yaml:"number"`
	Year        string `json:"year" yaml:"year"`
	Question    string `json:"question" yaml:"question"`
	Result      string `json:"result" yaml:"result"`
	Answer      string `json:"answer" yaml:"answer"`
	Explanation string `json:"explanation,omitempty" yaml:"explanation,omitempty"`
	Category    string `json:"category,omitempty" yaml:"category,omitempty"`
}

// Group returns the category the item is listed under, falling back to its year.
func (it Item) Group() string {
	if it.Category != "" {
		return it.Category
	}
	return it.Year
}

// Check reports whether choice matches the item's correct result.
func (it Item) Check(choice string) bool {
	return NormalizeChoice(choice) == NormalizeChoice(it.Result)
}

// True/false markers used by the reference question bank.
const (
	ChoiceTrue  = "○"
	ChoiceFalse = "×"
)

// NormalizeChoice maps the accepted spellings of true/false answers to
// ChoiceTrue and ChoiceFalse. Other input is trimmed and lower-cased.
func NormalizeChoice(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "○", "o", "t", "true", "y", "yes", "〇":
		return ChoiceTrue
	case "×", "x", "f", "false", "n", "no", "✕":
		return ChoiceFalse
	}
	return s
}

// Catalog is an immutable, id-indexed item bank.
type Catalog struct {
	items []Item
	index map[int]int
}

// New builds a catalog from items. Ids must be positive and unique.
func New(items []Item) (*Catalog, error) {
	c := &Catalog{
		items: make([]Item, len(items)),
		index: make(map[int]int, len(items)),
	}
	copy(c.items, items)
	for i, it := range c.items {
		if it.Number <= 0 {
			return nil, fmt.Errorf("item %d: number must be positive, got %d", i, it.Number)
		}
		if _, dup := c.index[it.Number]; dup {
			return nil, fmt.Errorf("duplicate item number %d", it.Number)
		}
		c.index[it.Number] = i
	}
	return c, nil
}

// Load reads a catalog from a JSON (.json) or YAML (.yaml, .yml) file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var items []Item
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, fmt.Errorf("parse catalog %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &items); err != nil {
			return nil, fmt.Errorf("parse catalog %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported catalog format %q", ext)
	}

	c, err := New(items)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

// Default returns the embedded sample bank.
func Default() *Catalog {
	var items []Item
	if err := yaml.Unmarshal(sampleYAML, &items); err != nil {
		panic(fmt.Sprintf("embedded catalog: %v", err))
	}
	c, err := New(items)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog: %v", err))
	}
	return c
}

// Len returns the number of items.
func (c *Catalog) Len() int {
	return len(c.items)
}

// Items returns all items in catalog order.
func (c *Catalog) Items() []Item {
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

// IDs returns all item ids in catalog order.
func (c *Catalog) IDs() []int {
	out := make([]int, len(c.items))
	for i, it := range c.items {
		out[i] = it.Number
	}
	return out
}

// Get returns the item with the given id.
func (c *Catalog) Get(id int) (Item, bool) {
	i, ok := c.index[id]
	if !ok {
		return Item{}, false
	}
	return c.items[i], true
}

// Filter returns the ids present in the catalog, keeping the input order and
// dropping duplicates.
func (c *Catalog) Filter(ids []int) []int {
	seen := make(map[int]bool, len(ids))
	var out []int
	for _, id := range ids {
		if _, ok := c.index[id]; ok && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

// ByCategory returns the ids in the named group, in catalog order.
func (c *Catalog) ByCategory(name string) []int {
	var out []int
	for _, it := range c.items {
		if it.Group() == name {
			out = append(out, it.Number)
		}
	}
	return out
}

// SearchScope restricts which text fields Search looks at.
type SearchScope string

const (
	ScopeAll      SearchScope = "all"
	ScopeQuestion SearchScope = "question"
	ScopeAnswer   SearchScope = "answer"
)

// Search returns the ids whose text contains query, case-insensitively, in
// catalog order. ScopeAll covers question, answer and explanation. A blank
// query matches nothing.
func (c *Catalog) Search(query string, scope SearchScope) []int {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}

	var out []int
	for _, it := range c.items {
		var fields []string
		switch scope {
		case ScopeQuestion:
			fields = []string{it.Question}
		case ScopeAnswer:
			fields = []string{it.Answer}
		default:
			fields = []string{it.Question, it.Answer, it.Explanation}
		}
		for _, f := range fields {
			if strings.Contains(strings.ToLower(f), q) {
				out = append(out, it.Number)
				break
			}
		}
	}
	return out
}

// Category is a named group of items.
type Category struct {
	Name  string
	Count int
}

// Categories lists the item groups. Numeric year groups sort numerically and
// come before era-prefixed groups such as "R3"; other names sort last.
func (c *Catalog) Categories() []Category {
	counts := make(map[string]int)
	var names []string
	for _, it := range c.items {
		g := it.Group()
		if counts[g] == 0 {
			names = append(names, g)
		}
		counts[g]++
	}

	sort.SliceStable(names, func(i, j int) bool {
		return categoryLess(names[i], names[j])
	})

	out := make([]Category, len(names))
	for i, n := range names {
		out[i] = Category{Name: n, Count: counts[n]}
	}
	return out
}

func categoryLess(a, b string) bool {
	ra, na, oka := categoryKey(a)
	rb, nb, okb := categoryKey(b)
	if oka != okb {
		return oka
	}
	if !oka {
		return a < b
	}
	if ra != rb {
		return ra < rb
	}
	return na < nb
}

// categoryKey splits "30" into (0, 30) and "R3" into (1, 3).
func categoryKey(s string) (rank, n int, ok bool) {
	if rest, found := strings.CutPrefix(s, "R"); found {
		if v, err := strconv.Atoi(rest); err == nil {
			return 1, v, true
		}
		return 0, 0, false
	}
	if v, err := strconv.Atoi(s); err == nil {
		return 0, v, true
	}
	return 0, 0, false
}
