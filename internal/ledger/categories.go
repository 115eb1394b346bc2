package ledger

import (
	"sort"
	"strings"

	"bilancio/internal/core"
)

// CategoryIndex provides parent/child lookups and display glyphs over the
// flat category list. The tree is shallow in practice but the index walks
// arbitrary depth; a cycle guard keeps malformed input from looping.
type CategoryIndex struct {
	byID     map[string]core.Category
	children map[string][]core.Category
	icons    map[string]string
}

// Well-known glyphs for common category names. Anything not listed falls
// back to a deterministic pick from defaultGlyphs, so the same name always
// renders the same icon.
var namedGlyphs = map[string]string{
	"groceries":                    "🛒",
	"rent":                         "🏠",
	"home":                         "🏠",
	"transport":                    "🚌",
	"car":                          "🚗",
	"health":                       "🏥",
	"restaurants":                  "🍽️",
	"travel":                       "✈️",
	"salary":                       "💼",
	"gifts":                        "🎁",
	"entertainment":                "🎬",
	"clothing":                     "👕",
	"taxes":                        "🏛️",
	"savings":                      "🏦",
	strings.ToLower(core.TransferCategoryName):          "🔁",
	strings.ToLower(core.RefundCategoryName):            "↩️",
	strings.ToLower(core.BalanceCorrectionCategoryName): "🛠️",
}

var defaultGlyphs = []string{"📁", "🏷️", "💶", "🧾", "📌", "🗂️", "💡", "🧮"}

// NewCategoryIndex builds the index. Empty input yields an empty but usable
// index.
func NewCategoryIndex(categories []core.Category) *CategoryIndex {
	idx := &CategoryIndex{
		byID:     make(map[string]core.Category, len(categories)),
		children: make(map[string][]core.Category),
		icons:    make(map[string]string, len(categories)),
	}

	for _, c := range categories {
		idx.byID[c.ID] = c
		idx.icons[c.ID] = glyphFor(c.Name)
	}
	for _, c := range categories {
		if c.ParentID == "" {
			continue
		}
		idx.children[c.ParentID] = append(idx.children[c.ParentID], c)
	}
	for parentID := range idx.children {
		kids := idx.children[parentID]
		sort.SliceStable(kids, func(i, j int) bool {
			if kids[i].SortOrder != kids[j].SortOrder {
				return kids[i].SortOrder < kids[j].SortOrder
			}
			return kids[i].Name < kids[j].Name
		})
	}

	return idx
}

// Lookup returns the category with the given id.
func (idx *CategoryIndex) Lookup(id string) (core.Category, bool) {
	c, ok := idx.byID[id]
	return c, ok
}

// Children returns the direct children of a category ordered by sort order,
// then name.
func (idx *CategoryIndex) Children(id string) []core.Category {
	return idx.children[id]
}

// Roots returns the categories without a parent, ordered like Children.
func (idx *CategoryIndex) Roots() []core.Category {
	var roots []core.Category
	for _, c := range idx.byID {
		if c.ParentID == "" || !idx.has(c.ParentID) {
			roots = append(roots, c)
		}
	}
	sort.SliceStable(roots, func(i, j int) bool {
		if roots[i].SortOrder != roots[j].SortOrder {
			return roots[i].SortOrder < roots[j].SortOrder
		}
		return roots[i].Name < roots[j].Name
	})
	return roots
}

// Icon returns the display glyph assigned to a category. Unknown ids get
// the first default glyph so rendering never has a hole.
func (idx *CategoryIndex) Icon(id string) string {
	if icon, ok := idx.icons[id]; ok {
		return icon
	}
	return defaultGlyphs[0]
}

// Ancestors returns the chain of ancestor ids from the category's parent up
// to the root. A missing parent reference ends the walk; a cycle stops at
// the first repeated node.
func (idx *CategoryIndex) Ancestors(id string) []string {
	var chain []string
	seen := map[string]bool{id: true}

	current, ok := idx.byID[id]
	for ok && current.ParentID != "" {
		if seen[current.ParentID] {
			break
		}
		seen[current.ParentID] = true
		chain = append(chain, current.ParentID)
		current, ok = idx.byID[current.ParentID]
	}
	return chain
}

// SubtreeIDs returns the id set of the category plus all its descendants.
// Spend recorded anywhere in this set rolls up into the category's total.
func (idx *CategoryIndex) SubtreeIDs(id string) map[string]bool {
	ids := map[string]bool{id: true}
	idx.collectDescendants(id, ids)
	return ids
}

func (idx *CategoryIndex) collectDescendants(id string, ids map[string]bool) {
	for _, child := range idx.children[id] {
		if ids[child.ID] {
			continue
		}
		ids[child.ID] = true
		idx.collectDescendants(child.ID, ids)
	}
}

func (idx *CategoryIndex) has(id string) bool {
	_, ok := idx.byID[id]
	return ok
}

func glyphFor(name string) string {
	key := normalizeCategoryName(name)
	if g, ok := namedGlyphs[key]; ok {
		return g
	}
	var sum int
	for _, r := range key {
		sum += int(r)
	}
	return defaultGlyphs[sum%len(defaultGlyphs)]
}
