package editor

import (
	"errors"
	"iter"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
)

const (
	// CategoryGenerated tags covers produced during the session.
	CategoryGenerated = "generated"
	// TabAll matches every category.
	TabAll = "all"
)

var ErrNotInCatalog = errors.New("editor: item is not in the catalog")

// Item is one selectable cover.
type Item struct {
	ID       string `yaml:"id"`
	Ref      string `yaml:"ref"`
	Label    string `yaml:"label"`
	Category string `yaml:"category"`
}

// Gallery holds the cover catalog and the active selection. The selection
// always refers to a catalog member.
type Gallery struct {
	mu       sync.RWMutex
	items    []Item
	selected int
}

// NewGallery seeds the catalog with presets and selects the first one.
func NewGallery(presets []Item) *Gallery {
	g := &Gallery{
		items:    slices.Clone(presets),
		selected: -1,
	}
	if len(g.items) > 0 {
		g.selected = 0
	}
	return g
}

// Items returns a copy of the catalog, newest generated cover first.
func (g *Gallery) Items() []Item {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return slices.Clone(g.items)
}

func (g *Gallery) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.items)
}

// Selected returns the active cover.
func (g *Gallery) Selected() (Item, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.selected < 0 {
		return Item{}, false
	}
	return g.items[g.selected], true
}

// Select makes item the active cover. Items are matched by ID.
func (g *Gallery) Select(item Item) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	idx := g.indexLocked(item.ID)
	if idx < 0 {
		return ErrNotInCatalog
	}
	g.selected = idx
	return nil
}

// Lookup finds a catalog item by ID.
func (g *Gallery) Lookup(id string) (Item, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if idx := g.indexLocked(id); idx >= 0 {
		return g.items[idx], true
	}
	return Item{}, false
}

// AppendGenerated prepends item to the catalog and selects it. A missing ID
// is filled with a fresh UUID and the category is forced to generated.
func (g *Gallery) AppendGenerated(item Item) Item {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	item.Category = CategoryGenerated

	g.mu.Lock()
	defer g.mu.Unlock()
	g.items = slices.Insert(g.items, 0, item)
	g.selected = 0
	return item
}

// Filter yields the items in tab whose label contains query, both compared
// case-insensitively. An empty tab or "all" matches every category. The
// sequence reads the catalog afresh each time it is ranged over.
func (g *Gallery) Filter(tab, query string) iter.Seq[Item] {
	tab = strings.TrimSpace(tab)
	allTabs := tab == "" || strings.EqualFold(tab, TabAll)
	foldedTab := cases.Fold().String(tab)
	needle := cases.Fold().String(strings.TrimSpace(query))

	return func(yield func(Item) bool) {
		// A Caser keeps state, so each iteration gets its own.
		fold := cases.Fold()
		for _, item := range g.Items() {
			if !allTabs && fold.String(item.Category) != foldedTab {
				continue
			}
			if needle != "" && !strings.Contains(fold.String(item.Label), needle) {
				continue
			}
			if !yield(item) {
				return
			}
		}
	}
}

// Tabs lists "all" followed by each category in first-seen order.
func (g *Gallery) Tabs() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	tabs := []string{TabAll}
	for _, item := range g.items {
		if !slices.Contains(tabs, item.Category) {
			tabs = append(tabs, item.Category)
		}
	}
	return tabs
}

func (g *Gallery) indexLocked(id string) int {
	if id == "" {
		return -1
	}
	return slices.IndexFunc(g.items, func(it Item) bool { return it.ID == id })
}
