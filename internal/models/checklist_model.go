package models

import (
	"sort"
	"time"
)

// DefaultWeight is applied to checklist items created without an explicit weight.
const DefaultWeight = 3

// ChecklistItem is an administrator-defined template row.
type ChecklistItem struct {
	ID          string    `json:"id" firestore:"-"`
	Category    string    `json:"category" firestore:"category"`
	Description string    `json:"description" firestore:"description"`
	Weight      int       `json:"weight" firestore:"weight"`
	Required    bool      `json:"required" firestore:"required"`
	Order       int       `json:"order" firestore:"order"`
	CreatedBy   string    `json:"createdBy,omitempty" firestore:"createdBy,omitempty"`
	UpdatedBy   string    `json:"updatedBy,omitempty" firestore:"updatedBy,omitempty"`
	CreatedAt   time.Time `json:"createdAt" firestore:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" firestore:"updatedAt"`
}

// CategoryGroup is one category with its items in display order.
type CategoryGroup struct {
	Category string          `json:"category"`
	Items    []ChecklistItem `json:"items"`
}

// CategoryGroups maps a category name to its checklist items.
type CategoryGroups map[string][]ChecklistItem

// GroupByCategory buckets items by category, keeping the relative order of the input.
func GroupByCategory(items []ChecklistItem) CategoryGroups {
	groups := make(CategoryGroups)
	for _, item := range items {
		groups[item.Category] = append(groups[item.Category], item)
	}
	return groups
}

// Names returns the category names sorted alphabetically.
func (g CategoryGroups) Names() []string {
	names := make([]string, 0, len(g))
	for name := range g {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Ordered returns the groups sorted by category name, items sorted by Order.
func (g CategoryGroups) Ordered() []CategoryGroup {
	out := make([]CategoryGroup, 0, len(g))
	for _, name := range g.Names() {
		items := append([]ChecklistItem(nil), g[name]...)
		sort.SliceStable(items, func(i, j int) bool { return items[i].Order < items[j].Order })
		out = append(out, CategoryGroup{Category: name, Items: items})
	}
	return out
}
