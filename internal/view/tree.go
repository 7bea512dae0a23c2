package view

import (
	"sort"
	"strings"

	"financemonkey/fm-cli/internal/models"
)

// CategoryNode is a category with its depth in the forest.
type CategoryNode struct {
	models.Category
	Depth      int
	ParentName string
}

// CategoryTree flattens the category forest depth first, siblings sorted
// by name. Categories whose parent is missing from the list are treated
// as roots; cycles are cut at the first repeated node.
func CategoryTree(categories []models.Category) []CategoryNode {
	byID := make(map[string]models.Category, len(categories))
	children := make(map[string][]models.Category)
	for _, c := range categories {
		byID[c.ID] = c
	}
	var roots []models.Category
	for _, c := range categories {
		if _, ok := byID[c.ParentCategoryID]; c.IsRoot() || !ok {
			roots = append(roots, c)
			continue
		}
		children[c.ParentCategoryID] = append(children[c.ParentCategoryID], c)
	}

	byName := func(list []models.Category) {
		sort.SliceStable(list, func(i, j int) bool {
			return strings.ToLower(list[i].Name) < strings.ToLower(list[j].Name)
		})
	}

	out := make([]CategoryNode, 0, len(categories))
	visited := make(map[string]bool, len(categories))
	var walk func(c models.Category, depth int, parent string)
	walk = func(c models.Category, depth int, parent string) {
		if visited[c.ID] {
			return
		}
		visited[c.ID] = true
		out = append(out, CategoryNode{Category: c, Depth: depth, ParentName: parent})
		kids := children[c.ID]
		byName(kids)
		for _, k := range kids {
			walk(k, depth+1, c.Name)
		}
	}

	byName(roots)
	for _, r := range roots {
		walk(r, 0, "")
	}
	// Anything left is part of a parent cycle with no root.
	for _, c := range categories {
		if !visited[c.ID] {
			walk(c, 0, "")
		}
	}
	return out
}

// CategoryNames maps id to name.
func CategoryNames(categories []models.Category) map[string]string {
	names := make(map[string]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}
	return names
}
