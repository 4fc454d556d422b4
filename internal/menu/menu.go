// Package menu defines the static item catalog for the Yo-Yo Pizza assistant.
//
// The catalog is a closed, read-only set keyed by small positive integers.
package menu

import (
	"fmt"
	"sort"
	"strings"
)

// Item is one orderable entry in the catalog.
type Item struct {
	Number      int    `json:"number"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Catalog is a closed set of items with an explicit lookup.
type Catalog struct {
	items map[int]Item
}

// NewCatalog builds a catalog from the given items.
func NewCatalog(items ...Item) Catalog {
	m := make(map[int]Item, len(items))
	for _, it := range items {
		m[it.Number] = it
	}
	return Catalog{items: m}
}

// Default returns the pizza catalog offered by the assistant.
func Default() Catalog {
	return NewCatalog(
		Item{
			Number:      1,
			Name:        "Non-Veg Pizza",
			Description: "Supreme combination of black olives, onion, capsicum, grilled mushroom, pepper barbecue chicken",
		},
		Item{
			Number:      2,
			Name:        "Veg Pizza",
			Description: "Flavorful trio of juicy paneer, crisp capsicum with spicy red paprika",
		},
		Item{
			Number:      3,
			Name:        "Italian Pizza",
			Description: "The wholesome flavour of tandoori masala with Chicken tikka, onion, red paprika & mint mayo",
		},
	)
}

// Lookup finds an item by its number. The second return value reports whether
// the number is part of the catalog.
func (c Catalog) Lookup(number int) (Item, bool) {
	it, ok := c.items[number]
	return it, ok
}

// Numbers returns the catalog keys in ascending order.
func (c Catalog) Numbers() []int {
	nums := make([]int, 0, len(c.items))
	for n := range c.items {
		nums = append(nums, n)
	}
	sort.Ints(nums)
	return nums
}

// Listing renders one line per item for the welcome menu broadcast.
func (c Catalog) Listing() []string {
	lines := make([]string, 0, len(c.items))
	for _, n := range c.Numbers() {
		it := c.items[n]
		lines = append(lines, fmt.Sprintf("%d.%s (%s)", it.Number, it.Name, it.Description))
	}
	return lines
}

// PromptHint renders the short selection hint appended to the item question,
// e.g. "1-Non-Veg Pizza, 2-Veg Pizza, 3-Italian Pizza".
func (c Catalog) PromptHint() string {
	parts := make([]string, 0, len(c.items))
	for _, n := range c.Numbers() {
		parts = append(parts, fmt.Sprintf("%d-%s", n, c.items[n].Name))
	}
	return strings.Join(parts, ", ")
}
