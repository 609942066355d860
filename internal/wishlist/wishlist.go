package wishlist

import (
	"encoding/json"
	"slices"

	"github.com/angelmondragon/shophub/internal/catalog"
)

// Wishlist is a set of products keyed by id, listed in insertion order.
type Wishlist struct {
	items []catalog.Product
	index map[int]struct{}
}

func New(items ...catalog.Product) *Wishlist {
	w := &Wishlist{index: map[int]struct{}{}}
	for _, p := range items {
		w.Add(p)
	}
	return w
}

// Toggle removes p when present and adds it otherwise. It reports whether p is now in the list.
func (w *Wishlist) Toggle(p catalog.Product) bool {
	if w.Contains(p.ID) {
		w.Remove(p.ID)
		return false
	}
	w.Add(p)
	return true
}

// Add inserts p and reports false when it was already present.
func (w *Wishlist) Add(p catalog.Product) bool {
	if w.index == nil {
		w.index = map[int]struct{}{}
	}
	if _, ok := w.index[p.ID]; ok {
		return false
	}
	w.index[p.ID] = struct{}{}
	w.items = append(w.items, p)
	return true
}

// Remove deletes productID and reports false when it was absent.
func (w *Wishlist) Remove(productID int) bool {
	if _, ok := w.index[productID]; !ok {
		return false
	}
	delete(w.index, productID)
	w.items = slices.DeleteFunc(w.items, func(p catalog.Product) bool { return p.ID == productID })
	return true
}

func (w *Wishlist) Clear() {
	w.items = nil
	w.index = map[int]struct{}{}
}

func (w *Wishlist) Contains(productID int) bool {
	_, ok := w.index[productID]
	return ok
}

func (w *Wishlist) Get(productID int) (catalog.Product, bool) {
	if !w.Contains(productID) {
		return catalog.Product{}, false
	}
	i := slices.IndexFunc(w.items, func(p catalog.Product) bool { return p.ID == productID })
	return w.items[i], true
}

func (w *Wishlist) Len() int {
	return len(w.items)
}

// Items returns a copy of the entries in insertion order.
func (w *Wishlist) Items() []catalog.Product {
	out := slices.Clone(w.items)
	if out == nil {
		out = []catalog.Product{}
	}
	return out
}

// MarshalJSON stores the wishlist as a plain array of products.
func (w *Wishlist) MarshalJSON() ([]byte, error) {
	return json.Marshal(w.Items())
}

func (w *Wishlist) UnmarshalJSON(data []byte) error {
	var items []catalog.Product
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	*w = *New(items...)
	return nil
}
