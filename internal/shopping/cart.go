package shopping

import (
	"slices"
	"sync"
)

// Cart is the set of active items already picked up during a session. It is
// never persisted.
type Cart struct {
	mu  sync.Mutex
	ids map[int64]struct{}
}

func NewCart() *Cart {
	return &Cart{ids: make(map[int64]struct{})}
}

// Toggle adds or removes id and reports whether it is now in the cart.
func (c *Cart) Toggle(id int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.ids[id]; ok {
		delete(c.ids, id)
		return false
	}
	c.ids[id] = struct{}{}
	return true
}

func (c *Cart) Has(id int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.ids[id]
	return ok
}

func (c *Cart) Remove(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.ids, id)
}

func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.ids)
}

func (c *Cart) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.ids)
}

// IDs returns the ids in the cart in ascending order.
func (c *Cart) IDs() []int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids := make([]int64, 0, len(c.ids))
	for id := range c.ids {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
