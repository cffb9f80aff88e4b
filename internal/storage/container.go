package storage

import (
	"fmt"

	"github.com/s2quake/vtree/pkg/vtree"
)

// container is the ordered set of children of one kind under one folder.
// Names are unique within a container.
type container struct {
	order  []vtree.Handle
	byName map[string]vtree.Handle
}

func newContainer() *container {
	return &container{byName: make(map[string]vtree.Handle)}
}

// Add appends h under name.
func (c *container) Add(name string, h vtree.Handle) error {
	if _, ok := c.byName[name]; ok {
		return fmt.Errorf("%q: %w", name, vtree.ErrDuplicateName)
	}
	c.byName[name] = h
	c.order = append(c.order, h)
	return nil
}

// Remove detaches the child called name.
func (c *container) Remove(name string) error {
	h, ok := c.byName[name]
	if !ok {
		return fmt.Errorf("%q: %w", name, vtree.ErrNotFound)
	}
	delete(c.byName, name)
	for i, v := range c.order {
		if v == h {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return nil
}

// Rename rekeys a child without changing its position.
func (c *container) Rename(oldName, newName string) error {
	h, ok := c.byName[oldName]
	if !ok {
		return fmt.Errorf("%q: %w", oldName, vtree.ErrNotFound)
	}
	if oldName == newName {
		return nil
	}
	if _, ok := c.byName[newName]; ok {
		return fmt.Errorf("%q: %w", newName, vtree.ErrDuplicateName)
	}
	delete(c.byName, oldName)
	c.byName[newName] = h
	return nil
}

func (c *container) Lookup(name string) (vtree.Handle, bool) {
	h, ok := c.byName[name]
	return h, ok
}

// Handles returns a copy of the children in insertion order.
func (c *container) Handles() []vtree.Handle {
	out := make([]vtree.Handle, len(c.order))
	copy(out, c.order)
	return out
}

func (c *container) Len() int {
	return len(c.order)
}
