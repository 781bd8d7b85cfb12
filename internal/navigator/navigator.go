// Package navigator tracks the highlighted entry of the transient suggestion
// dropdown during keyboard navigation.
package navigator

// None means no entry is highlighted.
const None = -1

// Navigator maintains the highlighted index within the currently shown
// suggestion list. It only has meaning while the list is visible; Reset is
// called whenever the list is replaced or closed.
type Navigator struct {
	size  int
	index int
}

// New returns a Navigator with no list and no highlight.
func New() *Navigator {
	return &Navigator{index: None}
}

// Reset installs a new list size and clears the highlight.
func (n *Navigator) Reset(size int) {
	if size < 0 {
		size = 0
	}
	n.size = size
	n.index = None
}

// Index returns the highlighted index, or None.
func (n *Navigator) Index() int {
	return n.index
}

// Size returns the current list size.
func (n *Navigator) Size() int {
	return n.size
}

// Down moves the highlight forward, clamped to the last entry. From None it
// highlights the first entry. Returns the new index.
func (n *Navigator) Down() int {
	if n.size == 0 {
		return None
	}
	if n.index < n.size-1 {
		n.index++
	}
	return n.index
}

// Up moves the highlight backward, clamped to the first entry. Returns the
// new index.
func (n *Navigator) Up() int {
	if n.size == 0 {
		return None
	}
	if n.index > 0 {
		n.index--
	} else {
		n.index = 0
	}
	return n.index
}
