package diag

import "sort"

// Bag accumulates diagnostics up to a capacity; the driver drains it
// into whatever sink the CLI selected.
type Bag struct {
	items []*Diagnostic
	max   int
}

// NewBag creates a Bag that holds at most max diagnostics.
func NewBag(max int) *Bag {
	if max <= 0 {
		max = 100
	}
	return &Bag{max: max}
}

// Add appends d, returning false once the bag is at capacity.
func (b *Bag) Add(d *Diagnostic) bool {
	if b == nil || d == nil || len(b.items) >= b.max {
		return false
	}
	b.items = append(b.items, d)
	return true
}

// HasErrors reports whether any item has SevError or above.
func (b *Bag) HasErrors() bool {
	if b == nil {
		return false
	}
	for _, d := range b.items {
		if d.Severity >= SevError {
			return true
		}
	}
	return false
}

// Len returns the number of accumulated diagnostics.
func (b *Bag) Len() int {
	if b == nil {
		return 0
	}
	return len(b.items)
}

// Items returns a read-only view of the accumulated diagnostics.
func (b *Bag) Items() []*Diagnostic {
	if b == nil {
		return nil
	}
	return b.items
}

// Sort orders diagnostics deterministically by file, then offset, then
// severity (descending), then code.
func (b *Bag) Sort() {
	if b == nil {
		return
	}
	sort.SliceStable(b.items, func(i, j int) bool {
		di, dj := b.items[i], b.items[j]
		if di.Primary.File != dj.Primary.File {
			return di.Primary.File < dj.Primary.File
		}
		if di.Primary.Start != dj.Primary.Start {
			return di.Primary.Start < dj.Primary.Start
		}
		if di.Severity != dj.Severity {
			return di.Severity > dj.Severity
		}
		return di.Code < dj.Code
	})
}
