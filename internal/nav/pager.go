package nav

// Pager is a bounded cursor over n items, as paged by swipes and
// pagination dots.
type Pager struct {
	n, i int
}

// NewPager returns a pager positioned on the first of n items.
func NewPager(n int) *Pager {
	p := &Pager{}
	p.Resize(n)
	return p
}

// Index returns the current position.
func (p *Pager) Index() int { return p.i }

// Len returns the number of items.
func (p *Pager) Len() int { return p.n }

// Next moves forward and reports whether the position changed.
func (p *Pager) Next() bool { return p.Set(p.i + 1) }

// Prev moves back and reports whether the position changed.
func (p *Pager) Prev() bool { return p.Set(p.i - 1) }

// Set jumps to i. Out-of-range positions are ignored.
func (p *Pager) Set(i int) bool {
	if i < 0 || i >= p.n || i == p.i {
		return false
	}
	p.i = i
	return true
}

// Resize changes the item count, clamping the position.
func (p *Pager) Resize(n int) {
	if n < 0 {
		n = 0
	}
	p.n = n
	if p.i >= n {
		p.i = max(n-1, 0)
	}
}
