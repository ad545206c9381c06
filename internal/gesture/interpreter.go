// Package gesture turns pointer drags into discrete paging commands.
package gesture

import "github.com/starford/folio/internal/nav"

// Command is the outcome of a completed gesture.
type Command int

// Commands.
const (
	None Command = iota
	Previous
	Next
)

func (c Command) String() string {
	switch c {
	case Previous:
		return "previous"
	case Next:
		return "next"
	}
	return "none"
}

// Direction is the provisional direction latched during a drag.
type Direction int

// Directions. Left means the pointer moved towards smaller x.
const (
	Unlatched Direction = iota
	Left
	Right
)

// Default thresholds, in pointer units.
const (
	DefaultLatchThreshold  = 10
	DefaultCommitThreshold = 50
)

// Interpreter tracks one drag at a time. The zero value is not usable; use
// New. It is not safe for concurrent use.
type Interpreter struct {
	latch  int
	commit int

	active  bool
	startX  int
	delta   int
	latched Direction
}

// New returns an interpreter. Non-positive thresholds select the defaults.
func New(latch, commit int) *Interpreter {
	if latch <= 0 {
		latch = DefaultLatchThreshold
	}
	if commit <= 0 {
		commit = DefaultCommitThreshold
	}
	return &Interpreter{latch: latch, commit: commit}
}

// Begin starts tracking at x. A drag that starts while text is selected is
// ignored so that copy gestures are left alone.
func (in *Interpreter) Begin(x int, selectionEmpty bool) {
	in.reset()
	if !selectionEmpty {
		return
	}
	in.active = true
	in.startX = x
}

// Move updates the drag and returns the latched direction, if any.
func (in *Interpreter) Move(x int) Direction {
	if !in.active {
		return Unlatched
	}
	in.delta = x - in.startX
	if in.latched == Unlatched && abs(in.delta) > in.latch {
		in.latched = direction(in.delta)
	}
	return in.latched
}

// End finishes the drag. A command fires only when the drag went past the
// commit threshold in the direction latched earlier.
func (in *Interpreter) End() Command {
	defer in.reset()
	if !in.active || in.latched == Unlatched || abs(in.delta) <= in.commit {
		return None
	}
	if direction(in.delta) != in.latched {
		return None
	}
	if in.latched == Left {
		return Next
	}
	return Previous
}

// Cancel drops the current drag.
func (in *Interpreter) Cancel() { in.reset() }

// Active reports whether a drag is being tracked.
func (in *Interpreter) Active() bool { return in.active }

func (in *Interpreter) reset() {
	in.active = false
	in.startX = 0
	in.delta = 0
	in.latched = Unlatched
}

// Apply moves p according to cmd and reports whether it moved.
func Apply(cmd Command, p *nav.Pager) bool {
	switch cmd {
	case Next:
		return p.Next()
	case Previous:
		return p.Prev()
	}
	return false
}

func direction(delta int) Direction {
	if delta < 0 {
		return Left
	}
	return Right
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
