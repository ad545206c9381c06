// Package nav holds the navigation state of the simulated phone: which app is
// open, which detail view is shown inside it, and the timed transitions in
// between.
package nav

import (
	"fmt"
	"sync"
	"time"

	"github.com/starford/folio/internal/models"
)

// App identifies a simulated app.
type App string

// Apps. AppNone is the home screen.
const (
	AppNone    App = ""
	AppNotes   App = "notes"
	AppSocials App = "socials"
	AppEvents  App = "events"
)

// ParseApp validates an app name.
func ParseApp(s string) (App, error) {
	switch a := App(s); a {
	case AppNotes, AppSocials, AppEvents:
		return a, nil
	}
	return AppNone, fmt.Errorf("unknown app %q", s)
}

// Kind returns the content kind shown by the app, if any.
func (a App) Kind() (models.Kind, bool) {
	switch a {
	case AppNotes:
		return models.KindNote, true
	case AppEvents:
		return models.KindEvent, true
	}
	return "", false
}

// Phase is the transition state of the router.
type Phase int

// Phases. A router cycles idle → opening → open → closing → idle.
const (
	PhaseIdle Phase = iota
	PhaseOpening
	PhaseOpen
	PhaseClosing
)

func (p Phase) String() string {
	switch p {
	case PhaseOpening:
		return "opening"
	case PhaseOpen:
		return "open"
	case PhaseClosing:
		return "closing"
	}
	return "idle"
}

// Rect is the on-screen box of the icon an app expands from.
type Rect struct {
	X, Y, W, H int
}

// Snapshot is a copy of the router state.
type Snapshot struct {
	Phase     Phase
	ActiveApp App
	// Detail is the id of the open note or event, 0 when none.
	Detail int
	Origin Rect
}

// Animating reports whether a transition is in flight.
func (s Snapshot) Animating() bool {
	return s.Phase == PhaseOpening || s.Phase == PhaseClosing
}

// BackHandler is consulted by Close. Returning true claims the back action.
type BackHandler func() bool

// Default transition timings.
const (
	DefaultCommitDelay = 200 * time.Millisecond
	DefaultSettleDelay = 300 * time.Millisecond
)

// Options configure a Router. Zero values select the defaults.
type Options struct {
	Clock Clock
	// CommitDelay elapses between starting a transition and committing the
	// new active app.
	CommitDelay time.Duration
	// SettleDelay elapses between the commit and the end of the transition.
	SettleDelay time.Duration
}

type handlerEntry struct {
	id uint64
	fn BackHandler
}

type observerEntry struct {
	id uint64
	fn func(Snapshot)
}

// Router is the single source of truth for the visible app. It is safe for
// concurrent use; observers are called without the lock held.
type Router struct {
	clock       Clock
	commitDelay time.Duration
	settleDelay time.Duration

	mu        sync.Mutex
	state     Snapshot
	target    App
	gen       uint64
	timer     Timer
	nextID    uint64
	handlers  []handlerEntry
	observers []observerEntry
}

// NewRouter returns an idle router.
func NewRouter(opts Options) *Router {
	if opts.Clock == nil {
		opts.Clock = RealClock{}
	}
	if opts.CommitDelay <= 0 {
		opts.CommitDelay = DefaultCommitDelay
	}
	if opts.SettleDelay <= 0 {
		opts.SettleDelay = DefaultSettleDelay
	}
	return &Router{
		clock:       opts.Clock,
		commitDelay: opts.CommitDelay,
		settleDelay: opts.SettleDelay,
	}
}

// Snapshot returns the current state.
func (r *Router) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Subscribe registers fn for every state change.
func (r *Router) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	id := r.nextID
	r.observers = append(r.observers, observerEntry{id: id, fn: fn})
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		for i, o := range r.observers {
			if o.id == id {
				r.observers = append(r.observers[:i:i], r.observers[i+1:]...)
				return
			}
		}
	}
}

// RegisterBackHandler adds h to the back-handler chain. Handlers are
// consulted in registration order and the first to return true wins.
func (r *Router) RegisterBackHandler(h BackHandler) (unregister func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	id := r.nextID
	r.handlers = append(r.handlers, handlerEntry{id: id, fn: h})
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		for i, h := range r.handlers {
			if h.id == id {
				r.handlers = append(r.handlers[:i:i], r.handlers[i+1:]...)
				return
			}
		}
	}
}

// Open starts the opening transition of app from the given icon box. It is
// rejected while a transition is in flight or another app is open.
func (r *Router) Open(app App, origin Rect) bool {
	if app == AppNone {
		return false
	}
	r.mu.Lock()
	if r.state.Phase != PhaseIdle {
		r.mu.Unlock()
		return false
	}
	r.state = Snapshot{Phase: PhaseOpening, Origin: origin}
	r.target = app
	r.schedule(r.commitDelay, r.commitLocked)
	r.notifyUnlock()
	return true
}

// Close performs a back action. Registered back handlers go first; then an
// open detail view is closed; then the active app starts its closing
// transition. It reports whether anything handled the action.
func (r *Router) Close() bool {
	r.mu.Lock()
	if r.state.Animating() {
		r.mu.Unlock()
		return false
	}
	handlers := make([]BackHandler, len(r.handlers))
	for i, h := range r.handlers {
		handlers[i] = h.fn
	}
	r.mu.Unlock()

	for _, h := range handlers {
		if h() {
			return true
		}
	}

	r.mu.Lock()
	switch {
	case r.state.Animating():
		r.mu.Unlock()
		return false
	case r.state.Detail != 0:
		r.state.Detail = 0
	case r.state.Phase == PhaseOpen:
		r.state.Phase = PhaseClosing
		r.target = AppNone
		r.schedule(r.commitDelay, r.commitLocked)
	default:
		r.mu.Unlock()
		return false
	}
	r.notifyUnlock()
	return true
}

// OpenDetail shows the detail view of id inside the open app, replacing any
// detail already shown.
func (r *Router) OpenDetail(id int) bool {
	r.mu.Lock()
	if r.state.Phase != PhaseOpen || id <= 0 || r.state.Detail == id {
		r.mu.Unlock()
		return false
	}
	r.state.Detail = id
	r.notifyUnlock()
	return true
}

// CloseDetail hides the detail view.
func (r *Router) CloseDetail() bool {
	r.mu.Lock()
	if r.state.Phase != PhaseOpen || r.state.Detail == 0 {
		r.mu.Unlock()
		return false
	}
	r.state.Detail = 0
	r.notifyUnlock()
	return true
}

// Stop cancels a pending transition timer and finishes a transition in
// flight at once, so a stopped router never reports Animating. Observers are
// not notified.
func (r *Router) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gen++
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	if r.state.Animating() {
		r.state.ActiveApp = r.target
		r.settleLocked()
	}
}

// schedule arms the single transition timer. Callers hold r.mu.
func (r *Router) schedule(d time.Duration, step func()) {
	r.gen++
	gen := r.gen
	r.timer = r.clock.AfterFunc(d, func() {
		r.mu.Lock()
		if gen != r.gen {
			r.mu.Unlock()
			return
		}
		r.timer = nil
		step()
		r.notifyUnlock()
	})
}

// commitLocked switches the active app and arms the settle timer.
func (r *Router) commitLocked() {
	r.state.ActiveApp = r.target
	r.schedule(r.settleDelay, r.settleLocked)
}

// settleLocked ends the transition.
func (r *Router) settleLocked() {
	if r.state.ActiveApp == AppNone {
		r.state = Snapshot{Phase: PhaseIdle}
		return
	}
	r.state.Phase = PhaseOpen
}

// notifyUnlock releases r.mu and then delivers the state to observers.
func (r *Router) notifyUnlock() {
	snap := r.state
	observers := make([]func(Snapshot), len(r.observers))
	for i, o := range r.observers {
		observers[i] = o.fn
	}
	r.mu.Unlock()
	for _, fn := range observers {
		fn(snap)
	}
}
